package httpfs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundscope/internal/config"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(&config.FileStoreConfig{Endpoint: srv.URL})
	require.NoError(t, err)
	return c
}

func TestListTree_NestedFolders(t *testing.T) {
	listings := map[string][]readEntry{
		"/": {
			{Name: "Alpine VC", IsFile: false},
			{Name: "readme.txt", IsFile: true},
		},
		"/Alpine VC": {
			{Name: "deck.pdf", IsFile: true},
		},
	}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req readRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "read", req.Action)

		// The real server double-encodes its response body.
		inner, err := json.Marshal(readResponse{Files: listings[req.Path]})
		require.NoError(t, err)
		require.NoError(t, json.NewEncoder(w).Encode(string(inner)))
	}))

	tree, err := c.ListTree(context.Background())
	require.NoError(t, err)
	require.Len(t, tree.Children, 2)

	folder := tree.Children[0].Folder
	require.NotNil(t, folder)
	assert.Equal(t, "Alpine VC", folder.Name)
	require.Len(t, folder.Children, 1)
	doc := folder.Children[0].Document
	require.NotNil(t, doc)
	assert.Equal(t, "deck.pdf", doc.Name)
	assert.Equal(t, "/Alpine VC/deck.pdf", doc.Path)

	rootDoc := tree.Children[1].Document
	require.NotNil(t, rootDoc)
	assert.Equal(t, "/readme.txt", rootDoc.Path)
}

func TestDownload_FormEncodedProtocol(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/Download", r.URL.Path)
		require.NoError(t, r.ParseForm())

		var payload struct {
			Action string   `json:"action"`
			Path   string   `json:"path"`
			Names  []string `json:"names"`
		}
		require.NoError(t, json.Unmarshal([]byte(r.PostFormValue("downloadInput")), &payload))
		assert.Equal(t, "download", payload.Action)
		assert.Equal(t, "/Alpine VC/", payload.Path)
		assert.Equal(t, []string{"deck.pdf"}, payload.Names)

		w.Write([]byte("pdf-bytes"))
	}))

	data, err := c.Download(context.Background(), "/Alpine VC/deck.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf-bytes"), data)
}

func TestDownload_ServerError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.Download(context.Background(), "/x.pdf")
	assert.Error(t, err)
}
