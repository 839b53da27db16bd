package contact

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundscope/internal/config"
	"fundscope/internal/domain"
)

func newTestContactClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(&config.ContactConfig{APIToken: "tok", Endpoint: srv.URL})
	require.NoError(t, err)
	return c
}

func TestFindContact_Success(t *testing.T) {
	c := newTestContactClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok", r.Header.Get("token"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Jane Fundmanager", req.Name)
		assert.Equal(t, []string{"Alpine VC"}, req.Company)

		json.NewEncoder(w).Encode(map[string]any{
			"profiles": map[string]any{
				"linkedin.com/in/jane": map[string]any{
					"full_name": "Jane Fundmanager",
					"title":     "General Partner",
					"company":   "Alpine VC",
					"email":     []string{"jane@alpine.vc"},
				},
			},
		})
	})

	profile, err := c.FindContact(context.Background(), "Jane Fundmanager", []string{"Alpine VC"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Fundmanager", profile.Name)
	assert.Equal(t, "General Partner", profile.Title)
	assert.Equal(t, "linkedin.com/in/jane", profile.LinkedIn)
	assert.Equal(t, []string{"jane@alpine.vc"}, profile.Emails)
}

func TestFindContact_NoMatch(t *testing.T) {
	c := newTestContactClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"profiles": map[string]any{}})
	})

	_, err := c.FindContact(context.Background(), "Nobody", nil)
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestFindContact_NotFoundStatus(t *testing.T) {
	c := newTestContactClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.FindContact(context.Background(), "Nobody", nil)
	assert.ErrorIs(t, err, domain.ErrContactNotFound)
}

func TestNewClient_RequiresToken(t *testing.T) {
	_, err := NewClient(&config.ContactConfig{})
	assert.Error(t, err)
}
