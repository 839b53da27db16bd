// Package httpfs talks to a Syncfusion-style file-manager server. The
// server exposes a single POST endpoint for directory listings and a
// form-encoded /Download endpoint for file content.
package httpfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"fundscope/internal/config"
	"fundscope/internal/domain"
	"fundscope/internal/filestore"
	"fundscope/internal/port"
)

const defaultTimeout = 120 * time.Second

func init() {
	filestore.RegisterProvider("httpfs", func(cfg *config.Config) (port.FileStore, error) {
		return NewClient(&cfg.FileStore)
	})
}

// Client implements port.FileStore against a file-manager server.
type Client struct {
	endpoint string
	client   *http.Client
}

func NewClient(cfg *config.FileStoreConfig) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("httpfs: endpoint is required")
	}
	timeout := defaultTimeout
	if cfg.TimeoutSecs > 0 {
		timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type readRequest struct {
	Action          string `json:"action"`
	Path            string `json:"path"`
	ShowHiddenItems bool   `json:"showHiddenItems"`
	Data            []any  `json:"data"`
}

type readEntry struct {
	Name       string `json:"name"`
	IsFile     bool   `json:"isFile"`
	FilterPath string `json:"filterPath"`
	Type       string `json:"type"`
}

type readResponse struct {
	Files []readEntry `json:"files"`
}

// ListTree walks the store from the root and returns the full folder
// hierarchy. Only names are populated; content is fetched lazily via
// Download.
func (c *Client) ListTree(ctx context.Context) (*domain.FolderNode, error) {
	root := &domain.FolderNode{Name: "/"}
	if err := c.listInto(ctx, "/", root); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTreeListFailed, err)
	}
	return root, nil
}

func (c *Client) listInto(ctx context.Context, dirPath string, node *domain.FolderNode) error {
	entries, err := c.readDir(ctx, dirPath)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsFile {
			node.Children = append(node.Children, domain.DocumentEntry(domain.DocumentRecord{
				Name: entry.Name,
				Path: joinStorePath(dirPath, entry.Name),
			}))
			continue
		}
		child := &domain.FolderNode{Name: entry.Name}
		if err := c.listInto(ctx, joinStorePath(dirPath, entry.Name), child); err != nil {
			return err
		}
		node.Children = append(node.Children, domain.FolderEntry(child))
	}
	return nil
}

func (c *Client) readDir(ctx context.Context, dirPath string) ([]readEntry, error) {
	body, err := json.Marshal(readRequest{
		Action:          "read",
		Path:            dirPath,
		ShowHiddenItems: false,
		Data:            []any{},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dirPath, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dirPath, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("read %s: status %d", dirPath, resp.StatusCode)
	}

	var parsed readResponse
	if err := decodeListing(raw, &parsed); err != nil {
		return nil, fmt.Errorf("read %s: %w", dirPath, err)
	}
	return parsed.Files, nil
}

// decodeListing handles the server's double-encoded responses: the body
// is sometimes a JSON string whose contents are the actual JSON object.
func decodeListing(raw []byte, out *readResponse) error {
	var inner string
	if err := json.Unmarshal(raw, &inner); err == nil {
		return json.Unmarshal([]byte(inner), out)
	}
	return json.Unmarshal(raw, out)
}

// Download fetches one file by its store-relative path using the
// form-encoded /Download protocol the server expects.
func (c *Client) Download(ctx context.Context, relativePath string) ([]byte, error) {
	dir, name := path.Split(relativePath)
	if dir == "" {
		dir = "/"
	}
	if !strings.HasSuffix(dir, "/") {
		dir += "/"
	}

	payload, err := json.Marshal(map[string]any{
		"action": "download",
		"path":   dir,
		"names":  []string{name},
		"data": []map[string]any{{
			"name":       name,
			"isFile":     true,
			"filterPath": dir,
			"type":       path.Ext(name),
		}},
	})
	if err != nil {
		return nil, err
	}

	form := url.Values{"downloadInput": {string(payload)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/Download", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDownloadFailed, relativePath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: status %d", domain.ErrDownloadFailed, relativePath, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrDownloadFailed, relativePath, err)
	}
	return data, nil
}

func joinStorePath(dir, name string) string {
	if dir == "/" || dir == "" {
		return "/" + name
	}
	return strings.TrimRight(dir, "/") + "/" + name
}
