// Package contact looks fund managers up against the ContactOut
// people-search API.
package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fundscope/internal/config"
	"fundscope/internal/domain"
)

const defaultEndpoint = "https://api.contactout.com/v1/people/search"

// Client implements port.ContactFinder against ContactOut.
type Client struct {
	apiToken string
	endpoint string
	client   *http.Client
}

func NewClient(cfg *config.ContactConfig) (*Client, error) {
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("contact: api token is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	timeout := 30 * time.Second
	if cfg.TimeoutSecs > 0 {
		timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}
	return &Client{
		apiToken: cfg.APIToken,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type searchRequest struct {
	Name    string   `json:"name"`
	Company []string `json:"company"`
}

type searchResponse struct {
	Profiles map[string]struct {
		FullName string   `json:"full_name"`
		Title    string   `json:"title"`
		Company  string   `json:"company"`
		Email    []string `json:"email"`
		Phone    []string `json:"phone"`
	} `json:"profiles"`
}

// FindContact searches by person name plus company hints and returns
// the first matching profile.
func (c *Client) FindContact(ctx context.Context, name string, companies []string) (*domain.ContactProfile, error) {
	body, err := json.Marshal(searchRequest{Name: name, Company: companies})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("token", c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("contact search: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("contact search: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrContactNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("contact search: status %d: %s", resp.StatusCode, truncateBody(raw))
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("contact search: decoding response: %w", err)
	}
	for url, p := range parsed.Profiles {
		return &domain.ContactProfile{
			Name:     p.FullName,
			Title:    p.Title,
			Company:  p.Company,
			LinkedIn: url,
			Emails:   p.Email,
			Phones:   p.Phone,
		}, nil
	}
	return nil, domain.ErrContactNotFound
}

func truncateBody(raw []byte) string {
	const limit = 256
	if len(raw) > limit {
		return string(raw[:limit]) + "..."
	}
	return string(raw)
}
