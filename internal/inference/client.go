package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/animus-labs/infersync/internal/domain"
	"golang.org/x/oauth2/clientcredentials"
)

// Invoker issues one call of a remote operation against a batch of rows.
// Implementations must not retry: retries are the outer loop's job.
type Invoker interface {
	Invoke(ctx context.Context, op Operation, model string, rows []domain.Row, params domain.Params) ([]domain.Row, error)
}

// Client invokes operations over HTTP. When client credentials are
// configured, requests carry an OAuth2 bearer token.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	if strings.TrimSpace(cfg.ClientID) != "" {
		cc := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		httpClient = cc.Client(ctx)
		httpClient.Timeout = cfg.RequestTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: httpClient,
	}, nil
}

type invokeRequest struct {
	Model  string        `json:"model"`
	Rows   []domain.Row  `json:"rows"`
	Config domain.Params `json:"config"`
}

type invokeResponse struct {
	Rows []domain.Row `json:"rows"`
}

// Invoke posts the batch to the provider and returns one candidate row
// per input row. A response with a mismatched row count is an error:
// the merge writer cannot attribute results otherwise.
func (c *Client) Invoke(ctx context.Context, op Operation, model string, rows []domain.Row, params domain.Params) ([]domain.Row, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("inference client not initialized")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if params == nil {
		params = domain.Params{}
	}

	body, err := json.Marshal(invokeRequest{
		Model:  strings.TrimSpace(model),
		Rows:   rows,
		Config: params,
	})
	if err != nil {
		return nil, fmt.Errorf("encode invoke request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/operations/%s:invoke", c.baseURL, op.Name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build invoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invoke %s: %w", op.Name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("invoke %s: status %d: %s", op.Name, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var decoded invokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode invoke response: %w", err)
	}
	if len(decoded.Rows) != len(rows) {
		return nil, fmt.Errorf("invoke %s: sent %d rows, received %d results", op.Name, len(rows), len(decoded.Rows))
	}
	return decoded.Rows, nil
}
