package alegra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/juank27/alegra-api/internal"
	"github.com/juank27/alegra-api/internal/config"
)

// ErrNoTemplate is returned when the account has no active default
// support-document numbering template.
var ErrNoTemplate = errors.New("no active default supportDocument number template")

// SubmitError carries the remote failure for one bill submission.
// RemoteID is set when the error payload still references a document.
type SubmitError struct {
	StatusCode int
	Message    string
	RemoteID   *int
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("alegra bill rejected: status=%d %s", e.StatusCode, e.Message)
}

type Client struct {
	cfg        config.Config
	httpClient *http.Client
	limiter    *RateLimiter
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.AlegraTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.AlegraRateLimit),
	}
}

// GetNumberTemplates fetches every numbering template on the account.
func (c *Client) GetNumberTemplates(ctx context.Context) ([]internal.NumberTemplate, error) {
	body, err := c.do(ctx, http.MethodGet, "number-templates", nil)
	if err != nil {
		return nil, err
	}
	var out []internal.NumberTemplate
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decoding number templates: %w", err)
	}
	return out, nil
}

// FindSupportTemplate resolves the template every submitted bill must
// reference: the first active default supportDocument template.
func (c *Client) FindSupportTemplate(ctx context.Context) (internal.NumberTemplate, error) {
	templates, err := c.GetNumberTemplates(ctx)
	if err != nil {
		return internal.NumberTemplate{}, err
	}
	for _, t := range templates {
		if t.DocumentType == "supportDocument" && t.Status == "active" && t.IsDefault {
			return t, nil
		}
	}
	return internal.NumberTemplate{}, ErrNoTemplate
}

type billResponse struct {
	Error string `json:"error"`
	Bill  *struct {
		ID int `json:"id"`
	} `json:"bill"`
	ID int `json:"id"`
}

// CreateBill submits one bill. A non-2xx response comes back as a
// *SubmitError so the caller can keep the batch going.
func (c *Client) CreateBill(ctx context.Context, bill internal.Bill) (int, error) {
	payload, err := json.Marshal(bill)
	if err != nil {
		return 0, err
	}

	body, err := c.do(ctx, http.MethodPost, "bills", payload)
	if err != nil {
		return 0, err
	}

	var parsed billResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, nil
	}
	if parsed.Bill != nil {
		return parsed.Bill.ID, nil
	}
	return parsed.ID, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	if strings.TrimSpace(c.cfg.AlegraEmail) == "" || strings.TrimSpace(c.cfg.AlegraToken) == "" {
		return nil, errors.New("missing ALEGRA_EMAIL or ALEGRA_TOKEN")
	}

	url := strings.TrimRight(c.cfg.AlegraAPIBaseURL, "/") + "/" + endpoint

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	c.limiter.WaitTurn()

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.AlegraEmail, c.cfg.AlegraToken)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	body, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, remoteError(resp.StatusCode, body)
	}
	return body, nil
}

// remoteError extracts the structured error field when present and
// falls back to the raw payload.
func remoteError(status int, body []byte) error {
	var parsed billResponse
	submitErr := &SubmitError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			submitErr.Message = parsed.Error
		}
		if parsed.Bill != nil {
			id := parsed.Bill.ID
			submitErr.RemoteID = &id
		}
	}
	return submitErr
}
