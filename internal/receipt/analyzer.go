// Package receipt uploads receipt images to the backend analysis
// endpoint and turns the response into a transaction suggestion.
package receipt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/remote"
	"github.com/shopspring/decimal"
)

// Suggestion is what the analysis service extracted from the image.
// Any field may be empty when the service could not read it.
type Suggestion struct {
	Amount   decimal.Decimal `json:"amount"`
	Merchant string          `json:"merchant"`
	Date     time.Time       `json:"date"`
}

// Analyzer posts receipt images to the backend. Analysis is an
// online-only feature: there is no cached fallback, callers are
// expected to check connectivity first.
type Analyzer struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	accessToken string
}

const defaultRequestTimeout = 10 * time.Second

func NewAnalyzer(baseURL string, timeout time.Duration) *Analyzer {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Analyzer{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// SetAccessToken installs the session token used for the bearer header.
func (a *Analyzer) SetAccessToken(token string) {
	a.accessToken = token
}

// Analyze uploads the image and returns the extracted suggestion.
func (a *Analyzer) Analyze(ctx context.Context, filename string, image io.Reader) (*Suggestion, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish upload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		a.baseURL+"/api/v1/receipts/analyze", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if a.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+a.accessToken)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", remote.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, remote.ErrUnauthenticated
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", remote.ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("analysis failed: status %d", resp.StatusCode)
	}

	var s Suggestion
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode suggestion: %w", err)
	}
	return &s, nil
}
