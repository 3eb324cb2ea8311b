package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

const defaultRequestTimeout = 10 * time.Second

// RESTClient implements AuthAPI, TransactionAPI, CategoryAPI and
// BudgetAPI against the backend's JSON API. Every request carries the
// session bearer token and runs under its own timeout so a hanging
// backend call cannot block the online/offline fallback.
type RESTClient struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	accessToken string
}

func NewRESTClient(baseURL string, timeout time.Duration) *RESTClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &RESTClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// SetAccessToken installs a session token obtained elsewhere (e.g. a
// previously persisted session).
func (c *RESTClient) SetAccessToken(token string) { c.accessToken = token }

// AccessToken returns the current session token, empty when logged out.
func (c *RESTClient) AccessToken() string { return c.accessToken }

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// identityFromToken reads the claims of the session token. The token
// signature is the server's concern; the client only needs sub/email
// and the expiry.
func identityFromToken(token string, now time.Time) (*Identity, error) {
	claims := &sessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnauthenticated, err)
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(now) {
		return nil, fmt.Errorf("%w: token expired", ErrUnauthenticated)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return &Identity{UserID: claims.Subject, Email: claims.Email}, nil
}

func (c *RESTClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp); err != nil {
		return err
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func mapStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthenticated
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(b))
	}
}

// --- AuthAPI ---

func (c *RESTClient) Login(ctx context.Context, email, password string) (*Identity, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/login", nil, body, &resp); err != nil {
		return nil, err
	}
	c.accessToken = resp.AccessToken
	return identityFromToken(c.accessToken, time.Now())
}

func (c *RESTClient) CurrentUser(ctx context.Context) (*Identity, error) {
	if c.accessToken == "" {
		return nil, ErrUnauthenticated
	}
	return identityFromToken(c.accessToken, time.Now())
}

func (c *RESTClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/v1/health", nil, nil, nil)
}

// --- TransactionAPI ---

func (c *RESTClient) FetchAll(ctx context.Context, scopeID string) ([]models.Transaction, error) {
	query := url.Values{"scope_id": []string{scopeID}}
	var result []models.Transaction
	if err := c.do(ctx, http.MethodGet, "/api/v1/transactions", query, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *RESTClient) Insert(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
	// The server assigns ids and timestamps; never send a local one.
	tx.ID = ""
	tx.IsOffline = false

	result := &models.Transaction{}
	if err := c.do(ctx, http.MethodPost, "/api/v1/transactions", nil, tx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *RESTClient) Update(ctx context.Context, id string, upd models.TransactionUpdate) (*models.Transaction, error) {
	result := &models.Transaction{}
	if err := c.do(ctx, http.MethodPatch, "/api/v1/transactions/"+url.PathEscape(id), nil, upd, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *RESTClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/transactions/"+url.PathEscape(id), nil, nil, nil)
}

// --- CategoryAPI ---
//
// Category methods carry a Category suffix so one client can satisfy
// all the per-resource interfaces at once.

type categoryClient struct{ c *RESTClient }

// Categories exposes the client as a CategoryAPI.
func (c *RESTClient) Categories() CategoryAPI { return categoryClient{c} }

func (cc categoryClient) FetchAll(ctx context.Context) ([]models.Category, error) {
	var result []models.Category
	if err := cc.c.do(ctx, http.MethodGet, "/api/v1/categories", nil, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (cc categoryClient) Insert(ctx context.Context, cat models.Category) (*models.Category, error) {
	cat.ID = ""
	cat.IsOffline = false

	result := &models.Category{}
	if err := cc.c.do(ctx, http.MethodPost, "/api/v1/categories", nil, cat, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (cc categoryClient) Update(ctx context.Context, id string, upd models.CategoryUpdate) (*models.Category, error) {
	result := &models.Category{}
	if err := cc.c.do(ctx, http.MethodPatch, "/api/v1/categories/"+url.PathEscape(id), nil, upd, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (cc categoryClient) Delete(ctx context.Context, id string) error {
	return cc.c.do(ctx, http.MethodDelete, "/api/v1/categories/"+url.PathEscape(id), nil, nil, nil)
}

// --- BudgetAPI ---

type budgetClient struct{ c *RESTClient }

// Budget exposes the client as a BudgetAPI.
func (c *RESTClient) Budget() BudgetAPI { return budgetClient{c} }

func (bc budgetClient) Fetch(ctx context.Context, scopeID string) (*models.Budget, error) {
	query := url.Values{"scope_id": []string{scopeID}}
	result := &models.Budget{}
	if err := bc.c.do(ctx, http.MethodGet, "/api/v1/budget", query, nil, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (bc budgetClient) Set(ctx context.Context, b models.Budget) (*models.Budget, error) {
	b.IsOffline = false

	result := &models.Budget{}
	if err := bc.c.do(ctx, http.MethodPut, "/api/v1/budget", nil, b, result); err != nil {
		return nil, err
	}
	return result, nil
}
