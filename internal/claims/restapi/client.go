// Package restapi is the secondary claims backend: a Django-style REST API
// reached over HTTP. List/get/create participate in the fallback sequence;
// the remaining operations are served by this backend only.
package restapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	commonerrors "claims-gateway/internal/common/errors"
	commonhttp "claims-gateway/internal/common/http"
	"claims-gateway/internal/common/logger"
	"claims-gateway/internal/models"
)

const (
	claimsPath = "/claims/api/claims/"
	ragPath    = "/claims/api/rag/"
	healthPath = "/health"
)

// Config carries the REST backend connection settings.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	CSRFCookieName string
}

// Client keeps two HTTP clients so the fallback tiers stay distinct: the
// session client carries cookies (and the CSRF token they may contain), the
// bare client sends nothing stored.
type Client struct {
	baseURL       *url.URL
	sessionClient *commonhttp.Client
	bareClient    *commonhttp.Client
	cookieName    string
	logger        logger.Logger
}

func NewClient(cfg Config, log logger.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", cfg.BaseURL, err)
	}
	cookieName := cfg.CSRFCookieName
	if cookieName == "" {
		cookieName = "csrftoken"
	}
	return &Client{
		baseURL:       base,
		sessionClient: commonhttp.NewClientWithJar(cfg.Timeout),
		bareClient:    commonhttp.NewClient(cfg.Timeout),
		cookieName:    cookieName,
		logger:        log.WithFields(map[string]interface{}{"backend": "restapi"}),
	}, nil
}

// listEnvelope is the paginated response shape of the REST backend.
type listEnvelope struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []models.Claim `json:"results"`
}

// List fetches one page of claims. The backend paginates with the same fixed
// page size as the primary store, so the envelope translates directly.
func (c *Client) List(ctx context.Context, page int, search string, credentialed bool) (*models.ClaimPage, error) {
	query := url.Values{}
	if page > 1 {
		query.Set("page", strconv.Itoa(page))
	}
	if search != "" {
		query.Set("search", search)
	}

	var envelope listEnvelope
	if err := c.getJSON(ctx, claimsPath, query, credentialed, &envelope); err != nil {
		return nil, err
	}

	return &models.ClaimPage{
		Items:       envelope.Results,
		Count:       envelope.Count,
		Page:        page,
		PageSize:    models.PageSize,
		HasNext:     envelope.Next != nil,
		HasPrevious: envelope.Previous != nil,
	}, nil
}

func (c *Client) GetByID(ctx context.Context, id string, credentialed bool) (*models.Claim, error) {
	var claim models.Claim
	if err := c.getJSON(ctx, claimsPath+id+"/", nil, credentialed, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

// Create submits a claim draft. The credentialed form echoes the backend's
// CSRF cookie in the X-CSRFToken header when one has been issued; the
// uncredentialed form sends a bare, cookie-free request.
func (c *Client) Create(ctx context.Context, draft *models.ClaimDraft, credentialed bool) (*models.Claim, error) {
	var claim models.Claim
	if err := c.writeJSON(ctx, http.MethodPost, claimsPath, draft, credentialed, &claim); err != nil {
		return nil, err
	}
	c.logger.Info("claim created via REST backend", map[string]interface{}{
		"claimId":      claim.ID.String(),
		"credentialed": credentialed,
	})
	return &claim, nil
}

func (c *Client) Update(ctx context.Context, id string, claim *models.Claim) (*models.Claim, error) {
	var updated models.Claim
	if err := c.writeJSON(ctx, http.MethodPut, claimsPath+id+"/", claim, true, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.writeJSON(ctx, http.MethodDelete, claimsPath+id+"/", nil, true, nil)
}

// FilterByDamageScore returns claims whose damage_severity_score falls inside
// the optional [min, max] bounds.
func (c *Client) FilterByDamageScore(ctx context.Context, minScore, maxScore *float64) ([]models.Claim, error) {
	return c.filter(ctx, "filter_by_damage_score", "min_score", minScore, "max_score", maxScore)
}

// FilterByRepairAmount returns claims whose repair_amount falls inside the
// optional [min, max] bounds.
func (c *Client) FilterByRepairAmount(ctx context.Context, minAmount, maxAmount *float64) ([]models.Claim, error) {
	return c.filter(ctx, "filter_by_repair_amount", "min_amount", minAmount, "max_amount", maxAmount)
}

func (c *Client) filter(ctx context.Context, action, minKey string, minVal *float64, maxKey string, maxVal *float64) ([]models.Claim, error) {
	query := url.Values{}
	if minVal != nil {
		query.Set(minKey, strconv.FormatFloat(*minVal, 'f', -1, 64))
	}
	if maxVal != nil {
		query.Set(maxKey, strconv.FormatFloat(*maxVal, 'f', -1, 64))
	}

	var claims []models.Claim
	if err := c.getJSON(ctx, claimsPath+action+"/", query, true, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// RagQuery forwards a free-text question to the backend's retrieval endpoint.
func (c *Client) RagQuery(ctx context.Context, query string) (string, error) {
	payload := map[string]string{"query": query}
	var result struct {
		Answer string `json:"answer"`
	}
	if err := c.writeJSON(ctx, http.MethodPost, ragPath, payload, false, &result); err != nil {
		return "", err
	}
	return result.Answer, nil
}

func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	var status models.HealthStatus
	if err := c.getJSON(ctx, healthPath, nil, false, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ==========================
// Internal helpers
// ==========================

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, credentialed bool, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, credentialed)
	if err != nil {
		return commonerrors.NewSecondaryBackendFailedError(path, err)
	}
	return c.do(req, path, credentialed, out)
}

func (c *Client) writeJSON(ctx context.Context, method, path string, payload interface{}, credentialed bool, out interface{}) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return commonerrors.NewSecondaryBackendFailedError(path, err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := c.newRequest(ctx, method, path, nil, body, credentialed)
	if err != nil {
		return commonerrors.NewSecondaryBackendFailedError(path, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, path, credentialed, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, credentialed bool) (*http.Request, error) {
	target := c.baseURL.JoinPath(path)
	if query != nil {
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, err
	}

	if credentialed && method != http.MethodGet {
		if token := c.csrfToken(ctx); token != "" {
			req.Header.Set("X-CSRFToken", token)
		}
	}
	return req, nil
}

// csrfToken returns the CSRF token from the session cookie jar, priming the
// jar with one GET against the listing endpoint when no token has been issued
// yet. The token is optional: a backend that never sets the cookie gets the
// write without the header.
func (c *Client) csrfToken(ctx context.Context) string {
	if ck := c.sessionClient.Cookie(c.baseURL, c.cookieName); ck != nil {
		return ck.Value
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.JoinPath(claimsPath).String(), nil)
	if err != nil {
		return ""
	}
	resp, err := c.sessionClient.Do(req)
	if err != nil {
		c.logger.Debug("csrf token fetch failed", map[string]interface{}{
			"error": err.Error(),
		})
		return ""
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if ck := c.sessionClient.Cookie(c.baseURL, c.cookieName); ck != nil {
		return ck.Value
	}
	return ""
}

// clientFor selects the transport for one attempt: cookies only travel on the
// credentialed tier.
func (c *Client) clientFor(credentialed bool) *commonhttp.Client {
	if credentialed {
		return c.sessionClient
	}
	return c.bareClient
}

func (c *Client) do(req *http.Request, op string, credentialed bool, out interface{}) error {
	resp, err := c.clientFor(credentialed).Do(req)
	if err != nil {
		return commonerrors.NewSecondaryBackendFailedError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return commonerrors.NewSecondaryBackendFailedError(op, err)
	}

	if resp.StatusCode >= 400 {
		return c.mapError(op, resp.StatusCode, body)
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return commonerrors.NewSecondaryBackendFailedError(op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// mapError translates backend status codes into standard errors. A 400 with a
// field -> messages body becomes a remote validation failure so callers can
// stop retrying; a 404 is a terminal not-found.
func (c *Client) mapError(op string, status int, body []byte) error {
	switch status {
	case http.StatusNotFound:
		return commonerrors.NewClaimNotFoundError(op)
	case http.StatusBadRequest:
		var fieldErrors map[string][]string
		if err := json.Unmarshal(body, &fieldErrors); err == nil && len(fieldErrors) > 0 {
			return commonerrors.NewRemoteValidationFailedError(fieldErrors)
		}
		return commonerrors.NewSecondaryBackendFailedError(op, fmt.Errorf("status 400: %s", string(body)))
	default:
		return commonerrors.NewSecondaryBackendFailedError(op, fmt.Errorf("status %d: %s", status, string(body)))
	}
}
