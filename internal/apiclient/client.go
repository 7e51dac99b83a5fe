// =============================================================================
// BRO.AI - API Client
// =============================================================================
//
// Client is the network implementation of the import service, the recipe
// repository and the dashboard feeds. Every call:
//
//   - sends and expects JSON
//   - carries "Authorization: Bearer <token>" when a token is configured
//   - fails after a hard timeout (15 seconds by default)
//
// FAILURES:
//   - Non-2xx responses become *apperrors.APIError with the status, the
//     mapped human message and the decoded body as Details.
//   - Transport failures become an APIError without status.
//   - Timeouts become an APIError without status and with Timeout set.
//
// No call is retried.
//
// =============================================================================

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/ginjaninja78/broai/internal/apperrors"
	"github.com/ginjaninja78/broai/internal/logging"
	"github.com/ginjaninja78/broai/internal/types"
)

// DefaultTimeout is the hard deadline of every call.
const DefaultTimeout = 15 * time.Second

// Endpoint paths.
const (
	PathHealth        = "/health"
	PathKPIs          = "/kpis"
	PathImports       = "/imports"
	PathImportPreview = "/imports/{id}/preview"
	PathImportConfirm = "/imports/{id}/confirm"
	PathRecipes       = "/recipes"
	PathRecipe        = "/recipes/{id}"
	PathSuggestions   = "/suggestions"
)

// Client talks to the BRO.AI API.
type Client struct {
	http   *resty.Client
	logger *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token. An empty token sends no Authorization
// header.
func WithToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.http.SetAuthToken(token)
		}
	}
}

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(DefaultTimeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		logger: logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}

	c.http.OnAfterResponse(func(_ *resty.Client, r *resty.Response) error {
		c.logger.Debugf("%s %s -> %d (%s)", r.Request.Method, r.Request.URL, r.StatusCode(), r.Time())
		return nil
	})
	return c
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do executes a request and converts every failure into an *APIError.
func (c *Client) do(req *resty.Request, method, path string) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		return transportError(err)
	}
	if resp.IsError() {
		return responseError(resp)
	}
	return nil
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return apperrors.NewTimeoutError()
	}
	return apperrors.NewNetworkError(err)
}

func responseError(resp *resty.Response) error {
	status := resp.StatusCode()
	return apperrors.NewAPIError(status, http.StatusText(status), decodeDetails(resp))
}

// decodeDetails returns the error body as decoded JSON when the server says
// it is JSON, as text otherwise, and nil when there is no body.
func decodeDetails(resp *resty.Response) any {
	body := resp.Body()
	if len(body) == 0 {
		return nil
	}
	if strings.Contains(resp.Header().Get("Content-Type"), "application/json") {
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			return v
		}
	}
	return string(body)
}

// =============================================================================
// HEALTH
// =============================================================================

// Health checks that the API is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.do(c.request(ctx), http.MethodGet, PathHealth)
}

// =============================================================================
// IMPORTS
// =============================================================================

// CreateImport registers a new import job.
func (c *Client) CreateImport(ctx context.Context, req types.CreateImportRequest) (types.ImportJob, error) {
	var job types.ImportJob
	err := c.do(c.request(ctx).SetBody(req).SetResult(&job), http.MethodPost, PathImports)
	return job, err
}

// GetImportPreview loads the parsed columns and first rows of a job.
func (c *Client) GetImportPreview(ctx context.Context, jobID string) (types.ImportPreview, error) {
	var preview types.ImportPreview
	err := c.do(c.request(ctx).SetPathParam("id", jobID).SetResult(&preview), http.MethodPost, PathImportPreview)
	return preview, err
}

// ConfirmImport commits a job with its column mappings.
func (c *Client) ConfirmImport(ctx context.Context, jobID string, req types.ConfirmImportRequest) (types.OKResponse, error) {
	var ok types.OKResponse
	err := c.do(c.request(ctx).SetPathParam("id", jobID).SetBody(req).SetResult(&ok), http.MethodPost, PathImportConfirm)
	return ok, err
}

// =============================================================================
// RECIPES
// =============================================================================

// ListRecipes returns every recipe.
func (c *Client) ListRecipes(ctx context.Context) ([]types.Recipe, error) {
	var list []types.Recipe
	err := c.do(c.request(ctx).SetResult(&list), http.MethodGet, PathRecipes)
	return list, err
}

// GetRecipe returns one recipe. A missing recipe matches apperrors.ErrNotFound.
func (c *Client) GetRecipe(ctx context.Context, id string) (types.Recipe, error) {
	var r types.Recipe
	err := c.do(c.request(ctx).SetPathParam("id", id).SetResult(&r), http.MethodGet, PathRecipe)
	return r, err
}

// SaveRecipe creates the recipe with POST when it has no ID and updates it
// with PUT otherwise.
func (c *Client) SaveRecipe(ctx context.Context, r types.Recipe) (types.Recipe, error) {
	var saved types.Recipe
	req := c.request(ctx).SetBody(r).SetResult(&saved)
	var err error
	if r.ID == "" {
		err = c.do(req, http.MethodPost, PathRecipes)
	} else {
		err = c.do(req.SetPathParam("id", r.ID), http.MethodPut, PathRecipe)
	}
	return saved, err
}

// DeleteRecipe removes a recipe.
func (c *Client) DeleteRecipe(ctx context.Context, id string) (types.OKResponse, error) {
	var ok types.OKResponse
	err := c.do(c.request(ctx).SetPathParam("id", id).SetResult(&ok), http.MethodDelete, PathRecipe)
	return ok, err
}

// =============================================================================
// DASHBOARD
// =============================================================================

// GetKPIs returns the KPI cards of a period. Empty parameters are not sent.
func (c *Client) GetKPIs(ctx context.Context, params types.KPIParams) (types.KPIs, error) {
	q := map[string]string{}
	for k, v := range map[string]string{
		"from":        params.From,
		"to":          params.To,
		"compareFrom": params.CompareFrom,
		"compareTo":   params.CompareTo,
	} {
		if v != "" {
			q[k] = v
		}
	}

	var kpis types.KPIs
	err := c.do(c.request(ctx).SetQueryParams(q).SetResult(&kpis), http.MethodGet, PathKPIs)
	return kpis, err
}

// GetSuggestions returns the data-driven suggestions.
func (c *Client) GetSuggestions(ctx context.Context) ([]types.Suggestion, error) {
	var list []types.Suggestion
	err := c.do(c.request(ctx).SetResult(&list), http.MethodGet, PathSuggestions)
	return list, err
}
