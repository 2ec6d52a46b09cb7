// ABOUTME: REST implementation of Backend against the hosted data API
// ABOUTME: Follows query pagination links and maps save errors into mutation results
package salesforce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/harperreed/sfmcp/models"
	"golang.org/x/oauth2"
)

type RESTConfig struct {
	LoginURL     string
	ClientID     string
	ClientSecret string
	APIVersion   string
	// HTTPClient is the transport used for login and, wrapped with the
	// token, for every later request. Nil means http.DefaultClient.
	HTTPClient *http.Client
}

type RESTBackend struct {
	oauth      *oauth2.Config
	apiVersion string
	base       *http.Client

	mu      sync.RWMutex
	session *session
}

func NewRESTBackend(cfg RESTConfig) *RESTBackend {
	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return &RESTBackend{
		oauth:      NewOAuthConfig(cfg.LoginURL, cfg.ClientID, cfg.ClientSecret),
		apiVersion: version,
		base:       cfg.HTTPClient,
	}
}

func (b *RESTBackend) Login(ctx context.Context, username, password string) error {
	s, err := passwordLogin(ctx, b.oauth, b.base, username, password)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.session = s
	b.mu.Unlock()
	return nil
}

// APIError is a non-success response from the data API.
type APIError struct {
	Status int
	Errors []models.SaveError
	Body   string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		msgs := make([]string, len(e.Errors))
		for i, se := range e.Errors {
			if se.StatusCode != "" {
				msgs[i] = se.StatusCode + ": " + se.Message
			} else {
				msgs[i] = se.Message
			}
		}
		return fmt.Sprintf("HTTP %d: %s", e.Status, strings.Join(msgs, "; "))
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// apiErrorItem covers both the save-result and the generic error shapes.
type apiErrorItem struct {
	Message    string   `json:"message"`
	ErrorCode  string   `json:"errorCode"`
	StatusCode string   `json:"statusCode"`
	Fields     []string `json:"fields"`
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status, Body: string(body)}
	var items []apiErrorItem
	if json.Unmarshal(body, &items) == nil {
		for _, it := range items {
			code := it.StatusCode
			if code == "" {
				code = it.ErrorCode
			}
			apiErr.Errors = append(apiErr.Errors, models.SaveError{StatusCode: code, Message: it.Message, Fields: it.Fields})
		}
	}
	return apiErr
}

func (b *RESTBackend) current() (*session, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.session == nil {
		return nil, errors.New("no active session")
	}
	return b.session, nil
}

// do sends one request. target is either an absolute URL or a path relative
// to the instance URL. out may be nil when no body is expected.
func (b *RESTBackend) do(ctx context.Context, method, target string, body any, out any) error {
	s, err := b.current()
	if err != nil {
		return err
	}

	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		target = s.instanceURL + target
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (b *RESTBackend) dataPath(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return "/services/data/" + b.apiVersion + "/" + strings.Join(escaped, "/")
}

type queryResponse struct {
	TotalSize      int             `json:"totalSize"`
	Done           bool            `json:"done"`
	Records        []models.Record `json:"records"`
	NextRecordsURL string          `json:"nextRecordsUrl"`
}

func (b *RESTBackend) Query(ctx context.Context, soql string) ([]models.Record, error) {
	target := b.dataPath("query") + "?q=" + url.QueryEscape(soql)
	records := []models.Record{}

	for target != "" {
		var page queryResponse
		if err := b.do(ctx, http.MethodGet, target, nil, &page); err != nil {
			return nil, err
		}
		for _, r := range page.Records {
			delete(r, "attributes")
			records = append(records, r)
		}
		if page.Done {
			break
		}
		target = page.NextRecordsURL
	}
	return records, nil
}

func (b *RESTBackend) Describe(ctx context.Context, object string) (*ObjectDescriptor, error) {
	var desc ObjectDescriptor
	if err := b.do(ctx, http.MethodGet, b.dataPath("sobjects", object, "describe"), nil, &desc); err != nil {
		return nil, err
	}
	return &desc, nil
}

func (b *RESTBackend) DescribeGlobal(ctx context.Context) ([]ObjectDescriptor, error) {
	var global struct {
		SObjects []ObjectDescriptor `json:"sobjects"`
	}
	if err := b.do(ctx, http.MethodGet, b.dataPath("sobjects"), nil, &global); err != nil {
		return nil, err
	}
	return global.SObjects, nil
}

func (b *RESTBackend) Identity(ctx context.Context) (*UserDescriptor, error) {
	s, err := b.current()
	if err != nil {
		return nil, err
	}
	if s.identityURL == "" {
		return nil, errors.New("session has no identity URL")
	}
	var u UserDescriptor
	if err := b.do(ctx, http.MethodGet, s.identityURL, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// saveOutcome turns a rejected save into a failed result. Transport failures
// and responses without a save error list are returned as errors.
func saveOutcome(err error) (*models.MutationResult, error) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 && len(apiErr.Errors) > 0 {
		return &models.MutationResult{Success: false, Errors: apiErr.Errors}, nil
	}
	return nil, err
}

func (b *RESTBackend) Create(ctx context.Context, object string, data map[string]any) (*models.MutationResult, error) {
	var res struct {
		ID      string             `json:"id"`
		Success bool               `json:"success"`
		Errors  []models.SaveError `json:"errors"`
	}
	if err := b.do(ctx, http.MethodPost, b.dataPath("sobjects", object), data, &res); err != nil {
		return saveOutcome(err)
	}
	return &models.MutationResult{Success: res.Success, ID: res.ID, Errors: res.Errors}, nil
}

func (b *RESTBackend) Update(ctx context.Context, object, id string, data map[string]any) (*models.MutationResult, error) {
	if err := b.do(ctx, http.MethodPatch, b.dataPath("sobjects", object, id), data, nil); err != nil {
		return saveOutcome(err)
	}
	return &models.MutationResult{Success: true, ID: id}, nil
}

func (b *RESTBackend) Delete(ctx context.Context, object, id string) (*models.MutationResult, error) {
	if err := b.do(ctx, http.MethodDelete, b.dataPath("sobjects", object, id), nil, nil); err != nil {
		return saveOutcome(err)
	}
	return &models.MutationResult{Success: true, ID: id}, nil
}
