// ABOUTME: Session-holding client that wraps a Backend with pagination and simplification
// ABOUTME: Every failure is wrapped with the error kind of the failing operation
package salesforce

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/harperreed/sfmcp/models"
	"github.com/harperreed/sfmcp/query"
)

type Credentials struct {
	Username string
	Password string
}

// Client holds one authenticated session. Initialize must succeed before any
// other call; a failed Initialize leaves the client unusable.
type Client struct {
	backend     Backend
	creds       Credentials
	initialized atomic.Bool
}

func NewClient(backend Backend, creds Credentials) *Client {
	return &Client{backend: backend, creds: creds}
}

// Initialize logs in with the configured credentials. Calling it again after
// success is a no-op.
func (c *Client) Initialize(ctx context.Context) error {
	if c.initialized.Load() {
		return nil
	}
	var missing []string
	if strings.TrimSpace(c.creds.Username) == "" {
		missing = append(missing, "username")
	}
	if c.creds.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return wrap(ErrMissingCredentials, errors.New(strings.Join(missing, ", ")))
	}

	if err := c.backend.Login(ctx, c.creds.Username, c.creds.Password); err != nil {
		return wrap(ErrLogin, err)
	}
	c.initialized.Store(true)
	return nil
}

func (c *Client) Initialized() bool {
	return c.initialized.Load()
}

func (c *Client) ready() error {
	if !c.initialized.Load() {
		return ErrNotInitialized
	}
	return nil
}

// ExecuteQuery runs soql and returns one page of the rows. When page is
// non-nil the query gets LIMIT/OFFSET appended (unless already present) and
// the returned rows are paginated again locally; otherwise the default page
// of all returned rows is used.
func (c *Client) ExecuteQuery(ctx context.Context, soql string, page *models.PaginationParams) (*models.PaginatedResult[models.Record], error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	records, err := c.backend.Query(ctx, query.AddPagination(soql, page))
	if err != nil {
		return nil, wrap(ErrQuery, err)
	}

	var params models.PaginationParams
	if page != nil {
		params = *page
	}
	result := query.Paginate(records, params)
	return &result, nil
}

// QueryAll runs soql unchanged and returns every row. Analytics callers use
// this so their populations are not cut to a single page.
func (c *Client) QueryAll(ctx context.Context, soql string) ([]models.Record, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	records, err := c.backend.Query(ctx, soql)
	if err != nil {
		return nil, wrap(ErrQuery, err)
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

// QueryOne runs soql and returns its first row, or ErrNotFound.
func (c *Client) QueryOne(ctx context.Context, soql, object, id string) (models.Record, error) {
	records, err := c.QueryAll(ctx, soql)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, NotFound(object, id)
	}
	return records[0], nil
}

// DescribeObject returns the simplified descriptor for name. Fields are only
// attached when includeFields is set, and are paginated when page is non-nil.
func (c *Client) DescribeObject(ctx context.Context, name string, includeFields bool, page *models.PaginationParams) (*models.SimplifiedObject, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	desc, err := c.backend.Describe(ctx, name)
	if err != nil {
		return nil, wrap(ErrDescribe, err)
	}

	obj := SimplifyObject(*desc, includeFields)
	if includeFields && page != nil {
		obj = PaginateFields(obj, *page)
	}
	return &obj, nil
}

func (c *Client) CreateRecord(ctx context.Context, object string, data map[string]any) (*models.MutationResult, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	res, err := c.backend.Create(ctx, object, data)
	if err != nil {
		return nil, wrap(ErrCreate, err)
	}
	return normalizeResult(res, ""), nil
}

func (c *Client) UpdateRecord(ctx context.Context, object, id string, data map[string]any) (*models.MutationResult, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	res, err := c.backend.Update(ctx, object, id, data)
	if err != nil {
		return nil, wrap(ErrUpdate, err)
	}
	return normalizeResult(res, id), nil
}

func (c *Client) DeleteRecord(ctx context.Context, object, id string) (*models.MutationResult, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	res, err := c.backend.Delete(ctx, object, id)
	if err != nil {
		return nil, wrap(ErrDelete, err)
	}
	return normalizeResult(res, id), nil
}

func (c *Client) GetUserInfo(ctx context.Context) (*models.SimplifiedUserInfo, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	u, err := c.backend.Identity(ctx)
	if err != nil {
		return nil, wrap(ErrUserInfo, err)
	}
	info := SimplifyUser(*u)
	return &info, nil
}

// ListObjects returns one page of simplified object descriptors, without fields.
func (c *Client) ListObjects(ctx context.Context, page *models.PaginationParams) (*models.PaginatedResult[models.SimplifiedObject], error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	descs, err := c.backend.DescribeGlobal(ctx)
	if err != nil {
		return nil, wrap(ErrListObjects, err)
	}

	objects := make([]models.SimplifiedObject, len(descs))
	for i, d := range descs {
		objects[i] = SimplifyObject(d, false)
	}

	var params models.PaginationParams
	if page != nil {
		params = *page
	}
	result := query.Paginate(objects, params)
	return &result, nil
}

// normalizeResult guarantees a non-nil errors list and fills in the id for
// update and delete results that come back without one.
func normalizeResult(res *models.MutationResult, id string) *models.MutationResult {
	if res == nil {
		res = &models.MutationResult{Success: true}
	}
	if res.Errors == nil {
		res.Errors = []models.SaveError{}
	}
	if res.ID == "" && res.Success {
		res.ID = id
	}
	return res
}
