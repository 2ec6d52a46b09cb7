// ABOUTME: In-memory Backend used by tests across packages
// ABOUTME: Routes queries by substring and records every call it receives
package salesforce

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/harperreed/sfmcp/models"
)

type queryRoute struct {
	match   string
	records []models.Record
	err     error
}

// FakeBackend answers queries from routes registered with Respond. The first
// route whose match string occurs in the query wins; unmatched queries return
// DefaultRecords.
type FakeBackend struct {
	mu sync.Mutex

	LoginErr       error
	DefaultRecords []models.Record
	Objects        map[string]ObjectDescriptor
	User           UserDescriptor
	SaveResult     *models.MutationResult
	SaveErr        error

	routes  []queryRoute
	Queries []string
	Saves   []string
	Logins  int
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{Objects: map[string]ObjectDescriptor{}}
}

// Respond registers the rows returned for queries containing match.
func (f *FakeBackend) Respond(match string, records ...models.Record) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, queryRoute{match: match, records: records})
	return f
}

// Fail makes queries containing match return err.
func (f *FakeBackend) Fail(match string, err error) *FakeBackend {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes = append(f.routes, queryRoute{match: match, err: err})
	return f
}

func (f *FakeBackend) LastQuery() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Queries) == 0 {
		return ""
	}
	return f.Queries[len(f.Queries)-1]
}

func (f *FakeBackend) Login(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Logins++
	return f.LoginErr
}

func (f *FakeBackend) Query(_ context.Context, soql string) ([]models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Queries = append(f.Queries, soql)
	for _, r := range f.routes {
		if strings.Contains(soql, r.match) {
			if r.err != nil {
				return nil, r.err
			}
			return append([]models.Record{}, r.records...), nil
		}
	}
	return append([]models.Record{}, f.DefaultRecords...), nil
}

func (f *FakeBackend) Describe(_ context.Context, object string) (*ObjectDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.Objects[object]
	if !ok {
		return nil, fmt.Errorf("NOT_FOUND: The requested resource does not exist: %s", object)
	}
	return &d, nil
}

func (f *FakeBackend) DescribeGlobal(_ context.Context) ([]ObjectDescriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ObjectDescriptor, 0, len(f.Objects))
	for _, d := range f.Objects {
		out = append(out, d)
	}
	// map order is random; keep listings stable for assertions
	slices.SortFunc(out, func(a, b ObjectDescriptor) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (f *FakeBackend) Identity(_ context.Context) (*UserDescriptor, error) {
	u := f.User
	return &u, nil
}

func (f *FakeBackend) save(op, object, id string) (*models.MutationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Saves = append(f.Saves, strings.TrimSpace(op+" "+object+" "+id))
	if f.SaveErr != nil {
		return nil, f.SaveErr
	}
	if f.SaveResult != nil {
		res := *f.SaveResult
		return &res, nil
	}
	if id == "" {
		id = "001000000000001AAA"
	}
	return &models.MutationResult{Success: true, ID: id}, nil
}

func (f *FakeBackend) Create(_ context.Context, object string, _ map[string]any) (*models.MutationResult, error) {
	return f.save("create", object, "")
}

func (f *FakeBackend) Update(_ context.Context, object, id string, _ map[string]any) (*models.MutationResult, error) {
	return f.save("update", object, id)
}

func (f *FakeBackend) Delete(_ context.Context, object, id string) (*models.MutationResult, error) {
	return f.save("delete", object, id)
}

// NewTestClient returns an initialized client over a fresh fake backend.
func NewTestClient(ctx context.Context) (*Client, *FakeBackend) {
	fake := NewFakeBackend()
	client := NewClient(fake, Credentials{Username: "test@example.com", Password: "secret"})
	if err := client.Initialize(ctx); err != nil {
		panic(err)
	}
	return client, fake
}
