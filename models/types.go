// ABOUTME: Data models shared by the Salesforce client, analytics and tool handlers
// ABOUTME: Defines pagination shapes, simplified metadata and mutation results
package models

const (
	DefaultPageSize   = 25
	DefaultPageNumber = 1
)

// PaginationParams selects one page of a result set. Zero values mean "use the default".
type PaginationParams struct {
	PageSize   int `json:"pageSize,omitempty"`
	PageNumber int `json:"pageNumber,omitempty"`
}

// Normalized returns the params with defaults applied to non-positive values.
func (p PaginationParams) Normalized() PaginationParams {
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageNumber <= 0 {
		p.PageNumber = DefaultPageNumber
	}
	return p
}

type PaginatedResult[T any] struct {
	TotalCount int `json:"totalCount"`
	PageSize   int `json:"pageSize"`
	PageNumber int `json:"pageNumber"`
	TotalPages int `json:"totalPages"`
	Results    []T `json:"results"`
}

type PageInfo struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

type SimplifiedField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Custom   bool   `json:"custom"`
	Required bool   `json:"required"`
}

// SimplifiedObject is the minimal projection of an object descriptor.
// Fields is nil unless the caller asked for fields; an object without fields
// that was described with fields still reports an empty list.
type SimplifiedObject struct {
	Name        string            `json:"name"`
	Label       string            `json:"label"`
	Custom      bool              `json:"custom"`
	Createable  bool              `json:"createable"`
	Updateable  bool              `json:"updateable"`
	Deletable   bool              `json:"deletable"`
	Queryable   bool              `json:"queryable"`
	Fields      []SimplifiedField `json:"fields,omitzero"`
	TotalFields *int              `json:"totalFields,omitempty"`
	PageInfo    *PageInfo         `json:"pageInfo,omitempty"`
}

type SimplifiedUserInfo struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	DisplayName    string `json:"displayName"`
	Email          string `json:"email"`
	OrganizationID string `json:"organizationId"`
}

// SaveError is a single error reported by the backend for a create, update or delete.
type SaveError struct {
	StatusCode string   `json:"statusCode,omitempty"`
	Message    string   `json:"message"`
	Fields     []string `json:"fields,omitempty"`
}

type MutationResult struct {
	Success bool        `json:"success"`
	ID      string      `json:"id,omitempty"`
	Errors  []SaveError `json:"errors"`
}
