// ABOUTME: Backend abstraction over the hosted records service
// ABOUTME: Raw descriptor shapes returned before simplification
package salesforce

import (
	"context"

	"github.com/harperreed/sfmcp/models"
)

// Backend is the remote records service. Implementations perform one network
// round trip (or a short chain of them for query paging) per call.
type Backend interface {
	Login(ctx context.Context, username, password string) error
	Query(ctx context.Context, soql string) ([]models.Record, error)
	Describe(ctx context.Context, object string) (*ObjectDescriptor, error)
	DescribeGlobal(ctx context.Context) ([]ObjectDescriptor, error)
	Identity(ctx context.Context) (*UserDescriptor, error)
	Create(ctx context.Context, object string, data map[string]any) (*models.MutationResult, error)
	Update(ctx context.Context, object, id string, data map[string]any) (*models.MutationResult, error)
	Delete(ctx context.Context, object, id string) (*models.MutationResult, error)
}

type FieldDescriptor struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	Type         string `json:"type"`
	Custom       bool   `json:"custom"`
	Nillable     bool   `json:"nillable"`
	Updateable   bool   `json:"updateable"`
	Createable   bool   `json:"createable"`
	Length       int    `json:"length"`
	DefaultValue any    `json:"defaultValue"`
}

type ObjectDescriptor struct {
	Name       string            `json:"name"`
	Label      string            `json:"label"`
	KeyPrefix  string            `json:"keyPrefix"`
	Custom     bool              `json:"custom"`
	Createable bool              `json:"createable"`
	Updateable bool              `json:"updateable"`
	Deletable  bool              `json:"deletable"`
	Queryable  bool              `json:"queryable"`
	Searchable bool              `json:"searchable"`
	Fields     []FieldDescriptor `json:"fields"`
}

// UserDescriptor mirrors the identity service response.
type UserDescriptor struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	Email          string `json:"email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Active         bool   `json:"active"`
}
