// ABOUTME: Generic record MCP tool handlers
// ABOUTME: Implements execute_query, describe_object, the CRUD tools, get_user_info and list_objects
package handlers

import (
	"context"

	"github.com/harperreed/sfmcp/models"
	"github.com/harperreed/sfmcp/salesforce"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type RecordHandlers struct {
	client *salesforce.Client
}

func NewRecordHandlers(client *salesforce.Client) *RecordHandlers {
	return &RecordHandlers{client: client}
}

// pageParams returns nil when the caller gave neither value, so the query is
// sent unchanged.
func pageParams(size, number *int) *models.PaginationParams {
	if size == nil && number == nil {
		return nil
	}
	var p models.PaginationParams
	if size != nil {
		p.PageSize = *size
	}
	if number != nil {
		p.PageNumber = *number
	}
	return &p
}

type ExecuteQueryInput struct {
	Query      string `json:"query" jsonschema:"SOQL query to execute. Custom fields use their API name, e.g. Project_Status__c" validate:"required"`
	PageSize   *int   `json:"pageSize,omitempty" jsonschema:"Number of records per page (default 25)" validate:"omitempty,gte=1,lte=2000"`
	PageNumber *int   `json:"pageNumber,omitempty" jsonschema:"Page number to retrieve (default 1)" validate:"omitempty,gte=1"`
}

func (h *RecordHandlers) ExecuteQuery(ctx context.Context, _ *mcp.CallToolRequest, input ExecuteQueryInput) (*mcp.CallToolResult, any, error) {
	result, err := h.client.ExecuteQuery(ctx, input.Query, pageParams(input.PageSize, input.PageNumber))
	if err != nil {
		return nil, nil, err
	}
	return envelope(result)
}

type DescribeObjectInput struct {
	ObjectName    string `json:"objectName" jsonschema:"API name of the object" validate:"required"`
	IncludeFields bool   `json:"includeFields,omitempty" jsonschema:"Whether to include field metadata (default false)"`
	PageSize      *int   `json:"pageSize,omitempty" jsonschema:"Number of fields per page when includeFields is true" validate:"omitempty,gte=1"`
	PageNumber    *int   `json:"pageNumber,omitempty" jsonschema:"Field page to retrieve when includeFields is true" validate:"omitempty,gte=1"`
}

func (h *RecordHandlers) DescribeObject(ctx context.Context, _ *mcp.CallToolRequest, input DescribeObjectInput) (*mcp.CallToolResult, any, error) {
	obj, err := h.client.DescribeObject(ctx, input.ObjectName, input.IncludeFields, pageParams(input.PageSize, input.PageNumber))
	if err != nil {
		return nil, nil, err
	}
	return envelope(obj)
}

type CreateRecordInput struct {
	ObjectName string         `json:"objectName" jsonschema:"API name of the object" validate:"required"`
	Data       map[string]any `json:"data" jsonschema:"Field values keyed by API name, e.g. {\"Name\": \"Test\", \"Custom_Field__c\": \"Value\"}" validate:"required,min=1"`
}

func (h *RecordHandlers) CreateRecord(ctx context.Context, _ *mcp.CallToolRequest, input CreateRecordInput) (*mcp.CallToolResult, any, error) {
	res, err := h.client.CreateRecord(ctx, input.ObjectName, input.Data)
	if err != nil {
		return nil, nil, err
	}
	return envelope(res)
}

type UpdateRecordInput struct {
	ObjectName string         `json:"objectName" jsonschema:"API name of the object" validate:"required"`
	RecordID   string         `json:"recordId" jsonschema:"ID of the record to update" validate:"required"`
	Data       map[string]any `json:"data" jsonschema:"Field values to change, keyed by API name" validate:"required,min=1"`
}

func (h *RecordHandlers) UpdateRecord(ctx context.Context, _ *mcp.CallToolRequest, input UpdateRecordInput) (*mcp.CallToolResult, any, error) {
	res, err := h.client.UpdateRecord(ctx, input.ObjectName, input.RecordID, input.Data)
	if err != nil {
		return nil, nil, err
	}
	return envelope(res)
}

type DeleteRecordInput struct {
	ObjectName string `json:"objectName" jsonschema:"API name of the object" validate:"required"`
	RecordID   string `json:"recordId" jsonschema:"ID of the record to delete" validate:"required"`
}

func (h *RecordHandlers) DeleteRecord(ctx context.Context, _ *mcp.CallToolRequest, input DeleteRecordInput) (*mcp.CallToolResult, any, error) {
	res, err := h.client.DeleteRecord(ctx, input.ObjectName, input.RecordID)
	if err != nil {
		return nil, nil, err
	}
	return envelope(res)
}

type GetUserInfoInput struct{}

func (h *RecordHandlers) GetUserInfo(ctx context.Context, _ *mcp.CallToolRequest, _ GetUserInfoInput) (*mcp.CallToolResult, any, error) {
	info, err := h.client.GetUserInfo(ctx)
	if err != nil {
		return nil, nil, err
	}
	return envelope(info)
}

type ListObjectsInput struct {
	PageSize   *int `json:"pageSize,omitempty" jsonschema:"Number of objects per page (default 25)" validate:"omitempty,gte=1"`
	PageNumber *int `json:"pageNumber,omitempty" jsonschema:"Page number to retrieve (default 1)" validate:"omitempty,gte=1"`
}

func (h *RecordHandlers) ListObjects(ctx context.Context, _ *mcp.CallToolRequest, input ListObjectsInput) (*mcp.CallToolResult, any, error) {
	page, err := h.client.ListObjects(ctx, pageParams(input.PageSize, input.PageNumber))
	if err != nil {
		return nil, nil, err
	}
	return envelope(page)
}
