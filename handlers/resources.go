// ABOUTME: MCP resource handlers exposing org metadata and the pipeline
// ABOUTME: Provides read-only access to the user, object catalog, object schemas and pipeline dashboard
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/sfmcp/query"
	"github.com/harperreed/sfmcp/salesforce"
	"github.com/harperreed/sfmcp/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "salesforce://"

type ResourceHandlers struct {
	client *salesforce.Client
	now    func() time.Time
}

func NewResourceHandlers(client *salesforce.Client) *ResourceHandlers {
	return &ResourceHandlers{client: client, now: time.Now}
}

// Resources lists the fixed resources. Object schemas are served through
// ObjectTemplate.
func (h *ResourceHandlers) Resources() []*mcp.Resource {
	return []*mcp.Resource{
		{URI: resourceScheme + "user", Name: "user", Description: "The authenticated user", MIMEType: "application/json"},
		{URI: resourceScheme + "objects", Name: "objects", Description: "First page of the object catalog", MIMEType: "application/json"},
		{URI: resourceScheme + "pipeline", Name: "pipeline", Description: "Current quarter pipeline dashboard", MIMEType: "text/plain"},
	}
}

func (h *ResourceHandlers) ObjectTemplate() *mcp.ResourceTemplate {
	return &mcp.ResourceTemplate{
		URITemplate: resourceScheme + "objects/{name}",
		Name:        "object",
		Description: "Object metadata including every field",
		MIMEType:    "application/json",
	}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, resourceScheme), "/")
	switch {
	case len(parts) == 1 && parts[0] == "user":
		info, err := h.client.GetUserInfo(ctx)
		if err != nil {
			return nil, err
		}
		return jsonResource(uri, info)

	case len(parts) == 1 && parts[0] == "objects":
		page, err := h.client.ListObjects(ctx, nil)
		if err != nil {
			return nil, err
		}
		return jsonResource(uri, page)

	case len(parts) == 2 && parts[0] == "objects" && parts[1] != "":
		obj, err := h.client.DescribeObject(ctx, parts[1], true, nil)
		if err != nil {
			return nil, err
		}
		return jsonResource(uri, obj)

	case len(parts) == 1 && parts[0] == "pipeline":
		now := h.now()
		opps, err := LoadPipeline(ctx, h.client, query.InsightFilters{Timeframe: query.CurrentQuarter}, now)
		if err != nil {
			return nil, err
		}
		return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
			{URI: uri, MIMEType: "text/plain", Text: viz.NewDashboard(opps, now).Render()},
		}}, nil
	}
	return nil, mcp.ResourceNotFoundError(uri)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{URI: uri, MIMEType: "application/json", Text: string(data)},
	}}, nil
}
