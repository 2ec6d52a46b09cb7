// ABOUTME: Tests for CLI commands
// ABOUTME: Runs each command against the in-memory backend and checks the rendered output
package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/sfmcp/config"
	"github.com/harperreed/sfmcp/models"
	"github.com/harperreed/sfmcp/salesforce"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCommand(t *testing.T) {
	ctx := context.Background()
	client, fake := salesforce.NewTestClient(ctx)
	fake.DefaultRecords = []models.Record{
		{"attributes": map[string]any{"type": "Account"}, "Id": "001A", "Name": "Acme", "AnnualRevenue": 1500000.0,
			"Owner": map[string]any{"attributes": map[string]any{"type": "User"}, "Name": "Dana"}},
		{"Id": "001B", "Name": "Globex", "AnnualRevenue": nil},
	}

	var out bytes.Buffer
	err := QueryCommand(ctx, client, []string{"SELECT", "Id,", "Name", "FROM", "Account"}, &out)
	require.NoError(t, err)

	assert.Equal(t, "SELECT Id, Name FROM Account", fake.LastQuery())
	text := out.String()
	assert.Contains(t, text, "Acme")
	assert.Contains(t, text, "Globex")
	assert.Contains(t, text, "1500000")
	assert.Contains(t, text, `{"Name":"Dana"}`)
	assert.NotContains(t, text, "attributes")
	assert.Contains(t, text, "Page 1 of 1 (2 records)")
	assert.Less(t, strings.Index(text, "Id"), strings.Index(text, "AnnualRevenue"))
}

func TestQueryCommandPagingAndJSON(t *testing.T) {
	ctx := context.Background()
	client, fake := salesforce.NewTestClient(ctx)

	var out bytes.Buffer
	err := QueryCommand(ctx, client, []string{"--page-size", "5", "--page", "2", "--json", "SELECT Id FROM Account"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "SELECT Id FROM Account LIMIT 5 OFFSET 5", fake.LastQuery())
	assert.Contains(t, out.String(), `"totalCount": 0`)

	assert.EqualError(t, QueryCommand(ctx, client, nil, &out), "query text required")
}

func TestDescribeCommand(t *testing.T) {
	ctx := context.Background()
	client, fake := salesforce.NewTestClient(ctx)
	fake.Objects["Project__c"] = salesforce.ObjectDescriptor{
		Name: "Project__c", Label: "Project", Custom: true, Queryable: true,
		Fields: []salesforce.FieldDescriptor{
			{Name: "Name", Label: "Project Name", Type: "string", Nillable: false, Createable: true},
			{Name: "Status__c", Label: "Status", Type: "picklist", Custom: true, Nillable: true},
		},
	}

	var out bytes.Buffer
	require.NoError(t, DescribeCommand(ctx, client, []string{"--fields", "Project__c"}, &out))
	text := out.String()
	assert.Contains(t, text, "Project (Project__c) custom object")
	assert.Contains(t, text, "Status__c")
	assert.Contains(t, text, "picklist")

	out.Reset()
	require.NoError(t, DescribeCommand(ctx, client, []string{"Project__c"}, &out))
	assert.NotContains(t, out.String(), "Status__c")

	assert.ErrorIs(t, DescribeCommand(ctx, client, []string{"Missing__c"}, &out), salesforce.ErrDescribe)
}

func TestObjectsAndWhoami(t *testing.T) {
	ctx := context.Background()
	client, fake := salesforce.NewTestClient(ctx)
	fake.Objects["Account"] = salesforce.ObjectDescriptor{Name: "Account", Label: "Account", Queryable: true}
	fake.Objects["Project__c"] = salesforce.ObjectDescriptor{Name: "Project__c", Label: "Project", Custom: true}
	fake.User = salesforce.UserDescriptor{UserID: "005A", Username: "test@example.com", DisplayName: "Test User", OrganizationID: "00DA"}

	var out bytes.Buffer
	require.NoError(t, ObjectsCommand(ctx, client, []string{"--custom"}, &out))
	assert.Contains(t, out.String(), "Project__c")
	assert.NotContains(t, out.String(), "Account ")
	assert.Contains(t, out.String(), "(2 objects)")

	out.Reset()
	require.NoError(t, WhoamiCommand(ctx, client, nil, &out))
	assert.Contains(t, out.String(), "Test User")
	assert.Contains(t, out.String(), "00DA")
}

func TestVizPipelineCommand(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.May, 15, 0, 0, 0, 0, time.UTC)
	client, fake := salesforce.NewTestClient(ctx)
	fake.DefaultRecords = []models.Record{
		{"Id": "006A", "Name": "Alpha", "StageName": "Proposal", "Amount": 1000.0, "CloseDate": "2025-05-30"},
		{"Id": "006B", "Name": "Beta", "StageName": "Closed Won", "Amount": 2000.0, "IsWon": true, "IsClosed": true, "CloseDate": "2025-05-01"},
	}

	var out bytes.Buffer
	require.NoError(t, VizPipelineCommand(ctx, client, nil, &out, now))
	assert.Contains(t, fake.LastQuery(), "CloseDate >= 2025-04-01")
	assert.Contains(t, out.String(), "PIPELINE DASHBOARD")
	assert.Contains(t, out.String(), "Proposal")

	path := filepath.Join(t.TempDir(), "pipeline.dot")
	require.NoError(t, VizPipelineCommand(ctx, client, []string{"--format", "dot", "--timeframe", "all_time", "--output", path}, &out, now))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "digraph"))

	assert.ErrorContains(t, VizPipelineCommand(ctx, client, []string{"--format", "png"}, &out, now), "unknown format")
}

func TestConnectReportsMissingCredentials(t *testing.T) {
	ctx := context.Background()
	prompted := false
	orig := PasswordReader
	PasswordReader = func(string) (string, error) {
		prompted = true
		return "", errors.New("no terminal")
	}
	t.Cleanup(func() { PasswordReader = orig })

	cfg, err := config.FromEnv(func(k string) string {
		return map[string]string{"SF_CLIENT_ID": "cid", "SF_CLIENT_SECRET": "secret", "SF_USERNAME": "u"}[k]
	})
	require.NoError(t, err)

	_, err = Connect(ctx, cfg, true)
	assert.True(t, prompted)
	require.ErrorIs(t, err, config.ErrMissing)
	assert.Contains(t, err.Error(), "SF_PASSWORD")

	prompted = false
	cfg.ClientID = ""
	_, err = Connect(ctx, cfg, true)
	assert.False(t, prompted)
	assert.Contains(t, err.Error(), "SF_CLIENT_ID, SF_PASSWORD")
}
