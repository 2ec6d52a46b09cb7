package salesforce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRESTServer(t *testing.T) (*httptest.Server, *RESTBackend) {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}
	authorized := func(r *http.Request) bool {
		return r.Header.Get("Authorization") == "Bearer tok-123"
	}

	mux.HandleFunc("/services/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.Form.Get("grant_type") != "password" || r.Form.Get("password") != "pw" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_grant", "error_description": "authentication failure"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"access_token": "tok-123",
			"token_type":   "Bearer",
			"instance_url": srv.URL,
			"id":           srv.URL + "/id/00DX/005X",
		})
	})

	mux.HandleFunc("/services/data/v59.0/query", func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("q") == "SELECT Id FROM Bogus" {
			writeJSON(w, http.StatusBadRequest, []map[string]string{{"message": "sObject type 'Bogus' is not supported.", "errorCode": "INVALID_TYPE"}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"totalSize":      3,
			"done":           false,
			"nextRecordsUrl": "/services/data/v59.0/query/01gX-2000",
			"records": []map[string]any{
				{"attributes": map[string]string{"type": "Account"}, "Id": "001A", "Name": "Acme"},
				{"attributes": map[string]string{"type": "Account"}, "Id": "001B", "Name": "Globex"},
			},
		})
	})
	mux.HandleFunc("/services/data/v59.0/query/01gX-2000", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"totalSize": 3,
			"done":      true,
			"records":   []map[string]any{{"Id": "001C", "Name": "Initech"}},
		})
	})

	mux.HandleFunc("/services/data/v59.0/sobjects/Account/describe", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"name": "Account", "label": "Account", "queryable": true, "createable": true,
			"fields": []map[string]any{{"name": "Name", "label": "Account Name", "type": "string", "nillable": false}},
		})
	})
	mux.HandleFunc("/services/data/v59.0/sobjects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"sobjects": []map[string]any{{"name": "Account", "label": "Account"}, {"name": "Contact", "label": "Contact"}},
		})
	})
	mux.HandleFunc("/services/data/v59.0/sobjects/Account", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var data map[string]any
		_ = json.Unmarshal(body, &data)
		if data["Name"] == nil {
			writeJSON(w, http.StatusBadRequest, []map[string]any{{"message": "Required fields are missing: [Name]", "errorCode": "REQUIRED_FIELD_MISSING", "fields": []string{"Name"}}})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": "001NEW", "success": true, "errors": []any{}})
	})
	mux.HandleFunc("/services/data/v59.0/sobjects/Account/001A", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPatch, http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/services/data/v59.0/sobjects/Account/500X", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, "upstream unavailable")
	})
	mux.HandleFunc("/id/00DX/005X", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"user_id": "005X", "organization_id": "00DX", "username": "pat@example.com",
			"display_name": "Pat Doe", "email": "pat@example.com",
		})
	})

	backend := NewRESTBackend(RESTConfig{
		LoginURL:     srv.URL,
		ClientID:     "cid",
		ClientSecret: "csecret",
		APIVersion:   "59.0",
		HTTPClient:   srv.Client(),
	})
	return srv, backend
}

func TestRESTLoginFailure(t *testing.T) {
	_, backend := newRESTServer(t)
	c := NewClient(backend, Credentials{Username: "pat@example.com", Password: "wrong"})
	err := c.Initialize(context.Background())
	require.ErrorIs(t, err, ErrLogin)
}

func TestRESTBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, backend := newRESTServer(t)
	c := NewClient(backend, Credentials{Username: "pat@example.com", Password: "pw"})
	require.NoError(t, c.Initialize(ctx))

	t.Run("query follows next records url", func(t *testing.T) {
		records, err := c.QueryAll(ctx, "SELECT Id, Name FROM Account")
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "Initech", records[2].String("Name"))
		_, hasAttrs := records[0]["attributes"]
		assert.False(t, hasAttrs)
	})

	t.Run("query error carries backend message", func(t *testing.T) {
		_, err := c.QueryAll(ctx, "SELECT Id FROM Bogus")
		require.ErrorIs(t, err, ErrQuery)
		assert.Contains(t, err.Error(), "INVALID_TYPE")
	})

	t.Run("describe", func(t *testing.T) {
		obj, err := c.DescribeObject(ctx, "Account", true, nil)
		require.NoError(t, err)
		require.Len(t, obj.Fields, 1)
		assert.True(t, obj.Fields[0].Required)
	})

	t.Run("list objects", func(t *testing.T) {
		res, err := c.ListObjects(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 2, res.TotalCount)
	})

	t.Run("identity", func(t *testing.T) {
		info, err := c.GetUserInfo(ctx)
		require.NoError(t, err)
		assert.Equal(t, "005X", info.ID)
		assert.Equal(t, "Pat Doe", info.DisplayName)
		assert.Equal(t, "00DX", info.OrganizationID)
	})

	t.Run("create", func(t *testing.T) {
		res, err := c.CreateRecord(ctx, "Account", map[string]any{"Name": "Acme"})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "001NEW", res.ID)
	})

	t.Run("rejected create is a failed result", func(t *testing.T) {
		res, err := c.CreateRecord(ctx, "Account", map[string]any{"Website": "acme.test"})
		require.NoError(t, err)
		assert.False(t, res.Success)
		require.Len(t, res.Errors, 1)
		assert.Equal(t, "REQUIRED_FIELD_MISSING", res.Errors[0].StatusCode)
		assert.Equal(t, []string{"Name"}, res.Errors[0].Fields)
	})

	t.Run("update and delete", func(t *testing.T) {
		res, err := c.UpdateRecord(ctx, "Account", "001A", map[string]any{"Name": "Acme Corp"})
		require.NoError(t, err)
		assert.True(t, res.Success)

		res, err = c.DeleteRecord(ctx, "Account", "001A")
		require.NoError(t, err)
		assert.Equal(t, "001A", res.ID)
	})

	t.Run("server error is an error", func(t *testing.T) {
		_, err := c.DeleteRecord(ctx, "Account", "500X")
		require.ErrorIs(t, err, ErrDelete)
		assert.Contains(t, err.Error(), "HTTP 500")
	})
}
