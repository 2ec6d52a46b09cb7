package salesforce

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/harperreed/sfmcp/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accounts(n int) []models.Record {
	out := make([]models.Record, n)
	for i := range out {
		out[i] = models.Record{"Id": fmt.Sprintf("001%03d", i), "Name": fmt.Sprintf("Account %d", i)}
	}
	return out
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()

	t.Run("missing credentials", func(t *testing.T) {
		fake := NewFakeBackend()
		c := NewClient(fake, Credentials{Username: "", Password: ""})
		err := c.Initialize(ctx)
		require.ErrorIs(t, err, ErrMissingCredentials)
		assert.Contains(t, err.Error(), "username, password")
		assert.Equal(t, 0, fake.Logins)
	})

	t.Run("login failure leaves client unusable", func(t *testing.T) {
		fake := NewFakeBackend()
		fake.LoginErr = errors.New("INVALID_LOGIN")
		c := NewClient(fake, Credentials{Username: "u", Password: "p"})

		err := c.Initialize(ctx)
		require.ErrorIs(t, err, ErrLogin)
		assert.Contains(t, err.Error(), "INVALID_LOGIN")
		assert.False(t, c.Initialized())

		_, err = c.ExecuteQuery(ctx, "SELECT Id FROM Account", nil)
		assert.ErrorIs(t, err, ErrNotInitialized)
	})

	t.Run("second initialize is a no-op", func(t *testing.T) {
		c, fake := NewTestClient(ctx)
		require.NoError(t, c.Initialize(ctx))
		assert.Equal(t, 1, fake.Logins)
	})
}

func TestOperationsRequireInitialize(t *testing.T) {
	ctx := context.Background()
	c := NewClient(NewFakeBackend(), Credentials{Username: "u", Password: "p"})

	_, err := c.DescribeObject(ctx, "Account", false, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = c.CreateRecord(ctx, "Account", map[string]any{"Name": "x"})
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = c.GetUserInfo(ctx)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = c.ListObjects(ctx, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestExecuteQueryPaginates(t *testing.T) {
	ctx := context.Background()
	c, fake := NewTestClient(ctx)
	fake.DefaultRecords = accounts(25)

	res, err := c.ExecuteQuery(ctx, "SELECT Id, Name FROM Account", &models.PaginationParams{PageSize: 10, PageNumber: 2})
	require.NoError(t, err)

	assert.Equal(t, "SELECT Id, Name FROM Account LIMIT 10 OFFSET 10", fake.LastQuery())
	assert.Equal(t, 25, res.TotalCount)
	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, 2, res.PageNumber)
	assert.Len(t, res.Results, 10)
}

func TestExecuteQueryWithoutPagination(t *testing.T) {
	ctx := context.Background()
	c, fake := NewTestClient(ctx)
	fake.DefaultRecords = accounts(3)

	res, err := c.ExecuteQuery(ctx, "SELECT Id FROM Account", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT Id FROM Account", fake.LastQuery())
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, models.DefaultPageSize, res.PageSize)
	assert.Equal(t, 1, res.TotalPages)
}

func TestExecuteQueryFailure(t *testing.T) {
	ctx := context.Background()
	c, fake := NewTestClient(ctx)
	fake.Fail("Bogus", errors.New("INVALID_TYPE: sObject type 'Bogus' is not supported"))

	_, err := c.ExecuteQuery(ctx, "SELECT Id FROM Bogus", nil)
	require.ErrorIs(t, err, ErrQuery)
	assert.Contains(t, err.Error(), "INVALID_TYPE")
}

func TestQueryOneNotFound(t *testing.T) {
	ctx := context.Background()
	c, _ := NewTestClient(ctx)

	_, err := c.QueryOne(ctx, "SELECT Id FROM Opportunity WHERE Id = 'x'", "Opportunity", "x")
	require.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrQuery)
}

func describeWithFields(n int) ObjectDescriptor {
	d := ObjectDescriptor{Name: "Account", Label: "Account", Createable: true, Queryable: true, KeyPrefix: "001"}
	for i := 0; i < n; i++ {
		d.Fields = append(d.Fields, FieldDescriptor{
			Name:     fmt.Sprintf("Field%d__c", i),
			Label:    fmt.Sprintf("Field %d", i),
			Type:     "string",
			Custom:   true,
			Nillable: i%2 == 0,
			Length:   255,
		})
	}
	return d
}

func TestDescribeObject(t *testing.T) {
	ctx := context.Background()
	c, fake := NewTestClient(ctx)
	fake.Objects["Account"] = describeWithFields(5)

	t.Run("without fields", func(t *testing.T) {
		obj, err := c.DescribeObject(ctx, "Account", false, nil)
		require.NoError(t, err)
		assert.Nil(t, obj.Fields)
		assert.Nil(t, obj.TotalFields)
		assert.True(t, obj.Queryable)
	})

	t.Run("all fields", func(t *testing.T) {
		obj, err := c.DescribeObject(ctx, "Account", true, nil)
		require.NoError(t, err)
		require.Len(t, obj.Fields, 5)
		assert.True(t, obj.Fields[1].Required)
		assert.False(t, obj.Fields[0].Required)
		assert.Nil(t, obj.PageInfo)
	})

	t.Run("paginated fields", func(t *testing.T) {
		obj, err := c.DescribeObject(ctx, "Account", true, &models.PaginationParams{PageSize: 2, PageNumber: 1})
		require.NoError(t, err)
		require.NotNil(t, obj.TotalFields)
		assert.Equal(t, 5, *obj.TotalFields)
		require.NotNil(t, obj.PageInfo)
		assert.Equal(t, 3, obj.PageInfo.TotalPages)
		assert.True(t, obj.PageInfo.HasNextPage)
		assert.False(t, obj.PageInfo.HasPreviousPage)
		assert.Len(t, obj.Fields, 2)
	})

	t.Run("unknown object", func(t *testing.T) {
		_, err := c.DescribeObject(ctx, "Nope__c", true, nil)
		require.ErrorIs(t, err, ErrDescribe)
		assert.Contains(t, err.Error(), "Nope__c")
	})
}

func TestMutations(t *testing.T) {
	ctx := context.Background()
	c, fake := NewTestClient(ctx)

	res, err := c.CreateRecord(ctx, "Account", map[string]any{"Name": "Acme"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotEmpty(t, res.ID)
	assert.NotNil(t, res.Errors)

	res, err = c.UpdateRecord(ctx, "Account", "001A", map[string]any{"Name": "Acme 2"})
	require.NoError(t, err)
	assert.Equal(t, "001A", res.ID)

	res, err = c.DeleteRecord(ctx, "Account", "001A")
	require.NoError(t, err)
	assert.True(t, res.Success)

	assert.Equal(t, []string{"create Account", "update Account 001A", "delete Account 001A"}, fake.Saves)

	fake.SaveResult = &models.MutationResult{Success: false, Errors: []models.SaveError{{StatusCode: "REQUIRED_FIELD_MISSING", Message: "Required fields are missing: [Name]"}}}
	res, err = c.CreateRecord(ctx, "Account", map[string]any{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.ID)
	require.Len(t, res.Errors, 1)

	fake.SaveErr = errors.New("connection reset")
	_, err = c.DeleteRecord(ctx, "Account", "001A")
	assert.ErrorIs(t, err, ErrDelete)
}

func TestGetUserInfo(t *testing.T) {
	ctx := context.Background()
	c, fake := NewTestClient(ctx)
	fake.User = UserDescriptor{UserID: "005X", Username: "pat@example.com", DisplayName: "Pat", Email: "pat@example.com", OrganizationID: "00DX"}

	info, err := c.GetUserInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SimplifiedUserInfo{ID: "005X", Username: "pat@example.com", DisplayName: "Pat", Email: "pat@example.com", OrganizationID: "00DX"}, *info)
}

func TestListObjects(t *testing.T) {
	ctx := context.Background()
	c, fake := NewTestClient(ctx)
	for _, name := range []string{"Contact", "Account", "Lead"} {
		d := describeWithFields(3)
		d.Name, d.Label = name, name
		fake.Objects[name] = d
	}

	res, err := c.ListObjects(ctx, &models.PaginationParams{PageSize: 2, PageNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalCount)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "Account", res.Results[0].Name)
	assert.Nil(t, res.Results[0].Fields)
}
