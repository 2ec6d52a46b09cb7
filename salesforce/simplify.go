// ABOUTME: Projection of verbose backend descriptors into minimal shapes
// ABOUTME: Field lists are only attached when requested and may be paginated
package salesforce

import (
	"github.com/harperreed/sfmcp/models"
	"github.com/harperreed/sfmcp/query"
)

func SimplifyField(f FieldDescriptor) models.SimplifiedField {
	return models.SimplifiedField{
		Name:     f.Name,
		Label:    f.Label,
		Type:     f.Type,
		Custom:   f.Custom,
		Required: !f.Nillable,
	}
}

// SimplifyObject drops every descriptor property outside the simplified shape.
// Fields are attached only when includeFields is set.
func SimplifyObject(d ObjectDescriptor, includeFields bool) models.SimplifiedObject {
	obj := models.SimplifiedObject{
		Name:       d.Name,
		Label:      d.Label,
		Custom:     d.Custom,
		Createable: d.Createable,
		Updateable: d.Updateable,
		Deletable:  d.Deletable,
		Queryable:  d.Queryable,
	}
	if includeFields {
		obj.Fields = make([]models.SimplifiedField, len(d.Fields))
		for i, f := range d.Fields {
			obj.Fields[i] = SimplifyField(f)
		}
	}
	return obj
}

// PaginateFields replaces the field list with one page of it and records the
// total and page position. This is independent of record pagination.
func PaginateFields(obj models.SimplifiedObject, params models.PaginationParams) models.SimplifiedObject {
	total := len(obj.Fields)
	page := query.Paginate(obj.Fields, params)
	info := query.PageInfoFor(total, params)

	obj.Fields = page.Results
	obj.TotalFields = &total
	obj.PageInfo = &info
	return obj
}

func SimplifyUser(u UserDescriptor) models.SimplifiedUserInfo {
	return models.SimplifiedUserInfo{
		ID:             u.UserID,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		Email:          u.Email,
		OrganizationID: u.OrganizationID,
	}
}
