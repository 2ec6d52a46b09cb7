// ABOUTME: Opportunity lookup and search MCP tool handlers
// ABOUTME: Implements get_record_details and search_records with readable snake_case output
package handlers

import (
	"context"
	"slices"
	"time"

	"github.com/harperreed/sfmcp/models"
	"github.com/harperreed/sfmcp/query"
	"github.com/harperreed/sfmcp/salesforce"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const opportunityObject = "Opportunity"

type OpportunityHandlers struct {
	client *salesforce.Client
	policy query.MatchPolicy
	now    func() time.Time
}

func NewOpportunityHandlers(client *salesforce.Client, policy query.MatchPolicy) *OpportunityHandlers {
	return &OpportunityHandlers{client: client, policy: policy, now: time.Now}
}

type AccountSummary struct {
	Name     string `json:"name,omitempty"`
	Industry string `json:"industry,omitempty"`
	Website  string `json:"website,omitempty"`
}

type OwnerSummary struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func accountOf(r models.Record) *AccountSummary {
	if _, ok := r.Lookup("Account"); !ok {
		return nil
	}
	return &AccountSummary{
		Name:     r.String("Account.Name"),
		Industry: r.String("Account.Industry"),
		Website:  r.String("Account.Website"),
	}
}

func ownerOf(r models.Record) *OwnerSummary {
	if _, ok := r.Lookup("Owner"); !ok {
		return nil
	}
	return &OwnerSummary{Name: r.String("Owner.Name"), Email: r.String("Owner.Email")}
}

func optFloat(r models.Record, path string) *float64 {
	if v, ok := r.Float(path); ok {
		return &v
	}
	return nil
}

func optValue(r models.Record, path string) any {
	v, _ := r.Lookup(path)
	return v
}

type BasicInfo struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Amount           *float64 `json:"amount"`
	Stage            string   `json:"stage"`
	Probability      *float64 `json:"probability"`
	CloseDate        string   `json:"close_date,omitempty"`
	Type             string   `json:"type,omitempty"`
	Description      string   `json:"description,omitempty"`
	NextStep         string   `json:"next_step,omitempty"`
	ForecastCategory string   `json:"forecast_category,omitempty"`
	ExpectedRevenue  *float64 `json:"expected_revenue,omitempty"`
	LeadSource       string   `json:"lead_source,omitempty"`
	IsClosed         bool     `json:"is_closed"`
	IsWon            bool     `json:"is_won"`
	LastActivityDate string   `json:"last_activity_date,omitempty"`
}

type ContactRole struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

type HistoryEntry struct {
	Date     string `json:"date"`
	Field    string `json:"field"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}

type TaskEntry struct {
	Subject     string `json:"subject"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	CreatedDate string `json:"created_date"`
}

type NoteEntry struct {
	Title       string `json:"title"`
	Body        string `json:"body,omitempty"`
	CreatedDate string `json:"created_date"`
	CreatedBy   string `json:"created_by,omitempty"`
}

type OpportunityDetails struct {
	BasicInfo BasicInfo       `json:"basic_info"`
	Account   *AccountSummary `json:"account"`
	Owner     *OwnerSummary   `json:"owner"`
	Contacts  []ContactRole   `json:"contacts"`
	History   []HistoryEntry  `json:"history"`
	Tasks     []TaskEntry     `json:"tasks"`
	Notes     []NoteEntry     `json:"notes"`
}

// newestFirst sorts child rows by a date field, most recent first. Rows with
// unparseable dates sink to the end.
func newestFirst(rows []models.Record, field string) []models.Record {
	slices.SortStableFunc(rows, func(a, b models.Record) int {
		ta, _ := a.Time(field)
		tb, _ := b.Time(field)
		return tb.Compare(ta)
	})
	return rows
}

func detailsFromRecord(r models.Record) OpportunityDetails {
	d := OpportunityDetails{
		BasicInfo: BasicInfo{
			ID:               r.String("Id"),
			Name:             r.String("Name"),
			Amount:           optFloat(r, "Amount"),
			Stage:            r.String("StageName"),
			Probability:      optFloat(r, "Probability"),
			CloseDate:        r.String("CloseDate"),
			Type:             r.String("Type"),
			Description:      r.String("Description"),
			NextStep:         r.String("NextStep"),
			ForecastCategory: r.String("ForecastCategory"),
			ExpectedRevenue:  optFloat(r, "ExpectedRevenue"),
			LeadSource:       r.String("LeadSource"),
			IsClosed:         r.Bool("IsClosed"),
			IsWon:            r.Bool("IsWon"),
			LastActivityDate: r.String("LastActivityDate"),
		},
		Account:  accountOf(r),
		Owner:    ownerOf(r),
		Contacts: []ContactRole{},
		History:  []HistoryEntry{},
		Tasks:    []TaskEntry{},
		Notes:    []NoteEntry{},
	}

	for _, c := range r.Children("OpportunityContactRoles") {
		d.Contacts = append(d.Contacts, ContactRole{
			Name:  c.String("Contact.Name"),
			Email: c.String("Contact.Email"),
			Role:  c.String("Role"),
		})
	}
	for _, h := range newestFirst(r.Children("Histories"), "CreatedDate") {
		d.History = append(d.History, HistoryEntry{
			Date:     h.String("CreatedDate"),
			Field:    h.String("Field"),
			OldValue: optValue(h, "OldValue"),
			NewValue: optValue(h, "NewValue"),
		})
	}
	for _, t := range newestFirst(r.Children("Tasks"), "CreatedDate") {
		d.Tasks = append(d.Tasks, TaskEntry{
			Subject:     t.String("Subject"),
			Status:      t.String("Status"),
			Priority:    t.String("Priority"),
			CreatedDate: t.String("CreatedDate"),
		})
	}
	for _, n := range newestFirst(r.Children("Notes"), "CreatedDate") {
		d.Notes = append(d.Notes, NoteEntry{
			Title:       n.String("Title"),
			Body:        n.String("Body"),
			CreatedDate: n.String("CreatedDate"),
			CreatedBy:   n.String("CreatedBy.Name"),
		})
	}
	return d
}

type GetRecordDetailsInput struct {
	RecordID string `json:"recordId" jsonschema:"ID of the opportunity to retrieve" validate:"required"`
}

func (h *OpportunityHandlers) GetRecordDetails(ctx context.Context, _ *mcp.CallToolRequest, input GetRecordDetailsInput) (*mcp.CallToolResult, any, error) {
	soql, err := query.ByID(opportunityObject, input.RecordID, query.DetailFields...)
	if err != nil {
		return nil, nil, err
	}
	record, err := h.client.QueryOne(ctx, soql, opportunityObject, input.RecordID)
	if err != nil {
		return nil, nil, err
	}
	return envelope(detailsFromRecord(record))
}

type SearchRecordsInput struct {
	NamePattern        *string  `json:"namePattern,omitempty" jsonschema:"Pattern to match in the opportunity name. \"Github\" matches \"Github Migration\" and \"My Github Project\""`
	AccountNamePattern *string  `json:"accountNamePattern,omitempty" jsonschema:"Pattern to match in the account name"`
	Stage              *string  `json:"stage,omitempty" jsonschema:"Exact stage, e.g. Proposal, Negotiation, Closed Won"`
	MinAmount          *float64 `json:"minAmount,omitempty" jsonschema:"Minimum amount"`
	MaxAmount          *float64 `json:"maxAmount,omitempty" jsonschema:"Maximum amount"`
	CloseDateStart     *string  `json:"closeDateStart,omitempty" jsonschema:"Earliest close date (YYYY-MM-DD)" validate:"omitempty,datetime=2006-01-02"`
	CloseDateEnd       *string  `json:"closeDateEnd,omitempty" jsonschema:"Latest close date (YYYY-MM-DD)" validate:"omitempty,datetime=2006-01-02"`
	PageSize           *int     `json:"pageSize,omitempty" jsonschema:"Number of records per page (default 25)" validate:"omitempty,gte=1,lte=2000"`
	PageNumber         *int     `json:"pageNumber,omitempty" jsonschema:"Page number to retrieve (default 1)" validate:"omitempty,gte=1"`
}

type SearchResult struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Stage           string          `json:"stage"`
	Amount          *float64        `json:"amount"`
	ExpectedRevenue *float64        `json:"expected_revenue"`
	Probability     *float64        `json:"probability"`
	CloseDate       string          `json:"close_date,omitempty"`
	Type            string          `json:"type,omitempty"`
	Description     string          `json:"description,omitempty"`
	Account         *AccountSummary `json:"account"`
	Owner           *OwnerSummary   `json:"owner"`
}

type SearchRecordsOutput struct {
	TotalCount int            `json:"total_count"`
	PageNumber int            `json:"page_number"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
	Results    []SearchResult `json:"results"`
}

func (h *OpportunityHandlers) SearchRecords(ctx context.Context, _ *mcp.CallToolRequest, input SearchRecordsInput) (*mcp.CallToolResult, any, error) {
	soql, err := query.SearchQuery(query.OpportunitySearch{
		NamePattern:        input.NamePattern,
		AccountNamePattern: input.AccountNamePattern,
		Stage:              input.Stage,
		MinAmount:          input.MinAmount,
		MaxAmount:          input.MaxAmount,
		CloseDateStart:     input.CloseDateStart,
		CloseDateEnd:       input.CloseDateEnd,
	}, h.policy)
	if err != nil {
		return nil, nil, err
	}

	// search always pages, defaulting to the first page of 25
	page := pageParams(input.PageSize, input.PageNumber)
	if page == nil {
		page = &models.PaginationParams{}
	}
	normalized := page.Normalized()

	result, err := h.client.ExecuteQuery(ctx, soql, &normalized)
	if err != nil {
		return nil, nil, err
	}

	out := SearchRecordsOutput{
		TotalCount: result.TotalCount,
		PageNumber: result.PageNumber,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
		Results:    make([]SearchResult, len(result.Results)),
	}
	for i, r := range result.Results {
		out.Results[i] = SearchResult{
			ID:              r.String("Id"),
			Name:            r.String("Name"),
			Stage:           r.String("StageName"),
			Amount:          optFloat(r, "Amount"),
			ExpectedRevenue: optFloat(r, "ExpectedRevenue"),
			Probability:     optFloat(r, "Probability"),
			CloseDate:       r.String("CloseDate"),
			Type:            r.String("Type"),
			Description:     r.String("Description"),
			Account:         accountOf(r),
			Owner:           ownerOf(r),
		}
	}
	return envelope(out)
}
