// ABOUTME: Record and metadata CLI commands
// ABOUTME: query, describe, objects and whoami rendered as terminal tables
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/harperreed/sfmcp/models"
	"github.com/harperreed/sfmcp/salesforce"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

// pageFlags registers --page-size and --page and reports whether either was given.
func pageFlags(fs *flag.FlagSet) func() *models.PaginationParams {
	size := fs.Int("page-size", models.DefaultPageSize, "Records per page")
	number := fs.Int("page", models.DefaultPageNumber, "Page number")
	return func() *models.PaginationParams {
		set := false
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "page-size" || f.Name == "page" {
				set = true
			}
		})
		if !set {
			return nil
		}
		return &models.PaginationParams{PageSize: *size, PageNumber: *number}
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

// cell renders one query value. Relationship objects and child lists are
// shown as compact JSON without their attributes block.
func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case map[string]any:
		trimmed := make(map[string]any, len(x))
		for k, val := range x {
			if k != "attributes" {
				trimmed[k] = val
			}
		}
		b, _ := json.Marshal(trimmed)
		return string(b)
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// columns returns every field seen in records, Id first and the rest sorted.
func columns(records []models.Record) []string {
	seen := map[string]bool{}
	var cols []string
	for _, r := range records {
		for k := range r {
			if k == "attributes" || seen[k] {
				continue
			}
			seen[k] = true
			cols = append(cols, k)
		}
	}
	slices.SortFunc(cols, func(a, b string) int {
		switch {
		case a == "Id":
			return -1
		case b == "Id":
			return 1
		}
		return strings.Compare(a, b)
	})
	return cols
}

// QueryCommand runs a SOQL query and prints the rows.
func QueryCommand(ctx context.Context, client *salesforce.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	page := pageFlags(fs)
	asJSON := fs.Bool("json", false, "Print the raw paginated result as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	soql := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if soql == "" {
		return fmt.Errorf("query text required")
	}

	result, err := client.ExecuteQuery(ctx, soql, page())
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(out, result)
	}
	if len(result.Results) == 0 {
		_, err := fmt.Fprintln(out, "No records found")
		return err
	}

	cols := columns(result.Results)
	rows := make([][]string, len(result.Results))
	for i, r := range result.Results {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = cell(r[c])
		}
		rows[i] = row
	}

	fmt.Fprintln(out, renderTable(cols, rows))
	fmt.Fprintln(out, footerStyle.Render(fmt.Sprintf("Page %d of %d (%d records)", result.PageNumber, result.TotalPages, result.TotalCount)))
	return nil
}

// DescribeCommand prints an object's metadata and, with --fields, its fields.
func DescribeCommand(ctx context.Context, client *salesforce.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("describe", flag.ContinueOnError)
	fields := fs.Bool("fields", false, "Include field metadata")
	page := pageFlags(fs)
	asJSON := fs.Bool("json", false, "Print the simplified object as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("object name required")
	}

	obj, err := client.DescribeObject(ctx, fs.Arg(0), *fields, page())
	if err != nil {
		return err
	}
	if *asJSON {
		return printJSON(out, obj)
	}

	kind := "standard"
	if obj.Custom {
		kind = "custom"
	}
	fmt.Fprintf(out, "%s (%s) %s object\n", obj.Label, obj.Name, kind)
	fmt.Fprintf(out, "  create: %t  update: %t  delete: %t  query: %t\n",
		obj.Createable, obj.Updateable, obj.Deletable, obj.Queryable)

	if !*fields {
		return nil
	}
	rows := make([][]string, len(obj.Fields))
	for i, f := range obj.Fields {
		rows[i] = []string{f.Name, f.Label, f.Type, yesNo(f.Custom), yesNo(f.Required)}
	}
	fmt.Fprintln(out, renderTable([]string{"Name", "Label", "Type", "Custom", "Required"}, rows))
	if obj.PageInfo != nil && obj.TotalFields != nil {
		fmt.Fprintln(out, footerStyle.Render(fmt.Sprintf("Page %d of %d (%d fields)", obj.PageInfo.CurrentPage, obj.PageInfo.TotalPages, *obj.TotalFields)))
	}
	return nil
}

// ObjectsCommand lists the objects in the org.
func ObjectsCommand(ctx context.Context, client *salesforce.Client, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("objects", flag.ContinueOnError)
	page := pageFlags(fs)
	custom := fs.Bool("custom", false, "Only show custom objects on the page")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := client.ListObjects(ctx, page())
	if err != nil {
		return err
	}

	var rows [][]string
	for _, o := range result.Results {
		if *custom && !o.Custom {
			continue
		}
		rows = append(rows, []string{o.Name, o.Label, yesNo(o.Custom), yesNo(o.Queryable)})
	}
	fmt.Fprintln(out, renderTable([]string{"Name", "Label", "Custom", "Queryable"}, rows))
	fmt.Fprintln(out, footerStyle.Render(fmt.Sprintf("Page %d of %d (%d objects)", result.PageNumber, result.TotalPages, result.TotalCount)))
	return nil
}

// WhoamiCommand prints the authenticated user.
func WhoamiCommand(ctx context.Context, client *salesforce.Client, _ []string, out io.Writer) error {
	user, err := client.GetUserInfo(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "User:         %s\n", user.DisplayName)
	fmt.Fprintf(out, "Username:     %s\n", user.Username)
	fmt.Fprintf(out, "Email:        %s\n", user.Email)
	fmt.Fprintf(out, "User ID:      %s\n", user.ID)
	fmt.Fprintf(out, "Organization: %s\n", user.OrganizationID)
	return nil
}
