package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tableflip.dev/backstage/pkg/entity"
)

type tools struct {
	svc *Service
}

func registerTools(srv *server.MCPServer, svc *Service) {
	t := &tools{svc: svc}
	names := entity.Names()

	srv.AddTool(mcp.NewTool("list_resources",
		mcp.WithDescription("List the admin resources with their filters, toggles and form fields."),
		mcp.WithReadOnlyHintAnnotation(true),
	), t.listResources)

	srv.AddTool(mcp.NewTool("list_rows",
		mcp.WithDescription("Fetch one page of a resource, optionally searched and filtered."),
		mcp.WithString("resource",
			mcp.Required(),
			mcp.Description("Resource name or alias."),
			mcp.Enum(names...),
		),
		mcp.WithString("search", mcp.Description("Free text search.")),
		mcp.WithNumber("page", mcp.Description("1-based page number. Default: 1")),
		mcp.WithNumber("limit", mcp.Description("Rows per page, at most 100. Default: 10")),
		mcp.WithObject("filters", mcp.Description("Filter values by filter name, e.g. {\"status\": \"open\"}. Labels such as \"Open\" are accepted.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), t.listRows)

	srv.AddTool(mcp.NewTool("get_row",
		mcp.WithDescription("Fetch a single document by id."),
		mcp.WithString("resource", mcp.Required(), mcp.Description("Resource name or alias."), mcp.Enum(names...)),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), t.getRow)

	srv.AddTool(mcp.NewTool("toggle_field",
		mcp.WithDescription("Set or flip a boolean field such as isActive or isBlocked."),
		mcp.WithString("resource", mcp.Required(), mcp.Description("Resource name or alias."), mcp.Enum(names...)),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id.")),
		mcp.WithString("field", mcp.Required(), mcp.Description("Toggleable field, see list_resources.")),
		mcp.WithBoolean("value", mcp.Description("Value to write. Omit to flip the stored value.")),
	), t.toggleField)

	srv.AddTool(mcp.NewTool("delete_row",
		mcp.WithDescription("Delete a document. The id must be a 24 character hex ObjectID."),
		mcp.WithString("resource", mcp.Required(), mcp.Description("Resource name or alias."), mcp.Enum(names...)),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id.")),
		mcp.WithDestructiveHintAnnotation(true),
	), t.deleteRow)

	srv.AddTool(mcp.NewTool("add_month",
		mcp.WithDescription("Add an MCN royalty month."),
		mcp.WithString("month", mcp.Required(), mcp.Description("Month code as MMM-YY, e.g. Jan-25.")),
	), t.addMonth)

	srv.AddTool(mcp.NewTool("report",
		mcp.WithDescription("Count the documents of a resource for every value of an enumerated filter."),
		mcp.WithString("resource", mcp.Required(), mcp.Description("Resource name or alias."), mcp.Enum(names...)),
		mcp.WithString("filter", mcp.Required(), mcp.Description("Enumerated filter, e.g. status.")),
		mcp.WithReadOnlyHintAnnotation(true),
	), t.report)
}

func (t *tools) listResources(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	catalog := t.svc.Catalog()
	return toJSONResult(map[string]any{
		"resources": catalog,
		"count":     len(catalog),
	})
}

func (t *tools) listRows(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Resource string         `json:"resource"`
		Search   string         `json:"search"`
		Page     int            `json:"page"`
		Limit    int            `json:"limit"`
		Filters  map[string]any `json:"filters"`
	}
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if strings.TrimSpace(args.Resource) == "" {
		return mcp.NewToolResultError("resource is required"), nil
	}
	filters := make(map[string]string, len(args.Filters))
	for k, v := range args.Filters {
		filters[k] = fmt.Sprint(v)
	}
	page, err := t.svc.List(ctx, ListOptions{
		Resource: args.Resource,
		Search:   args.Search,
		Page:     args.Page,
		Limit:    args.Limit,
		Filters:  filters,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(page)
}

func (t *tools) getRow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, id, errResult := resourceAndID(request)
	if errResult != nil {
		return errResult, nil
	}
	doc, err := t.svc.Get(ctx, name, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(doc)
}

func (t *tools) toggleField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args struct {
		Resource string `json:"resource"`
		ID       string `json:"id"`
		Field    string `json:"field"`
		Value    *bool  `json:"value"`
	}
	if err := request.BindArguments(&args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}
	if args.Resource == "" || args.ID == "" || args.Field == "" {
		return mcp.NewToolResultError("resource, id and field are required"), nil
	}
	value, err := t.svc.Toggle(ctx, args.Resource, args.ID, args.Field, args.Value)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(map[string]any{
		"id":    args.ID,
		"field": args.Field,
		"value": value,
	})
}

func (t *tools) deleteRow(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, id, errResult := resourceAndID(request)
	if errResult != nil {
		return errResult, nil
	}
	if err := t.svc.Delete(ctx, name, id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(map[string]any{"id": id, "deleted": true})
}

func (t *tools) addMonth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code, err := request.RequireString("month")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := t.svc.AddMonth(ctx, code)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(doc)
}

func (t *tools) report(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("resource")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filter, err := request.RequireString("filter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rep, err := t.svc.Report(ctx, name, filter)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toJSONResult(rep)
}

func resourceAndID(request mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	name, err := request.RequireString("resource")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	id, err := request.RequireString("id")
	if err != nil {
		return "", "", mcp.NewToolResultError(err.Error())
	}
	return name, id, nil
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
