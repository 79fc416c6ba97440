package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"tableflip.dev/backstage/pkg/admin"
	"tableflip.dev/backstage/pkg/api"
	"tableflip.dev/backstage/pkg/devserver"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/resource"
	"tableflip.dev/backstage/pkg/store"
)

const userID = "65a1b2c3d4e5f60718293a4b"

func newTestService(t *testing.T) (*Service, *devserver.Server) {
	t.Helper()
	dev := devserver.New()
	srv := httptest.NewServer(dev.Handler())
	t.Cleanup(srv.Close)

	a := &admin.Service{Client: api.NewClient(srv.URL, store.NewMemory(store.Session{}))}
	if _, err := a.Login(context.Background(), devserver.DefaultEmail, devserver.DefaultPassword); err != nil {
		t.Fatalf("login: %v", err)
	}
	return NewService(a), dev
}

func makeCallToolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func extractText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatalf("result is nil")
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCatalogListsEveryResource(t *testing.T) {
	svc, _ := newTestService(t)
	catalog := svc.Catalog()
	if len(catalog) != len(entity.All()) {
		t.Fatalf("expected %d resources, got %d", len(entity.All()), len(catalog))
	}
	for _, r := range catalog {
		if r.Name == "users" {
			if len(r.Toggles) != 2 {
				t.Fatalf("expected two user toggles, got %v", r.Toggles)
			}
			return
		}
	}
	t.Fatalf("users missing from catalog")
}

func TestListAcceptsFilterLabels(t *testing.T) {
	svc, dev := newTestService(t)
	if err := dev.Seed("tickets",
		entity.Entity{"subject": "a", "status": "in-progress"},
		entity.Entity{"subject": "b", "status": "open"},
	); err != nil {
		t.Fatalf("seed: %v", err)
	}
	page, err := svc.List(context.Background(), ListOptions{Resource: "support", Filters: map[string]string{"status": "In Progress"}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Resource != "tickets" || len(page.Rows) != 1 || page.Rows[0].String("subject") != "a" {
		t.Fatalf("unexpected page %#v", page)
	}
}

func TestToggleFlipsStoredValue(t *testing.T) {
	svc, dev := newTestService(t)
	if err := dev.Seed("users", entity.Entity{"_id": userID, "name": "Nia", "isBlocked": false}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	value, err := svc.Toggle(context.Background(), "users", userID, "isBlocked", nil)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !value {
		t.Fatalf("expected isBlocked to flip to true")
	}
	if blocked, _ := dev.Docs("users")[0].Bool("isBlocked"); !blocked {
		t.Fatalf("server still has isBlocked=false")
	}

	if _, err := svc.Toggle(context.Background(), "users", userID, "name", nil); !errors.Is(err, admin.ErrNoToggle) {
		t.Fatalf("expected ErrNoToggle, got %v", err)
	}
}

func TestDeleteToolRejectsBadID(t *testing.T) {
	svc, dev := newTestService(t)
	tl := &tools{svc: svc}
	before := dev.Stats().Requests

	result, err := tl.deleteRow(context.Background(), makeCallToolRequest(map[string]any{"resource": "users", "id": "42"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatalf("expected an error result")
	}
	if dev.Stats().Requests != before {
		t.Fatalf("a request was sent for an invalid id")
	}
	if err := svc.Delete(context.Background(), "users", "42"); !errors.Is(err, resource.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestListRowsTool(t *testing.T) {
	svc, dev := newTestService(t)
	if err := dev.Seed("royalty-months",
		entity.Entity{"month": "Jan-25", "isActive": true},
		entity.Entity{"month": "Feb-25", "isActive": false},
	); err != nil {
		t.Fatalf("seed: %v", err)
	}
	tl := &tools{svc: svc}

	result, err := tl.listRows(context.Background(), makeCallToolRequest(map[string]any{
		"resource": "months",
		"filters":  map[string]any{"isActive": true},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("tool failed: %s", extractText(t, result))
	}
	var page PageDTO
	if err := json.Unmarshal([]byte(extractText(t, result)), &page); err != nil {
		t.Fatalf("failed to parse result JSON: %v", err)
	}
	if len(page.Rows) != 1 || page.Rows[0].String("month") != "Jan-25" {
		t.Fatalf("unexpected rows %v", page.Rows)
	}
}

func TestAddMonthTool(t *testing.T) {
	svc, dev := newTestService(t)
	tl := &tools{svc: svc}

	result, err := tl.addMonth(context.Background(), makeCallToolRequest(map[string]any{"month": "mar-25"}))
	if err != nil || result.IsError {
		t.Fatalf("add_month failed: %v %s", err, extractText(t, result))
	}
	docs := dev.Docs("royalty-months")
	if len(docs) != 1 || docs[0].String("month") != "Mar-25" {
		t.Fatalf("unexpected months %v", docs)
	}

	result, _ = tl.addMonth(context.Background(), makeCallToolRequest(map[string]any{}))
	if !result.IsError {
		t.Fatalf("expected an error without a month")
	}
}

func TestNewServerRegistersTools(t *testing.T) {
	svc, _ := newTestService(t)
	if srv := newServer("backstage", "test", svc); srv == nil {
		t.Fatalf("newServer returned nil")
	}
}
