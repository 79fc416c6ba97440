package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	srv.AddResource(mcp.NewResource(
		"backstage://resources",
		"Resources",
		mcp.WithResourceDescription("The admin resource catalog with filters, toggles and fields."),
		mcp.WithMIMEType("application/json"),
	), func(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		catalog := svc.Catalog()
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"resources": catalog,
			"count":     len(catalog),
		})
	})

	srv.AddResourceTemplate(mcp.NewResourceTemplate(
		"backstage://resources/{name}",
		"Resource Rows",
		mcp.WithTemplateDescription("The first page of a resource."),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		name := templateArg(request, "name")
		if name == "" {
			return nil, fmt.Errorf("resource name is required")
		}
		page, err := svc.List(ctx, ListOptions{Resource: name})
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, page)
	})

	srv.AddResourceTemplate(mcp.NewResourceTemplate(
		"backstage://resources/{name}/{id}",
		"Document",
		mcp.WithTemplateDescription("A single document of a resource."),
		mcp.WithTemplateMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		name, id := templateArg(request, "name"), templateArg(request, "id")
		if name == "" || id == "" {
			return nil, fmt.Errorf("resource name and id are required")
		}
		doc, err := svc.Get(ctx, name, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, doc)
	})
}

// templateArg reads a URI template variable. Depending on the matcher the
// value arrives as a string or a one-element list.
func templateArg(request mcp.ReadResourceRequest, key string) string {
	switch v := request.Params.Arguments[key].(type) {
	case string:
		return v
	case []string:
		if len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
