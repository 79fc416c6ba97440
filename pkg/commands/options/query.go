package options

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/backstage/pkg/resource"
)

// QueryOptions select one page of a list.
type QueryOptions struct {
	Search  string
	Page    int
	Limit   int
	Filters []string
}

func AddQueryArgs(cmd *cobra.Command, o *QueryOptions) {
	cmd.Flags().StringVarP(&o.Search, "search", "s", "",
		"Free text search.")
	cmd.Flags().IntVarP(&o.Page, "page", "p", 1,
		"Page to show, starting at 1.")
	cmd.Flags().IntVarP(&o.Limit, "limit", "l", 0,
		"Rows per page. Defaults to page_limit from the config.")
	cmd.Flags().StringArrayVarP(&o.Filters, "filter", "f", nil,
		"Filter as name=value, repeatable. Labels such as status=Open are accepted.")
}

// Query builds the list query; limit is used when --limit is not set.
func (o *QueryOptions) Query(limit int) (resource.Query, error) {
	filters, err := ParsePairs(o.Filters)
	if err != nil {
		return resource.Query{}, err
	}
	q := resource.Query{
		Search:  strings.TrimSpace(o.Search),
		Page:    o.Page,
		Limit:   o.Limit,
		Filters: filters,
	}
	if q.Limit <= 0 {
		q.Limit = limit
	}
	if q.Page < 1 {
		q.Page = 1
	}
	return q, nil
}

// ParsePairs splits name=value arguments. The value may contain "=".
func ParsePairs(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("expected name=value, got %q", p)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}
