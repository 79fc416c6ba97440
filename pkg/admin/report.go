package admin

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/resource"
)

// Card is one stat card: a label and the number of documents behind it.
type Card struct {
	Label string
	Value string
	Count int
}

// Report summarizes a resource by the values of one filter.
type Report struct {
	Resource string
	Filter   string
	Total    int
	Cards    []Card
}

// Report counts the documents of res for every value of filter. The counts
// come from each filtered list's totalCount, so no rows are transferred
// beyond the first of each page.
func (s *Service) Report(ctx context.Context, res entity.Resource, filter string) (Report, error) {
	f, ok := res.Filter(filter)
	if !ok || len(f.Values) == 0 {
		return Report{}, fmt.Errorf("%s has no enumerated filter %q", res.Name, filter)
	}

	total := 0
	cards := make([]Card, len(f.Values))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.List(gctx, res, resource.Query{Page: 1, Limit: 1})
		if err != nil {
			return err
		}
		total = p.Pagination.TotalCount
		return nil
	})
	for i, v := range f.Values {
		g.Go(func() error {
			p, err := s.List(gctx, res, resource.Query{Page: 1, Limit: 1, Filters: map[string]string{filter: v}})
			if err != nil {
				return err
			}
			cards[i] = Card{Label: label(res, filter, v), Value: v, Count: p.Pagination.TotalCount}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	return Report{Resource: res.Title, Filter: filter, Total: total, Cards: cards}, nil
}

func label(res entity.Resource, filter, code string) string {
	if fd, ok := res.Field(filter); ok && fd.Codec != nil {
		return fd.Codec.Decode(code)
	}
	return code
}
