// Package report prints stat cards for one resource, counting its documents
// by the values of an enumerated filter.
package report

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/backstage/pkg/admin"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/printers"
)

type Report struct {
	Service  *admin.Service
	Resource entity.Resource
	// Filter defaults to the resource's first enumerated filter.
	Filter string
	JSON   bool
	Out    io.Writer
}

func (r *Report) Do(ctx context.Context) error {
	if r.Service == nil {
		return errors.New("can not report, no service")
	}
	filter := r.Filter
	if filter == "" {
		filter = DefaultFilter(r.Resource)
	}
	if filter == "" {
		return errors.New(r.Resource.Name + " has no enumerated filter to report on")
	}
	rep, err := r.Service.Report(ctx, r.Resource, filter)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: r.Out, JSON: r.JSON}
	if !r.JSON {
		pp.NewLine()
	}
	return pp.Cards(rep)
}

// DefaultFilter is the first filter of res with enumerated values.
func DefaultFilter(res entity.Resource) string {
	for _, f := range res.Filters {
		if len(f.Values) > 0 {
			return f.Name
		}
	}
	return ""
}
