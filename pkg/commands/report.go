package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/backstage/pkg/commands/options"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/runner/report"
)

func addReport(topLevel *cobra.Command, e *env) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "report <resource> [filter]",
		Short: "count documents by the values of a filter",
		Long: options.Wrap80("Report prints a stat card per value of an enumerated filter, " +
			"plus the total. The filter defaults to the first one the resource declares."),
		Example: `
backstage report tickets
backstage report users role
backstage report withdraws status --json
`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeResource,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := entity.Lookup(args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			svc, _, err := e.service(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			r := report.Report{Service: svc, Resource: res, JSON: oo.JSON, Out: cmd.OutOrStdout()}
			if len(args) == 2 {
				r.Filter = args[1]
			}
			return oo.HandleError(r.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
