package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"tableflip.dev/backstage/pkg/commands/options"
	"tableflip.dev/backstage/pkg/runner/months"
)

func addMonths(topLevel *cobra.Command, e *env) {
	cmd := &cobra.Command{
		Use:     "months",
		Aliases: []string{"month"},
		Short:   "manage royalty months",
	}

	oo := &options.OutputOptions{}
	add := &cobra.Command{
		Use:   "add <MMM-YY>",
		Short: "add a royalty month",
		Example: `
backstage months add apr-25
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := e.service(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			a := months.Add{Service: svc, Code: args[0], JSON: oo.JSON, Out: cmd.OutOrStdout()}
			return oo.HandleError(a.Do(cmd.Context()))
		},
	}
	options.AddOutputArg(add, oo)

	calendar := &cobra.Command{
		Use:   "calendar [year]",
		Short: "show which months of a year exist and are active",
		Example: `
backstage months calendar
backstage months calendar 2024
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := months.Calendar{Out: cmd.OutOrStdout()}
			if len(args) == 1 {
				year, err := strconv.Atoi(args[0])
				if err != nil {
					return err
				}
				c.Year = year
			}
			svc, _, err := e.service(cmd.Context())
			if err != nil {
				return (&options.OutputOptions{}).HandleError(err)
			}
			c.Service = svc
			return (&options.OutputOptions{}).HandleError(c.Do(cmd.Context()))
		},
	}

	cmd.AddCommand(add, calendar)
	topLevel.AddCommand(cmd)
}
