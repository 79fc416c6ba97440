package commands

import (
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"tableflip.dev/backstage/pkg/api"
	"tableflip.dev/backstage/pkg/commands/options"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/runner/mutate"
)

func addCreate(topLevel *cobra.Command, e *env) {
	so := &options.SetOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "create <resource>",
		Short: "create a document",
		Long:  resourceHelp("Create a document. Unset fields take their defaults, required fields must be given."),
		Example: `
backstage create tickets --set subject="Missing royalties" --set priority=High
backstage create sublabels --set name="Ridgeway Lo-Fi" --set owner=ops@ridgeway.example
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeResource,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := entity.Lookup(args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			values, err := so.Values()
			if err != nil {
				return oo.HandleError(err)
			}
			svc, _, err := e.service(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			c := mutate.Create{Service: svc, Resource: res, Values: values, JSON: oo.JSON, Out: cmd.OutOrStdout()}
			return oo.HandleError(c.Do(cmd.Context()))
		},
	}

	options.AddSetArgs(cmd, so)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addUpdate(topLevel *cobra.Command, e *env) {
	so := &options.SetOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "update <resource> <id>",
		Short: "update fields of a document",
		Example: `
backstage update tickets 65a1b2c3d4e5f60718293a4b --set status=Resolved
`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeResource,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := entity.Lookup(args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			values, err := so.Values()
			if err != nil {
				return oo.HandleError(err)
			}
			svc, _, err := e.service(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			u := mutate.Update{Service: svc, Resource: res, ID: args[1], Values: values, JSON: oo.JSON, Out: cmd.OutOrStdout()}
			return oo.HandleError(u.Do(cmd.Context()))
		},
	}

	options.AddSetArgs(cmd, so)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addDelete(topLevel *cobra.Command, e *env) {
	var perSecond float64

	cmd := &cobra.Command{
		Use:   "delete <resource> <id>...",
		Short: "delete one or more documents",
		Long: options.Wrap80("Delete documents by id. Ids must be 24 character hex ObjectIDs; " +
			"anything else is rejected without contacting the API."),
		Example: `
backstage delete sublabels 65a1b2c3d4e5f60718293a4b
backstage get users --filter role=artist --json | jq -r '.rows[]._id' | xargs backstage delete users --rate 2
`,
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: completeResource,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := entity.Lookup(args[0])
			if err != nil {
				return err
			}
			var opts []api.Option
			if perSecond > 0 {
				opts = append(opts, api.WithRateLimit(rate.Limit(perSecond), 1))
			}
			svc, _, err := e.service(cmd.Context(), opts...)
			if err != nil {
				return err
			}
			d := mutate.Delete{Service: svc, Resource: res, IDs: args[1:], Out: cmd.OutOrStdout()}
			return (&options.OutputOptions{}).HandleError(d.Do(cmd.Context()))
		},
	}

	cmd.Flags().Float64Var(&perSecond, "rate", 0, "Maximum requests per second, 0 for no limit.")
	topLevel.AddCommand(cmd)
}

func addToggle(topLevel *cobra.Command, e *env) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "toggle <resource> <id> <field> [true|false]",
		Short: "flip, or set, a boolean field",
		Example: `
backstage toggle months 65a1b2c3d4e5f60718293a4b isActive
backstage toggle users 65a1b2c3d4e5f60718293a4b isBlocked true
`,
		Args:              cobra.RangeArgs(3, 4),
		ValidArgsFunction: completeResource,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := entity.Lookup(args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			t := mutate.Toggle{Service: nil, Resource: res, ID: args[1], Field: args[2], JSON: oo.JSON, Out: cmd.OutOrStdout()}
			if len(args) == 4 {
				v, err := strconv.ParseBool(args[3])
				if err != nil {
					return oo.HandleError(err)
				}
				t.Value = &v
			}
			if t.Service, _, err = e.service(cmd.Context()); err != nil {
				return oo.HandleError(err)
			}
			return oo.HandleError(t.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
