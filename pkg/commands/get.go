package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/backstage/pkg/commands/options"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/printers"
	"tableflip.dev/backstage/pkg/runner/get"
)

func addResources(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "resources",
		Short: "list the admin resources and their filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pp := printers.PrettyPrint{Out: cmd.OutOrStdout(), JSON: oo.JSON}
			return pp.Resources(entity.All())
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addGet(topLevel *cobra.Command, e *env) {
	qo := &options.QueryOptions{}
	io := &options.IDOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "get <resource> [id]",
		Short: "list a page of a resource, or show one document",
		Long:  resourceHelp("List one page of a resource, or show a single document when an id is given."),
		Example: `
backstage get tickets --filter status=Open
backstage get releases --search "midnight" --page 2
backstage get users 65a1b2c3d4e5f60718293a4b --json
`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeResource,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := entity.Lookup(args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			q, err := qo.Query(e.cfg.PageLimit)
			if err != nil {
				return oo.HandleError(err)
			}
			svc, _, err := e.service(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			g := get.Get{
				Service:  svc,
				Resource: res,
				Query:    q,
				ShowID:   io.ShowID,
				JSON:     oo.JSON,
				Out:      cmd.OutOrStdout(),
			}
			if len(args) > 1 {
				g.ID = args[1]
			}
			return oo.HandleError(g.Do(cmd.Context()))
		},
	}

	options.AddQueryArgs(cmd, qo)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

// resourceHelp appends the resource names to a long description.
func resourceHelp(text string) string {
	var b strings.Builder
	b.WriteString(options.Wrap80(text))
	b.WriteString("\n\nResources and aliases:\n")
	for _, r := range entity.All() {
		if len(r.Aliases) > 0 {
			b.WriteString(fmt.Sprintf("  %s: %s\n", r.Name, strings.Join(r.Aliases, ", ")))
		} else {
			b.WriteString(fmt.Sprintf("  %s\n", r.Name))
		}
	}
	return b.String()
}

func completeResource(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var out []string
	for _, name := range entity.Names() {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
