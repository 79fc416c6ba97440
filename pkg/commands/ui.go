package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command, e *env) {
	cmd := &cobra.Command{
		Use:   "ui [resource...]",
		Short: "open the interactive dashboard",
		Long: `Open the dashboard with one tab per resource. Name resources to open only
those tabs. Logs go to backstage.log next to the session file.`,
		Example: `
backstage ui
backstage ui tickets withdraws
`,
		ValidArgsFunction: completeResource,
		RunE: func(cmd *cobra.Command, args []string) error {
			var tabs []entity.Resource
			for _, name := range args {
				res, err := entity.Lookup(name)
				if err != nil {
					return err
				}
				tabs = append(tabs, res)
			}
			creds, err := e.credentials(cmd.Context())
			if err != nil {
				return err
			}
			u := ui.UI{
				Config:    e.cfg,
				Creds:     creds,
				Resources: tabs,
				Logger:    e.logger,
			}
			return u.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}
