package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/backstage/pkg/commands/options"
	"tableflip.dev/backstage/pkg/runner/session"
)

func addLogin(topLevel *cobra.Command, e *env) {
	lo := &options.LoginOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "sign in to the admin API",
		Example: `
backstage login --email admin@label.example --password-stdin < pw.txt
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := lo.ReadPassword(cmd.InOrStdin()); err != nil {
				return err
			}
			svc, _, err := e.service(cmd.Context())
			if err != nil {
				return err
			}
			s := session.Login{
				Service:  svc,
				Email:    lo.Email,
				Password: lo.Password,
				JSON:     oo.JSON,
				Out:      cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddLoginArgs(cmd, lo)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addLogout(topLevel *cobra.Command, e *env) {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "end the session and forget the stored tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := e.service(cmd.Context())
			if err != nil {
				return err
			}
			s := session.Logout{Service: svc, Out: cmd.OutOrStdout()}
			return s.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}

func addWhoAmI(topLevel *cobra.Command, e *env) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "show the signed-in admin and when the access token expires",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, creds, err := e.service(cmd.Context())
			if err != nil {
				return oo.HandleError(err)
			}
			s := session.WhoAmI{
				Service: svc,
				Creds:   creds,
				JSON:    oo.JSON,
				Out:     cmd.OutOrStdout(),
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}
