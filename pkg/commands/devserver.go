package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/backstage/pkg/runner/devserver"
)

func addDevServer(topLevel *cobra.Command, e *env) {
	s := &devserver.Serve{}

	cmd := &cobra.Command{
		Use:   "dev-server",
		Short: "run an in-memory admin API for local work",
		Long: `Run a local stand-in for the admin API. Data lives in memory and is lost on exit.
Point the CLI at it with --api-url or api_url in the config.`,
		Example: `
backstage dev-server --seed
backstage --api-url http://127.0.0.1:4000 login --email admin@label.example
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s.Logger = e.logger
			s.Out = cmd.OutOrStdout()
			return s.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&s.Addr, "addr", "127.0.0.1:4000", "Listen address.")
	cmd.Flags().BoolVar(&s.Seed, "seed", false, "Fill every resource with sample documents.")
	cmd.Flags().StringVar(&s.Secret, "secret", "", "HS256 signing secret, random when empty.")
	cmd.Flags().DurationVar(&s.AccessTTL, "access-ttl", 15*time.Minute, "Access token lifetime.")
	topLevel.AddCommand(cmd)
}
