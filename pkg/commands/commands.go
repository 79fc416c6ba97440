package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tableflip.dev/backstage/pkg/admin"
	"tableflip.dev/backstage/pkg/api"
	"tableflip.dev/backstage/pkg/cms"
	"tableflip.dev/backstage/pkg/commands/options"
	"tableflip.dev/backstage/pkg/store"
)

// env is what every verb shares once the root command has run.
type env struct {
	verbose bool
	apiURL  string

	cfg    *store.Config
	logger *zap.Logger
}

func New() *cobra.Command {
	e := &env{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:          "backstage",
		Short:        options.Wrap80("Admin console for the label: catalog, royalties, payouts and the support desk, from the terminal."),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = e.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "Log debug output.")
	cmd.PersistentFlags().StringVar(&e.apiURL, "api-url", "", "Admin API base URL, overrides api_url from the config.")

	AddCommands(cmd, e)
	return cmd
}

func AddCommands(topLevel *cobra.Command, e *env) {
	addLogin(topLevel, e)
	addLogout(topLevel, e)
	addWhoAmI(topLevel, e)
	addResources(topLevel)
	addGet(topLevel, e)
	addCreate(topLevel, e)
	addUpdate(topLevel, e)
	addDelete(topLevel, e)
	addToggle(topLevel, e)
	addMonths(topLevel, e)
	addReport(topLevel, e)
	addUI(topLevel, e)
	addCMS(topLevel, e)
	addDevServer(topLevel, e)
	addMCP(topLevel, e)
	addVersion(topLevel)
	addUpgrade(topLevel)
	addCompletions(topLevel)
}

// setup loads the configuration and builds the logger. The dashboard owns
// the terminal, so its logs go to a file next to the session.
func (e *env) setup(cmd *cobra.Command) error {
	cfg, err := store.LoadConfig()
	if err != nil {
		return err
	}
	if e.apiURL != "" {
		cfg.APIURL = e.apiURL
	}
	e.cfg = cfg

	config := zap.NewProductionConfig()
	level := zapcore.WarnLevel
	if cmd.Name() == "ui" {
		path, err := logFile(cfg)
		if err != nil {
			return err
		}
		config.OutputPaths = []string{path}
		config.ErrorOutputPaths = []string{path}
		level = zapcore.InfoLevel
	}
	if e.verbose {
		level = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(level)
	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	e.logger = logger.With(zap.String("command", cmd.Name()))
	return nil
}

func logFile(cfg *store.Config) (string, error) {
	dir, err := homedir.Expand(cfg.Session.Path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "backstage.log"), nil
}

func (e *env) credentials(ctx context.Context) (store.Credentials, error) {
	return store.OpenCredentials(ctx, e.cfg)
}

// service builds the admin service over the configured session store.
func (e *env) service(ctx context.Context, opts ...api.Option) (*admin.Service, store.Credentials, error) {
	creds, err := e.credentials(ctx)
	if err != nil {
		return nil, nil, err
	}
	base := []api.Option{
		api.WithTimeout(e.cfg.Timeout),
		api.WithLogger(e.logger),
	}
	client := api.NewClient(e.cfg.APIURL, creds, append(base, opts...)...)
	return &admin.Service{Client: client}, creds, nil
}

func (e *env) cms() (*cms.Client, error) {
	c := e.cfg.CMS
	return cms.NewClient(cms.Config{
		ProjectID:  c.ProjectID,
		Dataset:    c.Dataset,
		APIVersion: c.APIVersion,
		Token:      c.Token,
		UseCDN:     c.UseCDN,
	}, cms.WithLogger(e.logger))
}
