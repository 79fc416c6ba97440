// Package ui starts the interactive dashboard.
package ui

import (
	"context"
	"errors"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"tableflip.dev/backstage/pkg/admin"
	"tableflip.dev/backstage/pkg/api"
	"tableflip.dev/backstage/pkg/entity"
	"tableflip.dev/backstage/pkg/store"
	teaui "tableflip.dev/backstage/pkg/tui/app"
)

// ErrNoTerminal is returned when stdout is not a terminal.
var ErrNoTerminal = errors.New("the dashboard needs a terminal, try `backstage get` instead")

type UI struct {
	Config *store.Config
	Creds  store.Credentials
	// Resources limits the tabs; empty opens the whole catalog.
	Resources []entity.Resource
	Logger    *zap.Logger
}

func (u *UI) Do(ctx context.Context) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return ErrNoTerminal
	}
	if u.Config == nil || u.Creds == nil {
		return errors.New("can not start the dashboard, no configuration")
	}
	logger := u.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fire, expired := teaui.ExpiryHook()
	client := api.NewClient(u.Config.APIURL, u.Creds,
		api.WithTimeout(u.Config.Timeout),
		api.WithLogger(logger),
		api.WithSessionExpired(fire),
	)

	var sessions <-chan store.Event
	if w, ok := u.Creds.(store.Watcher); ok {
		ch, err := w.Watch(ctx)
		if err != nil {
			logger.Warn("session watch unavailable", zap.Error(err))
		} else {
			sessions = ch
		}
	}

	logger.Info("dashboard starting", zap.String("api", u.Config.APIURL))
	return teaui.Run(ctx, teaui.Options{
		Service:   &admin.Service{Client: client},
		Resources: u.Resources,
		Limit:     u.Config.PageLimit,
		Debounce:  u.Config.Debounce,
		Logger:    logger,
		Expired:   expired,
		Sessions:  sessions,
		HelpStyle: teaui.HelpStyle(),
	})
}
