// Package devserver runs the in-memory admin API on a local port.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"tableflip.dev/backstage/pkg/devserver"
)

type Serve struct {
	Addr      string
	Seed      bool
	Secret    string
	AccessTTL time.Duration
	Logger    *zap.Logger
	Out       io.Writer
}

func (s *Serve) Do(ctx context.Context) error {
	if s.Addr == "" {
		return errors.New("an address is required")
	}
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := devserver.New(
		devserver.WithLogger(logger),
		devserver.WithSecret([]byte(s.Secret)),
		devserver.WithAccessTTL(s.AccessTTL),
	)
	if s.Seed {
		if err := srv.SeedSamples(); err != nil {
			return err
		}
	}

	out := s.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintf(out, "dev API on http://%s, sign in with %s / %s\n",
		s.Addr, devserver.DefaultEmail, devserver.DefaultPassword)

	errc := make(chan error, 1)
	go func() { errc <- srv.Start(s.Addr) }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errc
	}
}
