// Package session signs in and out of the admin API and reports who is
// signed in.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gosuri/uitable"

	"tableflip.dev/backstage/pkg/admin"
	"tableflip.dev/backstage/pkg/api"
	"tableflip.dev/backstage/pkg/printers"
	"tableflip.dev/backstage/pkg/store"
)

var errNoService = errors.New("no service configured")

type Login struct {
	Service  *admin.Service
	Email    string
	Password string
	JSON     bool
	Out      io.Writer
}

func (l *Login) Do(ctx context.Context) error {
	if l.Service == nil {
		return errNoService
	}
	if l.Email == "" || l.Password == "" {
		return errors.New("email and password are required")
	}
	u, err := l.Service.Login(ctx, l.Email, l.Password)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{Out: l.Out, JSON: l.JSON}
	if l.JSON {
		return pp.Value(u)
	}
	_, _ = color.New(color.FgGreen).Fprintf(out(l.Out), "Signed in as %s\n", display(u))
	return nil
}

type Logout struct {
	Service *admin.Service
	Out     io.Writer
}

func (l *Logout) Do(ctx context.Context) error {
	if l.Service == nil {
		return errNoService
	}
	if err := l.Service.Logout(ctx); err != nil {
		return err
	}
	_, _ = color.New(color.Faint).Fprintln(out(l.Out), "Signed out")
	return nil
}

// Identity is what whoami reports.
type Identity struct {
	User      *store.User `json:"user,omitempty"`
	Subject   string      `json:"subject,omitempty"`
	ExpiresAt *time.Time  `json:"expiresAt,omitempty"`
	// Offline is set when the API could not be reached and the stored user
	// is shown instead.
	Offline bool `json:"offline,omitempty"`
}

type WhoAmI struct {
	Service *admin.Service
	Creds   store.Credentials
	JSON    bool
	Out     io.Writer
}

func (w *WhoAmI) Do(ctx context.Context) error {
	if w.Service == nil || w.Creds == nil {
		return errNoService
	}
	s, err := w.Creds.Load(ctx)
	if err != nil {
		return err
	}
	if !s.LoggedIn() {
		return store.ErrNotLoggedIn
	}

	id := Inspect(s.Token)
	u, err := w.Service.Me(ctx)
	switch {
	case err == nil:
		id.User = u
	case s.User != nil && reachedNothing(err):
		id.User = s.User
		id.Offline = true
	default:
		return err
	}

	pp := printers.PrettyPrint{Out: w.Out, JSON: w.JSON}
	if w.JSON {
		return pp.Value(id)
	}
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	if id.User != nil {
		tbl.AddRow(bold.Sprint("user"), display(id.User))
		tbl.AddRow(bold.Sprint("role"), id.User.Role)
	}
	if id.ExpiresAt != nil {
		left := time.Until(*id.ExpiresAt).Round(time.Second)
		if left < 0 {
			tbl.AddRow(bold.Sprint("token"), color.New(color.Faint).Sprint("expired, refreshed on next request"))
		} else {
			tbl.AddRow(bold.Sprint("token"), fmt.Sprintf("expires in %s", left))
		}
	}
	if id.Offline {
		tbl.AddRow(bold.Sprint("note"), color.New(color.FgYellow).Sprint("API unreachable, showing stored user"))
	}
	tbl.RightAlign(0)
	_, _ = fmt.Fprintln(out(w.Out), tbl)
	return nil
}

// Inspect reads the claims of an access token without verifying it. The
// console never holds the signing key, so this is display only.
func Inspect(token string) Identity {
	var id Identity
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return id
	}
	if sub, err := claims.GetSubject(); err == nil {
		id.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		id.ExpiresAt = &t
	}
	return id
}

// reachedNothing reports a transport failure: no status, no expiry.
func reachedNothing(err error) bool {
	return api.StatusCode(err) == 0 && !errors.Is(err, api.ErrSessionExpired)
}

func display(u *store.User) string {
	if u == nil {
		return "unknown"
	}
	if u.Name == "" {
		return u.Email
	}
	return fmt.Sprintf("%s <%s>", u.Name, u.Email)
}

func out(w io.Writer) io.Writer {
	if w == nil {
		return color.Output
	}
	return w
}
