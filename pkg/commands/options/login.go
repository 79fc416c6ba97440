package options

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// LoginOptions
type LoginOptions struct {
	Email         string
	Password      string
	PasswordStdin bool
}

func AddLoginArgs(cmd *cobra.Command, o *LoginOptions) {
	cmd.Flags().StringVarP(&o.Email, "email", "e", "",
		"Admin email address.")
	cmd.Flags().StringVar(&o.Password, "password", "",
		"Password. Prefer --password-stdin, flags end up in shell history.")
	cmd.Flags().BoolVar(&o.PasswordStdin, "password-stdin", false,
		"Read the password from stdin.")
}

// ReadPassword fills Password from r when --password-stdin is set.
func (o *LoginOptions) ReadPassword(r io.Reader) error {
	if !o.PasswordStdin {
		return nil
	}
	if o.Password != "" {
		return errors.New("--password and --password-stdin are mutually exclusive")
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	o.Password = strings.TrimRight(line, "\r\n")
	return nil
}
