package options

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/backstage/pkg/api"
	"tableflip.dev/backstage/pkg/store"
)

// OutputOptions
type OutputOptions struct {
	JSON bool
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
}

// HandleError points expired sessions at `backstage login` and, with --json,
// prints the error as {"error": ...} instead of returning it.
func (o *OutputOptions) HandleError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrSessionExpired) || errors.Is(err, store.ErrNotLoggedIn) {
		err = fmt.Errorf("login required, run `backstage login`: %w", err)
	}
	if o.JSON {
		out := map[string]string{
			"error": err.Error(),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(color.Output, string(b))
		return nil
	}
	return err
}
