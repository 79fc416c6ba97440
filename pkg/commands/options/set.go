package options

import (
	"github.com/spf13/cobra"
)

// SetOptions collect --set field=value pairs for create and update.
type SetOptions struct {
	Set []string
}

func AddSetArgs(cmd *cobra.Command, o *SetOptions) {
	cmd.Flags().StringArrayVar(&o.Set, "set", nil,
		"Field value as name=value, repeatable. Enumerated fields take their label, lists are comma separated.")
}

func (o *SetOptions) Values() (map[string]string, error) {
	return ParsePairs(o.Set)
}
