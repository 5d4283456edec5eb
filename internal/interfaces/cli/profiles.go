package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
)

func newProfilesCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "profiles",
		Short:       "List the built-in reference profiles",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var out profilesView
			for _, name := range coalition.ProfileNames() {
				ref, err := coalition.Profile(name)
				if err != nil {
					return err
				}
				out = append(out, newProfileInfo(ref))
			}
			return PrintResult(cmd, out)
		},
	}
}

//Personal.AI order the ending
