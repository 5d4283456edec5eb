package cli

import (
	"github.com/spf13/cobra"

	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

type historyOptions struct {
	limit   int
	minSize int
}

func newHistoryCmd() *cobra.Command {
	opts := &historyOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the party combinations that governed together most often",
		Long: "Every historical cabinet contributes all of its party subsets of size two or\n" +
			"more. The most frequent combinations drive the historical component of the score.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.limit, "limit", 10, "number of combinations to list")
	cmd.Flags().IntVar(&opts.minSize, "min-size", 2, "smallest combination size")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *historyOptions) error {
	if opts.limit <= 0 {
		return errors.InvalidParam("--limit must be positive")
	}
	cliCtx, err := requireConfig(cmd)
	if err != nil {
		return err
	}

	sess, err := newSession(cliCtx, "")
	if err != nil {
		return err
	}
	defer sess.Close()

	entries, err := sess.service.History(cmd.Context(), opts.limit, opts.minSize)
	if err != nil {
		sess.backend.recordError("dataset", err)
		return err
	}
	return PrintResult(cmd, historyView(entries))
}

//Personal.AI order the ending
