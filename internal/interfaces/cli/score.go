package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/coalition-intelligence/internal/application/forecast"
	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

type scoreOptions struct {
	year      int
	parties   string
	seats     seatInput
	threshold int
	topics    bool
	profile   string
}

func newScoreCmd() *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one named coalition and report which filters it fails",
		Example: `  coalition score --year 2023 --parties PVV,VVD,NSC,BBB
  coalition score --year 2021 --parties VVD,D66,CDA,CU -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.year, "year", 0, "election year")
	flags.StringVar(&opts.parties, "parties", "", "comma-separated coalition members")
	opts.seats.register(cmd)
	flags.IntVar(&opts.threshold, "threshold", 0, "minimum lower-chamber seats (default: scoring.threshold)")
	flags.BoolVar(&opts.topics, "topics", false, "apply the topic divergence penalty")
	flags.StringVar(&opts.profile, "profile", "", "reference profile")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("parties")

	return cmd
}

// parseParties splits a comma-separated member list, dropping blanks.
func parseParties(s string) ([]coalition.PartyID, error) {
	var out []coalition.PartyID
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.CodeCoalitionInvalid, "no parties given")
	}
	return out, nil
}

func runScore(cmd *cobra.Command, opts *scoreOptions) error {
	cliCtx, err := requireConfig(cmd)
	if err != nil {
		return err
	}
	parties, err := parseParties(opts.parties)
	if err != nil {
		return err
	}
	seats, err := opts.seats.read(cmd)
	if err != nil {
		return err
	}

	sess, err := newSession(cliCtx, opts.profile)
	if err != nil {
		return err
	}
	defer sess.Close()

	cfg := cliCtx.Config
	req := &forecast.Request{
		Year:      opts.year,
		Seats:     seats,
		Threshold: firstPositive(opts.threshold, cfg.Scoring.Threshold),
		UseTopics: sess.useTopics(cfg, cmd.Flags().Changed("topics"), opts.topics),
	}

	result, err := sess.service.ScoreCoalition(cmd.Context(), req, parties)
	if err != nil {
		sess.backend.recordError("forecast", err)
		return err
	}
	return PrintResult(cmd, scoreView{result})
}

//Personal.AI order the ending
