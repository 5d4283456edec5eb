package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/turtacn/coalition-intelligence/internal/application/forecast"
	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/dataset"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// seatInput is the --seats / --seats-file pair shared by predict and score.
type seatInput struct {
	inline string
	file   string
}

func (s *seatInput) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.inline, "seats", "", `seat distribution "PARTY=SEATS,..." (default: recorded result for --year)`)
	cmd.Flags().StringVar(&s.file, "seats-file", "", "CSV with Partij and Zetels columns, - for stdin")
	cmd.MarkFlagsMutuallyExclusive("seats", "seats-file")
}

// read returns the given distribution, or nil when neither flag is set.
func (s *seatInput) read(cmd *cobra.Command) (coalition.SeatDistribution, error) {
	switch {
	case s.inline != "":
		return dataset.ParseSeatList(s.inline)
	case s.file == "-":
		return dataset.ParseSeatFile(cmd.InOrStdin(), "stdin")
	case s.file != "":
		f, err := os.Open(s.file)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeDatasetRead, "failed to open seat file").WithDetail(s.file)
		}
		defer f.Close()
		return dataset.ParseSeatFile(f, s.file)
	}
	return nil, nil
}

type predictOptions struct {
	year      int
	seats     seatInput
	topK      int
	threshold int
	topics    bool
	profile   string
}

func newPredictCmd() *cobra.Command {
	opts := &predictOptions{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Rank the most plausible coalitions for an election",
		Long: "Enumerate every coalition that contains the largest party, reaches the seat\n" +
			"threshold and contains no unrealistic pair, score it and print the top K.\n" +
			"Without --seats or --seats-file the recorded lower-chamber result for --year is used.",
		Example: `  coalition predict --year 2023 --seats "PVV=37,GL/PvdA=25,VVD=24,NSC=20,D66=9,BBB=7,CDA=5,SP=5,FvD=3,PvdD=3,CU=3,SGP=3,DENK=3,Volt=2,JA21=1"
  coalition predict --year 2021 --top-k 10 -o json
  coalition predict --year 2023 --seats-file tk2023.csv --topics=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.year, "year", 0, "election year (selects upper-chamber seats and the default lower-chamber result)")
	opts.seats.register(cmd)
	flags.IntVar(&opts.topK, "top-k", 0, "number of coalitions to print (default: scoring.top_k)")
	flags.IntVar(&opts.threshold, "threshold", 0, "minimum lower-chamber seats (default: scoring.threshold)")
	flags.BoolVar(&opts.topics, "topics", false, "apply the topic divergence penalty (default: scoring.use_topics or the profile setting)")
	flags.StringVar(&opts.profile, "profile", "", "reference profile, overrides reference.profile and reference.file")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}

func runPredict(cmd *cobra.Command, opts *predictOptions) error {
	cliCtx, err := requireConfig(cmd)
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
		TopK:      firstPositive(opts.topK, cfg.Scoring.TopK),
		UseTopics: sess.useTopics(cfg, cmd.Flags().Changed("topics"), opts.topics),
	}

	report, err := sess.service.Predict(cmd.Context(), req)
	if err != nil {
		sess.backend.recordError("forecast", err)
		return err
	}
	return PrintResult(cmd, reportView{report})
}

func firstPositive(values ...int) int {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

//Personal.AI order the ending
