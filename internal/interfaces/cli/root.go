package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/turtacn/coalition-intelligence/internal/config"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/coalition-intelligence/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// annotationNoConfig marks commands that run without loading configuration.
const annotationNoConfig = "coalition/no-config"

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
// Config is nil for commands annotated with annotationNoConfig.
type CLIContext struct {
	Config       *config.Config
	ConfigFile   string
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
}

// NewRootCommand creates the root cobra command with all global flags and subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "coalition",
		Short: "Forecast Dutch governing coalitions from a seat distribution",
		Long: "coalition ranks the most plausible governing coalitions for a Dutch election.\n" +
			"Every subset of parties that includes the largest party, clears the seat\n" +
			"threshold and avoids the known unrealistic pairs is scored on historical\n" +
			"cabinet frequency, ideological distance, upper-chamber support, policy-topic\n" +
			"divergence and size penalties.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: search ./coalition.yaml, ~/.coalition, /etc/coalition)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", FormatTable, "output format (table, json, csv)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 0, "operation timeout (default: scoring.timeout)")

	cmd.AddCommand(
		newPredictCmd(),
		newScoreCmd(),
		newHistoryCmd(),
		newProfilesCmd(),
		newMigrateCmd(),
		newImportCmd(),
		newVersionCmd(),
	)

	return cmd
}

// persistentPreRun loads .env and configuration, builds the logger and
// stores the CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	format, err := parseOutputFormat(opts.OutputFormat)
	if err != nil {
		return err
	}

	cliCtx := &CLIContext{
		OutputFormat: format,
		Verbose:      opts.Verbose,
		NoColor:      opts.NoColor || !isTerminal(cmd.OutOrStdout()),
		Timeout:      opts.Timeout,
	}

	if !skipsConfig(cmd) {
		cfg, path, err := initConfig(opts)
		if err != nil {
			return err
		}
		cliCtx.Config = cfg
		cliCtx.ConfigFile = path
		if cliCtx.Timeout == 0 {
			cliCtx.Timeout = cfg.Scoring.Timeout
		}
	}

	logger, err := initLogger(cliCtx.Config, opts)
	if err != nil {
		return errors.Wrap(err, errors.CodeInvalidConfig, "logger initialization failed")
	}
	logging.SetDefault(logger)
	cliCtx.Logger = logger

	if cliCtx.Config != nil {
		source := cliCtx.ConfigFile
		if source == "" {
			source = "defaults+env"
		}
		logger.Debug("configuration loaded",
			logging.String("config", source),
			logging.String("dataset_source", cliCtx.Config.Dataset.Source),
			logging.String("profile", cliCtx.Config.Reference.Profile),
		)
	}

	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// skipsConfig reports whether cmd or one of its parents is annotated with
// annotationNoConfig.
func skipsConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationNoConfig] == "true" {
			return true
		}
	}
	return false
}

// initConfig loads configuration with priority: flags > env > file > defaults.
func initConfig(opts *RootOptions) (*config.Config, string, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, "", errors.Wrap(err, errors.CodeInvalidConfig, "failed to load .env")
	}

	if opts.ConfigPath != "" {
		cfg, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, "", errors.Wrap(err, errors.CodeInvalidConfig, "config initialization failed")
		}
		return cfg, opts.ConfigPath, nil
	}

	cfg, path, err := config.Search()
	if err != nil {
		return nil, "", errors.Wrap(err, errors.CodeInvalidConfig, "config initialization failed")
	}
	return cfg, path, nil
}

// initLogger creates a logger for CLI usage. Reports go to stdout, so logs
// default to stderr in console format.
func initLogger(cfg *config.Config, opts *RootOptions) (logging.Logger, error) {
	level := string(logging.LevelInfo)
	format := "console"
	output := "stderr"
	if cfg != nil {
		level = cfg.Log.Level
		format = cfg.Log.Format
		if cfg.Log.Output != "" {
			output = cfg.Log.Output
		}
	}
	if opts.LogLevel != "" {
		level = strings.ToLower(opts.LogLevel)
	}
	if opts.Verbose {
		level = string(logging.LevelDebug)
	}

	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           format,
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}

	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}

	return cliCtx, nil
}

// requireConfig returns the CLIContext of a command that needs configuration.
func requireConfig(cmd *cobra.Command) (*CLIContext, error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil, err
	}
	if cliCtx.Config == nil {
		return nil, errors.InvalidConfig("configuration not loaded")
	}
	return cliCtx, nil
}

// Execute runs the CLI and returns the process exit status. SIGINT and
// SIGTERM cancel the running command.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd, err)
		logFailure(logging.Default(), err)
		return ExitStatus(err)
	}
	return errors.ExitOK
}

// logFailure logs a failed command. Errors caused by operator input are
// already explained on stderr and only logged at debug level.
func logFailure(logger logging.Logger, err error) {
	code := errors.GetCode(err)
	fields := []logging.Field{logging.String("code", string(code)), logging.Err(err)}
	if code == errors.CodeUnknown || errors.IsUserError(code) {
		logger.Debug("command rejected", fields...)
		return
	}
	logger.Error("command failed", fields...)
}

// ExitStatus maps err to a sysexits-style status. Errors without a code,
// such as cobra flag errors, are usage errors.
func ExitStatus(err error) int {
	if err == nil {
		return errors.ExitOK
	}
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		return errors.ExitUsage
	}
	return errors.ExitStatusForCode(code)
}

//Personal.AI order the ending
