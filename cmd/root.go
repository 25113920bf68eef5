package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/jiralink/config"
	"github.com/s0up4200/jiralink/filter"
	"github.com/s0up4200/jiralink/jira"
	"github.com/s0up4200/jiralink/rest"
)

var (
	cfgFile    string
	cfg        *config.Config
	logger     zerolog.Logger
	restClient *rest.Client
	jiraClient *jira.Jira

	version   = "dev"
	buildTime = "unknown"

	// Command flags
	filterExpr string
	preset     string
	trace      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "jiralink",
	Short: "A small Jira REST client for projects, versions and attachments",
	Long: `jiralink talks to the Jira REST API directly or through a forwarding
mediator. It lists projects and versions, manages versions, downloads
attachments and runs the OAuth token exchange.`,
	PersistentPreRunE: initializeApp,
	SilenceUsage:      true,
}

// SetVersion records build information for the version and update commands
func SetVersion(v, built string) {
	version = v
	buildTime = built
	rootCmd.Version = fmt.Sprintf("%s (built %s)", v, built)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "log every request and response")
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	if cmd.Flags().Changed("trace") {
		cfg.Jira.Trace = trace
	}

	opts, err := cfg.ClientOptions()
	if err != nil {
		return fmt.Errorf("failed to configure client: %w", err)
	}

	restClient, err = rest.NewClient(cfg.Jira.URL, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create Jira client: %w", err)
	}
	jiraClient = jira.New(restClient, logger)

	if cfg.Mediator.Enabled {
		logger.Debug().Str("mediator", cfg.Mediator.URL).Msg("Using mediated execution")
	}

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(os.Stderr),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// getFilter resolves --filter or --preset into a compiled filter. No flag
// means no filtering.
func getFilter() (*filter.Filter, error) {
	expression := filterExpr
	if expression == "" && preset != "" {
		named, ok := cfg.Filter[strings.ToLower(preset)]
		if !ok {
			return nil, fmt.Errorf("preset '%s' not found in config", preset)
		}
		expression = named
	}
	if expression == "" {
		return nil, nil
	}

	f, err := filter.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return f, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	cmd.Flags().StringVarP(&preset, "preset", "p", "", "use a named filter from config")
}

// confirm asks a yes/no question on the terminal. Without a terminal it
// refuses unless assumeYes is set.
func confirm(prompt string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	if !isTerminal(os.Stdin) {
		return false
	}
	fmt.Printf("%s [y/N]: ", prompt)
	var response string
	fmt.Scanln(&response)
	return strings.ToLower(strings.TrimSpace(response)) == "y"
}
