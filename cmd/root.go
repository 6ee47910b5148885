package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/chukul/cloudtop/internal/actions"
	"github.com/chukul/cloudtop/internal/awscreds"
	"github.com/chukul/cloudtop/internal/catalog"
	"github.com/chukul/cloudtop/internal/dispatch"
	"github.com/chukul/cloudtop/internal/errs"
	"github.com/chukul/cloudtop/internal/logging"
	"github.com/chukul/cloudtop/internal/sigv4"
	"github.com/chukul/cloudtop/internal/tui"
	"github.com/chukul/cloudtop/internal/ui"
)

// exitError carries the process exit code Execute should use, distinct from a plain
// cobra usage error so Execute can tell a CLI parse failure (2) apart from a
// credential resolution failure before the TUI ever starts (3).
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

var (
	flagProfile     string
	flagRegion      string
	flagEndpointURL string
	flagReadonly    bool
	flagLogLevel    string
)

var rootCmd = &cobra.Command{
	Use:           "cloudtop",
	Short:         "cloudtop is a terminal explorer for your AWS resources",
	Long:          "cloudtop is a terminal explorer for browsing and acting on AWS resources across services, with fuzzy resource switching, pagination, and a small set of EC2 lifecycle actions.",
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	registerFlags()
}

func registerFlags() {
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "default", "AWS named profile to use")
	rootCmd.PersistentFlags().StringVar(&flagRegion, "region", "us-east-1", "initial AWS region")
	rootCmd.PersistentFlags().StringVar(&flagEndpointURL, "endpoint-url", "", "override the service endpoint (e.g. for LocalStack)")
	rootCmd.PersistentFlags().BoolVar(&flagReadonly, "readonly", false, "refuse all mutating actions")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: error, warn, info, debug, trace")
}

func runTUI(cmd *cobra.Command, args []string) error {
	logger := logging.New(flagLogLevel)

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return &exitError{code: 2, err: fmt.Errorf("cloudtop requires an interactive terminal")}
	}

	registry, err := catalog.LoadRegistry()
	if err != nil {
		return &exitError{code: 1, err: fmt.Errorf("loading resource catalog: %w", err)}
	}

	credsService, err := awscreds.NewService(logger)
	if err != nil {
		return &exitError{code: 3, err: &errs.CredentialError{Kind: errs.CredentialMissing, Profile: flagProfile, Cause: err}}
	}

	provider := awscreds.ProfileCredentialsProvider{Service: credsService, Profile: flagProfile}
	if err := ui.Spin(fmt.Sprintf("resolving credentials for profile %q", flagProfile), func() error {
		_, err := provider.Resolve(context.Background())
		return err
	}); err != nil {
		return &exitError{code: 3, err: fmt.Errorf("resolving credentials for profile %q: %w", flagProfile, err)}
	}

	client := sigv4.NewClient(logger, provider, flagRegion, flagEndpointURL)
	engine := dispatch.NewEngine(registry, client)
	executor := actions.NewExecutor(client, flagReadonly)

	model := tui.New(registry, engine, executor, credsService, client, logger, flagProfile, flagRegion, flagReadonly)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return &exitError{code: 1, err: fmt.Errorf("running tui: %w", err)}
	}
	return nil
}

// Execute runs the CLI, translating an *exitError into the matching process exit
// code (0 normal, 1 uncaught error, 2 CLI parse error, 3 credential resolution
// failure before the TUI starts); any other error comes from cobra's flag or argument
// parsing and exits with 2.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "cloudtop:", ee.err)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "cloudtop:", err)
		os.Exit(2)
	}
}
