package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ka2n/exo/browser"
	"github.com/ka2n/exo/config"
	"github.com/ka2n/exo/exoerr"
	"github.com/ka2n/exo/fetcher"
	"github.com/ka2n/exo/log"
	"github.com/ka2n/exo/mcp"
	"github.com/ka2n/exo/render"
	"github.com/ka2n/exo/weburl"
	"github.com/mattn/go-isatty"
	"github.com/morikuni/failure/v2"
	sysbrowser "github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var (
	// Command line flags
	browserFlag bool
	renderOpt   renderFlag
	timeoutFlag time.Duration

	// Root command
	rootCmd = &cobra.Command{
		Use:           "exo [url]",
		Short:         "Experimental terminal browser shell",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `exo is an experimental browser shell. It loads a page over HTTP(S) in the
background and shows its content as text in the terminal.

Without a URL argument the home page (EXO_HOME) is loaded. When standard output
is not a terminal, exo prints the page and exits like "exo fetch".`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRoot,
	}

	fetchCmd = &cobra.Command{
		Use:   "fetch <url>",
		Short: "Load a page once and print its content",
		Long: `Load a page through the same pipeline as the shell and print its content.
Each state the page goes through is written to standard error.`,
		Args: cobra.ExactArgs(1),
		RunE: runFetch,
	}

	renderersCmd = &cobra.Command{
		Use:   "renderers",
		Short: "List available content renderers",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Renderers:")
			for _, name := range render.Names() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
			}
		},
	}

	// Version command
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print detailed version information about exo",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("exo version %s\n", Version)
			fmt.Printf("  commit: %s\n", Commit)
			fmt.Printf("  built:  %s\n", Date)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().VarP(&renderOpt, "render", "r",
		"Content renderer ("+strings.Join(render.Names(), ", ")+")")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 0, "Fetch timeout, 0 for none")
	rootCmd.Flags().BoolVarP(&browserFlag, "browser", "b", false, "Open the page in the system browser instead")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(renderersCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(mcp.Command(loadConfig, Version))
}

// Run executes the main CLI functionality
func Run() error {
	return rootCmd.Execute()
}

// loadConfig reads the environment and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if renderOpt.IsSet {
		cfg.Render = renderOpt.Value
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = timeoutFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newController wires the pipeline described by cfg
func newController(cfg *config.Config) (*browser.Controller, error) {
	transformer, err := render.ByName(cfg.Render)
	if err != nil {
		return nil, err
	}
	return browser.NewController(
		fetcher.New(cfg.Timeout),
		transformer,
		browser.NewChannel(cfg.ChannelCapacity),
	), nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	target := cfg.Home
	if len(args) == 1 {
		target = args[0]
	}

	if browserFlag {
		return openInBrowser(cmd.OutOrStdout(), target)
	}

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return fetchOnce(ctrl, target, cmd.OutOrStdout(), cmd.ErrOrStderr())
	}

	restore := redirectLogs(cfg.Debug)
	defer restore()

	return RunShell(ctrl, target, cfg.Render == "markdown")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctrl, err := newController(cfg)
	if err != nil {
		return err
	}
	defer ctrl.Close()

	return fetchOnce(ctrl, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// fetchOnce loads target and waits for its terminal state.
// States are reported on stderr; the content goes to stdout.
func fetchOnce(ctrl *browser.Controller, target string, stdout, stderr io.Writer) error {
	updates, ok := ctrl.Updates().Attach()
	if !ok {
		return exoerr.New(exoerr.Core, "update channel already has a consumer").Failure()
	}

	ctrl.RequestLoad(target)
	for s := range updates {
		fmt.Fprintln(stderr, s.String())
		if !s.Status.IsTerminal() {
			continue
		}
		if s.Status == browser.StatusError {
			return s.Err.Failure()
		}
		fmt.Fprintln(stdout, s.Output.Text)
		return nil
	}

	return failure.New(LoadFailed,
		failure.Message("Update stream closed before the page finished loading"),
		failure.Context{
			"url": target,
		},
	)
}

// RunShell runs the terminal shell on ctrl, loading startURL first
func RunShell(ctrl *browser.Controller, startURL string, markdown bool) error {
	updates, ok := ctrl.Updates().Attach()
	if !ok {
		return exoerr.New(exoerr.Core, "update channel already has a consumer").Failure()
	}

	p := tea.NewProgram(
		newShell(ctrl, updates, startURL, markdown),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return exoerr.Newf(exoerr.Core, "Terminal shell error: %v", err).Failure()
	}
	return nil
}

// redirectLogs keeps log output off the screen the shell draws on.
// With debug enabled logs go to exo-debug.log.
func redirectLogs(debug bool) func() {
	if !debug {
		log.InitLoggerWithWriter(io.Discard)
		return log.InitLogger
	}

	f, err := tea.LogToFile("exo-debug.log", "exo")
	if err != nil {
		log.InitLoggerWithWriter(io.Discard)
		return log.InitLogger
	}
	log.InitLoggerWithWriter(f)
	return func() {
		f.Close()
		log.InitLogger()
	}
}

// openInBrowser opens target in the default browser
func openInBrowser(out io.Writer, target string) error {
	u, err := weburl.Parse(target)
	if err != nil {
		return failure.New(InvalidArguments,
			failure.Message("Invalid URL"),
			failure.Context{
				"url":   target,
				"error": err.Error(),
			},
		)
	}

	fmt.Fprintf(out, "Opening in browser: %s\n", u)
	if err := sysbrowser.OpenURL(u.String()); err != nil {
		return failure.New(BrowserFailed,
			failure.Message("Failed to open browser"),
			failure.Context{
				"url":   u.String(),
				"error": err.Error(),
			},
		)
	}
	return nil
}
