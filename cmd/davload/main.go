// Command davload stress-tests a WebDAV server with concurrent HEAD
// requests against randomized evidence folders.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"davload/internal/collector"
	"davload/internal/config"
	"davload/internal/history"
	"davload/internal/loadgen"
	"davload/internal/progress"
	"davload/internal/ratelimit"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	configPath  string
	flagRun     config.Run
	output      string
	quiet       bool
	verbose     bool
	historyFile string
	noHistory   bool
)

var rootCmd = &cobra.Command{
	Use:   "davload [flags] BASE_URL",
	Short: "davload floods a WebDAV share with authenticated HEAD requests",
	Long: `davload drives concurrent HTTP HEAD requests against the evidence
folders of a WebDAV share to measure how the server holds up under load.

Requests target <BASE_URL>/evidence/<XX> where XX is a random two-digit
hex folder, carrying Basic auth credentials on every probe. Requests are
dispatched in synchronized batches bounded by the concurrency limit, and
the final report breaks results down by status code.`,
	Version:       config.Version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&historyFile, "history-file", "", "history database path (default ~/.davload/history.db)")

	rootCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML run profile")
	rootCmd.Flags().StringVarP(&flagRun.Username, "username", "u", os.Getenv("DAVLOAD_USERNAME"), "Basic auth username (env DAVLOAD_USERNAME)")
	rootCmd.Flags().StringVarP(&flagRun.Password, "password", "p", os.Getenv("DAVLOAD_PASSWORD"), "Basic auth password (env DAVLOAD_PASSWORD)")
	rootCmd.Flags().IntVarP(&flagRun.Requests, "requests", "n", config.DefaultRequests, "total number of requests to send")
	rootCmd.Flags().IntVarP(&flagRun.Concurrency, "concurrency", "c", config.DefaultConcurrency, "maximum requests in flight")
	rootCmd.Flags().StringVar(&flagRun.UserAgent, "user-agent", config.DefaultUserAgent, "User-Agent header value")
	rootCmd.Flags().DurationVar(&flagRun.Timeout, "timeout", config.DefaultTimeout, "per-request timeout")
	rootCmd.Flags().IntVar(&flagRun.Pace, "pace", 0, "dispatch rate in requests per second (0 = unpaced)")
	rootCmd.Flags().StringVar(&flagRun.Engine, "engine", config.EngineNet, "HTTP engine: net or fasthttp")
	rootCmd.Flags().BoolVarP(&flagRun.Insecure, "insecure", "k", false, "skip TLS certificate verification")
	rootCmd.Flags().StringVarP(&output, "output", "o", "text", "report format: text or json")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress output during the run")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every request outcome to stderr")
	rootCmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record this run in history")

	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(ExitSuccess)
}

func runRoot(cmd *cobra.Command, args []string) error {
	if output != "text" && output != "json" {
		return fmt.Errorf("--output must be 'text' or 'json', got %q", output)
	}

	cfg := flagRun
	if len(args) == 1 {
		cfg.BaseURL = args[0]
	}

	if configPath != "" {
		fileCfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		mergeFileConfig(cmd, &cfg, *fileCfg)
	}

	gen, err := loadgen.New(cfg)
	if err != nil {
		return err
	}
	cfg = gen.Config()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	interrupted := false
	go func() {
		<-sigCh
		interrupted = true
		if !quiet {
			fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, finishing current batch...")
		}
		cancel()
	}()

	prog := progress.New(quiet)
	gen.Observer = prog
	gen.Pacer = ratelimit.New(cfg.Pace)
	if verbose {
		gen.Debug = loadgen.NewDebugLogger(os.Stderr)
	}

	prog.Printf("davload %s starting: %d requests, concurrency %d, engine %s, target %s",
		config.Version, cfg.Requests, cfg.Concurrency, cfg.Engine, cfg.BaseURL)

	summary := gen.Run(ctx)
	prog.Clear()

	if output == "json" {
		collector.FormatJSON(os.Stdout, summary)
	} else {
		collector.FormatText(os.Stdout, summary)
	}

	if !noHistory {
		if err := saveHistory(cfg, summary); err != nil {
			fmt.Fprintf(os.Stderr, "warning: saving run history: %v\n", err)
		}
	}

	// Partial results from an interrupted run are still a successful
	// exit; only configuration errors fail the process.
	if interrupted && output == "text" {
		fmt.Fprintln(os.Stderr, "Run interrupted; partial results reported.")
	}

	return nil
}

// mergeFileConfig overlays profile values onto cfg for every setting the
// command line leaves untouched. Explicit flags always win.
func mergeFileConfig(cmd *cobra.Command, cfg *config.Run, file config.Run) {
	if cfg.BaseURL == "" && file.BaseURL != "" {
		cfg.BaseURL = file.BaseURL
	}
	if !cmd.Flags().Changed("username") && file.Username != "" {
		cfg.Username = file.Username
	}
	if !cmd.Flags().Changed("password") && file.Password != "" {
		cfg.Password = file.Password
	}
	if !cmd.Flags().Changed("requests") && file.Requests > 0 {
		cfg.Requests = file.Requests
	}
	if !cmd.Flags().Changed("concurrency") && file.Concurrency > 0 {
		cfg.Concurrency = file.Concurrency
	}
	if !cmd.Flags().Changed("user-agent") && file.UserAgent != "" {
		cfg.UserAgent = file.UserAgent
	}
	if !cmd.Flags().Changed("timeout") && file.Timeout > 0 {
		cfg.Timeout = file.Timeout
	}
	if !cmd.Flags().Changed("pace") && file.Pace > 0 {
		cfg.Pace = file.Pace
	}
	if !cmd.Flags().Changed("engine") && file.Engine != "" {
		cfg.Engine = file.Engine
	}
	if !cmd.Flags().Changed("insecure") && file.Insecure {
		cfg.Insecure = true
	}
}

func saveHistory(cfg config.Run, summary *collector.Summary) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Save(history.NewRecord(cfg, summary))
}

func openHistory() (*history.Store, error) {
	path := historyFile
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	return history.Open(path)
}
