package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"tumblrbackup/pkg/backup"
	"tumblrbackup/pkg/config"
	"tumblrbackup/pkg/logger"
	"tumblrbackup/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var errMissingAccount = errors.New("an account to back up is required")

// cli holds the parsed flags of one invocation
type cli struct {
	stdout io.Writer
	stderr io.Writer

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool

	// Backup flags
	csv        bool
	saveFolder string
	startPost  int
	failFast   bool
	baseURL    string
	pageDelay  time.Duration
}

// newRootCmd builds the command tree writing to stdout and stderr
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "tumblr-backup <account>",
		Short: "Back up a Tumblr blog to local HTML files or a CSV export",
		Long: `tumblr-backup mirrors the posts of a public blog to disk using the v1 read API.

By default every post becomes <slug>.html in the save folder, with photos in
images/ and videos in videos/. With --csv=true all posts go to <account>.csv
instead and no media is downloaded.

Pages of 50 posts are requested with a pause between them. A page that fails
is logged and skipped; the backup continues with the next one.`,
		Example: `  # Back up to ./staff.tumblr.com
  tumblr-backup staff.tumblr.com

  # Export to CSV in a specific folder
  tumblr-backup staff.tumblr.com --csv=true --save_folder=/tmp/staff

  # Continue from post 500
  tumblr-backup staff.tumblr.com --start_post=500`,
		Args:          cobra.MaximumNArgs(1),
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
				cmd.SetOut(c.stderr)
				_ = cmd.Usage()
				return errMissingAccount
			}
			return c.runBackup(cmd, strings.TrimSpace(args[0]))
		},
	}

	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&c.configFile, "config", "c", "", "config file (default is ./.tumblr-backup.yaml or $HOME/.config/tumblr-backup/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&c.quiet, "quiet", "q", false, "suppress all output except errors")

	rootCmd.Flags().BoolVar(&c.csv, "csv", false, "write all posts to <account>.csv instead of HTML files")
	rootCmd.Flags().StringVar(&c.saveFolder, "save_folder", "", "folder to save into (default: ./<account>)")
	rootCmd.Flags().IntVar(&c.startPost, "start_post", 0, "index of the first post to back up")
	rootCmd.Flags().BoolVar(&c.failFast, "fail-fast", false, "stop at the first post that cannot be saved")
	rootCmd.Flags().StringVar(&c.baseURL, "base-url", "", "API base URL replacing http://<account>")
	rootCmd.Flags().DurationVar(&c.pageDelay, "page-delay", 5*time.Second, "pause before each page request")

	rootCmd.SetVersionTemplate(`tumblr-backup {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(newConfigCmd(c))
	return rootCmd
}

// execute runs the CLI and returns the process exit code
func execute(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// flagMap returns the flags that were set on the command line, keyed the
// way config.MergeCommandLineFlags expects.
func (c *cli) flagMap(cmd *cobra.Command, account string) map[string]interface{} {
	flags := map[string]interface{}{"account": account}
	changed := cmd.Flags().Changed

	if changed("save_folder") {
		flags["save-folder"] = c.saveFolder
	}
	if changed("csv") {
		flags["csv"] = c.csv
	}
	if changed("start_post") {
		flags["start-post"] = c.startPost
	}
	if changed("fail-fast") {
		flags["fail-fast"] = c.failFast
	}
	if changed("base-url") {
		flags["base-url"] = c.baseURL
	}
	if changed("page-delay") {
		flags["page-delay"] = c.pageDelay
	}
	if c.logLevel != "" {
		flags["log-level"] = c.logLevel
	}
	return flags
}

func (c *cli) runBackup(cmd *cobra.Command, account string) error {
	console := ui.NewConsole(c.stdout, ui.Options{NoColor: c.noColor, Quiet: c.quiet})

	cfg, err := config.Load(c.configFile, c.flagMap(cmd, account))
	if err != nil {
		console.Error("Failed to load configuration")
		return err
	}

	log, err := logger.Initialize(&cfg.Logging, logger.Options{Console: c.stderr, NoColor: c.noColor || !ui.IsTerminal(c.stderr)})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log.WithField("version", version).Debug("tumblr-backup starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := backup.New(cfg, backup.Options{Console: console, Logger: log})
	if err != nil {
		return err
	}

	if _, err := runner.Run(ctx); err != nil {
		log.WithError(err).Error("Backup failed")
		console.Error("Backup failed: " + err.Error())
		return err
	}
	return nil
}
