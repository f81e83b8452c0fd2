package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	dwerrors "github.com/vango-dev/docwidget/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// out is where command output goes. Tests replace it.
var out io.Writer = os.Stdout

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts globalOptions

	rootCmd := &cobra.Command{
		Use:   "docwidget",
		Short: "Jamaah document upload and preview widget",
		Long: `docwidget hosts and drives the jamaah document widget.

The widget validates selected files, forwards them to the upload
endpoint and previews stored documents through the file endpoint
or presigned S3 URLs.

Configuration is read from docwidget.json or docwidget.yaml in the
working directory, or from the file given with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				dwerrors.DisableColors()
			}
			setupLogging(opts.verbose)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file or directory (default: working directory)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log debug output")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		serveCmd(&opts),
		validateCmd(&opts),
		documentsCmd(&opts),
		uploadCmd(&opts),
		previewCmd(&opts),
		versionCmd(),
	)
	return rootCmd
}

type globalOptions struct {
	configPath string
	verbose    bool
	noColor    bool
}

func printError(err error) {
	var we *dwerrors.WidgetError
	if errors.As(err, &we) {
		fmt.Fprintln(os.Stderr, we.Format())
		return
	}
	fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Fprintf(out, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Fprintf(out, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Fprintf(out, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(format string, args ...any) {
	fmt.Fprintf(out, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
