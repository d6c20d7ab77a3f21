package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "corsserve",
	Short: "Serve ./content with permissive CORS headers",
	Long: `Serves the "content" directory next to the executable on port 8888, adding
Access-Control-Allow-* headers to every response and answering preflight requests,
so a page on another origin (for example a bundler dev server) can fetch local assets.`,
	Args:          cobra.NoArgs,
	RunE:          runServe,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command with the process arguments and exits with
// its status.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the root command and returns the process exit code. Errors
// are printed to stderr.
func run(args []string, stdout, stderr io.Writer) int {
	if args == nil {
		// cobra falls back to os.Args for nil.
		args = []string{}
	}
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
