// Package cmd provides the command-line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mygrid/pkg/app"
)

var (
	flagServer    bool
	flagHost      string
	flagPort      int
	flagNoFIFO    bool
	flagFIFOPath  string
	flagLayout    string
	flagHeadless  bool
	flagAPIBudget int
	flagLogPath   string

	rootCmd = &cobra.Command{
		Use:               "mygrid [FILE]",
		Short:             "An infinite ASCII canvas editor with live zones",
		Long:              "mygrid is a modal, keyboard-driven editor for an unbounded ASCII canvas.\nNamed zones overlay the canvas with live content from commands, terminals,\nnamed pipes, and sockets; a local API channel drives it headlessly.",
		Args:              cobra.MaximumNArgs(1),
		RunE:              runEditor,
		Version:           "1.0.0",
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
)

// Execute runs the root command. Exit codes: 0 normal, 1 fatal
// initialization failure, 2 file load failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.Flags()
	flags.BoolVar(&flagServer, "server", false, "enable the external command API")
	flags.StringVar(&flagHost, "host", "127.0.0.1", "API listen host")
	flags.IntVar(&flagPort, "port", 8765, "API listen port")
	flags.BoolVar(&flagNoFIFO, "no-fifo", false, "disable the API named pipe")
	flags.StringVar(&flagFIFOPath, "fifo", "/tmp/mygrid.fifo", "API named pipe path")
	flags.StringVar(&flagLayout, "layout", "", "load a layout template on startup")
	flags.BoolVar(&flagHeadless, "headless", false, "run without a display (API only)")
	flags.IntVar(&flagAPIBudget, "api-budget", 10, "external commands applied per frame")
	flags.StringVar(&flagLogPath, "log", "mygrid.log", "session log file (empty to disable)")
}

func runEditor(cmd *cobra.Command, args []string) error {
	opts := app.DefaultOptions()
	if len(args) > 0 {
		opts.FilePath = args[0]
	}
	opts.Server = flagServer || flagHeadless
	opts.Host = flagHost
	opts.Port = flagPort
	opts.FIFO = !flagNoFIFO
	opts.FIFOPath = flagFIFOPath
	opts.LayoutName = flagLayout
	opts.Headless = flagHeadless
	opts.APIBudget = flagAPIBudget
	opts.LogPath = flagLogPath

	if opts.APIBudget < 1 {
		return fmt.Errorf("api-budget must be positive, got %d", opts.APIBudget)
	}

	a, err := app.New(opts)
	if err != nil {
		return err
	}
	if code := a.Run(); code != 0 {
		os.Exit(code)
	}
	return nil
}
