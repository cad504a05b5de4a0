package commands

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// globalFlags are shared by every subcommand
type globalFlags struct {
	configPath string
	fixture    string
	noColor    bool
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "resourcegraph",
		Short: "Render record graphs as JSON:API documents",
		Long: color.CyanString(`resourcegraph - JSON:API documents from in-memory record graphs

resourcegraph loads typed records and their relationships from a YAML
fixture and renders them as JSON:API documents, either once on the command
line or over a read-only HTTP API.

Features:
  • Compound documents with dotted include paths
  • Sparse fieldsets per resource type
  • Page and offset pagination links
  • Optional memory or Redis document cache`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor {
				color.NoColor = true
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Config file (default is ./resourcegraph.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flags.fixture, "fixture", "f", "", "Fixture file, overrides the configured fixture")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newRenderCommand(flags))
	rootCmd.AddCommand(newTypesCommand(flags))
	rootCmd.AddCommand(newServeCommand(flags))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the resourcegraph version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)
			out := cmd.OutOrStdout()

			for _, row := range [][2]string{
				{"resourcegraph version: ", Version},
				{"Git commit: ", GitCommit},
				{"Build date: ", BuildDate},
				{"Go version: ", goVer},
			} {
				titleColor.Fprint(out, row[0])
				valueColor.Fprintln(out, row[1])
			}
		},
	}
}

// displayError carries a message already formatted by the ui package
type displayError struct {
	message string
	err     error
}

func (e *displayError) Error() string {
	return e.err.Error()
}

func (e *displayError) Unwrap() error {
	return e.err
}

func display(message string, err error) error {
	return &displayError{message: message, err: err}
}

// printError writes err to w, preferring the preformatted form
func printError(w io.Writer, err error) {
	var de *displayError
	if errors.As(err, &de) {
		fmt.Fprint(w, de.message)
		return
	}
	errorColor := color.New(color.FgRed, color.Bold)
	errorColor.Fprintf(w, "Error: %v\n", err)
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		return err
	}
	return nil
}
