package main

import (
	"fmt"
	"os"

	"fortio.org/log"
	"github.com/gubarz/snipgen/internal/config"
	"github.com/gubarz/snipgen/internal/emitter"
	"github.com/gubarz/snipgen/internal/snippet"
	"github.com/gubarz/snipgen/internal/ui"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "snipgen [input]",
	Short: "Build editor snippets from a name/code list",
	Long: `Converts a text file of name/code pairs into a VS Code
.code-snippets JSON file.

Each line is "name code". __NL__ in code starts a new body line and
__SP__ keeps a space that trimming would drop. A name on its own line
starts a multi-line block fenced by two lines of three backticks.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runBuild,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var checkCmd = &cobra.Command{
	Use:   "check [input]",
	Short: "Parse and validate without writing anything",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

var browseCmd = &cobra.Command{
	Use:   "browse [input]",
	Short: "Browse built snippets interactively",
	Long: `Builds the snippets in memory and opens an interactive list.
Enter emits the selected snippet as JSON (printed, or copied with --copy).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBrowse,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(browseCmd)

	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file (default "+config.DefaultOutput+")")
	rootCmd.PersistentFlags().String("debug-output", "", "Raw dump written when the result is not valid JSON")
	rootCmd.PersistentFlags().String("scope", "", "Scope of every snippet (default "+config.DefaultScope+")")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, verbose, info, warning, error")
	rootCmd.PersistentFlags().Bool("print", false, "Print the JSON instead of writing the output file")
	rootCmd.PersistentFlags().Bool("copy", false, "Copy the JSON to the clipboard")
	browseCmd.Flags().StringP("query", "q", "", "Initial search query")
}

func initConfig() {
	config.Init()
	ui.RefreshStyles()
}

// applyFlags overrides configuration with the flags given on the command line
func applyFlags(cmd *cobra.Command, args []string) {
	if len(args) > 0 {
		config.SetInput(args[0])
	}
	if o, _ := cmd.Flags().GetString("output"); o != "" {
		config.SetOutput(o)
	}
	if d, _ := cmd.Flags().GetString("debug-output"); d != "" {
		config.SetDebugOutput(d)
	}
	if s, _ := cmd.Flags().GetString("scope"); s != "" {
		config.SetScope(s)
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		config.SetLogLevel(l)
	}
	if p, _ := cmd.Flags().GetBool("print"); p {
		config.SetOutputMode(string(emitter.OutputPrint))
	} else if c, _ := cmd.Flags().GetBool("copy"); c {
		config.SetOutputMode(string(emitter.OutputCopy))
	}

	if err := log.SetLogLevelStr(config.GetLogLevel()); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting log level: %v\n", err)
	}
}

// load parses the configured input
func load() (*snippet.Collection, error) {
	input := config.GetInput()
	if _, err := os.Stat(input); err != nil {
		return nil, fmt.Errorf("input error: %w", err)
	}
	c, err := snippet.Load(input, config.GetScope())
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return c, nil
}

func runBuild(cmd *cobra.Command, args []string) error {
	applyFlags(cmd, args)

	em, err := emitter.NewEmitter()
	if err != nil {
		return err
	}

	c, err := load()
	if err != nil {
		return err
	}

	if len(c.Duplicates) > 0 {
		ui.PrintDuplicates(os.Stderr, c.Duplicates)
		return fmt.Errorf("%d duplicate prefixes", len(c.Duplicates))
	}

	return em.Emit(c)
}

func runCheck(cmd *cobra.Command, args []string) error {
	applyFlags(cmd, args)

	c, err := load()
	if err != nil {
		return err
	}

	ui.PrintSummary(os.Stderr, c)
	if err := c.Err(); err != nil {
		return fmt.Errorf("%d duplicate prefixes", len(c.Duplicates))
	}

	// Catch text the emitter would reject
	if _, err := emitter.Format([]byte(c.Literal())); err != nil {
		return err
	}
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	applyFlags(cmd, args)

	em, err := emitter.NewEmitter()
	if err != nil {
		return err
	}

	c, err := load()
	if err != nil {
		return err
	}

	if len(c.Duplicates) > 0 {
		ui.PrintDuplicates(os.Stderr, c.Duplicates)
		return fmt.Errorf("%d duplicate prefixes", len(c.Duplicates))
	}

	query, _ := cmd.Flags().GetString("query")
	return ui.Browse(c, em, query)
}

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		log.Errf("%v", err)
		os.Exit(1)
	}
}
