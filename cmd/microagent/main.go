package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// cliOptions holds the flag values of one invocation.
type cliOptions struct {
	configPath string
	provider   string
	model      string
	baseURL    string
	timeout    string
	maxSteps   int
	workspace  string
	markdown   bool
	verbose    bool
}

// logger is the command-level logger; category logs go to internal/logging.
var logger = zap.NewNop()

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:   "microagent [instruction]",
		Short: "A minimal coding agent driven by a local or hosted model",
		Long: `microagent sends your request to a language model and lets it work on the
current directory through four tools: edit_file, run_command, list_directory
and read_file_content. Every file edit and shell command is shown first and
runs only after you answer "y".

Run without arguments to be prompted for an instruction.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			l, err := config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAgent(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file (default: <workspace>/.microagent/config.yaml)")
	flags.StringVar(&opts.provider, "provider", "", "Model backend: ollama or gemini")
	flags.StringVarP(&opts.model, "model", "m", "", "Model name")
	flags.StringVar(&opts.baseURL, "base-url", "", "Ollama server URL")
	flags.StringVar(&opts.timeout, "timeout", "", "Model request timeout (e.g. 120s)")
	flags.IntVar(&opts.maxSteps, "max-steps", 0, "Maximum model round-trips")
	flags.StringVarP(&opts.workspace, "workspace", "w", "", "Workspace directory (default: current)")
	flags.BoolVar(&opts.markdown, "markdown", false, "Render the final answer as markdown")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
