package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"microagent/internal/agent"
	"microagent/internal/approval"
	"microagent/internal/config"
	"microagent/internal/logging"
	"microagent/internal/perception"
	"microagent/internal/session"
	"microagent/internal/tools"
	"microagent/internal/tools/core"
	"microagent/internal/tools/shell"
	"microagent/internal/ux"
)

// errNoInstruction is returned when the operator submits an empty request.
var errNoInstruction = errors.New("no instruction given")

// runAgent wires the configured backend, the tool registry and the console
// gate, then runs one request to completion.
func runAgent(cmd *cobra.Command, opts *cliOptions, args []string) error {
	ws, err := resolveWorkspace(opts.workspace)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, opts, ws)
	if err != nil {
		return err
	}

	if err := logging.Initialize(ws, logging.Options{
		DebugMode:  cfg.Logging.DebugMode,
		Level:      cfg.Logging.Level,
		JSONFormat: cfg.Logging.JSONFormat,
		Categories: cfg.Logging.Categories,
	}); err != nil {
		logger.Warn("Failed to initialize file logging", zap.Error(err))
	}
	defer logging.CloseAll()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	client, err := perception.NewClient(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create model client: %w", err)
	}

	registry := tools.NewRegistry()
	if err := core.RegisterAll(registry); err != nil {
		return fmt.Errorf("failed to register core tools: %w", err)
	}
	if err := shell.RegisterAll(registry); err != nil {
		return fmt.Errorf("failed to register shell tools: %w", err)
	}

	systemPrompt := cfg.Agent.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = agent.DefaultSystemPrompt(registry)
	}

	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())
	console := ux.NewConsole(out, ux.Options{Markdown: cfg.UI.Markdown, WordWrap: cfg.UI.WordWrap})
	name, hint := providerBanner(cfg.LLM)
	console.Banner(name, client.Model(), hint)

	input := strings.TrimSpace(strings.Join(args, " "))
	if input == "" {
		console.Prompt("How can I help you?")
		input, err = readLine(in)
		if err != nil {
			return fmt.Errorf("failed to read instruction: %w", err)
		}
		if input == "" {
			return errNoInstruction
		}
	}

	logger.Info("Processing instruction",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", client.Model()),
		zap.Int("max_steps", cfg.Agent.MaxSteps),
		zap.Int("tools", registry.Count()))

	sess := session.New(systemPrompt, cfg.Agent.MaxSteps)
	a := agent.New(client, registry, approval.NewConsoleGate(in, out), console).
		WithScanMode(cfg.Agent.ScanMode())

	var result *agent.RunResult
	runDone := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(runDone)
		res, err := a.Run(gctx, sess, input)
		if err != nil {
			return err
		}
		result = res
		return nil
	})

	g.Go(func() error {
		return watchSignals(gctx, runDone)
	})

	if err := g.Wait(); err != nil {
		console.Error(err)
		logger.Error("Run failed", zap.Error(err))
		return err
	}

	logger.Info("Run finished",
		zap.String("outcome", result.Outcome.String()),
		zap.Int("steps", result.Steps))
	return nil
}

// watchSignals turns the first SIGINT/SIGTERM into a cancellation of the run.
// Default handling is restored afterwards, so a second signal kills the
// process even when the loop is blocked on operator input.
func watchSignals(ctx context.Context, runDone <-chan struct{}) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		signal.Reset(syscall.SIGINT, syscall.SIGTERM)
		return fmt.Errorf("interrupted by %s", sig)
	case <-runDone:
		return nil
	case <-ctx.Done():
		return nil
	}
}

func resolveWorkspace(dir string) (string, error) {
	if dir == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid workspace %q: %w", dir, err)
	}
	// Tools resolve relative paths against the process working directory.
	if err := os.Chdir(abs); err != nil {
		return "", fmt.Errorf("failed to enter workspace: %w", err)
	}
	return abs, nil
}

// loadConfig reads the config file and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command, opts *cliOptions, ws string) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = filepath.Join(ws, ".microagent", "config.yaml")
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.LLM.Provider = opts.provider
		cfg.LLM.ApplyProviderDefaults()
	}
	if flags.Changed("model") {
		cfg.LLM.Model = opts.model
	}
	if flags.Changed("base-url") {
		cfg.LLM.BaseURL = opts.baseURL
	}
	if flags.Changed("timeout") {
		cfg.LLM.Timeout = opts.timeout
	}
	if flags.Changed("max-steps") {
		cfg.Agent.MaxSteps = opts.maxSteps
	}
	if flags.Changed("markdown") {
		cfg.UI.Markdown = opts.markdown
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func providerBanner(llm config.LLMConfig) (name, hint string) {
	switch llm.Provider {
	case config.ProviderGemini:
		return "Gemini", ""
	default:
		return "Ollama", "Make sure Ollama is running: ollama serve"
	}
}

// readLine reads one line without its line ending. End of input after a
// partial line still returns that line.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
