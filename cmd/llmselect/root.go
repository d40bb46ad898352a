package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ineyio/llmselector"
	"github.com/ineyio/llmselector/backend/gemini"
	"github.com/ineyio/llmselector/backend/openaicompat"
)

type globalFlags struct {
	config string
	debug  bool
}

// requestFlags are shared by the commands that read a prompt.
type requestFlags struct {
	promptFile    string
	messages      bool
	functionsFile string
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "llmselect",
		Short: "Pick the smallest LLM backend that fits a prompt",
		Long: `llmselect routes a prompt to the cheapest configured model whose context
window still fits the prompt plus the expected response.

Without --config the default two-tier OpenAI setup is used
(gpt-3.5-turbo-0613, then gpt-3.5-turbo-16k-0613).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&g.config, "config", "c", "", "Path to a YAML or TOML rules file")
	cmd.PersistentFlags().BoolVar(&g.debug, "debug", false, "Log selection details to stderr")

	cmd.AddCommand(newSelectCmd(g), newCountCmd(g), newWindowCmd(g), newRulesCmd(g))
	return cmd
}

func (g *globalFlags) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if g.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (g *globalFlags) selector(cmd *cobra.Command) (*llmselector.Selector, error) {
	logger := g.logger(cmd.ErrOrStderr())
	if g.config == "" {
		return openaicompat.DefaultSelector(os.Getenv("OPENAI_API_KEY"), llmselector.WithLogger(logger))
	}
	cfg, err := llmselector.LoadConfig(g.config)
	if err != nil {
		return nil, err
	}
	return llmselector.NewSelectorFromConfig(cfg, backendFactory, llmselector.WithLogger(logger))
}

// backendFactory routes gemini rules to the Gemini backend and everything
// else to the OpenAI-compatible one.
func backendFactory(rc llmselector.RuleConfig) (llmselector.Backend, error) {
	if rc.Provider == "gemini" {
		return gemini.Factory(rc)
	}
	return openaicompat.Factory(rc)
}

func (r *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&r.promptFile, "prompt-file", "f", "-", "Prompt file, - for stdin")
	cmd.Flags().BoolVar(&r.messages, "messages", false, "Prompt file is a JSON array of chat messages")
	cmd.Flags().StringVar(&r.functionsFile, "functions", "", "JSON file with function schemas")
}

func (r *requestFlags) load(cmd *cobra.Command) (llmselector.Prompt, []llmselector.FunctionSchema, error) {
	var data []byte
	var err error
	if r.promptFile == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(r.promptFile)
	}
	if err != nil {
		return llmselector.Prompt{}, nil, fmt.Errorf("read prompt: %w", err)
	}

	prompt := llmselector.TextPrompt(string(data))
	if r.messages {
		var msgs []llmselector.Message
		if err := json.Unmarshal(data, &msgs); err != nil {
			return llmselector.Prompt{}, nil, fmt.Errorf("parse messages: %w", err)
		}
		prompt = llmselector.MessagesPrompt(msgs...)
	}

	var functions []llmselector.FunctionSchema
	if r.functionsFile != "" {
		raw, err := os.ReadFile(r.functionsFile)
		if err != nil {
			return llmselector.Prompt{}, nil, fmt.Errorf("read functions: %w", err)
		}
		if err := json.Unmarshal(raw, &functions); err != nil {
			return llmselector.Prompt{}, nil, fmt.Errorf("parse functions: %w", err)
		}
	}
	return prompt, functions, nil
}
