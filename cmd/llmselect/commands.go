package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ineyio/llmselector"
)

func newSelectCmd(g *globalFlags) *cobra.Command {
	var (
		req    requestFlags
		expect int
		stream bool
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Print the model chosen for a prompt",
		Example: `  llmselect select -f prompt.txt
  llmselect select -c rules.yaml --messages -f chat.json --expect 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.selector(cmd)
			if err != nil {
				return err
			}
			prompt, functions, err := req.load(cmd)
			if err != nil {
				return err
			}

			b, err := s.Select(llmselector.Request{
				Prompt:                   prompt,
				Functions:                functions,
				ExpectedGenerationTokens: expect,
				Streaming:                stream,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), b.ModelName())
			return nil
		},
	}

	req.register(cmd)
	cmd.Flags().IntVar(&expect, "expect", 0, "Expected number of generated tokens")
	cmd.Flags().BoolVar(&stream, "stream", false, "Select the streaming variant")
	return cmd
}

func newCountCmd(g *globalFlags) *cobra.Command {
	var (
		req   requestFlags
		exact bool
	)

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Print the token count of a prompt",
		Long: `Print the token count of a prompt and its function schemas.

The fast estimate is used unless --exact is given, in which case the
tokenizer of the first configured backend counts the prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.selector(cmd)
			if err != nil {
				return err
			}
			prompt, functions, err := req.load(cmd)
			if err != nil {
				return err
			}

			n, err := s.TokenCount(prompt, functions, exact)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}

	req.register(cmd)
	cmd.Flags().BoolVar(&exact, "exact", false, "Count with the backend tokenizer")
	return cmd
}

func newWindowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "window <model>",
		Short: "Print the known context window of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup := llmselector.LookupContextWindow
			if g.config != "" {
				s, err := g.selector(cmd)
				if err != nil {
					return err
				}
				lookup = s.ContextWindow
			}

			n, ok := lookup(args[0])
			if !ok {
				return &llmselector.ConfigurationError{Op: "window", Model: args[0], Err: llmselector.ErrUnknownModel}
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func newRulesCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the configured rules in selection order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := g.selector(cmd)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tMAX TOKENS\tMODEL")
			for i, r := range s.Rules() {
				fmt.Fprintf(w, "%d\t%d\t%s\n", i, r.MaxTokens, r.Backend.ModelName())
			}
			return w.Flush()
		},
	}
}
