// Package main provides the CLI entry point for scim-sanity, a tool that
// validates SCIM 2.0 payloads and probes live SCIM servers for protocol
// conformance.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/scimtools/scim-sanity/log"
	"github.com/scimtools/scim-sanity/probe"
	"github.com/scimtools/scim-sanity/validate"
	"github.com/scimtools/scim-sanity/version"
)

func main() {
	logCfg := log.NewConfig()
	probeCfg := probe.NewConfig()

	var (
		patchMode bool
		readStdin bool
	)

	rootCmd := &cobra.Command{
		Use:   "scim-sanity [flags] <file.json>",
		Short: "Validate SCIM 2.0 payloads and probe server conformance",
		Long: `scim-sanity validates SCIM 2.0 JSON payloads against RFC 7643 rules,
including the Agent and AgenticApplication resource types from
draft-abbey-scim-agent-extension, and probes live SCIM servers for
protocol conformance.`,
		Version:       version.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			handler, err := logCfg.NewHandler(os.Stderr)
			if err != nil {
				return err
			}

			slog.SetDefault(slog.New(handler))

			return nil
		},
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, patchMode, readStdin)
		},
	}

	rootCmd.Flags().BoolVar(&patchMode, "patch", false,
		"validate the payload as a PATCH operation (PatchOp message)")
	rootCmd.Flags().BoolVar(&readStdin, "stdin", false,
		"read JSON from stdin instead of a file")

	logCfg.RegisterFlags(rootCmd.PersistentFlags())

	completionErr := logCfg.RegisterCompletions(rootCmd)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	probeCmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "Run a conformance test sequence against a live SCIM server",
		Long: `probe walks a live SCIM server through discovery, CRUD lifecycles for
each supported resource type, search, and error handling checks, then
reports the results with a prioritized fix summary.

The probe creates, modifies, and deletes test resources on the target
server and refuses to run until --i-accept-side-effects is passed.`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := probeCfg.NewRunner(args[0])
			if err != nil {
				return err
			}

			if code := runner.Run(cmd.Context()); code != 0 {
				os.Exit(code)
			}

			return nil
		},
	}

	probeCfg.RegisterFlags(probeCmd.Flags())

	completionErr = probeCfg.RegisterCompletions(probeCmd)
	if completionErr != nil {
		fmt.Fprintf(os.Stderr, "register completions: %v\n", completionErr)
	}

	rootCmd.AddCommand(probeCmd)

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runValidate(cmd *cobra.Command, args []string, patchMode, readStdin bool) error {
	var (
		data []byte
		err  error
	)

	switch {
	case readStdin:
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
	case len(args) == 1:
		data, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read payload: %w", err)
		}
	default:
		return cmd.Help()
	}

	var (
		ok       bool
		findings []validate.Error
	)

	if patchMode {
		ok, findings = validate.PatchBytes(data)
	} else {
		ok, findings = validate.FullBytes(data)
	}

	green, red, bold := styles(os.Stdout)

	if ok {
		kind := "SCIM resource"
		if patchMode {
			kind = "PATCH operation"
		}

		green.Printf("Valid %s\n", kind)

		return nil
	}

	bold.Printf("\nFound %d error(s):\n\n", len(findings))

	for _, finding := range findings {
		red.Println(finding.String())
	}

	os.Exit(1)

	return nil
}

// styles builds the output colors, disabled when stdout is not a
// terminal.
func styles(w *os.File) (green, red, bold *color.Color) {
	green = color.New(color.FgGreen)
	red = color.New(color.FgRed)
	bold = color.New(color.Bold)

	colored := isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd())

	for _, c := range []*color.Color{green, red, bold} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return green, red, bold
}
