// Package cli implements the ack command.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yanqian/twilight-hud/internal/domain/prompt"
)

// Exit codes returned by Run.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// Run executes ack with args (program name excluded) and returns the exit code.
func Run(args []string, stdout, stderr io.Writer) (code int) {
	if args == nil {
		args = []string{}
	}
	cmd := newAckCommand(stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(stderr, "Error: %v\n", r)
			code = ExitFailure
		}
	}()

	err := cmd.Execute()
	if err == nil {
		return ExitOK
	}
	var uerr *usageError
	if errors.As(err, &uerr) {
		fmt.Fprintf(stderr, "Error: %s\n%s", uerr.msg, cmd.UsageString())
		return ExitUsage
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitFailure
}

// jsonFlag is only recognised as the first argument. Every other word,
// including ones that start with a dash, is part of the prompt.
const jsonFlag = "--json"

const ackUsage = `Usage:
  {{.UseLine}}

Flags:
  --json   print the input, sanitized prompt and response as JSON (first argument only)
`

func newAckCommand(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:                "ack [--json] WORD...",
		Short:              "Acknowledge a prompt",
		Long:               "ack joins its arguments into one prompt, collapses whitespace and prints the acknowledgement.",
		SilenceUsage:       true,
		SilenceErrors:      true,
		DisableFlagParsing: true,
		Args: func(_ *cobra.Command, args []string) error {
			if _, words := splitJSONFlag(args); len(words) == 0 {
				return &usageError{msg: "at least one word is required"}
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			asJSON, words := splitJSONFlag(args)
			return acknowledge(stdout, strings.Join(words, " "), asJSON)
		},
	}
	cmd.SetUsageTemplate(ackUsage)
	return cmd
}

func splitJSONFlag(args []string) (bool, []string) {
	if len(args) > 0 && args[0] == jsonFlag {
		return true, args[1:]
	}
	return false, args
}

func acknowledge(w io.Writer, raw string, asJSON bool) error {
	if asJSON {
		if err := json.NewEncoder(w).Encode(prompt.Pipeline(raw)); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		return nil
	}
	if _, err := fmt.Fprintln(w, prompt.Respond(raw)); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
