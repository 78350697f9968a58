// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string

	root := &Command{
		Name: "qrcloak",
		Subcommands: []*Command{
			{Name: "version", Run: func(args []string) error { called = "version"; return nil }},
			{Name: "payload", Run: func(args []string) error { called = "payload"; return nil }},
		},
	}

	if err := root.execute([]string{"payload"}, io.Discard); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "payload" {
		t.Errorf("dispatched to %q, want %q", called, "payload")
	}
}

func TestCommand_Execute_NestedSubcommands(t *testing.T) {
	var receivedArgs []string

	root := &Command{
		Name: "qrcloak",
		Subcommands: []*Command{
			{
				Name: "payload",
				Subcommands: []*Command{
					{
						Name: "extract",
						Run: func(args []string) error {
							receivedArgs = args
							return nil
						},
					},
				},
			},
		},
	}

	if err := root.execute([]string{"payload", "extract", "input.json"}, io.Discard); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "input.json" {
		t.Errorf("args = %v, want [input.json]", receivedArgs)
	}
}

func TestCommand_Execute_Params(t *testing.T) {
	var params struct {
		Globals
		JSONOutput
		Splits uint32 `flag:"splits,n" desc:"parts" default:"1"`
	}
	var receivedArgs []string

	command := &Command{
		Name:   "generate",
		Params: func() any { return &params },
		Run: func(args []string) error {
			receivedArgs = args
			return nil
		},
	}

	err := command.execute([]string{"-n", "4", "--json", "--verbose", "--config", "c.yaml", "file"}, io.Discard)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if params.Splits != 4 {
		t.Errorf("Splits = %d, want 4", params.Splits)
	}
	if !params.OutputJSON || !params.Verbose {
		t.Errorf("OutputJSON = %v, Verbose = %v, want both true", params.OutputJSON, params.Verbose)
	}
	if params.ConfigPath != "c.yaml" {
		t.Errorf("ConfigPath = %q, want %q", params.ConfigPath, "c.yaml")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "file" {
		t.Errorf("args = %v, want [file]", receivedArgs)
	}
}

func TestCommand_Execute_UnknownCommandSuggests(t *testing.T) {
	root := &Command{
		Name: "qrcloak",
		Subcommands: []*Command{
			{Name: "payload", Run: func([]string) error { return nil }},
			{Name: "key", Run: func([]string) error { return nil }},
		},
	}

	err := root.execute([]string{"paylaod"}, io.Discard)
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "payload"`) {
		t.Errorf("error = %q, want a suggestion for payload", err)
	}

	err = root.execute([]string{"zzzzzzzz"}, io.Discard)
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want no suggestion", err)
	}
}

func TestCommand_Execute_UnknownFlagSuggests(t *testing.T) {
	var format string
	command := &Command{
		Name: "generate",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("generate", pflag.ContinueOnError)
			flagSet.StringVar(&format, "format", "json", "wire format")
			return flagSet
		},
		Run: func([]string) error { return nil },
	}

	err := command.execute([]string{"--fromat", "cbor"}, io.Discard)
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --format?") {
		t.Errorf("error = %q, want a suggestion for --format", err)
	}
}

func TestCommand_Execute_SubcommandRequired(t *testing.T) {
	root := &Command{
		Name:        "qrcloak",
		Subcommands: []*Command{{Name: "key", Run: func([]string) error { return nil }}},
	}

	var help bytes.Buffer
	err := root.execute(nil, &help)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %v, want subcommand required", err)
	}
	if !strings.Contains(help.String(), "Commands:") {
		t.Errorf("help output missing command list:\n%s", help.String())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	var params struct {
		Format string `flag:"format" desc:"wire format: json or cbor"`
	}
	command := &Command{
		Name:        "generate",
		Description: "Generate payloads.",
		Params:      func() any { return &params },
		Examples: []Example{
			{Description: "Split into four parts", Command: "qrcloak payload generate --splits 4"},
		},
	}
	root := &Command{Name: "qrcloak", Subcommands: []*Command{command}}

	var help bytes.Buffer
	if err := root.execute([]string{"generate", "--help"}, &help); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	output := help.String()
	for _, want := range []string{
		"Generate payloads.",
		"Usage:\n  qrcloak generate [flags]",
		"--format string",
		"wire format: json or cbor",
		"# Split into four parts",
		"qrcloak payload generate --splits 4",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q:\n%s", want, output)
		}
	}
}

func TestCommand_RunFallback(t *testing.T) {
	var receivedArgs []string
	command := &Command{
		Name:        "key",
		Subcommands: []*Command{{Name: "generate", Run: func([]string) error { return nil }}},
		Run: func(args []string) error {
			receivedArgs = args
			return nil
		},
	}

	if err := command.execute([]string{"other"}, io.Discard); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "other" {
		t.Errorf("args = %v, want [other]", receivedArgs)
	}
}
