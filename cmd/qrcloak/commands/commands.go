// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete qrcloak command tree.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/qrcloak/cmd/qrcloak/cli"
	keycmd "github.com/bureau-foundation/qrcloak/cmd/qrcloak/key"
	payloadcmd "github.com/bureau-foundation/qrcloak/cmd/qrcloak/payload"
	"github.com/bureau-foundation/qrcloak/lib/version"
)

// Root builds and returns the qrcloak command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "qrcloak",
		Description: `qrcloak: carry data through QR codes.

Turn bytes into compact, optionally compressed and age-encrypted
payloads, split them across several QR codes, and reassemble and
extract them again after scanning.`,
		Subcommands: []*cli.Command{
			payloadcmd.Command(),
			keycmd.Command(),
			versionCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Encrypt a file with a passphrase and split it over three codes",
				Command:     "qrcloak payload generate --age-passphrase --splits 3 secret.txt",
			},
			{
				Description: "Reassemble and decrypt the scanned parts",
				Command:     "qrcloak payload extract --age-passphrase part-*.json",
			},
			{
				Description: "Create a keypair for --age-key",
				Command:     "qrcloak key generate -o key.txt",
			},
		},
	}
}

type versionParams struct {
	cli.JSONOutput
}

func versionCommand() *cli.Command {
	var params versionParams

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Params:  func() any { return &params },
		Run: func(args []string) error {
			return printVersion(os.Stdout, params.JSONOutput)
		},
	}
}

func printVersion(w io.Writer, output cli.JSONOutput) error {
	if done, err := output.EmitJSON(w, version.Current()); done {
		return err
	}
	_, err := fmt.Fprintf(w, "qrcloak %s\n", version.Full())
	return err
}
