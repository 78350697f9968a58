// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import "github.com/bureau-foundation/qrcloak/cmd/qrcloak/cli"

// Command returns the "payload" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "payload",
		Summary: "Generate, merge and extract payloads",
		Description: `Work with qrcloak payloads: the text carried by each QR code.

A payload holds data that may be compressed and age-encrypted. Large
payloads are split into parts that carry a shared group id, their index
and the group size, so they can be scanned in any order.`,
		Subcommands: []*cli.Command{
			generateCommand(),
			mergeCommand(),
			extractCommand(),
			statusCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Round trip through four parts",
				Command:     "qrcloak payload generate --splits 4 notes.txt | qrcloak payload merge | qrcloak payload extract",
			},
		},
	}
}
