// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package key implements "qrcloak key": age keypairs for payloads
// encrypted with --age-key.
package key

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bureau-foundation/qrcloak/cmd/qrcloak/cli"
	"github.com/bureau-foundation/qrcloak/lib/sealed"
	"github.com/bureau-foundation/qrcloak/lib/secret"
)

// Command returns the "key" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "key",
		Summary: "Create and inspect age keys",
		Description: `Create age X25519 keypairs and derive public keys from identities.

The identity file format matches age-keygen, so keys made here work with
age and the other way round.`,
		Subcommands: []*cli.Command{
			generateCommand(),
			publicCommand(),
		},
	}
}

type generateParams struct {
	cli.JSONOutput
	Output string `json:"output" flag:"output,o" desc:"write the identity to this file (created with mode 0600, never overwritten)"`
}

// generateResult is the --json output of key generate.
type generateResult struct {
	PublicKey string `json:"public_key"`
	Output    string `json:"output"`
}

func generateCommand() *cli.Command {
	var params generateParams

	return &cli.Command{
		Name:    "generate",
		Summary: "Generate an age keypair",
		Description: `Generate a new age X25519 keypair.

The identity (private key) is written to --output, or stdout. The
public key is printed on stderr when the identity goes to a file.
Share the public key through $AGE_KEY; keep the identity in
$AGE_PRIVATE_KEY or pass the file with --identity-file.`,
		Usage:  "qrcloak key generate [-o file] [--json]",
		Params: func() any { return &params },
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("generate takes no positional arguments, got %q", args[0])
			}
			if params.OutputJSON && params.Output == "" {
				return errors.New("--json needs --output: stdout would mix the identity with the JSON")
			}

			keypair, err := sealed.GenerateKeypair()
			if err != nil {
				return err
			}
			defer keypair.Close()

			if params.Output == "" {
				return writeIdentity(os.Stdout, keypair, time.Now())
			}
			if err := saveIdentity(params.Output, keypair, time.Now()); err != nil {
				return err
			}

			if done, err := params.EmitJSON(os.Stdout, generateResult{PublicKey: keypair.PublicKey, Output: params.Output}); done {
				return err
			}
			fmt.Fprintf(os.Stderr, "Public key: %s\n", keypair.PublicKey)
			return nil
		},
		Examples: []cli.Example{
			{
				Description: "Create an identity file",
				Command:     "qrcloak key generate -o key.txt",
			},
		},
	}
}

// writeIdentity writes keypair in age-keygen's identity file format.
func writeIdentity(w io.Writer, keypair *sealed.Keypair, created time.Time) error {
	_, err := fmt.Fprintf(w, "# created: %s\n# public key: %s\n%s\n",
		created.UTC().Format(time.RFC3339), keypair.PublicKey, keypair.PrivateKey.String())
	if err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	return nil
}

// saveIdentity creates path with mode 0600 and writes the identity.
// An existing file is never replaced.
func saveIdentity(path string, keypair *sealed.Keypair, created time.Time) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create identity file: %w", err)
	}
	if err := writeIdentity(file, keypair, created); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

type publicParams struct {
	cli.JSONOutput
}

func publicCommand() *cli.Command {
	var params publicParams

	return &cli.Command{
		Name:    "public",
		Summary: "Print the public keys of an identity file",
		Description: `Read an identity file (or stdin) and print the public key of every
identity in it, one per line. Comment lines are skipped.`,
		Usage:  "qrcloak key public [--json] [file]",
		Params: func() any { return &params },
		Run: func(args []string) error {
			path := "-"
			switch len(args) {
			case 0:
			case 1:
				path = args[0]
			default:
				return fmt.Errorf("expected at most one identity file, got %d", len(args))
			}

			source, err := secret.ReadFromPath(path)
			if err != nil {
				return err
			}
			defer source.Close()

			publicKeys, err := publicKeysOf(source)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(os.Stdout, publicKeys); done {
				return err
			}
			for _, publicKey := range publicKeys {
				fmt.Println(publicKey)
			}
			return nil
		},
		Examples: []cli.Example{
			{
				Description: "Export recipients for generate --age-key",
				Command:     "export AGE_KEY=$(qrcloak key public key.txt | paste -sd,)",
			},
		},
	}
}

// publicKeysOf derives the recipient of every identity in source.
func publicKeysOf(source *secret.Buffer) ([]string, error) {
	identities, err := sealed.ParseIdentities(source)
	if err != nil {
		return nil, err
	}
	defer func() {
		for _, identity := range identities {
			identity.Close()
		}
	}()

	publicKeys := make([]string, 0, len(identities))
	for _, identity := range identities {
		publicKey, err := sealed.PublicKeyOf(identity)
		if err != nil {
			return nil, err
		}
		publicKeys = append(publicKeys, publicKey)
	}
	return publicKeys, nil
}
