// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/qrcloak/cmd/qrcloak/cli"
	"github.com/bureau-foundation/qrcloak/lib/compression"
	"github.com/bureau-foundation/qrcloak/lib/format"
	qrpayload "github.com/bureau-foundation/qrcloak/lib/payload"
	"github.com/bureau-foundation/qrcloak/lib/sealed"
	"github.com/bureau-foundation/qrcloak/lib/wire"
)

type extractParams struct {
	cli.Globals
	decryptionParams
	Format  string `json:"format"   flag:"format,f" desc:"input wire format: json or cbor (default from config)"`
	Output  string `json:"output"   flag:"output,o" desc:"write to this file instead of stdout" default:"-"`
	MaxSize int64  `json:"max_size" flag:"max-size" desc:"largest decompressed payload to accept, in bytes (default from config)"`
}

type extractOptions struct {
	InputFormat wire.Format
	Decryption  sealed.Decryption
	MaxSize     int64
}

func extractCommand() *cli.Command {
	var params extractParams

	return &cli.Command{
		Name:    "extract",
		Summary: "Recover the original bytes from payloads",
		Description: `Decrypt and decompress payloads back into the bytes they were
generated from.

Inputs are read from the file arguments, or stdin. Split parts are
merged first, so the parts of one group can be extracted directly.
Every complete payload is extracted in order and the results are
concatenated.

Decompression follows each payload's own tag. Encrypted payloads need
--age-key (identities from $AGE_PRIVATE_KEY or --identity-file) or
--age-passphrase.`,
		Usage:  "qrcloak payload extract [flags] [file...]",
		Params: func() any { return &params },
		Run: func(args []string) error {
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			inputFormat, err := inputFormat(params.Format, cfg)
			if err != nil {
				return err
			}
			inputs, err := readInputs(args, os.Stdin)
			if err != nil {
				return err
			}

			decryption, release, err := params.decryption(cfg)
			if err != nil {
				return err
			}
			defer release()

			options := extractOptions{
				InputFormat: inputFormat,
				Decryption:  decryption,
				MaxSize:     cfg.MaxDecompressedSize,
			}
			if params.MaxSize > 0 {
				options.MaxSize = params.MaxSize
			}

			w, closeOutput, err := openOutput(params.Output, os.Stdout)
			if err != nil {
				return err
			}
			logger := params.Logger().With("command", "payload/extract")
			err = extract(w, inputs, options, logger)
			if closeErr := closeOutput(); err == nil {
				err = closeErr
			}
			return err
		},
		Examples: []cli.Example{
			{
				Description: "Extract a passphrase-protected payload",
				Command:     "qrcloak payload extract --age-passphrase payload.json",
			},
			{
				Description: "Merge and extract scanned parts with an identity file",
				Command:     "qrcloak payload extract --identity-file key.txt part-*.json > secret.txt",
			},
		},
	}
}

// extract merges the payloads in inputs and writes the bytes of every
// complete one to w. Parts that do not complete a group are an error.
func extract(w io.Writer, inputs []input, options extractOptions, logger *slog.Logger) error {
	payloads, skipped := decodeInputs(inputs, options.InputFormat, logger)
	if len(payloads) == 0 {
		if skipped > 0 {
			return errors.New("no input could be decoded as a payload")
		}
		return errors.New("no payloads in input")
	}

	result := qrpayload.Merge(qrpayload.UnmergedPayloads{}, payloads...)
	if groups := result.Pending.Groups(); len(groups) > 0 {
		group := groups[0]
		return fmt.Errorf("group %s is incomplete: %d of %d parts missing (merge more parts first)",
			group.Key, group.MissingCount, group.Key.Size)
	}
	if len(result.Complete) == 0 {
		return errors.New("no complete payload to extract")
	}

	for index, complete := range result.Complete {
		extractor := qrpayload.Extractor{
			Decryption: options.Decryption,
			Decompression: compression.Decompression{
				Spec:    complete.Compression,
				MaxSize: options.MaxSize,
			},
		}
		raw, err := extractor.Extract(complete)
		if err != nil {
			return fmt.Errorf("payload %d: %w", index, describeExtractError(err))
		}
		logger.Debug("extracted payload",
			"index", index,
			"encryption", complete.Encryption.String(),
			"compression", complete.Compression.String(),
			"bytes", len(raw),
		)
		if _, err := w.Write(raw); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// describeExtractError adds a hint to errors a user can fix with a
// flag.
func describeExtractError(err error) error {
	var mismatch *sealed.SpecMismatchError
	if errors.As(err, &mismatch) {
		switch mismatch.Payload {
		case format.AgeKey:
			return fmt.Errorf("%w (use --age-key or --identity-file)", err)
		case format.AgePassphrase:
			return fmt.Errorf("%w (use --age-passphrase)", err)
		case format.NoEncryption:
			return fmt.Errorf("%w (the payload is not encrypted; drop the decryption flags)", err)
		}
	}
	return err
}
