// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/qrcloak/cmd/qrcloak/cli"
	"github.com/bureau-foundation/qrcloak/lib/compression"
	"github.com/bureau-foundation/qrcloak/lib/config"
	"github.com/bureau-foundation/qrcloak/lib/format"
	qrpayload "github.com/bureau-foundation/qrcloak/lib/payload"
	"github.com/bureau-foundation/qrcloak/lib/wire"
)

// wireParams are the output flags shared by commands that write
// payloads. Empty or false values fall back to the config file.
type wireParams struct {
	Format string `json:"format" flag:"format,f" desc:"wire format: json or cbor (default from config)"`
	Pretty bool   `json:"pretty" flag:"pretty"   desc:"indent JSON output"`
	Merge  bool   `json:"merge"  flag:"merge,m"  desc:"write all payloads as one value instead of one per line"`
	Output string `json:"output" flag:"output,o" desc:"write to this file instead of stdout" default:"-"`
}

func (p wireParams) options(cfg *config.Config) (wire.Options, error) {
	wireFormat, err := inputFormat(p.Format, cfg)
	if err != nil {
		return wire.Options{}, err
	}
	return wire.Options{
		Format: wireFormat,
		Pretty: p.Pretty || cfg.Pretty,
		Merge:  p.Merge || cfg.Merge,
	}, nil
}

// inputFormat resolves a --format flag against the config default.
func inputFormat(flag string, cfg *config.Config) (wire.Format, error) {
	if flag != "" {
		return wire.ParseFormat(flag)
	}
	return cfg.WireFormat()
}

type generateParams struct {
	cli.Globals
	encryptionParams
	wireParams
	Compression string `json:"compression" flag:"compression,c" desc:"compression: none, gzip, zstd or lz4 (default from config)"`
	Splits      uint32 `json:"splits"      flag:"splits,s"      desc:"split the payload into this many parts (default from config)"`
}

// generateOptions is the fully resolved form of generateParams.
type generateOptions struct {
	Generator qrpayload.Generator
	Wire      wire.Options
}

func generateCommand() *cli.Command {
	var params generateParams

	return &cli.Command{
		Name:    "generate",
		Summary: "Turn raw bytes into payloads ready for QR codes",
		Description: `Compress, encrypt and optionally split the input into payloads.

Input is read from the file argument, or stdin. With --splits N the
payload is cut into N parts that can be scanned in any order and
reassembled by "qrcloak payload merge".

Keys are never passed on the command line. --age-key encrypts to the
comma separated recipients in $AGE_KEY. --age-passphrase uses
$AGE_PASSPHRASE, or prompts when it is unset.`,
		Usage:  "qrcloak payload generate [flags] [file]",
		Params: func() any { return &params },
		Run: func(args []string) error {
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			raw, err := readRaw(args, os.Stdin)
			if err != nil {
				return err
			}

			encryption, release, err := params.encryption(cfg)
			if err != nil {
				return err
			}
			defer release()

			options, err := params.resolve(cfg)
			if err != nil {
				return err
			}
			options.Generator.Encryption = encryption

			w, closeOutput, err := openOutput(params.Output, os.Stdout)
			if err != nil {
				return err
			}
			logger := params.Logger().With("command", "payload/generate")
			if err := generate(w, raw, options, logger); err != nil {
				closeOutput()
				return err
			}
			return closeOutput()
		},
		Examples: []cli.Example{
			{
				Description: "Encrypt a file to a recipient and split it over four QR codes",
				Command:     "AGE_KEY=age1... qrcloak payload generate --age-key --compression zstd --splits 4 secret.txt",
			},
			{
				Description: "Passphrase-protect stdin as one compact CBOR payload",
				Command:     "echo hello | qrcloak payload generate --age-passphrase --format cbor > payload.cbor",
			},
		},
	}
}

func (p generateParams) resolve(cfg *config.Config) (generateOptions, error) {
	spec, err := cfg.CompressionSpec()
	if p.Compression != "" {
		spec, err = compression.ParseSpec(p.Compression)
	}
	if err != nil {
		return generateOptions{}, err
	}
	compressor, err := compression.ForSpec(spec)
	if err != nil {
		return generateOptions{}, err
	}

	wireOptions, err := p.wireParams.options(cfg)
	if err != nil {
		return generateOptions{}, err
	}

	parts := cfg.Splits
	if p.Splits != 0 {
		parts = p.Splits
	}

	return generateOptions{
		Generator: qrpayload.Generator{Compression: compressor, Parts: parts},
		Wire:      wireOptions,
	}, nil
}

// generate builds the payloads for raw and writes them to w.
func generate(w io.Writer, raw []byte, options generateOptions, logger *slog.Logger) error {
	payloads, err := options.Generator.GenerateParts(raw)
	if err != nil {
		return err
	}

	logger.Debug("generated payloads",
		"input_bytes", len(raw),
		"parts", len(payloads),
		"fingerprint", fingerprintOf(payloads),
	)
	if err := encodeTo(w, payloads, options.Wire); err != nil {
		return fmt.Errorf("writing payloads: %w", err)
	}
	return nil
}

// fingerprintOf identifies generated content in logs without revealing
// it.
func fingerprintOf(payloads []format.Payload) string {
	var data []byte
	for _, p := range payloads {
		switch {
		case p.Complete != nil:
			data = append(data, p.Complete.Data...)
		case p.Partial != nil:
			data = append(data, p.Partial.Data()...)
		}
	}
	return qrpayload.Fingerprint(data)
}
