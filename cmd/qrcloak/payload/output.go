// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bureau-foundation/qrcloak/lib/codec"
	"github.com/bureau-foundation/qrcloak/lib/format"
	"github.com/bureau-foundation/qrcloak/lib/wire"
)

// openOutput returns stdout for "" or "-", otherwise a created file.
// The returned close function must be called; for files it reports
// the close error.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return file, file.Close, nil
}

// writeEncoded writes encoder outputs. JSON values are newline
// terminated so each output is one line (or one indented block); CBOR
// values are concatenated into a CBOR sequence.
func writeEncoded(w io.Writer, outputs format.OneOrMore[[]byte], wireFormat wire.Format) error {
	for _, output := range outputs.Items() {
		if _, err := w.Write(output); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if wireFormat == wire.JSON {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
		}
	}
	return nil
}

// encodeTo encodes payloads with options and writes them to w.
func encodeTo(w io.Writer, payloads []format.Payload, options wire.Options) error {
	items, err := format.NewOneOrMore(payloads)
	if err != nil {
		return err
	}
	encoded, err := wire.Encoder{Options: options}.Encode(items)
	if err != nil {
		return err
	}
	return writeEncoded(w, encoded, options.Format)
}

// logDiagnostic logs the CBOR diagnostic notation of an undecodable
// chunk at debug level, so --verbose shows what a binary scan held.
func logDiagnostic(logger *slog.Logger, source string, index int, chunk []byte) {
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	diagnostic, err := codec.Diagnose(chunk)
	if err != nil {
		logger.Debug("undecodable chunk is not well-formed CBOR",
			"source", source, "chunk", index, "bytes", len(chunk), "error", err)
		return
	}
	logger.Debug("undecodable chunk", "source", source, "chunk", index, "diagnostic", diagnostic)
}

// decodeInputs decodes every chunk of every input. Undecodable chunks
// are logged and skipped; the count of skipped chunks is returned so
// callers can fail when nothing usable was read.
func decodeInputs(inputs []input, wireFormat wire.Format, logger *slog.Logger) ([]format.Payload, int) {
	decoder := wire.Decoder{Format: wireFormat}
	var payloads []format.Payload
	skipped := 0
	for _, in := range inputs {
		chunks := splitChunks(in.Data, wireFormat)
		decoded, errs := decoder.DecodeAll(chunks)
		for _, err := range errs {
			logger.Warn("skipping undecodable input", "source", in.Name, "error", err)
			var inputErr *wire.InputError
			if wireFormat == wire.CBOR && errors.As(err, &inputErr) {
				logDiagnostic(logger, in.Name, inputErr.Index, chunks[inputErr.Index])
			}
		}
		skipped += len(errs)
		payloads = append(payloads, decoded...)
	}
	return payloads, skipped
}
