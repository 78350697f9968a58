// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/qrcloak/lib/codec"
	"github.com/bureau-foundation/qrcloak/lib/wire"
)

// input is the content of one file argument or of stdin.
type input struct {
	Name string
	Data []byte
}

// readInputs reads each path in turn, or stdin when paths is empty.
// "-" also names stdin.
func readInputs(paths []string, stdin io.Reader) ([]input, error) {
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	inputs := make([]input, 0, len(paths))
	for _, path := range paths {
		var data []byte
		var err error
		if path == "-" {
			data, err = io.ReadAll(stdin)
			path = "stdin"
		} else {
			data, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		inputs = append(inputs, input{Name: path, Data: data})
	}
	return inputs, nil
}

// readRaw reads the single input that generate encodes.
func readRaw(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("expected at most one input file, got %d", len(args))
	}
	inputs, err := readInputs(args, stdin)
	if err != nil {
		return nil, err
	}
	return inputs[0].Data, nil
}

// splitChunks breaks one input into the encoded values it holds. JSON
// input is a stream of values (one per line, or pretty-printed); a line
// that does not parse becomes its own chunk so the decoder can report
// it, and the values around it are kept whole. CBOR input is a CBOR
// sequence; a malformed tail becomes a final chunk of its own.
func splitChunks(data []byte, wireFormat wire.Format) [][]byte {
	switch wireFormat {
	case wire.CBOR:
		return splitCBOR(data)
	default:
		return splitJSON(data)
	}
}

func splitJSON(data []byte) [][]byte {
	var chunks [][]byte
	for {
		decoder := json.NewDecoder(bytes.NewReader(data))
		var consumed int64
		for {
			var raw json.RawMessage
			err := decoder.Decode(&raw)
			if errors.Is(err, io.EOF) {
				return chunks
			}
			if err != nil {
				break
			}
			chunks = append(chunks, raw)
			consumed = decoder.InputOffset()
		}

		// Whatever follows the last good value does not parse. Its
		// first line becomes a chunk of its own and decoding resumes
		// on the next line.
		rest := bytes.TrimLeft(data[consumed:], " \t\r\n")
		line, remainder, _ := bytes.Cut(rest, []byte("\n"))
		if line = bytes.TrimSpace(line); len(line) > 0 {
			chunks = append(chunks, line)
		}
		if len(remainder) == 0 {
			return chunks
		}
		data = remainder
	}
}

func splitCBOR(data []byte) [][]byte {
	var chunks [][]byte
	reader := bytes.NewReader(data)
	decoder := codec.NewDecoder(reader)
	for {
		var raw codec.RawMessage
		err := decoder.Decode(&raw)
		if errors.Is(err, io.EOF) {
			return chunks
		}
		if err != nil {
			consumed := sumLengths(chunks)
			if consumed < len(data) {
				chunks = append(chunks, data[consumed:])
			}
			return chunks
		}
		chunks = append(chunks, []byte(raw))
	}
}

func sumLengths(chunks [][]byte) int {
	total := 0
	for _, chunk := range chunks {
		total += len(chunk)
	}
	return total
}
