// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/bureau-foundation/qrcloak/lib/format"
)

// DefaultMaxSize bounds decompressed output when a Decompression does
// not set its own limit. A QR code holds under 3 KiB, so even a long
// split group stays far below this.
const DefaultMaxSize = 64 << 20

// ErrTooLarge is returned (wrapped in a DecompressError) when
// decompressed output would exceed the configured limit.
var ErrTooLarge = errors.New("decompressed data exceeds size limit")

// SpecMismatchError is returned when a Decompression is applied to a
// payload tagged with a different compression scheme.
type SpecMismatchError struct {
	Payload format.CompressionSpec
	Tried   format.CompressionSpec
}

func (e *SpecMismatchError) Error() string {
	return fmt.Sprintf("tried to decompress with %s but payload is compressed with %s", e.Tried, e.Payload)
}

// Is matches format.ErrSpecMismatch.
func (e *SpecMismatchError) Is(target error) bool {
	return target == format.ErrSpecMismatch
}

// DecompressError is returned when the payload declares the expected
// scheme but its data cannot be decompressed.
type DecompressError struct {
	Spec format.CompressionSpec
	Err  error
}

func (e *DecompressError) Error() string {
	return fmt.Sprintf("%s decompression failed: %v", e.Spec, e.Err)
}

func (e *DecompressError) Unwrap() error {
	return e.Err
}

// Compression compresses raw bytes before encryption.
type Compression interface {
	// Spec is the tag stamped on payloads produced by Process.
	Spec() format.CompressionSpec
	Process(data []byte) ([]byte, error)
}

// None leaves data unchanged.
type None struct{}

func (None) Spec() format.CompressionSpec { return format.NoCompression }

func (None) Process(data []byte) ([]byte, error) { return data, nil }

// Gzip compresses with gzip. A zero Level selects the default level.
type Gzip struct {
	Level int
}

func (Gzip) Spec() format.CompressionSpec { return format.Gzip }

func (g Gzip) Process(data []byte) ([]byte, error) {
	level := g.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}

	var buffer bytes.Buffer
	writer, err := gzip.NewWriterLevel(&buffer, level)
	if err != nil {
		return nil, fmt.Errorf("creating gzip writer: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gzip compress: %w", err)
	}
	return buffer.Bytes(), nil
}

// Zstd compresses with zstd at the default level.
type Zstd struct{}

func (Zstd) Spec() format.CompressionSpec { return format.Zstd }

func (Zstd) Process(data []byte) ([]byte, error) {
	return zstdEncoder.EncodeAll(data, nil), nil
}

// zstdEncoder is reused across calls. zstd.Encoder is safe for
// concurrent use through EncodeAll.
var zstdEncoder *zstd.Encoder

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compression: zstd encoder initialization failed: " + err.Error())
	}
}

// LZ4 compresses with the LZ4 frame format. Frames carry their own
// checksum, which matters for data reassembled from optical scans.
type LZ4 struct{}

func (LZ4) Spec() format.CompressionSpec { return format.LZ4 }

func (LZ4) Process(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := lz4.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buffer.Bytes(), nil
}

// ForSpec returns the compressor producing spec.
func ForSpec(spec format.CompressionSpec) (Compression, error) {
	switch spec {
	case format.NoCompression:
		return None{}, nil
	case format.Gzip:
		return Gzip{}, nil
	case format.Zstd:
		return Zstd{}, nil
	case format.LZ4:
		return LZ4{}, nil
	default:
		return nil, fmt.Errorf("unsupported compression spec: %s", spec)
	}
}

// ParseSpec parses a compression name as accepted on the command line
// and in configuration files. Besides the wire names it accepts "none".
func ParseSpec(name string) (format.CompressionSpec, error) {
	if name == "none" || name == "" {
		return format.NoCompression, nil
	}
	return format.ParseCompressionSpec(name)
}

// Decompression reverses a Compression on a complete payload.
type Decompression struct {
	// Spec is the scheme this decompressor accepts. Payloads tagged
	// with anything else fail with a SpecMismatchError.
	Spec format.CompressionSpec

	// MaxSize bounds the decompressed output. Zero or negative
	// selects DefaultMaxSize.
	MaxSize int64
}

// Process decompresses payload.Data in place. The payload's tag is left
// as it was.
func (d Decompression) Process(payload *format.CompletePayload) error {
	if payload.Compression != d.Spec {
		return &SpecMismatchError{Payload: payload.Compression, Tried: d.Spec}
	}

	var reader io.Reader
	switch d.Spec {
	case format.NoCompression:
		return nil

	case format.Gzip:
		gzipReader, err := gzip.NewReader(bytes.NewReader(payload.Data))
		if err != nil {
			return &DecompressError{Spec: d.Spec, Err: err}
		}
		defer gzipReader.Close()
		reader = gzipReader

	case format.Zstd:
		zstdReader, err := zstd.NewReader(bytes.NewReader(payload.Data), zstd.WithDecoderConcurrency(1))
		if err != nil {
			return &DecompressError{Spec: d.Spec, Err: err}
		}
		defer zstdReader.Close()
		reader = zstdReader

	case format.LZ4:
		reader = lz4.NewReader(bytes.NewReader(payload.Data))

	default:
		return &DecompressError{Spec: d.Spec, Err: fmt.Errorf("unsupported compression spec: %s", d.Spec)}
	}

	decompressed, err := readLimited(reader, d.limit())
	if err != nil {
		return &DecompressError{Spec: d.Spec, Err: err}
	}
	payload.Data = decompressed
	return nil
}

func (d Decompression) limit() int64 {
	if d.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return d.MaxSize
}

// readLimited reads all of reader, failing with ErrTooLarge if more
// than limit bytes are produced.
func readLimited(reader io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (limit %d bytes)", ErrTooLarge, limit)
	}
	return data, nil
}
