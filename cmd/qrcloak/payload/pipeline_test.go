// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/qrcloak/lib/compression"
	"github.com/bureau-foundation/qrcloak/lib/config"
	"github.com/bureau-foundation/qrcloak/lib/format"
	qrpayload "github.com/bureau-foundation/qrcloak/lib/payload"
	"github.com/bureau-foundation/qrcloak/lib/sealed"
	"github.com/bureau-foundation/qrcloak/lib/wire"
)

const testWorkFactor = 10

// generateText runs generate and returns its output.
func generateText(t *testing.T, raw string, options generateOptions) []byte {
	t.Helper()
	var output bytes.Buffer
	if err := generate(&output, []byte(raw), options, discardLogger()); err != nil {
		t.Fatalf("generate() error: %v", err)
	}
	return output.Bytes()
}

func plainOptions(wireFormat wire.Format, parts uint32) generateOptions {
	return generateOptions{
		Generator: qrpayload.Generator{Compression: compression.Zstd{}, Parts: parts},
		Wire:      wire.Options{Format: wireFormat},
	}
}

func TestGenerateMergeExtract(t *testing.T) {
	const secretText = "the quick brown fox jumps over the lazy dog"

	for _, wireFormat := range []wire.Format{wire.JSON, wire.CBOR} {
		t.Run(wireFormat.String(), func(t *testing.T) {
			generated := generateText(t, secretText, plainOptions(wireFormat, 4))

			var merged bytes.Buffer
			outcome, err := merge(&merged, []input{{Name: "scan", Data: generated}}, mergeOptions{
				InputFormat: wireFormat,
				Wire:        wire.Options{Format: wireFormat},
			}, discardLogger())
			if err != nil {
				t.Fatalf("merge() error: %v", err)
			}
			if outcome.Completed != 1 || !outcome.Pending.IsEmpty() {
				t.Fatalf("outcome = %+v, want one completed and nothing pending", outcome)
			}

			var extracted bytes.Buffer
			err = extract(&extracted, []input{{Name: "merged", Data: merged.Bytes()}}, extractOptions{
				InputFormat: wireFormat,
			}, discardLogger())
			if err != nil {
				t.Fatalf("extract() error: %v", err)
			}
			if extracted.String() != secretText {
				t.Errorf("extracted %q, want %q", extracted.String(), secretText)
			}
		})
	}
}

func TestGenerate_OneLinePerPart(t *testing.T) {
	generated := generateText(t, "0123456789", plainOptions(wire.JSON, 3))
	lines := strings.Split(strings.TrimSuffix(string(generated), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), generated)
	}
	if !strings.HasPrefix(lines[0], `{"head":`) || !strings.HasPrefix(lines[1], `{"tail":`) {
		t.Errorf("unexpected part shapes:\n%s", generated)
	}

	options := plainOptions(wire.JSON, 3)
	options.Wire.Merge = true
	generated = generateText(t, "0123456789", options)
	if !strings.HasPrefix(string(generated), "[") || strings.Count(string(generated), "\n") != 1 {
		t.Errorf("merged output = %q, want one JSON array line", generated)
	}
}

func TestExtract_PartsDirectly(t *testing.T) {
	generated := generateText(t, "split then extract", plainOptions(wire.JSON, 3))

	var extracted bytes.Buffer
	err := extract(&extracted, []input{{Name: "parts", Data: generated}}, extractOptions{InputFormat: wire.JSON}, discardLogger())
	if err != nil {
		t.Fatalf("extract() error: %v", err)
	}
	if extracted.String() != "split then extract" {
		t.Errorf("extracted %q", extracted.String())
	}
}

func TestExtract_Incomplete(t *testing.T) {
	generated := generateText(t, "missing a part", plainOptions(wire.JSON, 3))
	lines := bytes.SplitAfter(generated, []byte("\n"))

	err := extract(&bytes.Buffer{}, []input{{Name: "parts", Data: bytes.Join(lines[:2], nil)}},
		extractOptions{InputFormat: wire.JSON}, discardLogger())
	if err == nil || !strings.Contains(err.Error(), "incomplete: 1 of 3 parts missing") {
		t.Errorf("extract() error = %v, want an incomplete group error", err)
	}
}

func TestExtract_Passphrase(t *testing.T) {
	t.Setenv(passphraseVariable, "correct horse battery staple")

	encryption, release, err := encryptionParams{AgePassphrase: true, WorkFactor: testWorkFactor}.encryption(config.Default())
	if err != nil {
		t.Fatalf("encryption() error: %v", err)
	}
	defer release()

	options := plainOptions(wire.JSON, 1)
	options.Generator.Encryption = encryption
	generated := generateText(t, "sealed text", options)

	// Without decryption flags the payload's tag is reported with a hint.
	err = extract(&bytes.Buffer{}, []input{{Name: "payload", Data: generated}},
		extractOptions{InputFormat: wire.JSON}, discardLogger())
	if !errors.Is(err, format.ErrSpecMismatch) {
		t.Fatalf("extract() error = %v, want ErrSpecMismatch", err)
	}
	if !strings.Contains(err.Error(), "use --age-passphrase") {
		t.Errorf("error = %q, want a hint about --age-passphrase", err)
	}

	decryption, releaseDecryption, err := decryptionParams{AgePassphrase: true}.decryption(config.Default())
	if err != nil {
		t.Fatalf("decryption() error: %v", err)
	}
	defer releaseDecryption()

	var extracted bytes.Buffer
	err = extract(&extracted, []input{{Name: "payload", Data: generated}},
		extractOptions{InputFormat: wire.JSON, Decryption: decryption}, discardLogger())
	if err != nil {
		t.Fatalf("extract() error: %v", err)
	}
	if extracted.String() != "sealed text" {
		t.Errorf("extracted %q, want %q", extracted.String(), "sealed text")
	}
}

func TestExtract_MaxSize(t *testing.T) {
	generated := generateText(t, strings.Repeat("a", 4096), plainOptions(wire.JSON, 1))

	err := extract(&bytes.Buffer{}, []input{{Name: "payload", Data: generated}},
		extractOptions{InputFormat: wire.JSON, MaxSize: 1024}, discardLogger())
	if !errors.Is(err, compression.ErrTooLarge) {
		t.Errorf("extract() error = %v, want ErrTooLarge", err)
	}
}

func TestExtract_NothingDecodable(t *testing.T) {
	err := extract(&bytes.Buffer{}, []input{{Name: "junk", Data: []byte("not a payload\n")}},
		extractOptions{InputFormat: wire.JSON}, discardLogger())
	if err == nil || !strings.Contains(err.Error(), "no input could be decoded") {
		t.Errorf("extract() error = %v", err)
	}
}

func TestMerge_StateAcrossRuns(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "pending.qrck")
	generated := generateText(t, "spread over several scans", plainOptions(wire.JSON, 3))
	lines := bytes.SplitAfter(bytes.TrimSuffix(generated, []byte("\n")), []byte("\n"))
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}

	options := mergeOptions{InputFormat: wire.JSON, Wire: wire.Options{Format: wire.JSON}, StateFile: stateFile}

	var output bytes.Buffer
	outcome, err := merge(&output, []input{{Name: "scan 1", Data: bytes.Join([][]byte{lines[2], lines[0]}, nil)}}, options, discardLogger())
	if err != nil {
		t.Fatalf("merge() error: %v", err)
	}
	if outcome.Completed != 0 || outcome.Pending.Len() != 1 || output.Len() != 0 {
		t.Fatalf("first run: outcome = %+v, output = %q", outcome, output.String())
	}
	if _, err := os.Stat(stateFile); err != nil {
		t.Fatalf("state file not written: %v", err)
	}

	outcome, err = merge(&output, []input{{Name: "scan 2", Data: lines[1]}}, options, discardLogger())
	if err != nil {
		t.Fatalf("merge() error: %v", err)
	}
	if outcome.Completed != 1 || !outcome.Pending.IsEmpty() {
		t.Fatalf("second run: outcome = %+v", outcome)
	}

	var extracted bytes.Buffer
	if err := extract(&extracted, []input{{Name: "merged", Data: output.Bytes()}}, extractOptions{InputFormat: wire.JSON}, discardLogger()); err != nil {
		t.Fatalf("extract() error: %v", err)
	}
	if extracted.String() != "spread over several scans" {
		t.Errorf("extracted %q", extracted.String())
	}

	// The completed group is gone from the saved state.
	state, err := qrpayload.LoadCheckpoint(stateFile)
	if err != nil {
		t.Fatalf("LoadCheckpoint() error: %v", err)
	}
	if !state.IsEmpty() {
		t.Errorf("saved state still holds %d groups", state.Len())
	}
}

// failingWriter rejects every write, like a full disk.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestMerge_FailedWriteKeepsState(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "pending.qrck")
	generated := generateText(t, "do not lose me", plainOptions(wire.JSON, 2))
	lines := bytes.SplitAfter(bytes.TrimSuffix(generated, []byte("\n")), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	options := mergeOptions{InputFormat: wire.JSON, Wire: wire.Options{Format: wire.JSON}, StateFile: stateFile}
	if _, err := merge(&bytes.Buffer{}, []input{{Name: "scan 1", Data: lines[0]}}, options, discardLogger()); err != nil {
		t.Fatalf("merge() error: %v", err)
	}

	if _, err := merge(failingWriter{}, []input{{Name: "scan 2", Data: lines[1]}}, options, discardLogger()); err == nil {
		t.Fatal("merge() into a failing writer should fail")
	}

	state, err := qrpayload.LoadCheckpoint(stateFile)
	if err != nil {
		t.Fatalf("LoadCheckpoint() error: %v", err)
	}
	groups := state.Groups()
	if len(groups) != 1 || groups[0].Received != 1 {
		t.Fatalf("saved groups after failed write = %+v, want the first part kept", groups)
	}

	// Rescanning the second part completes the group.
	var output bytes.Buffer
	outcome, err := merge(&output, []input{{Name: "scan 2 again", Data: lines[1]}}, options, discardLogger())
	if err != nil {
		t.Fatalf("merge() error: %v", err)
	}
	if outcome.Completed != 1 {
		t.Fatalf("retry: outcome = %+v, want one completed payload", outcome)
	}
	var extracted bytes.Buffer
	if err := extract(&extracted, []input{{Name: "merged", Data: output.Bytes()}}, extractOptions{InputFormat: wire.JSON}, discardLogger()); err != nil {
		t.Fatalf("extract() error: %v", err)
	}
	if extracted.String() != "do not lose me" {
		t.Errorf("extracted %q", extracted.String())
	}
}

func TestMerge_MisconfiguredPartsDoNotCarryOver(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "pending.qrck")
	options := mergeOptions{InputFormat: wire.JSON, Wire: wire.Options{Format: wire.JSON}, StateFile: stateFile}

	// A tail at the head position never joins a group.
	var misconfigured bytes.Buffer
	tail := format.NewTail(format.PartialPayloadTail{
		Data:  []byte("stray"),
		Index: format.Index{ID: 7, Index: 0, Size: 2},
	})
	if err := encodeTo(&misconfigured, []format.Payload{format.FromPartial(tail)}, options.Wire); err != nil {
		t.Fatalf("encodeTo() error: %v", err)
	}

	outcome, err := merge(&bytes.Buffer{}, []input{{Name: "scan", Data: misconfigured.Bytes()}}, options, discardLogger())
	if err != nil {
		t.Fatalf("merge() error: %v", err)
	}
	if len(outcome.Pending.Misconfigured()) != 1 {
		t.Errorf("Misconfigured() = %d parts, want 1", len(outcome.Pending.Misconfigured()))
	}
	if outcome.incomplete() {
		t.Error("a run with only misconfigured parts should not report incomplete groups")
	}

	state, err := qrpayload.LoadCheckpoint(stateFile)
	if err != nil {
		t.Fatalf("LoadCheckpoint() error: %v", err)
	}
	if !state.IsEmpty() {
		t.Errorf("saved state = %d groups, %d misconfigured, want empty", state.Len(), len(state.Misconfigured()))
	}

	outcome, err = merge(&bytes.Buffer{}, nil, options, discardLogger())
	if err != nil {
		t.Fatalf("merge() error: %v", err)
	}
	if !outcome.Pending.IsEmpty() || outcome.incomplete() {
		t.Errorf("empty run after a misconfigured part: outcome = %+v", outcome)
	}
}

func TestMerge_Reset(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "pending.qrck")
	generated := generateText(t, "abcdef", plainOptions(wire.JSON, 2))
	lines := bytes.SplitAfter(bytes.TrimSuffix(generated, []byte("\n")), []byte("\n"))

	options := mergeOptions{InputFormat: wire.JSON, Wire: wire.Options{Format: wire.JSON}, StateFile: stateFile}
	if _, err := merge(&bytes.Buffer{}, []input{{Name: "scan", Data: lines[0]}}, options, discardLogger()); err != nil {
		t.Fatalf("merge() error: %v", err)
	}

	options.Reset = true
	outcome, err := merge(&bytes.Buffer{}, []input{{Name: "scan", Data: lines[1]}}, options, discardLogger())
	if err != nil {
		t.Fatalf("merge() error: %v", err)
	}
	if outcome.Completed != 0 || outcome.Pending.Len() != 1 {
		t.Errorf("outcome after reset = %+v, want only the new part pending", outcome)
	}
}

func TestGenerate_AgeKeyFromEnvironment(t *testing.T) {
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair() error: %v", err)
	}
	defer keypair.Close()

	t.Setenv(recipientsVariable, keypair.PublicKey)
	t.Setenv(identityVariable, keypair.PrivateKey.String())

	encryption, release, err := encryptionParams{AgeKey: true}.encryption(config.Default())
	if err != nil {
		t.Fatalf("encryption() error: %v", err)
	}
	defer release()

	options := plainOptions(wire.CBOR, 2)
	options.Generator.Encryption = encryption
	generated := generateText(t, "for the key holder", options)

	decryption, releaseDecryption, err := decryptionParams{AgeKey: true}.decryption(config.Default())
	if err != nil {
		t.Fatalf("decryption() error: %v", err)
	}
	defer releaseDecryption()

	var extracted bytes.Buffer
	err = extract(&extracted, []input{{Name: "parts", Data: generated}},
		extractOptions{InputFormat: wire.CBOR, Decryption: decryption}, discardLogger())
	if err != nil {
		t.Fatalf("extract() error: %v", err)
	}
	if extracted.String() != "for the key holder" {
		t.Errorf("extracted %q", extracted.String())
	}
}
