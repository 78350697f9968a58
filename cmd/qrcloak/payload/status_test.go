// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	qrpayload "github.com/bureau-foundation/qrcloak/lib/payload"
	"github.com/bureau-foundation/qrcloak/lib/wire"
)

func TestStatusOfInputs(t *testing.T) {
	generated := generateText(t, "status report input", plainOptions(wire.JSON, 4))
	lines := bytes.SplitAfter(generated, []byte("\n"))

	report := statusOfInputs([]input{{Name: "scan", Data: bytes.Join([][]byte{lines[0], lines[2]}, nil)}}, wire.JSON, discardLogger())
	if len(report.Groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(report.Groups))
	}
	group := report.Groups[0]
	if group.Received != 2 || group.MissingCount != 2 {
		t.Errorf("group = %+v, want 2 received and 2 missing", group)
	}
	if len(group.Missing) != 2 || group.Missing[0] != 1 || group.Missing[1] != 3 {
		t.Errorf("Missing = %v, want [1 3]", group.Missing)
	}
}

func TestRenderStatus(t *testing.T) {
	report := statusReport{
		StateFile: "/tmp/pending.qrck",
		Groups: []qrpayload.GroupStatus{
			{
				Key:          qrpayload.GroupKey{ID: 42, Size: 4},
				Received:     2,
				Missing:      []uint32{1, 3},
				MissingCount: 2,
			},
		},
		Misconfigured: 1,
	}

	var output bytes.Buffer
	renderStatus(&output, report, plainRenderer(t, &output), 0)
	text := output.String()

	for _, want := range []string{
		"state: /tmp/pending.qrck",
		"Incomplete groups (1)",
		"0000002a/4",
		"2/4",
		"missing 1, 3",
		"Misconfigured parts ignored: 1",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("status output missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Conflicting") {
		t.Errorf("status output mentions conflicts when there are none:\n%s", text)
	}

	output.Reset()
	renderStatus(&output, statusReport{}, plainRenderer(t, &output), 0)
	if !strings.Contains(output.String(), "No incomplete groups") {
		t.Errorf("empty status output = %q", output.String())
	}
}

func plainRenderer(t *testing.T, w *bytes.Buffer) *lipgloss.Renderer {
	t.Helper()
	renderer, err := newRenderer(w, "never")
	if err != nil {
		t.Fatalf("newRenderer() error: %v", err)
	}
	return renderer
}

func sampleReport() statusReport {
	return statusReport{
		Groups: []qrpayload.GroupStatus{{
			Key:          qrpayload.GroupKey{ID: 7, Size: 100},
			Received:     3,
			Missing:      []uint32{3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
			MissingCount: 97,
		}},
	}
}

func TestRenderStatus_Color(t *testing.T) {
	var output bytes.Buffer
	renderer, err := newRenderer(&output, "always")
	if err != nil {
		t.Fatalf("newRenderer() error: %v", err)
	}
	renderStatus(&output, sampleReport(), renderer, 0)

	if !strings.Contains(output.String(), "\x1b[") {
		t.Errorf("--color always produced no escape sequences: %q", output.String())
	}
	if plain := ansi.Strip(output.String()); !strings.Contains(plain, "00000007/100") || !strings.Contains(plain, "3/100") {
		t.Errorf("stripped output = %q", plain)
	}

	if _, err := newRenderer(&output, "sometimes"); err == nil {
		t.Error("expected error for an unknown color mode")
	}
}

func TestRenderStatus_TruncatesToWidth(t *testing.T) {
	var output bytes.Buffer
	renderer, err := newRenderer(&output, "always")
	if err != nil {
		t.Fatalf("newRenderer() error: %v", err)
	}
	renderStatus(&output, sampleReport(), renderer, 40)

	lines := strings.Split(strings.TrimSuffix(output.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if width := ansi.StringWidth(lines[1]); width > 40 {
		t.Errorf("group line is %d cells wide, want at most 40", width)
	}
	if !strings.HasSuffix(ansi.Strip(lines[1]), "…") {
		t.Errorf("truncated line does not end with an ellipsis: %q", ansi.Strip(lines[1]))
	}
}

func TestFormatMissing(t *testing.T) {
	group := qrpayload.GroupStatus{Missing: []uint32{0, 5}, MissingCount: 40}
	if got, want := formatMissing(group), "0, 5 and 38 more"; got != want {
		t.Errorf("formatMissing() = %q, want %q", got, want)
	}
}

func TestRenderProgress(t *testing.T) {
	var output bytes.Buffer
	theme := newStatusTheme(plainRenderer(t, &output))

	tests := []struct {
		received, size uint32
		filled         int
	}{
		{0, 4, 0},
		{1, 4, 5},
		{4, 4, progressWidth},
		{1, 1000000, 1},
	}
	for _, test := range tests {
		bar := renderProgress(theme, qrpayload.GroupStatus{
			Key:      qrpayload.GroupKey{Size: test.size},
			Received: test.received,
		})
		if got := strings.Count(bar, "█"); got != test.filled {
			t.Errorf("%d/%d: %d filled cells, want %d", test.received, test.size, got, test.filled)
		}
		if got := strings.Count(bar, "█") + strings.Count(bar, "░"); got != progressWidth {
			t.Errorf("%d/%d: bar has %d cells, want %d", test.received, test.size, got, progressWidth)
		}
	}
}
