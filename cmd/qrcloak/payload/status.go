// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package payload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/bureau-foundation/qrcloak/cmd/qrcloak/cli"
	qrpayload "github.com/bureau-foundation/qrcloak/lib/payload"
	"github.com/bureau-foundation/qrcloak/lib/wire"
)

type statusParams struct {
	cli.Globals
	cli.JSONOutput
	Format string `json:"format" flag:"format,f" desc:"input wire format: json or cbor (default from config)"`
	State  string `json:"state"  flag:"state"    desc:"state file to report on (default from config)"`
	Color  string `json:"color"  flag:"color"    desc:"colorize output: auto, always or never" default:"auto"`
}

// statusReport is the --json form of the status output.
type statusReport struct {
	StateFile     string                  `json:"state_file,omitempty"`
	Groups        []qrpayload.GroupStatus `json:"groups"`
	Misconfigured int                     `json:"misconfigured"`
	Conflicts     int                     `json:"conflicts"`
}

func statusCommand() *cli.Command {
	var params statusParams

	return &cli.Command{
		Name:    "status",
		Summary: "Show which parts are still missing",
		Description: `Report on incomplete groups: how many parts arrived and which
indices are missing.

With file arguments the parts in those files are merged and reported
on, without touching any saved state. Otherwise the state file written
by "qrcloak payload merge --state" is read.`,
		Usage:  "qrcloak payload status [flags] [file...]",
		Params: func() any { return &params },
		Run: func(args []string) error {
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}

			var report statusReport
			if len(args) > 0 {
				inputFormat, err := inputFormat(params.Format, cfg)
				if err != nil {
					return err
				}
				inputs, err := readInputs(args, os.Stdin)
				if err != nil {
					return err
				}
				report = statusOfInputs(inputs, inputFormat, params.Logger())
			} else {
				stateFile := cfg.StateFile
				if params.State != "" {
					stateFile = params.State
				}
				if stateFile == "" {
					return errors.New("no state file: pass --state, set state_file in the config, or name input files")
				}
				state, err := qrpayload.LoadCheckpoint(stateFile)
				if err != nil {
					return err
				}
				report = reportOf(state)
				report.StateFile = stateFile
			}

			if done, err := params.EmitJSON(os.Stdout, report); done {
				return err
			}
			renderer, err := newRenderer(os.Stdout, params.Color)
			if err != nil {
				return err
			}
			width := 0
			if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
				width, _, _ = term.GetSize(fd)
			}
			renderStatus(os.Stdout, report, renderer, width)
			return nil
		},
		Examples: []cli.Example{
			{
				Description: "See what a saved merge is waiting for",
				Command:     "qrcloak payload status --state ~/.cache/qrcloak/pending.qrck",
			},
			{
				Description: "Check scanned parts before merging",
				Command:     "qrcloak payload status --json part-*.json",
			},
		},
	}
}

// statusOfInputs reports on the groups formed by the parts in inputs.
func statusOfInputs(inputs []input, inputFormat wire.Format, logger *slog.Logger) statusReport {
	payloads, _ := decodeInputs(inputs, inputFormat, logger)
	return reportOf(qrpayload.Merge(qrpayload.UnmergedPayloads{}, payloads...).Pending)
}

func reportOf(state qrpayload.UnmergedPayloads) statusReport {
	return statusReport{
		Groups:        state.Groups(),
		Misconfigured: len(state.Misconfigured()),
		Conflicts:     len(state.Conflicts()),
	}
}

// statusTheme holds the styles of the status listing, in ANSI 256
// colors.
type statusTheme struct {
	Header   lipgloss.Style
	Key      lipgloss.Style
	Received lipgloss.Style
	Missing  lipgloss.Style
	Faint    lipgloss.Style
	Warning  lipgloss.Style
}

func newStatusTheme(renderer *lipgloss.Renderer) statusTheme {
	return statusTheme{
		Header:   renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		Key:      renderer.NewStyle().Foreground(lipgloss.Color("252")),
		Received: renderer.NewStyle().Foreground(lipgloss.Color("78")),
		Missing:  renderer.NewStyle().Foreground(lipgloss.Color("203")),
		Faint:    renderer.NewStyle().Foreground(lipgloss.Color("243")),
		Warning:  renderer.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// newRenderer returns a renderer for w honouring --color. "auto"
// colors only when w is a terminal.
func newRenderer(w io.Writer, mode string) (*lipgloss.Renderer, error) {
	switch mode {
	case "", "auto":
		return lipgloss.NewRenderer(w), nil
	case "always":
		renderer := lipgloss.NewRenderer(w, termenv.WithProfile(termenv.ANSI256))
		renderer.SetColorProfile(termenv.ANSI256)
		return renderer, nil
	case "never":
		renderer := lipgloss.NewRenderer(w, termenv.WithProfile(termenv.Ascii))
		renderer.SetColorProfile(termenv.Ascii)
		return renderer, nil
	default:
		return nil, fmt.Errorf("unknown --color %q: want auto, always or never", mode)
	}
}

// progressWidth is the number of cells in a group's progress bar.
const progressWidth = 20

// renderStatus writes report as a styled listing. Group lines longer
// than width cells are truncated; zero means no limit.
func renderStatus(w io.Writer, report statusReport, renderer *lipgloss.Renderer, width int) {
	theme := newStatusTheme(renderer)

	if report.StateFile != "" {
		fmt.Fprintln(w, theme.Faint.Render("state: "+report.StateFile))
	}
	if len(report.Groups) == 0 {
		fmt.Fprintln(w, theme.Header.Render("No incomplete groups"))
	} else {
		fmt.Fprintln(w, theme.Header.Render(fmt.Sprintf("Incomplete groups (%d)", len(report.Groups))))
		for _, group := range report.Groups {
			line := fmt.Sprintf("  %s  %s %s  %s",
				theme.Key.Render(group.Key.String()),
				renderProgress(theme, group),
				theme.Received.Render(fmt.Sprintf("%d/%d", group.Received, group.Key.Size)),
				theme.Missing.Render("missing "+formatMissing(group)),
			)
			if width > 0 && ansi.StringWidth(line) > width {
				line = ansi.Truncate(line, width-1, "…")
			}
			fmt.Fprintln(w, line)
		}
	}

	if report.Misconfigured > 0 {
		fmt.Fprintln(w, theme.Warning.Render(fmt.Sprintf("Misconfigured parts ignored: %d", report.Misconfigured)))
	}
	if report.Conflicts > 0 {
		fmt.Fprintln(w, theme.Warning.Render(fmt.Sprintf("Conflicting duplicates replaced: %d", report.Conflicts)))
	}
}

func renderProgress(theme statusTheme, group qrpayload.GroupStatus) string {
	filled := int(uint64(group.Received) * progressWidth / uint64(group.Key.Size))
	if filled == 0 && group.Received > 0 {
		filled = 1
	}
	return theme.Received.Render(strings.Repeat("█", filled)) +
		theme.Faint.Render(strings.Repeat("░", progressWidth-filled))
}

// formatMissing lists the missing indices, noting how many more there
// are beyond the listed ones.
func formatMissing(group qrpayload.GroupStatus) string {
	listed := make([]string, 0, len(group.Missing))
	for _, index := range group.Missing {
		listed = append(listed, fmt.Sprint(index))
	}
	text := strings.Join(listed, ", ")
	if extra := group.MissingCount - uint32(len(group.Missing)); extra > 0 {
		text += fmt.Sprintf(" and %d more", extra)
	}
	return text
}
