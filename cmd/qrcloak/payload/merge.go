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
	"github.com/bureau-foundation/qrcloak/lib/clock"
	"github.com/bureau-foundation/qrcloak/lib/format"
	qrpayload "github.com/bureau-foundation/qrcloak/lib/payload"
	"github.com/bureau-foundation/qrcloak/lib/wire"
)

// exitIncomplete is the exit status of a merge that completed nothing
// while parts are still missing.
const exitIncomplete = 2

type mergeParams struct {
	cli.Globals
	wireParams
	State string `json:"state" flag:"state"  desc:"keep unfinished groups in this file between runs (default from config)"`
	Reset bool   `json:"reset" flag:"reset"  desc:"ignore the saved state and start over"`
}

type mergeOptions struct {
	// InputFormat is how inputs are decoded. Wire.Format is reused for
	// output.
	InputFormat wire.Format
	Wire        wire.Options

	// StateFile persists pending groups. Empty keeps them in memory
	// only.
	StateFile string
	Reset     bool

	Clock clock.Clock
}

// mergeOutcome summarizes one merge run.
type mergeOutcome struct {
	Completed int
	Pending   qrpayload.UnmergedPayloads
}

// incomplete reports whether the run should exit with exitIncomplete:
// it completed nothing and some group still waits for parts.
// Misconfigured parts and conflicts alone do not count.
func (o mergeOutcome) incomplete() bool {
	return o.Completed == 0 && o.Pending.Len() > 0
}

func mergeCommand() *cli.Command {
	var params mergeParams

	return &cli.Command{
		Name:    "merge",
		Summary: "Reassemble split payloads",
		Description: `Merge scanned payload parts into complete payloads.

Inputs are read from the file arguments, or stdin. Parts may arrive in
any order and across several runs: with --state (or state_file in the
config) unfinished groups are saved and picked up by the next run.

Completed payloads are written to stdout or --output, ready for
"qrcloak payload extract". Complete payloads in the input pass through
unchanged. Exits with status 2 when nothing completed and parts are
still missing.`,
		Usage:  "qrcloak payload merge [flags] [file...]",
		Params: func() any { return &params },
		Run: func(args []string) error {
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			wireOptions, err := params.wireParams.options(cfg)
			if err != nil {
				return err
			}
			inputs, err := readInputs(args, os.Stdin)
			if err != nil {
				return err
			}

			options := mergeOptions{
				InputFormat: wireOptions.Format,
				Wire:        wireOptions,
				StateFile:   cfg.StateFile,
				Reset:       params.Reset,
				Clock:       clock.Real(),
			}
			if params.State != "" {
				options.StateFile = params.State
			}

			w, closeOutput, err := openOutput(params.Output, os.Stdout)
			if err != nil {
				return err
			}
			logger := params.Logger().With("command", "payload/merge")
			outcome, err := merge(w, inputs, options, logger)
			if closeErr := closeOutput(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}
			if outcome.incomplete() {
				return &cli.ExitError{Code: exitIncomplete}
			}
			return nil
		},
		Examples: []cli.Example{
			{
				Description: "Merge parts scanned into separate files",
				Command:     "qrcloak payload merge part-*.json > payload.json",
			},
			{
				Description: "Feed parts one scan at a time, keeping progress on disk",
				Command:     "qrscan | qrcloak payload merge --state ~/.cache/qrcloak/pending.qrck",
			},
		},
	}
}

// merge feeds every decodable payload in inputs through a session,
// writes the completed payloads to w and logs what is still missing.
func merge(w io.Writer, inputs []input, options mergeOptions, logger *slog.Logger) (mergeOutcome, error) {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	session := qrpayload.NewSession(options.Clock, logger)

	if options.StateFile != "" && !options.Reset {
		state, err := qrpayload.LoadCheckpoint(options.StateFile)
		if err != nil {
			return mergeOutcome{}, err
		}
		session.Restore(state)
	}

	payloads, skipped := decodeInputs(inputs, options.InputFormat, logger)
	if len(payloads) == 0 && skipped > 0 {
		return mergeOutcome{}, errors.New("no input could be decoded as a payload")
	}

	complete := session.Add(payloads...)
	pending := session.Pending()

	// The checkpoint no longer holds the parts of completed groups, so
	// it is only replaced once their payloads are written.
	if len(complete) > 0 {
		items := make([]format.Payload, 0, len(complete))
		for _, c := range complete {
			items = append(items, format.FromComplete(c))
		}
		if err := encodeTo(w, items, options.Wire); err != nil {
			return mergeOutcome{}, fmt.Errorf("writing merged payloads: %w", err)
		}
	}

	if options.StateFile != "" {
		if err := qrpayload.SaveCheckpoint(options.StateFile, pending.WithoutDiagnostics()); err != nil {
			return mergeOutcome{}, err
		}
	}

	for _, group := range pending.Groups() {
		logger.Warn("group incomplete",
			"group", group.Key.String(),
			"received", group.Received,
			"missing", group.MissingCount,
		)
	}
	if count := len(pending.Misconfigured()); count > 0 {
		logger.Warn("ignored misconfigured parts", "count", count)
	}

	return mergeOutcome{Completed: len(complete), Pending: pending}, nil
}
