// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// FromEnv moves the value of the named environment variable into a
// buffer. Surrounding whitespace is trimmed. An unset or blank variable
// returns ErrEmpty.
func FromEnv(name string) (*Buffer, error) {
	value := []byte(os.Getenv(name))
	buffer, err := fromTrimmed(value)
	if err != nil {
		return nil, fmt.Errorf("reading $%s: %w", name, err)
	}
	return buffer, nil
}

// ReadFromPath reads a secret file, or standard input if path is "-".
// Surrounding whitespace is trimmed.
func ReadFromPath(path string) (*Buffer, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading secret from %s: %w", path, err)
	}

	buffer, err := fromTrimmed(data)
	if err != nil {
		return nil, fmt.Errorf("reading secret from %s: %w", path, err)
	}
	return buffer, nil
}

// Prompt reads a secret from the terminal on fd without echo, writing
// label to out first. It fails if fd is not a terminal.
func Prompt(fd int, out io.Writer, label string) (*Buffer, error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("cannot prompt for %s: not a terminal", label)
	}

	fmt.Fprintf(out, "%s: ", label)
	data, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", label, err)
	}

	buffer, err := fromTrimmed(data)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", label, err)
	}
	return buffer, nil
}

func fromTrimmed(data []byte) (*Buffer, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		Zero(data)
		return nil, ErrEmpty
	}
	buffer, err := NewFromBytes(trimmed)
	Zero(data)
	return buffer, err
}
