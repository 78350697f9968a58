// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("QRCLOAK_TEST_SECRET", "  hunter2\n")

	buffer, err := FromEnv("QRCLOAK_TEST_SECRET")
	if err != nil {
		t.Fatalf("FromEnv() error: %v", err)
	}
	defer buffer.Close()

	if buffer.String() != "hunter2" {
		t.Errorf("FromEnv() = %q, want %q", buffer.String(), "hunter2")
	}
}

func TestFromEnv_Unset(t *testing.T) {
	t.Setenv("QRCLOAK_TEST_SECRET", "")

	if _, err := FromEnv("QRCLOAK_TEST_SECRET"); !errors.Is(err, ErrEmpty) {
		t.Errorf("FromEnv() error = %v, want ErrEmpty", err)
	}
}

func TestReadFromPath(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain", "AGE-SECRET-KEY-1ABC", "AGE-SECRET-KEY-1ABC"},
		{"trailing newline", "AGE-SECRET-KEY-1ABC\n", "AGE-SECRET-KEY-1ABC"},
		{"multiple lines", "# comment\nAGE-SECRET-KEY-1ABC\n", "# comment\nAGE-SECRET-KEY-1ABC"},
	}

	directory := t.TempDir()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(directory, test.name)
			if err := os.WriteFile(path, []byte(test.content), 0o600); err != nil {
				t.Fatalf("writing test file: %v", err)
			}

			buffer, err := ReadFromPath(path)
			if err != nil {
				t.Fatalf("ReadFromPath() error: %v", err)
			}
			defer buffer.Close()
			if buffer.String() != test.want {
				t.Errorf("ReadFromPath() = %q, want %q", buffer.String(), test.want)
			}
		})
	}
}

func TestReadFromPath_Errors(t *testing.T) {
	if _, err := ReadFromPath("/nonexistent/qrcloak/identity"); err == nil {
		t.Error("ReadFromPath() of a missing file should fail")
	}

	path := filepath.Join(t.TempDir(), "blank")
	if err := os.WriteFile(path, []byte(" \n\t"), 0o600); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	if _, err := ReadFromPath(path); !errors.Is(err, ErrEmpty) {
		t.Errorf("ReadFromPath() of a blank file error = %v, want ErrEmpty", err)
	}
}

func TestPrompt_NotTerminal(t *testing.T) {
	file, err := os.Open(os.DevNull)
	if err != nil {
		t.Fatalf("opening %s: %v", os.DevNull, err)
	}
	defer file.Close()

	if _, err := Prompt(int(file.Fd()), io.Discard, "passphrase"); err == nil {
		t.Error("Prompt() on a non-terminal should fail")
	}
}
