// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "ab", 1},
		{"ab", "abc", 1},
		{"abc", "bac", 2},
		{"kitten", "sitting", 3},
		{"payload", "paylaod", 2},
		{"merge", "merg", 1},
		{"extract", "extarct", 2},
	}

	for _, test := range tests {
		t.Run(test.a+"->"+test.b, func(t *testing.T) {
			if got := levenshtein(test.a, test.b); got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
			if got := levenshtein(test.b, test.a); got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.b, test.a, got, test.want)
			}
		})
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "generate"},
		{Name: "merge"},
		{Name: "extract"},
		{Name: "status"},
	}

	tests := []struct {
		input string
		want  string
	}{
		{"merg", "merge"},
		{"genrate", "generate"},
		{"stauts", "status"},
		{"xyzzyplugh", ""},
	}

	for _, test := range tests {
		if got := suggestCommand(test.input, commands); got != test.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	newFlagSet := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flagSet.String("compression", "", "")
		flagSet.Uint32P("splits", "n", 0, "")
		flagSet.Bool("pretty", false, "")
		return flagSet
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"long typo", []string{"--compresion", "gzip"}, "--compression"},
		{"typo with value", []string{"--splts=4"}, "--splits"},
		{"skips known flags", []string{"-n", "2", "--pretty", "--prety"}, "--pretty"},
		{"nothing close", []string{"--zzzzzzzzzz"}, ""},
		{"stops at terminator", []string{"--", "--prety"}, ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := suggestFlag(test.args, newFlagSet()); got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
