package driver

import (
	"reflect"
	"testing"
)

func TestSplitArgs(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"-O2", []string{"-O2"}},
		{"-O2 -g", []string{"-O2", "-g"}},
		{"  -O2   -g  ", []string{"-O2", "-g"}},
		{`-D NAME="some value"`, []string{"-D", "NAME=some value"}},
		{`'single quoted arg'`, []string{"single quoted arg"}},
		{`a\ b c`, []string{"a b", "c"}},
		{`-D X=\"quoted\"`, []string{"-D", `X="quoted"`}},
		{`"it's fine"`, []string{"it's fine"}},
		{`""`, []string{""}},
		{"a\tb", []string{"a", "b"}},
	}
	for _, tc := range cases {
		got, err := SplitArgs(tc.in)
		if err != nil {
			t.Fatalf("SplitArgs(%q) error: %v", tc.in, err)
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("SplitArgs(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestSplitArgsErrors(t *testing.T) {
	for _, in := range []string{`"unterminated`, `'unterminated`, `trailing\`} {
		if _, err := SplitArgs(in); err == nil {
			t.Fatalf("SplitArgs(%q) expected error", in)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{SourceRoot: "src", BuildRoot: "build", ExtraCodegenArgs: "-O2 -g"}
	if !cfg.Validate(nil) {
		t.Fatalf("valid config rejected")
	}
	if cfg.Jobs <= 0 {
		t.Fatalf("jobs not defaulted: %d", cfg.Jobs)
	}
	if cfg.HeaderDir != "build" {
		t.Fatalf("header dir not defaulted: %q", cfg.HeaderDir)
	}
	if len(cfg.CodegenArgs) != 2 {
		t.Fatalf("extra args not split: %#v", cfg.CodegenArgs)
	}
}

func TestConfigValidateRejects(t *testing.T) {
	bad := []Config{
		{BuildRoot: "build"},
		{SourceRoot: "src"},
		{SourceRoot: "src", BuildRoot: "build", Jobs: -1},
		{SourceRoot: "src", BuildRoot: "build", ExtraLinkArgs: `"oops`},
	}
	for i, cfg := range bad {
		if cfg.Validate(nil) {
			t.Fatalf("case %d: invalid config accepted: %+v", i, cfg)
		}
	}
}
