package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writePolicy(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "policy.rk")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	return path
}

func TestLoadCommand_ListsFunctors(t *testing.T) {
	path := writePolicy(t, t.TempDir(), `f(1); f(2); g(x) := f(x);`)

	out := &bytes.Buffer{}
	cmd := RootCommand
	cmd.SetOut(out)
	cmd.SetArgs([]string{"load", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.String(); got == "" {
		t.Fatal("expected functor listing, got empty output")
	}
}

func TestQueryCommand_PrintsBindingsTable(t *testing.T) {
	path := writePolicy(t, t.TempDir(), `f(1); f(2); g(x) := f(x);`)

	out := &bytes.Buffer{}
	cmd := RootCommand
	cmd.SetOut(out)
	cmd.SetArgs([]string{"query", path, "g(a)"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.String(); got == "" {
		t.Fatal("expected a bindings table, got empty output")
	}
}

func TestQueryCommand_RejectsEmptyGoal(t *testing.T) {
	path := writePolicy(t, t.TempDir(), `f(1);`)

	cmd := RootCommand
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"query", path, "   "})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an empty goal")
	}
}

func TestQueryCommand_UndefinedFunctorReportsError(t *testing.T) {
	path := writePolicy(t, t.TempDir(), `f(1);`)

	cmd := RootCommand
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"query", path, "ff(a)"})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected an error for an undefined functor")
	}
}
