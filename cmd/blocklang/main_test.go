package main

import (
	"strings"
	"testing"
)

func runCapture(t *testing.T, argv []string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errBuf strings.Builder
	code = run(argv, &out, &errBuf)
	return out.String(), errBuf.String(), code
}

func TestMain_InlineCodeWithArgs(t *testing.T) {
	out, _, code := runCapture(t, []string{"-c", "{args[0]}", "hello"})
	if code != 0 {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if out != "hello\n" {
		t.Fatalf("got %q", out)
	}
}

func TestMain_FileNotFoundFails(t *testing.T) {
	_, stderr, code := runCapture(t, []string{"/nonexistent/path/to/a/file.bl"})
	if code == 0 {
		t.Fatal("expected nonzero exit for an unreadable file")
	}
	if !strings.Contains(stderr, "Failed to read file") {
		t.Fatalf("expected a file-read diagnostic, got %q", stderr)
	}
}

func TestMain_NoArgsPrintsUsageAndFails(t *testing.T) {
	_, stderr, code := runCapture(t, nil)
	if code == 0 {
		t.Fatal("expected nonzero exit with no arguments")
	}
	if !strings.Contains(stderr, "usage:") {
		t.Fatalf("expected usage text, got %q", stderr)
	}
}

func TestMain_UncaughtThrowPrintsValueToStderrAndFails(t *testing.T) {
	out, stderr, code := runCapture(t, []string{"-c", "{add:1:2:no;}"})
	if code == 0 {
		t.Fatal("expected nonzero exit for an uncaught throw")
	}
	if out != "" {
		t.Fatalf("expected no stdout before the throw escaped, got %q", out)
	}
	if strings.TrimSpace(stderr) != "<add:invalid num>" {
		t.Fatalf("got stderr %q", stderr)
	}
}

// End-to-end scenarios table, spec.md §8.
func TestMain_EndToEndScenarios(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"setThenRead", "{set:a;b;}text {a}", "text b"},
		{"ifTruthyBranch", "{set:a;{if:0;x;1;is run;1;nope;};}{a}", "is run"},
		{"lineElisionWhileLoop", "{!>oneline}\n {set:i:0;}{while:{ne:{i}:10;}:x{set:i:{add:{i}:1;};};}", "xxxxxxxxxx"},
		{"closureOverPushedList", "{set:a:{list;};}{func:{call3:f;}:{f:1;}{f:2;}{f:3;};}{call3:{a.push};}{a[0]} {a[2]} {a[1]}", "1 3 2"},
		{"nestedCatchAroundBreak", "{while:1:{catch:{catch:{break;};};};}", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, stderr, code := runCapture(t, []string{"-c", tc.src})
			if code != 0 {
				t.Fatalf("unexpected failure (stderr %q)", stderr)
			}
			if strings.TrimSuffix(out, "\n") != tc.want {
				t.Fatalf("got %q, want %q", out, tc.want)
			}
		})
	}
}
