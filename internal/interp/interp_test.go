package interp

import (
	"bytes"
	"strings"
	"testing"
)

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	err := Run("x = 2\nprint x * 21\n", &buf)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if buf.String() != "42\n" {
		t.Errorf("output = %q, want %q", buf.String(), "42\n")
	}
}

func TestRunSurfacesErrors(t *testing.T) {
	var buf bytes.Buffer

	if err := Run("print 1 / 0\n", &buf); err == nil {
		t.Error("runtime errors must surface")
	}
	if err := Run("x = \"unterminated\n", &buf); err == nil {
		t.Error("lexical errors must surface")
	}
	if err := Run("if x\n  print x\n", &buf); err == nil {
		t.Error("parse errors must surface")
	}
}

func TestSessionPersistsBindings(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession(&buf)

	if _, err := s.Eval("x = 40\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Eval("print x + 2\n"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "42\n" {
		t.Errorf("output = %q, want %q", buf.String(), "42\n")
	}

	if _, ok := s.Globals()["x"]; !ok {
		t.Error("globals must expose the binding")
	}
}

func TestSessionPersistsClasses(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession(&buf)

	if _, err := s.Eval("class A:\n  def f():\n    return \"from A\"\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Eval("print A().f()\n"); err != nil {
		t.Fatalf("class from an earlier eval must stay usable: %v", err)
	}
	if !strings.Contains(buf.String(), "from A") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestSessionSurvivesFailedEval(t *testing.T) {
	var buf bytes.Buffer
	s := NewSession(&buf)

	if _, err := s.Eval("x = 1\n"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Eval("print missing\n"); err == nil {
		t.Fatal("expected a name error")
	}
	buf.Reset()
	if _, err := s.Eval("print x\n"); err != nil {
		t.Fatalf("session must stay usable after a failure: %v", err)
	}
	if buf.String() != "1\n" {
		t.Errorf("output = %q", buf.String())
	}
}
