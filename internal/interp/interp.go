// Package interp wires the lexer, the parser and the statement tree together
// behind a small facade used by the CLI and the REPL.
package interp

import (
	"io"
	"log/slog"

	"mython/internal/lexer"
	"mython/internal/parser"
	"mython/internal/runtime"
)

// Session evaluates successive chunks of source against one root closure and
// one class table, so classes and variables persist across inputs. The
// session owns the root closure for its whole lifetime, which keeps every
// class definition alive for as long as instances may reference it.
type Session struct {
	globals runtime.Closure
	classes map[string]*runtime.Class
	ctx     runtime.Context
}

func NewSession(out io.Writer) *Session {
	return &Session{
		globals: runtime.Closure{},
		classes: make(map[string]*runtime.Class),
		ctx:     &runtime.WriterContext{Out: out},
	}
}

// Eval lexes, parses and executes src. Program output goes to the session's
// writer; the returned holder is the value of the program tree, which is a
// Compound, so it is always None.
func (s *Session) Eval(src string) (runtime.Holder, error) {
	l, err := lexer.New(src)
	if err != nil {
		return runtime.None(), err
	}
	p := parser.New(l, s.classes)
	program, err := p.ParseProgram()
	if err != nil {
		return runtime.None(), err
	}
	slog.Debug("executing program",
		slog.Int("tokens", len(l.Tokens())),
		slog.Int("classes", len(s.classes)))
	return program.Execute(s.globals, s.ctx)
}

// Globals exposes the root closure, e.g. for the REPL's variable listing.
func (s *Session) Globals() runtime.Closure { return s.globals }

// Run executes src against a fresh session writing to out.
func Run(src string, out io.Writer) error {
	_, err := NewSession(out).Eval(src)
	return err
}
