package parser

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"mython/internal/lexer"
	"mython/internal/runtime"
)

func runProgram(t *testing.T, src string) (string, error) {
	t.Helper()
	l, err := lexer.New(src)
	if err != nil {
		t.Fatalf("lexing failed: %v", err)
	}
	program, err := New(l, nil).ParseProgram()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	_, err = program.Execute(runtime.Closure{}, &runtime.WriterContext{Out: &buf})
	return buf.String(), err
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			"hello arithmetic",
			"print 1 + 2 * 3\n",
			"7\n",
		},
		{
			"indentation and if/else",
			`x = 0
if x == 0:
  print "zero"
else:
  print "nonzero"
`,
			"zero\n",
		},
		{
			"class with method override",
			`class A:
  def f():
    return 1
class B(A):
  def f():
    return 2
b = B()
print b.f()
`,
			"2\n",
		},
		{
			"dotted field access and assignment",
			`class P:
  def __init__(v):
    self.v = v
p = P(10)
p.v = p.v + 5
print p.v
`,
			"15\n",
		},
		{
			"string concatenation",
			"print \"a\" + \"b\"\n",
			"ab\n",
		},
		{
			"return as non-local exit",
			`class C:
  def g():
    if True:
      return 42
    return 0
print C().g()
`,
			"42\n",
		},
		{
			"inherited method and init",
			`class Base:
  def __init__():
    self.x = 1
  def bump():
    self.x = self.x + 1
class D(Base):
  def get():
    return self.x
d = D()
d.bump()
print d.get()
`,
			"2\n",
		},
		{
			"dunder add",
			`class Vec:
  def __init__(x):
    self.x = x
  def __add__(other):
    return self.x + other.x
print Vec(1) + Vec(2)
`,
			"3\n",
		},
		{
			"dunder str via print",
			`class Greeter:
  def __init__(name):
    self.name = name
  def __str__():
    return "hello " + self.name
print Greeter("world")
`,
			"hello world\n",
		},
		{
			"stringify",
			"print str(5) + \"!\"\nprint str(None)\n",
			"5!\nNone\n",
		},
		{
			"logical operators",
			"print True and False, True or False, not 0\n",
			"False True True\n",
		},
		{
			"comparisons",
			"print 1 < 2, 2 <= 1, \"a\" < \"b\", 3 >= 3, 1 != 2\n",
			"True False True True True\n",
		},
		{
			"integer division truncates",
			"print 7 / 2\n",
			"3\n",
		},
		{
			"print none and empty",
			"print None\nprint\n",
			"None\n\n",
		},
		{
			"comments and blank lines",
			"# leading comment\nx = 1\n\n# in between\nprint x\n",
			"1\n",
		},
		{
			"dunder eq and lt",
			`class Cmp:
  def __init__(v):
    self.v = v
  def __eq__(other):
    return self.v == other
  def __lt__(other):
    return self.v < other
c = Cmp(5)
print c == 5, c < 3, c > 3
`,
			"True False True\n",
		},
		{
			"nested dotted chain",
			`class Node:
  def __init__(v):
    self.v = v
a = Node(1)
b = Node(2)
a.next = b
print a.next.v
`,
			"2\n",
		},
		{
			"parenthesized expressions",
			"print (1 + 2) * 3\n",
			"9\n",
		},
		{
			"block closed by end of input",
			"x = 1\nif x:\n  print x",
			"1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runProgram(t, tt.input)
			if err != nil {
				t.Fatalf("execution failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("output = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"undefined base class", "class B(A):\n  def f():\n    return 1\n"},
		{"undefined class call", "x = Foo()\n"},
		{"missing colon", "if x\n  print x\n"},
		{"unexpected token", "x = *\n"},
		{"unterminated block", "class C:\n  def f():\n"},
		{"field access on call result", "class C:\n  def f():\n    return 1\nprint C().x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := lexer.New(tt.input)
			if err != nil {
				t.Fatalf("lexing failed: %v", err)
			}
			if _, err := New(l, nil).ParseProgram(); err == nil {
				t.Fatalf("expected a parse error for %q", tt.input)
			} else {
				var parseErr *Error
				if !errors.As(err, &parseErr) {
					t.Fatalf("expected *parser.Error, got %T", err)
				}
			}
		})
	}
}

func TestRuntimeErrorsSurface(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"missing name", "print y\n", "invalid argument name"},
		{"division by zero", "print 1 / 0\n", "division by zero"},
		{"arity mismatch", "class C:\n  def f():\n    return 1\nprint C().f(1)\n", "not implemented"},
		{"mixed add", "print 1 + \"x\"\n", "wrong types"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runProgram(t, tt.input)
			if err == nil {
				t.Fatal("expected a runtime error")
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.message)
			}
		})
	}
}

func TestSharedClassTable(t *testing.T) {
	classes := make(map[string]*runtime.Class)

	l, err := lexer.New("class A:\n  def f():\n    return 7\n")
	if err != nil {
		t.Fatal(err)
	}
	first, err := New(l, classes).ParseProgram()
	if err != nil {
		t.Fatal(err)
	}

	l2, err := lexer.New("a = A()\nprint a.f()\n")
	if err != nil {
		t.Fatal(err)
	}
	second, err := New(l2, classes).ParseProgram()
	if err != nil {
		t.Fatalf("class defined by an earlier parse must stay visible: %v", err)
	}

	closure := runtime.Closure{}
	var buf bytes.Buffer
	ctx := &runtime.WriterContext{Out: &buf}
	if _, err := first.Execute(closure, ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := second.Execute(closure, ctx); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "7\n" {
		t.Errorf("output = %q, want %q", buf.String(), "7\n")
	}
}
