package runtime

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// constStmt is a method body yielding a fixed value.
type constStmt struct {
	value Holder
}

func (s constStmt) Execute(_ Closure, _ Context) (Holder, error) { return s.value, nil }

// funcStmt is a method body backed by a Go function.
type funcStmt struct {
	fn func(closure Closure, ctx Context) (Holder, error)
}

func (s funcStmt) Execute(closure Closure, ctx Context) (Holder, error) {
	return s.fn(closure, ctx)
}

func TestTruthiness(t *testing.T) {
	cls := NewClass("C", nil, nil)

	tests := []struct {
		name string
		h    Holder
		want bool
	}{
		{"none", None(), false},
		{"true", OwnBool(true), true},
		{"false", OwnBool(false), false},
		{"zero", OwnNumber(0), false},
		{"nonzero", OwnNumber(-3), true},
		{"empty string", OwnString(""), false},
		{"string", OwnString("x"), true},
		{"class", Own(cls), false},
		{"instance", Own(NewInstance(cls)), false},
	}

	for _, tt := range tests {
		if got := IsTrue(tt.h); got != tt.want {
			t.Errorf("%s: IsTrue = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFlattenedMethodResolution(t *testing.T) {
	parent := NewClass("P", []Method{
		{Name: "f", Body: constStmt{value: OwnNumber(1)}},
		{Name: "g", Body: constStmt{value: OwnNumber(10)}},
	}, nil)
	child := NewClass("C", []Method{
		{Name: "f", Body: constStmt{value: OwnNumber(2)}},
	}, parent)
	grandchild := NewClass("G", nil, child)

	ctx := &WriterContext{Out: &bytes.Buffer{}}

	callNumber := func(cls *Class, method string) int32 {
		t.Helper()
		res, err := NewInstance(cls).Call(method, nil, ctx)
		if err != nil {
			t.Fatalf("%s.%s failed: %v", cls.Name(), method, err)
		}
		n, ok := res.AsNumber()
		if !ok {
			t.Fatalf("%s.%s did not return a number", cls.Name(), method)
		}
		return n.Value
	}

	if got := callNumber(child, "f"); got != 2 {
		t.Errorf("child f: own method must win, got %d", got)
	}
	if got := callNumber(child, "g"); got != 10 {
		t.Errorf("child g: parent method must resolve, got %d", got)
	}
	if got := callNumber(grandchild, "f"); got != 2 {
		t.Errorf("grandchild f: flattened index must carry overrides, got %d", got)
	}
	if got := callNumber(grandchild, "g"); got != 10 {
		t.Errorf("grandchild g: got %d", got)
	}
	if parent.GetMethod("missing") != nil {
		t.Error("GetMethod for an unknown name must be nil")
	}
}

func TestHasMethodChecksArity(t *testing.T) {
	cls := NewClass("C", []Method{
		{Name: "f", FormalParams: []string{"a", "b"}, Body: constStmt{value: None()}},
	}, nil)
	inst := NewInstance(cls)

	if !inst.HasMethod("f", 2) {
		t.Error("f/2 must resolve")
	}
	if inst.HasMethod("f", 1) {
		t.Error("f/1 must not resolve")
	}
	if inst.HasMethod("missing", 0) {
		t.Error("missing method must not resolve")
	}
}

func TestCallDispatchFailure(t *testing.T) {
	cls := NewClass("C", nil, nil)
	_, err := NewInstance(cls).Call("f", nil, &WriterContext{Out: &bytes.Buffer{}})
	if err == nil {
		t.Fatal("expected a dispatch error")
	}
	var rtErr *Error
	if !errors.As(err, &rtErr) || rtErr.Kind != DispatchError {
		t.Fatalf("expected DispatchError, got %v", err)
	}
	if !strings.Contains(rtErr.Message, "not implemented") {
		t.Errorf("unexpected message: %q", rtErr.Message)
	}
}

func TestCallSeedsSharedSelf(t *testing.T) {
	// the body writes a field through self; the mutation must be visible on
	// the caller's instance
	body := funcStmt{fn: func(closure Closure, _ Context) (Holder, error) {
		self, _ := closure["self"].AsInstance()
		self.Fields()["marked"] = OwnBool(true)
		return None(), nil
	}}
	cls := NewClass("C", []Method{{Name: "mark", Body: body}}, nil)
	inst := NewInstance(cls)

	if _, err := inst.Call("mark", nil, &WriterContext{Out: &bytes.Buffer{}}); err != nil {
		t.Fatalf("call failed: %v", err)
	}
	marked, ok := inst.Fields()["marked"]
	if !ok || !IsTrue(marked) {
		t.Error("field mutation through self must be visible to the caller")
	}
}

func TestCallBindsParameters(t *testing.T) {
	body := funcStmt{fn: func(closure Closure, _ Context) (Holder, error) {
		return closure["v"], nil
	}}
	cls := NewClass("C", []Method{{Name: "id", FormalParams: []string{"v"}, Body: body}}, nil)

	res, err := NewInstance(cls).Call("id", []Holder{OwnNumber(7)}, &WriterContext{Out: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if n, ok := res.AsNumber(); !ok || n.Value != 7 {
		t.Errorf("expected 7 back, got %#v", res.Object())
	}
}

func TestPrinting(t *testing.T) {
	ctx := &WriterContext{Out: &bytes.Buffer{}}
	cls := NewClass("Point", nil, nil)

	tests := []struct {
		name string
		h    Holder
		want string
	}{
		{"number", OwnNumber(-42), "-42"},
		{"string", OwnString("hi"), "hi"},
		{"true", OwnBool(true), "True"},
		{"false", OwnBool(false), "False"},
		{"none", None(), "None"},
		{"class", Own(cls), "Class Point"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		if err := tt.h.Print(&buf, ctx); err != nil {
			t.Fatalf("%s: print failed: %v", tt.name, err)
		}
		if buf.String() != tt.want {
			t.Errorf("%s: printed %q, want %q", tt.name, buf.String(), tt.want)
		}
	}
}

func TestInstancePrintDispatchesStr(t *testing.T) {
	cls := NewClass("C", []Method{
		{Name: StrMethod, Body: constStmt{value: OwnString("custom repr")}},
	}, nil)

	var buf bytes.Buffer
	if err := Own(NewInstance(cls)).Print(&buf, &WriterContext{Out: &buf}); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	if buf.String() != "custom repr" {
		t.Errorf("printed %q, want %q", buf.String(), "custom repr")
	}
}

func TestInstancePrintWithoutStr(t *testing.T) {
	cls := NewClass("Point", nil, nil)

	var buf bytes.Buffer
	if err := Own(NewInstance(cls)).Print(&buf, &WriterContext{Out: &buf}); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "<Point instance") {
		t.Errorf("opaque representation must name the class, got %q", buf.String())
	}
}

func TestStrWithWrongArityIsNotDispatched(t *testing.T) {
	cls := NewClass("C", []Method{
		{Name: StrMethod, FormalParams: []string{"extra"}, Body: constStmt{value: OwnString("nope")}},
	}, nil)

	var buf bytes.Buffer
	if err := Own(NewInstance(cls)).Print(&buf, &WriterContext{Out: &buf}); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	if strings.Contains(buf.String(), "nope") {
		t.Error("__str__ of arity 1 must not be used for printing")
	}
}

func TestDummyContextCapture(t *testing.T) {
	dummy := &DummyContext{}
	if err := OwnNumber(5).Print(dummy.Output(), dummy); err != nil {
		t.Fatalf("print failed: %v", err)
	}
	if dummy.String() != "5" {
		t.Errorf("captured %q, want %q", dummy.String(), "5")
	}
}
