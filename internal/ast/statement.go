// Package ast holds the statement tree produced by the parser. Every node
// implements the uniform execute operation against a closure and a context;
// expressions are statements whose value is their result.
package ast

import (
	"errors"
	"io"

	"mython/internal/runtime"
)

// Statement is the uniform execution interface every tree node implements.
type Statement = runtime.Statement

// returnSignal unwinds a method body. It travels the error channel so every
// statement boundary propagates it untouched; only MethodBody converts it
// back into a value. All other error kinds pass through MethodBody.
type returnSignal struct {
	value runtime.Holder
}

func (r *returnSignal) Error() string { return "return outside of a method body" }

// NumberConst evaluates to an owned Number.
type NumberConst struct {
	Value int32
}

func NewNumberConst(v int32) *NumberConst { return &NumberConst{Value: v} }

func (s *NumberConst) Execute(_ runtime.Closure, _ runtime.Context) (runtime.Holder, error) {
	return runtime.OwnNumber(s.Value), nil
}

// StringConst evaluates to an owned String.
type StringConst struct {
	Value string
}

func NewStringConst(v string) *StringConst { return &StringConst{Value: v} }

func (s *StringConst) Execute(_ runtime.Closure, _ runtime.Context) (runtime.Holder, error) {
	return runtime.OwnString(s.Value), nil
}

// BoolConst evaluates to an owned Bool.
type BoolConst struct {
	Value bool
}

func NewBoolConst(v bool) *BoolConst { return &BoolConst{Value: v} }

func (s *BoolConst) Execute(_ runtime.Closure, _ runtime.Context) (runtime.Holder, error) {
	return runtime.OwnBool(s.Value), nil
}

// NoneConst evaluates to the empty holder.
type NoneConst struct{}

func NewNoneConst() *NoneConst { return &NoneConst{} }

func (s *NoneConst) Execute(_ runtime.Closure, _ runtime.Context) (runtime.Holder, error) {
	return runtime.None(), nil
}

// Assignment binds the value of RHS under Var in the current closure and
// yields the stored holder.
type Assignment struct {
	Var string
	RHS Statement
}

func NewAssignment(name string, rhs Statement) *Assignment {
	return &Assignment{Var: name, RHS: rhs}
}

func (s *Assignment) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	val, err := s.RHS.Execute(closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	closure[s.Var] = val
	return val, nil
}

// VariableValue resolves a dotted name: the first id in the closure, every
// following id in the field map of the instance reached so far.
type VariableValue struct {
	DottedIDs []string
}

func NewVariableValue(name string) *VariableValue {
	return &VariableValue{DottedIDs: []string{name}}
}

func NewDottedValue(ids []string) *VariableValue {
	return &VariableValue{DottedIDs: ids}
}

func (s *VariableValue) Execute(closure runtime.Closure, _ runtime.Context) (runtime.Holder, error) {
	if len(s.DottedIDs) == 0 {
		return runtime.None(), runtime.NewError(runtime.NameError, "no arguments specified")
	}
	result, ok := closure[s.DottedIDs[0]]
	if !ok {
		return runtime.None(), runtime.NewError(runtime.NameError, "invalid argument name: %s", s.DottedIDs[0])
	}
	for _, name := range s.DottedIDs[1:] {
		inst, isInst := result.AsInstance()
		if !isInst {
			return runtime.None(), runtime.NewError(runtime.NameError, "invalid argument name: %s", name)
		}
		result, ok = inst.Fields()[name]
		if !ok {
			return runtime.None(), runtime.NewError(runtime.NameError, "invalid argument name: %s", name)
		}
	}
	return result, nil
}

// Print writes its arguments separated by a single space and terminated by a
// newline. The separator is written before the following argument is
// evaluated, so argument side effects interleave with the output in program
// order.
type Print struct {
	Args []Statement
}

func NewPrint(args ...Statement) *Print { return &Print{Args: args} }

func (s *Print) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	out := ctx.Output()
	var result runtime.Holder
	for i, arg := range s.Args {
		if i > 0 {
			if _, err := io.WriteString(out, " "); err != nil {
				return runtime.None(), err
			}
		}
		val, err := arg.Execute(closure, ctx)
		if err != nil {
			return runtime.None(), err
		}
		result = val
		if err := val.Print(out, ctx); err != nil {
			return runtime.None(), err
		}
	}
	if _, err := io.WriteString(out, "\n"); err != nil {
		return runtime.None(), err
	}
	return result, nil
}

// MethodCall evaluates the receiver, then the arguments left to right, and
// dispatches by name and arity. A None receiver yields None.
type MethodCall struct {
	Receiver Statement
	Method   string
	Args     []Statement
}

func NewMethodCall(receiver Statement, method string, args []Statement) *MethodCall {
	return &MethodCall{Receiver: receiver, Method: method, Args: args}
}

func (s *MethodCall) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	recv, err := s.Receiver.Execute(closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	if recv.IsNone() {
		return runtime.None(), nil
	}
	inst, ok := recv.AsInstance()
	if !ok {
		return runtime.None(), runtime.NewError(runtime.TypeError, "method call on a non-instance value")
	}
	args := make([]runtime.Holder, 0, len(s.Args))
	for _, arg := range s.Args {
		val, err := arg.Execute(closure, ctx)
		if err != nil {
			return runtime.None(), err
		}
		args = append(args, val)
	}
	return inst.Call(s.Method, args, ctx)
}

// Stringify prints its argument into a capture buffer and yields the buffer
// contents as a String.
type Stringify struct {
	Arg Statement
}

func NewStringify(arg Statement) *Stringify { return &Stringify{Arg: arg} }

func (s *Stringify) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	val, err := s.Arg.Execute(closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	if val.IsNone() {
		return runtime.OwnString("None"), nil
	}
	dummy := &runtime.DummyContext{}
	if err := val.Print(dummy.Output(), dummy); err != nil {
		return runtime.None(), err
	}
	return runtime.OwnString(dummy.String()), nil
}

// Compound runs its statements in order; its own value is None. Any failure
// aborts the sequence.
type Compound struct {
	Statements []Statement
}

func NewCompound(statements ...Statement) *Compound {
	return &Compound{Statements: statements}
}

func (s *Compound) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	for _, stmt := range s.Statements {
		if _, err := stmt.Execute(closure, ctx); err != nil {
			return runtime.None(), err
		}
	}
	return runtime.None(), nil
}

// Return evaluates its expression and unwinds to the innermost enclosing
// MethodBody carrying the value.
type Return struct {
	Expr Statement
}

func NewReturn(expr Statement) *Return { return &Return{Expr: expr} }

func (s *Return) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	val, err := s.Expr.Execute(closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	return runtime.None(), &returnSignal{value: val}
}

// MethodBody is the root of every method body: it converts the return
// unwinding into the method's result. Falling off the end yields None.
type MethodBody struct {
	Body Statement
}

func NewMethodBody(body Statement) *MethodBody { return &MethodBody{Body: body} }

func (s *MethodBody) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	if _, err := s.Body.Execute(closure, ctx); err != nil {
		var ret *returnSignal
		if errors.As(err, &ret) {
			return ret.value, nil
		}
		return runtime.None(), err
	}
	return runtime.None(), nil
}

// ClassDefinition binds the class under its own name in the current closure.
type ClassDefinition struct {
	Cls runtime.Holder
}

func NewClassDefinition(cls runtime.Holder) *ClassDefinition {
	return &ClassDefinition{Cls: cls}
}

func (s *ClassDefinition) Execute(closure runtime.Closure, _ runtime.Context) (runtime.Holder, error) {
	cls, ok := s.Cls.AsClass()
	if !ok {
		return runtime.None(), runtime.NewError(runtime.TypeError, "class definition does not hold a class")
	}
	closure[cls.Name()] = s.Cls
	return runtime.None(), nil
}

// FieldAssignment mutates a field of the instance named by Object.
type FieldAssignment struct {
	Object    VariableValue
	FieldName string
	RHS       Statement
}

func NewFieldAssignment(object VariableValue, field string, rhs Statement) *FieldAssignment {
	return &FieldAssignment{Object: object, FieldName: field, RHS: rhs}
}

func (s *FieldAssignment) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	obj, err := s.Object.Execute(closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	inst, ok := obj.AsInstance()
	if !ok {
		return runtime.None(), runtime.NewError(runtime.TypeError, "field assignment on a non-instance value")
	}
	val, err := s.RHS.Execute(closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	inst.Fields()[s.FieldName] = val
	return val, nil
}

// IfElse branches on the truthiness of its condition. A missing else branch
// yields None.
type IfElse struct {
	Condition Statement
	Then      Statement
	Else      Statement
}

func NewIfElse(condition, then, els Statement) *IfElse {
	return &IfElse{Condition: condition, Then: then, Else: els}
}

func (s *IfElse) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	cond, err := s.Condition.Execute(closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	if runtime.IsTrue(cond) {
		return s.Then.Execute(closure, ctx)
	}
	if s.Else != nil {
		return s.Else.Execute(closure, ctx)
	}
	return runtime.None(), nil
}

// NewInstanceStmt creates (once, at parse time) the instance the class
// definition stands for and hands out shared references to it. When the class
// resolves __init__ with matching arity the constructor runs through the
// standard dispatch.
type NewInstanceStmt struct {
	inst *runtime.ClassInstance
	Args []Statement
}

func NewInstanceOf(cls *runtime.Class, args []Statement) *NewInstanceStmt {
	return &NewInstanceStmt{inst: runtime.NewInstance(cls), Args: args}
}

func (s *NewInstanceStmt) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	args := make([]runtime.Holder, 0, len(s.Args))
	for _, arg := range s.Args {
		val, err := arg.Execute(closure, ctx)
		if err != nil {
			return runtime.None(), err
		}
		args = append(args, val)
	}
	if s.inst.HasMethod(runtime.InitMethod, len(args)) {
		if _, err := s.inst.Call(runtime.InitMethod, args, ctx); err != nil {
			return runtime.None(), err
		}
	}
	return runtime.Share(s.inst), nil
}
