package ast

import (
	"mython/internal/runtime"
)

// evalOperands guards against a missing side and evaluates lhs before rhs.
func evalOperands(lhs, rhs Statement, closure runtime.Closure, ctx runtime.Context) (runtime.Holder, runtime.Holder, error) {
	if lhs == nil || rhs == nil {
		return runtime.None(), runtime.None(), runtime.NewError(runtime.NullOperandError, "null operands are not supported")
	}
	l, err := lhs.Execute(closure, ctx)
	if err != nil {
		return runtime.None(), runtime.None(), err
	}
	r, err := rhs.Execute(closure, ctx)
	if err != nil {
		return runtime.None(), runtime.None(), err
	}
	return l, r, nil
}

// Add handles Number+Number, String+String and the __add__ fallback when the
// left side is an instance.
type Add struct {
	LHS Statement
	RHS Statement
}

func NewAdd(lhs, rhs Statement) *Add { return &Add{LHS: lhs, RHS: rhs} }

func (s *Add) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	l, r, err := evalOperands(s.LHS, s.RHS, closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	if ln, ok := l.AsNumber(); ok {
		if rn, ok := r.AsNumber(); ok {
			return runtime.OwnNumber(ln.Value + rn.Value), nil
		}
	}
	if ls, ok := l.AsString(); ok {
		if rs, ok := r.AsString(); ok {
			return runtime.OwnString(ls.Value + rs.Value), nil
		}
	}
	if inst, ok := l.AsInstance(); ok && inst.HasMethod(runtime.AddMethod, 1) {
		return inst.Call(runtime.AddMethod, []runtime.Holder{r}, ctx)
	}
	return runtime.None(), runtime.NewError(runtime.TypeError, "wrong types for add operation")
}

// Sub is defined on Number operands only.
type Sub struct {
	LHS Statement
	RHS Statement
}

func NewSub(lhs, rhs Statement) *Sub { return &Sub{LHS: lhs, RHS: rhs} }

func (s *Sub) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	l, r, err := evalOperands(s.LHS, s.RHS, closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	if ln, ok := l.AsNumber(); ok {
		if rn, ok := r.AsNumber(); ok {
			return runtime.OwnNumber(ln.Value - rn.Value), nil
		}
	}
	return runtime.None(), runtime.NewError(runtime.TypeError, "wrong types for sub operation")
}

// Mult is defined on Number operands only.
type Mult struct {
	LHS Statement
	RHS Statement
}

func NewMult(lhs, rhs Statement) *Mult { return &Mult{LHS: lhs, RHS: rhs} }

func (s *Mult) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	l, r, err := evalOperands(s.LHS, s.RHS, closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	if ln, ok := l.AsNumber(); ok {
		if rn, ok := r.AsNumber(); ok {
			return runtime.OwnNumber(ln.Value * rn.Value), nil
		}
	}
	return runtime.None(), runtime.NewError(runtime.TypeError, "wrong types for mult operation")
}

// Div is truncating integer division; a zero divisor fails.
type Div struct {
	LHS Statement
	RHS Statement
}

func NewDiv(lhs, rhs Statement) *Div { return &Div{LHS: lhs, RHS: rhs} }

func (s *Div) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	l, r, err := evalOperands(s.LHS, s.RHS, closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	if ln, ok := l.AsNumber(); ok {
		if rn, ok := r.AsNumber(); ok {
			if rn.Value == 0 {
				return runtime.None(), runtime.NewError(runtime.ArithmeticError, "division by zero")
			}
			return runtime.OwnNumber(ln.Value / rn.Value), nil
		}
	}
	return runtime.None(), runtime.NewError(runtime.TypeError, "wrong types for div operation")
}

// Or evaluates both sides eagerly and yields a Bool. There is no
// short-circuit: the right side runs even when the left is already true.
type Or struct {
	LHS Statement
	RHS Statement
}

func NewOr(lhs, rhs Statement) *Or { return &Or{LHS: lhs, RHS: rhs} }

func (s *Or) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	l, r, err := evalOperands(s.LHS, s.RHS, closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	return runtime.OwnBool(runtime.IsTrue(l) || runtime.IsTrue(r)), nil
}

// And evaluates both sides eagerly and yields a Bool.
type And struct {
	LHS Statement
	RHS Statement
}

func NewAnd(lhs, rhs Statement) *And { return &And{LHS: lhs, RHS: rhs} }

func (s *And) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	l, r, err := evalOperands(s.LHS, s.RHS, closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	return runtime.OwnBool(runtime.IsTrue(l) && runtime.IsTrue(r)), nil
}

// Not yields the truthiness-negated Bool of its argument.
type Not struct {
	Arg Statement
}

func NewNot(arg Statement) *Not { return &Not{Arg: arg} }

func (s *Not) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	if s.Arg == nil {
		return runtime.None(), runtime.NewError(runtime.NullOperandError, "null operands are not supported")
	}
	val, err := s.Arg.Execute(closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	return runtime.OwnBool(!runtime.IsTrue(val)), nil
}

// Comparison evaluates both sides and applies the comparator, yielding a
// Bool.
type Comparison struct {
	Cmp runtime.Comparator
	LHS Statement
	RHS Statement
}

func NewComparison(cmp runtime.Comparator, lhs, rhs Statement) *Comparison {
	return &Comparison{Cmp: cmp, LHS: lhs, RHS: rhs}
}

func (s *Comparison) Execute(closure runtime.Closure, ctx runtime.Context) (runtime.Holder, error) {
	l, r, err := evalOperands(s.LHS, s.RHS, closure, ctx)
	if err != nil {
		return runtime.None(), err
	}
	res, err := s.Cmp(l, r, ctx)
	if err != nil {
		return runtime.None(), err
	}
	return runtime.OwnBool(res), nil
}
