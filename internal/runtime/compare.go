package runtime

// Comparator is a typed binary comparison over holders.
type Comparator func(lhs, rhs Holder, ctx Context) (bool, error)

// Equal compares two Numbers, two Strings or two Bools by value; two empty
// holders are equal; otherwise an instance lhs may supply __eq__ of arity 1.
func Equal(lhs, rhs Holder, ctx Context) (bool, error) {
	if l, ok := lhs.AsNumber(); ok {
		if r, ok := rhs.AsNumber(); ok {
			return l.Value == r.Value, nil
		}
	}
	if l, ok := lhs.AsString(); ok {
		if r, ok := rhs.AsString(); ok {
			return l.Value == r.Value, nil
		}
	}
	if l, ok := lhs.AsBool(); ok {
		if r, ok := rhs.AsBool(); ok {
			return l.Value == r.Value, nil
		}
	}
	if lhs.IsNone() && rhs.IsNone() {
		return true, nil
	}
	if inst, ok := lhs.AsInstance(); ok && inst.HasMethod(EqMethod, 1) {
		return dispatchComparison(inst, EqMethod, rhs, ctx)
	}
	return false, NewError(TypeError, "cannot compare objects for equality")
}

// Less compares two Numbers, two Strings or two Bools by natural order;
// otherwise an instance lhs may supply __lt__ of arity 1.
func Less(lhs, rhs Holder, ctx Context) (bool, error) {
	if l, ok := lhs.AsNumber(); ok {
		if r, ok := rhs.AsNumber(); ok {
			return l.Value < r.Value, nil
		}
	}
	if l, ok := lhs.AsString(); ok {
		if r, ok := rhs.AsString(); ok {
			return l.Value < r.Value, nil
		}
	}
	if l, ok := lhs.AsBool(); ok {
		if r, ok := rhs.AsBool(); ok {
			return !l.Value && r.Value, nil
		}
	}
	if inst, ok := lhs.AsInstance(); ok && inst.HasMethod(LtMethod, 1) {
		return dispatchComparison(inst, LtMethod, rhs, ctx)
	}
	return false, NewError(TypeError, "cannot compare objects for less")
}

func NotEqual(lhs, rhs Holder, ctx Context) (bool, error) {
	eq, err := Equal(lhs, rhs, ctx)
	if err != nil {
		return false, err
	}
	return !eq, nil
}

func Greater(lhs, rhs Holder, ctx Context) (bool, error) {
	less, err := Less(lhs, rhs, ctx)
	if err != nil {
		return false, err
	}
	if less {
		return false, nil
	}
	eq, err := Equal(lhs, rhs, ctx)
	if err != nil {
		return false, err
	}
	return !eq, nil
}

func LessOrEqual(lhs, rhs Holder, ctx Context) (bool, error) {
	greater, err := Greater(lhs, rhs, ctx)
	if err != nil {
		return false, err
	}
	return !greater, nil
}

func GreaterOrEqual(lhs, rhs Holder, ctx Context) (bool, error) {
	less, err := Less(lhs, rhs, ctx)
	if err != nil {
		return false, err
	}
	return !less, nil
}

func dispatchComparison(inst *ClassInstance, method string, rhs Holder, ctx Context) (bool, error) {
	res, err := inst.Call(method, []Holder{rhs}, ctx)
	if err != nil {
		return false, err
	}
	b, ok := res.AsBool()
	if !ok {
		return false, NewError(TypeError, "%s must return a Bool", method)
	}
	return b.Value, nil
}
