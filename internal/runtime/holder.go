package runtime

import "io"

// Holder is a shared, possibly-empty handle to an Object. The empty holder
// represents None. Own wraps a freshly constructed object and Share wraps an
// object whose storage is owned elsewhere (self passing); under the host
// collector both alias the same referent, the two constructors record which
// side carries the lifetime. Field maps may form reference cycles; the host
// collector reclaims them.
type Holder struct {
	obj Object
}

func Own(obj Object) Holder   { return Holder{obj: obj} }
func Share(obj Object) Holder { return Holder{obj: obj} }
func None() Holder            { return Holder{} }

func OwnNumber(v int32) Holder  { return Own(&Number{Value: v}) }
func OwnString(s string) Holder { return Own(&String{Value: s}) }
func OwnBool(b bool) Holder     { return Own(&Bool{Value: b}) }

func (h Holder) IsNone() bool   { return h.obj == nil }
func (h Holder) Object() Object { return h.obj }

func (h Holder) AsNumber() (*Number, bool) {
	n, ok := h.obj.(*Number)
	return n, ok
}

func (h Holder) AsString() (*String, bool) {
	s, ok := h.obj.(*String)
	return s, ok
}

func (h Holder) AsBool() (*Bool, bool) {
	b, ok := h.obj.(*Bool)
	return b, ok
}

func (h Holder) AsClass() (*Class, bool) {
	c, ok := h.obj.(*Class)
	return c, ok
}

func (h Holder) AsInstance() (*ClassInstance, bool) {
	ci, ok := h.obj.(*ClassInstance)
	return ci, ok
}

// Print writes the held object's text form; the empty holder prints as None.
func (h Holder) Print(out io.Writer, ctx Context) error {
	if h.obj == nil {
		_, err := io.WriteString(out, "None")
		return err
	}
	return h.obj.Print(out, ctx)
}

// IsTrue reports the truthiness of the held object: None is false, Bool is
// its value, Number is nonzero, String is non-empty. Classes and instances
// are always false.
func IsTrue(h Holder) bool {
	switch obj := h.obj.(type) {
	case *Bool:
		return obj.Value
	case *Number:
		return obj.Value != 0
	case *String:
		return obj.Value != ""
	default:
		return false
	}
}
