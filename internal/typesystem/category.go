// Package typesystem holds the value categories the analyzer and code
// generator reason about.
package typesystem

// Category is the runtime representation chosen for a value at a given
// program point.
type Category uint8

const (
	// Reference is the boxed, any-type representation. It is the zero value
	// so that an unannotated node is always safe to generate.
	Reference Category = iota
	// Int is an unboxed machine integer.
	Int
	// Boolean is an unboxed truth value. It only exists while generating
	// code for comparisons and is never a variable's category.
	Boolean
)

func (c Category) String() string {
	switch c {
	case Reference:
		return "REFERENCE"
	case Int:
		return "INT"
	case Boolean:
		return "BOOLEAN"
	default:
		return "UNKNOWN"
	}
}

// Join returns the narrowest category able to hold values of both a and b.
// Only two INT values stay unboxed; every other mix is a reference.
func Join(a, b Category) Category {
	if a == Int && b == Int {
		return Int
	}
	return Reference
}
