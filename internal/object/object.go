// Package object defines the boxed runtime values shared by every execution
// tier.
package object

import "hash/fnv"

type ObjectType string

const (
	INTEGER_OBJ      = "INTEGER"
	BOOLEAN_OBJ      = "BOOLEAN"
	STRING_OBJ       = "STRING"
	NIL_OBJ          = "NIL"
	UNSET_OBJ        = "UNSET"
	CONS_OBJ         = "CONS"
	FUNCTION_OBJ     = "FUNCTION"
	FIXED_OBJ        = "FIXED_OBJECT"
	RETURN_VALUE_OBJ = "RETURN_VALUE"
)

// Object is a boxed (REFERENCE category) value.
type Object interface {
	Type() ObjectType
	Inspect() string
	Hash() uint32
}

// Callable is anything a call expression can target: runtime functions and
// fixed-shape object definitions.
type Callable interface {
	Name() string
	Arity() int
	Invoke(args ...Object) (Object, error)
}

// Helper for hashing strings
func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// TypeName returns the user-facing name of an object's runtime type.
func TypeName(o Object) string {
	if o == nil {
		return "nil"
	}
	switch o.Type() {
	case INTEGER_OBJ:
		return "Int"
	case BOOLEAN_OBJ:
		return "Bool"
	case STRING_OBJ:
		return "String"
	case NIL_OBJ:
		return "Nil"
	case UNSET_OBJ:
		return "Unset"
	case CONS_OBJ:
		return "Cons"
	case FIXED_OBJ:
		return "Object"
	default:
		return string(o.Type())
	}
}
