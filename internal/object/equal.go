package object

// ObjectsEqual performs a structural equality check between two objects.
// Fixed-shape objects compare by identity.
func ObjectsEqual(a, b Object) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Type() != b.Type() {
		return false
	}

	switch aVal := a.(type) {
	case *Integer:
		if bVal, ok := b.(*Integer); ok {
			return aVal.Value == bVal.Value
		}
	case *Boolean:
		if bVal, ok := b.(*Boolean); ok {
			return aVal.Value == bVal.Value
		}
	case *String:
		if bVal, ok := b.(*String); ok {
			return aVal.Value == bVal.Value
		}
	case *Nil:
		return true
	case *Unset:
		return true
	case *Cons:
		if bVal, ok := b.(*Cons); ok {
			return ObjectsEqual(aVal.Car, bVal.Car) && ObjectsEqual(aVal.Cdr, bVal.Cdr)
		}
	}
	return false
}
