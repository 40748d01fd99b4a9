package augment

// Flatten expands composite operations so nested branches appear right after
// their parent, in order.
func Flatten(ops []Transform) []Transform {
	out := make([]Transform, 0, len(ops))
	for _, op := range ops {
		out = append(out, op)
		if c, ok := op.(interface{ Children() []Transform }); ok {
			out = append(out, Flatten(c.Children())...)
		}
	}
	return out
}

// Find returns the first operation of the given kind in ops, searching
// nested branches as well. The second result is false when none exists.
func Find(ops []Transform, kind Kind) (Transform, bool) {
	for _, op := range Flatten(ops) {
		if op.Kind() == kind {
			return op, true
		}
	}
	return nil, false
}

// Has reports whether ops contains an operation of the given kind.
func Has(ops []Transform, kind Kind) bool {
	_, ok := Find(ops, kind)
	return ok
}
