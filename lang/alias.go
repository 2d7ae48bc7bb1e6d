package lang

import "kcpu/kcspec"

// accepts reports whether arg may fill a slot declared with kind k: a
// register argument must match k's width exactly and k must not demand a
// constant (Only); a constant argument is accepted unless k forbids one
// outright (Never). Width is irrelevant for constants -- every constant
// resolves into the one 16-bit immediate slot a blob carries, regardless
// of which byte-half ArgKind the instruction declares.
func accepts(k kcspec.ArgKind, arg Arg) bool {
	if arg.IsReg {
		return arg.Width == k.Width && !k.Policy.IsOnly()
	}
	return k.Policy != kcspec.Never
}

// Accepts reports whether args has the right arity and per-position kind
// to instantiate this alias.
func (a *Alias) Accepts(args []Arg) bool {
	if len(args) != len(a.ArgKinds) {
		return false
	}
	for i, arg := range args {
		if !accepts(a.ArgKinds[i], arg) {
			return false
		}
	}
	return true
}

// Instantiate compiles args against this alias: Accepts first, then every
// Virtual in order. ok is false if either the arg kinds don't match or a
// Virtual's own instantiation fails (e.g. two constants colliding into the
// same immediate slot).
func (a *Alias) Instantiate(args []Arg) ([]Blob, bool) {
	if !a.Accepts(args) {
		return nil, false
	}
	blobs := make([]Blob, 0, len(a.Virtuals))
	for _, v := range a.Virtuals {
		b, ok := v.Instantiate(args)
		if !ok {
			return nil, false
		}
		blobs = append(blobs, b)
	}
	return blobs, true
}
