package disasm

import (
	"kcpu/kcspec"
	"kcpu/lang"
)

// Context describes one alias-level instruction a SteppingDisassembler has
// resolved: the family/alias/args DisassembleAlias matched, and the raw
// blobs it consumed doing so.
type Context struct {
	*Resolved
}

// SteppingDisassembler mirrors a running Vm's instruction pointer one
// instruction at a time, per spec.md §4.9. Each Step call resolves its
// instruction from scratch with DisassembleAlias. The stepper keeps no
// queue of a multi-instruction alias's remaining blobs and does not check
// whether the words it reads continue a previously resolved alias, so a
// jump or self-modifying code is not detected; it remembers only the last
// Context it resolved, for Context().
type SteppingDisassembler struct {
	rom  *kcspec.UCodeROM
	lang *lang.Lang
	last *Context
}

// NewSteppingDisassembler builds a stepper against the built-in language
// table.
func NewSteppingDisassembler(rom *kcspec.UCodeROM) *SteppingDisassembler {
	return NewSteppingDisassemblerWith(rom, lang.NewBuiltinLang(kcspec.InstDefs))
}

// NewSteppingDisassemblerWith is NewSteppingDisassembler against an
// explicit language table.
func NewSteppingDisassemblerWith(rom *kcspec.UCodeROM, l *lang.Lang) *SteppingDisassembler {
	return &SteppingDisassembler{rom: rom, lang: l}
}

// Step decodes exactly one alias-level instruction's worth of blobs from
// src (one or more, per the matched alias) and returns its Context.
func (d *SteppingDisassembler) Step(src Source) (*Context, error) {
	resolved, err := DisassembleAlias(src, d.rom, d.lang)
	if err != nil {
		d.last = nil
		return nil, err
	}
	ctx := &Context{Resolved: resolved}
	d.last = ctx
	return ctx, nil
}

// Context returns the last instruction Step resolved, or nil before the
// first successful Step (or after one that errored).
func (d *SteppingDisassembler) Context() *Context {
	return d.last
}
