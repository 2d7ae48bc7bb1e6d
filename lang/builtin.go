package lang

import (
	"kcpu/hw"
	"kcpu/kcspec"
)

// Lang is the fully-populated instruction language: every auto-registered
// InstDef alias plus the hand-written multi-instruction aliases, grouped
// into mnemonic families.
type Lang struct {
	Families map[string]*Family
	byDef    map[*kcspec.InstDef]*Alias
}

// FamilyNames returns every registered mnemonic, for tokenizer/parser
// keyword recognition.
func (l *Lang) FamilyNames() []string {
	out := make([]string, 0, len(l.Families))
	for name := range l.Families {
		out = append(out, name)
	}
	return out
}

// Lookup returns the family registered under name, if any.
func (l *Lang) Lookup(name string) (*Family, bool) {
	f, ok := l.Families[name]
	return f, ok
}

// AllFamilies returns every registered family, for the disassembler's
// candidate scan.
func (l *Lang) AllFamilies() []*Family {
	out := make([]*Family, 0, len(l.Families))
	for _, f := range l.Families {
		out = append(out, f)
	}
	return out
}

func (l *Lang) register(name string, a *Alias) {
	f, ok := l.Families[name]
	if !ok {
		f = &Family{Name: name}
		l.Families[name] = f
	}
	for _, existing := range f.Aliases {
		if Collides(existing, a) {
			panic("lang: family " + name + " has two aliases with colliding signatures")
		}
	}
	f.Aliases = append(f.Aliases, a)
}

// NewBuiltinLang builds the default instruction language: one single-Virtual,
// auto-registered Alias per kcspec.InstDef (named identically to the
// InstDef, a one-instruction-one-family each), plus the hand-written
// multi-instruction/renamed aliases layered on top.
// destLast names the InstDefs whose first (IU1) slot is both an operand and
// the write-back destination: MOV and the in-place ALU1 ops. The assembly
// convention for these is "src, dst" (destination last), matching scenario
// 3/4/5 of the core's end-to-end tests (e.g. "ADD $0x0003 %ra" leaves the
// result in %ra); everything else keeps the natural IU1-then-IU2 order.
var destLast = map[string]bool{
	"MOV":    true,
	"ADD2":   true, "ADD2NF": true,
	"SUB":    true, "SUBNF": true,
	"BSUB":   true, "BSUBNF": true,
	"AND":    true, "ANDNF": true,
	"OR":     true, "ORNF": true,
	"XOR":    true, "XORNF": true,
	"LSFT":   true, "LSFTNF": true,
	"RSFT":   true, "RSFTNF": true,
}

// destLastVirtual builds a Virtual over a 2-arg InstDef with the
// source/destination slots swapped per the destLast convention.
func destLastVirtual(def *kcspec.InstDef) Virtual {
	return NewVirtual(def, SlotArg(1), SlotArg(0))
}

func NewBuiltinLang(defs []kcspec.InstDef) *Lang {
	l := &Lang{Families: map[string]*Family{}, byDef: map[*kcspec.InstDef]*Alias{}}

	for i := range defs {
		d := &defs[i]
		var v Virtual
		if destLast[d.Name] {
			v = destLastVirtual(d)
		} else {
			v = NewVirtual(d)
		}
		a := NewAlias(d.Name, false, []Virtual{v})
		l.register(d.Name, a)
		l.byDef[d] = a
	}

	byName := kcspec.ByName(defs)
	def := func(name string) *kcspec.InstDef {
		d, ok := byName[name]
		if !ok {
			panic("lang: builtin alias references unknown InstDef " + name)
		}
		return d
	}

	// NOT arg: XOR $0xffff, arg (in-place, dst == arg both operand and
	// destination).
	l.register("NOT", NewAlias("NOT", true, []Virtual{
		NewVirtual(def("XOR"), SlotArg(0), SlotConst(0xFFFF)),
	}))

	// NEG arg: BSUB $0, arg -- BSUB computes dst = src - dst, so binding
	// src to the constant 0 and dst to arg yields arg = 0 - arg.
	l.register("NEG", NewAlias("NEG", true, []Virtual{
		NewVirtual(def("BSUB"), SlotArg(0), SlotConst(0)),
	}))

	// INC arg: ADD2 $1, arg (in-place increment).
	l.register("INC", NewAlias("INC", true, []Virtual{
		NewVirtual(def("ADD2"), SlotArg(0), SlotConst(1)),
	}))

	// Signed/unsigned comparison spellings over the existing condition
	// codes -- pure renames, same single-Virtual shape as the conditions
	// they wrap.
	condAlias := func(name, wrapped string) {
		l.register(name, NewAlias(name, true, []Virtual{NewVirtual(def(wrapped))}))
	}
	condAlias("JE", "JZ")
	condAlias("JNE", "JNZ")
	condAlias("JL", "JC")
	condAlias("JNL", "JNC")
	condAlias("JGE", "JNC")

	// ENTER0: ENTER1 with its frame-size argument defaulted to 0.
	l.register("ENTER0", NewAlias("ENTER0", true, []Virtual{
		NewVirtual(def("ENTER1"), SlotConst(0)),
	}))

	// ENTERFR1 frameSize: ENTERFR2 with its frame-pointer-base argument
	// fixed to BP.
	l.register("ENTERFR1", NewAlias("ENTERFR1", true, []Virtual{
		NewVirtual(def("ENTERFR2"), SlotArg(0), SlotReg(hw.BP, hw.WidthWord)),
	}))

	// LEAVE0: LEAVE1 with its frame register fixed to BP.
	l.register("LEAVE0", NewAlias("LEAVE0", true, []Virtual{
		NewVirtual(def("LEAVE1"), SlotReg(hw.BP, hw.WidthWord)),
	}))

	// PUSHA/POPA: push/pop all 8 general registers as a fixed sequence of
	// Virtuals, one per register, in AllPRegs order (POPA restores in the
	// reverse order so the stack round-trips).
	pushVirtuals := make([]Virtual, 0, len(hw.AllPRegs))
	for _, r := range hw.AllPRegs {
		pushVirtuals = append(pushVirtuals, NewVirtual(def("PUSH"), SlotReg(r, hw.WidthWord)))
	}
	l.register("PUSHA", NewAlias("PUSHA", true, pushVirtuals))

	popVirtuals := make([]Virtual, 0, len(hw.AllPRegs))
	for i := len(hw.AllPRegs) - 1; i >= 0; i-- {
		popVirtuals = append(popVirtuals, NewVirtual(def("POP"), SlotReg(hw.AllPRegs[i], hw.WidthWord)))
	}
	l.register("POPA", NewAlias("POPA", true, popVirtuals))

	// Named multi-arity families: one mnemonic dispatching across several
	// InstDefs by argument count/kind.
	l.register("LD", NewAlias("LD-word", false, []Virtual{NewVirtual(def("LDW"))}))
	l.register("LD", NewAlias("LD-lo", false, []Virtual{NewVirtual(def("LDBL"))}))
	l.register("LD", NewAlias("LD-hi", false, []Virtual{NewVirtual(def("LDBH"))}))
	l.register("LD", NewAlias("LD-offset", false, []Virtual{NewVirtual(def("LDWO"))}))

	l.register("LDZ", NewAlias("LDZ-lo", false, []Virtual{NewVirtual(def("LDBLZ"))}))
	l.register("LDZ", NewAlias("LDZ-hi", false, []Virtual{NewVirtual(def("LDBHZ"))}))

	l.register("ST", NewAlias("ST-word", false, []Virtual{NewVirtual(def("STW"))}))
	l.register("ST", NewAlias("ST-lo", false, []Virtual{NewVirtual(def("STBL"))}))
	l.register("ST", NewAlias("ST-hi", false, []Virtual{NewVirtual(def("STBH"))}))
	l.register("ST", NewAlias("ST-offset", false, []Virtual{NewVirtual(def("STWO"))}))

	l.register("ADD", NewAlias("ADD-2", false, []Virtual{destLastVirtual(def("ADD2"))}))
	l.register("ADD", NewAlias("ADD-3", false, []Virtual{NewVirtual(def("ADD3"))}))

	l.register("ADDNF", NewAlias("ADDNF-2", false, []Virtual{destLastVirtual(def("ADD2NF"))}))
	l.register("ADDNF", NewAlias("ADDNF-3", false, []Virtual{NewVirtual(def("ADD3NF"))}))

	return l
}
