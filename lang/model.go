// Package lang is the assembler/disassembler language model shared by the
// asm and disasm packages: Arg, Slot, Virtual, Alias, Family, and Blob, and
// the built-in alias/family table generated from kcspec's InstDefs plus a
// handful of hand-written multi-instruction aliases.
package lang

import (
	"fmt"

	"kcpu/hw"
	"kcpu/kcspec"
)

// ConstBinding is a constant that is either already resolved to a Word or
// still tagged with an unresolved label name (pre-resolve-phase).
type ConstBinding struct {
	Resolved bool
	Value    hw.Word
	Tag      string
}

func ResolvedConst(v hw.Word) ConstBinding { return ConstBinding{Resolved: true, Value: v} }
func UnresolvedConst(tag string) ConstBinding { return ConstBinding{Tag: tag} }

func (c ConstBinding) String() string {
	if c.Resolved {
		return fmt.Sprintf("$%#04x", c.Value)
	}
	return c.Tag
}

// Arg is one assembler-visible argument: a physical register at some
// width, or a constant (resolved or still a label reference).
type Arg struct {
	IsReg bool
	Reg   hw.PReg
	Width hw.Width
	Const ConstBinding
}

func RegArg(r hw.PReg, w hw.Width) Arg { return Arg{IsReg: true, Reg: r, Width: w} }
func ConstArg(c ConstBinding) Arg      { return Arg{Const: c} }

func (a Arg) Kind() kcspec.ArgKind {
	if a.IsReg {
		return kcspec.NewArgKind(a.Width, kcspec.Never)
	}
	return kcspec.NewArgKind(hw.WidthWord, kcspec.Only)
}

func (a Arg) String() string {
	if a.IsReg {
		return regArgString(a.Reg, a.Width)
	}
	return a.Const.String()
}

func regArgString(r hw.PReg, w hw.Width) string {
	if !w.IsByte {
		return "%r" + r.AsmName()
	}
	prefix := "%l"
	if w.Half == hw.Hi {
		prefix = "%h"
	}
	return prefix + r.AsmName()
}

// slotTag distinguishes the three Slot variants.
type slotTag int

const (
	slotReg slotTag = iota
	slotConst
	slotArg
)

// Slot is a position inside a Virtual's instruction template: either bound
// (a literal register or constant) or unbound (refers to the alias's
// argument list by index).
type Slot struct {
	tag      slotTag
	reg      hw.PReg
	width    hw.Width
	constVal hw.Word
	argIndex int
}

func SlotReg(r hw.PReg, w hw.Width) Slot { return Slot{tag: slotReg, reg: r, width: w} }
func SlotConst(v hw.Word) Slot           { return Slot{tag: slotConst, constVal: v} }
func SlotArg(i int) Slot                 { return Slot{tag: slotArg, argIndex: i} }

func (s Slot) IsArg() bool   { return s.tag == slotArg }
func (s Slot) ArgIndex() int { return s.argIndex }

// Bound returns the literal argument a fixed (non-arg) slot encodes, for
// disasm's alias matcher to compare a decoded blob's argument against.
func (s Slot) Bound() (Arg, bool) {
	switch s.tag {
	case slotReg:
		return RegArg(s.reg, s.width), true
	case slotConst:
		return ConstArg(ResolvedConst(s.constVal)), true
	default:
		return Arg{}, false
	}
}

// Virtual is one hardware instruction inside an alias's expansion: the
// InstDef it instantiates, and the slot bound (or left open) at each IU.
type Virtual struct {
	Def   *kcspec.InstDef
	Slots [3]*Slot // indexed by hw.IU; nil where the InstDef has no arg
}

// NewVirtual builds a Virtual, defaulting any IU the InstDef declares an
// ArgKind for (and that wasn't given an explicit slot) to SlotArg at the
// next available alias-argument index — this is how a single-Virtual
// alias (the common case: one opcode per InstDef) infers its whole
// argument list for free.
func NewVirtual(def *kcspec.InstDef, slots ...Slot) Virtual {
	v := Virtual{Def: def}
	next := 0
	used := make(map[int]bool)
	for i, s := range slots {
		if i >= 3 {
			break
		}
		cp := s
		v.Slots[i] = &cp
		if s.tag == slotArg {
			used[s.argIndex] = true
		}
	}
	for iu := 0; iu < 3; iu++ {
		if def.Args[iu] == nil || v.Slots[iu] != nil {
			continue
		}
		for used[next] {
			next++
		}
		s := SlotArg(next)
		v.Slots[iu] = &s
		used[next] = true
		next++
	}
	return v
}

// argKindAt returns the ArgKind the owning InstDef declares for the IU
// this slot occupies.
func (v Virtual) argKindAt(iu int) kcspec.ArgKind {
	return *v.Def.Args[iu]
}

// Alias is an assembly-level mnemonic, possibly expanding to multiple
// underlying hardware instructions (Virtuals), each compiling to one Blob.
type Alias struct {
	Name     string
	ArgKinds []kcspec.ArgKind
	Virtuals []Virtual
	FromUser bool // true for hand-written aliases (NOT, NEG, ...), false for auto-registered 1:1 InstDef aliases
}

// NewAlias infers the alias's argument-kind list from its Virtuals' slots
// and validates contiguity/agreement per spec.md §3's invariant. Panics
// (a startup configuration bug) if slot indices have a gap or disagree on
// kind.
func NewAlias(name string, fromUser bool, virtuals []Virtual) *Alias {
	kinds := map[int]kcspec.ArgKind{}
	maxIdx := -1
	for _, v := range virtuals {
		for iu := 0; iu < 3; iu++ {
			s := v.Slots[iu]
			if s == nil || !s.IsArg() {
				continue
			}
			k := v.argKindAt(iu)
			if existing, ok := kinds[s.argIndex]; ok {
				if existing != k {
					panic(fmt.Sprintf("lang: alias %s: arg %d kind mismatch across virtuals", name, s.argIndex))
				}
			} else {
				kinds[s.argIndex] = k
			}
			if s.argIndex > maxIdx {
				maxIdx = s.argIndex
			}
		}
	}
	ordered := make([]kcspec.ArgKind, maxIdx+1)
	for i := 0; i <= maxIdx; i++ {
		k, ok := kinds[i]
		if !ok {
			panic(fmt.Sprintf("lang: alias %s: argument indices are not contiguous from 0", name))
		}
		ordered[i] = k
	}
	return &Alias{Name: name, ArgKinds: ordered, Virtuals: virtuals, FromUser: fromUser}
}

// Specificity orders alias candidates during disassembly: more Virtuals,
// then fewer arguments, then user-written beats auto-registered.
type Specificity struct {
	NumVirtuals int
	NegArgs     int
	FromUser    int
}

func (a *Alias) Specificity() Specificity {
	fu := 0
	if a.FromUser {
		fu = 1
	}
	return Specificity{NumVirtuals: len(a.Virtuals), NegArgs: -len(a.ArgKinds), FromUser: fu}
}

// CompareSpecificity implements the partial order disasm.go needs:
// lexicographic on (NumVirtuals, NegArgs, FromUser), each dimension
// compared with >, so two specificities are comparable only when neither
// dimension contradicts another — in practice, since all three dimensions
// are totally ordered integers, this total order never actually yields
// "incomparable"; ambiguity in practice arises only between specificities
// that compare Equal (two matches with literally the same score).
func CompareSpecificity(a, b Specificity) int {
	if a.NumVirtuals != b.NumVirtuals {
		return a.NumVirtuals - b.NumVirtuals
	}
	if a.NegArgs != b.NegArgs {
		return a.NegArgs - b.NegArgs
	}
	return a.FromUser - b.FromUser
}

// Family is a collection of aliases sharing a mnemonic with disjoint
// argument signatures.
type Family struct {
	Name    string
	Aliases []*Alias
}

// Collides reports whether two aliases in the same family would accept
// overlapping argument signatures (same arity, and each position's
// ArgKind collides per spec.md §3).
func Collides(a, b *Alias) bool {
	if len(a.ArgKinds) != len(b.ArgKinds) {
		return false
	}
	for i := range a.ArgKinds {
		if !a.ArgKinds[i].Collides(b.ArgKinds[i]) {
			return false
		}
	}
	return true
}

// Blob is an encoded 16-bit instruction word plus an optional (possibly
// unresolved) immediate.
type Blob struct {
	Word hw.Word
	Imm  *ConstBinding
}

// Words returns this blob's word count: 1, or 2 if it carries an
// immediate.
func (b Blob) Words() int {
	if b.Imm != nil {
		return 2
	}
	return 1
}

// Instantiate compiles a Virtual against a concrete argument list into a
// Blob. ok is false if two constants would need the Blob's single
// immediate word, or if the IU3 register does not fit the InstDef's
// OpClass. Arg kinds are not checked here — callers are expected to have
// already checked arg-kind compatibility via the owning Alias's ArgKinds.
func (v Virtual) Instantiate(args []Arg) (Blob, bool) {
	var inst hw.Inst
	inst.Opcode = 0 // overwritten below via OpClass.Instantiate
	var iu3 *hw.PReg
	var imm *ConstBinding

	resolve := func(s *Slot) (hw.PReg, bool) {
		if s == nil {
			return hw.ID, true
		}
		switch s.tag {
		case slotReg:
			return s.reg, true
		case slotConst:
			if imm != nil {
				return 0, false
			}
			c := ResolvedConst(s.constVal)
			imm = &c
			return hw.ID, true
		default: // slotArg
			a := args[s.argIndex]
			if a.IsReg {
				return a.Reg, true
			}
			if imm != nil {
				return 0, false
			}
			c := a.Const
			imm = &c
			return hw.ID, true
		}
	}

	regs := [3]hw.PReg{}
	for iu := 0; iu < 3; iu++ {
		r, ok := resolve(v.Slots[iu])
		if !ok {
			return Blob{}, false
		}
		regs[iu] = r
	}
	inst.IU1, inst.IU2, inst.IU3 = regs[0], regs[1], regs[2]
	if v.Slots[2] != nil {
		r := regs[2]
		iu3 = &r
	}

	opcode, ok := v.Def.Class.Instantiate(map[hw.IU]*hw.PReg{hw.IUThree: iu3})
	if !ok {
		return Blob{}, false
	}
	inst.Opcode = opcode
	inst.LoadData = imm != nil

	return Blob{Word: inst.Encode(), Imm: imm}, true
}
