package kcspec

import (
	"fmt"
	"sync"

	"kcpu/hw"
)

// UCodeROM is the built (opcode, ustep) -> microcode word lookup. Built
// once at process start from InstDefs and handed out as a read-only
// shared reference per spec.md §5/§9.
type UCodeROM struct {
	words [hw.UCodeLen]*hw.UInst
	defs  map[hw.Word]*InstDef // indexed by every opcode an InstDef generates, IU3 bits included
}

// Lookup returns the microcode word for (opcode, uc), or ok=false if that
// ROM slot was never filled — reading an unfilled slot during correct
// execution never happens; the VM treats ok=false as a fatal internal
// error.
func (r *UCodeROM) Lookup(opcode hw.Word, uc hw.UCVal) (hw.UInst, bool) {
	addr := hw.NewPUAddr(opcode, uc)
	if int(addr) >= len(r.words) || r.words[addr] == nil {
		return 0, false
	}
	return *r.words[addr], true
}

// InstDefFor returns the InstDef that owns the given opcode, if any.
func (r *UCodeROM) InstDefFor(opcode hw.Word) (*InstDef, bool) {
	d, ok := r.defs[opcode]
	return d, ok
}

// BuildUCodeROM builds the microcode ROM from the given instruction
// definitions. Panics (a startup configuration bug) on: a microcode
// program with more than 4 steps, or two InstDefs claiming the same
// opcode.
func BuildUCodeROM(defs []InstDef) *UCodeROM {
	rom := &UCodeROM{defs: make(map[hw.Word]*InstDef, len(defs))}
	for i := range defs {
		d := &defs[i]
		if len(d.Uis) == 0 || len(d.Uis) > int(hw.UCValMax)+1 {
			panic(fmt.Sprintf("kcspec: %s: microcode program has %d steps, want 1..%d", d.Name, len(d.Uis), hw.UCValMax+1))
		}
		for _, opcode := range d.Class.ToOpcodes() {
			if _, exists := rom.defs[opcode]; exists {
				panic(fmt.Sprintf("kcspec: opcode %#03x claimed by both %s and %s", opcode, rom.defs[opcode].Name, d.Name))
			}
			rom.defs[opcode] = d
			for uc, ui := range d.Uis {
				addr := hw.NewPUAddr(opcode, hw.UCVal(uc))
				w := ui
				rom.words[addr] = &w
			}
		}
	}
	return rom
}

var (
	defaultROM     *UCodeROM
	defaultROMOnce sync.Once
)

// DefaultROM returns the process-global microcode ROM built from
// InstDefs, building it on first use.
func DefaultROM() *UCodeROM {
	defaultROMOnce.Do(func() {
		defaultROM = BuildUCodeROM(InstDefs)
	})
	return defaultROM
}

// ByName indexes InstDefs by mnemonic name for the assembler's built-in
// single-alias family registration (see lang.NewBuiltinLang).
func ByName(defs []InstDef) map[string]*InstDef {
	out := make(map[string]*InstDef, len(defs))
	for i := range defs {
		out[defs[i].Name] = &defs[i]
	}
	return out
}
