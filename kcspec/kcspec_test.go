package kcspec

import (
	"testing"

	"kcpu/hw"
)

func TestBuildUCodeROMNoCollisions(t *testing.T) {
	rom := BuildUCodeROM(InstDefs)
	if len(rom.defs) == 0 {
		t.Fatal("expected a non-empty instruction table")
	}
}

func TestEveryGeneratedOpcodeHasContiguousMicrocode(t *testing.T) {
	rom := BuildUCodeROM(InstDefs)
	for i := range InstDefs {
		d := &InstDefs[i]
		for _, opcode := range d.Class.ToOpcodes() {
			for uc := 0; uc < len(d.Uis); uc++ {
				if _, ok := rom.Lookup(opcode, hw.UCVal(uc)); !ok {
					t.Fatalf("%s: opcode %#03x step %d missing from ROM", d.Name, opcode, uc)
				}
			}
			for uc := len(d.Uis); uc <= int(hw.UCValMax); uc++ {
				if _, ok := rom.Lookup(opcode, hw.UCVal(uc)); ok {
					t.Fatalf("%s: opcode %#03x step %d should be unfilled", d.Name, opcode, uc)
				}
			}
		}
	}
}

func TestConstPolicyPartialOrder(t *testing.T) {
	if _, ok := ComparePolicy(Never, Only); ok {
		t.Fatal("Never and Only should be incomparable")
	}
	if cmp, ok := ComparePolicy(Allow, Never); !ok || cmp <= 0 {
		t.Fatal("Allow should dominate Never")
	}
	if cmp, ok := ComparePolicy(Allow, Only); !ok || cmp <= 0 {
		t.Fatal("Allow should dominate Only")
	}
}

func TestArgKindCollides(t *testing.T) {
	a := NewWordArgKind(Allow)
	b := NewWordArgKind(Never)
	if !a.Collides(b) {
		t.Fatal("same width, Allow vs Never should collide (Allow is comparable to everything)")
	}
	c := NewWordArgKind(Only)
	d := NewWordArgKind(Never)
	if c.Collides(d) {
		t.Fatal("Only vs Never should not collide: incomparable")
	}
}
