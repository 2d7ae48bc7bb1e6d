package usig

import (
	"testing"

	"kcpu/hw"
)

func TestFieldsDoNotOverlap(t *testing.T) {
	ranges := []struct {
		name       string
		lo, hi uint
	}{
		{"CTRL", CtrlBase, CtrlEnd},
		{"GCTRL", GctrlBase, GctrlEnd},
		{"RCTRL", RctrlBase, RctrlEnd},
		{"MCTRL", MctrlBase, MctrlEnd},
		{"ACTRL", ActrlBase, ActrlEnd},
	}
	for i, a := range ranges {
		for j, b := range ranges {
			if i == j {
				continue
			}
			if a.lo < b.hi && b.lo < a.hi {
				t.Fatalf("field %s [%d,%d) overlaps %s [%d,%d)", a.name, a.lo, a.hi, b.name, b.lo, b.hi)
			}
		}
	}
	if UCodeEnd > 32 {
		t.Fatalf("microcode word overflows 32 bits: %d", UCodeEnd)
	}
}

func TestRctrlDecodeIU(t *testing.T) {
	ui := hw.UInst(RctrlIU2BusbO)
	dec := RctrlDecodeIU2(ui)
	if !RctrlIUIsEn(dec) {
		t.Fatal("expected IU2 enabled")
	}
	if !RctrlIUIsOutput(dec) {
		t.Fatal("expected IU2 output")
	}
	if RctrlIUBus(dec) != hw.BusB {
		t.Fatalf("expected bus B, got %v", RctrlIUBus(dec))
	}
}

func TestDecodeActrlMode(t *testing.T) {
	if DecodeActrlMode(hw.UInst(ActrlModeXor)) != 4 {
		t.Fatalf("expected XOR mode 4, got %d", DecodeActrlMode(hw.UInst(ActrlModeXor)))
	}
}

func TestIsGctrlNrmIoReadwrite(t *testing.T) {
	if !IsGctrlNrmIoReadwrite(hw.UInst(GctrlNrmIoReadwrite)) {
		t.Fatal("expected io-readwrite to be detected")
	}
	if IsGctrlNrmIoReadwrite(hw.UInst(ActionGctrlUseAlt | GctrlNrmIoReadwrite)) {
		t.Fatal("alt-mode should not report io-readwrite")
	}
}
