package disasm

import (
	"testing"

	"kcpu/asm"
	"kcpu/kcspec"
	"kcpu/lang"
)

func TestDecodeBlobRoundTripsMov(t *testing.T) {
	words, err := asm.Assemble("MOV %ra %rb\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	rom := kcspec.DefaultROM()
	db, err := DecodeBlob(NewSliceSource(words), rom)
	if err != nil {
		t.Fatalf("DecodeBlob: %v", err)
	}
	if db.Def.Name != "MOV" {
		t.Fatalf("expected MOV, got %s", db.Def.Name)
	}
}

func TestDisassembleAliasRoundTripsAddImmediate(t *testing.T) {
	words, err := asm.Assemble("ADD2 $0x0003 %ra\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	rom := kcspec.DefaultROM()
	l := lang.NewBuiltinLang(kcspec.InstDefs)
	resolved, err := DisassembleAlias(NewSliceSource(words), rom, l)
	if err != nil {
		t.Fatalf("DisassembleAlias: %v", err)
	}
	if resolved.Alias.Name != "ADD2" {
		t.Fatalf("expected ADD2, got %s", resolved.Alias.Name)
	}
	if len(resolved.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(resolved.Args))
	}
}

func TestSteppingDisassemblerWalksTwoInstructions(t *testing.T) {
	words, err := asm.Assemble("MOV %ra %rb\nADD2 $0x0003 %rc\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	rom := kcspec.DefaultROM()
	src := NewSliceSource(words)
	stepper := NewSteppingDisassembler(rom)

	first, err := stepper.Step(src)
	if err != nil {
		t.Fatalf("Step 1: %v", err)
	}
	if first.Alias.Name != "MOV" {
		t.Fatalf("expected MOV first, got %s", first.Alias.Name)
	}

	second, err := stepper.Step(src)
	if err != nil {
		t.Fatalf("Step 2: %v", err)
	}
	if second.Alias.Name != "ADD2" {
		t.Fatalf("expected ADD2 second, got %s", second.Alias.Name)
	}
}

func TestDecodeBlobInvalidOpcodeErrors(t *testing.T) {
	rom := kcspec.DefaultROM()
	// An all-ones opcode field is not claimed by any InstDef.
	_, err := DecodeBlob(NewSliceSource([]uint16{0x7FFF}), rom)
	if err == nil {
		t.Fatal("expected an InvalidOpcode error")
	}
}
