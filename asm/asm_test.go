package asm

import (
	"testing"

	"kcpu/hw"
)

func TestAssembleMovRegisters(t *testing.T) {
	words, err := Assemble("MOV %ra %rb\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(words) != 1 {
		t.Fatalf("expected 1 word, got %d (%v)", len(words), words)
	}
}

func TestAssembleAddImmediateDestLast(t *testing.T) {
	// ADD2 follows the "src, dst" (destination-last) convention: this
	// leaves the sum in %ra, matching scenario 3/4/5's end-to-end tests.
	words, err := Assemble("ADD2 $0x0003 %ra\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected opcode word + immediate word, got %d", len(words))
	}
	if words[1] != 0x0003 {
		t.Fatalf("expected immediate 0x0003, got %#04x", words[1])
	}
}

func TestAssembleLabelForwardReference(t *testing.T) {
	words, err := Assemble("JMP start\nstart:\nMOV %ra %rb\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(words) < 2 {
		t.Fatalf("expected at least 2 words, got %d", len(words))
	}
}

func TestAssembleUnknownLabelErrors(t *testing.T) {
	_, err := Assemble("JMP nowhere\n")
	if err == nil {
		t.Fatal("expected an UnknownLabel error")
	}
}

func TestAssembleMultipleConstArgsErrors(t *testing.T) {
	_, err := Assemble("ADD2 $0x0001 $0x0002\n")
	if err == nil {
		t.Fatal("expected an InstMultipleConstArgs error")
	}
}

func TestAssembleStringLiteralPadsToWordAlignment(t *testing.T) {
	words, err := Assemble(`!string "abc"` + "\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(words) != 2 {
		t.Fatalf("expected 2 words (3 bytes padded to 4), got %d", len(words))
	}
	if hw.Byte(words[1]>>hw.ByteWidth) != 0 {
		t.Fatalf("expected trailing NUL pad, got %#04x", words[1])
	}
}

func TestAssembleBadDataParityOnOddBytes(t *testing.T) {
	_, err := Assemble("!byte $1 $2 $3\n")
	if err == nil {
		t.Fatal("expected a BadDataParity error for an odd byte count")
	}
}
