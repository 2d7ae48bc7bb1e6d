package vm

import (
	"testing"

	"kcpu/asm"
	"kcpu/hw"
)

func assembleOrFatal(t *testing.T, src string) []uint16 {
	t.Helper()
	words, err := asm.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble(%q): %v", src, err)
	}
	return words
}

func TestVmRunsToHalt(t *testing.T) {
	prog := assembleOrFatal(t, "HLT\n")
	m := NewWithLogger(nil, prog, nopLogger{})

	timedOut := m.Run(nil)
	if timedOut {
		t.Fatal("expected Run to return false (halted), got true (timeout)")
	}
	if m.State() != StateHalted {
		t.Fatalf("expected StateHalted, got %s", m.State())
	}
}

func TestVmRunRespectsMaxClocks(t *testing.T) {
	// A self-jump never halts, so Run must stop at the clock budget.
	prog := assembleOrFatal(t, "loop:\nJMP loop\n")
	m := NewWithLogger(nil, prog, nopLogger{})

	limit := uint64(50)
	timedOut := m.Run(&limit)
	if !timedOut {
		t.Fatal("expected Run to time out on a self-jump loop")
	}
	if m.TotalClocks() < limit {
		t.Fatalf("expected at least %d clocks, got %d", limit, m.TotalClocks())
	}
}

func TestVmResumeClearsAbort(t *testing.T) {
	prog := assembleOrFatal(t, "ABRT\n")
	m := NewWithLogger(nil, prog, nopLogger{})

	m.Run(nil)
	if m.State() != StateAborted {
		t.Fatalf("expected StateAborted, got %s", m.State())
	}

	m.Resume()
	if m.Ctl.Aborted || m.Ctl.Halted {
		t.Fatal("Resume should clear both Aborted and Halted")
	}
}

func TestMovMovesRegisterValue(t *testing.T) {
	prog := assembleOrFatal(t, "ADD2 $0x0042 %ra\nMOV %ra %rb\nHLT\n")
	m := NewWithLogger(nil, prog, nopLogger{})
	m.Run(nil)

	if got := m.Reg.Get(hw.B); got != 0x0042 {
		t.Fatalf("expected %%rb to receive 0x0042 via %%ra, got %#04x", got)
	}
}
