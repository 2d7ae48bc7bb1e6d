// Package vm implements the microcode-driven CPU simulator: bus
// arbitration, register file, ALU, banked memory, control unit, and I/O
// controller, composed into a single-threaded, deterministic, cooperatively
// stepped machine.
package vm

import (
	"kcpu/hw"
	"kcpu/kcspec"
	"kcpu/usig"

	"github.com/sirupsen/logrus"
)

// Logger is the subset of logrus's logging surface the core calls against.
// Callers hand in a real *logrus.Entry/*logrus.Logger; tests can supply a
// no-op stand-in without the core importing logrus at every call site.
type Logger interface {
	Debugf(format string, args ...interface{})
	Tracef(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Tracef(string, ...interface{}) {}

// Vm owns every piece of simulated hardware state for one machine's
// lifetime (spec.md 3, "Lifecycles"): register file, ALU, memory, I/O
// controller, and control unit. The microcode ROM and instruction table are
// read-only process-global data shared across every Vm instance.
type Vm struct {
	Reg *RegFile
	Alu *Alu
	Mem *Memory
	IO  *IOController
	Ctl *Ctl

	rom *kcspec.UCodeROM
	log Logger

	clocks uint64
}

// New builds a Vm over the given BIOS/PROG images, logging at logrus's
// standard logger.
func New(bios, prog []hw.Word) *Vm {
	return NewWithLogger(bios, prog, logrus.StandardLogger())
}

// NewWithLogger is New with an injected Logger, for tests that want
// silence or a captured log.
func NewWithLogger(bios, prog []hw.Word, log Logger) *Vm {
	if log == nil {
		log = nopLogger{}
	}
	rom := kcspec.DefaultROM()

	io := NewIOController()
	io.Register(NewPIC())
	io.Register(UID{})
	io.Register(NewVideo())
	io.Register(NewProbe(io))

	return &Vm{
		Reg: NewRegFile(),
		Alu: NewAlu(),
		Mem: NewMemory(bios, prog),
		IO:  io,
		Ctl: NewCtl(rom),
		rom: rom,
		log: log,
	}
}

// State reports the control unit's externally-visible run state.
func (v *Vm) State() State { return v.Ctl.State() }

// TotalClocks is the number of clocks Ustep has advanced, across both
// native fetch/dispatch clocks and ROM-driven microcode steps.
func (v *Vm) TotalClocks() uint64 { return v.clocks }

// Resume clears the Aborted and Halted states (spec.md 7: GCTRL_JM_ABRT is
// a program-level outcome, not an unrecoverable panic) and re-arms the
// fetch cycle, so the host can continue stepping from the instruction after
// the ABRT or HLT. Registers and memory are left as they are.
func (v *Vm) Resume() {
	v.Ctl.Aborted = false
	v.Ctl.Halted = false
	v.Ctl.enterFetch(v.IO)
}

// Ustep runs exactly one clock: per spec.md 2's phase order
// (clock_outputs -> memory clock_connects -> freeze -> clock_inputs ->
// offclock) for a real instruction's microcode step, or one of the two
// native routines standing in for fetch/interrupt-dispatch while Instmask
// is latched.
func (v *Vm) Ustep() {
	if v.Ctl.Halted {
		return
	}
	defer func() { v.clocks++ }()

	if v.Ctl.Instmask && !v.Ctl.IoWait {
		if v.Ctl.IntEnter {
			v.log.Tracef("ustep: dispatching interrupt, ihpr=%#04x", v.Ctl.IHPR)
			v.Ctl.dispatchInt(v)
		} else {
			v.log.Tracef("ustep: fetch at ip=%#04x", v.Ctl.IP)
			v.Ctl.fetch(v)
		}
		return
	}

	v.stepMicrocode()
}

func (v *Vm) stepMicrocode() {
	opcode := v.Ctl.opcode()
	ui, ok := v.rom.Lookup(opcode, v.Ctl.UC)
	if !ok {
		panic("vm: microcode ROM read at an unfilled (opcode, uc) slot")
	}
	inst := v.Ctl.inst()
	v.log.Tracef("ustep: opcode=%#03x uc=%d ui=%#08x", opcode, v.Ctl.UC, ui)

	// offclock_pulse (spec.md 4.3): RSP's early +-2 mutation is
	// combinational and must land before this same step's bus dance.
	v.Reg.ApplyEarlyRspCommand(ui)

	bus := NewBusState()
	v.Reg.ClockOutputs(ui, bus, inst)
	v.Alu.ClockOutputs(ui, bus)
	v.Ctl.ClockOutputs(ui, bus)
	v.IO.ClockOutputs(ui, bus)
	v.Mem.ClockConnects(ui, bus)
	bus.Freeze()

	v.Reg.ClockInputs(ui, bus, inst)
	v.Alu.ClockInputs(ui, bus)
	v.Ctl.ClockInputs(ui, bus)
	v.IO.ClockInputs(ui, bus)

	v.IO.Offclock()
	if usig.IsGctrlNrmIoReadwrite(ui) && v.IO.Busy() {
		v.Ctl.IoWait = true
		return
	}
	v.Ctl.IoWait = false
	v.Ctl.Offclock(ui, bus, v.IO)
}

// Run steps until Halted, an unmasked interrupt stalls forever (can't
// happen: dispatch always proceeds), or maxClocks is reached first. It
// returns true exactly when maxClocks was reached with the Vm still
// running (a timeout), matching scenario 2's self-jump loop.
func (v *Vm) Run(maxClocks *uint64) bool {
	for {
		if v.Ctl.Halted {
			return false
		}
		if maxClocks != nil && v.clocks >= *maxClocks {
			return true
		}
		v.Ustep()
	}
}

// WordIter yields the instruction stream sequentially from PROG memory,
// starting at some address -- the core API's iter_at_ip, and usable as a
// disasm.Source for disassembling forward from IP.
type WordIter struct {
	mem  *Memory
	addr hw.Word
}

// Next returns the word at the iterator's current address and advances by
// one word. ok is always true: PROG memory never runs out, an address past
// any loaded program just reads as zero, but disasm.Source still wants a
// uniform shape for "the next word".
func (it *WordIter) Next() (hw.Word, bool) {
	w := it.mem.FetchCode(it.addr)
	it.addr += 2
	return w, true
}

// IterAtIP returns a WordIter starting at the control unit's current IP.
func (v *Vm) IterAtIP() *WordIter {
	return &WordIter{mem: v.Mem, addr: v.Ctl.IP}
}
