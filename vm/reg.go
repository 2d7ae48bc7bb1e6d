package vm

import (
	"kcpu/hw"
	"kcpu/usig"
)

// RegFile is the eight-register bank addressed by PReg, plus the
// per-clock bookkeeping clock_inputs needs to suppress a register that is
// simultaneously driven as an output by another IU this same clock.
type RegFile struct {
	regs       [8]hw.Word
	outputThis [8]bool
}

func NewRegFile() *RegFile {
	return &RegFile{}
}

func (r *RegFile) Get(p hw.PReg) hw.Word  { return r.regs[p] }
func (r *RegFile) Set(p hw.PReg, v hw.Word) { r.regs[p] = v }

// ApplyEarlyRspCommand mutates SP by +-2 before the clock edge, per
// spec.md 4.3's offclock_pulse: the command sub-field of the *next*
// microcode word (the one about to execute) is combinational, not
// clocked, so it must run before that word's own bus dance.
func (r *RegFile) ApplyEarlyRspCommand(next hw.UInst) {
	switch next & usig.MaskCtrlCommand {
	case usig.CommandRctrlRspEarlyDecIu3Rsp:
		r.regs[hw.SP] -= 2
	case usig.CommandRctrlRspEarlyInc:
		r.regs[hw.SP] += 2
	}
}

// iuReg resolves the physical register an IU slot refers to this clock:
// IU3 is overridden to SP when the microcode word's command or alt-mode
// GCTRL field selects the iu3-override-rsp behaviour (PUSH/CALL pre-decrement
// the stack and address it in the same step; POP/RET post-increment it).
func iuReg(iu hw.IU, ui hw.UInst, inst hw.Inst) hw.PReg {
	if iu == hw.IUThree && (usig.DoesOverrideIu3ViaCommand(ui) || usig.DoesOverrideIu3ViaGctrlAlt(ui)) {
		return hw.SP
	}
	return inst.IUReg(iu)
}

// ClockOutputs drives every enabled-output IU's register onto its chosen
// bus, and records which physical registers were driven so ClockInputs can
// suppress a simultaneous input of the same register.
func (r *RegFile) ClockOutputs(ui hw.UInst, bus *BusState, inst hw.Inst) {
	r.outputThis = [8]bool{}
	for _, iu := range [3]hw.IU{hw.IUOne, hw.IUTwo, hw.IUThree} {
		dec := usig.RctrlDecodeIU(iu, ui)
		if !usig.RctrlIUIsEn(dec) || !usig.RctrlIUIsOutput(dec) {
			continue
		}
		reg := iuReg(iu, ui, inst)
		bus.Assign(usig.RctrlIUBus(dec), r.regs[reg])
		r.outputThis[reg] = true
	}
}

// ClockInputs samples every enabled-input IU's chosen bus into its
// register, except a register that this same clock was also driven as an
// output (spec.md 4.3: simultaneous input+output suppresses the input).
func (r *RegFile) ClockInputs(ui hw.UInst, bus *BusState, inst hw.Inst) {
	for _, iu := range [3]hw.IU{hw.IUOne, hw.IUTwo, hw.IUThree} {
		dec := usig.RctrlDecodeIU(iu, ui)
		if !usig.RctrlIUIsEn(dec) || !usig.RctrlIUIsInput(dec) {
			continue
		}
		reg := iuReg(iu, ui, inst)
		if r.outputThis[reg] {
			continue
		}
		r.regs[reg] = bus.Read(usig.RctrlIUBus(dec))
	}
}
