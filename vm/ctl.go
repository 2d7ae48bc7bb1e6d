package vm

import (
	"kcpu/hw"
	"kcpu/kcspec"
	"kcpu/usig"
)

// State is the control unit's externally-visible run state.
type State int

const (
	StateRunning State = iota
	StateHalted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateHalted:
		return "halted"
	case StateAborted:
		return "aborted"
	default:
		return "running"
	}
}

// Ctl holds the special registers and status bits spec.md 4.5 assigns to
// the control unit, plus the two dedicated Go routines -- fetch and
// dispatchInt -- that stand in for the NOP/_DO_INT microcode the real
// hardware shares across every opcode. Those two sequences never vary, so
// kcspec's InstDefs for NOP and _DO_INT are placeholder opcode reservations
// only (see kcspec/instdefs.go); Ctl runs the real logic directly rather
// than interpreting a generic ROM program for them.
type Ctl struct {
	rom *kcspec.UCodeROM

	IP   hw.Word
	IHPR hw.Word
	IR   hw.Word
	UC   hw.UCVal
	FG   Flags

	Halted    bool
	Aborted   bool
	Instmask  bool
	Ie        bool
	Hnmi      bool
	IoWait    bool
	PintLatch bool
	IntEnter  bool
}

// NewCtl starts with Instmask set: the very first clock of a fresh Vm has
// no instruction latched yet, so it must fetch one before anything else.
func NewCtl(rom *kcspec.UCodeROM) *Ctl {
	return &Ctl{rom: rom, Instmask: true}
}

func (c *Ctl) opcode() hw.Word { return hw.DecodeOpcode(c.IR) }
func (c *Ctl) inst() hw.Inst   { return hw.Decode(c.IR) }

func (c *Ctl) State() State {
	switch {
	case c.Aborted:
		return StateAborted
	case c.Halted:
		return StateHalted
	default:
		return StateRunning
	}
}

// fetch loads the next instruction word (and, if it sets the load-data
// bit, the immediate following it) from PROG memory addressed directly by
// IP, latches it into IR, and leaves Instmask cleared so the ROM-driven
// interpreter runs it starting next clock. An immediate is stashed in the
// register file under PReg ID -- the same slot IU decode already treats as
// "this operand is a constant" -- so the generic bus machinery threads an
// instruction's literal through exactly like any other register read,
// with no special-casing elsewhere.
func (c *Ctl) fetch(v *Vm) {
	word := v.Mem.FetchCode(c.IP)
	c.IR = word
	c.IP += 2
	if hw.DecodeLoadData(word) {
		v.Reg.Set(hw.ID, v.Mem.FetchCode(c.IP))
		c.IP += 2
	}
	c.Instmask = false
	c.UC = 0
}

// dispatchInt runs interrupt entry: push the return address, signal the
// PIC's accept edge, jump to the handler pointer, and clear the interrupt
// latches. Instmask stays set, so the next clock fetches the handler's
// first instruction.
func (c *Ctl) dispatchInt(v *Vm) {
	v.Reg.Set(hw.SP, v.Reg.Get(hw.SP)-2)
	v.Mem.writeWord(v.Mem.nearPrefix, v.Reg.Get(hw.SP), c.IP)
	v.IO.AcceptInterrupt()
	c.IP = c.IHPR
	c.PintLatch = false
	c.IntEnter = false
	c.Instmask = true
	c.UC = 0
}

// ClockOutputs drives IP onto Bus::A (CTRL_ACTION rip->busA) or Bus::B
// (the JM_P_RIP_BUSB_O pseudo-output), and drives a creg (FG/IHPR) onto
// Bus::A when GCTRL's alt mode selects a creg output.
func (c *Ctl) ClockOutputs(ui hw.UInst, bus *BusState) {
	if ui&usig.MaskCtrlAction == usig.ActionGctrlRipBusaO {
		bus.Assign(hw.BusA, c.IP)
	}
	if ui&usig.MaskGctrlFtjm == usig.GctrlJmPRipBusbO {
		bus.Assign(hw.BusB, c.IP)
	}
	if ui&usig.MaskCtrlAction == usig.ActionGctrlUseAlt && usig.GctrlCregIsOutput(ui) {
		bus.Assign(hw.BusA, c.cregRead(ui))
	}
}

// ClockInputs writes a creg (FG/IHPR/IE) from Bus::A when GCTRL's alt mode
// selects a creg input, and latches FG whenever the ALU drives its flags
// out -- the raw-FG special register is simply whatever the ALU's flags
// output last carried, with no separate latch-enable of its own.
func (c *Ctl) ClockInputs(ui hw.UInst, bus *BusState) {
	if ui&usig.ActrlFlagsOut != 0 {
		c.FG = DecodeFlags(bus.Read(hw.BusB))
	}
	if ui&usig.MaskCtrlAction == usig.ActionGctrlUseAlt && usig.GctrlCregIsInput(ui) {
		c.cregWrite(ui, bus.Read(hw.BusA))
	}
}

func (c *Ctl) cregRead(ui hw.UInst) hw.Word {
	switch ui & usig.MaskGctrlMode {
	case usig.GctrlAltCregFg:
		return c.FG.Encode()
	case usig.GctrlAltCregIhpr:
		return c.IHPR
	case usig.GctrlAltPIe:
		if c.Ie {
			return 1
		}
		return 0
	default:
		return 0
	}
}

func (c *Ctl) cregWrite(ui hw.UInst, v hw.Word) {
	switch ui & usig.MaskGctrlMode {
	case usig.GctrlAltCregFg:
		c.FG = DecodeFlags(v)
	case usig.GctrlAltCregIhpr:
		c.IHPR = v
	case usig.GctrlAltPIe:
		c.Ie = v != 0
	case usig.GctrlAltPOChnmiOrIAlufg:
		c.Hnmi = false
	}
}

// Offclock applies the FT/JM transition for the step that just ran,
// advances UC, and arms the next interrupt dispatch. Since fetch/dispatch
// never go through here (Ustep short-circuits to the native routines
// above while Instmask is set), every GCTRL_FTJM code this sees belongs to
// a real instruction's own microcode.
func (c *Ctl) Offclock(ui hw.UInst, bus *BusState, io *IOController) {
	ftjm := ui & usig.MaskGctrlFtjm

	switch ftjm {
	case usig.GctrlFtNone, usig.GctrlJmPRipBusbO:
		if c.UC < hw.UCValMax {
			c.UC++
		}
		return
	case usig.GctrlJmHalt:
		c.Halted = true
		return
	case usig.GctrlJmAbrt:
		c.Halted = true
		c.Aborted = true
		return
	case usig.GctrlJmYes:
		c.IP = bus.Read(hw.BusB)
	case usig.GctrlJcondCarry, usig.GctrlJcondNZero, usig.GctrlJcondSign, usig.GctrlJcondNOvflw,
		usig.GctrlJcondCarry | usig.GctrlJmInvertcond, usig.GctrlJcondNZero | usig.GctrlJmInvertcond,
		usig.GctrlJcondSign | usig.GctrlJmInvertcond, usig.GctrlJcondNOvflw | usig.GctrlJmInvertcond:
		taken := c.FG.Bit(ftjm) != (ftjm&usig.GctrlJmInvertcond != 0)
		if taken {
			c.IP = bus.Read(hw.BusB)
		}
	case usig.GctrlFtExit:
		// The common case: every non-branching real instruction ends here.
	default:
		// GCTRL_FT_ENTER/FT_MAYBEEXIT: unused by any InstDef in this table
		// (fetch is native, see above); fall through as an ordinary exit
		// if one ever appears.
	}

	if def, ok := c.rom.InstDefFor(c.opcode()); ok && def.Name == "IRET" {
		c.Hnmi = false
	}
	c.enterFetch(io)
}

// enterFetch arms the next clock's native fetch (or interrupt dispatch, if
// an unmasked interrupt line is pending and NMI isn't already being
// serviced) per spec.md 4.5's interrupt-latching rule.
func (c *Ctl) enterFetch(io *IOController) {
	c.UC = 0
	c.Instmask = true

	pint, nmi := io.Pending()
	if c.Ie && pint && !c.Hnmi {
		c.PintLatch = true
		c.IntEnter = true
		if nmi {
			c.Hnmi = true
		}
	}
}
