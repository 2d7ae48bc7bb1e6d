package vm

import (
	"kcpu/hw"
	"kcpu/usig"
)

const (
	biosWords = 1 << 13
	progWords = 1 << 21
)

// Memory is the two-bank address space plus the single-word "fiddle" latch
// microcode uses to stage an address/value pair across the clocks of a
// load or store (spec.md 4.6). Bank selection rides on bit 7 of whichever
// prefix register (near or far) a given MCTRL_MODE step addresses through;
// the remaining 7 bits of the prefix extend the 16-bit address bus to reach
// every word of the larger PROG bank.
type Memory struct {
	bios [biosWords]hw.Word
	prog [progWords]hw.Word

	nearPrefix hw.Word
	farPrefix  hw.Word

	fiddleAdr hw.Word
	fiddleVal hw.Word
}

// NewMemory builds a Memory with bios and prog copied in at offset 0; either
// may be shorter than its bank (the remainder reads as zero).
func NewMemory(bios, prog []hw.Word) *Memory {
	m := &Memory{}
	copy(m.bios[:], bios)
	copy(m.prog[:], prog)
	return m
}

func prefixIsProg(p hw.Word) bool  { return p&0x80 != 0 }
func prefixExtBits(p hw.Word) uint32 { return uint32(p & 0x7F) }

// readWord and writeWord take a byte address; the word it falls in is at
// index addr/2 of the bank.
func (m *Memory) readWord(prefix, addr hw.Word) hw.Word {
	phys := ((prefixExtBits(prefix) << 16) | uint32(addr)) >> 1
	if prefixIsProg(prefix) {
		return m.prog[phys&(progWords-1)]
	}
	return m.bios[phys&(biosWords-1)]
}

// writeWord silently discards writes into the BIOS bank: it's ROM.
func (m *Memory) writeWord(prefix, addr, v hw.Word) {
	if !prefixIsProg(prefix) {
		return
	}
	phys := ((prefixExtBits(prefix) << 16) | uint32(addr)) >> 1
	m.prog[phys&(progWords-1)] = v
}

// FetchCode reads the instruction stream directly out of the PROG bank by
// IP, bypassing the prefix/fiddle latch entirely. Instruction fetch has no
// near/far selection in this table -- code always lives in PROG -- so this
// keeps Ctl.fetch a single direct read instead of staging through STPFX.
// IP is a byte address, so the word at IP is PROG word IP/2.
func (m *Memory) FetchCode(addr hw.Word) hw.Word {
	return m.prog[(addr>>1)&(progWords-1)]
}

func peekOrPulled(bus *BusState, b hw.Bus) hw.Word {
	if v, ok := bus.Peek(b); ok {
		return v
	}
	return b.PulledValue()
}

// ClockConnects is memory's entire contribution to a clock: the MCTRL_MODE
// fiddle-latch action (gated on CTRL_ACTION selecting ActionMctrlBusmodeX --
// see kcspec's instdefs.go for why every memory microcode step must set this
// explicitly rather than leaving MCTRL_MODE at its zero default, which
// aliases MCTRL_MODE_STPFX) followed by the independently-gated MCTRL_BUSMODE
// bus bridge.
func (m *Memory) ClockConnects(ui hw.UInst, bus *BusState) {
	if ui&usig.MaskCtrlAction == usig.ActionMctrlBusmodeX {
		m.applyMode(ui, bus)
	}
	m.applyBusmode(ui, bus)
}

func (m *Memory) applyMode(ui hw.UInst, bus *BusState) {
	switch ui & usig.MaskMctrlMode {
	case usig.MctrlModeStpfx:
		m.nearPrefix = peekOrPulled(bus, hw.BusB)
	case usig.MctrlModeStpfxFar:
		m.farPrefix = peekOrPulled(bus, hw.BusB)
	case usig.MctrlModeFo:
		bus.Assign(hw.BusF, m.fiddleVal)
	case usig.MctrlModeFoMi:
		m.fiddleAdr = peekOrPulled(bus, hw.BusA)
		m.writeWord(m.nearPrefix, m.fiddleAdr, peekOrPulled(bus, hw.BusB))
		bus.Assign(hw.BusF, m.fiddleVal)
	case usig.MctrlModeFoMiFar:
		m.fiddleAdr = peekOrPulled(bus, hw.BusA)
		m.writeWord(m.farPrefix, m.fiddleAdr, peekOrPulled(bus, hw.BusB))
		bus.Assign(hw.BusF, m.fiddleVal)
	case usig.MctrlModeFi:
		m.fiddleAdr = peekOrPulled(bus, hw.BusA)
		m.fiddleVal = peekOrPulled(bus, hw.BusF)
	case usig.MctrlModeFiMo:
		m.fiddleAdr = peekOrPulled(bus, hw.BusA)
		m.fiddleVal = m.readWord(m.nearPrefix, m.fiddleAdr)
		bus.Assign(hw.BusM, m.fiddleVal)
	case usig.MctrlModeFiMoFar:
		m.fiddleAdr = peekOrPulled(bus, hw.BusA)
		m.fiddleVal = m.readWord(m.farPrefix, m.fiddleAdr)
		bus.Assign(hw.BusM, m.fiddleVal)
	}
}

// applyBusmode bridges F against M or B. ConwBusbMaybeflip swaps the bytes
// of the word it bridges onto B when the fiddle address is odd, so a byte
// half access lands on the correct half of the word once the rest of the
// pipeline has moved it as a full word (a scope cut: this simulator does
// not model true sub-word register writes).
// Conh, the "stitch a word from bank/B bytes" busmode, is likewise folded
// into a plain F<-B word pass-through under that same cut.
func (m *Memory) applyBusmode(ui hw.UInst, bus *BusState) {
	switch ui & usig.MaskMctrlBusmode {
	case usig.MctrlBusmodeDisable:
	case usig.MctrlBusmodeConwBusm:
		bus.Connect(hw.BusF, hw.BusM)
	case usig.MctrlBusmodeConwBusb:
		bus.Connect(hw.BusF, hw.BusB)
	case usig.MctrlBusmodeConwBusbMaybeflip:
		v := peekOrPulled(bus, hw.BusF)
		engaged := ui&usig.MaskCtrlAction == usig.ActionMctrlBusmodeX
		if (m.fiddleAdr&1 != 0) != engaged {
			v = hw.ByteFlip(v)
		}
		bus.Assign(hw.BusB, v)
	case usig.MctrlBusmodeConh:
		bus.Assign(hw.BusF, peekOrPulled(bus, hw.BusB))
	}
}
