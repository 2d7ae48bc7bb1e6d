package vm

import (
	"kcpu/hw"
	"kcpu/usig"
)

// Flags is the ALU's four-bit condition-code output. The bit ordering
// (carry=0, not-zero=1, sign=2, not-overflow=3) is chosen to match the low
// two bits of usig.GctrlJcondCarry/NZero/Sign/NOvflw (00/01/10/11); the
// control unit's JCOND test goes through Flags.Bit, which maps each code to
// its flag.
type Flags struct {
	Carry    bool
	NotZero  bool
	Sign     bool
	NotOvflw bool
}

func (f Flags) Encode() hw.Word {
	var w hw.Word
	if f.Carry {
		w |= 1 << 0
	}
	if f.NotZero {
		w |= 1 << 1
	}
	if f.Sign {
		w |= 1 << 2
	}
	if f.NotOvflw {
		w |= 1 << 3
	}
	return w
}

func DecodeFlags(w hw.Word) Flags {
	return Flags{
		Carry:    w&(1<<0) != 0,
		NotZero:  w&(1<<1) != 0,
		Sign:     w&(1<<2) != 0,
		NotOvflw: w&(1<<3) != 0,
	}
}

// Bit returns the JCOND-indexed flag bit this condition code selects.
func (f Flags) Bit(code hw.UInst) bool {
	switch code &^ usig.GctrlJmInvertcond {
	case usig.GctrlJcondCarry:
		return f.Carry
	case usig.GctrlJcondNZero:
		return f.NotZero
	case usig.GctrlJcondSign:
		return f.Sign
	case usig.GctrlJcondNOvflw:
		return f.NotOvflw
	default:
		panic("vm: not a JCOND code")
	}
}

// Alu holds the latched result of the most recent ACTRL_INPUT_EN clock,
// driven back out on ACTRL_DATA_OUT/ACTRL_FLAGS_OUT in a later clock.
type Alu struct {
	value hw.Word
	flags Flags
}

func NewAlu() *Alu { return &Alu{} }

func signOf(w hw.Word) bool { return w&0x8000 != 0 }

// compute implements spec.md 4.4's eight operations. Not-zero and sign are
// generic properties of the result for every mode; overflow is only
// computed for ADD/SUB (not-overflow is held true for every other mode).
// Carry is the arithmetic carry for ADD/SUB, a documented hardware artifact
// (result bit 0) for the bitwise ops, the bit shifted out for the shifts,
// and clear for TST.
// Raw ACTRL_MODE values, matching usig.ActrlMode*'s enumerant order before
// that package shifts them into position within the microcode word.
const (
	modeAdd uint8 = iota
	modeSub
	modeAnd
	modeOr
	modeXor
	modeLsft
	modeRsft
	modeTst
)

func compute(mode uint8, a, b hw.Word) (hw.Word, Flags) {
	var value hw.Word
	var carry, notOvflw bool

	switch mode {
	case modeAdd:
		sum := uint32(a) + uint32(b)
		value = hw.Word(sum)
		carry = sum > 0xFFFF
		notOvflw = !(signOf(a) == signOf(b) && signOf(value) != signOf(a))
	case modeSub:
		// b - a: same two's-complement addition the hardware performs,
		// ~a+1+b, so carry/overflow read off that addition rather than a
		// native subtraction.
		notA := ^a
		sum := uint32(b) + uint32(notA) + 1
		value = hw.Word(sum)
		carry = sum > 0xFFFF
		notOvflw = !(signOf(b) == signOf(notA) && signOf(value) != signOf(b))
	case modeAnd:
		value = a & b
		carry = value&1 != 0
		notOvflw = true
	case modeOr:
		value = a | b
		carry = value&1 != 0
		notOvflw = true
	case modeXor:
		value = a ^ b
		carry = value&1 != 0
		notOvflw = true
	case modeLsft:
		value = a << 1
		carry = a&0x8000 != 0
		notOvflw = true
	case modeRsft:
		value = a >> 1
		carry = a&1 != 0
		notOvflw = true
	case modeTst:
		value = a
		carry = false
		notOvflw = true
	default:
		panic("vm: unknown ALU mode")
	}

	return value, Flags{Carry: carry, NotZero: value != 0, Sign: signOf(value), NotOvflw: notOvflw}
}

// ClockOutputs drives the latched value onto bus A (ACTRL_DATA_OUT) and
// the latched flags onto bus B (ACTRL_FLAGS_OUT).
func (alu *Alu) ClockOutputs(ui hw.UInst, bus *BusState) {
	if ui&usig.ActrlDataOut != 0 {
		bus.Assign(hw.BusA, alu.value)
	}
	if ui&usig.ActrlFlagsOut != 0 {
		bus.Assign(hw.BusB, alu.flags.Encode())
	}
}

// ClockInputs latches a new result from buses A and B when ACTRL_INPUT_EN
// is asserted.
func (alu *Alu) ClockInputs(ui hw.UInst, bus *BusState) {
	if ui&usig.ActrlInputEn == 0 {
		return
	}
	a, b := bus.Read(hw.BusA), bus.Read(hw.BusB)
	alu.value, alu.flags = compute(usig.DecodeActrlMode(ui), a, b)
}
