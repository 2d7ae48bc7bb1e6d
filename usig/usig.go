// Package usig defines the bit-field layout of the 32-bit microcode word
// (the "uinst") and the pure decode helpers the control unit, register
// file, ALU, memory, and I/O controller use to interpret it. The layout is
// fixed by the hardware and must be reproduced exactly: every other package
// that builds or interprets microcode imports these constants rather than
// redefining offsets.
package usig

import "kcpu/hw"

// --- CTRL (bits [0,4)) ---

const (
	CtrlBase uint = 0
	CtrlEnd  uint = CtrlBase + 4
)

const (
	ActionCtrlNone      hw.UInst = 0b00 << (CtrlBase + 0)
	ActionGctrlUseAlt   hw.UInst = 0b01 << (CtrlBase + 0)
	ActionGctrlRipBusaO hw.UInst = 0b10 << (CtrlBase + 0)
	ActionMctrlBusmodeX hw.UInst = 0b11 << (CtrlBase + 0)
)

// CommandInhibitJmft disables the instmask-setting/UC-resetting behaviour of
// the current uop's FT/JM for a single step. No InstDef in kcspec sets it:
// _DO_INT's sequence runs natively in the VM's control unit.
const (
	CommandInhibitJmft            hw.UInst = 0b01 << (CtrlBase + 2)
	CommandRctrlRspEarlyDecIu3Rsp hw.UInst = 0b10 << (CtrlBase + 2)
	CommandRctrlRspEarlyInc       hw.UInst = 0b11 << (CtrlBase + 2)
)

const (
	MaskCtrlAction  hw.UInst = 0b11 << (CtrlBase + 0)
	MaskCtrlCommand hw.UInst = 0b11 << (CtrlBase + 2)
)

// --- GCTRL (bits [4,11)) ---

const (
	GctrlBase uint = CtrlEnd
	GctrlEnd  uint = GctrlBase + 7
)

// Fetch-transitions (FTs) and jumpmodes (JMs) share the same 4-bit field.
const (
	GctrlFtNone      hw.UInst = 0b0000 << (GctrlBase + 0)
	GctrlFtEnter     hw.UInst = 0b0001 << (GctrlBase + 0)
	GctrlFtMaybeexit hw.UInst = 0b0010 << (GctrlBase + 0)
	GctrlFtExit      hw.UInst = 0b0011 << (GctrlBase + 0)

	GctrlJmYes       hw.UInst = 0b0100 << (GctrlBase + 0)
	GctrlJmPRipBusbO hw.UInst = 0b0101 << (GctrlBase + 0)
	GctrlJmHalt      hw.UInst = 0b0110 << (GctrlBase + 0)
	GctrlJmAbrt      hw.UInst = 0b0111 << (GctrlBase + 0)

	GctrlJcondCarry  hw.UInst = 0b1000 << (GctrlBase + 0)
	GctrlJcondNZero  hw.UInst = 0b1001 << (GctrlBase + 0)
	GctrlJcondSign   hw.UInst = 0b1010 << (GctrlBase + 0)
	GctrlJcondNOvflw hw.UInst = 0b1011 << (GctrlBase + 0)

	// GctrlJmInvertcond is not a distinct code; it is the bit shared by all
	// four JCOND codes above, toggled to select the inverted condition.
	GctrlJmInvertcond hw.UInst = 0b0100 << (GctrlBase + 0)
)

// The GCTRL mode sub-field (bits [4,6) of GCTRL) is interpreted differently
// depending on whether ACTION_GCTRL_USE_ALT is set.
const (
	GctrlNrmNone                         hw.UInst = 0b00 << (GctrlBase + 4)
	GctrlNrmIoReadwrite                  hw.UInst = 0b01 << (GctrlBase + 4)
	GctrlNrmIu3OverrideOSelectRspIUnused hw.UInst = 0b10 << (GctrlBase + 4)

	GctrlAltCregFg          hw.UInst = 0b00 << (GctrlBase + 4)
	GctrlAltCregIhpr        hw.UInst = 0b01 << (GctrlBase + 4)
	GctrlAltPIe             hw.UInst = 0b10 << (GctrlBase + 4)
	GctrlAltPOChnmiOrIAlufg hw.UInst = 0b11 << (GctrlBase + 4)
)

// The direction bit (bit 6 of GCTRL), meaningful only when a creg mode (FG
// or IHPR, normal or alt) is selected.
const (
	GctrlCregO hw.UInst = 0 << (GctrlBase + 6)
	GctrlCregI hw.UInst = 1 << (GctrlBase + 6)
)

const (
	MaskGctrlFtjm hw.UInst = 0b1111 << (GctrlBase + 0)
	MaskGctrlMode hw.UInst = 0b11 << (GctrlBase + 4)
	MaskGctrlDir  hw.UInst = 0b1 << (GctrlBase + 6)
)

func GctrlCregIsInput(ui hw.UInst) bool  { return ui&MaskGctrlDir == GctrlCregI }
func GctrlCregIsOutput(ui hw.UInst) bool { return ui&MaskGctrlDir == GctrlCregO }

// IsGctrlNrmIoReadwrite reports whether this uinst asserts an I/O
// read-or-write this clock.
func IsGctrlNrmIoReadwrite(ui hw.UInst) bool {
	return (ui&MaskCtrlAction) != ActionGctrlUseAlt && (ui&MaskGctrlMode) == GctrlNrmIoReadwrite
}

// DoesOverrideIu3ViaCommand reports whether CTRL_COMMAND overrides IU3 to SP
// this step (paired with an early RSP decrement, used by PUSH/CALL-style ops).
func DoesOverrideIu3ViaCommand(ui hw.UInst) bool {
	return (ui & MaskCtrlCommand) == CommandRctrlRspEarlyDecIu3Rsp
}

// DoesOverrideIu3ViaGctrlAlt reports whether the (normal-mode) GCTRL field
// overrides IU3 to SP this step.
func DoesOverrideIu3ViaGctrlAlt(ui hw.UInst) bool {
	return (ui&MaskCtrlAction) != ActionGctrlUseAlt &&
		(ui&MaskGctrlMode) == GctrlNrmIu3OverrideOSelectRspIUnused &&
		(ui&MaskGctrlDir) == GctrlCregO
}

// --- RCTRL (bits [11,20)) ---

const (
	RctrlBase uint = GctrlEnd
	RctrlEnd  uint = RctrlBase + 9
)

const (
	RctrlIU1BusaI hw.UInst = 0b100 << (RctrlBase + 0)
	RctrlIU1BusaO hw.UInst = 0b101 << (RctrlBase + 0)
	RctrlIU1BusbI hw.UInst = 0b110 << (RctrlBase + 0)
	RctrlIU1BusbO hw.UInst = 0b111 << (RctrlBase + 0)

	RctrlIU2BusaI hw.UInst = 0b100 << (RctrlBase + 3)
	RctrlIU2BusaO hw.UInst = 0b101 << (RctrlBase + 3)
	RctrlIU2BusbI hw.UInst = 0b110 << (RctrlBase + 3)
	RctrlIU2BusbO hw.UInst = 0b111 << (RctrlBase + 3)

	RctrlIU3BusaI hw.UInst = 0b100 << (RctrlBase + 6)
	RctrlIU3BusaO hw.UInst = 0b101 << (RctrlBase + 6)
	RctrlIU3BusbI hw.UInst = 0b110 << (RctrlBase + 6)
	RctrlIU3BusbO hw.UInst = 0b111 << (RctrlBase + 6)
)

const maskRctrlIU hw.UInst = 0b111

// RctrlDecodeIU decodes the 3-bit control nibble for the given IU slot.
func RctrlDecodeIU(iu hw.IU, ui hw.UInst) uint16 {
	shift := RctrlBase + uint(hw.IUWidth)*uint(iu)
	return uint16((ui >> shift) & maskRctrlIU)
}

func RctrlDecodeIU1(ui hw.UInst) uint16 { return RctrlDecodeIU(hw.IUOne, ui) }
func RctrlDecodeIU2(ui hw.UInst) uint16 { return RctrlDecodeIU(hw.IUTwo, ui) }
func RctrlDecodeIU3(ui hw.UInst) uint16 { return RctrlDecodeIU(hw.IUThree, ui) }

func RctrlIUIsEn(dec uint16) bool     { return dec&0b100 != 0 }
func RctrlIUIsInput(dec uint16) bool  { return dec&0b001 == 0 }
func RctrlIUIsOutput(dec uint16) bool { return dec&0b001 != 0 }

// RctrlIUBus returns the bus an enabled IU slot reads from or drives.
func RctrlIUBus(dec uint16) hw.Bus {
	if dec&0b010 == 0 {
		return hw.BusA
	}
	return hw.BusB
}

// --- MCTRL (bits [20,26)) ---

const (
	MctrlBase uint = RctrlEnd
	MctrlEnd  uint = MctrlBase + 6
)

const (
	MctrlModeStpfx    hw.UInst = 0b000 << (MctrlBase + 0)
	MctrlModeStpfxFar hw.UInst = 0b010 << (MctrlBase + 0)
	MctrlModeFo       hw.UInst = 0b100 << (MctrlBase + 0)
	MctrlModeFoMi     hw.UInst = 0b101 << (MctrlBase + 0)
	MctrlModeFoMiFar  hw.UInst = 0b001 << (MctrlBase + 0)
	MctrlModeFi       hw.UInst = 0b110 << (MctrlBase + 0)
	MctrlModeFiMo     hw.UInst = 0b111 << (MctrlBase + 0)
	MctrlModeFiMoFar  hw.UInst = 0b011 << (MctrlBase + 0)
)

// MctrlFlagModeNFar: when clear, memory uses the "far" prefix register;
// when set, the "near" one. (STPFX uses the mode bits themselves instead.)
const MctrlFlagModeNFar hw.UInst = 0b100 << (MctrlBase + 0)

const (
	MctrlBusmodeDisable           hw.UInst = 0b000 << (MctrlBase + 3)
	MctrlBusmodeConwBusm          hw.UInst = 0b001 << (MctrlBase + 3)
	MctrlBusmodeConwBusb          hw.UInst = 0b011 << (MctrlBase + 3)
	MctrlBusmodeConwBusbMaybeflip hw.UInst = 0b010 << (MctrlBase + 3)
	MctrlBusmodeConh              hw.UInst = 0b100 << (MctrlBase + 3)
)

// MctrlBusmodeWrite: bit position shared by the write-flavoured busmodes;
// chosen to coincide exactly with MctrlBusmodeConwBusm's own bit pattern.
const MctrlBusmodeWrite hw.UInst = 0b001 << (MctrlBase + 3)

const (
	MaskMctrlMode    hw.UInst = 0b111 << (MctrlBase + 0)
	MaskMctrlBusmode hw.UInst = 0b111 << (MctrlBase + 3)
)

// --- ACTRL (bits [26,32)) ---

const (
	ActrlBase uint = MctrlEnd
	ActrlEnd  uint = ActrlBase + 6
)

const (
	ActrlInputEn  hw.UInst = 1 << (ActrlBase + 0)
	ActrlDataOut  hw.UInst = 1 << (ActrlBase + 1)
	ActrlFlagsOut hw.UInst = 1 << (ActrlBase + 2)
)

const (
	ActrlModeAdd  hw.UInst = 0 << (ActrlBase + 3)
	ActrlModeSub  hw.UInst = 1 << (ActrlBase + 3)
	ActrlModeAnd  hw.UInst = 2 << (ActrlBase + 3)
	ActrlModeOr   hw.UInst = 3 << (ActrlBase + 3)
	ActrlModeXor  hw.UInst = 4 << (ActrlBase + 3)
	ActrlModeLsft hw.UInst = 5 << (ActrlBase + 3)
	ActrlModeRsft hw.UInst = 6 << (ActrlBase + 3)
	ActrlModeTst  hw.UInst = 7 << (ActrlBase + 3)
)

const MaskActrlMode hw.UInst = 0b111 << (ActrlBase + 3)

// DecodeActrlMode extracts the 3-bit ALU opcode from a microcode word.
func DecodeActrlMode(ui hw.UInst) uint8 {
	return uint8((ui & MaskActrlMode) >> (ActrlBase + 3))
}

// UCodeEnd is the total number of live bits in a microcode word; it must fit
// within the storage type and within the 32-bit hardware word.
const UCodeEnd = ActrlEnd

const ucodeTypeBits = 64
const ucodeMaxBits = 32

func init() {
	if UCodeEnd > ucodeTypeBits || UCodeEnd > ucodeMaxBits {
		panic("usig: microcode field layout overflows its storage")
	}
}
