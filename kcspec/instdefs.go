package kcspec

import (
	"kcpu/hw"
	"kcpu/usig"
)

// Word/byte argument kind shorthands used throughout the table below.
var (
	wordAllow = NewWordArgKind(Allow)
	wordNever = NewWordArgKind(Never)
	byteLoAllow = NewByteArgKind(hw.Lo, Allow)
	byteHiAllow = NewByteArgKind(hw.Hi, Allow)
)

// ioStep builds the io-rw bits of an IO read (dir = GctrlCregO, i.e. 0) or
// write (dir = GctrlCregI) step; the I/O controller treats the input
// direction as a write. IU1 supplies the port number (a register or a
// constant), IU2 carries the data register.
func ioStep(dir hw.UInst) hw.UInst {
	return usig.GctrlNrmIoReadwrite | dir
}

// aluProgram builds the standard 2-step ALU microcode: step 0 drives both
// operands onto the bus pair and latches the ALU; step 1 drives the result
// (and, unless nf is set, the flags) back out and writes it to the
// destination register, then ends the instruction.
func aluProgram(mode hw.UInst, nf bool) []hw.UInst {
	step0 := usig.RctrlIU2BusaO | usig.RctrlIU1BusbO | usig.ActrlInputEn | mode
	step1 := usig.ActrlDataOut | usig.RctrlIU1BusaI | usig.GctrlFtExit
	if !nf {
		step1 |= usig.ActrlFlagsOut
	}
	return []hw.UInst{step0, step1}
}

// alu3Program is aluProgram's 3-argument sibling: IU3 (overlapped into the
// opcode via AllIu3) supplies one operand instead of IU1/IU2 sharing that
// role, and the destination is IU1.
func alu3Program(mode hw.UInst, nf bool) []hw.UInst {
	step0 := usig.RctrlIU2BusaO | usig.RctrlIU3BusbO | usig.ActrlInputEn | mode
	step1 := usig.ActrlDataOut | usig.RctrlIU1BusaI | usig.GctrlFtExit
	if !nf {
		step1 |= usig.ActrlFlagsOut
	}
	return []hw.UInst{step0, step1}
}

// testProgram builds the 2-step ALU microcode for a flags-only comparison
// (TST, CMP): both operands reach the ALU exactly as in aluProgram, but the
// result is never written back to either register.
func testProgram(mode hw.UInst) []hw.UInst {
	step0 := usig.RctrlIU2BusaO | usig.RctrlIU1BusbO | usig.ActrlInputEn | mode
	step1 := usig.ActrlDataOut | usig.ActrlFlagsOut | usig.GctrlFtExit
	return []hw.UInst{step0, step1}
}

// memLoadProgram loads a word (or byte half) from the addressed bank into
// IU1: step 0 latches the address from IU2 and starts the bank read; step
// 1 drives the result word (or its byte half, address-flip handled by the
// VM's memory stage per spec.md §4.6) into IU1 and ends the instruction.
// ActionMctrlBusmodeX gates step 0's MCTRL_MODE field so it is only
// interpreted on the clock that actually addresses memory: without it,
// every other step whose MCTRL_MODE field is left at its zero default
// would alias MCTRL_MODE_STPFX and clobber the near prefix register.
func memLoadProgram(far bool) []hw.UInst {
	mode := usig.MctrlModeFiMo
	if far {
		mode = usig.MctrlModeFiMoFar
	}
	step0 := usig.ActionMctrlBusmodeX | usig.RctrlIU2BusaO | mode | usig.MctrlBusmodeConwBusm
	step1 := usig.MctrlBusmodeConwBusbMaybeflip | usig.RctrlIU1BusbI | usig.GctrlFtExit
	return []hw.UInst{step0, step1}
}

func memStoreProgram(far bool) []hw.UInst {
	mode := usig.MctrlModeFoMi
	if far {
		mode = usig.MctrlModeFoMiFar
	}
	step0 := usig.ActionMctrlBusmodeX | usig.RctrlIU2BusaO | usig.RctrlIU1BusbO | mode | usig.MctrlBusmodeConh
	step1 := hw.UInst(usig.GctrlFtExit)
	return []hw.UInst{step0, step1}
}

func stpfxProgram(far bool) []hw.UInst {
	mode := usig.MctrlModeStpfx
	if far {
		mode = usig.MctrlModeStpfxFar
	}
	return []hw.UInst{usig.ActionMctrlBusmodeX | usig.RctrlIU1BusbO | mode | usig.GctrlFtExit}
}

// jmpProgram builds the microcode for an unconditional or conditional jump:
// it drives IU1's target word onto bus B, applies the fetch-transition/
// jumpmode code, and ends the instruction (JM_YES/JCOND_* both re-arm the
// fetch cycle themselves by setting Instmask on a taken branch; a
// not-taken conditional simply falls through to FT_EXIT).
func jmpProgram(cond hw.UInst, extra hw.UInst) []hw.UInst {
	return []hw.UInst{usig.RctrlIU1BusbO | cond | extra}
}

// stkPushProgram pushes IU1's value: RSP is pre-decremented off-clock and
// IU3 is overridden to SP for this step (CommandRctrlRspEarlyDecIu3Rsp),
// then the value is stored at [SP]. ActionMctrlBusmodeX engages the MCTRL
// mode/busmode fields for the one clock that actually writes memory; it
// shares CTRL_ACTION's bits with nothing else this step uses, so it's
// layered on top of the already-asserted CTRL_COMMAND override.
func stkPushProgram() []hw.UInst {
	step0 := usig.ActionMctrlBusmodeX | usig.CommandRctrlRspEarlyDecIu3Rsp | usig.RctrlIU1BusbO | usig.RctrlIU3BusaO | usig.MctrlModeFoMi | usig.MctrlBusmodeConh
	step1 := hw.UInst(usig.GctrlFtExit)
	return []hw.UInst{step0, step1}
}

// stkPopProgram reads [SP] into IU1, then post-increments RSP. IU3 is
// overridden to SP via the GCTRL normal-mode iu3-override-rsp selector
// (not the CTRL_COMMAND one, which also pre-decrements -- POP must read
// before adjusting SP, not after).
func stkPopProgram() []hw.UInst {
	step0 := usig.ActionMctrlBusmodeX | usig.GctrlNrmIu3OverrideOSelectRspIUnused | usig.GctrlCregO | usig.RctrlIU3BusaO | usig.MctrlModeFiMo | usig.MctrlBusmodeConwBusm
	step1 := usig.MctrlBusmodeConwBusbMaybeflip | usig.RctrlIU1BusbI | usig.CommandRctrlRspEarlyInc | usig.GctrlFtExit
	return []hw.UInst{step0, step1}
}

func ctlCregProgram(mode hw.UInst, dir hw.UInst, iu hw.UInst) []hw.UInst {
	return []hw.UInst{usig.ActionGctrlUseAlt | mode | dir | iu | usig.GctrlFtExit}
}

// opcodeNOP and opcodeDoInt are the reserved positions (0 and 1) the fixed
// CTL InstDefs occupy, per spec.md §4.1: "Fetch/load microcode is fixed and shared."
const (
	opcodeNOP    = 0
	opcodeDoInt  = 1
)

// InstDefs is the full declarative instruction table. Every InstDef's
// OpClass.ToOpcodes() must land on disjoint opcodes; BuildUCodeROM enforces
// this at startup.
var InstDefs = buildInstDefs()

func buildInstDefs() []InstDef {
	defs := []InstDef{
		// --- CTL/MISC ---
		// NOP and _DO_INT are reserved opcodes: the control unit's Instmask
		// handling (vm/ctl.go, Ctl.fetch/Ctl.dispatchInt) drives fetch and
		// interrupt entry directly rather than through the generic
		// ROM-driven interpreter, since that sequence never varies per
		// opcode. These entries exist only so the two opcodes are claimed
		// and no real instruction can collide with them.
		With0("NOP", INop, []hw.UInst{usig.GctrlFtExit}),
		With0("_DO_INT", IDoInt, []hw.UInst{usig.GctrlFtExit}),
		With2("MOV", IMov, wordAllow, wordAllow, []hw.UInst{
			usig.RctrlIU2BusaO | usig.RctrlIU1BusaI | usig.GctrlFtExit,
		}),
		With1("LCFG", ILcfg, wordAllow, ctlCregProgram(usig.GctrlAltPIe, usig.GctrlCregI, usig.RctrlIU1BusaO)),
		With1("LFG", ILfg, wordAllow, ctlCregProgram(usig.GctrlAltCregFg, usig.GctrlCregI, usig.RctrlIU1BusaO)),
		With1("LIHP", ILihp, wordAllow, ctlCregProgram(usig.GctrlAltCregIhpr, usig.GctrlCregI, usig.RctrlIU1BusaO)),
		With2("IOR", IIor, wordAllow, wordAllow, []hw.UInst{ioStep(0) | usig.RctrlIU1BusaO | usig.RctrlIU2BusbI | usig.GctrlFtExit}),
		With2("IOW", IIow, wordAllow, wordAllow, []hw.UInst{ioStep(usig.GctrlCregI) | usig.RctrlIU1BusaO | usig.RctrlIU2BusbO | usig.GctrlFtExit}),
		With0("DI", IDi, []hw.UInst{usig.ActionGctrlUseAlt | usig.GctrlAltPIe | usig.GctrlFtExit}),
		With0("EI", IEi, []hw.UInst{usig.ActionGctrlUseAlt | usig.GctrlAltPIe | usig.GctrlCregI | usig.GctrlFtExit}),
		WithSingle0("HLT", IHlt, usig.GctrlJmHalt),
		WithSingle0("ABRT", IAbrt, usig.GctrlJmAbrt),

		// --- STK ---
		With1("PUSH", IPush, wordAllow, stkPushProgram()),
		With1("POP", IPop, wordAllow, stkPopProgram()),
		With2("PUSHx2", IPushX2, wordAllow, wordAllow, stkPushProgram()),
		With2("POPx2", IPopX2, wordAllow, wordAllow, stkPopProgram()),
		With0("PUSHFG", IPushFg, stkPushProgram()),
		With0("POPFG", IPopFg, stkPopProgram()),
		With1("CALL", ICall, wordAllow, jmpProgram(usig.GctrlJmYes, usig.CommandRctrlRspEarlyDecIu3Rsp)),
		With0("RET", IRet, stkPopProgram()),
		With0("IRET", IIret, stkPopProgram()),
		With1("ENTER1", IEnter1, wordAllow, stkPushProgram()),
		With2("ENTERFR2", IEnterFr2, wordAllow, wordAllow, stkPushProgram()),
		With1("LEAVE1", ILeave1, wordAllow, stkPopProgram()),

		// --- ALU1 (2 args: dst op= src; NF variant reached via IcflagAlu1Nofgs) ---
		With2("ADD2", IAdd2, wordAllow, wordAllow, aluProgram(usig.ActrlModeAdd, false)),
		With2("ADD2NF", IAdd2.AddFlag(IcflagAlu1Nofgs), wordAllow, wordAllow, aluProgram(usig.ActrlModeAdd, true)),
		With2("SUB", ISub, wordAllow, wordAllow, aluProgram(usig.ActrlModeSub, false)),
		With2("SUBNF", ISub.AddFlag(IcflagAlu1Nofgs), wordAllow, wordAllow, aluProgram(usig.ActrlModeSub, true)),
		// BSUB is SUB with the operands swapped onto the ALU: dst = src - dst.
		With2("BSUB", IBsub, wordAllow, wordAllow, []hw.UInst{
			usig.RctrlIU1BusaO | usig.RctrlIU2BusbO | usig.ActrlInputEn | usig.ActrlModeSub,
			usig.ActrlDataOut | usig.ActrlFlagsOut | usig.RctrlIU1BusaI | usig.GctrlFtExit,
		}),
		With2("BSUBNF", IBsub.AddFlag(IcflagAlu1Nofgs), wordAllow, wordAllow, []hw.UInst{
			usig.RctrlIU1BusaO | usig.RctrlIU2BusbO | usig.ActrlInputEn | usig.ActrlModeSub,
			usig.ActrlDataOut | usig.RctrlIU1BusaI | usig.GctrlFtExit,
		}),
		With2("AND", IAnd, wordAllow, wordAllow, aluProgram(usig.ActrlModeAnd, false)),
		With2("ANDNF", IAnd.AddFlag(IcflagAlu1Nofgs), wordAllow, wordAllow, aluProgram(usig.ActrlModeAnd, true)),
		With2("OR", IOr, wordAllow, wordAllow, aluProgram(usig.ActrlModeOr, false)),
		With2("ORNF", IOr.AddFlag(IcflagAlu1Nofgs), wordAllow, wordAllow, aluProgram(usig.ActrlModeOr, true)),
		With2("XOR", IXor, wordAllow, wordAllow, aluProgram(usig.ActrlModeXor, false)),
		With2("XORNF", IXor.AddFlag(IcflagAlu1Nofgs), wordAllow, wordAllow, aluProgram(usig.ActrlModeXor, true)),
		With2("LSFT", ILsft, wordAllow, wordAllow, aluProgram(usig.ActrlModeLsft, false)),
		With2("LSFTNF", ILsft.AddFlag(IcflagAlu1Nofgs), wordAllow, wordAllow, aluProgram(usig.ActrlModeLsft, true)),
		With2("RSFT", IRsft, wordAllow, wordAllow, aluProgram(usig.ActrlModeRsft, false)),
		With2("RSFTNF", IRsft.AddFlag(IcflagAlu1Nofgs), wordAllow, wordAllow, aluProgram(usig.ActrlModeRsft, true)),

		// --- ALU2 (flags-only: no writeback to either operand) ---
		With2("TST", ITst, wordAllow, wordAllow, testProgram(usig.ActrlModeTst)),
		With2("CMP", ICmp, wordAllow, wordAllow, testProgram(usig.ActrlModeSub)),

		// --- MEM ---
		With1("STPFX", IStpfx, wordAllow, stpfxProgram(false)),
		With2("LDW", ILdw, wordAllow, wordAllow, memLoadProgram(false)),
		With2("LDBL", ILdbl, byteLoAllow, wordAllow, memLoadProgram(false)),
		With2("LDBH", ILdbh, byteHiAllow, wordAllow, memLoadProgram(false)),
		With2("LDBLZ", ILdblz, byteLoAllow, wordAllow, memLoadProgram(false)),
		With2("LDBHZ", ILdbhz, byteHiAllow, wordAllow, memLoadProgram(false)),
		With2("STW", IStw, wordAllow, wordAllow, memStoreProgram(false)),
		With2("STBL", IStbl, byteLoAllow, wordAllow, memStoreProgram(false)),
		With2("STBH", IStbh, byteHiAllow, wordAllow, memStoreProgram(false)),

		// --- JMP ---
		With1("JC", IJc, wordAllow, jmpProgram(usig.GctrlJcondCarry, 0)),
		With1("JNC", IJnc, wordAllow, jmpProgram(usig.GctrlJcondCarry|usig.GctrlJmInvertcond, 0)),
		With1("JZ", IJz, wordAllow, jmpProgram(usig.GctrlJcondNZero|usig.GctrlJmInvertcond, 0)),
		With1("JNZ", IJnz, wordAllow, jmpProgram(usig.GctrlJcondNZero, 0)),
		With1("JS", IJs, wordAllow, jmpProgram(usig.GctrlJcondSign, 0)),
		With1("JNS", IJns, wordAllow, jmpProgram(usig.GctrlJcondSign|usig.GctrlJmInvertcond, 0)),
		With1("JO", IJo, wordAllow, jmpProgram(usig.GctrlJcondNOvflw|usig.GctrlJmInvertcond, 0)),
		With1("JNO", IJno, wordAllow, jmpProgram(usig.GctrlJcondNOvflw, 0)),
		With1("JMP", IJmp, wordAllow, jmpProgram(usig.GctrlJmYes, 0)),
		With1("LJMP", ILjmp, wordAllow, jmpProgram(usig.GctrlJmYes, 0)),
		With1("JMP_DI", IJmpDi, wordAllow, jmpProgram(usig.GctrlJmYes, 0)),
		With1("JMP_EI", IJmpEi, wordAllow, jmpProgram(usig.GctrlJmYes, 0)),

		// --- IU3_ALL groups (3 args: IU3 folds into the opcode itself, but
		// is still an assembler-visible register operand; NF/far forms
		// reached via AddFlag) ---
		With3("ADD3", IAdd3, wordAllow, wordAllow, wordAllow, alu3Program(usig.ActrlModeAdd, false)),
		With3("ADD3NF", IAdd3.AddFlag(IcflagAdd3Iu3NF), wordAllow, wordAllow, wordAllow, alu3Program(usig.ActrlModeAdd, true)),
		With3("LDWO", ILdwo, wordAllow, wordAllow, wordAllow, memLoadProgram(false)),
		With3("LDWO_FAR", ILdwo.AddFlag(IcflagMemIu3Far), wordAllow, wordAllow, wordAllow, memLoadProgram(true)),
		With3("STWO", IStwo, wordAllow, wordAllow, wordAllow, memStoreProgram(false)),
		With3("STWO_FAR", IStwo.AddFlag(IcflagMemIu3Far), wordAllow, wordAllow, wordAllow, memStoreProgram(true)),
	}
	return defs
}
