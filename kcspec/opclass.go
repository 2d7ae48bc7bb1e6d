package kcspec

import "kcpu/hw"

// itFlag shifts an itype-level flag bit into position; icFlag does the
// same for an icode-level flag, and icFlagIu3 for a flag folded into the
// IU3 sub-field of icode.
func itFlag(bits hw.Word) hw.Word  { return bits << ItypeShift }
func icFlag(bits hw.Word) hw.Word  { return bits << 0 }
func icFlagIu3(bits hw.Word) hw.Word { return bits << hw.IUWidth }

// itype ranges (4-bit AAAA field of the packed opcode).
const (
	ItCtl        Segment = 0b0000
	ItStk        Segment = 0b0001
	itMemClose   Segment = 0b0010 // use ItMem + ItflagMemFar instead
	itMemFar     Segment = 0b0011 // use ItMem + ItflagMemFar instead
	itJmpClose   Segment = 0b0100 // use ItJmp + ItflagJmpLd instead
	itJmpLd      Segment = 0b0101 // use ItJmp + ItflagJmpLd instead
	ItAlu1       Segment = 0b0110 // ALU insts with an NF (noflags) variant
	ItAlu2       Segment = 0b0111 // other ALU insts

	ItIu3AllGrp1 Segment = 0b1000
	ItIu3AllGrp2 Segment = 0b1001
	ItIu3AllGrp3 Segment = 0b1010
)

// Fake itypes/icodes implementing flags.
const (
	ItMem = itMemClose
	ItJmp = itJmpClose
)

var (
	ItflagMemFar   = Segment(itFlag(0b0001))
	ItflagJmpLd    = Segment(itFlag(0b0001))
	IcflagAlu1Nofgs = Segment(icFlag(0b1000))
	IcflagMemIu3Far = Segment(icFlagIu3(0b1))
	IcflagAdd3Iu3NF = Segment(icFlagIu3(0b1))
)

// The full named opclass table. Every opcode produced by any of these
// (via ToOpcodes) must appear at exactly one InstDef — see instdefs.go.
var (
	// CTL/MISC (12/16)
	INop    = NoIu3(ItCtl, 0b0000)
	IDoInt  = NoIu3(ItCtl, 0b0001)

	IMov  = NoIu3(ItCtl, 0b0011)
	ILcfg = NoIu3(ItCtl, 0b0100)
	ILfg  = NoIu3(ItCtl, 0b0101)
	ILihp = NoIu3(ItCtl, 0b0110)

	IIor = NoIu3(ItCtl, 0b1000)
	IIow = NoIu3(ItCtl, 0b1001)

	IDi = NoIu3(ItCtl, 0b1100)
	IEi = NoIu3(ItCtl, 0b1101)

	IHlt  = NoIu3(ItCtl, 0b1110)
	IAbrt = NoIu3(ItCtl, 0b1111)

	// STK (12/16)
	IPush    = NoIu3(ItStk, 0b0000)
	IPop     = NoIu3(ItStk, 0b0001)
	IPushX2  = NoIu3(ItStk, 0b0010)
	IPopX2   = NoIu3(ItStk, 0b0011)
	IPushFg  = NoIu3(ItStk, 0b0100)
	IPopFg   = NoIu3(ItStk, 0b0101)
	ICall    = NoIu3(ItStk, 0b0110)
	IRet     = NoIu3(ItStk, 0b0111)

	IIret    = NoIu3(ItStk, 0b1000)
	IEnter1  = NoIu3(ItStk, 0b1001)
	IEnterFr2 = NoIu3(ItStk, 0b1010)
	ILeave1  = NoIu3(ItStk, 0b1011)

	// ALU1, NF-variant possible via IcflagAlu1Nofgs (8/8)
	IAdd2 = NoIu3(ItAlu1, 0b0000)
	ISub  = NoIu3(ItAlu1, 0b0001)
	IBsub = NoIu3(ItAlu1, 0b0010)
	IAnd  = NoIu3(ItAlu1, 0b0011)
	IOr   = NoIu3(ItAlu1, 0b0100)
	IXor  = NoIu3(ItAlu1, 0b0101)
	ILsft = NoIu3(ItAlu1, 0b0110)
	IRsft = NoIu3(ItAlu1, 0b0111)

	// ALU2 (2/16)
	ITst = NoIu3(ItAlu2, 0b0000)
	ICmp = NoIu3(ItAlu2, 0b0001)

	// MEM (9/16)
	IStpfx = NoIu3(ItMem, 0b0001)
	ILdw   = NoIu3(ItMem, 0b0011)
	ILdbl  = NoIu3(ItMem, 0b0100)
	ILdbh  = NoIu3(ItMem, 0b0110)
	ILdblz = NoIu3(ItMem, 0b0101)
	ILdbhz = NoIu3(ItMem, 0b0111)
	IStw   = NoIu3(ItMem, 0b1011)
	IStbl  = NoIu3(ItMem, 0b1100)
	IStbh  = NoIu3(ItMem, 0b1110)

	// JMP (12/16)
	IJc  = NoIu3(ItJmp, 0b0000)
	IJnc = NoIu3(ItJmp, 0b0100)
	IJz  = NoIu3(ItJmp, 0b0001)
	IJnz = NoIu3(ItJmp, 0b0101)
	IJs  = NoIu3(ItJmp, 0b0010)
	IJns = NoIu3(ItJmp, 0b0110)
	IJo  = NoIu3(ItJmp, 0b0011)
	IJno = NoIu3(ItJmp, 0b0111)

	IJmp  = NoIu3(ItJmp, 0b1000)
	ILjmp = NoIu3(ItJmp, 0b1001)

	IJmpDi = NoIu3(ItJmp, 0b1110)
	IJmpEi = NoIu3(ItJmp, 0b1111)

	// IU3_ALL_GRP1 (2/2) — I_ADD3NF reached via IAdd3 + IcflagAdd3Iu3NF.
	IAdd3 = AllIu3(ItIu3AllGrp1, 0b0)

	// IU3_ALL_GRP2 (2/2) — far form reached via ILdwo + IcflagMemIu3Far.
	ILdwo = AllIu3(ItIu3AllGrp2, 0b0)

	// IU3_ALL_GRP3 (2/2) — far form reached via IStwo + IcflagMemIu3Far.
	IStwo = AllIu3(ItIu3AllGrp3, 0b0)
)
