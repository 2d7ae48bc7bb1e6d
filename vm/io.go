package vm

import (
	"kcpu/hw"
	"kcpu/usig"
)

// ioState is the I/O controller's active-command state machine (spec.md
// 4.7): Idle -> Active (counting down its device's latency) -> Presenting
// (the read result is on Bus::B) -> Idle. A write has no result to
// present, so it drops straight from Active to Idle.
type ioState int

const (
	ioIdle ioState = iota
	ioActive
	ioPresenting
)

type ioOp int

const (
	ioRead ioOp = iota
	ioWrite
)

// Device is a port-addressed peripheral. Read/Write return the number of
// clocks the operation occupies the controller for (0 = completes on the
// following clock, same as every other latency).
type Device interface {
	Ports() []hw.Word
	Read(port hw.Word) (result hw.Word, cycles int)
	Write(port hw.Word, data hw.Word) (cycles int)
}

// IOController is the port -> device map plus the one in-flight command's
// state. Only one command can be outstanding at a time, matching the
// single-threaded, cooperatively-stepped core (spec.md 5).
type IOController struct {
	devices map[hw.Word]Device
	pic     *PIC

	state  ioState
	op     ioOp
	port   hw.Word
	cycles int
	result hw.Word
}

func NewIOController() *IOController {
	return &IOController{devices: map[hw.Word]Device{}}
}

// Register claims every port d.Ports() lists for d. A *PIC is additionally
// remembered so the control unit can query/accept interrupts through it.
func (io *IOController) Register(d Device) {
	for _, p := range d.Ports() {
		io.devices[p] = d
	}
	if pic, ok := d.(*PIC); ok {
		io.pic = pic
	}
}

func (io *IOController) registered(port hw.Word) bool {
	_, ok := io.devices[port]
	return ok
}

// Busy reports whether an io-rw step issued this instruction must keep
// IoWait asserted. Presenting still counts as busy: the result needs to sit
// on Bus::B for the clock RegFile.ClockInputs samples it, one clock after
// the command itself finished, before Ctl's FT/JM transition is allowed to
// fire.
func (io *IOController) Busy() bool {
	return io.state != ioIdle
}

// ClockOutputs drives the latched read result onto Bus::B while Presenting.
func (io *IOController) ClockOutputs(ui hw.UInst, bus *BusState) {
	if io.state == ioPresenting && usig.IsGctrlNrmIoReadwrite(ui) {
		bus.Assign(hw.BusB, io.result)
	}
}

// ClockInputs dispatches a new command out of Idle. A command issued while
// already Active is assumed (per spec.md 4.7) to agree with the one in
// flight -- the microcode re-presents the same ui every clock IoWait holds
// UC still, so the port/operation can't actually change mid-command.
func (io *IOController) ClockInputs(ui hw.UInst, bus *BusState) {
	if !usig.IsGctrlNrmIoReadwrite(ui) || io.state != ioIdle {
		return
	}
	port := bus.Read(hw.BusA)
	write := usig.GctrlCregIsInput(ui)
	io.port = port
	d, ok := io.devices[port]

	if write {
		data := bus.Read(hw.BusB)
		cycles := 0
		if ok {
			cycles = d.Write(port, data)
		}
		io.op, io.cycles, io.state = ioWrite, cycles, ioActive
		return
	}

	result, cycles := hw.Word(0), 0
	if ok {
		result, cycles = d.Read(port)
	}
	io.op, io.result, io.cycles, io.state = ioRead, result, cycles, ioActive
}

// Offclock advances the state machine by one clock and reports whether a
// command completed this clock (the signal that releases Ctl.IoWait).
func (io *IOController) Offclock() bool {
	switch io.state {
	case ioActive:
		if io.cycles > 0 {
			io.cycles--
		}
		if io.cycles > 0 {
			return false
		}
		if io.op == ioRead {
			io.state = ioPresenting
			return false
		}
		io.state = ioIdle
		return true
	case ioPresenting:
		io.state = ioIdle
		return true
	default:
		return false
	}
}

// Pending reports the PIC's PINT/PNMI lines, or false/false if no PIC was
// registered.
func (io *IOController) Pending() (pint, pnmi bool) {
	if io.pic == nil {
		return false, false
	}
	return io.pic.pint(), io.pic.pnmi()
}

// AcceptInterrupt signals the registered PIC's AINT rising edge.
func (io *IOController) AcceptInterrupt() {
	if io.pic != nil {
		io.pic.accept()
	}
}

// --- Bundled devices (spec.md 4.7) ---

// picCmd encodes PIC writes as (cmd<<14)|payload: the PIC only needs three
// commands, so the two top bits are spent on the command selector rather
// than adding a second port. The payload is 14 bits wide, so a SET_MASK or
// SET_PEND write can only set lines 0-13; lines 14 and 15 are written as 0.
const (
	picCmdEOI     hw.Word = 0
	picCmdSetMask hw.Word = 1
	picCmdSetPend hw.Word = 2

	picCmdShift = 14
	picCmdMask  = 0b11
)

// PIC is the programmable interrupt controller at port 0x01.
type PIC struct {
	Mask    hw.Word
	Pending hw.Word
	Serving hw.Word
}

func NewPIC() *PIC { return &PIC{} }

func (p *PIC) Ports() []hw.Word { return []hw.Word{0x01} }

func (p *PIC) Read(port hw.Word) (hw.Word, int) {
	return p.Pending, 0
}

func (p *PIC) Write(port hw.Word, data hw.Word) int {
	cmd := (data >> picCmdShift) & picCmdMask
	payload := data &^ (hw.Word(picCmdMask) << picCmdShift)
	switch cmd {
	case picCmdEOI:
		p.Serving &= p.Serving - 1 // clear lowest set bit
	case picCmdSetMask:
		p.Mask = payload
	case picCmdSetPend:
		p.Pending = payload
	}
	return 0
}

// pint reports whether any unmasked pending line should interrupt: some
// pending bit survives the mask (NMI's bit 0 always does) and nothing is
// currently being serviced.
func (p *PIC) pint() bool {
	return (p.Pending&^p.Mask|p.Pending&1) != 0 && p.Serving == 0
}

// pnmi reports the non-maskable line specifically (bit 0, always unmasked).
func (p *PIC) pnmi() bool {
	return p.Pending&1 != 0 && p.Serving&1 == 0
}

// accept moves the lowest unmasked pending bit (NMI's bit 0 always counts
// as unmasked) into serving and clears it from pending.
func (p *PIC) accept() {
	eligible := p.Pending &^ p.Mask
	if p.Pending&1 != 0 {
		eligible |= 1
	}
	if eligible == 0 {
		return
	}
	lowest := eligible & (-eligible)
	p.Serving |= lowest
	p.Pending &^= lowest
}

// UID is the read-only identification register at port 0xA0.
type UID struct{}

func (UID) Ports() []hw.Word                    { return []hw.Word{0xA0} }
func (UID) Read(hw.Word) (hw.Word, int)          { return 0xBEEF, 0 }
func (UID) Write(hw.Word, hw.Word) int           { return 0 }

// videoWidth, videoHeight, videoPlanes describe the 160x120, two-word-deep
// VRAM the Video device exposes.
const (
	videoWidth  = 160
	videoHeight = 120
	videoPlanes = 2
	videoWords  = videoWidth * videoHeight * videoPlanes
)

// videoCmdStreamReset is the stream-reset command. Its precise semantics
// (buffer flip vs address reset) aren't finalized upstream; per that open
// question this just records the request for a future integration to act
// on, rather than guessing at buffer-flip behavior.
const videoCmdStreamReset hw.Word = 1

// Video is the command/addr-hi/addr-lo/data/stream register block at ports
// 0xC0-0xC4, backing VRAM.
type Video struct {
	vram [videoWords]hw.Word

	addrHi, addrLo   hw.Word
	stream           uint32
	streamResetCount uint64
}

func NewVideo() *Video { return &Video{} }

func (v *Video) Ports() []hw.Word {
	return []hw.Word{0xC0, 0xC1, 0xC2, 0xC3, 0xC4}
}

func (v *Video) addr() uint32 {
	return (uint32(v.addrHi)<<16 | uint32(v.addrLo)) % videoWords
}

func (v *Video) Read(port hw.Word) (hw.Word, int) {
	switch port {
	case 0xC1:
		return v.addrHi, 0
	case 0xC2:
		return v.addrLo, 0
	case 0xC3:
		return v.vram[v.addr()], 0
	default:
		return 0, 0
	}
}

func (v *Video) Write(port hw.Word, data hw.Word) int {
	switch port {
	case 0xC0:
		if data == videoCmdStreamReset {
			v.streamResetCount++
		}
	case 0xC1:
		v.addrHi = data
	case 0xC2:
		v.addrLo = data
	case 0xC3:
		v.vram[v.addr()] = data
	case 0xC4:
		v.vram[v.stream%videoWords] = data
		v.stream++
	}
	return 0
}

// Probe is the self-discovery device at port 0x00: a write latches a
// target port, and a read reports 1 if that port is claimed, else 0.
type Probe struct {
	io     *IOController
	target hw.Word
}

func NewProbe(io *IOController) *Probe { return &Probe{io: io} }

func (p *Probe) Ports() []hw.Word { return []hw.Word{0x00} }

func (p *Probe) Read(hw.Word) (hw.Word, int) {
	if p.io.registered(p.target) {
		return 1, 0
	}
	return 0, 0
}

func (p *Probe) Write(_ hw.Word, data hw.Word) int {
	p.target = data
	return 0
}
