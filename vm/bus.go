package vm

import (
	"fmt"

	"kcpu/hw"
)

// BusState is the four-wire signal state for one clock: every producer
// assigns or connects during clock_outputs/clock_connects, the state is
// frozen, and every consumer reads during clock_inputs. It exists fresh
// each clock; nothing about it survives to the next one.
type BusState struct {
	driven [4]bool
	values [4]hw.Word
	frozen bool
}

func NewBusState() *BusState {
	return &BusState{}
}

// Assign drives bus with word. Panics if the bus is already driven this
// clock or the state is already frozen -- both are hardware-impossible
// (two outputs shorted together, or a write after the clock edge).
func (b *BusState) Assign(bus hw.Bus, word hw.Word) {
	if b.frozen {
		panic(fmt.Sprintf("vm: bus %s assigned after freeze", bus))
	}
	if b.driven[bus] {
		panic(fmt.Sprintf("vm: bus %s driven twice in the same clock", bus))
	}
	b.driven[bus] = true
	b.values[bus] = word
}

// Connect bridges two buses: whichever is undriven is driven from the
// other. A no-op if neither is driven yet (the bridge has nothing to
// carry); panics if both are already driven (two sources fighting over
// one bridge).
func (b *BusState) Connect(bus1, bus2 hw.Bus) {
	switch {
	case b.driven[bus1] && b.driven[bus2]:
		panic(fmt.Sprintf("vm: buses %s and %s both driven, cannot connect", bus1, bus2))
	case b.driven[bus1]:
		b.Assign(bus2, b.values[bus1])
	case b.driven[bus2]:
		b.Assign(bus1, b.values[bus2])
	}
}

// Freeze closes out the clock_outputs/clock_connects phase. One-shot.
func (b *BusState) Freeze() {
	b.frozen = true
}

// Read samples bus after freeze. Panics if read before freeze, or if the
// bus is undriven and has no pull resistor (F, M).
func (b *BusState) Read(bus hw.Bus) hw.Word {
	if !b.frozen {
		panic(fmt.Sprintf("vm: bus %s read before freeze", bus))
	}
	if b.driven[bus] {
		return b.values[bus]
	}
	return bus.PulledValue()
}

// Peek returns a bus's value as driven so far this clock, without requiring
// freeze. The memory stage's clock_connects pass runs between clock_outputs
// and freeze (spec.md 4.1) and needs to see values register/ALU outputs
// already assigned this same clock in order to latch an address or bridge a
// byte; Read can't be used there since nothing is frozen yet.
func (b *BusState) Peek(bus hw.Bus) (hw.Word, bool) {
	return b.values[bus], b.driven[bus]
}
