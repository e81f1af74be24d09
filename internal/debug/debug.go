// Package debug implements the core's inspection surface: read-only memory
// peeks, point-in-time snapshot/restore, and an intent-tracked write path for
// tooling that needs to poke state without silently corrupting it.
//
// None of this sits on the core's hot path — the teacher's instinct to log
// generously with fmt.Printf/log directly inside Tick is deliberately not
// carried forward here, since a per-dot engine would drown in its own
// logging. This package is the seam external tools attach to instead.
package debug

import "gones/internal/console"

// Debugger wraps a Console with inspection and controlled-mutation helpers.
type Debugger struct {
	console *console.Console
	writes  []WriteRecord
}

// New returns a Debugger attached to the given console.
func New(c *console.Console) *Debugger {
	return &Debugger{console: c}
}

// PeekMemory reads a CPU-visible byte without the side effects a real bus
// access at that address would have (register reads that clear flags,
// acknowledge IRQs, or shift controller state). RAM and cartridge space read
// exactly as a live access would; register and open-bus ranges read back
// whatever last landed on the bus rather than re-triggering the access.
func (d *Debugger) PeekMemory(address uint16) uint8 {
	return d.console.Memory.PeekRAM(address)
}

// WriteRecord is one entry in the debugger's write intent log.
type WriteRecord struct {
	Address uint16
	Before  uint8
	After   uint8
}

// WriteMemory pokes internal RAM directly, bypassing register dispatch, and
// records the intent so a reviewer can tell which values a debugger session
// changed versus which the program itself produced. Only internal RAM is
// writable this way — PRG ROM and registers are not valid debugger-write
// targets, so addresses outside $0000-$1FFF are ignored.
func (d *Debugger) WriteMemory(address uint16, value uint8) {
	if address >= 0x2000 {
		return
	}
	before := d.console.Memory.PeekRAM(address)
	d.console.Memory.PokeRAM(address, value)
	d.writes = append(d.writes, WriteRecord{Address: address, Before: before, After: value})
}

// Writes returns every debugger-initiated write recorded so far.
func (d *Debugger) Writes() []WriteRecord {
	return d.writes
}

// Snapshot is a point-in-time capture of every piece of state a debugger
// needs to roll the machine back to (§6/§7): CPU/PPU architectural state plus
// the RAM and OAM arrays that state doesn't otherwise expose.
type Snapshot struct {
	CPU console.CPUState
	PPU console.PPUState
	RAM [0x800]uint8
	OAM [256]uint8
}

// Snapshot captures the console's current state.
func (d *Debugger) Snapshot() Snapshot {
	return Snapshot{
		CPU: d.console.GetCPUState(),
		PPU: d.console.GetPPUState(),
		RAM: d.console.Memory.SnapshotRAM(),
		OAM: d.console.PPU.SnapshotOAM(),
	}
}

// Restore returns the console to a previously captured Snapshot. CPU/PPU
// position (cycle count, scanline, dot, frame count) is informational only
// and is not restored — the core has no facility to rewind its clock, only
// to resume stepping from wherever it currently sits, so Restore limits
// itself to the state that can actually be put back: RAM and OAM.
func (d *Debugger) Restore(snap Snapshot) {
	d.console.Memory.RestoreRAM(snap.RAM)
	d.console.PPU.RestoreOAM(snap.OAM)
}
