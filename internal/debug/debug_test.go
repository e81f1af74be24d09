package debug

import (
	"testing"

	"gones/internal/clock"
	"gones/internal/console"
)

func newTestDebugger(t *testing.T) *Debugger {
	t.Helper()
	c := console.New(clock.NTSCFrontLoader)
	return New(c)
}

func TestPeekMemoryReadsRAMWithoutSideEffects(t *testing.T) {
	d := newTestDebugger(t)

	d.console.Memory.PokeRAM(0x0010, 0x42)

	if got := d.PeekMemory(0x0010); got != 0x42 {
		t.Fatalf("PeekMemory(0x0010) = 0x%02X, want 0x42", got)
	}
	// RAM is mirrored every 0x800 bytes.
	if got := d.PeekMemory(0x0810); got != 0x42 {
		t.Fatalf("PeekMemory(0x0810) = 0x%02X, want 0x42 (mirrored)", got)
	}
}

func TestWriteMemoryRecordsIntent(t *testing.T) {
	d := newTestDebugger(t)

	d.WriteMemory(0x0020, 0xAA)
	d.WriteMemory(0x0020, 0xBB)

	writes := d.Writes()
	if len(writes) != 2 {
		t.Fatalf("len(Writes()) = %d, want 2", len(writes))
	}
	if writes[0].Before != 0 || writes[0].After != 0xAA {
		t.Fatalf("writes[0] = %+v, want Before=0 After=0xAA", writes[0])
	}
	if writes[1].Before != 0xAA || writes[1].After != 0xBB {
		t.Fatalf("writes[1] = %+v, want Before=0xAA After=0xBB", writes[1])
	}
	if got := d.PeekMemory(0x0020); got != 0xBB {
		t.Fatalf("PeekMemory(0x0020) after writes = 0x%02X, want 0xBB", got)
	}
}

func TestWriteMemoryIgnoresOutsideRAM(t *testing.T) {
	d := newTestDebugger(t)

	before := d.PeekMemory(0x8000)
	d.WriteMemory(0x8000, 0xFF)

	if got := d.PeekMemory(0x8000); got != before {
		t.Fatalf("WriteMemory at 0x8000 mutated cartridge space: got 0x%02X, want unchanged 0x%02X", got, before)
	}
	if len(d.Writes()) != 0 {
		t.Fatalf("len(Writes()) = %d, want 0 for an out-of-range write", len(d.Writes()))
	}
}

func TestSnapshotRestoreRoundTripsRAMAndOAM(t *testing.T) {
	d := newTestDebugger(t)

	d.console.Memory.PokeRAM(0x0001, 0x11)
	snap := d.Snapshot()

	d.console.Memory.PokeRAM(0x0001, 0x99)
	if got := d.PeekMemory(0x0001); got != 0x99 {
		t.Fatalf("PeekMemory(0x0001) after mutation = 0x%02X, want 0x99", got)
	}

	d.Restore(snap)
	if got := d.PeekMemory(0x0001); got != 0x11 {
		t.Fatalf("PeekMemory(0x0001) after Restore = 0x%02X, want 0x11", got)
	}
}
