package console

import (
	"bytes"
	"testing"

	"gones/internal/cartridge"
	"gones/internal/clock"
)

// buildNROMImage returns a minimal one-bank NROM iNES image whose reset
// vector points at an infinite JMP-to-self loop at $8000.
func buildNROMImage(t *testing.T) []byte {
	t.Helper()

	header := []byte{'N', 'E', 'S', 0x1A, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}

	prg := make([]uint8, 16384)
	prg[0] = 0x4C // JMP absolute
	prg[1] = 0x00
	prg[2] = 0x80
	// Reset vector at $FFFC -> $8000
	prg[len(prg)-4] = 0x00
	prg[len(prg)-3] = 0x80
	// NMI vector at $FFFA -> $8000 (unused here, but must be valid)
	prg[len(prg)-6] = 0x00
	prg[len(prg)-5] = 0x80
	// IRQ/BRK vector at $FFFE -> $8000
	prg[len(prg)-2] = 0x00
	prg[len(prg)-1] = 0x80

	return append(header, prg...)
}

func newTestConsole(t *testing.T) *Console {
	t.Helper()
	c := New(clock.NTSCFrontLoader)
	cart, err := cartridge.LoadFromReader(bytes.NewReader(buildNROMImage(t)))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	c.LoadCartridge(cart)
	return c
}

func TestNewConsoleStartsAtZero(t *testing.T) {
	c := New(clock.NTSCFrontLoader)
	if got := c.GetCycleCount(); got != 0 {
		t.Fatalf("GetCycleCount() = %d, want 0", got)
	}
	if got := c.GetFrameCount(); got != 0 {
		t.Fatalf("GetFrameCount() = %d, want 0", got)
	}
}

func TestLoadCartridgeResetsToVector(t *testing.T) {
	c := newTestConsole(t)
	if got := c.GetCPUState().PC; got != 0x8000 {
		t.Fatalf("PC after reset = 0x%04X, want 0x8000", got)
	}
}

func TestStepAdvancesExactlyOneCPUCycle(t *testing.T) {
	c := newTestConsole(t)
	start := c.GetCycleCount()
	c.Step()
	if got := c.GetCycleCount(); got != start+1 {
		t.Fatalf("GetCycleCount() after Step() = %d, want %d", got, start+1)
	}
}

func TestTickAdvancesOneMasterDot(t *testing.T) {
	c := newTestConsole(t)
	startDot := c.totalDots
	c.Tick()
	if c.totalDots != startDot+1 {
		t.Fatalf("totalDots after Tick() = %d, want %d", c.totalDots, startDot+1)
	}
}

func TestRunCyclesReachesTarget(t *testing.T) {
	c := newTestConsole(t)
	start := c.GetCycleCount()
	c.RunCycles(100)
	if got := c.GetCycleCount(); got < start+100 {
		t.Fatalf("GetCycleCount() after RunCycles(100) = %d, want >= %d", got, start+100)
	}
}

func TestGetPPUStateDoesNotMutateVBlank(t *testing.T) {
	c := newTestConsole(t)
	before := c.GetPPUState().VBlankFlag
	// Reading state twice must not itself clear VBlank, unlike a real $2002 read.
	after := c.GetPPUState().VBlankFlag
	if before != after {
		t.Fatalf("GetPPUState() mutated VBlank flag as a side effect: before=%v after=%v", before, after)
	}
}

func TestResetZeroesCounters(t *testing.T) {
	c := newTestConsole(t)
	c.RunCycles(50)
	c.Reset()
	if got := c.GetCycleCount(); got != 0 {
		t.Fatalf("GetCycleCount() after Reset() = %d, want 0", got)
	}
	if c.totalDots != 0 {
		t.Fatalf("totalDots after Reset() = %d, want 0", c.totalDots)
	}
}
