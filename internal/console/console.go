// Package console wires the CPU, PPU, APU, DMA arbiter, interaction ledger
// and master clock into a single master-tick loop: one call to Step advances
// the whole machine by exactly one CPU cycle's worth of work, in the fixed
// order the core's ordering guarantees require (§5).
package console

import (
	"gones/internal/apu"
	"gones/internal/cartridge"
	"gones/internal/clock"
	"gones/internal/cpu"
	"gones/internal/dma"
	"gones/internal/input"
	"gones/internal/ledger"
	"gones/internal/memory"
	"gones/internal/ppu"
)

// Cartridge is the full mapper-aware surface the console needs: the narrow
// PRG/CHR access memory.Memory already requires, plus the A12-notify and
// IRQ-pending hooks the PPU and CPU collaborate through (§4.7).
type Cartridge interface {
	memory.CartridgeInterface
	GetMirrorMode() cartridge.MirrorMode
	NotifyA12(active bool)
	IRQPending() bool
}

// Console is the top-level NES machine: every collaborator plus the master
// clock that drives them (§2 System overview).
type Console struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.Memory
	Input  *input.InputState

	cartridge Cartridge
	ledger    *ledger.Ledger
	dmaArb    *dma.Arbiter
	clock     *clock.Clock
	variant   clock.Variant

	frameCount uint64
	totalDots  uint64
}

// New creates a console for the given variant with no cartridge loaded.
// LoadCartridge must be called before Step produces meaningful output.
func New(variant clock.Variant) *Console {
	c := &Console{
		ledger:  ledger.New(),
		clock:   clock.New(variant),
		variant: variant,
		Input:   input.NewInputState(),
	}

	c.APU = apu.New()
	c.PPU = ppu.New(variant.ScanlinesPerFrame(), c.ledger)
	c.Memory = memory.New(c.PPU, c.APU, nil)
	c.Memory.SetInputSystem(c.Input)
	c.CPU = cpu.New(c.Memory)
	c.dmaArb = dma.New(c.ledger, c.Memory, c.PPU, c.APU)

	c.PPU.SetNMICallbacks(c.CPU.SetNMILine, c.CPU.CancelPendingNMI)
	c.PPU.SetFrameCompleteCallback(c.handleFrameComplete)
	c.Memory.SetDMACallback(c.triggerSpriteDMA)

	c.Reset()
	return c
}

// Reset returns every collaborator and the master clock to power-on state.
func (c *Console) Reset() {
	c.CPU.Reset()
	c.PPU.Reset()
	c.APU.Reset()
	c.Input.Reset()
	c.ledger.ResetAll()
	c.dmaArb.Reset()
	c.clock.Reset()
	c.frameCount = 0
	c.totalDots = 0
}

// LoadCartridge installs a cartridge, rebuilding the PPU's VRAM/palette
// memory with the cartridge's mirroring mode, and resets the machine.
func (c *Console) LoadCartridge(cart Cartridge) {
	c.cartridge = cart
	c.Memory = memory.New(c.PPU, c.APU, cart)
	c.Memory.SetInputSystem(c.Input)
	c.Memory.SetDMACallback(c.triggerSpriteDMA)
	c.CPU = cpu.New(c.Memory)
	c.dmaArb = dma.New(c.ledger, c.Memory, c.PPU, c.APU)

	var mirrorMode memory.MirrorMode
	switch cart.GetMirrorMode() {
	case cartridge.MirrorVertical:
		mirrorMode = memory.MirrorVertical
	case cartridge.MirrorSingleScreen0:
		mirrorMode = memory.MirrorSingleScreen0
	case cartridge.MirrorSingleScreen1:
		mirrorMode = memory.MirrorSingleScreen1
	case cartridge.MirrorFourScreen:
		mirrorMode = memory.MirrorFourScreen
	default:
		mirrorMode = memory.MirrorHorizontal
	}
	ppuMemory := memory.NewPPUMemory(cart, mirrorMode)
	c.PPU.SetMemory(ppuMemory)
	c.PPU.SetA12Callback(cart.NotifyA12)

	c.PPU.SetNMICallbacks(c.CPU.SetNMILine, c.CPU.CancelPendingNMI)
	c.PPU.SetFrameCompleteCallback(c.handleFrameComplete)

	c.CPU.Reset()
}

// handleFrameComplete mirrors the PPU's own frame counter onto the console
// (§4.3, frame buffer callback).
func (c *Console) handleFrameComplete() {
	c.frameCount = c.PPU.GetFrameCount()
}

// triggerSpriteDMA is the Memory's $4014-write callback: it hands the
// transfer off to the DMA arbiter rather than performing it immediately,
// so sample-DMA preemption and the byte-duplication quirk apply (§4.4).
func (c *Console) triggerSpriteDMA(sourcePage uint8) {
	c.dmaArb.TriggerSpriteDMA(sourcePage, c.CPU.Cycles()%2 == 1)
}

// syncIRQLine ORs every collaborator's IRQ output onto the CPU's level-
// sensitive IRQ input (§4.7): the mapper's own IRQ circuit and the APU's
// frame-counter/DMC IRQ flags.
func (c *Console) syncIRQLine() {
	mapperIRQ := false
	if c.cartridge != nil {
		mapperIRQ = c.cartridge.IRQPending()
	}
	c.CPU.SetIRQLine(mapperIRQ || c.APU.IRQPending())
}

// Tick advances the machine by exactly one master-clock step: one PPU dot,
// an optional APU-frame tick, and an optional CPU-or-DMA cycle, in that
// fixed order (§5 Ordering guarantees).
func (c *Console) Tick() {
	step := c.clock.Tick(c.PPU.RenderingEnabled())
	c.totalDots++

	c.PPU.Tick(step.Scanline, step.Dot)

	if step.APUTick {
		c.APU.Step()
	}

	if step.CPUTick {
		frozen := c.dmaArb.Tick(c.totalDots)
		if !frozen {
			c.syncIRQLine()
			c.CPU.Tick()
		}
	}
}

// Step runs the console for exactly one CPU cycle's worth of master ticks
// (three PPU dots on NTSC, plus the extra skipped dot on the odd-frame
// slot), returning once the CPU (or a DMA cycle standing in for it) has
// advanced by one cycle.
func (c *Console) Step() {
	startCycles := c.CPU.Cycles()
	for c.CPU.Cycles() == startCycles {
		c.Tick()
	}
}

// RunCycles runs the console until the CPU cycle counter has advanced by
// at least the given number of cycles.
func (c *Console) RunCycles(cycles uint64) {
	target := c.CPU.Cycles() + cycles
	for c.CPU.Cycles() < target {
		c.Step()
	}
}

// RunFrames runs the console for the given number of complete PPU frames.
func (c *Console) RunFrames(frames int) {
	target := c.frameCount + uint64(frames)
	for c.frameCount < target {
		c.Step()
	}
}

// GetCycleCount returns the CPU cycle counter.
func (c *Console) GetCycleCount() uint64 { return c.CPU.Cycles() }

// GetFrameCount returns the number of frames the PPU has completed.
func (c *Console) GetFrameCount() uint64 { return c.frameCount }

// GetFrameBuffer returns the current 256x240 RGBA frame buffer.
func (c *Console) GetFrameBuffer() []uint32 {
	fb := c.PPU.GetFrameBuffer()
	return fb[:]
}

// GetAudioSamples returns the APU's buffered audio samples.
func (c *Console) GetAudioSamples() []float32 {
	return c.APU.GetSamples()
}

// SetAudioSampleRate sets the APU's target output sample rate.
func (c *Console) SetAudioSampleRate(rate int) {
	c.APU.SetSampleRate(rate)
}

// GetInputState returns the input collaborator for direct controller access.
func (c *Console) GetInputState() *input.InputState {
	return c.Input
}

// SetControllerButtons sets all button states for controller 1 or 2.
func (c *Console) SetControllerButtons(controller int, buttons [8]bool) {
	switch controller {
	case 0, 1:
		c.Input.SetButtons1(buttons)
	case 2:
		c.Input.SetButtons2(buttons)
	}
}

// IsDMAInProgress reports whether sprite-DMA or sample-DMA currently holds
// the CPU.
func (c *Console) IsDMAInProgress() bool {
	return c.dmaArb.SpriteDMAActive()
}

// CPUState is a point-in-time snapshot of the 6502 core, for debuggers and
// tests (§7).
type CPUState struct {
	PC      uint16
	A, X, Y uint8
	SP      uint8
	Cycles  uint64
	Flags   CPUFlags
}

// CPUFlags mirrors the 6502 status-flag bits.
type CPUFlags struct {
	N, V, B, D, I, Z, C bool
}

// GetCPUState snapshots the CPU's architectural state.
func (c *Console) GetCPUState() CPUState {
	return CPUState{
		PC:     c.CPU.PC,
		A:      c.CPU.A,
		X:      c.CPU.X,
		Y:      c.CPU.Y,
		SP:     c.CPU.SP,
		Cycles: c.CPU.Cycles(),
		Flags: CPUFlags{
			N: c.CPU.N,
			V: c.CPU.V,
			B: c.CPU.B,
			D: c.CPU.D,
			I: c.CPU.I,
			Z: c.CPU.Z,
			C: c.CPU.C,
		},
	}
}

// PPUState is a point-in-time snapshot of the PPU's scanline position and
// rendering flags, for debuggers and tests (§7).
type PPUState struct {
	Scanline    int
	Dot         int
	FrameCount  uint64
	VBlankFlag  bool
	RenderingOn bool
}

// GetPPUState snapshots the PPU's current position and status without the
// read side effects a real $2002 access would have.
func (c *Console) GetPPUState() PPUState {
	return PPUState{
		Scanline:    c.PPU.GetScanline(),
		Dot:         c.PPU.GetDot(),
		FrameCount:  c.PPU.GetFrameCount(),
		VBlankFlag:  c.PPU.VBlankFlag(),
		RenderingOn: c.PPU.RenderingEnabled(),
	}
}
