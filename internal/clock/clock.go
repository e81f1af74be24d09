// Package clock implements the master clock: the single step generator that
// drives the core. Every other component reacts to the stream of Steps it
// produces; nothing else owns a notion of "now".
package clock

// Variant selects the console's scanline geometry and odd-frame-skip rule
// (§6 Variant selection; §4.6).
type Variant uint8

const (
	// NTSCFrontLoader, NTSCTopLoader, Famicom and FamicomAV all share the
	// NTSC 262-scanline geometry and odd-frame dot skip.
	NTSCFrontLoader Variant = iota
	NTSCTopLoader
	Famicom
	FamicomAV
	PAL
)

// ScanlinesPerFrame returns the variant's scanline count (§4.3, §6).
func (v Variant) ScanlinesPerFrame() int {
	if v == PAL {
		return 312
	}
	return 262
}

// SkipsOddFrame reports whether this variant skips pre-render dot 340 on odd
// frames when rendering is enabled. PAL does not (§1 Non-goals: PAL timing
// parity is not modeled beyond scanline count, so PAL never skips).
func (v Variant) SkipsOddFrame() bool {
	return v != PAL
}

const dotsPerScanline = 341

// preRenderScanline is the last scanline index for a given variant.
func (v Variant) preRenderScanline() int {
	return v.ScanlinesPerFrame() - 1
}

// Step is one master-clock tick: a PPU dot position, plus whether the
// CPU-or-DMA cycle path and the APU frame counter advance this step (§2, §4.6).
type Step struct {
	Scanline int
	Dot      int
	CPUTick  bool
	APUTick  bool
	SkipSlot bool
}

// Clock generates the deterministic stream of timing Steps described in
// §4.6. It owns nothing but position counters; it has no knowledge of CPU,
// PPU or DMA state beyond the rendering-enabled flag needed to decide the
// odd-frame skip.
type Clock struct {
	variant Variant

	scanline int
	dot      int
	oddFrame bool

	// dotsSinceCPU counts dots since the last CPU/APU tick; the CPU and the
	// APU frame counter both advance every third PPU dot (§8: "the CPU runs
	// at ⅓ PPU on NTSC"). The NES's real APU frame sequencer free-runs on
	// its own divider independent of CPU reset alignment, but this core
	// ticks both off the same 1-in-3 schedule — see DESIGN.md.
	dotsSinceCPU int
}

// New creates a master clock for the given console variant, starting at the
// pre-render scanline, dot 0 (matches hardware power-on/reset position).
func New(variant Variant) *Clock {
	return &Clock{
		variant:  variant,
		scanline: variant.preRenderScanline(),
		dot:      0,
	}
}

// Reset returns the clock to its initial position without changing variant.
func (c *Clock) Reset() {
	c.scanline = c.variant.preRenderScanline()
	c.dot = 0
	c.oddFrame = false
	c.dotsSinceCPU = 0
}

// Scanline returns the current scanline.
func (c *Clock) Scanline() int { return c.scanline }

// Dot returns the current dot within the scanline.
func (c *Clock) Dot() int { return c.dot }

// OddFrame reports the current frame's parity.
func (c *Clock) OddFrame() bool { return c.oddFrame }

// Tick produces the next Step and advances clock position by one dot (or two
// on the odd-frame skip slot, per §4.6). renderingEnabled must reflect the
// PPU's live (not delayed) mask, since the skip only applies while rendering.
func (c *Clock) Tick(renderingEnabled bool) Step {
	step := Step{Scanline: c.scanline, Dot: c.dot}

	c.dotsSinceCPU++
	if c.dotsSinceCPU == 3 {
		c.dotsSinceCPU = 0
		step.CPUTick = true
		step.APUTick = true
	}

	preRender := c.variant.preRenderScanline()
	skipThisSlot := c.variant.SkipsOddFrame() && c.oddFrame && renderingEnabled &&
		c.scanline == preRender && c.dot == dotsPerScanline-1

	if skipThisSlot {
		step.SkipSlot = true
		c.advanceDot()
	}
	c.advanceDot()

	return step
}

// advanceDot moves the dot/scanline/frame counters forward by exactly one dot.
func (c *Clock) advanceDot() {
	c.dot++
	if c.dot >= dotsPerScanline {
		c.dot = 0
		c.scanline++
		if c.scanline > c.variant.preRenderScanline() {
			c.scanline = 0
			c.oddFrame = !c.oddFrame
		}
	}
}
