package clock

import "testing"

func TestNewStartsAtPreRenderDotZero(t *testing.T) {
	c := New(NTSCFrontLoader)
	if got := c.Scanline(); got != 261 {
		t.Fatalf("Scanline() = %d, want 261 (NTSC pre-render)", got)
	}
	if got := c.Dot(); got != 0 {
		t.Fatalf("Dot() = %d, want 0", got)
	}
}

func TestPALHas312Scanlines(t *testing.T) {
	c := New(PAL)
	if got := c.Scanline(); got != 311 {
		t.Fatalf("Scanline() = %d, want 311 (PAL pre-render)", got)
	}
}

func TestTickAdvancesDotByOne(t *testing.T) {
	c := New(NTSCFrontLoader)
	step := c.Tick(false)
	if step.Scanline != 261 || step.Dot != 0 {
		t.Fatalf("first Step = %+v, want Scanline=261 Dot=0", step)
	}
	if got := c.Dot(); got != 1 {
		t.Fatalf("Dot() after one Tick = %d, want 1", got)
	}
}

func TestCPUAndAPUTickEveryThirdDot(t *testing.T) {
	c := New(NTSCFrontLoader)
	var cpuTicks, apuTicks int
	for i := 0; i < 9; i++ {
		step := c.Tick(false)
		if step.CPUTick {
			cpuTicks++
		}
		if step.APUTick {
			apuTicks++
		}
	}
	if cpuTicks != 3 {
		t.Fatalf("cpuTicks over 9 dots = %d, want 3", cpuTicks)
	}
	if apuTicks != 3 {
		t.Fatalf("apuTicks over 9 dots = %d, want 3", apuTicks)
	}
}

func TestScanlineWrapsAfter341Dots(t *testing.T) {
	c := New(NTSCFrontLoader)
	for i := 0; i < dotsPerScanline; i++ {
		c.Tick(false)
	}
	if got := c.Scanline(); got != 0 {
		t.Fatalf("Scanline() after 341 ticks = %d, want 0", got)
	}
	if got := c.Dot(); got != 0 {
		t.Fatalf("Dot() after 341 ticks = %d, want 0", got)
	}
}

func TestOddFrameSkipsLastPreRenderDotWhenRendering(t *testing.T) {
	c := New(NTSCFrontLoader)
	framesElapsed := 0
	var sawSkip bool
	// Run for a couple of frames, checking for the skip slot at dot 340 of
	// the pre-render scanline on the odd one.
	for i := 0; i < dotsPerScanline*1000 && framesElapsed < 2; i++ {
		step := c.Tick(true)
		if step.SkipSlot {
			sawSkip = true
		}
		if c.Scanline() == 0 && c.Dot() == 0 {
			framesElapsed++
		}
	}
	if !sawSkip {
		t.Fatal("expected an odd-frame skip slot within the first two frames with rendering enabled")
	}
}

func TestNoOddFrameSkipWhenRenderingDisabled(t *testing.T) {
	c := New(NTSCFrontLoader)
	for i := 0; i < dotsPerScanline*1000; i++ {
		step := c.Tick(false)
		if step.SkipSlot {
			t.Fatal("SkipSlot set while rendering disabled, want never")
		}
	}
}

func TestPALNeverSkipsOddFrame(t *testing.T) {
	c := New(PAL)
	for i := 0; i < dotsPerScanline*1000; i++ {
		step := c.Tick(true)
		if step.SkipSlot {
			t.Fatal("SkipSlot set on PAL, want never (PAL timing parity is out of scope)")
		}
	}
}

func TestResetReturnsToInitialPosition(t *testing.T) {
	c := New(NTSCFrontLoader)
	for i := 0; i < 1000; i++ {
		c.Tick(true)
	}
	c.Reset()
	if got := c.Scanline(); got != 261 {
		t.Fatalf("Scanline() after Reset() = %d, want 261", got)
	}
	if got := c.Dot(); got != 0 {
		t.Fatalf("Dot() after Reset() = %d, want 0", got)
	}
	if c.OddFrame() {
		t.Fatal("OddFrame() after Reset() = true, want false")
	}
}
