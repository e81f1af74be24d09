// Package dma implements the DMA arbiter: the sprite-DMA (OAM) transfer
// state machine and its preemption by the APU's sample-fetch (DMC) requests,
// including the NMOS byte-duplication quirk this preemption causes (§4.4).
package dma

import "gones/internal/ledger"

// CPUBus is the narrow read surface the arbiter needs from the Bus to fetch
// sprite-DMA source bytes and sample-DMA fetch bytes. Both kinds of DMA read
// is an ordinary bus read (§4.4 Failure semantics): cartridge/register side
// effects happen exactly as they would for a CPU-issued read.
type CPUBus interface {
	Read(address uint16) uint8
}

// OAMWriter is the PPU's OAMDATA write path (§4.3 register 4), which is how
// sprite-DMA bytes land in OAM — through the same mechanism and OAMADDR
// auto-increment a CPU write to $2004 would use.
type OAMWriter interface {
	OAMDMAWrite(value uint8)
}

// SampleRequest describes one APU sample-fetch (§6 apu_dmc_request).
type SampleRequest struct {
	Address uint16
}

// APU is the narrow surface the arbiter needs from the APU collaborator to
// drive sample-DMA.
type APU interface {
	// DMCRequest returns a pending sample fetch, if the APU wants one this
	// cycle. Only checked when no sample-DMA is already in flight.
	DMCRequest() (SampleRequest, bool)
	// DMCDeliver hands the fetched byte back to the APU's sample buffer.
	DMCDeliver(value uint8)
}

// spriteDMA is the $4014-triggered 256-byte OAM transfer state machine.
type spriteDMA struct {
	active bool
	paused bool

	sourcePage uint8

	// alignRemaining holds the 1 (even start) or 2 (odd start) idle cycles
	// hardware spends before the transfer's first read (§4.4, §6).
	alignRemaining int

	// effectiveCycle runs 0..511: even values are read phases (one source
	// byte per two effective cycles), odd values are the matching write.
	effectiveCycle int
	scratchByte    uint8

	// pausedDuringRead is true if the in-flight preemption interrupted a
	// read phase; only then does resume inject a duplicate write.
	pausedDuringRead bool
	capturedByte     uint8

	// duplicateCount is incremented once per read-phase preemption and
	// drives how many trailing (read,write) pairs get skipped to keep the
	// total OAM writes at exactly 256 despite the injected duplicates
	// (§4.4 Skip-to-keep-256; generalizes the spec's single-preemption
	// "effective cycle 510" threshold to K preemptions as 512-2K).
	duplicateCount int
}

func (s *spriteDMA) duplicationOccurred() bool { return s.duplicateCount > 0 }

// sampleDMA is the APU-driven 4-cycle sample fetch (§4.4 Sample-DMA contract).
type sampleDMA struct {
	active         bool
	address        uint16
	stallRemaining int
}

// Arbiter coordinates sprite-DMA and sample-DMA, enforcing that sample-DMA
// always preempts sprite-DMA (§4.4 Priority) and that the CPU is frozen
// whenever either is in flight (§2, §5 ordering guarantees).
type Arbiter struct {
	ledger *ledger.Ledger
	bus    CPUBus
	oam    OAMWriter
	apu    APU

	sprite spriteDMA
	sample sampleDMA
}

// New creates a DMA arbiter wired to its collaborators.
func New(l *ledger.Ledger, bus CPUBus, oam OAMWriter, apu APU) *Arbiter {
	return &Arbiter{ledger: l, bus: bus, oam: oam, apu: apu}
}

// Reset clears all in-flight DMA state.
func (a *Arbiter) Reset() {
	a.sprite = spriteDMA{}
	a.sample = sampleDMA{}
}

// TriggerSpriteDMA starts a sprite-DMA transfer from the given source page,
// in response to a CPU write to $4014. cpuCycleIsOdd selects the 513- vs
// 514-cycle alignment penalty (§4.4, §6).
func (a *Arbiter) TriggerSpriteDMA(sourcePage uint8, cpuCycleIsOdd bool) {
	if a.sprite.active {
		return
	}
	align := 1
	if cpuCycleIsOdd {
		align = 2
	}
	a.sprite = spriteDMA{
		active:         true,
		sourcePage:     sourcePage,
		alignRemaining: align,
	}
}

// SpriteDMAActive reports whether a sprite-DMA transfer is in flight.
func (a *Arbiter) SpriteDMAActive() bool { return a.sprite.active }

// DuplicationOccurred reports the sprite-DMA's persistent duplication latch
// (§3 DMA state; cleared only when the sprite-DMA finishes).
func (a *Arbiter) DuplicationOccurred() bool { return a.sprite.duplicationOccurred() }

// Tick advances the arbiter by exactly one CPU cycle and reports whether the
// CPU is frozen (must not execute an instruction micro-step) this cycle.
// ppuCycle is the current PPU-cycle timestamp, used only to stamp the ledger.
func (a *Arbiter) Tick(ppuCycle uint64) bool {
	if !a.sample.active {
		if req, ok := a.apu.DMCRequest(); ok {
			a.sample.active = true
			a.sample.address = req.Address
			a.sample.stallRemaining = 4
			a.ledger.MarkDMCActive(ppuCycle)
			if a.sprite.active && !a.sprite.paused {
				a.pauseSprite(ppuCycle)
			}
		}
	}

	if a.sample.active {
		a.sample.stallRemaining--
		if a.sample.stallRemaining == 0 {
			value := a.bus.Read(a.sample.address)
			a.apu.DMCDeliver(value)
			a.sample.active = false
			a.ledger.MarkDMCInactive(ppuCycle)
			if a.sprite.active && a.sprite.paused {
				a.resumeSprite(ppuCycle)
			}
		}
		return true
	}

	if a.sprite.active {
		a.stepSprite()
		return true
	}

	return false
}

// pauseSprite is called on the cycle edge where sample-DMA preempts an
// in-flight sprite-DMA (§4.4 Priority, §4.5 functional edge detection).
func (a *Arbiter) pauseSprite(ppuCycle uint64) {
	s := &a.sprite
	s.paused = true
	a.ledger.MarkSpriteDMAPause(ppuCycle)

	inReadPhase := s.alignRemaining == 0 && s.effectiveCycle < 512 && s.effectiveCycle%2 == 0
	s.pausedDuringRead = inReadPhase
	if inReadPhase {
		offset := uint8(s.effectiveCycle / 2)
		addr := uint16(s.sourcePage)<<8 | uint16(offset)
		s.capturedByte = a.bus.Read(addr)
		s.duplicateCount++
	}
}

// resumeSprite is called the cycle after the preempting sample-DMA
// completes (§4.4 Resume with byte duplication).
func (a *Arbiter) resumeSprite(ppuCycle uint64) {
	s := &a.sprite
	s.paused = false
	a.ledger.MarkSpriteDMAResume(ppuCycle)
	if s.pausedDuringRead {
		a.oam.OAMDMAWrite(s.capturedByte)
	}
}

// stepSprite performs one effective cycle of the sprite-DMA's read/write
// pipeline, applying the skip-to-keep-256 rule once duplicates have occurred
// (§4.4 Skip-to-keep-256).
func (a *Arbiter) stepSprite() {
	s := &a.sprite
	if s.alignRemaining > 0 {
		s.alignRemaining--
		return
	}

	skipThreshold := 512 - 2*s.duplicateCount
	if s.duplicateCount > 0 && s.effectiveCycle >= skipThreshold {
		// No bus access this cycle: preserves the 256-write total despite
		// the duplicate injected writes performed on resume.
	} else if s.effectiveCycle%2 == 0 {
		offset := uint8(s.effectiveCycle / 2)
		addr := uint16(s.sourcePage)<<8 | uint16(offset)
		s.scratchByte = a.bus.Read(addr)
	} else {
		a.oam.OAMDMAWrite(s.scratchByte)
	}

	s.effectiveCycle++
	if s.effectiveCycle >= 512 {
		a.sprite = spriteDMA{}
	}
}
