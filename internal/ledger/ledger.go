// Package ledger implements the interaction ledger: the single piece of shared
// mutable state between PPU-side edge producers and CPU/DMA-side edge
// consumers. It holds nothing but monotone timestamps, in PPU cycles.
package ledger

// Ledger is a plain-data record of the most recent time each tracked event
// happened. Activity is derived, never stored directly: an event is "active"
// when its most-recent-on timestamp exceeds its most-recent-off timestamp.
// This keeps edge detection race-free under the single-threaded core model
// (§4.5, §9 "functional edge detection").
type Ledger struct {
	VBlankSet   uint64
	VBlankClear uint64

	DMCActive   uint64
	DMCInactive uint64

	SpriteDMAPause  uint64
	SpriteDMAResume uint64
}

// New returns a zeroed ledger. At time zero no event has ever fired, so every
// Active* query below correctly reports false (set == clear == 0).
func New() *Ledger {
	return &Ledger{}
}

// ResetAll clears every timestamp. The only mutation method besides the
// per-event setters below.
func (l *Ledger) ResetAll() {
	*l = Ledger{}
}

// MarkVBlankSet records the PPU cycle at which the VBlank flag was set.
func (l *Ledger) MarkVBlankSet(cycle uint64) { l.VBlankSet = cycle }

// MarkVBlankClear records the PPU cycle at which the VBlank flag was cleared.
func (l *Ledger) MarkVBlankClear(cycle uint64) { l.VBlankClear = cycle }

// VBlankActive reports whether VBlank is currently asserted.
func (l *Ledger) VBlankActive() bool { return l.VBlankSet > l.VBlankClear }

// MarkDMCActive records the PPU cycle at which a sample-DMA fetch began.
func (l *Ledger) MarkDMCActive(cycle uint64) { l.DMCActive = cycle }

// MarkDMCInactive records the PPU cycle at which a sample-DMA fetch ended.
func (l *Ledger) MarkDMCInactive(cycle uint64) { l.DMCInactive = cycle }

// DMCIsActive reports whether a sample-DMA fetch is currently in progress.
// The DMA arbiter records these timestamps but decides when to pause
// sprite-DMA from the APU's fetch request, not from this query.
func (l *Ledger) DMCIsActive() bool { return l.DMCActive > l.DMCInactive }

// MarkSpriteDMAPause records the PPU cycle at which sprite-DMA paused for a
// sample-DMA preemption.
func (l *Ledger) MarkSpriteDMAPause(cycle uint64) { l.SpriteDMAPause = cycle }

// MarkSpriteDMAResume records the PPU cycle at which sprite-DMA resumed.
func (l *Ledger) MarkSpriteDMAResume(cycle uint64) { l.SpriteDMAResume = cycle }

// SpriteDMAPaused reports whether sprite-DMA is currently paused.
func (l *Ledger) SpriteDMAPaused() bool { return l.SpriteDMAPause > l.SpriteDMAResume }
