// Package ppu implements the NES Picture Processing Unit (2C02/2C07) as a
// dot-exact engine: Tick advances exactly one PPU dot, so every register
// side effect, VRAM access, and NMI edge is observable at the same
// granularity real hardware exposes it.
package ppu

import (
	"gones/internal/ledger"
)

const (
	visibleScanlines = 240
	vblankStartLine  = 241
	dotsPerScanline  = 341
)

// Memory is the VRAM surface the PPU core needs: pattern tables, nametables
// and palette RAM, all behind one flat 14-bit address space (§4.3, §6).
type Memory interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// spriteSlot holds one of the eight sprite-fetch results carried from a
// scanline's evaluation window (dots 257-320) into the next scanline's
// visible rendering.
type spriteSlot struct {
	patternLow  uint8
	patternHigh uint8
	attributes  uint8
	x           uint8
	oamIndex    uint8
	isSpriteZero bool
}

// PPU is the rendering core. One Tick call is one PPU dot.
type PPU struct {
	ctrl uint8 // $2000, latched into t/NMI-enable/pattern-table selects
	mask uint8 // $2001, the LIVE mask (§4.3 effective-mask propagation delay)

	statusVBL      bool
	statusSprite0  bool
	statusOverflow bool

	// maskDelay models the hardware's ~3-dot propagation delay between a
	// PPUMASK write and its effect on pixel visibility / sprite-0-hit.
	maskDelay [4]uint8
	maskIndex int

	oamAddr uint8
	oam     [256]uint8

	secondaryOAM [32]uint8
	spriteCount  int
	sprites      [8]spriteSlot

	// next-scanline sprite-fetch staging, built during dots 257-320 of the
	// CURRENT scanline and swapped into `sprites` for the next one.
	pendingSpriteCount int
	pendingSprites     [8]spriteSlot

	v, t uint16
	x    uint8
	w    bool

	memory Memory

	scanline, dot int
	frameCount    uint64
	cycleCount    uint64

	preRenderLine int

	readBuffer        uint8
	lastRegisterWrite uint8

	// background fetch latches, loaded into the shifters at the start of
	// the following 8-dot group (§4.3 background fetch pipeline).
	fetchNTByte        uint8
	fetchAttribute     uint8
	fetchPatternLow    uint8
	fetchPatternHigh   uint8

	bgPatternLow, bgPatternHigh uint16
	bgAttrLow, bgAttrHigh       uint16

	frameBuffer [256 * 240]uint32

	ledger *ledger.Ledger

	nmiLine               func(lineHigh bool)
	cancelPendingNMI      func()
	notifyA12             func(active bool)
	frameCompleteCallback func()
}

// New creates a PPU for the given scanline geometry (NTSC: 262, PAL: 312;
// §4.6, §6). l may be nil in tests that don't exercise NMI/DMA edges.
func New(scanlinesPerFrame int, l *ledger.Ledger) *PPU {
	return &PPU{
		preRenderLine: scanlinesPerFrame - 1,
		ledger:        l,
	}
}

// SetMemory wires the VRAM surface (nametables/palette/pattern tables).
func (p *PPU) SetMemory(m Memory) { p.memory = m }

// SetNMICallbacks wires the CPU's NMI line and the pending-NMI canceller
// used by the $2002-read-race suppression (§8 edge case 6).
func (p *PPU) SetNMICallbacks(lineFunc func(lineHigh bool), cancelFunc func()) {
	p.nmiLine = lineFunc
	p.cancelPendingNMI = cancelFunc
}

// SetA12Callback wires the mapper's A12-edge notification, invoked on every
// PPU nametable/pattern fetch (§4.7 Mapper interface).
func (p *PPU) SetA12Callback(f func(active bool)) { p.notifyA12 = f }

// SetFrameCompleteCallback wires the once-per-frame frame buffer callback.
func (p *PPU) SetFrameCompleteCallback(f func()) { p.frameCompleteCallback = f }

// Reset returns the PPU to its post-power state.
func (p *PPU) Reset() {
	p.ctrl = 0
	p.mask = 0
	p.statusVBL = false
	p.statusSprite0 = false
	p.statusOverflow = false
	p.maskDelay = [4]uint8{}
	p.maskIndex = 0
	p.oamAddr = 0
	p.v, p.t, p.x, p.w = 0, 0, 0, false
	p.scanline = p.preRenderLine
	p.dot = 0
	p.frameCount = 0
	p.cycleCount = 0
	p.readBuffer = 0
	p.lastRegisterWrite = 0
	p.spriteCount = 0
	p.pendingSpriteCount = 0
	for i := range p.oam {
		p.oam[i] = 0
	}
	for i := range p.frameBuffer {
		p.frameBuffer[i] = 0
	}
}

// RenderingEnabled reports whether background or sprite rendering is on,
// using the LIVE mask (the clock needs this, unfiltered, for the odd-frame
// skip decision; §4.6).
func (p *PPU) RenderingEnabled() bool {
	return p.backgroundEnabledLive() || p.spritesEnabledLive()
}

func (p *PPU) backgroundEnabledLive() bool { return p.mask&0x08 != 0 }
func (p *PPU) spritesEnabledLive() bool    { return p.mask&0x10 != 0 }

func (p *PPU) effectiveMask() uint8 {
	return p.maskDelay[(p.maskIndex+1)%4]
}
func (p *PPU) backgroundEnabledEffective() bool { return p.effectiveMask()&0x08 != 0 }
func (p *PPU) spritesEnabledEffective() bool    { return p.effectiveMask()&0x10 != 0 }
func (p *PPU) greyscaleEffective() bool         { return p.effectiveMask()&0x01 != 0 }
func (p *PPU) bgLeftClipEffective() bool        { return p.effectiveMask()&0x02 == 0 }
func (p *PPU) spriteLeftClipEffective() bool    { return p.effectiveMask()&0x04 == 0 }

// Tick advances the PPU by one dot. scanline/dot are supplied by the master
// clock (§4.6); the PPU holds no independent notion of position.
func (p *PPU) Tick(scanline, dot int) {
	p.cycleCount++
	p.scanline, p.dot = scanline, dot

	p.maskDelay[p.maskIndex] = p.mask
	p.maskIndex = (p.maskIndex + 1) % 4

	if scanline == 0 && dot == 0 {
		p.frameCount++
		if p.frameCompleteCallback != nil {
			p.frameCompleteCallback()
		}
	}

	preRender := scanline == p.preRenderLine
	visible := scanline >= 0 && scanline < visibleScanlines

	if preRender && dot == 1 {
		p.statusVBL = false
		p.statusSprite0 = false
		p.statusOverflow = false
		if p.ledger != nil {
			p.ledger.MarkVBlankClear(p.cycleCount)
		}
		p.updateNMILine()
	}

	if scanline == vblankStartLine && dot == 1 {
		p.statusVBL = true
		if p.ledger != nil {
			p.ledger.MarkVBlankSet(p.cycleCount)
		}
		p.updateNMILine()
	}

	if visible || preRender {
		p.tickRendering(dot, preRender)
	}

	if visible && dot >= 1 && dot <= 256 {
		p.renderPixel(dot-1, scanline)
	}
}

// updateNMILine recomputes the combinational NMI output (VBlank flag AND
// NMI-enable) and reports it to the CPU. Because this is recomputed after
// every event that can change either operand (VBlank set/clear, PPUCTRL
// writes), an NMI-enable 0→1 transition while VBlank is already set produces
// a real falling edge here without any special-casing (§4.3 register 0).
func (p *PPU) updateNMILine() {
	if p.nmiLine == nil {
		return
	}
	asserted := p.statusVBL && (p.ctrl&0x80 != 0)
	p.nmiLine(!asserted)
}

// ReadRegister services a CPU read of $2000-$2007 (register = address & 7).
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address & 7 {
	case 0, 1, 3, 5, 6: // write-only registers: open-bus approximation
		return p.lastRegisterWrite
	case 2:
		return p.readStatus()
	case 4:
		return p.readOAMData()
	case 7:
		return p.readData()
	}
	return p.lastRegisterWrite
}

// readStatus implements PPUSTATUS, including the exact-dot NMI-suppression
// race (§8 edge case 6): a read landing on (scanline=241, dot=1) — the same
// dot that just set VBlank this very Tick — reports VBlank clear and cancels
// the NMI edge that Tick already latched.
func (p *PPU) readStatus() uint8 {
	status := p.lastRegisterWrite & 0x1F
	if p.statusVBL {
		status |= 0x80
	}
	if p.statusSprite0 {
		status |= 0x40
	}
	if p.statusOverflow {
		status |= 0x20
	}

	if p.scanline == vblankStartLine && p.dot == 1 {
		status &^= 0x80
		if p.cancelPendingNMI != nil {
			p.cancelPendingNMI()
		}
	}

	p.statusVBL = false
	p.w = false
	return status
}

func (p *PPU) readOAMData() uint8 {
	visible := p.scanline >= 0 && p.scanline < visibleScanlines
	preRender := p.scanline == p.preRenderLine
	if (visible || preRender) && p.dot >= 1 && p.dot <= 64 {
		return 0xFF
	}
	return p.oam[p.oamAddr]
}

func (p *PPU) readData() uint8 {
	var data uint8
	if p.v >= 0x3F00 {
		data = p.memory.Read(p.v)
		p.readBuffer = p.memory.Read(p.v & 0x2FFF)
	} else {
		data = p.readBuffer
		p.readBuffer = p.memory.Read(p.v)
	}
	p.advanceVRAMAddress()
	return data
}

// WriteRegister services a CPU write of $2000-$2007.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	p.lastRegisterWrite = value
	switch address & 7 {
	case 0:
		p.ctrl = value
		p.t = (p.t & 0xF3FF) | ((uint16(value) & 0x03) << 10)
		p.updateNMILine()
	case 1:
		p.mask = value
	case 2:
		// read-only
	case 3:
		p.oamAddr = value
	case 4:
		p.writeOAMData(value)
	case 5:
		p.writeScroll(value)
	case 6:
		p.writeAddr(value)
	case 7:
		p.writeData(value)
	}
}

// writeOAMData reproduces the documented simplification for OAMDATA writes
// during active rendering: the real PPU's evaluation hardware corrupts the
// intended write and instead bumps OAMADDR by 4 (§4.3 register 4).
func (p *PPU) writeOAMData(value uint8) {
	visible := p.scanline >= 0 && p.scanline < visibleScanlines
	preRender := p.scanline == p.preRenderLine
	if p.RenderingEnabled() && (visible || preRender) {
		p.oamAddr += 4
		return
	}
	p.oam[p.oamAddr] = value
	p.oamAddr++
}

func (p *PPU) writeScroll(value uint8) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | (uint16(value) >> 3)
		p.x = value & 0x07
		p.w = true
	} else {
		p.t = (p.t & 0x8FFF) | ((uint16(value) & 0x07) << 12)
		p.t = (p.t & 0xFC1F) | ((uint16(value) & 0xF8) << 2)
		p.w = false
	}
}

func (p *PPU) writeAddr(value uint8) {
	if !p.w {
		p.t = (p.t & 0x80FF) | ((uint16(value) & 0x3F) << 8)
		p.w = true
	} else {
		p.t = (p.t & 0xFF00) | uint16(value)
		p.v = p.t
		p.w = false
	}
}

func (p *PPU) writeData(value uint8) {
	p.memory.Write(p.v, value)
	p.advanceVRAMAddress()
}

func (p *PPU) advanceVRAMAddress() {
	if p.ctrl&0x04 != 0 {
		p.v += 32
	} else {
		p.v += 1
	}
	p.v &= 0x3FFF
}

// OAMDMAWrite is invoked by the DMA arbiter once per sprite-DMA byte
// (dma.OAMWriter contract).
func (p *PPU) OAMDMAWrite(value uint8) {
	p.oam[p.oamAddr] = value
	p.oamAddr++
}

// GetFrameBuffer returns the current 256x240 RGB frame.
func (p *PPU) GetFrameBuffer() [256 * 240]uint32 { return p.frameBuffer }

// GetFrameCount returns the number of completed frames.
func (p *PPU) GetFrameCount() uint64 { return p.frameCount }

// GetScanline and GetDot expose current PPU position for debug tooling.
func (p *PPU) GetScanline() int { return p.scanline }
func (p *PPU) GetDot() int      { return p.dot }

// VBlankFlag reports the raw VBlank status bit without the read side
// effects $2002 carries (clearing the flag, resetting the write toggle,
// the exact-dot NMI-suppression race) — for debuggers and tests that want
// to observe state without disturbing it (§7).
func (p *PPU) VBlankFlag() bool { return p.statusVBL }

// SnapshotOAM copies primary OAM out for a debugger snapshot.
func (p *PPU) SnapshotOAM() [256]uint8 { return p.oam }

// RestoreOAM overwrites primary OAM from a prior SnapshotOAM capture.
func (p *PPU) RestoreOAM(snapshot [256]uint8) { p.oam = snapshot }

func (p *PPU) fetchAddressA12Notify(addr uint16) {
	if p.notifyA12 != nil {
		p.notifyA12(addr&0x1000 != 0)
	}
}

// NES 2C02 NTSC color palette, 64 entries, ARGB with a fully opaque alpha
// byte that NESColorToRGB strips.
var nesColorPalette = [64]uint32{
	0xFF666666, 0xFF002A88, 0xFF1412A7, 0xFF3B00A4, 0xFF5C007E, 0xFF6E0040, 0xFF6C0600, 0xFF561D00,
	0xFF333500, 0xFF0B4800, 0xFF005200, 0xFF004F08, 0xFF00404D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFADADAD, 0xFF155FD9, 0xFF4240FF, 0xFF7527FE, 0xFFA01ACC, 0xFFB71E7B, 0xFFB53120, 0xFF994E00,
	0xFF6B6D00, 0xFF388700, 0xFF0C9300, 0xFF008F32, 0xFF007C8D, 0xFF000000, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFF64B0FF, 0xFF9290FF, 0xFFC676FF, 0xFFF36AFF, 0xFFFE6ECC, 0xFFFE8170, 0xFFEA9E22,
	0xFFBCBE00, 0xFF88D800, 0xFF5CE430, 0xFF45E082, 0xFF48CDDE, 0xFF4F4F4F, 0xFF000000, 0xFF000000,
	0xFFFFFEFF, 0xFFC0DFFF, 0xFFD3D2FF, 0xFFE8C8FF, 0xFFFBC2FF, 0xFFFEC4EA, 0xFFFECCC5, 0xFFF7D8A5,
	0xFFE4E594, 0xFFCFF29B, 0xFFBEFBB3, 0xFFB8F8D8, 0xFFB8F8F8, 0xFF000000, 0xFF000000, 0xFF000000,
}

// NESColorToRGB converts a 6-bit NES color index (masked to $30 under
// greyscale) to a 24-bit RGB value.
func NESColorToRGB(colorIndex uint8) uint32 {
	return nesColorPalette[colorIndex&0x3F] & 0x00FFFFFF
}
