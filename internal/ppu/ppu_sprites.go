package ppu

// evaluateSprites scans primary OAM for sprites covering the NEXT scanline,
// building up to 8 entries in secondaryOAM and setting the overflow flag on
// a 9th match. Real hardware spreads this across dots 65-256 and has a
// well-known overflow-flag bug (§9); this core runs the simplified "found 9"
// rule in one batch at dot 65, which spec explicitly allows (§4.3 Sprite
// evaluation and rendering).
func (p *PPU) evaluateSprites() {
	targetScanline := p.scanline + 1
	spriteHeight := 8
	if p.ctrl&0x20 != 0 {
		spriteHeight = 16
	}

	p.pendingSpriteCount = 0
	found := 0
	for i := 0; i < 64; i++ {
		base := i * 4
		y := int(p.oam[base])
		if targetScanline < y+1 || targetScanline >= y+1+spriteHeight {
			continue
		}
		if found < 8 {
			secIdx := found * 4
			p.secondaryOAM[secIdx] = p.oam[base]
			p.secondaryOAM[secIdx+1] = p.oam[base+1]
			p.secondaryOAM[secIdx+2] = p.oam[base+2]
			p.secondaryOAM[secIdx+3] = p.oam[base+3]
			p.pendingSprites[found].oamIndex = uint8(i)
			p.pendingSprites[found].isSpriteZero = i == 0
			found++
		} else {
			p.statusOverflow = true
			break
		}
	}
	p.pendingSpriteCount = found
}

// loadSpritesForNextScanline performs the sprite pattern fetches that real
// hardware spreads across dots 257-320: for each of up to 8 sprites found by
// evaluateSprites, fetch its pattern bytes (applying flips) and latch
// attributes/X so the next scanline's visible dots can render them (§4.3
// Sprite evaluation and rendering).
func (p *PPU) loadSpritesForNextScanline() {
	targetScanline := p.scanline + 1
	spriteHeight := 8
	if p.ctrl&0x20 != 0 {
		spriteHeight = 16
	}

	for i := 0; i < p.pendingSpriteCount; i++ {
		secIdx := i * 4
		y := int(p.secondaryOAM[secIdx])
		tile := p.secondaryOAM[secIdx+1]
		attr := p.secondaryOAM[secIdx+2]
		x := p.secondaryOAM[secIdx+3]

		row := targetScanline - (y + 1)
		if attr&0x80 != 0 {
			row = spriteHeight - 1 - row
		}

		var base uint16
		if spriteHeight == 16 {
			base = uint16(tile&0x01) * 0x1000
			tile &= 0xFE
			if row >= 8 {
				tile++
				row -= 8
			}
		} else {
			base = p.spritePatternTableBase()
		}

		addr := base + uint16(tile)*16 + uint16(row)
		low := p.memory.Read(addr)
		high := p.memory.Read(addr + 8)
		p.fetchAddressA12Notify(addr)

		if attr&0x40 != 0 {
			low = reverseBits(low)
			high = reverseBits(high)
		}

		p.pendingSprites[i].patternLow = low
		p.pendingSprites[i].patternHigh = high
		p.pendingSprites[i].attributes = attr
		p.pendingSprites[i].x = x
	}

	p.spriteCount = p.pendingSpriteCount
	p.sprites = p.pendingSprites
}

func (p *PPU) spritePatternTableBase() uint16 {
	if p.ctrl&0x08 != 0 {
		return 0x1000
	}
	return 0x0000
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

// spritePixelAt finds the highest-priority sprite covering pixelX, returning
// its color index, palette, background-priority flag and whether it is the
// original sprite 0 (for sprite-0-hit detection).
func (p *PPU) spritePixelAt(pixelX int) (colorIndex, paletteIndex uint8, behindBackground, isZero, opaque bool) {
	for i := 0; i < p.spriteCount; i++ {
		s := &p.sprites[i]
		offset := pixelX - int(s.x)
		if offset < 0 || offset >= 8 {
			continue
		}
		bit := uint(7 - offset)
		bit0 := (s.patternLow >> bit) & 1
		bit1 := (s.patternHigh >> bit) & 1
		ci := (bit1 << 1) | bit0
		if ci == 0 {
			continue
		}
		return ci, s.attributes & 0x03, s.attributes&0x20 != 0, s.isSpriteZero, true
	}
	return 0, 0, false, false, false
}

// renderPixel composes the background and sprite pixels for (pixelX,
// scanline) and writes the result into the frame buffer (§4.3 Palette
// lookup, Sprite-0 hit).
func (p *PPU) renderPixel(pixelX, scanline int) {
	bgEnabled := p.backgroundEnabledEffective()
	spritesEnabled := p.spritesEnabledEffective()

	var bgColor, bgPalette uint8
	bgOpaque := false
	if bgEnabled {
		bgColor, bgPalette = p.backgroundPixel()
		if pixelX < 8 && p.bgLeftClipEffective() {
			bgColor = 0
		}
		bgOpaque = bgColor != 0
	}

	var spColor, spPalette uint8
	var spBehind, spIsZero, spOpaque bool
	if spritesEnabled {
		spColor, spPalette, spBehind, spIsZero, spOpaque = p.spritePixelAt(pixelX)
		if pixelX < 8 && p.spriteLeftClipEffective() {
			spOpaque = false
		}
	}

	if bgOpaque && spOpaque && spIsZero && !p.statusSprite0 &&
		pixelX >= 2 && pixelX < 255 {
		p.statusSprite0 = true
	}

	var paletteAddr uint16
	switch {
	case !bgOpaque && !spOpaque:
		paletteAddr = 0x3F00
	case !bgOpaque:
		paletteAddr = 0x3F10 + uint16(spPalette)*4 + uint16(spColor)
	case !spOpaque:
		paletteAddr = 0x3F00 + uint16(bgPalette)*4 + uint16(bgColor)
	case spBehind:
		paletteAddr = 0x3F00 + uint16(bgPalette)*4 + uint16(bgColor)
	default:
		paletteAddr = 0x3F10 + uint16(spPalette)*4 + uint16(spColor)
	}

	nesColor := p.memory.Read(paletteAddr)
	if p.greyscaleEffective() {
		nesColor &= 0x30
	}
	p.frameBuffer[scanline*256+pixelX] = NESColorToRGB(nesColor)
}
