package cpu

// The functions in this file build the per-cycle micro-op sequences for
// each addressing mode. Every returned step is one bus cycle; conditional
// extra cycles (page-cross, indexed write/RMW penalties) are expressed by
// prepending an additional step once the real operand bytes are known,
// since those bytes only become available as the bus reads happen.

// addrZeroPage: operand is a single zero-page byte. 1 cycle to resolve.
func (cpu *CPU) addrZeroPage() []func() {
	return []func(){
		func() {
			cpu.operAddr = uint16(cpu.memory.Read(cpu.PC))
			cpu.PC++
		},
	}
}

// addrZeroPageIndexed: zero-page base plus X or Y, wrapping within the page.
// 2 cycles: the index addition happens on a throwaway read of the
// unindexed address, matching real 6502 timing.
func (cpu *CPU) addrZeroPageIndexed(index *uint8) []func() {
	return []func(){
		func() {
			cpu.operAddr = uint16(cpu.memory.Read(cpu.PC))
			cpu.PC++
		},
		func() {
			cpu.memory.Read(cpu.operAddr)
			cpu.operAddr = uint16(uint8(cpu.operAddr) + *index)
		},
	}
}

// addrAbsolute: 16-bit little-endian operand. 2 cycles.
func (cpu *CPU) addrAbsolute() []func() {
	return []func(){
		func() {
			cpu.operLow = cpu.memory.Read(cpu.PC)
			cpu.PC++
		},
		func() {
			hi := cpu.memory.Read(cpu.PC)
			cpu.PC++
			cpu.operAddr = uint16(hi)<<8 | uint16(cpu.operLow)
		},
	}
}

// addrAbsoluteIndexed: base address plus X or Y. If forceExtraCycle is set
// (write and read-modify-write addressing can never early-exit, since the
// address must be correct before any bus access happens) the page-cross
// dummy read always happens; otherwise it only happens when the index
// actually crosses a page boundary (§4.2 page-cross penalty).
func (cpu *CPU) addrAbsoluteIndexed(index *uint8, forceExtraCycle bool) []func() {
	return []func(){
		func() {
			cpu.operLow = cpu.memory.Read(cpu.PC)
			cpu.PC++
		},
		func() {
			hi := cpu.memory.Read(cpu.PC)
			cpu.PC++
			base := uint16(hi)<<8 | uint16(cpu.operLow)
			idx := base + uint16(*index)
			cpu.operAddr = idx
			crossed := (base & 0xFF00) != (idx & 0xFF00)
			if crossed || forceExtraCycle {
				wrong := (base & 0xFF00) | (idx & 0x00FF)
				cpu.prepend(func() { cpu.memory.Read(wrong) })
			}
		},
	}
}

// addrIndexedIndirect: (zp,X) — 4 cycles, no page-cross variance since the
// pointer lookup always stays within zero page.
func (cpu *CPU) addrIndexedIndirect() []func() {
	return []func(){
		func() {
			cpu.operLow = cpu.memory.Read(cpu.PC)
			cpu.PC++
		},
		func() {
			cpu.memory.Read(uint16(cpu.operLow))
			cpu.operLow += cpu.X
		},
		func() {
			cpu.operAddr = uint16(cpu.memory.Read(uint16(cpu.operLow)))
		},
		func() {
			hi := cpu.memory.Read(uint16(cpu.operLow + 1))
			cpu.operAddr |= uint16(hi) << 8
		},
	}
}

// addrIndirectIndexed: (zp),Y — 3 fixed cycles, plus the same forced/
// conditional page-cross dummy read as absolute-indexed.
func (cpu *CPU) addrIndirectIndexed(forceExtraCycle bool) []func() {
	return []func(){
		func() {
			cpu.operLow = cpu.memory.Read(cpu.PC)
			cpu.PC++
		},
		func() {
			cpu.operAddr = uint16(cpu.memory.Read(uint16(cpu.operLow)))
		},
		func() {
			hi := cpu.memory.Read(uint16(cpu.operLow + 1))
			base := uint16(hi)<<8 | cpu.operAddr
			idx := base + uint16(cpu.Y)
			cpu.operAddr = idx
			crossed := (base & 0xFF00) != (idx & 0xFF00)
			if crossed || forceExtraCycle {
				wrong := (base & 0xFF00) | (idx & 0x00FF)
				cpu.prepend(func() { cpu.memory.Read(wrong) })
			}
		},
	}
}
