package cpu

// stepsFor builds the complete micro-op queue for one opcode, given the
// instruction's mnemonic and addressing mode. This is called exactly once
// per instruction, right after the opcode fetch.
func (cpu *CPU) stepsFor(inst *Instruction) []func() {
	if inst == nil {
		return cpu.jamSteps()
	}
	switch inst.Name {
	case "LDA":
		return cpu.readSteps(inst.Mode, cpu.lda)
	case "LDX":
		return cpu.readSteps(inst.Mode, cpu.ldx)
	case "LDY":
		return cpu.readSteps(inst.Mode, cpu.ldy)
	case "ADC":
		return cpu.readSteps(inst.Mode, cpu.adc)
	case "SBC":
		return cpu.readSteps(inst.Mode, cpu.sbc)
	case "AND":
		return cpu.readSteps(inst.Mode, cpu.and_)
	case "ORA":
		return cpu.readSteps(inst.Mode, cpu.ora)
	case "EOR":
		return cpu.readSteps(inst.Mode, cpu.eor)
	case "CMP":
		return cpu.readSteps(inst.Mode, cpu.cmp)
	case "CPX":
		return cpu.readSteps(inst.Mode, cpu.cpx)
	case "CPY":
		return cpu.readSteps(inst.Mode, cpu.cpy)
	case "BIT":
		return cpu.readSteps(inst.Mode, cpu.bit)
	case "LAX":
		return cpu.readSteps(inst.Mode, cpu.lax)
	case "LAE":
		return cpu.readSteps(inst.Mode, cpu.lae)
	case "ANC":
		return cpu.readSteps(inst.Mode, cpu.anc)
	case "ALR":
		return cpu.readSteps(inst.Mode, cpu.alr)
	case "ARR":
		return cpu.readSteps(inst.Mode, cpu.arr)
	case "AXS":
		return cpu.readSteps(inst.Mode, cpu.axs)
	case "XAA":
		return cpu.readSteps(inst.Mode, cpu.xaa)
	case "LXA":
		return cpu.readSteps(inst.Mode, cpu.lxa)
	case "NOP":
		if inst.Mode == Implied {
			return cpu.impliedSteps(func() {})
		}
		return cpu.readSteps(inst.Mode, cpu.nopRead)

	case "STA":
		return cpu.writeSteps(inst.Mode, cpu.sta)
	case "STX":
		return cpu.writeSteps(inst.Mode, cpu.stx)
	case "STY":
		return cpu.writeSteps(inst.Mode, cpu.sty)
	case "SAX":
		return cpu.writeSteps(inst.Mode, cpu.sax)
	case "SHA":
		return cpu.writeSteps(inst.Mode, cpu.sha)
	case "SHX":
		return cpu.writeSteps(inst.Mode, cpu.shx)
	case "SHY":
		return cpu.writeSteps(inst.Mode, cpu.shy)
	case "TAS":
		return cpu.writeSteps(inst.Mode, cpu.tas)

	case "ASL":
		if inst.Mode == Accumulator {
			return cpu.accumulatorSteps(cpu.asl)
		}
		return cpu.rmwSteps(inst.Mode, cpu.asl)
	case "LSR":
		if inst.Mode == Accumulator {
			return cpu.accumulatorSteps(cpu.lsr)
		}
		return cpu.rmwSteps(inst.Mode, cpu.lsr)
	case "ROL":
		if inst.Mode == Accumulator {
			return cpu.accumulatorSteps(cpu.rol)
		}
		return cpu.rmwSteps(inst.Mode, cpu.rol)
	case "ROR":
		if inst.Mode == Accumulator {
			return cpu.accumulatorSteps(cpu.ror)
		}
		return cpu.rmwSteps(inst.Mode, cpu.ror)
	case "INC":
		return cpu.rmwSteps(inst.Mode, cpu.inc)
	case "DEC":
		return cpu.rmwSteps(inst.Mode, cpu.dec)
	case "SLO":
		return cpu.rmwSteps(inst.Mode, cpu.slo)
	case "RLA":
		return cpu.rmwSteps(inst.Mode, cpu.rla)
	case "SRE":
		return cpu.rmwSteps(inst.Mode, cpu.sre)
	case "RRA":
		return cpu.rmwSteps(inst.Mode, cpu.rra)
	case "DCP":
		return cpu.rmwSteps(inst.Mode, cpu.dcp)
	case "ISB":
		return cpu.rmwSteps(inst.Mode, cpu.isb)

	case "INX":
		return cpu.impliedSteps(func() { cpu.X++; cpu.setZN(cpu.X) })
	case "DEX":
		return cpu.impliedSteps(func() { cpu.X--; cpu.setZN(cpu.X) })
	case "INY":
		return cpu.impliedSteps(func() { cpu.Y++; cpu.setZN(cpu.Y) })
	case "DEY":
		return cpu.impliedSteps(func() { cpu.Y--; cpu.setZN(cpu.Y) })
	case "TAX":
		return cpu.impliedSteps(func() { cpu.X = cpu.A; cpu.setZN(cpu.X) })
	case "TXA":
		return cpu.impliedSteps(func() { cpu.A = cpu.X; cpu.setZN(cpu.A) })
	case "TAY":
		return cpu.impliedSteps(func() { cpu.Y = cpu.A; cpu.setZN(cpu.Y) })
	case "TYA":
		return cpu.impliedSteps(func() { cpu.A = cpu.Y; cpu.setZN(cpu.A) })
	case "TSX":
		return cpu.impliedSteps(func() { cpu.X = cpu.SP; cpu.setZN(cpu.X) })
	case "TXS":
		return cpu.impliedSteps(func() { cpu.SP = cpu.X })
	case "CLC":
		return cpu.impliedSteps(func() { cpu.C = false })
	case "SEC":
		return cpu.impliedSteps(func() { cpu.C = true })
	case "CLI":
		return cpu.impliedSteps(func() { cpu.I = false })
	case "SEI":
		return cpu.impliedSteps(func() { cpu.I = true })
	case "CLV":
		return cpu.impliedSteps(func() { cpu.V = false })
	case "CLD":
		return cpu.impliedSteps(func() { cpu.D = false })
	case "SED":
		return cpu.impliedSteps(func() { cpu.D = true })

	case "PHA":
		return cpu.pushSteps(func() uint8 { return cpu.A })
	case "PHP":
		return cpu.pushSteps(func() uint8 { return cpu.GetStatusByte() | bFlagMask | unusedMask })
	case "PLA":
		return cpu.pullSteps(func(v uint8) { cpu.A = v; cpu.setZN(cpu.A) })
	case "PLP":
		return cpu.pullSteps(func(v uint8) { cpu.SetStatusByte(v) })

	case "JMP":
		if inst.Mode == Indirect {
			return cpu.jmpIndirectSteps()
		}
		return cpu.jmpAbsoluteSteps()
	case "JSR":
		return cpu.jsrSteps()
	case "RTS":
		return cpu.rtsSteps()
	case "RTI":
		return cpu.rtiSteps()
	case "BRK":
		return cpu.brkSteps()

	case "BCC":
		return cpu.stepBranch(func() bool { return !cpu.C })
	case "BCS":
		return cpu.stepBranch(func() bool { return cpu.C })
	case "BNE":
		return cpu.stepBranch(func() bool { return !cpu.Z })
	case "BEQ":
		return cpu.stepBranch(func() bool { return cpu.Z })
	case "BPL":
		return cpu.stepBranch(func() bool { return !cpu.N })
	case "BMI":
		return cpu.stepBranch(func() bool { return cpu.N })
	case "BVC":
		return cpu.stepBranch(func() bool { return !cpu.V })
	case "BVS":
		return cpu.stepBranch(func() bool { return cpu.V })

	case "JAM":
		return cpu.jamSteps()
	}
	return cpu.jamSteps()
}

func (cpu *CPU) readSteps(mode AddressingMode, op func(uint8)) []func() {
	final := func() { op(cpu.memory.Read(cpu.operAddr)) }
	switch mode {
	case Immediate:
		return []func(){func() {
			v := cpu.memory.Read(cpu.PC)
			cpu.PC++
			op(v)
		}}
	case ZeroPage:
		return append(cpu.addrZeroPage(), final)
	case ZeroPageX:
		return append(cpu.addrZeroPageIndexed(&cpu.X), final)
	case ZeroPageY:
		return append(cpu.addrZeroPageIndexed(&cpu.Y), final)
	case Absolute:
		return append(cpu.addrAbsolute(), final)
	case AbsoluteX:
		return append(cpu.addrAbsoluteIndexed(&cpu.X, false), final)
	case AbsoluteY:
		return append(cpu.addrAbsoluteIndexed(&cpu.Y, false), final)
	case IndexedIndirect:
		return append(cpu.addrIndexedIndirect(), final)
	case IndirectIndexed:
		return append(cpu.addrIndirectIndexed(false), final)
	}
	return cpu.jamSteps()
}

func (cpu *CPU) writeSteps(mode AddressingMode, op func() uint8) []func() {
	final := func() { cpu.memory.Write(cpu.operAddr, op()) }
	switch mode {
	case ZeroPage:
		return append(cpu.addrZeroPage(), final)
	case ZeroPageX:
		return append(cpu.addrZeroPageIndexed(&cpu.X), final)
	case ZeroPageY:
		return append(cpu.addrZeroPageIndexed(&cpu.Y), final)
	case Absolute:
		return append(cpu.addrAbsolute(), final)
	case AbsoluteX:
		return append(cpu.addrAbsoluteIndexed(&cpu.X, true), final)
	case AbsoluteY:
		return append(cpu.addrAbsoluteIndexed(&cpu.Y, true), final)
	case IndexedIndirect:
		return append(cpu.addrIndexedIndirect(), final)
	case IndirectIndexed:
		return append(cpu.addrIndirectIndexed(true), final)
	}
	return cpu.jamSteps()
}

func (cpu *CPU) rmwSteps(mode AddressingMode, op func(uint8) uint8) []func() {
	var addr []func()
	switch mode {
	case ZeroPage:
		addr = cpu.addrZeroPage()
	case ZeroPageX:
		addr = cpu.addrZeroPageIndexed(&cpu.X)
	case Absolute:
		addr = cpu.addrAbsolute()
	case AbsoluteX:
		addr = cpu.addrAbsoluteIndexed(&cpu.X, true)
	case AbsoluteY:
		addr = cpu.addrAbsoluteIndexed(&cpu.Y, true)
	case IndexedIndirect:
		addr = cpu.addrIndexedIndirect()
	case IndirectIndexed:
		addr = cpu.addrIndirectIndexed(true)
	default:
		return cpu.jamSteps()
	}
	var rv uint8
	return append(addr,
		func() { rv = cpu.memory.Read(cpu.operAddr) },
		func() { cpu.memory.Write(cpu.operAddr, rv) },
		func() { cpu.memory.Write(cpu.operAddr, op(rv)) },
	)
}

// accumulatorSteps covers ASL/LSR/ROL/ROR A: a single dummy-read cycle that
// doubles as the shift/rotate itself, operating directly on the accumulator.
func (cpu *CPU) accumulatorSteps(op func(uint8) uint8) []func() {
	return []func(){func() {
		cpu.memory.Read(cpu.PC)
		cpu.A = op(cpu.A)
	}}
}

// impliedSteps covers every single-byte register op: one dummy read of the
// next byte (discarded, PC unchanged) doubling as the op's execution cycle.
func (cpu *CPU) impliedSteps(op func()) []func() {
	return []func(){func() {
		cpu.memory.Read(cpu.PC)
		op()
	}}
}

func (cpu *CPU) pushSteps(value func() uint8) []func() {
	return []func(){
		func() { cpu.memory.Read(cpu.PC) },
		func() { cpu.push(value()) },
	}
}

func (cpu *CPU) pullSteps(apply func(uint8)) []func() {
	return []func(){
		func() { cpu.memory.Read(cpu.PC) },
		func() { cpu.memory.Read(stackBase + uint16(cpu.SP)) },
		func() { apply(cpu.pop()) },
	}
}

func (cpu *CPU) jmpAbsoluteSteps() []func() {
	return []func(){
		func() {
			cpu.operLow = cpu.memory.Read(cpu.PC)
			cpu.PC++
		},
		func() {
			hi := cpu.memory.Read(cpu.PC)
			cpu.PC = uint16(hi)<<8 | uint16(cpu.operLow)
		},
	}
}

// jmpIndirectSteps reproduces the famous page-boundary bug: if the pointer's
// low byte is $FF, the high-byte fetch wraps within the same page instead of
// crossing into the next one (§9).
func (cpu *CPU) jmpIndirectSteps() []func() {
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
		func() {
			cpu.operLow = cpu.memory.Read(cpu.operAddr)
		},
		func() {
			hiAddr := (cpu.operAddr & 0xFF00) | uint16(uint8(cpu.operAddr)+1)
			hi := cpu.memory.Read(hiAddr)
			cpu.PC = uint16(hi)<<8 | uint16(cpu.operLow)
		},
	}
}

func (cpu *CPU) jsrSteps() []func() {
	return []func(){
		func() {
			cpu.operLow = cpu.memory.Read(cpu.PC)
			cpu.PC++
		},
		func() { cpu.memory.Read(stackBase + uint16(cpu.SP)) },
		func() { cpu.push(uint8(cpu.PC >> 8)) },
		func() { cpu.push(uint8(cpu.PC & 0xFF)) },
		func() {
			hi := cpu.memory.Read(cpu.PC)
			cpu.PC = uint16(hi)<<8 | uint16(cpu.operLow)
		},
	}
}

func (cpu *CPU) rtsSteps() []func() {
	return []func(){
		func() { cpu.memory.Read(cpu.PC) },
		func() { cpu.memory.Read(stackBase + uint16(cpu.SP)) },
		func() { cpu.operLow = cpu.pop() },
		func() {
			hi := cpu.pop()
			cpu.PC = uint16(hi)<<8 | uint16(cpu.operLow)
		},
		func() {
			cpu.memory.Read(cpu.PC)
			cpu.PC++
		},
	}
}

func (cpu *CPU) rtiSteps() []func() {
	return []func(){
		func() { cpu.memory.Read(cpu.PC) },
		func() { cpu.memory.Read(stackBase + uint16(cpu.SP)) },
		func() { cpu.SetStatusByte(cpu.pop()) },
		func() { cpu.operLow = cpu.pop() },
		func() {
			hi := cpu.pop()
			cpu.PC = uint16(hi)<<8 | uint16(cpu.operLow)
		},
	}
}

// brkSteps is BRK's own 7-cycle sequence (fetch already consumed): a
// discarded padding-byte read, then the same push/vector sequence as a
// hardware interrupt but with the B flag set in the pushed status. This
// core does not model the NMI-hijack-mid-BRK quirk (an NMI landing during
// BRK's own sequence can redirect it to the NMI vector instead) — see
// DESIGN.md.
func (cpu *CPU) brkSteps() []func() {
	return []func(){
		func() {
			cpu.memory.Read(cpu.PC)
			cpu.PC++
		},
		func() { cpu.push(uint8(cpu.PC >> 8)) },
		func() { cpu.push(uint8(cpu.PC & 0xFF)) },
		func() { cpu.push(cpu.GetStatusByte() | bFlagMask | unusedMask) },
		func() { cpu.operLow = cpu.memory.Read(irqVector) },
		func() {
			hi := cpu.memory.Read(irqVector + 1)
			cpu.I = true
			cpu.PC = uint16(hi)<<8 | uint16(cpu.operLow)
		},
	}
}

// interruptSteps is the hardware-triggered (NMI/IRQ) counterpart of
// brkSteps: same shape, but the first cycle is a non-incrementing dummy
// read (no opcode was really fetched) and B is left clear in the pushed
// status.
func (cpu *CPU) interruptSteps(vector uint16) []func() {
	return []func(){
		func() { cpu.memory.Read(cpu.PC) },
		func() { cpu.push(uint8(cpu.PC >> 8)) },
		func() { cpu.push(uint8(cpu.PC & 0xFF)) },
		func() { cpu.push((cpu.GetStatusByte() &^ uint8(bFlagMask)) | unusedMask) },
		func() { cpu.operLow = cpu.memory.Read(vector) },
		func() {
			hi := cpu.memory.Read(vector + 1)
			cpu.I = true
			cpu.PC = uint16(hi)<<8 | uint16(cpu.operLow)
		},
	}
}

// stepBranch reads the relative offset, then — only if taken — spends one
// extra cycle applying it to PCL and a further cycle fixing PCH if that
// crossed a page, matching real 2/3/4-cycle branch timing exactly.
func (cpu *CPU) stepBranch(taken func() bool) []func() {
	return []func(){func() {
		offset := int8(cpu.memory.Read(cpu.PC))
		cpu.PC++
		if !taken() {
			return
		}
		oldPC := cpu.PC
		newPC := uint16(int32(oldPC) + int32(offset))
		cpu.prepend(func() {
			cpu.memory.Read((oldPC & 0xFF00) | (newPC & 0x00FF))
			if (oldPC & 0xFF00) == (newPC & 0xFF00) {
				cpu.PC = newPC
				return
			}
			cpu.prepend(func() {
				cpu.memory.Read(newPC)
				cpu.PC = newPC
			})
		})
	}}
}

// jamSteps models JAM/KIL: the CPU locks up and never fetches another
// opcode. Modeled as a micro-op that perpetually re-schedules itself.
func (cpu *CPU) jamSteps() []func() {
	cpu.jammed = true
	var loop func()
	loop = func() { cpu.prepend(loop) }
	return []func(){loop}
}
