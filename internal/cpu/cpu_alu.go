package cpu

// Read-category operations: consume one operand byte, update registers/flags.

func (cpu *CPU) lda(v uint8) { cpu.A = v; cpu.setZN(cpu.A) }
func (cpu *CPU) ldx(v uint8) { cpu.X = v; cpu.setZN(cpu.X) }
func (cpu *CPU) ldy(v uint8) { cpu.Y = v; cpu.setZN(cpu.Y) }

func (cpu *CPU) adc(v uint8) {
	carry := uint8(0)
	if cpu.C {
		carry = 1
	}
	result := uint16(cpu.A) + uint16(v) + uint16(carry)
	cpu.V = ((cpu.A^uint8(result))&0x80) != 0 && ((cpu.A^v)&0x80) == 0
	cpu.C = result > 0xFF
	cpu.A = uint8(result)
	cpu.setZN(cpu.A)
}

func (cpu *CPU) sbc(v uint8) { cpu.adc(v ^ 0xFF) }

func (cpu *CPU) and_(v uint8) { cpu.A &= v; cpu.setZN(cpu.A) }
func (cpu *CPU) ora(v uint8)  { cpu.A |= v; cpu.setZN(cpu.A) }
func (cpu *CPU) eor(v uint8)  { cpu.A ^= v; cpu.setZN(cpu.A) }

func (cpu *CPU) cmp(v uint8) { cpu.C = cpu.A >= v; cpu.setZN(cpu.A - v) }
func (cpu *CPU) cpx(v uint8) { cpu.C = cpu.X >= v; cpu.setZN(cpu.X - v) }
func (cpu *CPU) cpy(v uint8) { cpu.C = cpu.Y >= v; cpu.setZN(cpu.Y - v) }

func (cpu *CPU) bit(v uint8) {
	cpu.Z = (cpu.A & v) == 0
	cpu.V = (v & vFlagMask) != 0
	cpu.N = (v & nFlagMask) != 0
}

func (cpu *CPU) nopRead(v uint8) {}

// lax (unofficial): load both A and X from the same fetched byte.
func (cpu *CPU) lax(v uint8) { cpu.A, cpu.X = v, v; cpu.setZN(v) }

// lae (unofficial, a.k.a. LAS): AND the fetched byte into SP, then copy the
// result into A, X and SP all at once.
func (cpu *CPU) lae(v uint8) {
	r := v & cpu.SP
	cpu.A, cpu.X, cpu.SP = r, r, r
	cpu.setZN(r)
}

// anc (unofficial): AND, then copy the result's sign bit into carry (as if
// the accumulator had been shifted out through an ASL).
func (cpu *CPU) anc(v uint8) {
	cpu.A &= v
	cpu.setZN(cpu.A)
	cpu.C = cpu.N
}

// alr (unofficial, a.k.a. ASR): AND then logical-shift-right the accumulator.
func (cpu *CPU) alr(v uint8) {
	cpu.A &= v
	cpu.A = cpu.lsr(cpu.A)
}

// arr (unofficial): AND then rotate-right the accumulator, with C/V derived
// from the post-rotate bits 6 and 5 rather than the rotate's own carry-out.
func (cpu *CPU) arr(v uint8) {
	cpu.A &= v
	cpu.A = cpu.ror(cpu.A)
	cpu.C = (cpu.A & 0x40) != 0
	cpu.V = ((cpu.A>>6)^(cpu.A>>5))&1 != 0
}

// axs (unofficial, a.k.a. SBX): X = (A&X) - value, flags set like CMP.
func (cpu *CPU) axs(v uint8) {
	t := cpu.A & cpu.X
	cpu.C = t >= v
	cpu.X = t - v
	cpu.setZN(cpu.X)
}

// xaa and lxa are the unstable unofficial opcodes whose exact result
// depends on chip-specific analog bus capacitance; this core uses the
// commonly-cited canonical constant $EE rather than modeling per-chip
// variance (out of scope: see SPEC_FULL.md Non-goals).
func (cpu *CPU) xaa(v uint8) {
	cpu.A = (cpu.A | 0xEE) & cpu.X & v
	cpu.setZN(cpu.A)
}

func (cpu *CPU) lxa(v uint8) {
	cpu.A = (cpu.A | 0xEE) & v
	cpu.X = cpu.A
	cpu.setZN(cpu.A)
}

// Read-modify-write operations: take the old byte, return the new one. The
// caller is responsible for the characteristic double-write (old value
// written back, then new value) that real RMW addressing performs.

func (cpu *CPU) asl(v uint8) uint8 {
	cpu.C = (v & 0x80) != 0
	r := v << 1
	cpu.setZN(r)
	return r
}

func (cpu *CPU) lsr(v uint8) uint8 {
	cpu.C = (v & 0x01) != 0
	r := v >> 1
	cpu.setZN(r)
	return r
}

func (cpu *CPU) rol(v uint8) uint8 {
	oldCarry := cpu.C
	cpu.C = (v & 0x80) != 0
	r := v << 1
	if oldCarry {
		r |= 0x01
	}
	cpu.setZN(r)
	return r
}

func (cpu *CPU) ror(v uint8) uint8 {
	oldCarry := cpu.C
	cpu.C = (v & 0x01) != 0
	r := v >> 1
	if oldCarry {
		r |= 0x80
	}
	cpu.setZN(r)
	return r
}

func (cpu *CPU) inc(v uint8) uint8 { r := v + 1; cpu.setZN(r); return r }
func (cpu *CPU) dec(v uint8) uint8 { r := v - 1; cpu.setZN(r); return r }

// slo/rla/sre/rra/dcp/isb (unofficial): an RMW shift/rotate/inc/dec fused
// with an accumulator ALU op against the shifted/rotated/adjusted result.
func (cpu *CPU) slo(v uint8) uint8 { r := cpu.asl(v); cpu.A |= r; cpu.setZN(cpu.A); return r }
func (cpu *CPU) rla(v uint8) uint8 { r := cpu.rol(v); cpu.A &= r; cpu.setZN(cpu.A); return r }
func (cpu *CPU) sre(v uint8) uint8 { r := cpu.lsr(v); cpu.A ^= r; cpu.setZN(cpu.A); return r }
func (cpu *CPU) rra(v uint8) uint8 { r := cpu.ror(v); cpu.adc(r); return r }

func (cpu *CPU) dcp(v uint8) uint8 {
	r := v - 1
	cpu.C = cpu.A >= r
	cpu.setZN(cpu.A - r)
	return r
}

func (cpu *CPU) isb(v uint8) uint8 {
	r := v + 1
	cpu.sbc(r)
	return r
}

// Write-category operations: compute the byte to store. highByteHack is the
// canonical "value & (high_byte_of_address + 1)" constant these unstable
// store opcodes use (out of scope for chip-revision-exact modeling; see
// SPEC_FULL.md Non-goals).
func (cpu *CPU) sta() uint8 { return cpu.A }
func (cpu *CPU) stx() uint8 { return cpu.X }
func (cpu *CPU) sty() uint8 { return cpu.Y }
func (cpu *CPU) sax() uint8 { return cpu.A & cpu.X }

func (cpu *CPU) highByteHack() uint8 { return uint8(cpu.operAddr>>8) + 1 }

func (cpu *CPU) sha() uint8 { return cpu.A & cpu.X & cpu.highByteHack() }
func (cpu *CPU) shx() uint8 { return cpu.X & cpu.highByteHack() }
func (cpu *CPU) shy() uint8 { return cpu.Y & cpu.highByteHack() }

func (cpu *CPU) tas() uint8 {
	cpu.SP = cpu.A & cpu.X
	return cpu.SP & cpu.highByteHack()
}
