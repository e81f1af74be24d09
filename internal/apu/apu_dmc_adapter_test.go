package apu

import "testing"

func TestDMCRequestIsIdleOnFreshAPU(t *testing.T) {
	a := New()
	if _, ok := a.DMCRequest(); ok {
		t.Fatal("DMCRequest() on a fresh APU returned a pending fetch, want none")
	}
}

func TestEnablingDMCRequestsFirstByte(t *testing.T) {
	a := New()
	a.WriteRegister(0x4012, 0x00) // sample address -> $C000
	a.WriteRegister(0x4013, 0x00) // sample length -> 1 byte
	a.WriteRegister(0x4015, 0x10) // enable DMC channel

	req, ok := a.DMCRequest()
	if !ok {
		t.Fatal("DMCRequest() after enabling DMC, want a pending fetch")
	}
	if req.Address != 0xC000 {
		t.Fatalf("req.Address = 0x%04X, want 0xC000", req.Address)
	}
}

func TestDMCDeliverAdvancesAddressAndClearsRequest(t *testing.T) {
	a := New()
	a.WriteRegister(0x4012, 0x00)
	a.WriteRegister(0x4013, 0x10) // sample length -> (0x10<<4)+1 = 257 bytes
	a.WriteRegister(0x4015, 0x10)

	req, ok := a.DMCRequest()
	if !ok {
		t.Fatal("expected a pending fetch after enable")
	}
	a.DMCDeliver(0x55)

	if _, ok := a.DMCRequest(); ok {
		t.Fatal("DMCRequest() immediately after DMCDeliver, want no pending fetch")
	}

	// Simulate stepDMCTimer emptying the buffer again, to check the fetch
	// address advances past the byte just delivered.
	a.dmc.fetchPending = true
	nextReq, ok := a.DMCRequest()
	if !ok {
		t.Fatal("expected a second pending fetch")
	}
	if nextReq.Address != req.Address+1 {
		t.Fatalf("second fetch address = 0x%04X, want 0x%04X", nextReq.Address, req.Address+1)
	}
}

func TestDMCExhaustionWithoutLoopSetsIRQ(t *testing.T) {
	a := New()
	a.WriteRegister(0x4010, 0x80) // IRQ enable, no loop
	a.WriteRegister(0x4012, 0x00)
	a.WriteRegister(0x4013, 0x00) // 1 byte total
	a.WriteRegister(0x4015, 0x10)

	if a.IRQPending() {
		t.Fatal("IRQPending() before exhausting the sample, want false")
	}

	_, ok := a.DMCRequest()
	if !ok {
		t.Fatal("expected a pending fetch")
	}
	a.DMCDeliver(0x01)

	if !a.IRQPending() {
		t.Fatal("IRQPending() after exhausting a non-looping sample, want true")
	}
}

func TestDMCLoopRestartsInsteadOfIRQ(t *testing.T) {
	a := New()
	a.WriteRegister(0x4010, 0xC0) // IRQ enable + loop
	a.WriteRegister(0x4012, 0x00)
	a.WriteRegister(0x4013, 0x00) // 1 byte total
	a.WriteRegister(0x4015, 0x10)

	_, ok := a.DMCRequest()
	if !ok {
		t.Fatal("expected a pending fetch")
	}
	a.DMCDeliver(0x01)

	if a.IRQPending() {
		t.Fatal("IRQPending() after a looping sample exhausts, want false")
	}
	if a.dmc.currentAddress != a.dmc.sampleAddress {
		t.Fatalf("currentAddress = 0x%04X, want restart at sampleAddress 0x%04X", a.dmc.currentAddress, a.dmc.sampleAddress)
	}
	if a.dmc.bytesRemaining != a.dmc.sampleLength {
		t.Fatalf("bytesRemaining = %d, want restarted at sampleLength %d", a.dmc.bytesRemaining, a.dmc.sampleLength)
	}
}
