package gcgcode

import "testing"

func TestPackLayout(t *testing.T) {
	var values [valueCount]uint16
	values[0] = 0xABC
	values[1] = 0x123
	values[2] = 0xFFF
	b := pack(values)
	want := []byte{0xAB, 0xC1, 0x23, 0xFF, 0xF0, 0x00}
	for i, w := range want {
		if b[i] != w {
			t.Errorf("pack()[%d] = %#x, want %#x", i, b[i], w)
		}
	}
}

func TestPackUnpack(t *testing.T) {
	var values [valueCount]uint16
	for i := range values[:valueCount-1] {
		values[i] = uint16((i * 397) & MaxEncodingID)
	}
	got := unpack(pack(values))
	if got != values {
		t.Errorf("unpack(pack(v)) = %v, want %v", got, values)
	}
}

func TestMaskApply(t *testing.T) {
	var packed [packedLen]byte
	for i := range packed {
		packed[i] = byte(i)
	}
	wire := Mask(3).Apply(packed)
	if wire[0] != 3 || wire[1] != 5 || wire[halfLen] != 4 || wire[halfLen+1] != 6 {
		t.Errorf("Apply: unexpected interleave %v", wire)
	}
	if wire[CodeByteLen-1] != 3 {
		t.Errorf("Apply: mask byte = %d, want 3", wire[CodeByteLen-1])
	}
}

func TestMaskWraps(t *testing.T) {
	var packed [packedLen]byte
	packed[0] = 0xFF
	wire := Mask(2).Apply(packed)
	if wire[0] != 0x01 {
		t.Errorf("Apply: wire[0] = %#x, want 0x01", wire[0])
	}
	back := Mask(2).Remove(wire[:CodeByteLen-1])
	if back[0] != 0xFF {
		t.Errorf("Remove: back[0] = %#x, want 0xff", back[0])
	}
}

func TestMaskRemove(t *testing.T) {
	var values [valueCount]uint16
	for i := range values[:valueCount-1] {
		values[i] = uint16(4095 - i*11)
	}
	packed := pack(values)
	if packed[packedLen-1] != 0 {
		t.Fatalf("terminator byte = %#x, want 0", packed[packedLen-1])
	}
	for m := 0; m < 256; m++ {
		wire := Mask(m).Apply(packed)
		if got := Mask(m).Remove(wire[:CodeByteLen-1]); got != packed {
			t.Fatalf("Remove(Apply(p)) with mask %d = %v, want %v", m, got, packed)
		}
	}
}
