package gcgcode

const (
	valueCount = CharacterCardCount + ActionCardCount + 1 // trailing zero terminator
	packedLen  = valueCount / 2 * 3
	halfLen    = 25

	// CodeByteLen is the decoded length of a share code: two masked
	// halves followed by the mask byte. The decoder accepts only this length.
	CodeByteLen = 2*halfLen + 1
)

// Mask offsets payload bytes by a key byte. Even packed bytes go to the
// first half of the wire buffer and odd ones to the second half. The last
// packed byte only ever carries the low bits of the zero terminator, so it
// is not transmitted.
type Mask byte

// Apply returns the wire buffer for packed, including the mask byte.
func (m Mask) Apply(packed [packedLen]byte) [CodeByteLen]byte {
	var out [CodeByteLen]byte
	for i := 0; i < halfLen; i++ {
		out[i] = packed[2*i] + byte(m)
		out[halfLen+i] = packed[2*i+1] + byte(m)
	}
	out[CodeByteLen-1] = byte(m)
	return out
}

// Remove reverses Apply. wire holds the two masked halves without the
// trailing mask byte.
func (m Mask) Remove(wire []byte) [packedLen]byte {
	var out [packedLen]byte
	for i := 0; i < halfLen; i++ {
		out[2*i] = wire[i] - byte(m)
		out[2*i+1] = wire[halfLen+i] - byte(m)
	}
	return out
}

// pack stores each pair of 12-bit values in three bytes, big-endian.
func pack(values [valueCount]uint16) [packedLen]byte {
	var b [packedLen]byte
	for i := 0; i < valueCount/2; i++ {
		a, c := values[2*i], values[2*i+1]
		b[3*i] = byte(a >> 4)
		b[3*i+1] = byte(a<<4) | byte(c>>8&0x0f)
		b[3*i+2] = byte(c)
	}
	return b
}

func unpack(b [packedLen]byte) [valueCount]uint16 {
	var values [valueCount]uint16
	for i := 0; i < valueCount/2; i++ {
		values[2*i] = uint16(b[3*i])<<4 | uint16(b[3*i+1]>>4)
		values[2*i+1] = uint16(b[3*i+1]&0x0f)<<8 | uint16(b[3*i+2])
	}
	return values
}
