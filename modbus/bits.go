package modbus

// PackBits converts a slice of coil states into the packed external
// representation: 8 coils per byte, least significant bit first.
func PackBits(bits []bool) []byte {
	packed := make([]byte, (len(bits)+7)/8)
	for i, on := range bits {
		if on {
			packed[i/8] |= 1 << uint(i%8)
		}
	}

	return packed
}

// UnpackBits expands count coils from the packed external representation.
// Coils beyond the end of data are reported as off.
func UnpackBits(data []byte, count int) []bool {
	bits := make([]bool, count)
	for i := range bits {
		byteIdx := i / 8
		if byteIdx >= len(data) {
			break
		}
		bits[i] = data[byteIdx]&(1<<uint(i%8)) != 0
	}

	return bits
}

// PackRegisters converts register values into their big-endian byte
// representation.
func PackRegisters(regs []uint16) []byte {
	packed := make([]byte, len(regs)*2)
	for i, r := range regs {
		packed[2*i] = byte(r >> 8)
		packed[2*i+1] = byte(r)
	}

	return packed
}

// UnpackRegisters converts a big-endian byte payload into register values.
// A trailing odd byte is ignored.
func UnpackRegisters(data []byte) []uint16 {
	regs := make([]uint16, len(data)/2)
	for i := range regs {
		regs[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}

	return regs
}
