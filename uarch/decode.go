package uarch

// instruction holds every field a fixed-length RV64I-style word might
// need, decoded once up front. Not every field is meaningful for every
// opcode; Step and its exec helpers read only the ones its opcode
// defines.
type instruction struct {
	opcode uint32
	rd     int
	rs1    int
	rs2    int
	funct3 uint32
	funct7 uint32

	immI int64
	immS int64
	immB int64
	immU int64
	immJ int64
}

func signExtend(v uint32, bits uint) int64 {
	shift := 32 - bits
	return int64(int32(v<<shift)) >> shift
}

// decode splits a 32-bit little-endian instruction word into its fields,
// the way rvgo/fast/vm.go's Step does inline; kept as a standalone
// function here so uarch.Step's body reads as fetch/decode/execute.
func decode(word uint32) instruction {
	var in instruction
	in.opcode = word & 0x7F
	in.rd = int((word >> 7) & 0x1F)
	in.funct3 = (word >> 12) & 0x7
	in.rs1 = int((word >> 15) & 0x1F)
	in.rs2 = int((word >> 20) & 0x1F)
	in.funct7 = (word >> 25) & 0x7F

	in.immI = signExtend(word>>20, 12)

	immS := ((word >> 25) << 5) | ((word >> 7) & 0x1F)
	in.immS = signExtend(immS, 12)

	immB := (((word >> 31) & 0x1) << 12) |
		(((word >> 7) & 0x1) << 11) |
		(((word >> 25) & 0x3F) << 5) |
		(((word >> 8) & 0xF) << 1)
	in.immB = signExtend(immB, 13)

	in.immU = int64(word & 0xFFFFF000)

	immJ := (((word >> 31) & 0x1) << 20) |
		(((word >> 12) & 0xFF) << 12) |
		(((word >> 20) & 0x1) << 11) |
		(((word >> 21) & 0x3FF) << 1)
	in.immJ = signExtend(immJ, 21)

	return in
}
