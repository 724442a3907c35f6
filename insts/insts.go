// Package insts provides RISC-V instruction definitions and the 32-bit and
// 16-bit (compressed) decoders.
//
// Both decoders map a raw opcode word to the same canonical operation set:
// a compressed instruction decodes directly to the full-width operation it
// expands to, so the translator dispatch is uniform across encodings.
package insts

// Op identifies a canonical RISC-V operation.
type Op uint16

// RV64IMAFDC operations.
const (
	OpUnknown Op = iota

	// RV32I/RV64I base
	OpLUI
	OpAUIPC
	OpJAL
	OpJALR
	OpBEQ
	OpBNE
	OpBLT
	OpBGE
	OpBLTU
	OpBGEU
	OpLB
	OpLH
	OpLW
	OpLD
	OpLBU
	OpLHU
	OpLWU
	OpSB
	OpSH
	OpSW
	OpSD
	OpADDI
	OpSLTI
	OpSLTIU
	OpXORI
	OpORI
	OpANDI
	OpSLLI
	OpSRLI
	OpSRAI
	OpADD
	OpSUB
	OpSLL
	OpSLT
	OpSLTU
	OpXOR
	OpSRL
	OpSRA
	OpOR
	OpAND
	OpADDIW
	OpSLLIW
	OpSRLIW
	OpSRAIW
	OpADDW
	OpSUBW
	OpSLLW
	OpSRLW
	OpSRAW
	OpFENCE
	OpFENCEI
	OpECALL
	OpEBREAK
	OpCSRRW
	OpCSRRS
	OpCSRRC
	OpCSRRWI
	OpCSRRSI
	OpCSRRCI

	// M extension
	OpMUL
	OpMULH
	OpMULHSU
	OpMULHU
	OpDIV
	OpDIVU
	OpREM
	OpREMU
	OpMULW
	OpDIVW
	OpDIVUW
	OpREMW
	OpREMUW

	// A extension
	OpLRW
	OpSCW
	OpAMOSWAPW
	OpAMOADDW
	OpAMOXORW
	OpAMOANDW
	OpAMOORW
	OpAMOMINW
	OpAMOMAXW
	OpAMOMINUW
	OpAMOMAXUW
	OpLRD
	OpSCD
	OpAMOSWAPD
	OpAMOADDD
	OpAMOXORD
	OpAMOANDD
	OpAMOORD
	OpAMOMIND
	OpAMOMAXD
	OpAMOMINUD
	OpAMOMAXUD

	// F/D extensions
	OpFLW
	OpFSW
	OpFLD
	OpFSD
	OpFADDS
	OpFSUBS
	OpFMULS
	OpFDIVS
	OpFSQRTS
	OpFSGNJS
	OpFSGNJNS
	OpFSGNJXS
	OpFMINS
	OpFMAXS
	OpFEQS
	OpFLTS
	OpFLES
	OpFADDD
	OpFSUBD
	OpFMULD
	OpFDIVD
	OpFSQRTD
	OpFSGNJD
	OpFSGNJND
	OpFSGNJXD
	OpFMIND
	OpFMAXD
	OpFEQD
	OpFLTD
	OpFLED
	OpFCVTWS
	OpFCVTWUS
	OpFCVTLS
	OpFCVTLUS
	OpFCVTSW
	OpFCVTSWU
	OpFCVTSL
	OpFCVTSLU
	OpFCVTWD
	OpFCVTWUD
	OpFCVTLD
	OpFCVTLUD
	OpFCVTDW
	OpFCVTDWU
	OpFCVTDL
	OpFCVTDLU
	OpFCVTSD
	OpFCVTDS
	OpFMVXW
	OpFMVWX
	OpFMVXD
	OpFMVDX

	numOps
)

var opNames = map[Op]string{
	OpLUI: "lui", OpAUIPC: "auipc", OpJAL: "jal", OpJALR: "jalr",
	OpBEQ: "beq", OpBNE: "bne", OpBLT: "blt", OpBGE: "bge",
	OpBLTU: "bltu", OpBGEU: "bgeu",
	OpLB: "lb", OpLH: "lh", OpLW: "lw", OpLD: "ld",
	OpLBU: "lbu", OpLHU: "lhu", OpLWU: "lwu",
	OpSB: "sb", OpSH: "sh", OpSW: "sw", OpSD: "sd",
	OpADDI: "addi", OpSLTI: "slti", OpSLTIU: "sltiu", OpXORI: "xori",
	OpORI: "ori", OpANDI: "andi", OpSLLI: "slli", OpSRLI: "srli",
	OpSRAI: "srai",
	OpADD:  "add", OpSUB: "sub", OpSLL: "sll", OpSLT: "slt",
	OpSLTU: "sltu", OpXOR: "xor", OpSRL: "srl", OpSRA: "sra",
	OpOR: "or", OpAND: "and",
	OpADDIW: "addiw", OpSLLIW: "slliw", OpSRLIW: "srliw", OpSRAIW: "sraiw",
	OpADDW: "addw", OpSUBW: "subw", OpSLLW: "sllw", OpSRLW: "srlw",
	OpSRAW: "sraw",
	OpFENCE: "fence", OpFENCEI: "fence.i", OpECALL: "ecall", OpEBREAK: "ebreak",
	OpCSRRW: "csrrw", OpCSRRS: "csrrs", OpCSRRC: "csrrc",
	OpCSRRWI: "csrrwi", OpCSRRSI: "csrrsi", OpCSRRCI: "csrrci",
	OpMUL: "mul", OpMULH: "mulh", OpMULHSU: "mulhsu", OpMULHU: "mulhu",
	OpDIV: "div", OpDIVU: "divu", OpREM: "rem", OpREMU: "remu",
	OpMULW: "mulw", OpDIVW: "divw", OpDIVUW: "divuw", OpREMW: "remw",
	OpREMUW: "remuw",
	OpLRW:   "lr.w", OpSCW: "sc.w", OpAMOSWAPW: "amoswap.w",
	OpAMOADDW: "amoadd.w", OpAMOXORW: "amoxor.w", OpAMOANDW: "amoand.w",
	OpAMOORW: "amoor.w", OpAMOMINW: "amomin.w", OpAMOMAXW: "amomax.w",
	OpAMOMINUW: "amominu.w", OpAMOMAXUW: "amomaxu.w",
	OpLRD: "lr.d", OpSCD: "sc.d", OpAMOSWAPD: "amoswap.d",
	OpAMOADDD: "amoadd.d", OpAMOXORD: "amoxor.d", OpAMOANDD: "amoand.d",
	OpAMOORD: "amoor.d", OpAMOMIND: "amomin.d", OpAMOMAXD: "amomax.d",
	OpAMOMINUD: "amominu.d", OpAMOMAXUD: "amomaxu.d",
	OpFLW: "flw", OpFSW: "fsw", OpFLD: "fld", OpFSD: "fsd",
	OpFADDS: "fadd.s", OpFSUBS: "fsub.s", OpFMULS: "fmul.s",
	OpFDIVS: "fdiv.s", OpFSQRTS: "fsqrt.s",
	OpFSGNJS: "fsgnj.s", OpFSGNJNS: "fsgnjn.s", OpFSGNJXS: "fsgnjx.s",
	OpFMINS: "fmin.s", OpFMAXS: "fmax.s",
	OpFEQS: "feq.s", OpFLTS: "flt.s", OpFLES: "fle.s",
	OpFADDD: "fadd.d", OpFSUBD: "fsub.d", OpFMULD: "fmul.d",
	OpFDIVD: "fdiv.d", OpFSQRTD: "fsqrt.d",
	OpFSGNJD: "fsgnj.d", OpFSGNJND: "fsgnjn.d", OpFSGNJXD: "fsgnjx.d",
	OpFMIND: "fmin.d", OpFMAXD: "fmax.d",
	OpFEQD: "feq.d", OpFLTD: "flt.d", OpFLED: "fle.d",
	OpFCVTWS: "fcvt.w.s", OpFCVTWUS: "fcvt.wu.s",
	OpFCVTLS: "fcvt.l.s", OpFCVTLUS: "fcvt.lu.s",
	OpFCVTSW: "fcvt.s.w", OpFCVTSWU: "fcvt.s.wu",
	OpFCVTSL: "fcvt.s.l", OpFCVTSLU: "fcvt.s.lu",
	OpFCVTWD: "fcvt.w.d", OpFCVTWUD: "fcvt.wu.d",
	OpFCVTLD: "fcvt.l.d", OpFCVTLUD: "fcvt.lu.d",
	OpFCVTDW: "fcvt.d.w", OpFCVTDWU: "fcvt.d.wu",
	OpFCVTDL: "fcvt.d.l", OpFCVTDLU: "fcvt.d.lu",
	OpFCVTSD: "fcvt.s.d", OpFCVTDS: "fcvt.d.s",
	OpFMVXW: "fmv.x.w", OpFMVWX: "fmv.w.x",
	OpFMVXD: "fmv.x.d", OpFMVDX: "fmv.d.x",
}

// String returns the assembler mnemonic of the operation.
func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return "unknown"
}

// Inst is the decoded operand descriptor for one instruction. It is
// produced by a decoder, consumed by exactly one translator call, and then
// discarded. Only the fields appropriate to the matched operation are set.
type Inst struct {
	Op Op

	Rd  int // destination register
	Rs1 int // first source register
	Rs2 int // second source register

	// Imm is the sign-extended immediate. Branch and jump offsets are in
	// bytes, relative to the instruction's own address.
	Imm int64

	// RM is the rounding-mode field of floating-point operations.
	RM int

	// Aq and Rl are the acquire/release bits of atomic operations.
	Aq bool
	Rl bool

	// CSR is the system-register number of CSR operations.
	CSR uint32
}
