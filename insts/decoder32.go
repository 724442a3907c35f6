package insts

import "github.com/sarchlab/rvdbt/state"

// pattern32 is one entry of the 32-bit decode table: an opcode word matches
// the entry when word&Mask == Match. Entries are checked in table order.
type pattern32 struct {
	Mask  uint32
	Match uint32
	Op    Op
	// Ext holds the extension bits that must be enabled for the entry to
	// participate in matching.
	Ext uint32
	// Extract fills the operand fields. It may reject a structurally
	// reserved encoding by returning false, which the caller treats the
	// same as no match.
	Extract func(word uint32, inst *Inst) bool
}

func regRd(w uint32) int  { return int((w >> 7) & 0x1f) }
func regRs1(w uint32) int { return int((w >> 15) & 0x1f) }
func regRs2(w uint32) int { return int((w >> 20) & 0x1f) }

// immI is the sign-extended 12-bit I-type immediate.
func immI(w uint32) int64 { return int64(int32(w)) >> 20 }

// immS is the sign-extended 12-bit S-type immediate.
func immS(w uint32) int64 {
	return (int64(int32(w&0xfe000000)) >> 20) | int64((w>>7)&0x1f)
}

// immB is the sign-extended 13-bit B-type branch offset.
func immB(w uint32) int64 {
	return (int64(int32(w&0x80000000)) >> 19) |
		int64((w&0x80)<<4) |
		int64((w>>20)&0x7e0) |
		int64((w>>7)&0x1e)
}

// immU is the sign-extended 32-bit U-type immediate (already shifted left
// by 12 in the encoding).
func immU(w uint32) int64 { return int64(int32(w & 0xfffff000)) }

// immJ is the sign-extended 21-bit J-type jump offset.
func immJ(w uint32) int64 {
	return (int64(int32(w&0x80000000)) >> 11) |
		int64(w&0xff000) |
		int64((w>>9)&0x800) |
		int64((w>>20)&0x7fe)
}

func exR(w uint32, inst *Inst) bool {
	inst.Rd, inst.Rs1, inst.Rs2 = regRd(w), regRs1(w), regRs2(w)
	return true
}

func exRrm(w uint32, inst *Inst) bool {
	exR(w, inst)
	inst.RM = int((w >> 12) & 0x7)
	return true
}

// exR1rm extracts one-source floating-point forms (sqrt, conversions); the
// rs2 field is part of the match.
func exR1rm(w uint32, inst *Inst) bool {
	inst.Rd, inst.Rs1 = regRd(w), regRs1(w)
	inst.RM = int((w >> 12) & 0x7)
	return true
}

func exI(w uint32, inst *Inst) bool {
	inst.Rd, inst.Rs1, inst.Imm = regRd(w), regRs1(w), immI(w)
	return true
}

func exShift64(w uint32, inst *Inst) bool {
	inst.Rd, inst.Rs1, inst.Imm = regRd(w), regRs1(w), int64((w>>20)&0x3f)
	return true
}

func exShift32(w uint32, inst *Inst) bool {
	inst.Rd, inst.Rs1, inst.Imm = regRd(w), regRs1(w), int64((w>>20)&0x1f)
	return true
}

func exS(w uint32, inst *Inst) bool {
	inst.Rs1, inst.Rs2, inst.Imm = regRs1(w), regRs2(w), immS(w)
	return true
}

func exB(w uint32, inst *Inst) bool {
	inst.Rs1, inst.Rs2, inst.Imm = regRs1(w), regRs2(w), immB(w)
	return true
}

func exU(w uint32, inst *Inst) bool {
	inst.Rd, inst.Imm = regRd(w), immU(w)
	return true
}

func exJ(w uint32, inst *Inst) bool {
	inst.Rd, inst.Imm = regRd(w), immJ(w)
	return true
}

func exCSR(w uint32, inst *Inst) bool {
	inst.Rd, inst.Rs1, inst.CSR = regRd(w), regRs1(w), w>>20
	return true
}

// exCSRI extracts the immediate CSR forms; the rs1 field is a zero-extended
// 5-bit immediate.
func exCSRI(w uint32, inst *Inst) bool {
	inst.Rd, inst.Imm, inst.CSR = regRd(w), int64((w>>15)&0x1f), w>>20
	return true
}

func exAmo(w uint32, inst *Inst) bool {
	exR(w, inst)
	inst.Aq = (w>>26)&1 == 1
	inst.Rl = (w>>25)&1 == 1
	return true
}

func exNone(_ uint32, _ *Inst) bool { return true }

// table32 is the ordered 32-bit decode table. The first enabled entry whose
// mask/match pair covers the word wins.
var table32 = []pattern32{
	// Base integer
	{0x0000007f, 0x00000037, OpLUI, 0, exU},
	{0x0000007f, 0x00000017, OpAUIPC, 0, exU},
	{0x0000007f, 0x0000006f, OpJAL, 0, exJ},
	{0x0000707f, 0x00000067, OpJALR, 0, exI},
	{0x0000707f, 0x00000063, OpBEQ, 0, exB},
	{0x0000707f, 0x00001063, OpBNE, 0, exB},
	{0x0000707f, 0x00004063, OpBLT, 0, exB},
	{0x0000707f, 0x00005063, OpBGE, 0, exB},
	{0x0000707f, 0x00006063, OpBLTU, 0, exB},
	{0x0000707f, 0x00007063, OpBGEU, 0, exB},
	{0x0000707f, 0x00000003, OpLB, 0, exI},
	{0x0000707f, 0x00001003, OpLH, 0, exI},
	{0x0000707f, 0x00002003, OpLW, 0, exI},
	{0x0000707f, 0x00003003, OpLD, 0, exI},
	{0x0000707f, 0x00004003, OpLBU, 0, exI},
	{0x0000707f, 0x00005003, OpLHU, 0, exI},
	{0x0000707f, 0x00006003, OpLWU, 0, exI},
	{0x0000707f, 0x00000023, OpSB, 0, exS},
	{0x0000707f, 0x00001023, OpSH, 0, exS},
	{0x0000707f, 0x00002023, OpSW, 0, exS},
	{0x0000707f, 0x00003023, OpSD, 0, exS},
	{0x0000707f, 0x00000013, OpADDI, 0, exI},
	{0x0000707f, 0x00002013, OpSLTI, 0, exI},
	{0x0000707f, 0x00003013, OpSLTIU, 0, exI},
	{0x0000707f, 0x00004013, OpXORI, 0, exI},
	{0x0000707f, 0x00006013, OpORI, 0, exI},
	{0x0000707f, 0x00007013, OpANDI, 0, exI},
	{0xfc00707f, 0x00001013, OpSLLI, 0, exShift64},
	{0xfc00707f, 0x00005013, OpSRLI, 0, exShift64},
	{0xfc00707f, 0x40005013, OpSRAI, 0, exShift64},
	{0xfe00707f, 0x00000033, OpADD, 0, exR},
	{0xfe00707f, 0x40000033, OpSUB, 0, exR},
	{0xfe00707f, 0x00001033, OpSLL, 0, exR},
	{0xfe00707f, 0x00002033, OpSLT, 0, exR},
	{0xfe00707f, 0x00003033, OpSLTU, 0, exR},
	{0xfe00707f, 0x00004033, OpXOR, 0, exR},
	{0xfe00707f, 0x00005033, OpSRL, 0, exR},
	{0xfe00707f, 0x40005033, OpSRA, 0, exR},
	{0xfe00707f, 0x00006033, OpOR, 0, exR},
	{0xfe00707f, 0x00007033, OpAND, 0, exR},

	// RV64 word forms
	{0x0000707f, 0x0000001b, OpADDIW, 0, exI},
	{0xfe00707f, 0x0000101b, OpSLLIW, 0, exShift32},
	{0xfe00707f, 0x0000501b, OpSRLIW, 0, exShift32},
	{0xfe00707f, 0x4000501b, OpSRAIW, 0, exShift32},
	{0xfe00707f, 0x0000003b, OpADDW, 0, exR},
	{0xfe00707f, 0x4000003b, OpSUBW, 0, exR},
	{0xfe00707f, 0x0000103b, OpSLLW, 0, exR},
	{0xfe00707f, 0x0000503b, OpSRLW, 0, exR},
	{0xfe00707f, 0x4000503b, OpSRAW, 0, exR},

	// Fences and system
	{0x0000707f, 0x0000000f, OpFENCE, 0, exNone},
	{0x0000707f, 0x0000100f, OpFENCEI, 0, exNone},
	{0xffffffff, 0x00000073, OpECALL, 0, exNone},
	{0xffffffff, 0x00100073, OpEBREAK, 0, exNone},
	{0x0000707f, 0x00001073, OpCSRRW, 0, exCSR},
	{0x0000707f, 0x00002073, OpCSRRS, 0, exCSR},
	{0x0000707f, 0x00003073, OpCSRRC, 0, exCSR},
	{0x0000707f, 0x00005073, OpCSRRWI, 0, exCSRI},
	{0x0000707f, 0x00006073, OpCSRRSI, 0, exCSRI},
	{0x0000707f, 0x00007073, OpCSRRCI, 0, exCSRI},

	// M extension
	{0xfe00707f, 0x02000033, OpMUL, state.ExtM, exR},
	{0xfe00707f, 0x02001033, OpMULH, state.ExtM, exR},
	{0xfe00707f, 0x02002033, OpMULHSU, state.ExtM, exR},
	{0xfe00707f, 0x02003033, OpMULHU, state.ExtM, exR},
	{0xfe00707f, 0x02004033, OpDIV, state.ExtM, exR},
	{0xfe00707f, 0x02005033, OpDIVU, state.ExtM, exR},
	{0xfe00707f, 0x02006033, OpREM, state.ExtM, exR},
	{0xfe00707f, 0x02007033, OpREMU, state.ExtM, exR},
	{0xfe00707f, 0x0200003b, OpMULW, state.ExtM, exR},
	{0xfe00707f, 0x0200403b, OpDIVW, state.ExtM, exR},
	{0xfe00707f, 0x0200503b, OpDIVUW, state.ExtM, exR},
	{0xfe00707f, 0x0200603b, OpREMW, state.ExtM, exR},
	{0xfe00707f, 0x0200703b, OpREMUW, state.ExtM, exR},

	// A extension. LR requires rs2 == 0, so its mask covers that field.
	{0xf9f0707f, 0x1000202f, OpLRW, state.ExtA, exAmo},
	{0xf800707f, 0x1800202f, OpSCW, state.ExtA, exAmo},
	{0xf800707f, 0x0800202f, OpAMOSWAPW, state.ExtA, exAmo},
	{0xf800707f, 0x0000202f, OpAMOADDW, state.ExtA, exAmo},
	{0xf800707f, 0x2000202f, OpAMOXORW, state.ExtA, exAmo},
	{0xf800707f, 0x6000202f, OpAMOANDW, state.ExtA, exAmo},
	{0xf800707f, 0x4000202f, OpAMOORW, state.ExtA, exAmo},
	{0xf800707f, 0x8000202f, OpAMOMINW, state.ExtA, exAmo},
	{0xf800707f, 0xa000202f, OpAMOMAXW, state.ExtA, exAmo},
	{0xf800707f, 0xc000202f, OpAMOMINUW, state.ExtA, exAmo},
	{0xf800707f, 0xe000202f, OpAMOMAXUW, state.ExtA, exAmo},
	{0xf9f0707f, 0x1000302f, OpLRD, state.ExtA, exAmo},
	{0xf800707f, 0x1800302f, OpSCD, state.ExtA, exAmo},
	{0xf800707f, 0x0800302f, OpAMOSWAPD, state.ExtA, exAmo},
	{0xf800707f, 0x0000302f, OpAMOADDD, state.ExtA, exAmo},
	{0xf800707f, 0x2000302f, OpAMOXORD, state.ExtA, exAmo},
	{0xf800707f, 0x6000302f, OpAMOANDD, state.ExtA, exAmo},
	{0xf800707f, 0x4000302f, OpAMOORD, state.ExtA, exAmo},
	{0xf800707f, 0x8000302f, OpAMOMIND, state.ExtA, exAmo},
	{0xf800707f, 0xa000302f, OpAMOMAXD, state.ExtA, exAmo},
	{0xf800707f, 0xc000302f, OpAMOMINUD, state.ExtA, exAmo},
	{0xf800707f, 0xe000302f, OpAMOMAXUD, state.ExtA, exAmo},

	// F extension
	{0x0000707f, 0x00002007, OpFLW, state.ExtF, exI},
	{0x0000707f, 0x00002027, OpFSW, state.ExtF, exS},
	{0xfe00007f, 0x00000053, OpFADDS, state.ExtF, exRrm},
	{0xfe00007f, 0x08000053, OpFSUBS, state.ExtF, exRrm},
	{0xfe00007f, 0x10000053, OpFMULS, state.ExtF, exRrm},
	{0xfe00007f, 0x18000053, OpFDIVS, state.ExtF, exRrm},
	{0xfff0007f, 0x58000053, OpFSQRTS, state.ExtF, exR1rm},
	{0xfe00707f, 0x20000053, OpFSGNJS, state.ExtF, exR},
	{0xfe00707f, 0x20001053, OpFSGNJNS, state.ExtF, exR},
	{0xfe00707f, 0x20002053, OpFSGNJXS, state.ExtF, exR},
	{0xfe00707f, 0x28000053, OpFMINS, state.ExtF, exR},
	{0xfe00707f, 0x28001053, OpFMAXS, state.ExtF, exR},
	{0xfe00707f, 0xa0002053, OpFEQS, state.ExtF, exR},
	{0xfe00707f, 0xa0001053, OpFLTS, state.ExtF, exR},
	{0xfe00707f, 0xa0000053, OpFLES, state.ExtF, exR},
	{0xfff0007f, 0xc0000053, OpFCVTWS, state.ExtF, exR1rm},
	{0xfff0007f, 0xc0100053, OpFCVTWUS, state.ExtF, exR1rm},
	{0xfff0007f, 0xc0200053, OpFCVTLS, state.ExtF, exR1rm},
	{0xfff0007f, 0xc0300053, OpFCVTLUS, state.ExtF, exR1rm},
	{0xfff0007f, 0xd0000053, OpFCVTSW, state.ExtF, exR1rm},
	{0xfff0007f, 0xd0100053, OpFCVTSWU, state.ExtF, exR1rm},
	{0xfff0007f, 0xd0200053, OpFCVTSL, state.ExtF, exR1rm},
	{0xfff0007f, 0xd0300053, OpFCVTSLU, state.ExtF, exR1rm},
	{0xfff0707f, 0xe0000053, OpFMVXW, state.ExtF, exR},
	{0xfff0707f, 0xf0000053, OpFMVWX, state.ExtF, exR},

	// D extension
	{0x0000707f, 0x00003007, OpFLD, state.ExtD, exI},
	{0x0000707f, 0x00003027, OpFSD, state.ExtD, exS},
	{0xfe00007f, 0x02000053, OpFADDD, state.ExtD, exRrm},
	{0xfe00007f, 0x0a000053, OpFSUBD, state.ExtD, exRrm},
	{0xfe00007f, 0x12000053, OpFMULD, state.ExtD, exRrm},
	{0xfe00007f, 0x1a000053, OpFDIVD, state.ExtD, exRrm},
	{0xfff0007f, 0x5a000053, OpFSQRTD, state.ExtD, exR1rm},
	{0xfe00707f, 0x22000053, OpFSGNJD, state.ExtD, exR},
	{0xfe00707f, 0x22001053, OpFSGNJND, state.ExtD, exR},
	{0xfe00707f, 0x22002053, OpFSGNJXD, state.ExtD, exR},
	{0xfe00707f, 0x2a000053, OpFMIND, state.ExtD, exR},
	{0xfe00707f, 0x2a001053, OpFMAXD, state.ExtD, exR},
	{0xfe00707f, 0xa2002053, OpFEQD, state.ExtD, exR},
	{0xfe00707f, 0xa2001053, OpFLTD, state.ExtD, exR},
	{0xfe00707f, 0xa2000053, OpFLED, state.ExtD, exR},
	{0xfff0007f, 0xc2000053, OpFCVTWD, state.ExtD, exR1rm},
	{0xfff0007f, 0xc2100053, OpFCVTWUD, state.ExtD, exR1rm},
	{0xfff0007f, 0xc2200053, OpFCVTLD, state.ExtD, exR1rm},
	{0xfff0007f, 0xc2300053, OpFCVTLUD, state.ExtD, exR1rm},
	{0xfff0007f, 0xd2000053, OpFCVTDW, state.ExtD, exR1rm},
	{0xfff0007f, 0xd2100053, OpFCVTDWU, state.ExtD, exR1rm},
	{0xfff0007f, 0xd2200053, OpFCVTDL, state.ExtD, exR1rm},
	{0xfff0007f, 0xd2300053, OpFCVTDLU, state.ExtD, exR1rm},
	{0xfff0007f, 0x40100053, OpFCVTSD, state.ExtD, exR1rm},
	{0xfff0007f, 0x42000053, OpFCVTDS, state.ExtD, exR1rm},
	{0xfff0707f, 0xe2000053, OpFMVXD, state.ExtD, exR},
	{0xfff0707f, 0xf2000053, OpFMVDX, state.ExtD, exR},
}

// Decode32 matches a 32-bit opcode word against the decode table. It
// returns the operand descriptor of the first matching entry whose required
// extensions are all in ext, or ok == false when nothing matches. It never
// fabricates a descriptor for the absence of a match.
func Decode32(word uint32, ext uint32) (Inst, bool) {
	for i := range table32 {
		p := &table32[i]
		if word&p.Mask != p.Match {
			continue
		}
		if p.Ext&ext != p.Ext {
			continue
		}
		inst := Inst{Op: p.Op}
		if !p.Extract(word, &inst) {
			return Inst{}, false
		}
		return inst, true
	}
	return Inst{}, false
}
