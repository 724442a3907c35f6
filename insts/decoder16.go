package insts

import "github.com/sarchlab/rvdbt/state"

// pattern16 is one entry of the compressed decode table. Each compressed
// form decodes to the canonical operation it expands to, with the
// compressed register fields biased by +8 and the immediate scattered per
// the 16-bit encoding.
type pattern16 struct {
	Mask    uint16
	Match   uint16
	Op      Op
	Ext     uint32
	Extract func(word uint16, inst *Inst) bool
}

// creg applies the fixed register-index bias of the 3-bit compressed
// register fields (x8..x15 / f8..f15).
func creg(r uint16) int { return 8 + int(r&0x7) }

func sext(v uint64, bits uint) int64 {
	return int64(v<<(64-bits)) >> (64 - bits)
}

// Compressed field accessors.
func cRd(w uint16) int    { return int((w >> 7) & 0x1f) }
func cRs2(w uint16) int   { return int((w >> 2) & 0x1f) }
func cRdP(w uint16) int   { return creg(w >> 2) } // rd'/rs2'
func cRs1P(w uint16) int  { return creg(w >> 7) } // rd'/rs1'
func cImm6(w uint16) uint64 {
	return uint64((w>>7)&0x20 | (w>>2)&0x1f)
}

func exCADDI4SPN(w uint16, inst *Inst) bool {
	imm := uint64((w>>7)&0x30 | (w>>1)&0x3c0 | (w>>2)&0x8 | (w>>4)&0x4)
	if imm == 0 {
		return false
	}
	inst.Rd, inst.Rs1, inst.Imm = cRdP(w), 2, int64(imm)
	return true
}

// offW is the word-scaled offset of C.LW/C.SW.
func offW(w uint16) int64 {
	return int64((w>>7)&0x38 | (w>>4)&0x4 | (w<<1)&0x40)
}

// offD is the doubleword-scaled offset of C.LD/C.SD/C.FLD/C.FSD.
func offD(w uint16) int64 {
	return int64((w>>7)&0x38 | (w<<1)&0xc0)
}

func exCLoadW(w uint16, inst *Inst) bool {
	inst.Rd, inst.Rs1, inst.Imm = cRdP(w), cRs1P(w), offW(w)
	return true
}

func exCLoadD(w uint16, inst *Inst) bool {
	inst.Rd, inst.Rs1, inst.Imm = cRdP(w), cRs1P(w), offD(w)
	return true
}

func exCStoreW(w uint16, inst *Inst) bool {
	inst.Rs1, inst.Rs2, inst.Imm = cRs1P(w), cRdP(w), offW(w)
	return true
}

func exCStoreD(w uint16, inst *Inst) bool {
	inst.Rs1, inst.Rs2, inst.Imm = cRs1P(w), cRdP(w), offD(w)
	return true
}

func exCADDI(w uint16, inst *Inst) bool {
	rd := cRd(w)
	inst.Rd, inst.Rs1, inst.Imm = rd, rd, sext(cImm6(w), 6)
	return true
}

func exCADDIW(w uint16, inst *Inst) bool {
	rd := cRd(w)
	if rd == 0 {
		return false
	}
	inst.Rd, inst.Rs1, inst.Imm = rd, rd, sext(cImm6(w), 6)
	return true
}

func exCLI(w uint16, inst *Inst) bool {
	inst.Rd, inst.Rs1, inst.Imm = cRd(w), 0, sext(cImm6(w), 6)
	return true
}

func exCADDI16SP(w uint16, inst *Inst) bool {
	imm := uint64((w>>3)&0x200 | (w>>2)&0x10 | (w<<1)&0x40 | (w<<4)&0x180 | (w<<3)&0x20)
	if imm == 0 {
		return false
	}
	inst.Rd, inst.Rs1, inst.Imm = 2, 2, sext(imm, 10)
	return true
}

func exCLUI(w uint16, inst *Inst) bool {
	imm := sext(cImm6(w), 6) << 12
	if imm == 0 {
		return false
	}
	inst.Rd, inst.Imm = cRd(w), imm
	return true
}

func exCShift(w uint16, inst *Inst) bool {
	rd := cRs1P(w)
	inst.Rd, inst.Rs1, inst.Imm = rd, rd, int64(cImm6(w))
	return true
}

func exCANDI(w uint16, inst *Inst) bool {
	rd := cRs1P(w)
	inst.Rd, inst.Rs1, inst.Imm = rd, rd, sext(cImm6(w), 6)
	return true
}

func exCRegReg(w uint16, inst *Inst) bool {
	rd := cRs1P(w)
	inst.Rd, inst.Rs1, inst.Rs2 = rd, rd, cRdP(w)
	return true
}

func exCJ(w uint16, inst *Inst) bool {
	imm := uint64((w>>1)&0x800 | (w>>7)&0x10 | (w>>1)&0x300 |
		(w<<2)&0x400 | (w>>1)&0x40 | (w<<1)&0x80 | (w>>2)&0xe | (w<<3)&0x20)
	inst.Rd, inst.Imm = 0, sext(imm, 12)
	return true
}

func exCBranch(w uint16, inst *Inst) bool {
	imm := uint64((w>>4)&0x100 | (w>>7)&0x18 | (w<<1)&0xc0 | (w>>2)&0x6 | (w<<3)&0x20)
	inst.Rs1, inst.Rs2, inst.Imm = cRs1P(w), 0, sext(imm, 9)
	return true
}

func exCSLLI(w uint16, inst *Inst) bool {
	rd := cRd(w)
	inst.Rd, inst.Rs1, inst.Imm = rd, rd, int64(cImm6(w))
	return true
}

func exCLWSP(w uint16, inst *Inst) bool {
	rd := cRd(w)
	if rd == 0 {
		return false
	}
	inst.Rd, inst.Rs1 = rd, 2
	inst.Imm = int64((w>>7)&0x20 | (w>>2)&0x1c | (w<<4)&0xc0)
	return true
}

func offLDSP(w uint16) int64 {
	return int64((w>>7)&0x20 | (w>>2)&0x18 | (w<<4)&0x1c0)
}

func exCLDSP(w uint16, inst *Inst) bool {
	rd := cRd(w)
	if rd == 0 {
		return false
	}
	inst.Rd, inst.Rs1, inst.Imm = rd, 2, offLDSP(w)
	return true
}

// exCFLDSP has no rd != 0 restriction: f0 is a real register.
func exCFLDSP(w uint16, inst *Inst) bool {
	inst.Rd, inst.Rs1, inst.Imm = cRd(w), 2, offLDSP(w)
	return true
}

func exCJR(w uint16, inst *Inst) bool {
	rs1 := cRd(w)
	if rs1 == 0 {
		return false
	}
	inst.Rd, inst.Rs1, inst.Imm = 0, rs1, 0
	return true
}

func exCJALR(w uint16, inst *Inst) bool {
	rs1 := cRd(w)
	if rs1 == 0 {
		return false
	}
	inst.Rd, inst.Rs1, inst.Imm = 1, rs1, 0
	return true
}

func exCMV(w uint16, inst *Inst) bool {
	inst.Rd, inst.Rs1, inst.Rs2 = cRd(w), 0, cRs2(w)
	return true
}

func exCADD(w uint16, inst *Inst) bool {
	rd := cRd(w)
	inst.Rd, inst.Rs1, inst.Rs2 = rd, rd, cRs2(w)
	return true
}

func exCSWSP(w uint16, inst *Inst) bool {
	inst.Rs1, inst.Rs2 = 2, cRs2(w)
	inst.Imm = int64((w>>7)&0x3c | (w>>1)&0xc0)
	return true
}

func exCSDSP(w uint16, inst *Inst) bool {
	inst.Rs1, inst.Rs2 = 2, cRs2(w)
	inst.Imm = int64((w>>7)&0x38 | (w>>1)&0x1c0)
	return true
}

// table16 is the ordered compressed decode table (RV64 layout: no C.JAL).
// More specific masks precede the general entry for their funct3 group.
var table16 = []pattern16{
	// Quadrant 0
	{0xe003, 0x0000, OpADDI, 0, exCADDI4SPN},
	{0xe003, 0x2000, OpFLD, state.ExtD, exCLoadD},
	{0xe003, 0x4000, OpLW, 0, exCLoadW},
	{0xe003, 0x6000, OpLD, 0, exCLoadD},
	{0xe003, 0xa000, OpFSD, state.ExtD, exCStoreD},
	{0xe003, 0xc000, OpSW, 0, exCStoreW},
	{0xe003, 0xe000, OpSD, 0, exCStoreD},

	// Quadrant 1
	{0xe003, 0x0001, OpADDI, 0, exCADDI},
	{0xe003, 0x2001, OpADDIW, 0, exCADDIW},
	{0xe003, 0x4001, OpADDI, 0, exCLI},
	{0xef83, 0x6101, OpADDI, 0, exCADDI16SP},
	{0xe003, 0x6001, OpLUI, 0, exCLUI},
	{0xec03, 0x8001, OpSRLI, 0, exCShift},
	{0xec03, 0x8401, OpSRAI, 0, exCShift},
	{0xec03, 0x8801, OpANDI, 0, exCANDI},
	{0xfc63, 0x8c01, OpSUB, 0, exCRegReg},
	{0xfc63, 0x8c21, OpXOR, 0, exCRegReg},
	{0xfc63, 0x8c41, OpOR, 0, exCRegReg},
	{0xfc63, 0x8c61, OpAND, 0, exCRegReg},
	{0xfc63, 0x9c01, OpSUBW, 0, exCRegReg},
	{0xfc63, 0x9c21, OpADDW, 0, exCRegReg},
	{0xe003, 0xa001, OpJAL, 0, exCJ},
	{0xe003, 0xc001, OpBEQ, 0, exCBranch},
	{0xe003, 0xe001, OpBNE, 0, exCBranch},

	// Quadrant 2
	{0xe003, 0x0002, OpSLLI, 0, exCSLLI},
	{0xe003, 0x2002, OpFLD, state.ExtD, exCFLDSP},
	{0xe003, 0x4002, OpLW, 0, exCLWSP},
	{0xe003, 0x6002, OpLD, 0, exCLDSP},
	{0xffff, 0x9002, OpEBREAK, 0, exNone16},
	{0xf07f, 0x8002, OpJALR, 0, exCJR},
	{0xf07f, 0x9002, OpJALR, 0, exCJALR},
	{0xf003, 0x8002, OpADD, 0, exCMV},
	{0xf003, 0x9002, OpADD, 0, exCADD},
	{0xe003, 0xa002, OpFSD, state.ExtD, exCFSDSP},
	{0xe003, 0xc002, OpSW, 0, exCSWSP},
	{0xe003, 0xe002, OpSD, 0, exCSDSP},
}

func exNone16(_ uint16, _ *Inst) bool { return true }

func exCFSDSP(w uint16, inst *Inst) bool {
	inst.Rs1, inst.Rs2 = 2, cRs2(w)
	inst.Imm = int64((w>>7)&0x38 | (w>>1)&0x1c0)
	return true
}

// Decode16 matches a 16-bit opcode word against the compressed decode
// table. The caller is responsible for checking that the compressed
// extension is enabled; ext still gates entries that need the D extension.
func Decode16(word uint16, ext uint32) (Inst, bool) {
	for i := range table16 {
		p := &table16[i]
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
