package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvdbt/insts"
	"github.com/sarchlab/rvdbt/state"
)

var _ = Describe("Decode32", func() {
	ext := state.ExtG | state.ExtC

	Describe("Base integer", func() {
		// ADDI x3, x3, 5 -> 0x00518193
		It("should decode ADDI x3, x3, 5", func() {
			inst, ok := insts.Decode32(0x00518193, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(3))
			Expect(inst.Rs1).To(Equal(3))
			Expect(inst.Imm).To(Equal(int64(5)))
		})

		// LUI x1, 0x12345 -> 0x123450B7
		It("should decode LUI x1, 0x12345", func() {
			inst, ok := insts.Decode32(0x123450B7, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpLUI))
			Expect(inst.Rd).To(Equal(1))
			Expect(inst.Imm).To(Equal(int64(0x12345000)))
		})

		// ADD x5, x6, x7 -> 0x007302B3
		It("should decode ADD x5, x6, x7", func() {
			inst, ok := insts.Decode32(0x007302B3, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.Rd).To(Equal(5))
			Expect(inst.Rs1).To(Equal(6))
			Expect(inst.Rs2).To(Equal(7))
		})

		// SLLI x1, x2, 63 -> 0x03F11093
		It("should decode SLLI with a 6-bit shift amount", func() {
			inst, ok := insts.Decode32(0x03F11093, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpSLLI))
			Expect(inst.Imm).To(Equal(int64(63)))
		})

		// SRAI x1, x2, 4 -> 0x40415093
		It("should decode SRAI distinct from SRLI", func() {
			inst, ok := insts.Decode32(0x40415093, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpSRAI))
			Expect(inst.Imm).To(Equal(int64(4)))
		})

		// LD x1, 16(x2) -> 0x01013083
		It("should decode LD x1, 16(x2)", func() {
			inst, ok := insts.Decode32(0x01013083, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpLD))
			Expect(inst.Rd).To(Equal(1))
			Expect(inst.Rs1).To(Equal(2))
			Expect(inst.Imm).To(Equal(int64(16)))
		})

		// SD x3, -8(x2) -> 0xFE313C23
		It("should decode SD with a negative offset", func() {
			inst, ok := insts.Decode32(0xFE313C23, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpSD))
			Expect(inst.Rs1).To(Equal(2))
			Expect(inst.Rs2).To(Equal(3))
			Expect(inst.Imm).To(Equal(int64(-8)))
		})
	})

	Describe("Control transfer", func() {
		// JAL x0, +2 -> 0x0020006F
		It("should decode JAL with a byte offset", func() {
			inst, ok := insts.Decode32(0x0020006F, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Rd).To(Equal(0))
			Expect(inst.Imm).To(Equal(int64(2)))
		})

		// JALR x1, 0(x5) -> 0x000280E7
		It("should decode JALR x1, 0(x5)", func() {
			inst, ok := insts.Decode32(0x000280E7, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpJALR))
			Expect(inst.Rd).To(Equal(1))
			Expect(inst.Rs1).To(Equal(5))
		})

		// BEQ x1, x2, +8 -> 0x00208463
		It("should decode BEQ with a positive offset", func() {
			inst, ok := insts.Decode32(0x00208463, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpBEQ))
			Expect(inst.Rs1).To(Equal(1))
			Expect(inst.Rs2).To(Equal(2))
			Expect(inst.Imm).To(Equal(int64(8)))
		})

		// BNE x1, x2, -4 -> 0xFE209EE3
		It("should decode BNE with a negative offset", func() {
			inst, ok := insts.Decode32(0xFE209EE3, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpBNE))
			Expect(inst.Imm).To(Equal(int64(-4)))
		})
	})

	Describe("System", func() {
		It("should decode ECALL", func() {
			inst, ok := insts.Decode32(0x00000073, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpECALL))
		})

		It("should decode EBREAK", func() {
			inst, ok := insts.Decode32(0x00100073, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpEBREAK))
		})

		// CSRRS x5, frm, x0 -> 0x002022F3
		It("should decode CSRRS with the CSR number", func() {
			inst, ok := insts.Decode32(0x002022F3, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpCSRRS))
			Expect(inst.Rd).To(Equal(5))
			Expect(inst.Rs1).To(Equal(0))
			Expect(inst.CSR).To(Equal(uint32(2)))
		})

		// CSRRWI frm, 3 (rd=x0) -> 0x0021D073
		It("should decode CSRRWI with a zero-extended immediate", func() {
			inst, ok := insts.Decode32(0x0021D073, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpCSRRWI))
			Expect(inst.Rd).To(Equal(0))
			Expect(inst.Imm).To(Equal(int64(3)))
			Expect(inst.CSR).To(Equal(uint32(2)))
		})
	})

	Describe("M extension", func() {
		// MULH x1, x2, x3 -> 0x023110B3
		It("should decode MULH when M is enabled", func() {
			inst, ok := insts.Decode32(0x023110B3, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpMULH))
		})

		// DIV x1, x2, x3 -> 0x023140B3
		It("should decode DIV when M is enabled", func() {
			inst, ok := insts.Decode32(0x023140B3, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpDIV))
		})

		It("should reject M instructions when M is disabled", func() {
			_, ok := insts.Decode32(0x023140B3, ext&^state.ExtM)

			Expect(ok).To(BeFalse())
		})
	})

	Describe("A extension", func() {
		// LR.W x5, (x6) -> 0x100322AF
		It("should decode LR.W", func() {
			inst, ok := insts.Decode32(0x100322AF, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpLRW))
			Expect(inst.Rd).To(Equal(5))
			Expect(inst.Rs1).To(Equal(6))
		})

		// AMOADD.W x5, x7, (x6) -> 0x007322AF
		It("should decode AMOADD.W", func() {
			inst, ok := insts.Decode32(0x007322AF, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpAMOADDW))
			Expect(inst.Rd).To(Equal(5))
			Expect(inst.Rs1).To(Equal(6))
			Expect(inst.Rs2).To(Equal(7))
		})
	})

	Describe("F and D extensions", func() {
		// FADD.S f1, f2, f3, dyn -> 0x003170D3
		It("should decode FADD.S with the rounding-mode field", func() {
			inst, ok := insts.Decode32(0x003170D3, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpFADDS))
			Expect(inst.Rd).To(Equal(1))
			Expect(inst.Rs1).To(Equal(2))
			Expect(inst.Rs2).To(Equal(3))
			Expect(inst.RM).To(Equal(7))
		})

		// FSQRT.S f1, f2 -> 0x580100D3
		It("should decode FSQRT.S as a one-source form", func() {
			inst, ok := insts.Decode32(0x580100D3, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpFSQRTS))
			Expect(inst.Rd).To(Equal(1))
			Expect(inst.Rs1).To(Equal(2))
		})

		// FMV.X.W x1, f1 -> 0xE00080D3
		It("should decode FMV.X.W", func() {
			inst, ok := insts.Decode32(0xE00080D3, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpFMVXW))
		})

		It("should reject F instructions when F is disabled", func() {
			_, ok := insts.Decode32(0x003170D3, ext&^state.ExtF)

			Expect(ok).To(BeFalse())
		})
	})

	It("should reject an all-zero word", func() {
		_, ok := insts.Decode32(0x00000000, ext)

		Expect(ok).To(BeFalse())
	})

	It("should reject an unknown opcode", func() {
		_, ok := insts.Decode32(0xFFFFFFFF, ext)

		Expect(ok).To(BeFalse())
	})
})
