package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvdbt/insts"
	"github.com/sarchlab/rvdbt/state"
)

var _ = Describe("Decode16", func() {
	ext := state.ExtG | state.ExtC

	Describe("Quadrant 0", func() {
		// C.ADDI4SPN x8, 8 -> 0x0020
		It("should expand C.ADDI4SPN to ADDI off sp", func() {
			inst, ok := insts.Decode16(0x0020, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(8))
			Expect(inst.Rs1).To(Equal(2))
			Expect(inst.Imm).To(Equal(int64(8)))
		})

		It("should reject the all-zero word", func() {
			_, ok := insts.Decode16(0x0000, ext)

			Expect(ok).To(BeFalse())
		})

		// C.LW x9, 4(x10) -> 0x4144
		It("should expand C.LW with a word-scaled offset", func() {
			inst, ok := insts.Decode16(0x4144, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpLW))
			Expect(inst.Rd).To(Equal(9))
			Expect(inst.Rs1).To(Equal(10))
			Expect(inst.Imm).To(Equal(int64(4)))
		})
	})

	Describe("Quadrant 1", func() {
		// C.ADDI x3, 1 -> 0x0185
		It("should expand C.ADDI", func() {
			inst, ok := insts.Decode16(0x0185, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(3))
			Expect(inst.Rs1).To(Equal(3))
			Expect(inst.Imm).To(Equal(int64(1)))
		})

		// C.LI x5, -1 -> 0x52FD
		It("should expand C.LI with a sign-extended immediate", func() {
			inst, ok := insts.Decode16(0x52FD, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpADDI))
			Expect(inst.Rd).To(Equal(5))
			Expect(inst.Rs1).To(Equal(0))
			Expect(inst.Imm).To(Equal(int64(-1)))
		})

		// C.LUI x15, 0x1000 -> 0x6785
		It("should expand C.LUI for a non-sp destination", func() {
			inst, ok := insts.Decode16(0x6785, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpLUI))
			Expect(inst.Rd).To(Equal(15))
			Expect(inst.Imm).To(Equal(int64(0x1000)))
		})

		// C.SRLI x8, 3 -> 0x800D
		It("should expand C.SRLI", func() {
			inst, ok := insts.Decode16(0x800D, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpSRLI))
			Expect(inst.Rd).To(Equal(8))
			Expect(inst.Imm).To(Equal(int64(3)))
		})

		// C.J +16 -> 0xA801
		It("should expand C.J to JAL x0", func() {
			inst, ok := insts.Decode16(0xA801, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpJAL))
			Expect(inst.Rd).To(Equal(0))
			Expect(inst.Imm).To(Equal(int64(16)))
		})

		// C.BEQZ x8, +8 -> 0xC401
		It("should expand C.BEQZ to BEQ against x0", func() {
			inst, ok := insts.Decode16(0xC401, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpBEQ))
			Expect(inst.Rs1).To(Equal(8))
			Expect(inst.Rs2).To(Equal(0))
			Expect(inst.Imm).To(Equal(int64(8)))
		})
	})

	Describe("Quadrant 2", func() {
		// C.SLLI x1, 4 -> 0x0092
		It("should expand C.SLLI", func() {
			inst, ok := insts.Decode16(0x0092, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpSLLI))
			Expect(inst.Rd).To(Equal(1))
			Expect(inst.Imm).To(Equal(int64(4)))
		})

		// C.LWSP x1, 8 -> 0x40A2
		It("should expand C.LWSP off sp", func() {
			inst, ok := insts.Decode16(0x40A2, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpLW))
			Expect(inst.Rd).To(Equal(1))
			Expect(inst.Rs1).To(Equal(2))
			Expect(inst.Imm).To(Equal(int64(8)))
		})

		// C.JR x1 -> 0x8082
		It("should expand C.JR to JALR x0", func() {
			inst, ok := insts.Decode16(0x8082, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpJALR))
			Expect(inst.Rd).To(Equal(0))
			Expect(inst.Rs1).To(Equal(1))
			Expect(inst.Imm).To(Equal(int64(0)))
		})

		// C.JALR x5 -> 0x9282
		It("should expand C.JALR to JALR x1", func() {
			inst, ok := insts.Decode16(0x9282, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpJALR))
			Expect(inst.Rd).To(Equal(1))
			Expect(inst.Rs1).To(Equal(5))
		})

		// C.MV x1, x2 -> 0x808A
		It("should expand C.MV to ADD with x0 source", func() {
			inst, ok := insts.Decode16(0x808A, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.Rd).To(Equal(1))
			Expect(inst.Rs1).To(Equal(0))
			Expect(inst.Rs2).To(Equal(2))
		})

		// C.ADD x1, x2 -> 0x908A
		It("should expand C.ADD", func() {
			inst, ok := insts.Decode16(0x908A, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpADD))
			Expect(inst.Rd).To(Equal(1))
			Expect(inst.Rs1).To(Equal(1))
			Expect(inst.Rs2).To(Equal(2))
		})

		It("should expand C.EBREAK ahead of the C.JALR group", func() {
			inst, ok := insts.Decode16(0x9002, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpEBREAK))
		})

		// C.SWSP x8, 4 -> 0xC222
		It("should expand C.SWSP off sp", func() {
			inst, ok := insts.Decode16(0xC222, ext)

			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpSW))
			Expect(inst.Rs1).To(Equal(2))
			Expect(inst.Rs2).To(Equal(8))
			Expect(inst.Imm).To(Equal(int64(4)))
		})

		// C.FLDSP f9, 8 -> 0x24A2
		It("should gate C.FLDSP on the D extension", func() {
			inst, ok := insts.Decode16(0x24A2, ext)
			Expect(ok).To(BeTrue())
			Expect(inst.Op).To(Equal(insts.OpFLD))
			Expect(inst.Rd).To(Equal(9))
			Expect(inst.Imm).To(Equal(int64(8)))

			_, ok = insts.Decode16(0x24A2, ext&^state.ExtD)
			Expect(ok).To(BeFalse())
		})

		// C.JR with rs1 == 0 is reserved.
		It("should reject the reserved C.JR encoding", func() {
			_, ok := insts.Decode16(0x8002, ext)

			Expect(ok).To(BeFalse())
		})
	})
})
