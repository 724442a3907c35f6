package state_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvdbt/state"
)

var _ = Describe("CPU", func() {
	var cpu *state.CPU

	BeforeEach(func() {
		cpu = &state.CPU{}
	})

	Describe("the zero register", func() {
		It("should always read as zero", func() {
			Expect(cpu.ReadGPR(0)).To(Equal(uint64(0)))
		})

		It("should discard writes", func() {
			cpu.WriteGPR(0, 0xdeadbeef)

			Expect(cpu.ReadGPR(0)).To(Equal(uint64(0)))
			Expect(cpu.GPR[0]).To(Equal(uint64(0)))
		})
	})

	Describe("other registers", func() {
		It("should hold written values", func() {
			cpu.WriteGPR(1, 42)
			cpu.WriteGPR(31, 0xffffffffffffffff)

			Expect(cpu.ReadGPR(1)).To(Equal(uint64(42)))
			Expect(cpu.ReadGPR(31)).To(Equal(uint64(0xffffffffffffffff)))
		})
	})

	Describe("the layout contract", func() {
		It("should place the register banks at fixed distances", func() {
			lay := state.Layout()

			Expect(lay.GPR).To(Equal(uintptr(0)))
			Expect(lay.FPR).To(Equal(lay.GPR + state.NumGPR*8))
			Expect(lay.PC).To(Equal(lay.FPR + state.NumFPR*8))
		})
	})
})
