package ir_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvdbt/ir"
	"github.com/sarchlab/rvdbt/state"
)

var _ = Describe("Globals", func() {
	var g *ir.Globals

	BeforeEach(func() {
		g = ir.BindGlobals()
	})

	It("should not bind integer register zero", func() {
		Expect(g.GPR(0).Valid()).To(BeFalse())
	})

	It("should bind the remaining integer registers under ABI names", func() {
		Expect(g.GPR(1).Valid()).To(BeTrue())
		Expect(g.Name(g.GPR(1))).To(Equal("ra"))
		Expect(g.Name(g.GPR(2))).To(Equal("sp"))
		Expect(g.Name(g.GPR(31))).To(Equal("t6"))
	})

	It("should bind all floating-point registers including f0", func() {
		Expect(g.FPR(0).Valid()).To(BeTrue())
		Expect(g.Name(g.FPR(0))).To(Equal("ft0"))
		Expect(g.Name(g.FPR(10))).To(Equal("fa0"))
	})

	It("should bind the non-register state fields", func() {
		Expect(g.Name(g.PC)).To(Equal("pc"))
		Expect(g.Name(g.BadAddr)).To(Equal("badaddr"))
		Expect(g.Name(g.LoadRes)).To(Equal("load_res"))
		Expect(g.Name(g.LoadVal)).To(Equal("load_val"))
	})

	It("should agree with the CPU record layout", func() {
		lay := state.Layout()

		Expect(g.Desc(g.GPR(1).ID).Off).To(Equal(lay.GPR + 8))
		Expect(g.Desc(g.FPR(0).ID).Off).To(Equal(lay.FPR))
		Expect(g.Desc(g.PC.ID).Off).To(Equal(lay.PC))
	})

	It("should count 31 integer, 32 float and 4 state globals", func() {
		Expect(g.NumGlobals()).To(Equal(31 + 32 + 4))
	})
})

var _ = Describe("Builder", func() {
	var (
		g *ir.Globals
		b *ir.Builder
	)

	BeforeEach(func() {
		g = ir.BindGlobals()
		b = ir.NewBuilder(g)
	})

	It("should number temporaries and labels from zero", func() {
		t0 := b.Temp()
		t1 := b.Temp()
		l0 := b.NewLabel()

		Expect(t0.ID).To(Equal(int32(0)))
		Expect(t1.ID).To(Equal(int32(1)))
		Expect(l0).To(Equal(0))
	})

	It("should seal the emitted ops into a program", func() {
		t := b.Temp()
		b.InsnStart(0x1000)
		b.MovI(t, 5)
		b.Mov(g.GPR(1), t)
		b.LookupGoto()

		prog := b.Finish(0x1000, 0x1004)

		Expect(prog.Ops).To(HaveLen(4))
		Expect(prog.PCFirst).To(Equal(uint64(0x1000)))
		Expect(prog.PCEnd).To(Equal(uint64(0x1004)))
		Expect(prog.NumTemps).To(Equal(1))
		Expect(prog.NumLabels).To(Equal(0))
	})

	It("should record helper call arguments in order", func() {
		d := b.Temp()
		b.Call(ir.HelperCSR, d, ir.CSRRS, ir.Const(2), ir.Const(0), ir.Const(0))

		prog := b.Finish(0, 0)
		op := prog.Ops[0]

		Expect(op.Code).To(Equal(ir.OpCall))
		Expect(op.Fn).To(Equal(ir.HelperCSR))
		Expect(op.Aux).To(Equal(ir.CSRRS))
		Expect(op.A.Val).To(Equal(int64(2)))
	})
})
