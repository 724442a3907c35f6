package translate

import (
	"math"

	"github.com/sarchlab/rvdbt/ir"
	"github.com/sarchlab/rvdbt/state"
)

// getGPR emits t = integer register reg. Register 0 has no storage
// location; its reads materialize the constant zero, so the invariant holds
// even under adversarial decode input.
func (ctx *Context) getGPR(t ir.Ref, reg int) {
	if reg == 0 {
		ctx.b.MovI(t, 0)
		return
	}
	ctx.b.Mov(t, ctx.b.Globals().GPR(reg))
}

// setGPR emits integer register reg = t. Writes to register 0 are
// discarded.
func (ctx *Context) setGPR(reg int, t ir.Ref) {
	if reg != 0 {
		ctx.b.Mov(ctx.b.Globals().GPR(reg), t)
	}
}

// genException commits the current pc and raises excp; the unit terminates
// with no fallthrough.
func (ctx *Context) genException(excp uint32) {
	g := ctx.b.Globals()
	ctx.b.Mov(g.PC, ir.ConstU(ctx.pcNext))
	ctx.b.Call(ir.HelperRaiseException, ir.Ref{}, int64(excp))
	ctx.status = StatusNoReturn
}

// genExceptionBadAddr additionally captures the faulting address, which for
// a misaligned control transfer is the address of the transfer instruction.
func (ctx *Context) genExceptionBadAddr(excp uint32) {
	g := ctx.b.Globals()
	ctx.b.Mov(g.PC, ir.ConstU(ctx.pcNext))
	ctx.b.Mov(g.BadAddr, ir.ConstU(ctx.pcNext))
	ctx.b.Call(ir.HelperRaiseException, ir.Ref{}, int64(excp))
	ctx.status = StatusNoReturn
}

func (ctx *Context) genExcIllegal() {
	ctx.genException(state.ExcpIllegalInst)
}

func (ctx *Context) genExcInstAddrMis() {
	ctx.genExceptionBadAddr(state.ExcpInstAddrMisaligned)
}

// genExcDebug raises the debug exception without touching pc; callers
// commit pc themselves.
func (ctx *Context) genExcDebug() {
	ctx.b.Call(ir.HelperRaiseException, ir.Ref{}, int64(state.ExcpDebug))
}

// useGotoTB reports whether a direct chain to dest is allowed: chaining is
// restricted to targets on the unit's own page and is disabled while
// single-stepping.
func (ctx *Context) useGotoTB(dest uint64) bool {
	if ctx.singleStep {
		return false
	}
	return ctx.pcFirst&^pageMask == dest&^pageMask
}

// genGotoTB emits one unit exit toward dest: a direct chain through link
// slot when allowed, otherwise an indirect dispatch (or a debug exception
// exit while single-stepping).
func (ctx *Context) genGotoTB(slot int, dest uint64) {
	g := ctx.b.Globals()
	if ctx.useGotoTB(dest) {
		ctx.b.GotoTB(slot)
		ctx.b.Mov(g.PC, ir.ConstU(dest))
		ctx.b.ExitTB(int64(slot))
		return
	}
	ctx.b.Mov(g.PC, ir.ConstU(dest))
	if ctx.singleStep {
		ctx.genExcDebug()
	} else {
		ctx.b.LookupGoto()
	}
}

// genSetRM installs the floating-point rounding mode rm unless it is the
// mode this unit last installed. The cache starts unknown each unit; any
// write to a system register (including frm) terminates the unit, so a
// cached value can never be stale.
func (ctx *Context) genSetRM(rm int) {
	if ctx.frm == rm {
		return
	}
	ctx.frm = rm
	// The helper raises illegal-instruction on a reserved mode, so it must
	// see the pc of the instruction that requested it.
	ctx.b.Mov(ctx.b.Globals().PC, ir.ConstU(ctx.pcNext))
	ctx.b.Call(ir.HelperSetRoundingMode, ir.Ref{}, int64(rm))
}

// The arithmetic edge-case generators below produce the architecturally
// mandated results for division corner cases without any branch on operand
// values: the operand pair is rewritten with movcond so the underlying
// divide always executes on safe operands.

// genMulhsu computes the high word of a signed rs1 × unsigned rs2 product:
// the full unsigned product's high word, corrected by rs2 where rs1 is
// negative.
func (ctx *Context) genMulhsu(ret, arg1, arg2 ir.Ref) {
	b := ctx.b
	rl := b.Temp()
	rh := b.Temp()

	b.Mul2(ir.OpMulU2, rl, rh, arg1, arg2)
	b.Op3(ir.OpSar, rl, arg1, ir.Const(63))
	b.Op3(ir.OpAnd, rl, rl, arg2)
	b.Op3(ir.OpSub, ret, rh, rl)
}

// genDiv emits signed division. Divide-by-zero yields -1; MinInt64 / -1
// yields the dividend. On divide-by-zero the operands are rewritten to
// -1/1, on overflow to dividend/1.
func (ctx *Context) genDiv(ret, source1, source2 ir.Ref) {
	b := ctx.b
	cond1 := b.Temp()
	cond2 := b.Temp()
	zero := ir.Const(0)

	b.Setcond(ir.CondEQ, cond2, source2, ir.Const(-1))
	b.Setcond(ir.CondEQ, cond1, source1, ir.Const(math.MinInt64))
	b.Op3(ir.OpAnd, cond1, cond1, cond2) // overflow
	b.Setcond(ir.CondEQ, cond2, source2, zero)
	b.Movcond(ir.CondEQ, source1, cond2, zero, source1, ir.Const(-1))
	b.Op3(ir.OpOr, cond1, cond1, cond2)
	b.Movcond(ir.CondEQ, source2, cond1, zero, source2, ir.Const(1))
	b.Op3(ir.OpDiv, ret, source1, source2)
}

// genDivu emits unsigned division; divide-by-zero yields all ones.
func (ctx *Context) genDivu(ret, source1, source2 ir.Ref) {
	b := ctx.b
	cond1 := b.Temp()
	zero := ir.Const(0)

	b.Setcond(ir.CondEQ, cond1, source2, zero)
	b.Movcond(ir.CondEQ, source1, cond1, zero, source1, ir.Const(-1))
	b.Movcond(ir.CondEQ, source2, cond1, zero, source2, ir.Const(1))
	b.Op3(ir.OpDivU, ret, source1, source2)
}

// genRem emits signed remainder. Divide-by-zero yields the dividend;
// MinInt64 % -1 yields zero (via the divisor rewrite to 1).
func (ctx *Context) genRem(ret, source1, source2 ir.Ref) {
	b := ctx.b
	cond1 := b.Temp()
	cond2 := b.Temp()
	res := b.Temp()
	zero := ir.Const(0)

	b.Setcond(ir.CondEQ, cond2, source2, ir.Const(-1))
	b.Setcond(ir.CondEQ, cond1, source1, ir.Const(math.MinInt64))
	b.Op3(ir.OpAnd, cond2, cond1, cond2) // overflow
	b.Setcond(ir.CondEQ, cond1, source2, zero)
	b.Op3(ir.OpOr, cond2, cond2, cond1)
	b.Movcond(ir.CondEQ, source2, cond2, zero, source2, ir.Const(1))
	b.Op3(ir.OpRem, res, source1, source2)
	b.Movcond(ir.CondEQ, ret, cond1, zero, res, source1)
}

// genRemu emits unsigned remainder; divide-by-zero yields the dividend.
func (ctx *Context) genRemu(ret, source1, source2 ir.Ref) {
	b := ctx.b
	cond1 := b.Temp()
	res := b.Temp()
	zero := ir.Const(0)

	b.Setcond(ir.CondEQ, cond1, source2, zero)
	b.Movcond(ir.CondEQ, source2, cond1, zero, source2, ir.Const(1))
	b.Op3(ir.OpRemU, res, source1, source2)
	b.Movcond(ir.CondEQ, ret, cond1, zero, res, source1)
}

// genJAL translates a direct jump-and-link: misaligned targets raise the
// instruction-address-misaligned exception before any register write.
func (ctx *Context) genJAL(rd int, imm int64) {
	target := ctx.pcNext + uint64(imm)
	if !ctx.core.HasExt(state.ExtC) && target&0x3 != 0 {
		ctx.genExcInstAddrMis()
		return
	}
	if rd != 0 {
		ctx.b.Mov(ctx.b.Globals().GPR(rd), ir.ConstU(ctx.pcSucc))
	}
	ctx.genGotoTB(0, target)
	ctx.status = StatusNoReturn
}
