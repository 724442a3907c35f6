package translate

import (
	"github.com/sarchlab/rvdbt/insts"
	"github.com/sarchlab/rvdbt/ir"
)

// The load-reserved/store-conditional pair is a per-core single-flag
// approximation: the reservation address and the value observed by the
// reserving load live in the persistent CPU state, and the conditional
// store succeeds only when both still match.

func lr(size uint8) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		g := b.Globals()
		addr := b.Temp()
		ctx.getGPR(addr, inst.Rs1)
		d := b.Temp()
		b.Load(ctx.memOp(size, true), d, addr)
		b.Mov(g.LoadRes, addr)
		b.Mov(g.LoadVal, d)
		ctx.setGPR(inst.Rd, d)
		return true
	}
}

func sc(size uint8) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		g := b.Globals()
		fail := b.NewLabel()
		done := b.NewLabel()

		addr := b.Temp()
		ctx.getGPR(addr, inst.Rs1)
		b.Brcond(ir.CondNE, addr, g.LoadRes, fail)

		cur := b.Temp()
		b.Load(ctx.memOp(size, true), cur, addr)
		b.Brcond(ir.CondNE, cur, g.LoadVal, fail)

		src := b.Temp()
		ctx.getGPR(src, inst.Rs2)
		b.Store(ctx.memOp(size, false), addr, src)
		ctx.setGPRI(inst.Rd, 0)
		b.Br(done)

		b.SetLabel(fail)
		ctx.setGPRI(inst.Rd, 1)

		b.SetLabel(done)
		// Either way the reservation is consumed.
		b.Mov(g.LoadRes, ir.Const(-1))
		return true
	}
}

// amoKind selects the read-modify-write computation of an AMO.
type amoKind uint8

const (
	amoSwap amoKind = iota
	amoAdd
	amoXor
	amoAnd
	amoOr
	amoMin
	amoMax
	amoMinU
	amoMaxU
)

// amo builds the translator for one AMO: load the old value, compute,
// store, and return the old value in rd (sign-extended for the word
// forms by the signed load).
func amo(size uint8, kind amoKind) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		addr := b.Temp()
		ctx.getGPR(addr, inst.Rs1)
		old := b.Temp()
		b.Load(ctx.memOp(size, true), old, addr)
		src := b.Temp()
		ctx.getGPR(src, inst.Rs2)

		res := b.Temp()
		switch kind {
		case amoSwap:
			b.Mov(res, src)
		case amoAdd:
			b.Op3(ir.OpAdd, res, old, src)
		case amoXor:
			b.Op3(ir.OpXor, res, old, src)
		case amoAnd:
			b.Op3(ir.OpAnd, res, old, src)
		case amoOr:
			b.Op3(ir.OpOr, res, old, src)
		case amoMin, amoMax:
			a, c := old, src
			if size == 4 {
				a, c = b.Temp(), b.Temp()
				b.Ext32S(a, old)
				b.Ext32S(c, src)
			}
			if kind == amoMin {
				b.Movcond(ir.CondLT, res, a, c, old, src)
			} else {
				b.Movcond(ir.CondLT, res, a, c, src, old)
			}
		case amoMinU, amoMaxU:
			a, c := old, src
			if size == 4 {
				a, c = b.Temp(), b.Temp()
				b.Ext32U(a, old)
				b.Ext32U(c, src)
			}
			if kind == amoMinU {
				b.Movcond(ir.CondLTU, res, a, c, old, src)
			} else {
				b.Movcond(ir.CondLTU, res, a, c, src, old)
			}
		}
		b.Store(ctx.memOp(size, false), addr, res)
		ctx.setGPR(inst.Rd, old)
		return true
	}
}

func registerAtomicHandlers() {
	for _, e := range []struct {
		op   insts.Op
		size uint8
		kind amoKind
	}{
		{insts.OpAMOSWAPW, 4, amoSwap},
		{insts.OpAMOADDW, 4, amoAdd},
		{insts.OpAMOXORW, 4, amoXor},
		{insts.OpAMOANDW, 4, amoAnd},
		{insts.OpAMOORW, 4, amoOr},
		{insts.OpAMOMINW, 4, amoMin},
		{insts.OpAMOMAXW, 4, amoMax},
		{insts.OpAMOMINUW, 4, amoMinU},
		{insts.OpAMOMAXUW, 4, amoMaxU},
		{insts.OpAMOSWAPD, 8, amoSwap},
		{insts.OpAMOADDD, 8, amoAdd},
		{insts.OpAMOXORD, 8, amoXor},
		{insts.OpAMOANDD, 8, amoAnd},
		{insts.OpAMOORD, 8, amoOr},
		{insts.OpAMOMIND, 8, amoMin},
		{insts.OpAMOMAXD, 8, amoMax},
		{insts.OpAMOMINUD, 8, amoMinU},
		{insts.OpAMOMAXUD, 8, amoMaxU},
	} {
		handlers[e.op] = amo(e.size, e.kind)
	}
	handlers[insts.OpLRW] = lr(4)
	handlers[insts.OpLRD] = lr(8)
	handlers[insts.OpSCW] = sc(4)
	handlers[insts.OpSCD] = sc(8)
}
