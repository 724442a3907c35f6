package translate

import (
	"math"

	"github.com/sarchlab/rvdbt/insts"
	"github.com/sarchlab/rvdbt/ir"
)

// Floating-point arithmetic itself is delegated to the numeric subsystem
// through helper calls; the translator's own work is operand routing,
// NaN-boxing of single-precision values, and the per-unit rounding-mode
// memoization.

const (
	boxMask = int64(-1) << 32 // upper ones of a NaN-boxed single
	signS   = int64(1) << 31
	magS    = int64(0x7fffffff)
	signD   = int64(math.MinInt64)
	magD    = int64(math.MaxInt64)
)

func transFLW(ctx *Context, inst *insts.Inst) bool {
	b := ctx.b
	addr := b.Temp()
	ctx.getGPR(addr, inst.Rs1)
	b.Op3(ir.OpAdd, addr, addr, ir.Const(inst.Imm))
	t := b.Temp()
	b.Load(ctx.memOp(4, false), t, addr)
	b.Op3(ir.OpOr, t, t, ir.Const(boxMask))
	b.Mov(b.Globals().FPR(inst.Rd), t)
	return true
}

func transFLD(ctx *Context, inst *insts.Inst) bool {
	b := ctx.b
	addr := b.Temp()
	ctx.getGPR(addr, inst.Rs1)
	b.Op3(ir.OpAdd, addr, addr, ir.Const(inst.Imm))
	b.Load(ctx.memOp(8, false), b.Globals().FPR(inst.Rd), addr)
	return true
}

func fpStore(size uint8) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		addr := b.Temp()
		ctx.getGPR(addr, inst.Rs1)
		b.Op3(ir.OpAdd, addr, addr, ir.Const(inst.Imm))
		b.Store(ctx.memOp(size, false), addr, b.Globals().FPR(inst.Rs2))
		return true
	}
}

// fp3 builds a rounding-mode-sensitive two-source arithmetic translator.
func fp3(helper ir.Helper) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		ctx.genSetRM(inst.RM)
		g := ctx.b.Globals()
		ctx.b.Call(helper, g.FPR(inst.Rd), 0, g.FPR(inst.Rs1), g.FPR(inst.Rs2))
		return true
	}
}

// fp2 builds a rounding-mode-sensitive one-source translator (sqrt and the
// fp-to-fp conversions).
func fp2(helper ir.Helper) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		ctx.genSetRM(inst.RM)
		g := ctx.b.Globals()
		ctx.b.Call(helper, g.FPR(inst.Rd), 0, g.FPR(inst.Rs1))
		return true
	}
}

// fpMinMax has no rounding-mode dependence.
func fpMinMax(helper ir.Helper) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		g := ctx.b.Globals()
		ctx.b.Call(helper, g.FPR(inst.Rd), 0, g.FPR(inst.Rs1), g.FPR(inst.Rs2))
		return true
	}
}

// fpCmp writes its 0/1 result to an integer register.
func fpCmp(helper ir.Helper) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		g := b.Globals()
		d := b.Temp()
		b.Call(helper, d, 0, g.FPR(inst.Rs1), g.FPR(inst.Rs2))
		ctx.setGPR(inst.Rd, d)
		return true
	}
}

// fpToInt converts a floating-point source to an integer destination.
func fpToInt(helper ir.Helper) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		ctx.genSetRM(inst.RM)
		b := ctx.b
		d := b.Temp()
		b.Call(helper, d, 0, b.Globals().FPR(inst.Rs1))
		ctx.setGPR(inst.Rd, d)
		return true
	}
}

// intToFp converts an integer source to a floating-point destination.
func intToFp(helper ir.Helper) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		ctx.genSetRM(inst.RM)
		b := ctx.b
		t := b.Temp()
		ctx.getGPR(t, inst.Rs1)
		b.Call(helper, b.Globals().FPR(inst.Rd), 0, t)
		return true
	}
}

// sgnjKind selects how the result sign is derived from rs2.
type sgnjKind uint8

const (
	sgnjCopy sgnjKind = iota
	sgnjNeg
	sgnjXor
)

// fsgnj builds the sign-injection translator: magnitude from rs1, sign
// from (possibly inverted or combined) rs2, single results re-boxed.
func fsgnj(kind sgnjKind, double bool) handlerFn {
	sign, mag := signS, magS
	if double {
		sign, mag = signD, magD
	}
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		g := b.Globals()
		t := b.Temp()
		b.Op3(ir.OpAnd, t, g.FPR(inst.Rs1), ir.Const(mag))

		s := b.Temp()
		switch kind {
		case sgnjCopy:
			b.Op3(ir.OpAnd, s, g.FPR(inst.Rs2), ir.Const(sign))
		case sgnjNeg:
			b.Op3(ir.OpXor, s, g.FPR(inst.Rs2), ir.Const(sign))
			b.Op3(ir.OpAnd, s, s, ir.Const(sign))
		case sgnjXor:
			b.Op3(ir.OpXor, s, g.FPR(inst.Rs1), g.FPR(inst.Rs2))
			b.Op3(ir.OpAnd, s, s, ir.Const(sign))
		}
		b.Op3(ir.OpOr, t, t, s)
		if !double {
			b.Op3(ir.OpOr, t, t, ir.Const(boxMask))
		}
		b.Mov(g.FPR(inst.Rd), t)
		return true
	}
}

func transFMVXW(ctx *Context, inst *insts.Inst) bool {
	b := ctx.b
	t := b.Temp()
	b.Ext32S(t, b.Globals().FPR(inst.Rs1))
	ctx.setGPR(inst.Rd, t)
	return true
}

func transFMVWX(ctx *Context, inst *insts.Inst) bool {
	b := ctx.b
	t := b.Temp()
	ctx.getGPR(t, inst.Rs1)
	b.Ext32U(t, t)
	b.Op3(ir.OpOr, t, t, ir.Const(boxMask))
	b.Mov(b.Globals().FPR(inst.Rd), t)
	return true
}

func transFMVXD(ctx *Context, inst *insts.Inst) bool {
	ctx.setGPR(inst.Rd, ctx.b.Globals().FPR(inst.Rs1))
	return true
}

func transFMVDX(ctx *Context, inst *insts.Inst) bool {
	b := ctx.b
	t := b.Temp()
	ctx.getGPR(t, inst.Rs1)
	b.Mov(b.Globals().FPR(inst.Rd), t)
	return true
}

func registerFPHandlers() {
	handlers[insts.OpFLW] = transFLW
	handlers[insts.OpFLD] = transFLD
	handlers[insts.OpFSW] = fpStore(4)
	handlers[insts.OpFSD] = fpStore(8)

	handlers[insts.OpFADDS] = fp3(ir.HelperFAddS)
	handlers[insts.OpFSUBS] = fp3(ir.HelperFSubS)
	handlers[insts.OpFMULS] = fp3(ir.HelperFMulS)
	handlers[insts.OpFDIVS] = fp3(ir.HelperFDivS)
	handlers[insts.OpFSQRTS] = fp2(ir.HelperFSqrtS)
	handlers[insts.OpFMINS] = fpMinMax(ir.HelperFMinS)
	handlers[insts.OpFMAXS] = fpMinMax(ir.HelperFMaxS)
	handlers[insts.OpFEQS] = fpCmp(ir.HelperFEqS)
	handlers[insts.OpFLTS] = fpCmp(ir.HelperFLtS)
	handlers[insts.OpFLES] = fpCmp(ir.HelperFLeS)
	handlers[insts.OpFSGNJS] = fsgnj(sgnjCopy, false)
	handlers[insts.OpFSGNJNS] = fsgnj(sgnjNeg, false)
	handlers[insts.OpFSGNJXS] = fsgnj(sgnjXor, false)

	handlers[insts.OpFADDD] = fp3(ir.HelperFAddD)
	handlers[insts.OpFSUBD] = fp3(ir.HelperFSubD)
	handlers[insts.OpFMULD] = fp3(ir.HelperFMulD)
	handlers[insts.OpFDIVD] = fp3(ir.HelperFDivD)
	handlers[insts.OpFSQRTD] = fp2(ir.HelperFSqrtD)
	handlers[insts.OpFMIND] = fpMinMax(ir.HelperFMinD)
	handlers[insts.OpFMAXD] = fpMinMax(ir.HelperFMaxD)
	handlers[insts.OpFEQD] = fpCmp(ir.HelperFEqD)
	handlers[insts.OpFLTD] = fpCmp(ir.HelperFLtD)
	handlers[insts.OpFLED] = fpCmp(ir.HelperFLeD)
	handlers[insts.OpFSGNJD] = fsgnj(sgnjCopy, true)
	handlers[insts.OpFSGNJND] = fsgnj(sgnjNeg, true)
	handlers[insts.OpFSGNJXD] = fsgnj(sgnjXor, true)

	handlers[insts.OpFCVTWS] = fpToInt(ir.HelperFCvtWS)
	handlers[insts.OpFCVTWUS] = fpToInt(ir.HelperFCvtWUS)
	handlers[insts.OpFCVTLS] = fpToInt(ir.HelperFCvtLS)
	handlers[insts.OpFCVTLUS] = fpToInt(ir.HelperFCvtLUS)
	handlers[insts.OpFCVTWD] = fpToInt(ir.HelperFCvtWD)
	handlers[insts.OpFCVTWUD] = fpToInt(ir.HelperFCvtWUD)
	handlers[insts.OpFCVTLD] = fpToInt(ir.HelperFCvtLD)
	handlers[insts.OpFCVTLUD] = fpToInt(ir.HelperFCvtLUD)
	handlers[insts.OpFCVTSW] = intToFp(ir.HelperFCvtSW)
	handlers[insts.OpFCVTSWU] = intToFp(ir.HelperFCvtSWU)
	handlers[insts.OpFCVTSL] = intToFp(ir.HelperFCvtSL)
	handlers[insts.OpFCVTSLU] = intToFp(ir.HelperFCvtSLU)
	handlers[insts.OpFCVTDW] = intToFp(ir.HelperFCvtDW)
	handlers[insts.OpFCVTDWU] = intToFp(ir.HelperFCvtDWU)
	handlers[insts.OpFCVTDL] = intToFp(ir.HelperFCvtDL)
	handlers[insts.OpFCVTDLU] = intToFp(ir.HelperFCvtDLU)
	handlers[insts.OpFCVTSD] = fp2(ir.HelperFCvtSD)
	handlers[insts.OpFCVTDS] = fp2(ir.HelperFCvtDS)

	handlers[insts.OpFMVXW] = transFMVXW
	handlers[insts.OpFMVWX] = transFMVWX
	handlers[insts.OpFMVXD] = transFMVXD
	handlers[insts.OpFMVDX] = transFMVDX
}
