package translate

import (
	"github.com/sarchlab/rvdbt/insts"
	"github.com/sarchlab/rvdbt/ir"
	"github.com/sarchlab/rvdbt/state"
)

// handlerFn translates one decoded instruction. Returning false marks the
// encoding as recognized-but-unimplemented, which the dispatcher treats the
// same as an illegal instruction.
type handlerFn func(*Context, *insts.Inst) bool

func (ctx *Context) setGPRI(reg int, v int64) {
	if reg != 0 {
		ctx.b.Mov(ctx.b.Globals().GPR(reg), ir.Const(v))
	}
}

// arithImm builds the immediate ALU translator for code.
func arithImm(code ir.OpCode) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		t := b.Temp()
		ctx.getGPR(t, inst.Rs1)
		b.Op3(code, t, t, ir.Const(inst.Imm))
		ctx.setGPR(inst.Rd, t)
		return true
	}
}

// arith builds the register-register ALU translator for code.
func arith(code ir.OpCode) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		s1, s2 := b.Temp(), b.Temp()
		ctx.getGPR(s1, inst.Rs1)
		ctx.getGPR(s2, inst.Rs2)
		b.Op3(code, s1, s1, s2)
		ctx.setGPR(inst.Rd, s1)
		return true
	}
}

// arithW builds the 32-bit "word" variant: both operands are sign-extended
// to 32 bits before the operation and the 32-bit result is sign-extended
// back up.
func arithW(code ir.OpCode) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		s1, s2 := b.Temp(), b.Temp()
		ctx.getGPR(s1, inst.Rs1)
		ctx.getGPR(s2, inst.Rs2)
		b.Ext32S(s1, s1)
		b.Ext32S(s2, s2)
		b.Op3(code, s1, s1, s2)
		b.Ext32S(s1, s1)
		ctx.setGPR(inst.Rd, s1)
		return true
	}
}

// shift builds the register-register shift translator; the shift amount is
// masked to the register width minus one before use.
func shift(code ir.OpCode) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		s1, s2 := b.Temp(), b.Temp()
		ctx.getGPR(s1, inst.Rs1)
		ctx.getGPR(s2, inst.Rs2)
		b.Op3(ir.OpAnd, s2, s2, ir.Const(63))
		b.Op3(code, s1, s1, s2)
		ctx.setGPR(inst.Rd, s1)
		return true
	}
}

// shiftW builds the word shift variant: the source is narrowed per the
// shift kind, the amount masked to 31, and the result sign-extended.
func shiftW(code ir.OpCode) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		s1, s2 := b.Temp(), b.Temp()
		ctx.getGPR(s1, inst.Rs1)
		ctx.getGPR(s2, inst.Rs2)
		narrowW(b, code, s1)
		b.Op3(ir.OpAnd, s2, s2, ir.Const(31))
		b.Op3(code, s1, s1, s2)
		b.Ext32S(s1, s1)
		ctx.setGPR(inst.Rd, s1)
		return true
	}
}

// narrowW prepares a word-shift source: logical right shifts see the low 32
// bits zero-extended, arithmetic ones sign-extended; left shifts do not
// care.
func narrowW(b *ir.Builder, code ir.OpCode, s ir.Ref) {
	switch code {
	case ir.OpShr:
		b.Ext32U(s, s)
	case ir.OpSar:
		b.Ext32S(s, s)
	}
}

func shiftIW(code ir.OpCode) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		s1 := b.Temp()
		ctx.getGPR(s1, inst.Rs1)
		narrowW(b, code, s1)
		b.Op3(code, s1, s1, ir.Const(inst.Imm))
		b.Ext32S(s1, s1)
		ctx.setGPR(inst.Rd, s1)
		return true
	}
}

func setcondImm(cond ir.Cond) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		t := b.Temp()
		ctx.getGPR(t, inst.Rs1)
		b.Setcond(cond, t, t, ir.Const(inst.Imm))
		ctx.setGPR(inst.Rd, t)
		return true
	}
}

func setcondReg(cond ir.Cond) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		s1, s2 := b.Temp(), b.Temp()
		ctx.getGPR(s1, inst.Rs1)
		ctx.getGPR(s2, inst.Rs2)
		b.Setcond(cond, s1, s1, s2)
		ctx.setGPR(inst.Rd, s1)
		return true
	}
}

// mulh builds the high-word multiply translator (signed or unsigned full
// product).
func mulh(code ir.OpCode) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		s1, s2 := b.Temp(), b.Temp()
		ctx.getGPR(s1, inst.Rs1)
		ctx.getGPR(s2, inst.Rs2)
		lo := b.Temp()
		b.Mul2(code, lo, s1, s1, s2)
		ctx.setGPR(inst.Rd, s1)
		return true
	}
}

// arithGen builds a translator around one of the edge-case generators
// (division family and mulhsu), optionally in the 32-bit word domain.
func arithGen(gen func(*Context, ir.Ref, ir.Ref, ir.Ref), word, unsigned bool) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		s1, s2 := b.Temp(), b.Temp()
		ctx.getGPR(s1, inst.Rs1)
		ctx.getGPR(s2, inst.Rs2)
		if word {
			if unsigned {
				b.Ext32U(s1, s1)
				b.Ext32U(s2, s2)
			} else {
				b.Ext32S(s1, s1)
				b.Ext32S(s2, s2)
			}
		}
		gen(ctx, s1, s1, s2)
		if word {
			b.Ext32S(s1, s1)
		}
		ctx.setGPR(inst.Rd, s1)
		return true
	}
}

func branch(cond ir.Cond) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		taken := b.NewLabel()
		s1, s2 := b.Temp(), b.Temp()
		ctx.getGPR(s1, inst.Rs1)
		ctx.getGPR(s2, inst.Rs2)
		b.Brcond(cond, s1, s2, taken)
		ctx.genGotoTB(1, ctx.pcSucc)
		b.SetLabel(taken)

		target := ctx.pcNext + uint64(inst.Imm)
		if !ctx.core.HasExt(state.ExtC) && target&0x3 != 0 {
			ctx.genExcInstAddrMis()
		} else {
			ctx.genGotoTB(0, target)
		}
		ctx.status = StatusNoReturn
		return true
	}
}

func transLUI(ctx *Context, inst *insts.Inst) bool {
	ctx.setGPRI(inst.Rd, inst.Imm)
	return true
}

func transAUIPC(ctx *Context, inst *insts.Inst) bool {
	ctx.setGPRI(inst.Rd, int64(ctx.pcNext+uint64(inst.Imm)))
	return true
}

func transJAL(ctx *Context, inst *insts.Inst) bool {
	ctx.genJAL(inst.Rd, inst.Imm)
	return true
}

func transJALR(ctx *Context, inst *insts.Inst) bool {
	b := ctx.b
	g := b.Globals()
	t := b.Temp()
	ctx.getGPR(t, inst.Rs1)
	b.Op3(ir.OpAdd, t, t, ir.Const(inst.Imm))
	b.Op3(ir.OpAnd, t, t, ir.Const(^int64(1)))
	b.Mov(g.PC, t)

	if !ctx.core.HasExt(state.ExtC) {
		aligned := b.NewLabel()
		low := b.Temp()
		b.Op3(ir.OpAnd, low, t, ir.Const(2))
		b.Brcond(ir.CondEQ, low, ir.Const(0), aligned)
		ctx.genExcInstAddrMis()
		b.SetLabel(aligned)
	}

	if inst.Rd != 0 {
		b.Mov(g.GPR(inst.Rd), ir.ConstU(ctx.pcSucc))
	}
	if ctx.singleStep {
		ctx.genExcDebug()
	} else {
		b.LookupGoto()
	}
	ctx.status = StatusNoReturn
	return true
}

func load(size uint8, signed bool) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		addr := b.Temp()
		ctx.getGPR(addr, inst.Rs1)
		b.Op3(ir.OpAdd, addr, addr, ir.Const(inst.Imm))
		d := b.Temp()
		b.Load(ctx.memOp(size, signed), d, addr)
		ctx.setGPR(inst.Rd, d)
		return true
	}
}

func store(size uint8) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		addr := b.Temp()
		ctx.getGPR(addr, inst.Rs1)
		b.Op3(ir.OpAdd, addr, addr, ir.Const(inst.Imm))
		v := b.Temp()
		ctx.getGPR(v, inst.Rs2)
		b.Store(ctx.memOp(size, false), addr, v)
		return true
	}
}

func (ctx *Context) memOp(size uint8, signed bool) ir.MemOp {
	return ir.MemOp{Size: size, Signed: signed, Idx: ctx.memIdx}
}

func transECALL(ctx *Context, _ *insts.Inst) bool {
	ctx.genException(state.ExcpECallU)
	ctx.b.ExitTB(ir.ExitNoChain) // no chaining
	return true
}

func transEBREAK(ctx *Context, _ *insts.Inst) bool {
	ctx.genException(state.ExcpBreakpoint)
	ctx.b.ExitTB(ir.ExitNoChain) // no chaining
	return true
}

func transFENCE(_ *Context, _ *insts.Inst) bool {
	// An in-order single-issue interpretation needs no memory barrier.
	return true
}

func transFENCEI(ctx *Context, _ *insts.Inst) bool {
	// The runtime must resynchronize the code cache; end the unit and
	// return to the dispatcher.
	g := ctx.b.Globals()
	ctx.b.Mov(g.PC, ir.ConstU(ctx.pcSucc))
	ctx.b.ExitTB(ir.ExitNoChain)
	ctx.status = StatusNoReturn
	return true
}

// csr builds the CSR access translator. The pre-exception pc is committed
// first so a trapping access sees the right address; the access itself is
// delegated; the unit then ends with an indirect exit because the access
// may have changed system state (including the rounding mode).
func csr(op int64, immForm bool) handlerFn {
	return func(ctx *Context, inst *insts.Inst) bool {
		b := ctx.b
		g := b.Globals()
		b.Mov(g.PC, ir.ConstU(ctx.pcNext))

		var src ir.Ref
		wen := int64(1)
		if immForm {
			src = ir.Const(inst.Imm)
			if op != ir.CSRRW && inst.Imm == 0 {
				wen = 0
			}
		} else {
			t := b.Temp()
			ctx.getGPR(t, inst.Rs1)
			src = t
			if op != ir.CSRRW && inst.Rs1 == 0 {
				wen = 0
			}
		}

		d := b.Temp()
		b.Call(ir.HelperCSR, d, op, ir.Const(int64(inst.CSR)), src, ir.Const(wen))
		ctx.setGPR(inst.Rd, d)

		b.Mov(g.PC, ir.ConstU(ctx.pcSucc))
		b.ExitTB(ir.ExitNoChain)
		ctx.status = StatusNoReturn
		return true
	}
}

var handlers map[insts.Op]handlerFn

func init() {
	handlers = map[insts.Op]handlerFn{
		insts.OpLUI:   transLUI,
		insts.OpAUIPC: transAUIPC,
		insts.OpJAL:   transJAL,
		insts.OpJALR:  transJALR,

		insts.OpBEQ:  branch(ir.CondEQ),
		insts.OpBNE:  branch(ir.CondNE),
		insts.OpBLT:  branch(ir.CondLT),
		insts.OpBGE:  branch(ir.CondGE),
		insts.OpBLTU: branch(ir.CondLTU),
		insts.OpBGEU: branch(ir.CondGEU),

		insts.OpLB:  load(1, true),
		insts.OpLH:  load(2, true),
		insts.OpLW:  load(4, true),
		insts.OpLD:  load(8, true),
		insts.OpLBU: load(1, false),
		insts.OpLHU: load(2, false),
		insts.OpLWU: load(4, false),
		insts.OpSB:  store(1),
		insts.OpSH:  store(2),
		insts.OpSW:  store(4),
		insts.OpSD:  store(8),

		insts.OpADDI:  arithImm(ir.OpAdd),
		insts.OpSLTI:  setcondImm(ir.CondLT),
		insts.OpSLTIU: setcondImm(ir.CondLTU),
		insts.OpXORI:  arithImm(ir.OpXor),
		insts.OpORI:   arithImm(ir.OpOr),
		insts.OpANDI:  arithImm(ir.OpAnd),
		insts.OpSLLI:  arithImm(ir.OpShl),
		insts.OpSRLI:  arithImm(ir.OpShr),
		insts.OpSRAI:  arithImm(ir.OpSar),

		insts.OpADD:  arith(ir.OpAdd),
		insts.OpSUB:  arith(ir.OpSub),
		insts.OpSLL:  shift(ir.OpShl),
		insts.OpSLT:  setcondReg(ir.CondLT),
		insts.OpSLTU: setcondReg(ir.CondLTU),
		insts.OpXOR:  arith(ir.OpXor),
		insts.OpSRL:  shift(ir.OpShr),
		insts.OpSRA:  shift(ir.OpSar),
		insts.OpOR:   arith(ir.OpOr),
		insts.OpAND:  arith(ir.OpAnd),

		insts.OpADDIW: func(ctx *Context, inst *insts.Inst) bool {
			b := ctx.b
			t := b.Temp()
			ctx.getGPR(t, inst.Rs1)
			b.Op3(ir.OpAdd, t, t, ir.Const(inst.Imm))
			b.Ext32S(t, t)
			ctx.setGPR(inst.Rd, t)
			return true
		},
		insts.OpSLLIW: shiftIW(ir.OpShl),
		insts.OpSRLIW: shiftIW(ir.OpShr),
		insts.OpSRAIW: shiftIW(ir.OpSar),
		insts.OpADDW:  arithW(ir.OpAdd),
		insts.OpSUBW:  arithW(ir.OpSub),
		insts.OpSLLW:  shiftW(ir.OpShl),
		insts.OpSRLW:  shiftW(ir.OpShr),
		insts.OpSRAW:  shiftW(ir.OpSar),

		insts.OpFENCE:  transFENCE,
		insts.OpFENCEI: transFENCEI,
		insts.OpECALL:  transECALL,
		insts.OpEBREAK: transEBREAK,

		insts.OpCSRRW:  csr(ir.CSRRW, false),
		insts.OpCSRRS:  csr(ir.CSRRS, false),
		insts.OpCSRRC:  csr(ir.CSRRC, false),
		insts.OpCSRRWI: csr(ir.CSRRW, true),
		insts.OpCSRRSI: csr(ir.CSRRS, true),
		insts.OpCSRRCI: csr(ir.CSRRC, true),

		insts.OpMUL:    arith(ir.OpMul),
		insts.OpMULH:   mulh(ir.OpMulS2),
		insts.OpMULHU:  mulh(ir.OpMulU2),
		insts.OpMULHSU: arithGen((*Context).genMulhsu, false, false),
		insts.OpDIV:    arithGen((*Context).genDiv, false, false),
		insts.OpDIVU:   arithGen((*Context).genDivu, false, true),
		insts.OpREM:    arithGen((*Context).genRem, false, false),
		insts.OpREMU:   arithGen((*Context).genRemu, false, true),
		insts.OpMULW:   arithW(ir.OpMul),
		insts.OpDIVW:   arithGen((*Context).genDiv, true, false),
		insts.OpDIVUW:  arithGen((*Context).genDivu, true, true),
		insts.OpREMW:   arithGen((*Context).genRem, true, false),
		insts.OpREMUW:  arithGen((*Context).genRemu, true, true),
	}
	registerAtomicHandlers()
	registerFPHandlers()
}
