package translate

import (
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"

	"github.com/sarchlab/rvdbt/ir"
)

// LogUnit writes a one-op-per-line listing of a translated unit to w, with
// globals shown under their ABI names.
func (c *Core) LogUnit(w io.Writer, prog *ir.Program) {
	fmt.Fprintf(w, "unit %#x..%#x: %d ops, %d temps, %d labels\n",
		prog.PCFirst, prog.PCEnd, len(prog.Ops), prog.NumTemps, prog.NumLabels)
	for i := range prog.Ops {
		fmt.Fprintf(w, "%4d: %s\n", i, c.formatOp(&prog.Ops[i]))
	}
}

var unitDumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// DumpUnit writes the raw op structures of a unit. The listing from LogUnit
// is usually enough; this form shows every field when it is not.
func (c *Core) DumpUnit(w io.Writer, prog *ir.Program) {
	unitDumper.Fdump(w, prog)
}

func (c *Core) ref(r ir.Ref) string {
	return c.Globals.Name(r)
}

func (c *Core) formatOp(op *ir.Op) string {
	switch op.Code {
	case ir.OpInsnStart:
		return fmt.Sprintf("---- %#x", uint64(op.Aux))
	case ir.OpMov:
		return fmt.Sprintf("mov %s, %s", c.ref(op.Dst), c.ref(op.A))
	case ir.OpMulU2, ir.OpMulS2:
		return fmt.Sprintf("%s %s, %s, %s, %s",
			op.Code, c.ref(op.Dst), c.ref(op.Dst2), c.ref(op.A), c.ref(op.B))
	case ir.OpExt32S, ir.OpExt32U:
		return fmt.Sprintf("%s %s, %s", op.Code, c.ref(op.Dst), c.ref(op.A))
	case ir.OpSetcond:
		return fmt.Sprintf("setcond.%s %s, %s, %s",
			op.Cond, c.ref(op.Dst), c.ref(op.A), c.ref(op.B))
	case ir.OpMovcond:
		return fmt.Sprintf("movcond.%s %s, %s, %s, %s, %s",
			op.Cond, c.ref(op.Dst), c.ref(op.A), c.ref(op.B), c.ref(op.C), c.ref(op.D))
	case ir.OpBrcond:
		return fmt.Sprintf("brcond.%s %s, %s -> L%d", op.Cond, c.ref(op.A), c.ref(op.B), op.Label)
	case ir.OpBr:
		return fmt.Sprintf("br -> L%d", op.Label)
	case ir.OpLabel:
		return fmt.Sprintf("L%d:", op.Label)
	case ir.OpLoad:
		return fmt.Sprintf("load%s %s, [%s]", memSuffix(op.Mem), c.ref(op.Dst), c.ref(op.A))
	case ir.OpStore:
		return fmt.Sprintf("store%s [%s], %s", memSuffix(op.Mem), c.ref(op.A), c.ref(op.B))
	case ir.OpCall:
		s := fmt.Sprintf("call %s", op.Fn)
		if op.Dst.Valid() {
			s += " " + c.ref(op.Dst) + ","
		}
		for _, a := range []ir.Ref{op.A, op.B, op.C} {
			if a.Valid() {
				s += " " + c.ref(a)
			}
		}
		return fmt.Sprintf("%s (aux=%d)", s, op.Aux)
	case ir.OpGotoTB:
		return fmt.Sprintf("goto_tb [%d]", op.Aux)
	case ir.OpExitTB:
		if op.Aux == ir.ExitNoChain {
			return "exit_tb nochain"
		}
		return fmt.Sprintf("exit_tb [%d]", op.Aux)
	case ir.OpLookupGoto:
		return "lookup_goto"
	default:
		return fmt.Sprintf("%s %s, %s, %s", op.Code, c.ref(op.Dst), c.ref(op.A), c.ref(op.B))
	}
}

func memSuffix(m ir.MemOp) string {
	sign := "u"
	if m.Signed {
		sign = "s"
	}
	return fmt.Sprintf(".%d%s", m.Size, sign)
}
