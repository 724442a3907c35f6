package interp

import (
	"fmt"
	"math"

	"github.com/sarchlab/rvdbt/ir"
	"github.com/sarchlab/rvdbt/state"
)

// CSR numbers understood by the executor. Anything else raises the
// illegal-instruction exception, same as an unimplemented encoding.
const (
	csrFFlags = 0x001
	csrFrm    = 0x002
	csrFCSR   = 0x003
)

const canonicalNaNS = uint64(0x7fc00000)

// The helper surface mirrors what the translator can emit. Floating-point
// arithmetic uses the host's float operations; the installed rounding mode
// is tracked but only truncating conversions honor it exactly.

func (m *Machine) callHelper(op *ir.Op, read func(ir.Ref) uint64) (uint64, *Exit) {
	args := [3]uint64{}
	for i, r := range []ir.Ref{op.A, op.B, op.C} {
		if r.Valid() {
			args[i] = read(r)
		}
	}
	a, b := args[0], args[1]

	switch op.Fn {
	case ir.HelperRaiseException:
		return 0, &Exit{
			Kind:   ExitException,
			Slot:   -1,
			Target: m.CPU.PC,
			Cause:  uint32(op.Aux),
		}

	case ir.HelperSetRoundingMode:
		rm := int(op.Aux)
		if rm == state.RMDyn {
			rm = int(m.CPU.Frm)
		}
		if rm > 4 {
			return 0, &Exit{
				Kind:   ExitException,
				Slot:   -1,
				Target: m.CPU.PC,
				Cause:  state.ExcpIllegalInst,
			}
		}
		m.rm = rm
		return 0, nil

	case ir.HelperCSR:
		return m.csrAccess(op.Aux, uint32(args[0]), args[1], args[2] != 0)

	case ir.HelperFAddS:
		return boxS(unboxS(a) + unboxS(b)), nil
	case ir.HelperFSubS:
		return boxS(unboxS(a) - unboxS(b)), nil
	case ir.HelperFMulS:
		return boxS(unboxS(a) * unboxS(b)), nil
	case ir.HelperFDivS:
		return boxS(unboxS(a) / unboxS(b)), nil
	case ir.HelperFSqrtS:
		return boxS(float32(math.Sqrt(float64(unboxS(a))))), nil
	case ir.HelperFMinS:
		return boxS(float32(fmin(float64(unboxS(a)), float64(unboxS(b))))), nil
	case ir.HelperFMaxS:
		return boxS(float32(fmax(float64(unboxS(a)), float64(unboxS(b))))), nil
	case ir.HelperFEqS:
		return b2u(unboxS(a) == unboxS(b)), nil
	case ir.HelperFLtS:
		return b2u(unboxS(a) < unboxS(b)), nil
	case ir.HelperFLeS:
		return b2u(unboxS(a) <= unboxS(b)), nil

	case ir.HelperFAddD:
		return f64(d(a) + d(b)), nil
	case ir.HelperFSubD:
		return f64(d(a) - d(b)), nil
	case ir.HelperFMulD:
		return f64(d(a) * d(b)), nil
	case ir.HelperFDivD:
		return f64(d(a) / d(b)), nil
	case ir.HelperFSqrtD:
		return f64(math.Sqrt(d(a))), nil
	case ir.HelperFMinD:
		return f64(fmin(d(a), d(b))), nil
	case ir.HelperFMaxD:
		return f64(fmax(d(a), d(b))), nil
	case ir.HelperFEqD:
		return b2u(d(a) == d(b)), nil
	case ir.HelperFLtD:
		return b2u(d(a) < d(b)), nil
	case ir.HelperFLeD:
		return b2u(d(a) <= d(b)), nil

	case ir.HelperFCvtSD:
		return boxS(float32(d(a))), nil
	case ir.HelperFCvtDS:
		return f64(float64(unboxS(a))), nil

	case ir.HelperFCvtWS:
		return satI32(float64(unboxS(a))), nil
	case ir.HelperFCvtWUS:
		return satU32(float64(unboxS(a))), nil
	case ir.HelperFCvtLS:
		return satI64(float64(unboxS(a))), nil
	case ir.HelperFCvtLUS:
		return satU64(float64(unboxS(a))), nil
	case ir.HelperFCvtWD:
		return satI32(d(a)), nil
	case ir.HelperFCvtWUD:
		return satU32(d(a)), nil
	case ir.HelperFCvtLD:
		return satI64(d(a)), nil
	case ir.HelperFCvtLUD:
		return satU64(d(a)), nil

	case ir.HelperFCvtSW:
		return boxS(float32(int32(a))), nil
	case ir.HelperFCvtSWU:
		return boxS(float32(uint32(a))), nil
	case ir.HelperFCvtSL:
		return boxS(float32(int64(a))), nil
	case ir.HelperFCvtSLU:
		return boxS(float32(a)), nil
	case ir.HelperFCvtDW:
		return f64(float64(int32(a))), nil
	case ir.HelperFCvtDWU:
		return f64(float64(uint32(a))), nil
	case ir.HelperFCvtDL:
		return f64(float64(int64(a))), nil
	case ir.HelperFCvtDLU:
		return f64(float64(a)), nil
	}
	panic(fmt.Sprintf("interp: unknown helper %s", op.Fn))
}

// csrAccess implements the read-modify-write system-register access. The
// write is suppressed when wen is false so a pure read never touches state.
func (m *Machine) csrAccess(op int64, csr uint32, src uint64, wen bool) (uint64, *Exit) {
	var old uint64
	switch csr {
	case csrFFlags:
		old = m.CPU.FFlags
	case csrFrm:
		old = m.CPU.Frm
	case csrFCSR:
		old = m.CPU.Frm<<5 | m.CPU.FFlags
	default:
		return 0, &Exit{
			Kind:   ExitException,
			Slot:   -1,
			Target: m.CPU.PC,
			Cause:  state.ExcpIllegalInst,
		}
	}

	if wen {
		var next uint64
		switch op {
		case ir.CSRRW:
			next = src
		case ir.CSRRS:
			next = old | src
		case ir.CSRRC:
			next = old &^ src
		}
		switch csr {
		case csrFFlags:
			m.CPU.FFlags = next & 0x1f
		case csrFrm:
			m.CPU.Frm = next & 0x7
		case csrFCSR:
			m.CPU.FFlags = next & 0x1f
			m.CPU.Frm = (next >> 5) & 0x7
		}
	}
	return old, nil
}

func d(bits uint64) float64 { return math.Float64frombits(bits) }
func f64(f float64) uint64  { return math.Float64bits(f) }

// unboxS recovers a single-precision value from its NaN-boxed form; a
// value that is not properly boxed reads as the canonical NaN.
func unboxS(bits uint64) float32 {
	if bits>>32 != 0xffffffff {
		return math.Float32frombits(uint32(canonicalNaNS))
	}
	return math.Float32frombits(uint32(bits))
}

func boxS(f float32) uint64 {
	return uint64(math.Float32bits(f)) | uint64(0xffffffff)<<32
}

func b2u(v bool) uint64 {
	if v {
		return 1
	}
	return 0
}

// fmin and fmax follow the register-file semantics: a quiet operand wins
// over a NaN, both NaN yields NaN, and -0 orders below +0.
func fmin(a, b float64) float64 {
	switch {
	case math.IsNaN(a) && math.IsNaN(b):
		return math.NaN()
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return math.Min(a, b)
}

func fmax(a, b float64) float64 {
	switch {
	case math.IsNaN(a) && math.IsNaN(b):
		return math.NaN()
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	}
	return math.Max(a, b)
}

// The conversions truncate toward zero and saturate out-of-range and NaN
// inputs to the mandated fixed results.

func satI32(f float64) uint64 {
	switch {
	case math.IsNaN(f), f >= float64(math.MaxInt32)+1:
		return uint64(int64(math.MaxInt32))
	case f <= float64(math.MinInt32)-1:
		return uint64(0xFFFFFFFF80000000)
	}
	return uint64(int64(int32(f)))
}

func satU32(f float64) uint64 {
	switch {
	case math.IsNaN(f), f >= float64(math.MaxUint32)+1:
		return ^uint64(0)
	case f <= -1:
		return 0
	}
	return uint64(int64(int32(uint32(f))))
}

func satI64(f float64) uint64 {
	switch {
	case math.IsNaN(f), f >= float64(math.MaxInt64):
		return uint64(int64(math.MaxInt64))
	case f < float64(math.MinInt64):
		return uint64(1) << 63
	}
	return uint64(int64(f))
}

func satU64(f float64) uint64 {
	switch {
	case math.IsNaN(f), f >= float64(math.MaxUint64):
		return math.MaxUint64
	case f <= -1:
		return 0
	}
	return uint64(f)
}
