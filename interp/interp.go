// Package interp executes translated IR units directly against the CPU
// state record. It is the reference executor: one op at a time, no
// chaining of its own, every unit exit surfaced to the caller.
package interp

import (
	"fmt"
	"math/bits"

	"github.com/sarchlab/rvdbt/ir"
	"github.com/sarchlab/rvdbt/state"
)

// ExitKind classifies how a unit left the executor.
type ExitKind uint8

// Exit kinds.
const (
	// ExitChain is a direct-chain exit through a link slot; the target is
	// known at translation time.
	ExitChain ExitKind = iota
	// ExitIndirect is a dispatcher exit: continue at the pc global.
	ExitIndirect
	// ExitException is a raised guest exception; pc was committed before
	// the raise.
	ExitException
)

// Exit describes one unit exit.
type Exit struct {
	Kind ExitKind
	// Slot is the chain link slot for ExitChain, -1 otherwise.
	Slot int
	// Target is the next guest pc.
	Target uint64
	// Cause is the exception cause for ExitException.
	Cause uint32
}

// Machine executes IR units against one CPU record and one guest memory.
type Machine struct {
	CPU *state.CPU
	Mem *Memory

	globals *ir.Globals

	// rm is the effective rounding mode installed by the last
	// set-rounding-mode helper call.
	rm int
}

// NewMachine creates an executor over the given CPU record, memory and
// register binding table.
func NewMachine(cpu *state.CPU, mem *Memory, globals *ir.Globals) *Machine {
	return &Machine{CPU: cpu, Mem: mem, globals: globals, rm: 0}
}

func (m *Machine) readGlobal(id int32) uint64 {
	d := m.globals.Desc(id)
	switch d.Class {
	case ir.GlobalGPR:
		return m.CPU.GPR[d.Index]
	case ir.GlobalFPR:
		return m.CPU.FPR[d.Index]
	case ir.GlobalPC:
		return m.CPU.PC
	case ir.GlobalBadAddr:
		return m.CPU.BadAddr
	case ir.GlobalLoadRes:
		return m.CPU.LoadRes
	case ir.GlobalLoadVal:
		return m.CPU.LoadVal
	}
	panic(fmt.Sprintf("interp: unknown global class %d", d.Class))
}

func (m *Machine) writeGlobal(id int32, v uint64) {
	d := m.globals.Desc(id)
	switch d.Class {
	case ir.GlobalGPR:
		m.CPU.GPR[d.Index] = v
	case ir.GlobalFPR:
		m.CPU.FPR[d.Index] = v
	case ir.GlobalPC:
		m.CPU.PC = v
	case ir.GlobalBadAddr:
		m.CPU.BadAddr = v
	case ir.GlobalLoadRes:
		m.CPU.LoadRes = v
	case ir.GlobalLoadVal:
		m.CPU.LoadVal = v
	default:
		panic(fmt.Sprintf("interp: unknown global class %d", d.Class))
	}
}

func evalCond(cond ir.Cond, a, b uint64) bool {
	switch cond {
	case ir.CondEQ:
		return a == b
	case ir.CondNE:
		return a != b
	case ir.CondLT:
		return int64(a) < int64(b)
	case ir.CondGE:
		return int64(a) >= int64(b)
	case ir.CondLTU:
		return a < b
	case ir.CondGEU:
		return a >= b
	}
	panic(fmt.Sprintf("interp: unknown condition %d", cond))
}

func signExtend(v uint64, size uint8) uint64 {
	switch size {
	case 1:
		return uint64(int64(int8(v)))
	case 2:
		return uint64(int64(int16(v)))
	case 4:
		return uint64(int64(int32(v)))
	}
	return v
}

// Run executes one unit to its exit.
func (m *Machine) Run(prog *ir.Program) Exit {
	temps := make([]uint64, prog.NumTemps)
	labels := make([]int, prog.NumLabels)
	for i := range prog.Ops {
		if prog.Ops[i].Code == ir.OpLabel {
			labels[prog.Ops[i].Label] = i
		}
	}

	read := func(r ir.Ref) uint64 {
		switch r.Kind {
		case ir.RefConst:
			return uint64(r.Val)
		case ir.RefTemp:
			return temps[r.ID]
		case ir.RefGlobal:
			return m.readGlobal(r.ID)
		}
		panic("interp: read of unset operand")
	}
	write := func(r ir.Ref, v uint64) {
		switch r.Kind {
		case ir.RefTemp:
			temps[r.ID] = v
		case ir.RefGlobal:
			m.writeGlobal(r.ID, v)
		default:
			panic("interp: write to non-storage reference")
		}
	}

	for i := 0; i < len(prog.Ops); i++ {
		op := &prog.Ops[i]
		switch op.Code {
		case ir.OpInsnStart, ir.OpLabel, ir.OpGotoTB:
			// Markers; goto_tb has meaning only to a chaining backend.

		case ir.OpMov:
			write(op.Dst, read(op.A))
		case ir.OpAdd:
			write(op.Dst, read(op.A)+read(op.B))
		case ir.OpSub:
			write(op.Dst, read(op.A)-read(op.B))
		case ir.OpAnd:
			write(op.Dst, read(op.A)&read(op.B))
		case ir.OpOr:
			write(op.Dst, read(op.A)|read(op.B))
		case ir.OpXor:
			write(op.Dst, read(op.A)^read(op.B))
		case ir.OpShl:
			write(op.Dst, read(op.A)<<(read(op.B)&63))
		case ir.OpShr:
			write(op.Dst, read(op.A)>>(read(op.B)&63))
		case ir.OpSar:
			write(op.Dst, uint64(int64(read(op.A))>>(read(op.B)&63)))

		case ir.OpMul:
			write(op.Dst, read(op.A)*read(op.B))
		case ir.OpMulU2:
			hi, lo := bits.Mul64(read(op.A), read(op.B))
			write(op.Dst, lo)
			write(op.Dst2, hi)
		case ir.OpMulS2:
			a, b := read(op.A), read(op.B)
			hi, lo := bits.Mul64(a, b)
			if int64(a) < 0 {
				hi -= b
			}
			if int64(b) < 0 {
				hi -= a
			}
			write(op.Dst, lo)
			write(op.Dst2, hi)
		case ir.OpDiv:
			write(op.Dst, uint64(int64(read(op.A))/int64(read(op.B))))
		case ir.OpDivU:
			write(op.Dst, read(op.A)/read(op.B))
		case ir.OpRem:
			write(op.Dst, uint64(int64(read(op.A))%int64(read(op.B))))
		case ir.OpRemU:
			write(op.Dst, read(op.A)%read(op.B))

		case ir.OpExt32S:
			write(op.Dst, uint64(int64(int32(read(op.A)))))
		case ir.OpExt32U:
			write(op.Dst, uint64(uint32(read(op.A))))

		case ir.OpSetcond:
			if evalCond(op.Cond, read(op.A), read(op.B)) {
				write(op.Dst, 1)
			} else {
				write(op.Dst, 0)
			}
		case ir.OpMovcond:
			if evalCond(op.Cond, read(op.A), read(op.B)) {
				write(op.Dst, read(op.C))
			} else {
				write(op.Dst, read(op.D))
			}
		case ir.OpBrcond:
			if evalCond(op.Cond, read(op.A), read(op.B)) {
				i = labels[op.Label]
			}
		case ir.OpBr:
			i = labels[op.Label]

		case ir.OpLoad:
			v := m.Mem.Read(read(op.A), int(op.Mem.Size))
			if op.Mem.Signed {
				v = signExtend(v, op.Mem.Size)
			}
			write(op.Dst, v)
		case ir.OpStore:
			m.Mem.Write(read(op.A), int(op.Mem.Size), read(op.B))

		case ir.OpCall:
			v, exit := m.callHelper(op, read)
			if exit != nil {
				return *exit
			}
			if op.Dst.Valid() {
				write(op.Dst, v)
			}

		case ir.OpExitTB:
			if op.Aux == ir.ExitNoChain {
				return Exit{Kind: ExitIndirect, Slot: -1, Target: m.CPU.PC}
			}
			return Exit{Kind: ExitChain, Slot: int(op.Aux), Target: m.CPU.PC}
		case ir.OpLookupGoto:
			return Exit{Kind: ExitIndirect, Slot: -1, Target: m.CPU.PC}

		default:
			panic(fmt.Sprintf("interp: unhandled op %s", op.Code))
		}
	}
	panic("interp: unit ended without an exit")
}
