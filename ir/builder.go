package ir

// Builder accumulates the IR of one translation unit. It is exclusively
// owned by the unit under construction and discarded with it.
type Builder struct {
	globals *Globals

	ops     []Op
	nTemps  int
	nLabels int
}

// NewBuilder creates a builder over the given register binding table.
func NewBuilder(globals *Globals) *Builder {
	return &Builder{globals: globals}
}

// Globals returns the register binding table the builder emits against.
func (b *Builder) Globals() *Globals { return b.globals }

// Temp allocates a unit-local temporary.
func (b *Builder) Temp() Ref {
	r := Ref{Kind: RefTemp, ID: int32(b.nTemps)}
	b.nTemps++
	return r
}

// NewLabel allocates a label for brcond targets.
func (b *Builder) NewLabel() int {
	l := b.nLabels
	b.nLabels++
	return l
}

func (b *Builder) emit(op Op) {
	b.ops = append(b.ops, op)
}

// InsnStart marks the start of the instruction at guest address pc.
func (b *Builder) InsnStart(pc uint64) {
	b.emit(Op{Code: OpInsnStart, Aux: int64(pc)})
}

// Mov emits dst = src.
func (b *Builder) Mov(dst, src Ref) {
	b.emit(Op{Code: OpMov, Dst: dst, A: src})
}

// MovI emits dst = constant v.
func (b *Builder) MovI(dst Ref, v int64) {
	b.Mov(dst, Const(v))
}

// Op3 emits a three-operand value operation dst = a <code> b.
func (b *Builder) Op3(code OpCode, dst, a, bb Ref) {
	b.emit(Op{Code: code, Dst: dst, A: a, B: bb})
}

// Mul2 emits the double-width multiply lo,hi = a * b (OpMulU2 or OpMulS2).
func (b *Builder) Mul2(code OpCode, lo, hi, a, bb Ref) {
	b.emit(Op{Code: code, Dst: lo, Dst2: hi, A: a, B: bb})
}

// Ext32S emits dst = sign-extended low 32 bits of a.
func (b *Builder) Ext32S(dst, a Ref) {
	b.emit(Op{Code: OpExt32S, Dst: dst, A: a})
}

// Ext32U emits dst = zero-extended low 32 bits of a.
func (b *Builder) Ext32U(dst, a Ref) {
	b.emit(Op{Code: OpExt32U, Dst: dst, A: a})
}

// Setcond emits dst = (a cond b) ? 1 : 0.
func (b *Builder) Setcond(cond Cond, dst, a, bb Ref) {
	b.emit(Op{Code: OpSetcond, Cond: cond, Dst: dst, A: a, B: bb})
}

// Movcond emits dst = (c1 cond c2) ? vtrue : vfalse. Neither arm has side
// effects, so the emitted code has a fixed shape regardless of operand
// values.
func (b *Builder) Movcond(cond Cond, dst, c1, c2, vtrue, vfalse Ref) {
	b.emit(Op{Code: OpMovcond, Cond: cond, Dst: dst, A: c1, B: c2, C: vtrue, D: vfalse})
}

// Brcond emits a conditional branch to label when (a cond b) holds.
func (b *Builder) Brcond(cond Cond, a, bb Ref, label int) {
	b.emit(Op{Code: OpBrcond, Cond: cond, A: a, B: bb, Label: label})
}

// Br emits an unconditional branch to label.
func (b *Builder) Br(label int) {
	b.emit(Op{Code: OpBr, Label: label})
}

// SetLabel defines label at the current position.
func (b *Builder) SetLabel(label int) {
	b.emit(Op{Code: OpLabel, Label: label})
}

// Load emits dst = guest memory at addr, per mem.
func (b *Builder) Load(mem MemOp, dst, addr Ref) {
	b.emit(Op{Code: OpLoad, Mem: mem, Dst: dst, A: addr})
}

// Store emits guest memory at addr = val, per mem.
func (b *Builder) Store(mem MemOp, addr, val Ref) {
	b.emit(Op{Code: OpStore, Mem: mem, A: addr, B: val})
}

// Call emits a helper invocation. dst may be invalid for void helpers; up
// to three arguments are passed.
func (b *Builder) Call(fn Helper, dst Ref, aux int64, args ...Ref) {
	op := Op{Code: OpCall, Fn: fn, Dst: dst, Aux: aux}
	if len(args) > 0 {
		op.A = args[0]
	}
	if len(args) > 1 {
		op.B = args[1]
	}
	if len(args) > 2 {
		op.C = args[2]
	}
	b.emit(op)
}

// GotoTB marks the start of a direct-chain exit using the given link slot.
func (b *Builder) GotoTB(slot int) {
	b.emit(Op{Code: OpGotoTB, Aux: int64(slot)})
}

// ExitTB emits the unit exit. A slot >= 0 requests chaining through that
// link slot; ExitNoChain requests a plain dispatcher exit.
func (b *Builder) ExitTB(slot int64) {
	b.emit(Op{Code: OpExitTB, Aux: slot})
}

// LookupGoto emits the indirect-dispatch exit: execution continues at the
// address held in the pc global via the runtime's lookup path.
func (b *Builder) LookupGoto() {
	b.emit(Op{Code: OpLookupGoto})
}

// Len returns the number of ops emitted so far.
func (b *Builder) Len() int { return len(b.ops) }

// Finish seals the builder into a Program covering [pcFirst, pcEnd).
func (b *Builder) Finish(pcFirst, pcEnd uint64) *Program {
	return &Program{
		Ops:       b.ops,
		PCFirst:   pcFirst,
		PCEnd:     pcEnd,
		NumTemps:  b.nTemps,
		NumLabels: b.nLabels,
	}
}
