// Package ir defines the intermediate representation emitted by the
// translator front end: a flat list of operations over typed value
// references, terminated by exactly one exit form per translation unit.
package ir

// RefKind identifies what a Ref denotes.
type RefKind uint8

// Reference kinds.
const (
	RefNone   RefKind = iota // unset operand slot
	RefGlobal                // a bound CPU-state location
	RefTemp                  // a unit-local temporary
	RefConst                 // an inline constant
)

// Ref is a value reference used as an operand or destination of an Op.
type Ref struct {
	Kind RefKind
	ID   int32 // global or temp index
	Val  int64 // constant value for RefConst
}

// Valid reports whether the reference denotes a value.
func (r Ref) Valid() bool { return r.Kind != RefNone }

// Const builds an inline constant reference.
func Const(v int64) Ref { return Ref{Kind: RefConst, Val: v} }

// ConstU builds an inline constant reference from an unsigned value.
func ConstU(v uint64) Ref { return Ref{Kind: RefConst, Val: int64(v)} }

// Cond is a comparison condition for setcond/movcond/brcond.
type Cond uint8

// Comparison conditions.
const (
	CondEQ Cond = iota
	CondNE
	CondLT  // signed less than
	CondGE  // signed greater or equal
	CondLTU // unsigned less than
	CondGEU // unsigned greater or equal
)

// MemOp describes one guest memory access.
type MemOp struct {
	// Size is the access width in bytes: 1, 2, 4 or 8.
	Size uint8
	// Signed selects sign extension of loaded values.
	Signed bool
	// Idx is the memory-access mode the access executes under, captured
	// from the unit's entry state.
	Idx uint8
}

// Helper identifies an out-of-line runtime helper invoked by OpCall.
type Helper uint16

// Runtime helpers. RaiseException and SetRoundingMode mirror the two
// translation-core helpers; the rest delegate floating-point arithmetic and
// CSR access to the numeric/system subsystem.
const (
	HelperNone Helper = iota
	HelperRaiseException
	HelperSetRoundingMode
	HelperCSR

	HelperFAddS
	HelperFSubS
	HelperFMulS
	HelperFDivS
	HelperFSqrtS
	HelperFMinS
	HelperFMaxS
	HelperFEqS
	HelperFLtS
	HelperFLeS

	HelperFAddD
	HelperFSubD
	HelperFMulD
	HelperFDivD
	HelperFSqrtD
	HelperFMinD
	HelperFMaxD
	HelperFEqD
	HelperFLtD
	HelperFLeD

	HelperFCvtSD // double -> single
	HelperFCvtDS // single -> double
	HelperFCvtWS // single -> int32
	HelperFCvtWUS
	HelperFCvtLS // single -> int64
	HelperFCvtLUS
	HelperFCvtSW // int32 -> single
	HelperFCvtSWU
	HelperFCvtSL
	HelperFCvtSLU
	HelperFCvtWD
	HelperFCvtWUD
	HelperFCvtLD
	HelperFCvtLUD
	HelperFCvtDW
	HelperFCvtDWU
	HelperFCvtDL
	HelperFCvtDLU
)

// CSR access sub-operations, carried in OpCall's Aux for HelperCSR.
const (
	CSRRW int64 = iota
	CSRRS
	CSRRC
)

// OpCode enumerates IR operations.
type OpCode uint8

// IR operations. All value operations are 64-bit; Ext32S/Ext32U narrow
// to 32 bits and extend back.
const (
	OpInvalid OpCode = iota

	OpInsnStart // marker: Aux = guest pc of the instruction that follows

	OpMov // Dst = A
	OpAdd // Dst = A + B
	OpSub
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr // logical
	OpSar // arithmetic

	OpMul    // Dst = low64(A * B)
	OpMulU2  // Dst = low64, Dst2 = high64 of unsigned A*B
	OpMulS2  // Dst = low64, Dst2 = high64 of signed A*B
	OpDiv    // signed; operands are rewritten safe by the emitter
	OpDivU
	OpRem
	OpRemU

	OpExt32S // Dst = sign-extended low 32 bits of A
	OpExt32U // Dst = zero-extended low 32 bits of A

	OpSetcond // Dst = (A cond B) ? 1 : 0
	OpMovcond // Dst = (A cond B) ? C : D
	OpBrcond  // if (A cond B) goto Label
	OpBr      // goto Label
	OpLabel   // label definition site

	OpLoad  // Dst = mem[A] per Mem
	OpStore // mem[A] = B per Mem

	OpCall // Dst = helper(A, B, C); Aux is helper-specific

	// Exit forms. A unit's op list contains exactly one terminal exit
	// sequence: GotoTB+Mov(pc)+ExitTB for a direct chain, Mov(pc)+
	// LookupGoto for indirect dispatch, or a RaiseException call (any
	// trailing ExitTB after a raise is unreachable by construction).
	OpGotoTB     // Aux = chain slot
	OpExitTB     // Aux = chain slot, or ExitNoChain
	OpLookupGoto // indirect dispatch on the pc global
)

// ExitNoChain is the OpExitTB Aux value for an unchained dispatcher exit.
const ExitNoChain int64 = -1

// Op is one IR operation.
type Op struct {
	Code OpCode
	Cond Cond
	Mem  MemOp
	Fn   Helper

	Dst  Ref
	Dst2 Ref
	A    Ref
	B    Ref
	C    Ref
	D    Ref

	Label int
	Aux   int64
}

// Program is the IR of one translation unit.
type Program struct {
	// Ops is the operation list in emission order.
	Ops []Op

	// PCFirst is the guest address of the unit's first instruction.
	PCFirst uint64
	// PCEnd is the guest address one past the last byte the unit covers.
	PCEnd uint64

	// NumTemps and NumLabels size the executor's temp and label tables.
	NumTemps  int
	NumLabels int
}
