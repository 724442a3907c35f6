// Package translate is the instruction-decode and IR-emission core of the
// binary translator: it turns a contiguous run of guest RISC-V instructions
// into one translation unit of IR, terminated by exactly one exit form.
package translate

import (
	"github.com/sarchlab/rvdbt/insts"
	"github.com/sarchlab/rvdbt/ir"
	"github.com/sarchlab/rvdbt/state"
)

// PageSize is the guest memory page granularity used for the unit cutoff
// and the direct-chain safety check.
const PageSize uint64 = 4096

const pageMask = PageSize - 1

// Status is the unit construction state.
type Status uint8

// Construction states.
const (
	// StatusNext: the unit continues with the following instruction.
	StatusNext Status = iota
	// StatusTooMany: the unit hit the page boundary or the instruction
	// cap; a normal termination that falls through to the next address.
	StatusTooMany
	// StatusNoReturn: a translator already emitted the unit's terminal
	// exit (control transfer or exception); no further exit IR follows.
	StatusNoReturn
)

// CodeReader supplies raw opcode words from guest memory. Instruction fetch
// itself (paging, permissions) is the runtime's concern; the translator
// only consumes the word at a given address.
type CodeReader interface {
	// ReadInsn returns the little-endian 32-bit word at addr. For a
	// compressed instruction only the low half is significant.
	ReadInsn(addr uint64) uint32
}

// Core is the per-core translation configuration: the enabled extension set
// and the process-wide register binding table, both fixed before any
// translation begins.
type Core struct {
	Ext     uint32
	Globals *ir.Globals
}

// NewCore creates a translation core for the given extension set.
func NewCore(ext uint32, globals *ir.Globals) *Core {
	return &Core{Ext: ext, Globals: globals}
}

// HasExt reports whether all extensions in mask are enabled.
func (c *Core) HasExt(mask uint32) bool {
	return c.Ext&mask == mask
}

// UnitDesc describes one candidate translation unit, supplied by the
// driving runtime.
type UnitDesc struct {
	// PC is the guest address of the unit's first instruction.
	PC uint64
	// MemIdx is the memory-access mode captured from the entry state.
	MemIdx uint8
	// SingleStep disables chaining and turns chained exits into debug
	// exception exits.
	SingleStep bool
	// MaxInsns caps the number of instructions in the unit; 0 means the
	// page boundary is the only cutoff.
	MaxInsns int
	// Code supplies opcode words.
	Code CodeReader
}

// Context is the single-owner state of one unit under construction. It
// exists only for the duration of the unit's build and never survives past
// FinalizeUnit.
type Context struct {
	core *Core
	b    *ir.Builder
	code CodeReader

	// pcFirst is the unit's first guest address; pcNext is the address
	// of the instruction currently being translated; pcSucc is where the
	// next instruction starts.
	pcFirst uint64
	pcNext  uint64
	pcSucc  uint64

	// opcode is the raw word just fetched.
	opcode uint32

	memIdx     uint8
	singleStep bool

	// frm caches the last rounding mode installed within this unit, or
	// state.FrmUnknown. Any write to a system register terminates the
	// unit, so the cache can never go stale across units.
	frm int

	status   Status
	maxInsns int
	nInsns   int
}

// BeginUnit starts construction of one translation unit.
func BeginUnit(core *Core, desc UnitDesc) *Context {
	return &Context{
		core:       core,
		b:          ir.NewBuilder(core.Globals),
		code:       desc.Code,
		pcFirst:    desc.PC,
		pcNext:     desc.PC,
		pcSucc:     desc.PC,
		memIdx:     desc.MemIdx,
		singleStep: desc.SingleStep,
		frm:        state.FrmUnknown,
		maxInsns:   desc.MaxInsns,
	}
}

// Status returns the construction state.
func (ctx *Context) Status() Status { return ctx.status }

// PCNext returns the cursor: the address the next instruction would be
// fetched from (or, once terminated, one past the unit's covered range).
func (ctx *Context) PCNext() uint64 { return ctx.pcNext }

// TranslateOne fetches, decodes and translates the instruction at the
// cursor, then advances the cursor and applies the page-boundary and
// instruction-cap cutoffs. It reports whether the unit continues.
func (ctx *Context) TranslateOne() bool {
	ctx.b.InsnStart(ctx.pcNext)
	ctx.opcode = ctx.code.ReadInsn(ctx.pcNext)
	ctx.decodeOpc()
	ctx.pcNext = ctx.pcSucc
	ctx.nInsns++

	if ctx.status == StatusNext {
		if ctx.maxInsns > 0 && ctx.nInsns >= ctx.maxInsns {
			ctx.status = StatusTooMany
		}
		pageStart := ctx.pcFirst &^ pageMask
		if ctx.pcNext-pageStart >= PageSize {
			ctx.status = StatusTooMany
		}
	}
	return ctx.status == StatusNext
}

// decodeOpc selects the decoder from the two low-order bits of the fetched
// word, runs it, and dispatches the descriptor to its translator. Absence
// of a match, a disabled extension, and an unimplemented encoding all
// resolve to the illegal-instruction exception exit.
func (ctx *Context) decodeOpc() {
	if ctx.opcode&0x3 != 0x3 {
		if !ctx.core.HasExt(state.ExtC) {
			ctx.genExcIllegal()
			return
		}
		ctx.pcSucc = ctx.pcNext + 2
		inst, ok := insts.Decode16(uint16(ctx.opcode), ctx.core.Ext)
		if !ok {
			ctx.genExcIllegal()
			return
		}
		ctx.dispatch(&inst)
		return
	}

	ctx.pcSucc = ctx.pcNext + 4
	inst, ok := insts.Decode32(ctx.opcode, ctx.core.Ext)
	if !ok {
		ctx.genExcIllegal()
		return
	}
	ctx.dispatch(&inst)
}

func (ctx *Context) dispatch(inst *insts.Inst) {
	h := handlers[inst.Op]
	if h == nil || !h(ctx, inst) {
		ctx.genExcIllegal()
	}
}

// CheckBreakpoint handles a runtime breakpoint at the cursor: it commits
// the pc, emits the debug exception exit, and advances the covered-range
// bookkeeping by one minimal instruction width so debugging tools see the
// breakpoint address inside the unit's range.
func (ctx *Context) CheckBreakpoint() {
	g := ctx.b.Globals()
	ctx.b.Mov(g.PC, ir.ConstU(ctx.pcNext))
	ctx.genExcDebug()
	ctx.status = StatusNoReturn
	if ctx.core.HasExt(state.ExtC) {
		ctx.pcNext += 2
	} else {
		ctx.pcNext += 4
	}
	ctx.pcSucc = ctx.pcNext
}

// FinalizeUnit emits the unit's exit IR and seals the op list. A unit
// terminated by a translator (StatusNoReturn) already carries its exit;
// the instruction-cap/page termination chains to the cursor address.
// Finalizing a unit that is still building is a driver bug.
func (ctx *Context) FinalizeUnit() *ir.Program {
	switch ctx.status {
	case StatusTooMany:
		ctx.genGotoTB(0, ctx.pcNext)
	case StatusNoReturn:
	default:
		panic("translate: unit finalized while still building")
	}
	return ctx.b.Finish(ctx.pcFirst, ctx.pcNext)
}
