package ir

import (
	"fmt"

	"github.com/sarchlab/rvdbt/state"
)

// GlobalClass identifies which CPU-state field a global is bound to.
type GlobalClass uint8

// Global classes.
const (
	GlobalGPR GlobalClass = iota
	GlobalFPR
	GlobalPC
	GlobalBadAddr
	GlobalLoadRes
	GlobalLoadVal
)

// GlobalDesc describes one bound global: its display name, the CPU-state
// field backing it, and the field's byte offset (the layout contract shared
// with the execution runtime).
type GlobalDesc struct {
	Name  string
	Class GlobalClass
	Index int // register index for GlobalGPR/GlobalFPR
	Off   uintptr
}

// gprNames are the RISC-V ABI names of the integer registers.
var gprNames = [state.NumGPR]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// fprNames are the ABI names of the floating-point registers.
var fprNames = [state.NumFPR]string{
	"ft0", "ft1", "ft2", "ft3", "ft4", "ft5", "ft6", "ft7",
	"fs0", "fs1", "fa0", "fa1", "fa2", "fa3", "fa4", "fa5",
	"fa6", "fa7", "fs2", "fs3", "fs4", "fs5", "fs6", "fs7",
	"fs8", "fs9", "fs10", "fs11", "ft8", "ft9", "ft10", "ft11",
}

// Globals is the register binding table: the fixed IR-level storage
// locations backing the architectural registers and the translation-visible
// CPU-state fields. It is constructed once, before any translation begins,
// and passed by reference into every unit build.
type Globals struct {
	gpr [state.NumGPR]Ref
	fpr [state.NumFPR]Ref

	// PC, BadAddr, LoadRes and LoadVal are the non-register bindings.
	PC      Ref
	BadAddr Ref
	LoadRes Ref
	LoadVal Ref

	descs []GlobalDesc
}

// BindGlobals builds the register binding table against the CPU record
// layout. Integer register 0 is deliberately left unbound: it is not a
// mutable storage location, and the accessor wrappers substitute the
// constant zero for it.
func BindGlobals() *Globals {
	g := &Globals{}
	lay := state.Layout()

	bind := func(name string, class GlobalClass, index int, off uintptr) Ref {
		id := int32(len(g.descs))
		g.descs = append(g.descs, GlobalDesc{Name: name, Class: class, Index: index, Off: off})
		return Ref{Kind: RefGlobal, ID: id}
	}

	for i := 1; i < state.NumGPR; i++ {
		g.gpr[i] = bind(gprNames[i], GlobalGPR, i, lay.GPR+uintptr(i)*8)
	}
	for i := 0; i < state.NumFPR; i++ {
		g.fpr[i] = bind(fprNames[i], GlobalFPR, i, lay.FPR+uintptr(i)*8)
	}
	g.PC = bind("pc", GlobalPC, 0, lay.PC)
	g.BadAddr = bind("badaddr", GlobalBadAddr, 0, lay.BadAddr)
	g.LoadRes = bind("load_res", GlobalLoadRes, 0, lay.LoadRes)
	g.LoadVal = bind("load_val", GlobalLoadVal, 0, lay.LoadVal)

	return g
}

// GPR returns the global backing integer register i. Register 0 has no
// binding; the returned reference is invalid and must not be emitted.
func (g *Globals) GPR(i int) Ref {
	return g.gpr[i]
}

// FPR returns the global backing floating-point register i.
func (g *Globals) FPR(i int) Ref {
	return g.fpr[i]
}

// NumGlobals returns the number of bound globals.
func (g *Globals) NumGlobals() int { return len(g.descs) }

// Desc returns the descriptor of global id.
func (g *Globals) Desc(id int32) GlobalDesc {
	return g.descs[id]
}

// Name returns a printable name for a reference, for diagnostics.
func (g *Globals) Name(r Ref) string {
	switch r.Kind {
	case RefGlobal:
		return g.descs[r.ID].Name
	case RefTemp:
		return fmt.Sprintf("tmp%d", r.ID)
	case RefConst:
		return fmt.Sprintf("$%#x", uint64(r.Val))
	}
	return "<none>"
}
