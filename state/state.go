// Package state defines the persistent per-core RISC-V CPU state record and
// the architectural constants shared by the translator and the IR executor.
package state

import "unsafe"

// NumGPR is the number of integer registers in the architectural bank.
const NumGPR = 32

// NumFPR is the number of floating-point registers in the architectural bank.
const NumFPR = 32

// Extension flags for a core. A core's extension set is fixed for its
// lifetime; translation consults it, execution never does.
const (
	ExtM uint32 = 1 << iota // integer multiply/divide
	ExtA                    // atomics
	ExtF                    // single-precision floating point
	ExtD                    // double-precision floating point
	ExtC                    // compressed (16-bit) instructions
)

// ExtG is the conventional general-purpose extension set.
const ExtG = ExtM | ExtA | ExtF | ExtD

// Exception cause codes, as delivered to the runtime's trap handler.
const (
	ExcpInstAddrMisaligned uint32 = 0
	ExcpIllegalInst        uint32 = 2
	ExcpBreakpoint         uint32 = 3
	ExcpECallU             uint32 = 8
	// ExcpDebug is an implementation-internal cause used for single-step
	// and breakpoint exits. It is outside the architectural cause space.
	ExcpDebug uint32 = 0x10000
)

// FrmUnknown marks the per-unit rounding-mode cache as holding no value.
const FrmUnknown = -1

// RMDyn is the rounding-mode field value selecting the dynamic mode held in
// the frm register.
const RMDyn = 7

// CPU is the persistent CPU state record for one emulated core.
//
// The record is owned by the core. It is mutated only by executing IR (and
// by the runtime between units); translation reads none of it. Field order
// is part of the layout contract with the execution runtime — see Offsets.
type CPU struct {
	// GPR holds the integer register bank. GPR[0] backs x0 but is never
	// bound as a mutable IR global; use ReadGPR/WriteGPR, which enforce
	// the zero-register invariant even for direct host-side access.
	GPR [NumGPR]uint64

	// FPR holds the floating-point register bank as raw bit patterns.
	// Single-precision values are NaN-boxed in the low 32 bits.
	FPR [NumFPR]uint64

	// PC is the architectural program counter.
	PC uint64

	// BadAddr records the faulting address of the most recent
	// address-related exception.
	BadAddr uint64

	// LoadRes and LoadVal form the reservation pair backing the
	// load-reserved/store-conditional approximation: the reserved address
	// and the value observed by the reserving load.
	LoadRes uint64
	LoadVal uint64

	// Frm is the currently-installed floating-point rounding mode.
	Frm uint64

	// FFlags accumulates floating-point exception flags.
	FFlags uint64
}

// ReadGPR returns the value of integer register reg. Register 0 always
// reads as zero.
func (c *CPU) ReadGPR(reg int) uint64 {
	if reg == 0 {
		return 0
	}
	return c.GPR[reg]
}

// WriteGPR stores value into integer register reg. Writes to register 0
// are discarded.
func (c *CPU) WriteGPR(reg int, value uint64) {
	if reg == 0 {
		return
	}
	c.GPR[reg] = value
}

// Offsets is the byte-offset table of the CPU record's fields. The
// execution runtime and the register binding table must agree on these
// values; they are exposed so the contract is checkable, not validated here.
type Offsets struct {
	GPR     uintptr // first element of the integer bank
	FPR     uintptr // first element of the floating-point bank
	PC      uintptr
	BadAddr uintptr
	LoadRes uintptr
	LoadVal uintptr
	Frm     uintptr
}

// Layout returns the field offsets of the CPU record.
func Layout() Offsets {
	var c CPU
	return Offsets{
		GPR:     unsafe.Offsetof(c.GPR),
		FPR:     unsafe.Offsetof(c.FPR),
		PC:      unsafe.Offsetof(c.PC),
		BadAddr: unsafe.Offsetof(c.BadAddr),
		LoadRes: unsafe.Offsetof(c.LoadRes),
		LoadVal: unsafe.Offsetof(c.LoadVal),
		Frm:     unsafe.Offsetof(c.Frm),
	}
}
