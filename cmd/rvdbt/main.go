// Package main provides the entry point for rvdbt, a RISC-V dynamic
// binary translator: guest code is decoded into IR units, cached, and
// executed by the IR interpreter.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/rvdbt/interp"
	"github.com/sarchlab/rvdbt/ir"
	"github.com/sarchlab/rvdbt/loader"
	"github.com/sarchlab/rvdbt/state"
	"github.com/sarchlab/rvdbt/tbcache"
	"github.com/sarchlab/rvdbt/translate"
)

var (
	dump       = flag.Bool("dump", false, "Dump the IR of each translated unit")
	dumpRaw    = flag.Bool("dump-raw", false, "Dump raw IR op structures of each translated unit")
	singleStep = flag.Bool("single-step", false, "Translate one instruction per unit, no chaining")
	maxInsns   = flag.Int("max-insns", 512, "Maximum instructions per translation unit")
	maxSteps   = flag.Uint64("max-steps", 0, "Stop after this many unit executions (0 = unlimited)")
	hexInput   = flag.Bool("hex", false, "Treat the input as whitespace-separated hex opcode words")
	hexBase    = flag.Uint64("base", 0x10000, "Load address and entry point for -hex input")
	verbose    = flag.Bool("v", false, "Verbose output")
)

// Linux RV64 syscall numbers handled by the minimal runtime.
const (
	sysWrite     = 64
	sysExit      = 93
	sysExitGroup = 94
)

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: rvdbt [options] <program.elf | words.hex>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	programPath := flag.Arg(0)

	var prog *loader.Program
	var err error
	if *hexInput {
		prog, err = loadHexWords(programPath, *hexBase)
	} else {
		prog, err = loader.Load(programPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading program: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		fmt.Printf("Loaded: %s\n", programPath)
		fmt.Printf("Entry point: 0x%X\n", prog.EntryPoint)
		fmt.Printf("Segments: %d\n", len(prog.Segments))
	}

	os.Exit(run(prog))
}

func run(prog *loader.Program) int {
	mem := interp.NewMemory()
	for _, seg := range prog.Segments {
		// BSS needs no explicit zero fill: untouched memory reads as zero.
		mem.WriteBytes(seg.VirtAddr, seg.Data)
	}

	cpu := &state.CPU{}
	cpu.WriteGPR(2, prog.InitialSP) // sp
	cpu.PC = prog.EntryPoint

	globals := ir.BindGlobals()
	core := translate.NewCore(state.ExtG|state.ExtC, globals)
	cache := tbcache.New(tbcache.DefaultConfig())
	machine := interp.NewMachine(cpu, mem, globals)

	var steps uint64
	for {
		if *maxSteps > 0 && steps >= *maxSteps {
			fmt.Fprintf(os.Stderr, "Step limit reached at pc 0x%X\n", cpu.PC)
			return 1
		}
		steps++

		unit := cache.Lookup(cpu.PC)
		if unit == nil {
			unit = translateUnit(core, mem, cpu.PC)
			cache.Insert(unit)
			if *dump {
				core.LogUnit(os.Stderr, unit)
			}
			if *dumpRaw {
				core.DumpUnit(os.Stderr, unit)
			}
		}

		exit := machine.Run(unit)
		if exit.Kind != interp.ExitException {
			continue
		}

		switch exit.Cause {
		case state.ExcpECallU:
			done, code := handleSyscall(cpu, mem)
			if done {
				if *verbose {
					fmt.Printf("\nExit code: %d\n", code)
					stats := cache.Stats()
					fmt.Printf("Unit cache: %d lookups, %d hits, %d evictions\n",
						stats.Lookups, stats.Hits, stats.Evictions)
				}
				return code
			}
			cpu.PC += 4 // resume past the ecall
		case state.ExcpDebug:
			// Single-step exit; the next pc is already committed.
		default:
			fmt.Fprintf(os.Stderr, "Trap: cause %d at pc 0x%X (badaddr 0x%X)\n",
				exit.Cause, cpu.PC, cpu.BadAddr)
			return 1
		}
	}
}

// loadHexWords reads whitespace-separated 32-bit hex opcode words and lays
// them out contiguously at base, which doubles as the entry point.
func loadHexWords(path string, base uint64) (*loader.Program, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hex input: %w", err)
	}

	var data []byte
	for _, field := range strings.Fields(string(raw)) {
		word, err := strconv.ParseUint(strings.TrimPrefix(field, "0x"), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("bad opcode word %q: %w", field, err)
		}
		data = append(data,
			byte(word), byte(word>>8), byte(word>>16), byte(word>>24))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("no opcode words in %s", path)
	}

	return &loader.Program{
		EntryPoint: base,
		InitialSP:  loader.DefaultStackTop,
		Segments: []loader.Segment{{
			VirtAddr: base,
			Data:     data,
			MemSize:  uint64(len(data)),
			Flags:    loader.SegmentFlagRead | loader.SegmentFlagExecute,
		}},
	}, nil
}

// translateUnit builds one translation unit starting at pc.
func translateUnit(core *translate.Core, code translate.CodeReader, pc uint64) *ir.Program {
	ctx := translate.BeginUnit(core, translate.UnitDesc{
		PC:         pc,
		SingleStep: *singleStep,
		MaxInsns:   *maxInsns,
		Code:       code,
	})
	for ctx.TranslateOne() {
	}
	return ctx.FinalizeUnit()
}

// handleSyscall services the minimal Linux user-space syscall surface.
// It returns (true, code) when the program requested termination.
func handleSyscall(cpu *state.CPU, mem *interp.Memory) (bool, int) {
	num := cpu.ReadGPR(17) // a7
	switch num {
	case sysExit, sysExitGroup:
		return true, int(int64(cpu.ReadGPR(10))) & 0xff
	case sysWrite:
		fd := cpu.ReadGPR(10)
		buf := cpu.ReadGPR(11)
		n := cpu.ReadGPR(12)
		data := mem.ReadBytes(buf, int(n))
		var out *os.File
		switch fd {
		case 1:
			out = os.Stdout
		case 2:
			out = os.Stderr
		default:
			cpu.WriteGPR(10, ^uint64(8)) // -EBADF
			return false, 0
		}
		written, _ := out.Write(data)
		cpu.WriteGPR(10, uint64(written))
	default:
		cpu.WriteGPR(10, ^uint64(37)) // -ENOSYS
	}
	return false, 0
}
