package loader_test

import (
	"encoding/binary"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvdbt/loader"
)

var _ = Describe("ELF Loader", func() {
	var tempDir string

	BeforeEach(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "elf-loader-test")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = os.RemoveAll(tempDir)
	})

	Describe("Load", func() {
		Context("with a valid RV64 ELF binary", func() {
			var elfPath string

			BeforeEach(func() {
				elfPath = filepath.Join(tempDir, "test.elf")
				createMinimalRISCVELF(elfPath, 0x10000, 0x10000, []byte{
					// Simple RV64 code: li a0, 42; ecall
					0x13, 0x05, 0xa0, 0x02, // addi a0, x0, 42
					0x73, 0x00, 0x00, 0x00, // ecall
				})
			})

			It("should load without error", func() {
				prog, err := loader.Load(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog).NotTo(BeNil())
			})

			It("should extract the correct entry point", func() {
				prog, err := loader.Load(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(prog.EntryPoint).To(Equal(uint64(0x10000)))
			})

			It("should load segments into memory", func() {
				prog, err := loader.Load(elfPath)
				Expect(err).NotTo(HaveOccurred())
				Expect(len(prog.Segments)).To(BeNumerically(">", 0))
			})

			It("should set up initial stack pointer", func() {
				prog, err := loader.Load(elfPath)
				Expect(err).NotTo(HaveOccurred())
				// Stack should be set to a reasonable high address
				Expect(prog.InitialSP).To(BeNumerically(">", 0x7f0000000000))
			})
		})

		Context("with segment data", func() {
			It("should correctly load segment contents", func() {
				elfPath := filepath.Join(tempDir, "code.elf")
				codeData := []byte{
					0x13, 0x05, 0xa0, 0x02, // addi a0, x0, 42
					0x73, 0x00, 0x00, 0x00, // ecall
				}
				createMinimalRISCVELF(elfPath, 0x10000, 0x10000, codeData)

				prog, err := loader.Load(elfPath)
				Expect(err).NotTo(HaveOccurred())

				var foundSegment *loader.Segment
				for i := range prog.Segments {
					if prog.Segments[i].VirtAddr == 0x10000 {
						foundSegment = &prog.Segments[i]
						break
					}
				}
				Expect(foundSegment).NotTo(BeNil())
				Expect(foundSegment.Data).To(Equal(codeData))
				Expect(foundSegment.Flags & loader.SegmentFlagExecute).NotTo(BeZero())
			})
		})

		Context("with an invalid file", func() {
			It("should return error for non-existent file", func() {
				_, err := loader.Load("/nonexistent/path/to/file.elf")
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("failed to open"))
			})

			It("should return error for non-ELF file", func() {
				notElfPath := filepath.Join(tempDir, "not-elf.bin")
				err := os.WriteFile(notElfPath, []byte("not an elf file"), 0644)
				Expect(err).NotTo(HaveOccurred())

				_, err = loader.Load(notElfPath)
				Expect(err).To(HaveOccurred())
			})
		})

		Context("with non-RISC-V ELF", func() {
			It("should return error for x86-64 ELF", func() {
				elfPath := filepath.Join(tempDir, "x86.elf")
				createMinimalx86ELF(elfPath)

				_, err := loader.Load(elfPath)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("not a RISC-V"))
			})
		})
	})

	Describe("BSS segments", func() {
		It("should handle BSS segments where Memsz > Filesz", func() {
			elfPath := filepath.Join(tempDir, "bss.elf")
			initialData := []byte{0x01, 0x02, 0x03, 0x04}
			memSize := uint64(1024)
			createBSSSegmentELF(elfPath, 0x20000, 0x10000, initialData, memSize)

			prog, err := loader.Load(elfPath)
			Expect(err).NotTo(HaveOccurred())

			var bssSeg *loader.Segment
			for i := range prog.Segments {
				if prog.Segments[i].VirtAddr == 0x20000 {
					bssSeg = &prog.Segments[i]
					break
				}
			}

			Expect(bssSeg).NotTo(BeNil())
			Expect(bssSeg.Data).To(Equal(initialData))
			Expect(bssSeg.MemSize).To(Equal(memSize))
			Expect(bssSeg.MemSize).To(BeNumerically(">", uint64(len(bssSeg.Data))))
			Expect(bssSeg.Flags & loader.SegmentFlagWrite).NotTo(BeZero())
			Expect(bssSeg.Flags & loader.SegmentFlagExecute).To(BeZero())
		})
	})
})

// createMinimalRISCVELF creates a minimal valid RV64 ELF64 binary.
func createMinimalRISCVELF(path string, loadAddr, entryPoint uint64, code []byte) {
	// ELF Header (64 bytes)
	elfHeader := make([]byte, 64)

	// Magic number
	copy(elfHeader[0:4], []byte{0x7f, 'E', 'L', 'F'})
	// Class: 64-bit
	elfHeader[4] = 2
	// Data: little endian
	elfHeader[5] = 1
	// Version
	elfHeader[6] = 1
	// OS/ABI
	elfHeader[7] = 0
	// Type: executable
	binary.LittleEndian.PutUint16(elfHeader[16:18], 2)
	// Machine: RISC-V
	binary.LittleEndian.PutUint16(elfHeader[18:20], 243)
	// Version
	binary.LittleEndian.PutUint32(elfHeader[20:24], 1)
	// Entry point
	binary.LittleEndian.PutUint64(elfHeader[24:32], entryPoint)
	// Program header offset (right after ELF header)
	binary.LittleEndian.PutUint64(elfHeader[32:40], 64)
	// ELF header size
	binary.LittleEndian.PutUint16(elfHeader[52:54], 64)
	// Program header entry size
	binary.LittleEndian.PutUint16(elfHeader[54:56], 56)
	// Number of program headers
	binary.LittleEndian.PutUint16(elfHeader[56:58], 1)

	// Program Header (56 bytes) - PT_LOAD
	progHeader := make([]byte, 56)
	// Type: PT_LOAD
	binary.LittleEndian.PutUint32(progHeader[0:4], 1)
	// Flags: PF_X | PF_R (readable + executable)
	binary.LittleEndian.PutUint32(progHeader[4:8], 0x5)
	// Offset in file (after headers)
	binary.LittleEndian.PutUint64(progHeader[8:16], 120)
	// Virtual address
	binary.LittleEndian.PutUint64(progHeader[16:24], loadAddr)
	// Physical address
	binary.LittleEndian.PutUint64(progHeader[24:32], loadAddr)
	// File size
	binary.LittleEndian.PutUint64(progHeader[32:40], uint64(len(code)))
	// Memory size
	binary.LittleEndian.PutUint64(progHeader[40:48], uint64(len(code)))
	// Alignment
	binary.LittleEndian.PutUint64(progHeader[48:56], 0x1000)

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()

	_, _ = file.Write(elfHeader)
	_, _ = file.Write(progHeader)
	_, _ = file.Write(code)
}

// createMinimalx86ELF creates a minimal x86-64 ELF to test rejection.
func createMinimalx86ELF(path string) {
	elfHeader := make([]byte, 64)

	copy(elfHeader[0:4], []byte{0x7f, 'E', 'L', 'F'})
	elfHeader[4] = 2                                    // 64-bit
	elfHeader[5] = 1                                    // little endian
	elfHeader[6] = 1                                    // version
	binary.LittleEndian.PutUint16(elfHeader[16:18], 2)  // executable
	binary.LittleEndian.PutUint16(elfHeader[18:20], 62) // x86-64
	binary.LittleEndian.PutUint32(elfHeader[20:24], 1)  // version
	binary.LittleEndian.PutUint64(elfHeader[32:40], 64) // phoff
	binary.LittleEndian.PutUint16(elfHeader[52:54], 64) // ehsize
	binary.LittleEndian.PutUint16(elfHeader[54:56], 56) // phentsize

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()
	_, _ = file.Write(elfHeader)
}

// createBSSSegmentELF creates an ELF with one PT_LOAD segment whose memory
// size exceeds its file size, as a .bss-bearing data segment would.
func createBSSSegmentELF(path string, loadAddr, entryPoint uint64, data []byte, memSize uint64) {
	elfHeader := make([]byte, 64)

	copy(elfHeader[0:4], []byte{0x7f, 'E', 'L', 'F'})
	elfHeader[4] = 2
	elfHeader[5] = 1
	elfHeader[6] = 1
	binary.LittleEndian.PutUint16(elfHeader[16:18], 2)
	binary.LittleEndian.PutUint16(elfHeader[18:20], 243)
	binary.LittleEndian.PutUint32(elfHeader[20:24], 1)
	binary.LittleEndian.PutUint64(elfHeader[24:32], entryPoint)
	binary.LittleEndian.PutUint64(elfHeader[32:40], 64)
	binary.LittleEndian.PutUint16(elfHeader[52:54], 64)
	binary.LittleEndian.PutUint16(elfHeader[54:56], 56)
	binary.LittleEndian.PutUint16(elfHeader[56:58], 1)

	progHeader := make([]byte, 56)
	binary.LittleEndian.PutUint32(progHeader[0:4], 1)   // PT_LOAD
	binary.LittleEndian.PutUint32(progHeader[4:8], 0x6) // PF_R | PF_W
	binary.LittleEndian.PutUint64(progHeader[8:16], 120)
	binary.LittleEndian.PutUint64(progHeader[16:24], loadAddr)
	binary.LittleEndian.PutUint64(progHeader[24:32], loadAddr)
	binary.LittleEndian.PutUint64(progHeader[32:40], uint64(len(data)))
	binary.LittleEndian.PutUint64(progHeader[40:48], memSize)
	binary.LittleEndian.PutUint64(progHeader[48:56], 0x1000)

	file, _ := os.Create(path)
	defer func() { _ = file.Close() }()

	_, _ = file.Write(elfHeader)
	_, _ = file.Write(progHeader)
	_, _ = file.Write(data)
}
