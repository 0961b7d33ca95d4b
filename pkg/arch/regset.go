package arch

// RegSetX86_64 is the general-purpose register file of an X86-64 thread,
// laid out the way the external stack-transform engine expects it.
type RegSetX86_64 struct {
	R15, R14, R13, R12 uint64
	R11, R10, R9, R8   uint64
	Rdi, Rsi           uint64
	Rbp                uint64
	Rbx, Rdx, Rcx, Rax uint64
	Rsp                uint64
	Rip                uint64
	Eflags             uint64
	Fs, Gs             uint64
}

// RegSetAArch64 is the general-purpose register file of an AArch64 thread.
type RegSetAArch64 struct {
	X  [31]uint64 // x0-x30; x29 is the frame pointer, x30 the link register.
	Sp uint64
	Pc uint64
	// Pstate holds the processor state flags (NZCV and friends).
	Pstate uint64
}

// RegSetPOWERPC64 is the general-purpose register file of a POWERPC64
// thread.
type RegSetPOWERPC64 struct {
	R   [32]uint64 // r1 is the stack pointer, r31 the frame pointer by convention.
	Pc  uint64
	Msr uint64
	Ctr uint64
	Lr  uint64
	Xer uint64
	Ccr uint64
}

// RegSet is a tagged union over the three supported register-file layouts.
// Exactly one of the embedded variants is meaningful at a time; Tag says
// which. Callers must not read a variant other than the one named by Tag —
// see the invariant in spec.md §3 ("the tag matches the destination
// architecture whenever the union is consumed").
type RegSet struct {
	Tag       Arch
	AArch64   RegSetAArch64
	POWERPC64 RegSetPOWERPC64
	X86_64    RegSetX86_64
}

// SP returns the stack pointer named by Tag, at the ISA-specific position
// documented in spec.md §4.4: sp for AArch64, r1 for POWERPC64, rsp for
// X86-64.
func (r *RegSet) SP() uint64 {
	switch r.Tag {
	case AArch64:
		return r.AArch64.Sp
	case POWERPC64:
		return r.POWERPC64.R[1]
	case X86_64:
		return r.X86_64.Rsp
	default:
		panic("arch: SP() on a RegSet with no architecture tag")
	}
}

// FP returns the frame pointer named by Tag: x29 for AArch64, r31 for
// POWERPC64, rbp for X86-64.
func (r *RegSet) FP() uint64 {
	switch r.Tag {
	case AArch64:
		return r.AArch64.X[29]
	case POWERPC64:
		return r.POWERPC64.R[31]
	case X86_64:
		return r.X86_64.Rbp
	default:
		panic("arch: FP() on a RegSet with no architecture tag")
	}
}

// PC returns the instruction pointer named by Tag.
func (r *RegSet) PC() uint64 {
	switch r.Tag {
	case AArch64:
		return r.AArch64.Pc
	case POWERPC64:
		return r.POWERPC64.Pc
	case X86_64:
		return r.X86_64.Rip
	default:
		panic("arch: PC() on a RegSet with no architecture tag")
	}
}

// SetPC overwrites the instruction pointer named by Tag. C4 uses this to
// patch the destination register set's entry point to the resumption
// trampoline (spec.md §4.4, step 1).
func (r *RegSet) SetPC(pc uint64) {
	switch r.Tag {
	case AArch64:
		r.AArch64.Pc = pc
	case POWERPC64:
		r.POWERPC64.Pc = pc
	case X86_64:
		r.X86_64.Rip = pc
	default:
		panic("arch: SetPC() on a RegSet with no architecture tag")
	}
}
