package arch

import "testing"

func TestRegSetAccessorsPerArch(t *testing.T) {
	tests := []struct {
		name string
		tag  Arch
		set  func(r *RegSet, sp, fp, pc uint64)
	}{
		{
			name: "aarch64",
			tag:  AArch64,
			set: func(r *RegSet, sp, fp, pc uint64) {
				r.AArch64.Sp = sp
				r.AArch64.X[29] = fp
				r.AArch64.Pc = pc
			},
		},
		{
			name: "powerpc64",
			tag:  POWERPC64,
			set: func(r *RegSet, sp, fp, pc uint64) {
				r.POWERPC64.R[1] = sp
				r.POWERPC64.R[31] = fp
				r.POWERPC64.Pc = pc
			},
		},
		{
			name: "x86_64",
			tag:  X86_64,
			set: func(r *RegSet, sp, fp, pc uint64) {
				r.X86_64.Rsp = sp
				r.X86_64.Rbp = fp
				r.X86_64.Rip = pc
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &RegSet{Tag: tt.tag}
			tt.set(r, 0x1000, 0x2000, 0x3000)
			if r.SP() != 0x1000 {
				t.Errorf("SP() = %#x, want 0x1000", r.SP())
			}
			if r.FP() != 0x2000 {
				t.Errorf("FP() = %#x, want 0x2000", r.FP())
			}
			if r.PC() != 0x3000 {
				t.Errorf("PC() = %#x, want 0x3000", r.PC())
			}
			r.SetPC(0x4000)
			if r.PC() != 0x4000 {
				t.Errorf("PC() after SetPC = %#x, want 0x4000", r.PC())
			}
		})
	}
}

func TestRegSetAccessorsPanicOnUnknownTag(t *testing.T) {
	for _, fn := range []struct {
		name string
		call func(r *RegSet)
	}{
		{"SP", func(r *RegSet) { r.SP() }},
		{"FP", func(r *RegSet) { r.FP() }},
		{"PC", func(r *RegSet) { r.PC() }},
		{"SetPC", func(r *RegSet) { r.SetPC(1) }},
	} {
		t.Run(fn.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Errorf("%s: want panic on an untagged RegSet", fn.name)
				}
			}()
			r := &RegSet{}
			fn.call(r)
		})
	}
}

func TestArchString(t *testing.T) {
	cases := map[Arch]string{
		AArch64:   "aarch64",
		POWERPC64: "powerpc64",
		X86_64:    "x86_64",
	}
	for a, want := range cases {
		if got := a.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", a, got, want)
		}
	}
	if got := Unknown.String(); got == "" {
		t.Error("Unknown.String() is empty")
	}
}
