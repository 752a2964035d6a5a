package cpu

import "testing"

// BenchmarkCPU_Loop measures raw dispatch in a tight counting loop.
func BenchmarkCPU_Loop(b *testing.B) {
	c := loadAsm(b, `
(LOOP)
@i
M=M+1
@LOOP
0;JMP
`)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Run(10000)
	}
}

// BenchmarkCPU_ScreenFill paints the whole screen map.
func BenchmarkCPU_ScreenFill(b *testing.B) {
	words := fillProgram(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := NewCPU()
		if err := c.Load(words); err != nil {
			b.Fatal(err)
		}
		c.RunUntilDone()
	}
}

func BenchmarkCPU_Framebuffer(b *testing.B) {
	c := NewCPU()
	for i := 0; i < ScreenWords; i += 3 {
		c.RAM[ScreenBase+i] = 0xAAAA
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.GetFramebufferRGBA()
	}
}

func fillProgram(tb testing.TB) []uint16 {
	c := loadAsm(tb, `
    @SCREEN
    D=A
    @addr
    M=D
    @8192
    D=A
    @n
    M=D
(FILL)
    @addr
    A=M
    M=-1
    @addr
    M=M+1
    @n
    MD=M-1
    @FILL
    D;JGT
(END)
    @END
    0;JMP
`)
	return c.ROM[:c.ProgramLen()]
}

func TestFillProgram(t *testing.T) {
	c := NewCPU()
	if err := c.Load(fillProgram(t)); err != nil {
		t.Fatal(err)
	}
	c.RunUntilDone()
	if !c.Pixel(0, 0) || !c.Pixel(ScreenWidth-1, ScreenHeight-1) {
		t.Error("screen not filled")
	}
}
