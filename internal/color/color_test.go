package color

import "testing"

func TestFromRGBRoundTrip(t *testing.T) {
	for l := Light; l <= Dark; l++ {
		for h := Red; h <= Magenta; h++ {
			want := MakeChromatic(l, h)
			r, g, b := want.RGB()
			got, ok := FromRGB(r, g, b)
			if !ok || got != want {
				t.Errorf("FromRGB(%v) = %v, %v; want %v, true", want, got, ok, want)
			}
		}
	}
	if c, ok := FromRGB(0xFF, 0xFF, 0xFF); !ok || c != WhiteColor {
		t.Errorf("FromRGB(white) = %v, %v", c, ok)
	}
	if c, ok := FromRGB(0, 0, 0); !ok || c != BlackColor {
		t.Errorf("FromRGB(black) = %v, %v", c, ok)
	}
	if _, ok := FromRGB(1, 2, 3); ok {
		t.Errorf("FromRGB(unknown) reported ok")
	}
}

func TestDifferenceRequiresChromatic(t *testing.T) {
	c := MakeChromatic(Light, Red)
	if _, err := Difference(c, WhiteColor); err != ErrNotChromatic {
		t.Errorf("Difference(c, White) err = %v, want ErrNotChromatic", err)
	}
	if _, err := Difference(BlackColor, c); err != ErrNotChromatic {
		t.Errorf("Difference(Black, c) err = %v, want ErrNotChromatic", err)
	}
}

func TestDifferenceSameColorIsZero(t *testing.T) {
	c := MakeChromatic(Regular, Blue)
	d, err := Difference(c, c)
	if err != nil {
		t.Fatal(err)
	}
	if d.DeltaLightness != 0 || d.DeltaHue != 0 {
		t.Errorf("Difference(c,c) = %+v, want zero", d)
	}
	if _, ok := Decode(d); ok {
		t.Errorf("Decode(0,0) reported an instruction, want no-op")
	}
}

// TestDecodeTable spot-checks the decode table against spec.md §6.
func TestDecodeTable(t *testing.T) {
	cases := []struct {
		dl, dh int
		want   Instruction
	}{
		{0, 1, Add},
		{0, 2, Div},
		{0, 3, Gt},
		{0, 4, Dup},
		{0, 5, CharIn},
		{1, 0, Push},
		{1, 1, Sub},
		{1, 2, Mod},
		{1, 3, Ptr},
		{1, 4, Roll},
		{1, 5, IntOut},
		{2, 0, Pop},
		{2, 1, Mul},
		{2, 2, Not},
		{2, 3, Swi},
		{2, 4, IntIn},
		{2, 5, CharOut},
	}
	for _, tc := range cases {
		got, ok := Decode(Diff{DeltaLightness: tc.dl, DeltaHue: tc.dh})
		if !ok || got != tc.want {
			t.Errorf("Decode(%d,%d) = %v, %v; want %v, true", tc.dl, tc.dh, got, ok, tc.want)
		}
	}
}

func TestPushBlockExample(t *testing.T) {
	// spec.md §8 scenario 3: two adjacent Light-Red codels followed by
	// one Regular-Red codel (deltaL=1, deltaH=0) is a Push.
	src := MakeChromatic(Light, Red)
	dst := MakeChromatic(Regular, Red)
	d, err := Difference(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	if d.DeltaLightness != 1 || d.DeltaHue != 0 {
		t.Fatalf("Difference = %+v, want {1,0}", d)
	}
	instr, ok := Decode(d)
	if !ok || instr != Push {
		t.Errorf("Decode = %v, %v; want Push, true", instr, ok)
	}
}
