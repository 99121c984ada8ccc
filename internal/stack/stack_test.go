package stack

import (
	"bytes"
	"testing"
)

func TestPushAndArithmetic(t *testing.T) {
	s := New()
	s.Push(3)
	s.Push(4)
	if warned := s.Add(); warned {
		t.Fatalf("Add warned unexpectedly")
	}
	if got := s.Snapshot(); len(got) != 1 || got[0] != 7 {
		t.Fatalf("stack = %v, want [7]", got)
	}
}

func TestSubOrderIsNextMinusTop(t *testing.T) {
	s := New()
	s.Push(10)
	s.Push(3)
	s.Sub() // b=10 (next), a=3 (top): pushes b-a = 7
	if got := s.Snapshot(); len(got) != 1 || got[0] != 7 {
		t.Fatalf("stack = %v, want [7]", got)
	}
}

func TestUnderflowIsNoOpAndWarns(t *testing.T) {
	s := New()
	s.Push(1)
	if warned := s.Add(); !warned {
		t.Fatalf("Add with one element should warn")
	}
	if got := s.Snapshot(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("stack modified on failed Add: %v", got)
	}
}

func TestDivByZeroIsNoOp(t *testing.T) {
	s := New()
	s.Push(5)
	s.Push(0)
	if warned := s.Div(); !warned {
		t.Fatalf("Div by zero should warn")
	}
	if got := s.Snapshot(); len(got) != 2 {
		t.Fatalf("stack modified on failed Div: %v", got)
	}
}

func TestModEuclidean(t *testing.T) {
	s := New()
	s.Push(-7)
	s.Push(3)
	s.Mod() // b=-7, a=3: Euclidean remainder in [0,3)
	if got := s.Snapshot(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("stack = %v, want [2]", got)
	}
}

func TestGt(t *testing.T) {
	s := New()
	s.Push(5)
	s.Push(2)
	s.Gt() // b=5, a=2: 5>2 -> 1
	if got := s.Snapshot(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("stack = %v, want [1]", got)
	}
}

func TestPtrAndSwiPopTheirOperand(t *testing.T) {
	s := New()
	s.Push(3)
	n, warned := s.Ptr()
	if warned || n != 3 {
		t.Fatalf("Ptr() = (%d, %v), want (3, false)", n, warned)
	}
	if s.Len() != 0 {
		t.Fatalf("Ptr should pop its operand, stack = %v", s.Snapshot())
	}

	s.Push(5)
	n, warned = s.Swi()
	if warned || n != 5 {
		t.Fatalf("Swi() = (%d, %v), want (5, false)", n, warned)
	}
	if s.Len() != 0 {
		t.Fatalf("Swi should pop its operand, stack = %v", s.Snapshot())
	}
}

func TestDup(t *testing.T) {
	s := New()
	s.Push(9)
	s.Dup()
	if got := s.Snapshot(); len(got) != 2 || got[0] != 9 || got[1] != 9 {
		t.Fatalf("stack = %v, want [9 9]", got)
	}
}

func TestRollPositiveBuriesTop(t *testing.T) {
	s := New()
	for _, v := range []int64{1, 2, 3} { // bottom..top: 1 2 3
		s.Push(int(v))
	}
	s.Push(3) // n=3 (roll depth)
	s.Push(1) // a=1 (one roll)
	if warned := s.Roll(); warned {
		t.Fatalf("Roll warned unexpectedly")
	}
	// One positive roll buries the top (3) to the bottom of the window.
	if got := s.Snapshot(); len(got) != 3 || got[0] != 3 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("stack = %v, want [3 1 2]", got)
	}
}

func TestRollNegativeBringsBottomToTop(t *testing.T) {
	s := New()
	for _, v := range []int64{1, 2, 3} {
		s.Push(int(v))
	}
	s.Push(3)  // n=3
	s.Push(-1) // a=-1 (one roll upward)
	if warned := s.Roll(); warned {
		t.Fatalf("Roll warned unexpectedly")
	}
	if got := s.Snapshot(); len(got) != 3 || got[0] != 2 || got[1] != 3 || got[2] != 1 {
		t.Fatalf("stack = %v, want [2 3 1]", got)
	}
}

func TestRollDepthExceedingStackIsNoOp(t *testing.T) {
	s := New()
	s.Push(1)
	s.Push(2)
	s.Push(5) // n=5, deeper than the one remaining entry
	s.Push(1) // a=1
	if warned := s.Roll(); !warned {
		t.Fatalf("Roll with n exceeding depth should warn")
	}
	if got := s.Snapshot(); len(got) != 4 {
		t.Fatalf("stack modified on failed Roll: %v", got)
	}
}

func TestCharOutAndIntOut(t *testing.T) {
	s := New()
	s.Push(int('A'))
	var buf bytes.Buffer
	if warned := s.CharOut(&buf); warned {
		t.Fatalf("CharOut warned unexpectedly")
	}
	if buf.String() != "A" {
		t.Fatalf("CharOut wrote %q, want %q", buf.String(), "A")
	}

	s.Push(42)
	buf.Reset()
	if warned := s.IntOut(&buf); warned {
		t.Fatalf("IntOut warned unexpectedly")
	}
	if buf.String() != "42" {
		t.Fatalf("IntOut wrote %q, want %q", buf.String(), "42")
	}
}
