package color

// Instruction is one of the seventeen Piet operations, decoded from a
// chromatic-to-chromatic color difference (spec.md §6).
type Instruction int

const (
	Push Instruction = iota
	Pop
	Add
	Sub
	Mul
	Div
	Mod
	Not
	Gt
	Ptr
	Swi
	Dup
	Roll
	CharIn
	IntIn
	CharOut
	IntOut
)

func (i Instruction) String() string {
	return instructionNames[i]
}

var instructionNames = [...]string{
	Push: "push", Pop: "pop", Add: "add", Sub: "sub", Mul: "mul",
	Div: "div", Mod: "mod", Not: "not", Gt: "gt", Ptr: "ptr",
	Swi: "swi", Dup: "dup", Roll: "roll", CharIn: "charin",
	IntIn: "intin", CharOut: "charout", IntOut: "intout",
}

// instructionTable is the fixed δlightness×δhue decode table from
// spec.md §6. instructionTable[0][0] has no entry: (0,0) decodes to
// "no-op, stay within block" and is represented by Decode returning
// ok=false.
var instructionTable = [3][6]Instruction{
	0: {1: Add, 2: Div, 3: Gt, 4: Dup, 5: CharIn},
	1: {0: Push, 1: Sub, 2: Mod, 3: Ptr, 4: Roll, 5: IntOut},
	2: {0: Pop, 1: Mul, 2: Not, 3: Swi, 4: IntIn, 5: CharOut},
}

// Decode maps a color difference to the instruction it encodes. ok is
// false for the (0,0) difference, which carries no instruction.
func Decode(d Diff) (Instruction, bool) {
	if d.DeltaLightness == 0 && d.DeltaHue == 0 {
		return 0, false
	}
	return instructionTable[d.DeltaLightness][d.DeltaHue], true
}
