package decoder

// Kind is the instruction family.
type Kind uint8

const (
	Mov Kind = iota + 1
	Add
	Sub
	Cmp
	Jump // conditional jump, Cond selects one of 16 conditions
	Loop // loopnz, loopz, loop, jcxz
)

var kindNames = [...]string{
	Mov: "mov",
	Add: "add",
	Sub: "sub",
	Cmp: "cmp",
}

var jumpNames = [16]string{
	"jo", "jno", "jb", "jnb", "je", "jne", "jbe", "jnbe",
	"js", "jns", "jp", "jnp", "jl", "jnl", "jle", "jnle",
}

var loopNames = [4]string{"loopnz", "loopz", "loop", "jcxz"}

// Mnemonic identifies the operation. Cond is only meaningful for Jump and Loop.
type Mnemonic struct {
	Kind Kind
	Cond uint8
}

func (m Mnemonic) String() string {
	switch m.Kind {
	case Jump:
		return jumpNames[m.Cond&0x0f]
	case Loop:
		return loopNames[m.Cond&0b11]
	case Mov, Add, Sub, Cmp:
		return kindNames[m.Kind]
	}
	return "???"
}

// IsBranch reports whether the instruction carries a relative offset.
func (m Mnemonic) IsBranch() bool {
	return m.Kind == Jump || m.Kind == Loop
}

// Instruction is one decoded instruction.
type Instruction struct {
	Mnemonic Mnemonic
	Operands []Operand
	Width    Width

	// Sized is set for the immediate-to-memory form, where no register
	// operand fixes the operand size.
	Sized bool

	Offset int    // offset of the first byte in the stream
	Bytes  []byte // raw encoding
}

// Size is the encoded length in bytes.
func (i Instruction) Size() int {
	return len(i.Bytes)
}

// Target resolves a jump or loop offset against the end of the instruction.
func (i Instruction) Target() (int, bool) {
	if !i.Mnemonic.IsBranch() || len(i.Operands) != 1 {
		return 0, false
	}
	imm, ok := i.Operands[0].(Immediate)
	if !ok {
		return 0, false
	}
	return i.Offset + i.Size() + int(imm.Value), true
}

func (i Instruction) String() string {
	return Format(i)
}
