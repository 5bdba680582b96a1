package decoder

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders ins as a single line of assembly, without a newline.
func Format(ins Instruction) string {
	var b strings.Builder
	b.WriteString(ins.Mnemonic.String())
	for i, op := range ins.Operands {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}
		if ins.Sized && IsMemory(op) {
			b.WriteString(ins.Width.String())
			b.WriteByte(' ')
		}
		b.WriteString(FormatOperand(op))
	}
	return b.String()
}

// FormatOperand renders a single operand.
func FormatOperand(op Operand) string {
	switch o := op.(type) {
	case Register:
		return o.Name()
	case DirectAddress:
		return "[" + strconv.Itoa(int(o.Address)) + "]"
	case Indexed:
		if !o.HasDisp {
			return "[" + o.Base() + "]"
		}
		if o.Disp < 0 {
			return fmt.Sprintf("[%s - %d]", o.Base(), -int(o.Disp))
		}
		return fmt.Sprintf("[%s + %d]", o.Base(), o.Disp)
	case Immediate:
		return strconv.Itoa(int(o.Value))
	}
	return fmt.Sprintf("%v", op)
}
