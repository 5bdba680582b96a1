package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestDecodeSingle(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"mov immediate word", []byte{0xB8, 0x05, 0x00}, "mov ax, 5"},
		{"mov register to register", []byte{0x89, 0xD8}, "mov ax, bx"},
		{"cmp sign-extended to direct address", []byte{0x83, 0x3E, 0x00, 0x00, 0x05}, "cmp word [0], 5"},
		{"mov cl immediate", []byte{0xB1, 0x0C}, "mov cl, 12"},
		{"mov ch negative immediate", []byte{0xB5, 0xF4}, "mov ch, -12"},
		{"mov dx immediate", []byte{0xBA, 0x6C, 0x0F}, "mov dx, 3948"},
		{"mov cx negative word", []byte{0xB9, 0xF4, 0xFF}, "mov cx, -12"},
		{"mov from bx + si", []byte{0x8A, 0x00}, "mov al, [bx + si]"},
		{"mov bp zero displacement", []byte{0x8B, 0x56, 0x00}, "mov dx, [bp + 0]"},
		{"mov negative disp8", []byte{0x8B, 0x41, 0xDB}, "mov ax, [bx + di - 37]"},
		{"mov to memory disp16", []byte{0x89, 0x8C, 0xD4, 0xFE}, "mov [si - 300], cx"},
		{"mov direct address", []byte{0x8B, 0x1E, 0x82, 0x0D}, "mov bx, [3458]"},
		{"add reg from memory", []byte{0x03, 0x18}, "add bx, [bx + si]"},
		{"add sign-extended to register", []byte{0x83, 0xC6, 0x02}, "add si, 2"},
		{"add byte to memory", []byte{0x80, 0x07, 0x22}, "add byte [bx], 34"},
		{"add sign-extended byte to memory", []byte{0x82, 0x07, 0x22}, "add byte [bx], 34"},
		{"cmp sign-extended byte to register", []byte{0x82, 0xF9, 0xFE}, "cmp cl, -2"},
		{"sub word to direct address", []byte{0x81, 0x2E, 0x10, 0x27, 0xE8, 0x03}, "sub word [10000], 1000"},
		{"add to accumulator", []byte{0x05, 0xE8, 0x03}, "add ax, 1000"},
		{"sub from al", []byte{0x2C, 0xE2}, "sub al, -30"},
		{"cmp al", []byte{0x3C, 0x09}, "cmp al, 9"},
		{"sub register", []byte{0x29, 0xD8}, "sub ax, bx"},
		{"cmp register", []byte{0x39, 0xD8}, "cmp ax, bx"},
		{"cmp di minus one", []byte{0x83, 0xFF, 0xFF}, "cmp di, -1"},
		{"jne forward", []byte{0x75, 0x02}, "jne 2"},
		{"je backward", []byte{0x74, 0xFE}, "je -2"},
		{"jnle", []byte{0x7F, 0x10}, "jnle 16"},
		{"loop", []byte{0xE2, 0xFC}, "loop -4"},
		{"loopz", []byte{0xE1, 0x00}, "loopz 0"},
		{"loopnz", []byte{0xE0, 0x7F}, "loopnz 127"},
		{"jcxz", []byte{0xE3, 0x80}, "jcxz -128"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.input)
			ins, err := d.Next()
			if err != nil {
				t.Fatalf("Next failed: %v", err)
			}
			if got := Format(ins); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
			if ins.Size() != len(tt.input) {
				t.Errorf("Size() = %d, want %d", ins.Size(), len(tt.input))
			}
			if _, err := d.Next(); err != io.EOF {
				t.Errorf("expected io.EOF after instruction, got %v", err)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		sentinel error
		offset   int
		bad      byte
	}{
		{"unsupported opcode", []byte{0x0F}, ErrUnsupportedOpcode, 0, 0x0F},
		{"missing addressing byte", []byte{0x89}, ErrTruncated, 0, 0x89},
		{"missing disp8", []byte{0x8B, 0x56}, ErrTruncated, 0, 0x8B},
		{"missing disp16 high byte", []byte{0x89, 0x8C, 0xD4}, ErrTruncated, 0, 0x89},
		{"missing direct address", []byte{0x8B, 0x1E, 0x82}, ErrTruncated, 0, 0x8B},
		{"missing immediate", []byte{0x83, 0x3E, 0x00, 0x00}, ErrTruncated, 0, 0x83},
		{"missing word immediate high byte", []byte{0xB8, 0x05}, ErrTruncated, 0, 0xB8},
		{"missing jump offset", []byte{0x89, 0xD8, 0x74}, ErrTruncated, 2, 0x74},
		{"alu sub-opcode or", []byte{0x83, 0x0E, 0x00, 0x00, 0x05}, ErrUnsupportedALUOp, 0, 0x0E},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.input)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %T", err)
			}
			if de.Offset != tt.offset {
				t.Errorf("Offset = %d, want %d", de.Offset, tt.offset)
			}
			if de.Byte != tt.bad {
				t.Errorf("Byte = 0x%02X, want 0x%02X", de.Byte, tt.bad)
			}
		})
	}
}

func TestUnsupportedALUSubOps(t *testing.T) {
	names := map[byte]string{1: "or", 2: "adc", 3: "sbb", 4: "and", 6: "xor"}
	for _, op := range []byte{0x80, 0x81, 0x82, 0x83} {
		for reg, name := range names {
			modrm := 0b11_000_000 | reg<<3 // register operand ax/al
			input := []byte{0x89, 0xD8, op, modrm, 0x01, 0x00}
			t.Run(fmt.Sprintf("%02x %s", op, name), func(t *testing.T) {
				decoded, err := Decode(input)
				if !errors.Is(err, ErrUnsupportedALUOp) {
					t.Fatalf("expected ErrUnsupportedALUOp, got %v", err)
				}
				if len(decoded) != 1 {
					t.Errorf("decoded %d instructions before the error, want 1", len(decoded))
				}
				var de *DecodeError
				if !errors.As(err, &de) {
					t.Fatalf("expected *DecodeError, got %T", err)
				}
				if de.Offset != 2 || de.Byte != modrm {
					t.Errorf("DecodeError = offset %d byte 0x%02X, want offset 2 byte 0x%02X", de.Offset, de.Byte, modrm)
				}
			})
		}
	}
}

func TestUnsupportedALUOpIsUnsupportedOpcode(t *testing.T) {
	_, err := Decode([]byte{0x81, 0xC8, 0x01, 0x00})
	if !errors.Is(err, ErrUnsupportedOpcode) {
		t.Fatalf("expected ErrUnsupportedOpcode, got %v", err)
	}
}

func TestFailFastKeepsEarlierInstructions(t *testing.T) {
	input := []byte{0xB8, 0x05, 0x00, 0x0F, 0xB8, 0x01, 0x00}

	out, err := Decode(input)
	if !errors.Is(err, ErrUnsupportedOpcode) {
		t.Fatalf("expected ErrUnsupportedOpcode, got %v", err)
	}
	if len(out) != 1 || Format(out[0]) != "mov ax, 5" {
		t.Fatalf("unexpected instructions before failure: %v", out)
	}

	var buf bytes.Buffer
	err = Disassemble(&buf, input)
	if !errors.Is(err, ErrUnsupportedOpcode) {
		t.Fatalf("expected ErrUnsupportedOpcode, got %v", err)
	}
	if buf.String() != "mov ax, 5\n" {
		t.Errorf("partial output = %q", buf.String())
	}
}

func TestErrorIsSticky(t *testing.T) {
	d := New([]byte{0x0F, 0xB8, 0x05, 0x00})
	_, first := d.Next()
	if first == nil {
		t.Fatal("expected error")
	}
	_, second := d.Next()
	if second != first {
		t.Errorf("second Next returned %v, want %v", second, first)
	}
	if d.Offset() != 1 {
		t.Errorf("Offset() = %d, want 1", d.Offset())
	}
}

func TestEmptyInput(t *testing.T) {
	out, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode(nil) error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no instructions, got %d", len(out))
	}
}

func TestTruncationEmitsNothing(t *testing.T) {
	var buf bytes.Buffer
	err := Disassemble(&buf, []byte{0x89, 0xD8, 0x8B, 0x56})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	if buf.String() != "mov ax, bx\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRegisterToRegisterMov(t *testing.T) {
	names := map[Width][8]string{
		Byte: {"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"},
		Word: {"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"},
	}

	for d := byte(0); d < 2; d++ {
		for w := byte(0); w < 2; w++ {
			for reg := byte(0); reg < 8; reg++ {
				for rm := byte(0); rm < 8; rm++ {
					input := []byte{0x88 | d<<1 | w, 0xC0 | reg<<3 | rm}
					table := names[Width(w)]
					want := fmt.Sprintf("mov %s, %s", table[rm], table[reg])
					if d == 1 {
						want = fmt.Sprintf("mov %s, %s", table[reg], table[rm])
					}

					out, err := Decode(input)
					if err != nil {
						t.Fatalf("Decode(% X) error: %v", input, err)
					}
					if got := Format(out[0]); got != want {
						t.Errorf("Decode(% X) = %q, want %q", input, got, want)
					}
				}
			}
		}
	}
}

func TestDisp8Sign(t *testing.T) {
	for i := 0; i < 256; i++ {
		input := []byte{0x8B, 0x47, byte(i)} // mov ax, [bx + d8]
		want := fmt.Sprintf("mov ax, [bx + %d]", i)
		if i >= 0x80 {
			want = fmt.Sprintf("mov ax, [bx - %d]", 256-i)
		}

		out, err := Decode(input)
		if err != nil {
			t.Fatalf("Decode(% X) error: %v", input, err)
		}
		if got := Format(out[0]); got != want {
			t.Errorf("Decode(% X) = %q, want %q", input, got, want)
		}
	}
}

func TestDirectAddressIgnoresDirectionAndWidth(t *testing.T) {
	for d := byte(0); d < 2; d++ {
		for w := byte(0); w < 2; w++ {
			input := []byte{0x88 | d<<1 | w, 0x06, 0x34, 0x12}
			out, err := Decode(input)
			if err != nil {
				t.Fatalf("Decode(% X) error: %v", input, err)
			}
			ins := out[0]
			found := false
			for _, op := range ins.Operands {
				if addr, ok := op.(DirectAddress); ok {
					found = addr.Address == 0x1234
				}
				if _, ok := op.(Indexed); ok {
					t.Errorf("Decode(% X) produced an indexed operand", input)
				}
			}
			if !found {
				t.Errorf("Decode(% X) = %q, missing [4660]", input, Format(ins))
			}
		}
	}
}

func TestSignExtendedImmediate(t *testing.T) {
	for i := 0; i < 256; i++ {
		input := []byte{0x83, 0xC0, byte(i), 0x90}
		d := New(input)
		ins, err := d.Next()
		if err != nil {
			t.Fatalf("Next(% X) error: %v", input, err)
		}
		if ins.Size() != 3 {
			t.Fatalf("Size() = %d, want 3", ins.Size())
		}
		want := fmt.Sprintf("add ax, %d", int16(int8(byte(i))))
		if got := Format(ins); got != want {
			t.Errorf("Format() = %q, want %q", got, want)
		}
	}
}

func TestBranchTarget(t *testing.T) {
	out, err := Decode([]byte{0x89, 0xD8, 0x75, 0xFC})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	target, ok := out[1].Target()
	if !ok {
		t.Fatal("expected jne to have a target")
	}
	if target != 0 {
		t.Errorf("Target() = %d, want 0", target)
	}
	if _, ok := out[0].Target(); ok {
		t.Error("mov should not have a target")
	}
}

func TestDeterministic(t *testing.T) {
	input := []byte{
		0xB8, 0x05, 0x00, 0x89, 0xD8, 0x83, 0x3E, 0x00, 0x00, 0x05,
		0x8B, 0x41, 0xDB, 0x75, 0xF0, 0xE2, 0xFE,
	}
	var first, second bytes.Buffer
	if err := Disassemble(&first, input); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := Disassemble(&second, input); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("outputs differ:\n%s\n%s", first.String(), second.String())
	}
}
