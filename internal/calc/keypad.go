package calc

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Keypad is the input buffer behind the on-screen number pad.
// The zero value behaves like a freshly cleared pad.
type Keypad struct {
	buf string
}

// NewKeypad restores a pad from a previously displayed buffer. The buffer is
// cut at the first character outside the keypad alphabet.
func NewKeypad(buf string) *Keypad {
	k := &Keypad{}
	for _, r := range buf {
		if !strings.ContainsRune(allowed, r) {
			break
		}
		k.Press(string(r))
	}
	return k
}

// Display returns the current buffer, "0" when empty.
func (k *Keypad) Display() string {
	if k.buf == "" {
		return "0"
	}
	return k.buf
}

// Press appends a digit, operator or decimal point. A lone "0" is replaced.
// Keys outside the keypad alphabet are ignored.
func (k *Keypad) Press(key string) {
	if len(key) != 1 || !strings.Contains(allowed, key) {
		return
	}
	if k.Display() == "0" {
		k.buf = key
		return
	}
	k.buf += key
}

// Delete removes the last character, falling back to "0".
func (k *Keypad) Delete() {
	if len(k.buf) <= 1 {
		k.buf = "0"
		return
	}
	k.buf = k.buf[:len(k.buf)-1]
}

func (k *Keypad) Clear() {
	k.buf = "0"
}

// Equal replaces the buffer with its evaluated result.
func (k *Keypad) Equal() {
	k.buf = EvaluateString(k.buf)
}

// Value is the evaluated amount of the buffer.
func (k *Keypad) Value() decimal.Decimal {
	return Evaluate(k.buf)
}
