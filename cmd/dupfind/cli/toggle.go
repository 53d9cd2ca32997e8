package cli

import (
	"fmt"

	"dupfind/internal/hashing"
)

// bitToggle is a pflag.Value for the `+`/`-` component flags: each flag
// either sets or clears one bit of a shared hashing.Components mask, and
// an omitted flag leaves the mask's default untouched.
type bitToggle struct {
	mask *hashing.Components
	bit  hashing.Components
}

func newBitToggle(mask *hashing.Components, bit hashing.Components) *bitToggle {
	return &bitToggle{mask: mask, bit: bit}
}

func (t *bitToggle) Set(value string) error {
	switch value {
	case "+":
		*t.mask |= t.bit
	case "-":
		*t.mask &^= t.bit
	default:
		return fmt.Errorf("must be + or -, got %q", value)
	}
	return nil
}

func (t *bitToggle) String() string {
	if t.mask == nil {
		return ""
	}
	if t.mask.Has(t.bit) {
		return "+"
	}
	return "-"
}

func (t *bitToggle) Type() string {
	return "+/-"
}
