package hashing

import "strconv"

// Components is the persisted bitmask of hash inputs a run was asked to
// use. The integer encoding is part of the on-disk contract (it round
// trips through the config table) and must not be renumbered.
type Components uint8

const (
	Content Components = 1 << iota
	Size
	Modified
	Created
	FileName
)

// Has reports whether c includes bit.
func (c Components) Has(bit Components) bool {
	return c&bit != 0
}

func (c Components) String() string {
	return strconv.Itoa(int(c))
}

// Parse turns the persisted string form back into a mask.
func Parse(s string) (Components, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	return Components(n), nil
}
