package fixedwidth

import "fmt"

// Slot is one field of a Structure. Offset is filled in by NewStructure.
type Slot struct {
	Name   string
	Width  int
	Type   FieldType
	Offset int
}

// N declares a numeric slot.
func N(name string, width int) Slot { return Slot{Name: name, Width: width, Type: Numeric} }

// AN declares an alphanumeric slot.
func AN(name string, width int) Slot { return Slot{Name: name, Width: width, Type: AlphaNumeric} }

// Structure is the ordered slot table of one record kind. It is immutable
// after construction and safe to share.
type Structure struct {
	name  string
	slots []Slot
	index map[string]int
	width int
}

// NewStructure builds a structure from slots in declaration order and
// computes each slot's offset. Duplicate names, non-positive widths and a
// total width above LineWidth are rejected.
func NewStructure(name string, slots ...Slot) (*Structure, error) {
	s := &Structure{
		name:  name,
		slots: make([]Slot, len(slots)),
		index: make(map[string]int, len(slots)),
	}
	for i, slot := range slots {
		if slot.Name == "" {
			return nil, fmt.Errorf("%w: %s: slot %d has no name", ErrMalformedStructure, name, i)
		}
		if slot.Width <= 0 {
			return nil, fmt.Errorf("%w: %s.%s: width %d", ErrMalformedStructure, name, slot.Name, slot.Width)
		}
		if _, dup := s.index[slot.Name]; dup {
			return nil, fmt.Errorf("%w: %s: duplicate field %q", ErrMalformedStructure, name, slot.Name)
		}
		slot.Offset = s.width
		s.slots[i] = slot
		s.index[slot.Name] = i
		s.width += slot.Width
	}
	if s.width > LineWidth {
		return nil, fmt.Errorf("%w: %s is %d wide", ErrStructureTooWide, name, s.width)
	}
	return s, nil
}

// MustStructure is NewStructure for compiled-in tables; it panics on a
// malformed definition.
func MustStructure(name string, slots ...Slot) *Structure {
	s, err := NewStructure(name, slots...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Structure) Name() string { return s.name }

// Width is the sum of all slot widths, before padding to LineWidth.
func (s *Structure) Width() int { return s.width }

// Slots returns a copy of the slot table.
func (s *Structure) Slots() []Slot {
	out := make([]Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

// Slot looks up a slot by field name.
func (s *Structure) Slot(name string) (Slot, bool) {
	i, ok := s.index[name]
	if !ok {
		return Slot{}, false
	}
	return s.slots[i], true
}
