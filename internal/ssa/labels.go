package ssa

import "fmt"

// LabelTable is the append-with-dedup list of global symbol names
// referenced by LABEL operands.
type LabelTable struct {
	labels []StringID
}

func NewLabelTable() *LabelTable { return &LabelTable{} }

// Intern returns the label index of name, appending it on first sight.
func (lt *LabelTable) Intern(name StringID) uint32 {
	for i, l := range lt.labels {
		if l == name {
			return uint32(i)
		}
	}
	lt.labels = append(lt.labels, name)
	return uint32(len(lt.labels) - 1)
}

// At returns the interned name at index.
func (lt *LabelTable) At(index uint32) StringID {
	if index >= uint32(len(lt.labels)) {
		panic(fmt.Sprintf("BUG: label index %d out of bounds", index))
	}
	return lt.labels[index]
}
