package ssa

// StringID is the handle of an interned string. Two interned strings are
// equal exactly when their ids are equal.
type StringID uint32

// StringIDInvalid is the zero StringID; no interned string has it.
const StringIDInvalid StringID = 0

// StringInterner owns every string in a module.
type StringInterner struct {
	ids  map[string]StringID
	strs []string
}

func NewStringInterner() *StringInterner {
	return &StringInterner{
		ids: map[string]StringID{},
		// index 0 is reserved so StringIDInvalid never aliases a string.
		strs: []string{""},
	}
}

// Intern returns the id of s, interning it on first sight.
func (si *StringInterner) Intern(s string) StringID {
	if id, ok := si.ids[s]; ok {
		return id
	}
	id := StringID(len(si.strs))
	si.ids[s] = id
	si.strs = append(si.strs, s)
	return id
}

// Get returns the string with the given id.
func (si *StringInterner) Get(id StringID) string {
	if id == StringIDInvalid || int(id) >= len(si.strs) {
		panic("BUG: invalid string id")
	}
	return si.strs[id]
}
