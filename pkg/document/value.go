// Package document holds an ordered JSON value tree. Object keys keep the
// order they were read in, number literals are kept verbatim, and every
// update returns a new value, leaving the receiver untouched.
package document

import "fmt"

type Kind uint8

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Member is a key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Value is an immutable JSON value. The zero Value is null.
type Value struct {
	kind    Kind
	boolean bool
	text    string // string contents or number literal
	items   []Value
	members []Member
}

func NullValue() Value { return Value{} }

func BoolValue(b bool) Value { return Value{kind: Bool, boolean: b} }

func StringValue(s string) Value { return Value{kind: String, text: s} }

// NumberValue returns a number holding the literal lit. The literal is not
// checked; use Parse for untrusted input.
func NumberValue(lit string) Value {
	return Value{kind: Number, text: lit}
}

func ArrayValue(items ...Value) Value {
	return Value{kind: Array, items: append([]Value{}, items...)}
}

func ObjectValue(members ...Member) Value {
	return Value{kind: Object, members: append([]Member{}, members...)}
}

func (v Value) Kind() Kind { return v.kind }

// IsScalar reports whether v is neither an array nor an object.
func (v Value) IsScalar() bool {
	return v.kind != Array && v.kind != Object
}

func (v Value) Bool() bool { return v.boolean }

// Str returns the string contents, or the literal for numbers.
func (v Value) Str() string { return v.text }

// Text renders a scalar the way a form input shows it.
func (v Value) Text() string {
	switch v.kind {
	case Null:
		return ""
	case Bool:
		if v.boolean {
			return "true"
		}
		return "false"
	case Number, String:
		return v.text
	}
	return string(Encode(v))
}

// Len returns the number of items or members.
func (v Value) Len() int {
	switch v.kind {
	case Array:
		return len(v.items)
	case Object:
		return len(v.members)
	}
	return 0
}

// Items returns a copy of the array items.
func (v Value) Items() []Value {
	return append([]Value(nil), v.items...)
}

// Members returns a copy of the object members in document order.
func (v Value) Members() []Member {
	return append([]Member(nil), v.members...)
}

// Keys returns the object keys in document order.
func (v Value) Keys() []string {
	keys := make([]string, len(v.members))
	for i, m := range v.members {
		keys[i] = m.Key
	}
	return keys
}

func (v Value) Get(key string) (Value, bool) {
	for _, m := range v.members {
		if m.Key == key {
			return m.Value, true
		}
	}
	return Value{}, false
}

func (v Value) Index(i int) (Value, bool) {
	if v.kind != Array || i < 0 || i >= len(v.items) {
		return Value{}, false
	}
	return v.items[i], true
}

// Set returns a copy of the object with key set to nv. A new key is appended
// after the existing ones.
func (v Value) Set(key string, nv Value) (Value, error) {
	if v.kind != Object {
		return v, fmt.Errorf("set %q: not an object (%s)", key, v.kind)
	}
	members := make([]Member, len(v.members), len(v.members)+1)
	copy(members, v.members)
	for i := range members {
		if members[i].Key == key {
			members[i].Value = nv
			return Value{kind: Object, members: members}, nil
		}
	}
	return Value{kind: Object, members: append(members, Member{Key: key, Value: nv})}, nil
}

// SetIndex returns a copy of the array with item i replaced.
func (v Value) SetIndex(i int, nv Value) (Value, error) {
	if v.kind != Array {
		return v, fmt.Errorf("set [%d]: not an array (%s)", i, v.kind)
	}
	if i < 0 || i >= len(v.items) {
		return v, fmt.Errorf("set [%d]: index out of range (len %d)", i, len(v.items))
	}
	items := append([]Value(nil), v.items...)
	items[i] = nv
	return Value{kind: Array, items: items}, nil
}

// Append returns a copy of the array with nv added at the end.
func (v Value) Append(nv Value) (Value, error) {
	if v.kind != Array {
		return v, fmt.Errorf("append: not an array (%s)", v.kind)
	}
	items := make([]Value, len(v.items), len(v.items)+1)
	copy(items, v.items)
	return Value{kind: Array, items: append(items, nv)}, nil
}

// Remove returns a copy of the array without item i.
func (v Value) Remove(i int) (Value, error) {
	if v.kind != Array {
		return v, fmt.Errorf("remove [%d]: not an array (%s)", i, v.kind)
	}
	if i < 0 || i >= len(v.items) {
		return v, fmt.Errorf("remove [%d]: index out of range (len %d)", i, len(v.items))
	}
	items := make([]Value, 0, len(v.items)-1)
	items = append(items, v.items[:i]...)
	items = append(items, v.items[i+1:]...)
	return Value{kind: Array, items: items}, nil
}

// Equal reports deep equality, including key order.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case Null:
		return true
	case Bool:
		return v.boolean == o.boolean
	case Number, String:
		return v.text == o.text
	case Array:
		if len(v.items) != len(o.items) {
			return false
		}
		for i := range v.items {
			if !v.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case Object:
		if len(v.members) != len(o.members) {
			return false
		}
		for i := range v.members {
			if v.members[i].Key != o.members[i].Key || !v.members[i].Value.Equal(o.members[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

func (v Value) String() string {
	return string(Encode(v))
}
