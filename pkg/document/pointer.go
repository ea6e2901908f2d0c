package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Pointer addresses a value inside a document (RFC 6901). The empty pointer
// is the document root.
type Pointer []string

var tokenEscaper = strings.NewReplacer("~", "~0", "/", "~1")
var tokenUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

func ParsePointer(s string) (Pointer, error) {
	if s == "" {
		return Pointer{}, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("pointer %q must start with /", s)
	}
	raw := strings.Split(s[1:], "/")
	p := make(Pointer, len(raw))
	for i, t := range raw {
		p[i] = tokenUnescaper.Replace(t)
	}
	return p, nil
}

func (p Pointer) String() string {
	var b strings.Builder
	for _, t := range p {
		b.WriteByte('/')
		b.WriteString(tokenEscaper.Replace(t))
	}
	return b.String()
}

// Child returns a new pointer with key appended.
func (p Pointer) Child(key string) Pointer {
	out := make(Pointer, len(p), len(p)+1)
	copy(out, p)
	return append(out, key)
}

func (p Pointer) Index(i int) Pointer {
	return p.Child(strconv.Itoa(i))
}

// Parent returns the pointer without its last token, and that token.
func (p Pointer) Parent() (Pointer, string) {
	if len(p) == 0 {
		return p, ""
	}
	return p[:len(p)-1], p[len(p)-1]
}

// Last returns the last token, or "" for the root.
func (p Pointer) Last() string {
	_, last := p.Parent()
	return last
}

// At resolves p inside v.
func (v Value) At(p Pointer) (Value, error) {
	cur := v
	for i, tok := range p {
		next, err := cur.step(tok)
		if err != nil {
			return Value{}, fmt.Errorf("%s: %w", p[:i+1], err)
		}
		cur = next
	}
	return cur, nil
}

func (v Value) step(tok string) (Value, error) {
	switch v.kind {
	case Object:
		if c, ok := v.Get(tok); ok {
			return c, nil
		}
		return Value{}, fmt.Errorf("no member %q", tok)
	case Array:
		i, err := strconv.Atoi(tok)
		if err != nil {
			return Value{}, fmt.Errorf("invalid index %q", tok)
		}
		if c, ok := v.Index(i); ok {
			return c, nil
		}
		return Value{}, fmt.Errorf("index %d out of range", i)
	}
	return Value{}, fmt.Errorf("cannot descend into %s", v.kind)
}

// SetAt returns a copy of v with the value at p replaced by nv. The parent of
// p must exist; an object parent gains the member if it is missing.
func (v Value) SetAt(p Pointer, nv Value) (Value, error) {
	return v.updateAt(p, func(Value) (Value, error) { return nv, nil })
}

// AppendAt returns a copy of v with nv appended to the array at p.
func (v Value) AppendAt(p Pointer, nv Value) (Value, error) {
	return v.updateAt(p, func(arr Value) (Value, error) { return arr.Append(nv) })
}

// RemoveAt returns a copy of v without the array item addressed by p.
func (v Value) RemoveAt(p Pointer) (Value, error) {
	parent, last := p.Parent()
	if len(p) == 0 {
		return v, fmt.Errorf("cannot remove the document root")
	}
	i, err := strconv.Atoi(last)
	if err != nil {
		return v, fmt.Errorf("%s: invalid index %q", p, last)
	}
	return v.updateAt(parent, func(arr Value) (Value, error) { return arr.Remove(i) })
}

func (v Value) updateAt(p Pointer, fn func(Value) (Value, error)) (Value, error) {
	if len(p) == 0 {
		return fn(v)
	}
	tok, rest := p[0], p[1:]
	switch v.kind {
	case Object:
		child, ok := v.Get(tok)
		if !ok && len(rest) > 0 {
			return v, fmt.Errorf("%s: no member %q", p, tok)
		}
		nc, err := child.updateAt(rest, fn)
		if err != nil {
			return v, err
		}
		return v.Set(tok, nc)
	case Array:
		i, err := strconv.Atoi(tok)
		if err != nil {
			return v, fmt.Errorf("%s: invalid index %q", p, tok)
		}
		child, ok := v.Index(i)
		if !ok {
			return v, fmt.Errorf("%s: index %d out of range", p, i)
		}
		nc, err := child.updateAt(rest, fn)
		if err != nil {
			return v, err
		}
		return v.SetIndex(i, nc)
	}
	return v, fmt.Errorf("%s: cannot descend into %s", p, v.kind)
}
