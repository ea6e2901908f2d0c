package document

import (
	"bytes"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

// ErrSyntax is returned by Parse for input that is not well-formed JSON.
var ErrSyntax = errors.New("malformed JSON")

// Valid reports whether data is a single well-formed JSON value.
func Valid(data []byte) bool {
	return json.Valid(data)
}

// Parse reads a single JSON value, keeping object key order and number
// literals as written.
func Parse(data []byte) (Value, error) {
	if !json.Valid(data) {
		var discard interface{}
		if err := json.Unmarshal(data, &discard); err != nil {
			return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
		}
		return Value{}, ErrSyntax
	}

	// The standard decoder's token stream is used here because it hands out
	// number literals untouched under UseNumber.
	dec := stdjson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parseValue(dec)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, fmt.Errorf("%w: trailing data after value", ErrSyntax)
	}
	return v, nil
}

func parseValue(dec *stdjson.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return NullValue(), nil
	case bool:
		return BoolValue(t), nil
	case stdjson.Number:
		return NumberValue(t.String()), nil
	case string:
		return StringValue(t), nil
	case stdjson.Delim:
		switch t {
		case '[':
			var items []Value
			for dec.More() {
				item, err := parseValue(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: Array, items: items}, nil
		case '{':
			var members []Member
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("object key %v is not a string", kt)
				}
				val, err := parseValue(dec)
				if err != nil {
					return Value{}, err
				}
				members = append(members, Member{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Value{kind: Object, members: members}, nil
		}
	}
	return Value{}, fmt.Errorf("unexpected token %v", tok)
}

// Encode writes v with two-space indentation and without HTML escaping.
func Encode(v Value) []byte {
	var b bytes.Buffer
	encode(&b, v, 0)
	return b.Bytes()
}

func encode(b *bytes.Buffer, v Value, depth int) {
	switch v.kind {
	case Null:
		b.WriteString("null")
	case Bool:
		if v.boolean {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Number:
		b.WriteString(v.text)
	case String:
		writeString(b, v.text)
	case Array:
		if len(v.items) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, item := range v.items {
			indent(b, depth+1)
			encode(b, item, depth+1)
			if i < len(v.items)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		indent(b, depth)
		b.WriteByte(']')
	case Object:
		if len(v.members) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for i, m := range v.members {
			indent(b, depth+1)
			writeString(b, m.Key)
			b.WriteString(": ")
			encode(b, m.Value, depth+1)
			if i < len(v.members)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		indent(b, depth)
		b.WriteByte('}')
	}
}

func writeString(b *bytes.Buffer, s string) {
	enc := json.NewEncoder(b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		// strings always marshal
		panic(err)
	}
	// Encode terminates the value with a newline.
	b.Truncate(b.Len() - 1)
}

func indent(b *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

// Pretty re-indents JSON text. Invalid input is reported with ErrSyntax.
func Pretty(data []byte) ([]byte, error) {
	v, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Encode(v), nil
}
