package form

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"content-dashboard/pkg/document"
	"content-dashboard/pkg/models"
)

type ActionKind string

const (
	ActionRefresh ActionKind = ""
	ActionSave    ActionKind = "save"
	ActionAdd     ActionKind = "add"
	ActionRemove  ActionKind = "remove"
)

// Action is the button an editor pressed, encoded as "save", "add:<pointer>"
// or "remove:<pointer>".
type Action struct {
	Kind    ActionKind
	Pointer document.Pointer
}

func ParseAction(s string) (Action, error) {
	kind, ptr, hasPtr := strings.Cut(s, ":")
	switch ActionKind(kind) {
	case ActionRefresh, ActionSave:
		if hasPtr {
			return Action{}, fmt.Errorf("action %q takes no pointer", kind)
		}
		return Action{Kind: ActionKind(kind)}, nil
	case ActionAdd, ActionRemove:
		p, err := document.ParsePointer(ptr)
		if err != nil {
			return Action{}, err
		}
		if len(p) == 0 {
			return Action{}, fmt.Errorf("action %q needs a pointer", kind)
		}
		return Action{Kind: ActionKind(kind), Pointer: p}, nil
	}
	return Action{}, fmt.Errorf("unknown action %q", s)
}

func (a Action) String() string {
	if a.Kind == ActionAdd || a.Kind == ActionRemove {
		return string(a.Kind) + ":" + a.Pointer.String()
	}
	return string(a.Kind)
}

// ApplyValues writes submitted field texts, keyed by pointer, into doc.
// Fields under hidden or read-only keys are skipped. Scalars keep their JSON
// type when the text still fits it.
func ApplyValues(doc document.Value, values map[string]string, policy models.Document) (document.Value, error) {
	ptrs := make([]string, 0, len(values))
	for p := range values {
		ptrs = append(ptrs, p)
	}
	sort.Strings(ptrs)

	for _, ps := range ptrs {
		p, err := document.ParsePointer(ps)
		if err != nil {
			return doc, err
		}
		if len(p) == 0 {
			return doc, fmt.Errorf("field pointer must not be the document root")
		}
		if !editable(doc, p, policy) {
			continue
		}
		cur, err := doc.At(p)
		if err != nil {
			return doc, err
		}
		nv, err := convert(cur, values[ps])
		if err != nil {
			return doc, fmt.Errorf("%s: %w", p, err)
		}
		if doc, err = doc.SetAt(p, nv); err != nil {
			return doc, err
		}
	}
	return doc, nil
}

// editable mirrors Render: hidden keys are not shown, read-only keys are
// shown disabled unless they hold a list.
func editable(doc document.Value, p document.Pointer, policy models.Document) bool {
	key := p[0]
	if policy.IsHidden(key) {
		return false
	}
	if policy.IsReadOnly(key) {
		top, ok := doc.Get(key)
		return ok && top.Kind() == document.Array
	}
	return true
}

var numberLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// convert types text like cur. Browsers submit textarea line breaks as CRLF.
func convert(cur document.Value, text string) (document.Value, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	switch cur.Kind() {
	case document.Number:
		if t := strings.TrimSpace(text); numberLiteral.MatchString(t) {
			return document.NumberValue(t), nil
		}
	case document.Bool:
		switch strings.TrimSpace(text) {
		case "true":
			return document.BoolValue(true), nil
		case "false":
			return document.BoolValue(false), nil
		}
	case document.Null:
		if text == "" {
			return document.NullValue(), nil
		}
	case document.Array, document.Object:
		return cur, fmt.Errorf("cannot set %s from a text field", cur.Kind())
	}
	return document.StringValue(text), nil
}

// AddItem appends a templated item to the list at p and returns the new
// document with the pointer of the added item.
func AddItem(doc document.Value, p document.Pointer, tmpl ItemTemplate, policy models.Document) (document.Value, document.Pointer, error) {
	if len(p) == 0 || policy.IsHidden(p[0]) {
		return doc, nil, fmt.Errorf("%s: not an editable list", p)
	}
	arr, err := doc.At(p)
	if err != nil {
		return doc, nil, err
	}
	if arr.Kind() != document.Array {
		return doc, nil, fmt.Errorf("%s: not a list (%s)", p, arr.Kind())
	}
	out, err := doc.AppendAt(p, tmpl.NewItem(itemKey(p), arr.Items()))
	if err != nil {
		return doc, nil, err
	}
	return out, p.Index(arr.Len()), nil
}

// RemoveItem drops the list item addressed by p.
func RemoveItem(doc document.Value, p document.Pointer, policy models.Document) (document.Value, error) {
	if len(p) < 2 || policy.IsHidden(p[0]) {
		return doc, fmt.Errorf("%s: not an editable list item", p)
	}
	return doc.RemoveAt(p)
}

// itemKey names the list for templating: the nearest non-index token.
func itemKey(p document.Pointer) string {
	for i := len(p) - 1; i >= 0; i-- {
		if !isIndex(p[i]) {
			return p[i]
		}
	}
	return ""
}

func isIndex(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
