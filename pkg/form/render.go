package form

import (
	"errors"

	"content-dashboard/pkg/document"
	"content-dashboard/pkg/models"
)

type NodeKind string

const (
	NodeField NodeKind = "field"
	NodeGroup NodeKind = "group"
	NodeList  NodeKind = "list"
	NodeItem  NodeKind = "item"
)

// Node is one element of the rendered form tree.
type Node struct {
	Kind      NodeKind          `json:"kind"`
	Key       string            `json:"key"`
	Label     string            `json:"label"`
	Pointer   string            `json:"pointer"`
	Field     *models.FormField `json:"field,omitempty"`
	Preview   string            `json:"preview,omitempty"`
	ShowLabel bool              `json:"show_label"`
	Disabled  bool              `json:"disabled"`
	Autofocus bool              `json:"autofocus"`
	Scalar    bool              `json:"scalar"` // list whose items are bare fields
	Children  []Node            `json:"children,omitempty"`
}

// Form is a rendered document: scalar fields and groups first, lists after.
type Form struct {
	Fields []Node `json:"fields"`
	Lists  []Node `json:"lists"`
}

var ErrNotObject = errors.New("document root is not an object")

// Renderer builds form trees. Label and Preview may be nil.
type Renderer struct {
	Classifier *Classifier
	Label      func(key string) string
	Preview    func(value string) string
}

// Render builds the form for doc. focus is the pointer of a freshly added
// list item; its first field gets autofocus.
func (r *Renderer) Render(doc document.Value, policy models.Document, focus string) (Form, error) {
	if doc.Kind() != document.Object {
		return Form{}, ErrNotObject
	}
	var f Form
	for _, m := range doc.Members() {
		if policy.IsHidden(m.Key) {
			continue
		}
		p := document.Pointer{m.Key}
		if m.Value.Kind() == document.Array {
			f.Lists = append(f.Lists, r.list(m.Key, p, m.Value, focus))
			continue
		}
		f.Fields = append(f.Fields, r.node(m.Key, p, m.Value, true, policy.IsReadOnly(m.Key), false))
	}
	return f, nil
}

func (r *Renderer) node(key string, p document.Pointer, v document.Value, showLabel, disabled, autofocus bool) Node {
	switch v.Kind() {
	case document.Array:
		return r.list(key, p, v, "")
	case document.Object:
		g := Node{Kind: NodeGroup, Key: key, Label: r.label(key), Pointer: p.String(), ShowLabel: showLabel, Disabled: disabled}
		for i, m := range v.Members() {
			g.Children = append(g.Children, r.node(m.Key, p.Child(m.Key), m.Value, true, disabled, autofocus && i == 0))
		}
		return g
	}
	field := r.Classifier.Field(key, v)
	n := Node{
		Kind:      NodeField,
		Key:       key,
		Label:     r.label(key),
		Pointer:   p.String(),
		Field:     &field,
		ShowLabel: showLabel,
		Disabled:  disabled,
		Autofocus: autofocus,
	}
	if field.Widget == models.WidgetImage && r.Preview != nil && field.Value != "" {
		n.Preview = r.Preview(field.Value)
	}
	return n
}

func (r *Renderer) list(key string, p document.Pointer, arr document.Value, focus string) Node {
	items := arr.Items()
	l := Node{
		Kind:      NodeList,
		Key:       key,
		Label:     r.label(key),
		Pointer:   p.String(),
		ShowLabel: true,
		Scalar:    len(items) > 0 && items[0].IsScalar(),
	}
	for i, item := range items {
		ip := p.Index(i)
		focused := focus != "" && ip.String() == focus
		in := Node{Kind: NodeItem, Key: key, Pointer: ip.String()}
		if item.IsScalar() {
			in.Children = []Node{r.node(key, ip, item, false, false, focused)}
		} else if item.Kind() == document.Object {
			for j, m := range item.Members() {
				in.Children = append(in.Children, r.node(m.Key, ip.Child(m.Key), m.Value, true, false, focused && j == 0))
			}
		} else {
			in.Children = []Node{r.list(key, ip, item, focus)}
		}
		l.Children = append(l.Children, in)
	}
	return l
}

func (r *Renderer) label(key string) string {
	if r.Label == nil {
		return key
	}
	return r.Label(key)
}
