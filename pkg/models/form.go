package models

// WidgetKind is the input type chosen for a form field.
type WidgetKind string

const (
	WidgetShortText WidgetKind = "short-text"
	WidgetLongText  WidgetKind = "long-text"
	WidgetImage     WidgetKind = "image"
)

// FormField is derived at render time from a JSON key and value. It is never stored.
type FormField struct {
	Key    string     `json:"key"`
	Value  string     `json:"value"`
	Widget WidgetKind `json:"widget"`
}
