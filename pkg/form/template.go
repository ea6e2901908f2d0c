package form

import (
	"strings"

	"content-dashboard/pkg/document"
	"content-dashboard/pkg/models"
)

// ItemTemplate produces the value appended when an editor adds a list item.
type ItemTemplate interface {
	NewItem(key string, items []document.Value) document.Value
}

// FirstElementTemplate uses the first element's field set as the shape of
// new items. Lists mixing scalars and objects are shaped by whatever comes
// first.
type FirstElementTemplate struct {
	// ScalarKeys are key substrings that make an empty list a list of strings.
	ScalarKeys []string
	// DefaultFields are the members of a new item in an empty object list.
	DefaultFields []string
}

func NewFirstElementTemplate(cfg models.ListTemplate) FirstElementTemplate {
	t := FirstElementTemplate{ScalarKeys: cfg.ScalarKeys, DefaultFields: cfg.DefaultFields}
	if t.ScalarKeys == nil {
		t.ScalarKeys = []string{"keywords", "tags", "list"}
	}
	if t.DefaultFields == nil {
		t.DefaultFields = []string{"title", "description"}
	}
	return t
}

func (t FirstElementTemplate) NewItem(key string, items []document.Value) document.Value {
	if len(items) > 0 {
		return blank(items[0])
	}
	lower := strings.ToLower(key)
	for _, k := range t.ScalarKeys {
		if strings.Contains(lower, strings.ToLower(k)) {
			return document.StringValue("")
		}
	}
	members := make([]document.Member, len(t.DefaultFields))
	for i, f := range t.DefaultFields {
		members[i] = document.Member{Key: f, Value: document.StringValue("")}
	}
	return document.ObjectValue(members...)
}

// blank keeps the shape of v and clears its contents.
func blank(v document.Value) document.Value {
	switch v.Kind() {
	case document.Object:
		members := v.Members()
		for i := range members {
			members[i].Value = blank(members[i].Value)
		}
		return document.ObjectValue(members...)
	case document.Array:
		return document.ArrayValue()
	}
	return document.StringValue("")
}
