package form

import (
	"bytes"
	"testing"

	"content-dashboard/pkg/document"
	"content-dashboard/pkg/models"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	c, err := NewClassifier(DefaultRules())
	require.NoError(t, err)
	return c
}

func mustParse(t *testing.T, s string) document.Value {
	t.Helper()
	v, err := document.Parse([]byte(s))
	require.NoError(t, err)
	return v
}

func TestClassify(t *testing.T) {
	c := newClassifier(t)
	long := "a string that is comfortably longer than fifty characters in total"

	cases := []struct {
		key   string
		value document.Value
		want  models.WidgetKind
	}{
		{"heroImage", document.StringValue("x"), models.WidgetImage},
		{"imgSrc", document.StringValue(""), models.WidgetImage},
		{"logo", document.StringValue("/images/logo.webp"), models.WidgetImage},
		{"logo", document.StringValue("/images/logo.PNG"), models.WidgetShortText},
		{"description", document.StringValue("0123456789"), models.WidgetLongText},
		{"shortDescription", document.StringValue(""), models.WidgetLongText},
		{"body", document.StringValue(long), models.WidgetLongText},
		{"title", document.StringValue("hello"), models.WidgetShortText},
		{"price", document.NumberValue("10"), models.WidgetShortText},
		{"imageDescription", document.StringValue("x"), models.WidgetImage},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, c.Classify(tc.key, tc.value), "key %q", tc.key)
	}
}

func TestNewClassifierRejectsBadRules(t *testing.T) {
	_, err := NewClassifier([]models.WidgetRule{{Widget: "slider"}})
	assert.Error(t, err)

	_, err = NewClassifier([]models.WidgetRule{{Widget: models.WidgetImage, ValuePattern: "("}})
	assert.Error(t, err)
}

func TestFirstElementTemplate(t *testing.T) {
	tmpl := NewFirstElementTemplate(models.ListTemplate{})

	objects := mustParse(t, `[{"title":"a","description":"b"}]`)
	item := tmpl.NewItem("items", objects.Items())
	assert.Equal(t, `{
  "title": "",
  "description": ""
}`, item.String())

	scalars := mustParse(t, `["x","y"]`)
	assert.Equal(t, `""`, tmpl.NewItem("whatever", scalars.Items()).String())

	nested := mustParse(t, `[{"name":"a","tags":["x"],"meta":{"n":1}}]`)
	assert.Equal(t, `{"name":"","tags":[],"meta":{"n":""}}`, compact(t, tmpl.NewItem("items", nested.Items())))

	assert.Equal(t, `""`, tmpl.NewItem("keywords", nil).String())
	assert.Equal(t, `""`, tmpl.NewItem("productTags", nil).String())
	assert.Equal(t, `{"title":"","description":""}`, compact(t, tmpl.NewItem("features", nil)))
}

func compact(t *testing.T, v document.Value) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.Compact(&buf, document.Encode(v)))
	return buf.String()
}

func TestRenderSplitsFieldsAndLists(t *testing.T) {
	doc := mustParse(t, `{
		"title": "Hi",
		"image": "/images/hero.png",
		"items": [{"title": "a", "description": "b"}],
		"keywords": ["x", "y"],
		"cta": {"label": "Go", "link": "/go"}
	}`)
	r := &Renderer{
		Classifier: newClassifier(t),
		Label:      func(k string) string { return "L:" + k },
		Preview:    func(v string) string { return "https://raw.example/public" + v },
	}

	f, err := r.Render(doc, models.Document{}, "")
	require.NoError(t, err)

	require.Len(t, f.Fields, 3)
	assert.Equal(t, "/title", f.Fields[0].Pointer)
	assert.Equal(t, "L:title", f.Fields[0].Label)
	assert.Equal(t, models.WidgetImage, f.Fields[1].Field.Widget)
	assert.Equal(t, "https://raw.example/public/images/hero.png", f.Fields[1].Preview)
	assert.Equal(t, NodeGroup, f.Fields[2].Kind)
	assert.Equal(t, "/cta/link", f.Fields[2].Children[1].Pointer)

	require.Len(t, f.Lists, 2)
	items := f.Lists[0]
	assert.False(t, items.Scalar)
	require.Len(t, items.Children, 1)
	assert.Equal(t, "/items/0/description", items.Children[0].Children[1].Pointer)
	assert.Equal(t, models.WidgetLongText, items.Children[0].Children[1].Field.Widget)

	kw := f.Lists[1]
	assert.True(t, kw.Scalar)
	assert.False(t, kw.Children[1].Children[0].ShowLabel)
	assert.Equal(t, "/keywords/1", kw.Children[1].Children[0].Pointer)
}

func TestRenderPolicy(t *testing.T) {
	doc := mustParse(t, `{"name":"Site","robots":{"index":true},"social":[],"links":[{"url":"/"}]}`)
	policy := models.Document{HiddenFields: []string{"robots", "social"}, ReadOnlyFields: []string{"*"}}
	r := &Renderer{Classifier: newClassifier(t)}

	f, err := r.Render(doc, policy, "/links/0")
	require.NoError(t, err)

	require.Len(t, f.Fields, 1)
	assert.Equal(t, "name", f.Fields[0].Key)
	assert.True(t, f.Fields[0].Disabled)

	require.Len(t, f.Lists, 1)
	assert.Equal(t, "links", f.Lists[0].Key)
	first := f.Lists[0].Children[0].Children[0]
	assert.False(t, first.Disabled)
	assert.True(t, first.Autofocus)
}

func TestRenderRejectsNonObject(t *testing.T) {
	r := &Renderer{Classifier: newClassifier(t)}
	_, err := r.Render(mustParse(t, `[1,2]`), models.Document{}, "")
	assert.ErrorIs(t, err, ErrNotObject)
}

func TestApplyValuesKeepsTypes(t *testing.T) {
	doc := mustParse(t, `{"title":"a","price":10,"featured":false,"note":null,"items":[{"n":1}]}`)
	out, err := ApplyValues(doc, map[string]string{
		"/title":     "b",
		"/price":     "12.5",
		"/featured":  "true",
		"/note":      "",
		"/items/0/n": "not a number",
	}, models.Document{})
	require.NoError(t, err)

	assert.Equal(t, `{"title":"b","price":12.5,"featured":true,"note":null,"items":[{"n":"not a number"}]}`, compact(t, out))
}

func TestApplyValuesNormalizesLineBreaks(t *testing.T) {
	doc := mustParse(t, `{"description":"old","price":1}`)
	out, err := ApplyValues(doc, map[string]string{
		"/description": "line1\r\nline2\r\n",
		"/price":       "2\r\n",
	}, models.Document{})
	require.NoError(t, err)

	desc, _ := out.Get("description")
	assert.Equal(t, "line1\nline2\n", desc.Str())
	assert.Equal(t, `{"description":"line1\nline2\n","price":2}`, compact(t, out))
}

func TestApplyValuesSkipsProtectedFields(t *testing.T) {
	doc := mustParse(t, `{"name":"Site","robots":"index","links":["a"]}`)
	policy := models.Document{HiddenFields: []string{"robots"}, ReadOnlyFields: []string{"*"}}

	out, err := ApplyValues(doc, map[string]string{
		"/name":    "Changed",
		"/robots":  "noindex",
		"/links/0": "b",
	}, policy)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Site","robots":"index","links":["b"]}`, compact(t, out))
}

func TestApplyValuesRejectsUnknownPointer(t *testing.T) {
	doc := mustParse(t, `{"items":[]}`)
	_, err := ApplyValues(doc, map[string]string{"/items/3": "x"}, models.Document{})
	assert.Error(t, err)

	_, err = ApplyValues(doc, map[string]string{"/items": "x"}, models.Document{})
	assert.Error(t, err)
}

func TestAddAndRemoveItem(t *testing.T) {
	doc := mustParse(t, `{"items":[{"title":"a","description":"b"}],"tags":["x","y"]}`)
	tmpl := NewFirstElementTemplate(models.ListTemplate{})

	out, added, err := AddItem(doc, document.Pointer{"items"}, tmpl, models.Document{})
	require.NoError(t, err)
	assert.Equal(t, "/items/1", added.String())
	item, err := out.At(added)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "description"}, item.Keys())

	out, added, err = AddItem(out, document.Pointer{"tags"}, tmpl, models.Document{})
	require.NoError(t, err)
	tag, _ := out.At(added)
	assert.Equal(t, document.String, tag.Kind())
	assert.Equal(t, "", tag.Str())

	out, err = RemoveItem(out, document.Pointer{"items", "0"}, models.Document{})
	require.NoError(t, err)
	items, _ := out.Get("items")
	assert.Equal(t, 1, items.Len())

	_, _, err = AddItem(doc, document.Pointer{"items", "0", "title"}, tmpl, models.Document{})
	assert.Error(t, err)
	_, err = RemoveItem(doc, document.Pointer{"items"}, models.Document{})
	assert.Error(t, err)

	// the original document is untouched
	orig, _ := doc.Get("items")
	assert.Equal(t, 1, orig.Len())
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction("add:/items")
	require.NoError(t, err)
	assert.Equal(t, ActionAdd, a.Kind)
	assert.Equal(t, "add:/items", a.String())

	a, err = ParseAction("save")
	require.NoError(t, err)
	assert.Equal(t, ActionSave, a.Kind)

	a, err = ParseAction("")
	require.NoError(t, err)
	assert.Equal(t, ActionRefresh, a.Kind)

	for _, bad := range []string{"add:", "remove:items", "save:/x", "publish"} {
		_, err := ParseAction(bad)
		assert.Errorf(t, err, "action %q", bad)
	}
}
