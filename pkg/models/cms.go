package models

import "strings"

// DashboardConfig describes the site's content model: the known documents,
// how fields map to widgets and how labels are shown.
type DashboardConfig struct {
	Documents    []Document                   `yaml:"documents" toml:"documents" validate:"dive"`
	Widgets      []WidgetRule                 `yaml:"widgets" toml:"widgets" validate:"dive"`
	Labels       map[string]map[string]string `yaml:"labels" toml:"labels"`
	ListTemplate ListTemplate                 `yaml:"list_template" toml:"list_template"`
	PickerDirs   []string                     `yaml:"picker_dirs" toml:"picker_dirs" validate:"dive,required"`
}

// Document is a known JSON document of the site.
type Document struct {
	Slug           string            `yaml:"slug" toml:"slug" validate:"required,excludesall=/?#"`
	Path           string            `yaml:"path" toml:"path" validate:"required,endswith=.json"`
	Section        string            `yaml:"section" toml:"section"`
	Title          map[string]string `yaml:"title" toml:"title"`
	HiddenFields   []string          `yaml:"hidden_fields" toml:"hidden_fields"`
	ReadOnlyFields []string          `yaml:"read_only_fields" toml:"read_only_fields"`
}

// WidgetRule selects Widget when the lower-cased key contains one of
// KeyContains, when a string value matches ValuePattern, or when a string
// value is longer than LongerThan characters.
type WidgetRule struct {
	Widget       WidgetKind `yaml:"widget" toml:"widget" validate:"oneof=short-text long-text image"`
	KeyContains  []string   `yaml:"key_contains" toml:"key_contains"`
	ValuePattern string     `yaml:"value_pattern" toml:"value_pattern"`
	LongerThan   int        `yaml:"longer_than" toml:"longer_than" validate:"gte=0"`
}

// ListTemplate configures the item created for an empty list.
type ListTemplate struct {
	ScalarKeys    []string `yaml:"scalar_keys" toml:"scalar_keys"`
	DefaultFields []string `yaml:"default_fields" toml:"default_fields"`
}

// DocumentByPath returns the configured document for path, or a bare
// document carrying only the path.
func (c *DashboardConfig) DocumentByPath(path string) Document {
	for _, d := range c.Documents {
		if d.Path == path {
			return d
		}
	}
	return Document{Path: path}
}

func (c *DashboardConfig) DocumentBySlug(slug string) (Document, bool) {
	for _, d := range c.Documents {
		if d.Slug == slug {
			return d, true
		}
	}
	return Document{}, false
}

// Sections returns the section names in first-seen order.
func (c *DashboardConfig) Sections() []string {
	var out []string
	seen := map[string]bool{}
	for _, d := range c.Documents {
		if !seen[d.Section] {
			seen[d.Section] = true
			out = append(out, d.Section)
		}
	}
	return out
}

// Label returns the label for key in locale, falling back to the key itself.
func (c *DashboardConfig) Label(locale, key string) string {
	if l, ok := c.Labels[locale][strings.ToLower(key)]; ok {
		return l
	}
	return key
}

// DisplayTitle returns the document title in locale. Without one, the file
// name without directory and extension is used.
func (d Document) DisplayTitle(locale string) string {
	if t := d.Title[locale]; t != "" {
		return t
	}
	name := d.Path
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, ".json")
}

func (d Document) IsHidden(key string) bool {
	return matchField(d.HiddenFields, key)
}

func (d Document) IsReadOnly(key string) bool {
	return matchField(d.ReadOnlyFields, key) && !d.IsHidden(key)
}

func matchField(fields []string, key string) bool {
	k := strings.ToLower(key)
	for _, f := range fields {
		if f == "*" || strings.ToLower(f) == k {
			return true
		}
	}
	return false
}
