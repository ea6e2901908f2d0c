// Package form turns JSON documents into editable form trees and applies
// submitted form values back onto documents.
package form

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"content-dashboard/pkg/document"
	"content-dashboard/pkg/models"
)

// DefaultRules mirrors the content model the dashboard was built for.
func DefaultRules() []models.WidgetRule {
	return []models.WidgetRule{
		{
			Widget:       models.WidgetImage,
			KeyContains:  []string{"image", "src"},
			ValuePattern: `\.(webp|jpg|png|jpeg)$`,
		},
		{
			Widget:      models.WidgetLongText,
			KeyContains: []string{"description"},
			LongerThan:  50,
		},
	}
}

// Classifier picks a widget for a scalar field. Rules are tried in order and
// the first match wins; no match means short text.
type Classifier struct {
	rules []rule
}

type rule struct {
	widget     models.WidgetKind
	keys       []string
	pattern    *regexp.Regexp
	longerThan int
}

func NewClassifier(rules []models.WidgetRule) (*Classifier, error) {
	c := &Classifier{}
	for i, r := range rules {
		switch r.Widget {
		case models.WidgetImage, models.WidgetLongText, models.WidgetShortText:
		default:
			return nil, fmt.Errorf("widget rule %d: unknown widget %q", i, r.Widget)
		}
		cr := rule{widget: r.Widget, longerThan: r.LongerThan}
		for _, k := range r.KeyContains {
			cr.keys = append(cr.keys, strings.ToLower(k))
		}
		if r.ValuePattern != "" {
			re, err := regexp.Compile(r.ValuePattern)
			if err != nil {
				return nil, fmt.Errorf("widget rule %d: %w", i, err)
			}
			cr.pattern = re
		}
		c.rules = append(c.rules, cr)
	}
	return c, nil
}

func (c *Classifier) Classify(key string, v document.Value) models.WidgetKind {
	lower := strings.ToLower(key)
	for _, r := range c.rules {
		if r.matches(lower, v) {
			return r.widget
		}
	}
	return models.WidgetShortText
}

func (r rule) matches(lowerKey string, v document.Value) bool {
	for _, k := range r.keys {
		if strings.Contains(lowerKey, k) {
			return true
		}
	}
	if v.Kind() != document.String {
		return false
	}
	if r.pattern != nil && r.pattern.MatchString(v.Str()) {
		return true
	}
	return r.longerThan > 0 && utf8.RuneCountInString(v.Str()) > r.longerThan
}

// Field builds the FormField for a scalar.
func (c *Classifier) Field(key string, v document.Value) models.FormField {
	return models.FormField{Key: key, Value: v.Text(), Widget: c.Classify(key, v)}
}
