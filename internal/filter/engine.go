// Package filter implements the photo record matching engine.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"photo_feed/internal/model"
)

// Kind defines the type of filter rule.
type Kind string

// Supported filter kinds.
const (
	Include   Kind = "include"
	Exclude   Kind = "exclude"
	IncludeRe Kind = "include_re"
	ExcludeRe Kind = "exclude_re"
)

// Scope defines which part of a record a rule matches against.
type Scope string

// Supported filter scopes.
const (
	ScopeTitle Scope = "title"
	ScopeTags  Scope = "tags"
	ScopeAll   Scope = "all"
)

// Rule is a single filtering rule.
type Rule struct {
	Kind  Kind
	Scope Scope
	Value string
}

// Match checks whether a record passes the given set of rules.
// If no rules are provided, the record always passes.
// Include rules use OR logic (at least one must match).
// Exclude rules use AND logic (none must match).
func Match(rec model.PhotoRecord, rules []Rule) bool {
	if len(rules) == 0 {
		return true
	}

	hasIncludes := false
	anyIncludeMatched := false

	for _, r := range rules {
		switch r.Kind {
		case Include, IncludeRe:
			hasIncludes = true
			if matchesRule(rec, r) {
				anyIncludeMatched = true
			}
		case Exclude, ExcludeRe:
			if matchesRule(rec, r) {
				return false
			}
		}
	}

	if hasIncludes && !anyIncludeMatched {
		return false
	}
	return true
}

// Apply returns the records that pass rules, keeping their order.
func Apply(records []model.PhotoRecord, rules []Rule) []model.PhotoRecord {
	if len(rules) == 0 {
		return records
	}
	matched := make([]model.PhotoRecord, 0, len(records))
	for _, rec := range records {
		if Match(rec, rules) {
			matched = append(matched, rec)
		}
	}
	return matched
}

func matchesRule(rec model.PhotoRecord, r Rule) bool {
	text := textForScope(rec, r.Scope)
	switch r.Kind {
	case Include, Exclude:
		return strings.Contains(text, strings.ToLower(r.Value))
	case IncludeRe, ExcludeRe:
		re, err := regexp.Compile("(?i)" + r.Value)
		if err != nil {
			return false
		}
		return re.MatchString(text)
	}
	return false
}

func textForScope(rec model.PhotoRecord, scope Scope) string {
	switch scope {
	case ScopeTitle:
		return strings.ToLower(rec.Title)
	case ScopeTags:
		return strings.ToLower(rec.Tags)
	default:
		return strings.ToLower(rec.Title + " " + rec.Tags)
	}
}

// ParseRule builds a rule of the given kind from "[scope:]value", where scope
// is title, tags or all (default all).
func ParseRule(kind Kind, spec string) (Rule, error) {
	scope := ScopeAll
	value := spec
	if prefix, rest, ok := strings.Cut(spec, ":"); ok {
		switch Scope(prefix) {
		case ScopeTitle, ScopeTags, ScopeAll:
			scope = Scope(prefix)
			value = rest
		}
	}

	value = strings.TrimSpace(value)
	if value == "" {
		return Rule{}, fmt.Errorf("filter value is required")
	}
	if kind == IncludeRe || kind == ExcludeRe {
		if err := ValidateRegex(value); err != nil {
			return Rule{}, err
		}
	}
	return Rule{Kind: kind, Scope: scope, Value: value}, nil
}

// ValidateRegex checks whether a pattern is a valid regular expression.
func ValidateRegex(pattern string) error {
	_, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	return nil
}
