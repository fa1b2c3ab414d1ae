// Package serializer flattens entities and their related entities into plain
// maps for JSON responses.
//
// Expansion is controlled only by deny rules. A rule has the form "-a.b.c"
// and removes the key at that path, together with everything below it. There
// is no depth limit: an entity graph with a cycle (user -> jobs -> user -> ...)
// must be cut by a rule, otherwise Serialize fails with ErrCycle.
package serializer

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrCycle is returned when an entity is reached again through its own
// expansion because no rule cuts the path.
var ErrCycle = errors.New("serializer: relationship cycle not cut by a rule")

// Entity is implemented by every model that can be serialized.
type Entity interface {
	// Key identifies the entity across the graph, e.g. "jobs:3".
	Key() string
	// Columns returns the scalar fields keyed by their output name.
	Columns() map[string]any
	// Relations returns the named relationships of the entity.
	Relations() map[string]Relation
}

// Relation is a lazily resolved relationship. Load is only called when the
// path of the relation is not denied.
type Relation struct {
	Many bool
	Load func(tx *gorm.DB) ([]Entity, error)
}

// One builds a to-one relation.
func One(load func(tx *gorm.DB) (Entity, error)) Relation {
	return Relation{Load: func(tx *gorm.DB) ([]Entity, error) {
		e, err := load(tx)
		if err != nil || e == nil {
			return nil, err
		}
		return []Entity{e}, nil
	}}
}

// Many builds a to-many relation.
func Many(load func(tx *gorm.DB) ([]Entity, error)) Relation {
	return Relation{Many: true, Load: load}
}

// Rules is a parsed set of deny paths.
type Rules map[string]struct{}

// ParseRules turns "-a.b" strings into a rule set. Rules without the leading
// "-" are rejected since only exclusion is supported.
func ParseRules(rules ...string) (Rules, error) {
	set := make(Rules, len(rules))
	for _, r := range rules {
		path, ok := strings.CutPrefix(strings.TrimSpace(r), "-")
		if !ok || path == "" {
			return nil, fmt.Errorf("serializer: invalid rule %q", r)
		}
		set[path] = struct{}{}
	}
	return set, nil
}

// Denies reports whether path is excluded by the rule set.
func (r Rules) Denies(path string) bool {
	_, ok := r[path]
	return ok
}

// Serialize flattens e using the given deny rules.
func Serialize(tx *gorm.DB, e Entity, rules ...string) (map[string]any, error) {
	set, err := ParseRules(rules...)
	if err != nil {
		return nil, err
	}
	return walk(tx, e, "", set, map[string]bool{})
}

// SerializeAll flattens every entity of a list with the same rules.
func SerializeAll[T Entity](tx *gorm.DB, list []T, rules ...string) ([]map[string]any, error) {
	set, err := ParseRules(rules...)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		m, err := walk(tx, e, "", set, map[string]bool{})
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func walk(tx *gorm.DB, e Entity, prefix string, rules Rules, visiting map[string]bool) (map[string]any, error) {
	key := e.Key()
	if visiting[key] {
		return nil, fmt.Errorf("%w at %q (%s)", ErrCycle, prefix, key)
	}
	visiting[key] = true
	defer delete(visiting, key)

	out := make(map[string]any)
	for name, value := range e.Columns() {
		if rules.Denies(join(prefix, name)) {
			continue
		}
		out[name] = value
	}

	for name, rel := range e.Relations() {
		path := join(prefix, name)
		if rules.Denies(path) {
			continue
		}
		related, err := rel.Load(tx)
		if err != nil {
			return nil, fmt.Errorf("serializer: load %s: %w", path, err)
		}
		if !rel.Many {
			if len(related) == 0 {
				out[name] = nil
				continue
			}
			m, err := walk(tx, related[0], path, rules, visiting)
			if err != nil {
				return nil, err
			}
			out[name] = m
			continue
		}
		items := make([]map[string]any, 0, len(related))
		for _, r := range related {
			m, err := walk(tx, r, path, rules, visiting)
			if err != nil {
				return nil, err
			}
			items = append(items, m)
		}
		out[name] = items
	}

	return out, nil
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
