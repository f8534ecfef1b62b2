// Package skills normalizes skill names and provides an insertion-ordered set.
//
// Every skill carries a canonical Key (case-folded, whitespace collapsed) used
// for all comparisons, and a Display form preserving the first-seen casing.
package skills

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// MaxLen is the longest accepted skill name in runes.
const MaxLen = 64

// Skill is a normalized skill.
type Skill struct {
	Key     string
	Display string
}

// Normalize trims and collapses whitespace and case-folds the key.
// Blank input yields an empty Skill and no error; callers skip it.
func Normalize(raw string) (Skill, error) {
	display := strings.Join(strings.Fields(raw), " ")
	if display == "" {
		return Skill{}, nil
	}
	if n := utf8.RuneCountInString(display); n > MaxLen {
		return Skill{}, fmt.Errorf("%w: %q is %d runes long (max %d)", ErrInvalidSkill, truncate(display), n, MaxLen)
	}
	for _, r := range display {
		if unicode.IsControl(r) || r == utf8.RuneError {
			return Skill{}, fmt.Errorf("%w: %q contains a control or invalid character", ErrInvalidSkill, truncate(display))
		}
	}
	return Skill{Key: cases.Fold().String(display), Display: display}, nil
}

// Key returns the canonical form of raw, or "" if raw is blank or invalid.
func Key(raw string) string {
	s, err := Normalize(raw)
	if err != nil {
		return ""
	}
	return s.Key
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= 24 {
		return s
	}
	return string(r[:24]) + "..."
}

// Set is an insertion-ordered set of skills keyed by canonical form.
// The zero value is an empty set. Sets are immutable once built.
type Set struct {
	items []Skill
	index map[string]int
}

// New normalizes raw names into a Set. Blank entries are skipped; duplicates
// keep the display form of their first occurrence.
func New(raw ...string) (Set, error) {
	var s Set
	for _, r := range raw {
		sk, err := Normalize(r)
		if err != nil {
			return Set{}, err
		}
		if sk.Key == "" {
			continue
		}
		s.add(sk)
	}
	return s, nil
}

// MustNew is New for literals known to be valid. It panics otherwise.
func MustNew(raw ...string) Set {
	s, err := New(raw...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Set) add(sk Skill) bool {
	if _, ok := s.index[sk.Key]; ok {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	s.index[sk.Key] = len(s.items)
	s.items = append(s.items, sk)
	return true
}

// Len returns the number of distinct skills.
func (s Set) Len() int { return len(s.items) }

// Has reports whether the set contains the canonical key.
func (s Set) Has(key string) bool {
	_, ok := s.index[key]
	return ok
}

// Items returns the skills in insertion order.
func (s Set) Items() []Skill {
	out := make([]Skill, len(s.items))
	copy(out, s.items)
	return out
}

// Keys returns canonical keys in insertion order.
func (s Set) Keys() []string {
	out := make([]string, len(s.items))
	for i, sk := range s.items {
		out[i] = sk.Key
	}
	return out
}

// Displays returns display forms in insertion order.
func (s Set) Displays() []string {
	out := make([]string, len(s.items))
	for i, sk := range s.items {
		out[i] = sk.Display
	}
	return out
}

// Intersect returns the members of s also in o, in s order.
func (s Set) Intersect(o Set) Set {
	var out Set
	for _, sk := range s.items {
		if o.Has(sk.Key) {
			out.add(sk)
		}
	}
	return out
}

// Minus returns the members of s missing from o, in s order.
func (s Set) Minus(o Set) Set {
	var out Set
	for _, sk := range s.items {
		if !o.Has(sk.Key) {
			out.add(sk)
		}
	}
	return out
}

// Union merges sets preserving first-seen order across arguments.
func Union(sets ...Set) Set {
	var out Set
	for _, s := range sets {
		for _, sk := range s.items {
			out.add(sk)
		}
	}
	return out
}

// MarshalJSON encodes the set as an array of display forms.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Displays())
}

// UnmarshalJSON decodes and normalizes an array of skill names.
func (s *Set) UnmarshalJSON(b []byte) error {
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := New(raw...)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
