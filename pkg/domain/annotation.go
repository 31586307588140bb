package domain

import (
	"sort"
	"strconv"
	"strings"
)

// OrderKey is an opaque position key admitting a total order. It places an
// annotation at its location within the source document. The empty key means
// "unordered" and sorts before every placed key.
type OrderKey string

// Comparator defines a total order over OrderKeys. It is supplied by the host
// environment that produced the keys; the engine never inspects key contents.
type Comparator func(a, b OrderKey) int

// Annotation is a single reviewer comment attached to a span of source text.
type Annotation struct {
	// ID is unique within a store and immutable once assigned.
	ID string `json:"id"`

	// SectionPath identifies the logical section the annotation belongs to.
	// Empty means unfiled; it is still a valid, distinct grouping key.
	SectionPath string `json:"sectionPath"`

	// SentencePos orders the annotation within the document. May be empty.
	SentencePos OrderKey `json:"sentencePos,omitempty"`

	// SentenceText is the quoted source excerpt. May be empty.
	SentenceText string `json:"sentenceText,omitempty"`

	// Opinion is the reviewer's free-text comment. May be empty.
	Opinion string `json:"opinion,omitempty"`

	CreatedBy string `json:"createdBy,omitempty"`

	// CreatedAt is the creation instant in epoch milliseconds.
	CreatedAt int64 `json:"createdAt,omitempty"`

	Resolved bool `json:"resolved,omitempty"`
}

// AnnotationGroup is a non-empty ordered run of annotations sharing one
// SectionPath. Groups are a derived view, not an owned entity.
type AnnotationGroup struct {
	SectionPath string       `json:"sectionPath"`
	Annotations []Annotation `json:"annotations"`
}

// SortByPosition returns a new slice ordered by SentencePos under cmp, with
// ties broken by ascending CreatedAt. The sort is stable and the input is
// never mutated.
func SortByPosition(list []Annotation, cmp Comparator) []Annotation {
	out := make([]Annotation, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		if c := cmp(out[i].SentencePos, out[j].SentencePos); c != 0 {
			return c < 0
		}
		return out[i].CreatedAt < out[j].CreatedAt
	})
	return out
}

// GroupBySection partitions annotations by exact SectionPath equality.
// Group order follows the first occurrence of each key in the input; member
// order preserves input order. Grouping never sorts; that is a separate step.
func GroupBySection(list []Annotation) []AnnotationGroup {
	order := make([]string, 0, len(list))
	buckets := make(map[string][]Annotation)
	for _, anno := range list {
		key := anno.SectionPath
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], anno)
	}

	groups := make([]AnnotationGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, AnnotationGroup{SectionPath: key, Annotations: buckets[key]})
	}
	return groups
}

// BuildGroupsSorted groups the list, position-sorts each group's members, and
// orders the groups by their first member's OrderKey, breaking ties by
// lexicographic SectionPath.
func BuildGroupsSorted(list []Annotation, cmp Comparator) []AnnotationGroup {
	groups := GroupBySection(list)
	for i := range groups {
		groups[i].Annotations = SortByPosition(groups[i].Annotations, cmp)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		var ka, kb OrderKey
		if len(groups[i].Annotations) > 0 {
			ka = groups[i].Annotations[0].SentencePos
		}
		if len(groups[j].Annotations) > 0 {
			kb = groups[j].Annotations[0].SentencePos
		}
		if c := cmp(ka, kb); c != 0 {
			return c < 0
		}
		return groups[i].SectionPath < groups[j].SectionPath
	})
	return groups
}

// NumericDotComparator orders dot-separated numeric path keys ("3.12.1").
// It is a reference Comparator for hosts without their own key scheme; real
// hosts inject whatever comparator matches their position encoding. Empty keys
// sort first; non-numeric segments fall back to byte-wise comparison.
func NumericDotComparator(a, b OrderKey) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}
	as := strings.Split(string(a), ".")
	bs := strings.Split(string(b), ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		ai, aerr := strconv.Atoi(as[i])
		bi, berr := strconv.Atoi(bs[i])
		if aerr != nil || berr != nil {
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
			continue
		}
		if ai != bi {
			if ai < bi {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}
