package domain

// Suggestion is one quote/advice pair inside a Chapter. Either side may be empty.
type Suggestion struct {
	Quote  string `json:"quote"`
	Advice string `json:"suggestion"`
}

// Chapter is the unit the wizard composes into output text: a title plus an
// ordered, non-empty run of suggestions.
type Chapter struct {
	Title       string       `json:"title"`
	Suggestions []Suggestion `json:"suggestions"`
}

// Composition holds the chapters of one active review. It enforces the shape
// invariant that a composition always has at least one chapter and every
// chapter at least one suggestion; removals that would violate it are no-ops.
type Composition struct {
	chapters []Chapter
}

// NewComposition returns a composition holding one blank chapter.
func NewComposition() *Composition {
	return &Composition{chapters: []Chapter{blankChapter()}}
}

func blankChapter() Chapter {
	return Chapter{Suggestions: []Suggestion{{}}}
}

// Chapters returns a deep copy of the current chapter list.
func (c *Composition) Chapters() []Chapter {
	out := make([]Chapter, len(c.chapters))
	for i, ch := range c.chapters {
		out[i] = ch
		out[i].Suggestions = make([]Suggestion, len(ch.Suggestions))
		copy(out[i].Suggestions, ch.Suggestions)
	}
	return out
}

// AddChapter appends a blank chapter.
func (c *Composition) AddChapter() {
	c.chapters = append(c.chapters, blankChapter())
}

// RemoveChapter deletes the chapter at idx. Removing the last remaining
// chapter, or an out-of-range index, is a no-op.
func (c *Composition) RemoveChapter(idx int) {
	if len(c.chapters) <= 1 || idx < 0 || idx >= len(c.chapters) {
		return
	}
	c.chapters = append(c.chapters[:idx], c.chapters[idx+1:]...)
}

// AddSuggestion appends a blank suggestion to the chapter at chIdx.
func (c *Composition) AddSuggestion(chIdx int) {
	if chIdx < 0 || chIdx >= len(c.chapters) {
		return
	}
	ch := &c.chapters[chIdx]
	ch.Suggestions = append(ch.Suggestions, Suggestion{})
}

// RemoveSuggestion deletes a suggestion. Removing the last suggestion of a
// chapter is a no-op.
func (c *Composition) RemoveSuggestion(chIdx, sIdx int) {
	if chIdx < 0 || chIdx >= len(c.chapters) {
		return
	}
	ch := &c.chapters[chIdx]
	if len(ch.Suggestions) <= 1 || sIdx < 0 || sIdx >= len(ch.Suggestions) {
		return
	}
	ch.Suggestions = append(ch.Suggestions[:sIdx], ch.Suggestions[sIdx+1:]...)
}

// SetSuggestion overwrites the suggestion at the given coordinates.
func (c *Composition) SetSuggestion(chIdx, sIdx int, s Suggestion) {
	if chIdx < 0 || chIdx >= len(c.chapters) {
		return
	}
	ch := &c.chapters[chIdx]
	if sIdx < 0 || sIdx >= len(ch.Suggestions) {
		return
	}
	ch.Suggestions[sIdx] = s
}

// SetTitle overwrites the title of the chapter at chIdx.
func (c *Composition) SetTitle(chIdx int, title string) {
	if chIdx < 0 || chIdx >= len(c.chapters) {
		return
	}
	c.chapters[chIdx].Title = title
}

// Replace swaps the whole chapter list atomically. An empty replacement is a
// no-op and reports false; chapters without suggestions are padded with one
// blank suggestion so the shape invariant holds.
func (c *Composition) Replace(chapters []Chapter) bool {
	if len(chapters) == 0 {
		return false
	}
	next := make([]Chapter, len(chapters))
	for i, ch := range chapters {
		next[i] = ch
		if len(ch.Suggestions) == 0 {
			next[i].Suggestions = []Suggestion{{}}
		} else {
			next[i].Suggestions = make([]Suggestion, len(ch.Suggestions))
			copy(next[i].Suggestions, ch.Suggestions)
		}
	}
	c.chapters = next
	return true
}

// ChaptersFromGroups derives one Chapter per AnnotationGroup: the title is the
// group's section path (or fallbackTitle when empty) and each member becomes
// one suggestion (quote = sentence text, advice = opinion). Groups without
// members still yield a chapter with a single blank suggestion.
func ChaptersFromGroups(groups []AnnotationGroup, fallbackTitle string) []Chapter {
	if len(groups) == 0 {
		return nil
	}
	chapters := make([]Chapter, 0, len(groups))
	for _, group := range groups {
		title := group.SectionPath
		if title == "" {
			title = fallbackTitle
		}
		suggestions := make([]Suggestion, 0, len(group.Annotations))
		for _, anno := range group.Annotations {
			suggestions = append(suggestions, Suggestion{Quote: anno.SentenceText, Advice: anno.Opinion})
		}
		if len(suggestions) == 0 {
			suggestions = []Suggestion{{}}
		}
		chapters = append(chapters, Chapter{Title: title, Suggestions: suggestions})
	}
	return chapters
}
