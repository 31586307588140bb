package domain

// SectionText is the result of one section read: the current wikitext plus the
// concurrency tokens of that read.
type SectionText struct {
	Text           string
	StartTimestamp string
	BaseTimestamp  string
}

// Timestamps extracts the concurrency token pair from a read.
func (s SectionText) Timestamps() SectionTimestamps {
	return SectionTimestamps{StartTimestamp: s.StartTimestamp, BaseTimestamp: s.BaseTimestamp}
}

// SectionTimestamps is an opaque token pair letting the remote store detect a
// modification between a read and a subsequent write. It is owned by a single
// read-then-write cycle and discarded afterwards; tokens must never be reused
// across unrelated reads.
type SectionTimestamps struct {
	StartTimestamp string
	BaseTimestamp  string
}

// Target is the resolved destination of a commit. A nil SectionID means the
// section could not be resolved; commits against an unresolved target fail
// validation before any network call.
type Target struct {
	PageTitle string
	SectionID *int
}

// Resolved reports whether the target names a concrete section.
func (t Target) Resolved() bool {
	return t.SectionID != nil
}
