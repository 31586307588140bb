/*
Package domain contains the core domain models and business logic for the Gloss engine.

It defines the fundamental entities of the review workflow: Annotations (positional
reviewer comments), AnnotationGroups (section-scoped views over them), Chapters
(the composition units the wizard turns into output text), and the section
read/write value types used by the edit protocol. This package is kept pure and
free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Annotation: A single reviewer comment attached to a span of source text.
  - AnnotationGroup: A derived, ordered view of annotations sharing a section path.
  - Chapter / Suggestion: The composition units rendered into a wikitext fragment.
  - SectionText / SectionTimestamps: A section read plus its concurrency tokens.
  - Target: The resolved {page title, section id} a commit writes to.
*/
package domain
