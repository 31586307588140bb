/*
Package ports defines the boundary interfaces of the Gloss engine.

Following Hexagonal Architecture, the wizard core depends only on these
interfaces; concrete adapters (the MediaWiki edit client, the memory and redis
annotation stores, the host notification/display surfaces) live under
pkg/adapters and internal/adapters.

  - SectionEditor: section-scoped read/write against the remote document store.
  - AnnotationStore: persistence for per-page annotation sets.
  - Notifier, Surface, Scheduler: the host side of the dialog contract.
*/
package ports
