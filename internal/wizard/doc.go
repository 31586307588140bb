// Package wizard drives the multi-step review dialog: compose chapters,
// edit the generated draft, preview the rendered fragment, inspect the diff
// and commit the append.
//
// The step index is the single source of truth. Every forward transition
// mutates the index first and then runs its side effect through the
// Scheduler's after-render continuation, so a slow fetch that resolves after
// the user has moved on finds the index changed and leaves the surfaces
// alone. Going backwards never touches the network; cached content is
// re-shown as is.
package wizard
