package ports

// NotifyLevel classifies a user-visible notification.
type NotifyLevel int

const (
	NotifyInfo NotifyLevel = iota
	NotifyWarn
	NotifyError
)

// Notifier is the host's user-facing message channel. Notify is non-blocking
// feedback; Alert demands a blocking acknowledgement (commit failures use both).
type Notifier interface {
	Notify(level NotifyLevel, msg string)
	Alert(msg string)
}

// Surface is a display area for server-rendered content (preview or diff).
// The wizard only injects into an empty surface, so in-place augmentations the
// host applied after a previous injection are never discarded.
type Surface interface {
	Content() string
	SetContent(content string)
}

// Scheduler defers work until after the host has rendered the current state.
// AfterRender must guarantee that a step-index mutation made before the call
// is observable by the host before fn runs. Hosts with no render loop may run
// fn inline.
type Scheduler interface {
	AfterRender(fn func())
}
