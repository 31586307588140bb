package wizard

// Immediate runs after-render continuations synchronously. The CLI host uses
// it: there is no render pipeline to wait for on a terminal.
type Immediate struct{}

// AfterRender runs fn right away.
func (Immediate) AfterRender(fn func()) { fn() }

// Queue defers continuations until Flush, preserving submission order.
// Tests use it to observe the dialog between the step-index mutation and the
// side effect that depends on it.
type Queue struct {
	fns []func()
}

// AfterRender enqueues fn.
func (q *Queue) AfterRender(fn func()) { q.fns = append(q.fns, fn) }

// Pending reports how many continuations are queued.
func (q *Queue) Pending() int { return len(q.fns) }

// Flush runs queued continuations in order, including any they enqueue.
func (q *Queue) Flush() {
	for len(q.fns) > 0 {
		fn := q.fns[0]
		q.fns = q.fns[1:]
		fn()
	}
}

// BufferSurface is an in-memory content surface for hosts without a DOM-like
// display of their own.
type BufferSurface struct {
	content string
}

func (s *BufferSurface) Content() string        { return s.content }
func (s *BufferSurface) SetContent(html string) { s.content = html }
