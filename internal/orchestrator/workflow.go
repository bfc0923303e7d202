// Package orchestrator drives the request lifecycle of the dashboard
// workflows and suppresses responses that a newer request has superseded.
package orchestrator

// Status is the lifecycle state of one workflow.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Terminal reports whether s is Success or Failed.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// Ticket identifies one submitted request of a workflow.
// Tickets increase monotonically per workflow; zero is never issued.
type Ticket uint64

// View is an immutable snapshot of a workflow. A new View is built on every
// call; callers may keep it across transitions. Results that implement
// Clone() T are deep-copied.
type View[T any] struct {
	Workflow string `json:"workflow"`
	Status   Status `json:"status"`
	Ticket   Ticket `json:"ticket,omitempty"`
	Result   *T     `json:"result,omitempty"`
	Error    string `json:"error,omitempty"`
	Err      error  `json:"-"`
}

// Workflow is the state machine of a single request slot:
// Idle -> Loading -> Success|Failed -> Idle.
//
// A Workflow is not safe for concurrent use. Controller confines each one
// to its event loop.
type Workflow[T any] struct {
	name     string
	fallback string

	seq    Ticket
	status Status
	result *T
	err    error
	msg    string
}

// NewWorkflow returns an idle workflow. fallback is the user-facing message
// used when a failure carries no usable text.
func NewWorkflow[T any](name, fallback string) *Workflow[T] {
	return &Workflow[T]{name: name, fallback: fallback, status: StatusIdle}
}

// Name returns the workflow name.
func (w *Workflow[T]) Name() string { return w.name }

// Status returns the current state.
func (w *Workflow[T]) Status() Status { return w.status }

// Current returns the ticket of the latest submit, or zero.
func (w *Workflow[T]) Current() Ticket { return w.seq }

// Submit starts a new request and returns its ticket. It is legal from any
// state; a submit while Loading supersedes the in-flight request, whose
// completion will be dropped. The previous result and error are cleared.
func (w *Workflow[T]) Submit() Ticket {
	w.seq++
	w.status = StatusLoading
	w.result = nil
	w.err = nil
	w.msg = ""
	return w.seq
}

// Stale reports whether a completion for t would be dropped: t is not the
// latest ticket, or the latest request already settled.
func (w *Workflow[T]) Stale(t Ticket) bool {
	return t != w.seq || w.status != StatusLoading
}

// Succeed stores payload for t. It reports false and changes nothing when t
// is stale.
func (w *Workflow[T]) Succeed(t Ticket, payload T) bool {
	if w.Stale(t) {
		return false
	}
	w.status = StatusSuccess
	w.result = &payload
	return true
}

// Fail records err for t with its user-facing message. It reports false and
// changes nothing when t is stale.
func (w *Workflow[T]) Fail(t Ticket, err error) bool {
	if w.Stale(t) {
		return false
	}
	w.status = StatusFailed
	w.err = err
	w.msg = UserMessage(err, w.fallback)
	return true
}

// Reset returns a settled workflow to Idle. A loading workflow is left
// alone so its request still settles; Reset reports whether it changed state.
func (w *Workflow[T]) Reset() bool {
	if !w.status.Terminal() {
		return false
	}
	w.status = StatusIdle
	w.result = nil
	w.err = nil
	w.msg = ""
	return true
}

// View returns a fresh snapshot of the workflow.
func (w *Workflow[T]) View() View[T] {
	v := View[T]{
		Workflow: w.name,
		Status:   w.status,
		Ticket:   w.seq,
		Error:    w.msg,
		Err:      w.err,
	}
	if w.result != nil {
		r := *w.result
		if c, ok := any(r).(cloner[T]); ok {
			r = c.Clone()
		}
		v.Result = &r
	}
	return v
}

// cloner is implemented by results that hold slices or pointers. View
// deep-copies them so a snapshot never shares memory with the stored result.
type cloner[T any] interface {
	Clone() T
}
