package coordinator

// DeferredActionQueue holds at most one pending "do X when Y becomes
// ready" action. Setting it twice before it drains keeps a single
// pending action; nothing accumulates.
type DeferredActionQueue struct {
	action func()
}

// Set stores the pending action, replacing any previous one.
func (q *DeferredActionQueue) Set(fn func()) {
	q.action = fn
}

// Pending reports whether an action is waiting.
func (q *DeferredActionQueue) Pending() bool {
	return q.action != nil
}

// Clear drops the pending action without invoking it.
func (q *DeferredActionQueue) Clear() {
	q.action = nil
}

// DrainIfPending invokes the pending action, if any. The slot is
// cleared before the action runs so that a re-entrant trigger during
// invocation cannot re-fire it in the same drain.
func (q *DeferredActionQueue) DrainIfPending() bool {
	if q.action == nil {
		return false
	}
	fn := q.action
	q.action = nil
	fn()
	return true
}
