package streamtable

import "go.jetify.com/typeid"

// newCorrelationId mints an "event_<uuid>"-shaped id for tracing a single
// recorded event through logs, independent of the caller-supplied Id used
// for cross-event uniqueness. The prefix is a fixed valid literal, so
// WithPrefix's error return is never non-nil here.
func newCorrelationId() string {
	tid, _ := typeid.WithPrefix("event")
	return tid.String()
}
