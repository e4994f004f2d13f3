package sync

import "errors"

// ErrBusy is returned when a fetch is dropped because another request
// for the same state is already outstanding. Dropped means dropped:
// the call is not queued or retried.
var ErrBusy = errors.New("request already in flight")

// ErrEmptyReason is returned when a report is submitted with a reason
// that is empty after trimming. Caught before any network call.
var ErrEmptyReason = errors.New("report reason cannot be empty")

// ErrUnknownPost is returned when a mutation targets a post that is not
// in local state.
var ErrUnknownPost = errors.New("unknown post")

// ErrEmptyBody is returned when a message is sent with a body that is
// empty after trimming.
var ErrEmptyBody = errors.New("message body cannot be empty")
