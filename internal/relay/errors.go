package relay

import (
	"errors"
	"fmt"
)

// Kind classifies relay failures so callers can tell "degrade locally" apart
// from "tear down the session".
type Kind int

const (
	// KindConnect: upstream unreachable or auth rejected at handshake.
	// Fatal to the session, reported once to the client, no retry.
	KindConnect Kind = iota + 1
	// KindProtocol: malformed frame from either peer. Frame dropped,
	// session continues.
	KindProtocol
	// KindSearchUnavailable: search gateway failure, degraded to an
	// apology string.
	KindSearchUnavailable
	// KindPeerDisconnect: either socket closing. Drives Draining, not an
	// exceptional failure.
	KindPeerDisconnect
	// KindForward: a send to one peer failed while the other is still
	// active. Contained unless it recurs past the failure budget.
	KindForward
)

func (k Kind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindProtocol:
		return "protocol"
	case KindSearchUnavailable:
		return "search_unavailable"
	case KindPeerDisconnect:
		return "peer_disconnect"
	case KindForward:
		return "forward"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("relay: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("relay: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// IsKind reports whether err carries the given relay error kind.
func IsKind(err error, kind Kind) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind == kind
	}
	return false
}
