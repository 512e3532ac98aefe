package aci

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind classifies the failures the tools can report.
type Kind int

const (
	AuthFailed Kind = iota + 1
	TransportError
	ReferenceNotFound
	UnrecognizedProtocol
	QuotaExceeded
)

func (k Kind) String() string {
	switch k {
	case AuthFailed:
		return "authentication failed"
	case TransportError:
		return "transport error"
	case ReferenceNotFound:
		return "reference not found"
	case UnrecognizedProtocol:
		return "unrecognized protocol"
	case QuotaExceeded:
		return "quota exceeded"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified failure. The identifier fields are optional and only
// filled in when they apply.
type Error struct {
	Kind     Kind
	EPG      string
	Peer     string
	Contract string
	Filter   string
	Group    string
	Err      error
}

func (e *Error) Error() string {
	var parts []string
	for _, f := range []struct{ k, v string }{
		{"epg", e.EPG},
		{"peer", e.Peer},
		{"contract", e.Contract},
		{"filter", e.Filter},
		{"group", e.Group},
	} {
		if f.v != "" {
			parts = append(parts, f.k+"="+f.v)
		}
	}
	msg := e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if len(parts) > 0 {
		msg += " (" + strings.Join(parts, " ") + ")"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// NewError returns an *Error of the given kind wrapping a formatted message.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: errors.Errorf(format, args...)}
}

// IsKind reports whether any error in err's chain is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}
