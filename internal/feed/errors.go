package feed

import (
	"errors"
	"fmt"
)

// Kind classifies feed errors.
type Kind int

const (
	KindFetch Kind = iota + 1
	KindParse
	KindNotFound
	KindInvalidAddress
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFetch:
		return "fetch"
	case KindParse:
		return "parse"
	case KindNotFound:
		return "not found"
	case KindInvalidAddress:
		return "invalid address"
	default:
		return "unknown"
	}
}

// Sentinel errors matched by errors.Is against an *Error of the same kind.
var (
	ErrFetch          = errors.New("feed fetch failed")
	ErrParse          = errors.New("feed parse failed")
	ErrNotFound       = errors.New("not found")
	ErrInvalidAddress = errors.New("invalid feed address")
)

// Error is a classified feed error.
type Error struct {
	Kind    Kind
	Address string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s", e.Kind, e.Address)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Address, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of this error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrFetch:
		return e.Kind == KindFetch
	case ErrParse:
		return e.Kind == KindParse
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrInvalidAddress:
		return e.Kind == KindInvalidAddress
	}
	return false
}

func fetchError(address string, err error) error {
	return &Error{Kind: KindFetch, Address: address, Err: err}
}

func parseError(address string, err error) error {
	return &Error{Kind: KindParse, Address: address, Err: err}
}

// reason returns a short metric label for err.
func reason(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		switch fe.Kind {
		case KindParse:
			return "parse"
		case KindInvalidAddress:
			return "invalid_address"
		}
		var se *StatusError
		if errors.As(err, &se) {
			return "http_status"
		}
	}
	return "transport"
}
