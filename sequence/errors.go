package sequence

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a sequence failure so callers can branch on it instead of
// matching message text.
type Kind int

const (
	// KindUnknown is an unclassified failure.
	KindUnknown Kind = iota
	// KindLoadFailure is a frame import or asset load that rejected.
	KindLoadFailure
	// KindExportIO is a handle acquisition, write, or close failure during
	// export.
	KindExportIO
	// KindRenderTimeout is a first-render wait that exceeded a configured
	// timeout. Only produced when a timeout is configured; the default is to
	// wait forever.
	KindRenderTimeout
)

func (k Kind) String() string {
	switch k {
	case KindLoadFailure:
		return "load failure"
	case KindExportIO:
		return "export io failure"
	case KindRenderTimeout:
		return "render timeout"
	default:
		return "unknown failure"
	}
}

// Failure is a classified error with a human-readable detail string.
type Failure struct {
	Kind   Kind
	Detail string
	cause  error
}

// NewFailure wraps cause as a classified failure.
func NewFailure(kind Kind, cause error, detail string) *Failure {
	return &Failure{Kind: kind, Detail: detail, cause: cause}
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s: %s", f.Kind, f.Detail)
	if f.cause != nil {
		msg += ": " + f.cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.cause
}

// FailureKind returns the classification of err, or KindUnknown for errors
// that are not Failures.
func FailureKind(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return KindUnknown
}
