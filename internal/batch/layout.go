package batch

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/belgian-batch-converter/internal/fixedwidth"
)

// Kind is the slot of the batch document a record fills.
type Kind int

const (
	KindHeader Kind = iota
	KindDetail
	KindContinuation
	KindTrailer
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindDetail:
		return "detail"
	case KindContinuation:
		return "continuation"
	case KindTrailer:
		return "trailer"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Policy decides what the reader does with a line whose record code has no
// handler.
type Policy int

const (
	// PolicyAbort stops reading at the first unknown record.
	PolicyAbort Policy = iota
	// PolicySkip records the line in Reader.Skipped and keeps reading.
	PolicySkip
)

func (p Policy) String() string {
	if p == PolicySkip {
		return "skip"
	}
	return "abort"
}

// ParsePolicy accepts "abort" or "skip".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "abort":
		return PolicyAbort, nil
	case "skip":
		return PolicySkip, nil
	default:
		return PolicyAbort, fmt.Errorf("unknown record policy %q (want abort or skip)", s)
	}
}

// Route binds a record code to the structure that parses it.
type Route struct {
	Code      int
	Structure *fixedwidth.Structure
}

// Layout describes one batch format to the reader.
type Layout struct {
	Name    string
	Header  Route
	Detail  Route
	Trailer Route

	// Continuation, when set, is the second physical line of every
	// detail. It must follow its first part directly and carry the same
	// SequenceField value.
	Continuation  *Route
	SequenceField string

	Policy Policy
}

// WithPolicy returns a copy of l using p for unknown records.
func (l Layout) WithPolicy(p Policy) Layout {
	l.Policy = p
	return l
}

func (l Layout) route(code int) (Kind, *fixedwidth.Structure, bool) {
	switch code {
	case l.Header.Code:
		return KindHeader, l.Header.Structure, true
	case l.Detail.Code:
		return KindDetail, l.Detail.Structure, true
	case l.Trailer.Code:
		return KindTrailer, l.Trailer.Structure, true
	}
	if l.Continuation != nil && code == l.Continuation.Code {
		return KindContinuation, l.Continuation.Structure, true
	}
	return 0, nil, false
}

// LinesPerDetail is the number of physical lines one detail occupies.
func (l Layout) LinesPerDetail() int {
	if l.Continuation != nil {
		return 2
	}
	return 1
}
