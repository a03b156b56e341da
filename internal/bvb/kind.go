package bvb

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownTransactionKind = errors.New("unknown transaction kind")

// Kind is the aard of an order.
type Kind int

const (
	// Collection (invordering) debits the counterparty.
	Collection Kind = 1
	// Reimbursement (terugbetaling) credits the counterparty.
	Reimbursement Kind = 2
)

func (k Kind) String() string {
	switch k {
	case Collection:
		return "invordering"
	case Reimbursement:
		return "terugbetaling"
	default:
		return fmt.Sprintf("aard %d", int(k))
	}
}

func (k Kind) valid() bool { return k == Collection || k == Reimbursement }

// ParseKind accepts the aard digit or the Dutch or English name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "invordering", "collection":
		return Collection, nil
	case "2", "terugbetaling", "reimbursement":
		return Reimbursement, nil
	default:
		return 0, &UnknownTransactionKindError{Value: s}
	}
}

// UnknownTransactionKindError reports an aard that is neither collection
// nor reimbursement.
type UnknownTransactionKindError struct {
	Sequence int
	Value    string
}

func (e *UnknownTransactionKindError) Error() string {
	if e.Sequence > 0 {
		return fmt.Sprintf("order %d: unknown transaction kind %q", e.Sequence, e.Value)
	}
	return fmt.Sprintf("unknown transaction kind %q", e.Value)
}

func (e *UnknownTransactionKindError) Is(target error) bool {
	return target == ErrUnknownTransactionKind
}
