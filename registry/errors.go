package registry

import (
	"fmt"
	"strings"

	"github.com/micro-hil/go-hil/types"
)

// ConflictError reports that two owners claimed the same resource. It is
// fatal to the preflight phase: no peripheral initializes once one is
// detected.
type ConflictError struct {
	Kind       types.ResourceKind
	Identifier string
	Owner      string // the owner whose registration was rejected
	Holder     string // the owner already holding the resource
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s conflict: %s cannot be initialized because it is already reserved by %s",
		e.Kind, e.Identifier, e.Owner, e.Holder)
}

// PreflightError aggregates every conflict found while validating a
// declared configuration. The batch is rejected wholesale.
type PreflightError struct {
	Conflicts []*ConflictError
}

func (e *PreflightError) Error() string {
	msgs := make([]string, 0, len(e.Conflicts)+1)
	msgs = append(msgs, fmt.Sprintf("preflight found %d resource conflict(s):", len(e.Conflicts)))
	for _, c := range e.Conflicts {
		msgs = append(msgs, "  "+c.Error())
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the individual conflicts to errors.Is/As.
func (e *PreflightError) Unwrap() []error {
	errs := make([]error, len(e.Conflicts))
	for i, c := range e.Conflicts {
		errs[i] = c
	}
	return errs
}
