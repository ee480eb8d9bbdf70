// Package syncerr classifies failures from remote calls so that every driver's
// batch loop can decide uniformly whether to halt the run, skip the row, or
// defer the rest of the batch.
package syncerr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// KindRow invalidates a single request. The batch continues.
	KindRow Kind = iota

	// KindFatal invalidates the entire run. The invocation halts.
	KindFatal

	// KindFile is a partial failure within one request's files. The request stays
	// non-terminal and the batch continues.
	KindFile

	// KindBackpressure means a capacity ceiling was reached. Remaining rows are
	// deferred to the next cycle and nothing is alerted.
	KindBackpressure
)

var kindNames = [...]string{
	KindRow:          "row",
	KindFatal:        "fatal",
	KindFile:         "file",
	KindBackpressure: "backpressure",
}

func (k Kind) String() string {
	if int(k) < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}

	return kindNames[k]
}

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %s failure", e.Op, e.Kind)
	case e.Op == "":
		return e.Err.Error()
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func Fatal(op string, err error) error {
	return newError(KindFatal, op, err)
}

func Fatalf(op, format string, args ...any) error {
	return newError(KindFatal, op, fmt.Errorf(format, args...))
}

func Row(op string, err error) error {
	return newError(KindRow, op, err)
}

func Rowf(op, format string, args ...any) error {
	return newError(KindRow, op, fmt.Errorf(format, args...))
}

func File(op string, err error) error {
	return newError(KindFile, op, err)
}

func Backpressure(op string, err error) error {
	return newError(KindBackpressure, op, err)
}

// KindOf returns the classification of err. Unclassified errors are row level.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindRow
}

func IsFatal(err error) bool {
	return err != nil && KindOf(err) == KindFatal
}

func IsBackpressure(err error) bool {
	return err != nil && KindOf(err) == KindBackpressure
}
