package analytics

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure in the forecasting pipeline.
type Kind string

const (
	KindEmptySeries          Kind = "EmptySeries"
	KindDuplicatePeriod      Kind = "DuplicatePeriod"
	KindInvalidValue         Kind = "InvalidValue"
	KindInsufficientData     Kind = "InsufficientData"
	KindConvergenceFailure   Kind = "ConvergenceFailure"
	KindInvalidHorizon       Kind = "InvalidHorizon"
	KindNumericalInstability Kind = "NumericalInstability"
	KindInvalidSpec          Kind = "InvalidSpec"
	KindTimeout              Kind = "Timeout"
)

// Stage names the pipeline step that produced an error.
type Stage string

const (
	StageSeriesBuilder Stage = "series_builder"
	StageEstimator     Stage = "estimator"
	StageForecaster    Stage = "forecaster"
)

// Error is the structured error returned by every pipeline stage.
// Family is empty for failures that are not tied to a model family.
type Error struct {
	Kind    Kind
	Stage   Stage
	Family  string
	Message string
	Err     error
}

// Sentinels for errors.Is. Matching compares Kind only.
var (
	ErrEmptySeries          = &Error{Kind: KindEmptySeries, Message: "no observations"}
	ErrDuplicatePeriod      = &Error{Kind: KindDuplicatePeriod, Message: "duplicate period"}
	ErrInvalidValue         = &Error{Kind: KindInvalidValue, Message: "invalid value"}
	ErrInsufficientData     = &Error{Kind: KindInsufficientData, Message: "insufficient data"}
	ErrConvergenceFailure   = &Error{Kind: KindConvergenceFailure, Message: "optimizer did not converge"}
	ErrInvalidHorizon       = &Error{Kind: KindInvalidHorizon, Message: "invalid horizon"}
	ErrNumericalInstability = &Error{Kind: KindNumericalInstability, Message: "numerical instability"}
	ErrInvalidSpec          = &Error{Kind: KindInvalidSpec, Message: "invalid model spec"}
	ErrTimeout              = &Error{Kind: KindTimeout, Message: "timed out"}
)

// NewError creates a pipeline error with a formatted message.
func NewError(kind Kind, stage Stage, family string, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Stage:   stage,
		Family:  family,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError creates a pipeline error around a cause.
func WrapError(kind Kind, stage Stage, family string, err error, format string, args ...interface{}) *Error {
	e := NewError(kind, stage, family, format, args...)
	e.Err = err
	return e
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Stage != "" {
		b.WriteString(string(e.Stage))
		if e.Family != "" {
			b.WriteString("[" + e.Family + "]")
		}
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithFamily returns a copy of e attributed to family.
func (e *Error) WithFamily(family string) *Error {
	c := *e
	c.Family = family
	return &c
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// AsError returns the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
