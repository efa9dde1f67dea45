package model

import (
	"errors"
	"fmt"
)

// ErrKind distinguishes the recoverable card-level failure classes. Every
// kind is recoverable at card granularity: a failing card is logged and
// excluded, and the batch continues.
type ErrKind int

const (
	// KindParsing covers layout and grid structural problems: anchors not
	// found, inconsistent interval counts, unparseable numeric fields.
	KindParsing ErrKind = iota + 1
	// KindTiming covers non-numeric phase-duration values.
	KindTiming
	// KindMovementMapping covers movement groups with no candidate network
	// link or movement.
	KindMovementMapping
	// KindStreetMapping covers group labels that cannot be associated with
	// any known street.
	KindStreetMapping
	// KindConversion covers failures while building a time plan.
	KindConversion
)

func (k ErrKind) String() string {
	switch k {
	case KindParsing:
		return "ParsingCardError"
	case KindTiming:
		return "ExcelSignalTimingError"
	case KindMovementMapping:
		return "MovementMappingError"
	case KindStreetMapping:
		return "StreetNameMappingError"
	case KindConversion:
		return "SignalConversionError"
	default:
		return "CardError"
	}
}

// CardError is a card-level failure carrying its classification.
type CardError struct {
	Kind ErrKind
	msg  string
}

func (e *CardError) Error() string {
	return e.msg
}

// NewParsingError builds a KindParsing card error.
func NewParsingError(format string, args ...any) error {
	return &CardError{Kind: KindParsing, msg: fmt.Sprintf(format, args...)}
}

// NewTimingError builds a KindTiming card error.
func NewTimingError(format string, args ...any) error {
	return &CardError{Kind: KindTiming, msg: fmt.Sprintf(format, args...)}
}

// NewMovementMappingError builds a KindMovementMapping card error.
func NewMovementMappingError(format string, args ...any) error {
	return &CardError{Kind: KindMovementMapping, msg: fmt.Sprintf(format, args...)}
}

// NewStreetMappingError builds a KindStreetMapping card error.
func NewStreetMappingError(format string, args ...any) error {
	return &CardError{Kind: KindStreetMapping, msg: fmt.Sprintf(format, args...)}
}

// NewConversionError builds a KindConversion card error.
func NewConversionError(format string, args ...any) error {
	return &CardError{Kind: KindConversion, msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the failure class from err, or 0 when err is not a
// card-level error.
func KindOf(err error) ErrKind {
	var ce *CardError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

// IsParsing reports whether err is a structural parsing failure. Timing
// errors are a specialization of parsing failures.
func IsParsing(err error) bool {
	k := KindOf(err)
	return k == KindParsing || k == KindTiming
}
