package datastructure

import (
	"errors"
	"fmt"
	"time"
)

const (
	CodeInvalidInput    = "invalid_input"
	CodeSnapFailed      = "snap_failed"
	CodeNoPath          = "no_path"
	CodeSearchTimeout   = "search_timeout"
	CodeDataUnavailable = "data_unavailable"
)

// CodedError error engine dengan reason code yang stabil.
type CodedError interface {
	error
	Code() string
}

// ErrorCode return reason code error pertama di chain yang punya Code(), "" kalau tidak ada.
func ErrorCode(err error) string {
	var ce CodedError
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type InputValidationError struct {
	Field  string
	Reason string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InputValidationError) Code() string { return CodeInvalidInput }

type SnapFailureError struct {
	Point        Coordinate
	MaxDistanceM float64
	// NearestM jarak ke node terdekat, -1 kalau graph kosong.
	NearestM float64
}

func (e *SnapFailureError) Error() string {
	if e.NearestM < 0 {
		return fmt.Sprintf("no road node within %.0f m of (%.6f, %.6f): graph is empty", e.MaxDistanceM, e.Point.Lat, e.Point.Lon)
	}
	return fmt.Sprintf("no road node within %.0f m of (%.6f, %.6f), nearest is %.0f m away",
		e.MaxDistanceM, e.Point.Lat, e.Point.Lon, e.NearestM)
}

func (e *SnapFailureError) Code() string { return CodeSnapFailed }

type NoPathFoundError struct {
	From NodeID
	To   NodeID
}

func (e *NoPathFoundError) Error() string {
	return fmt.Sprintf("no path between node %d and node %d", e.From, e.To)
}

func (e *NoPathFoundError) Code() string { return CodeNoPath }

type SearchTimeoutError struct {
	Expanded int
	Elapsed  time.Duration
	Cause    error
}

func (e *SearchTimeoutError) Error() string {
	return fmt.Sprintf("search budget exhausted after %d expansions in %s", e.Expanded, e.Elapsed)
}

func (e *SearchTimeoutError) Unwrap() error { return e.Cause }

func (e *SearchTimeoutError) Code() string { return CodeSearchTimeout }

// Retryable search timeout boleh dicoba lagi sama caller.
func (e *SearchTimeoutError) Retryable() bool { return true }

type DataUnavailableError struct {
	Provider string
	Err      error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("%s data unavailable: %v", e.Provider, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

func (e *DataUnavailableError) Code() string { return CodeDataUnavailable }
