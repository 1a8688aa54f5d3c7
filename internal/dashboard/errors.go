package dashboard

import (
	"errors"
	"fmt"
)

var (
	// ErrDataLoad marks every failure to load the metric table.
	ErrDataLoad = errors.New("dashboard: data load failed")
	// ErrEmptySelection is returned when no metric is selected.
	ErrEmptySelection = errors.New("dashboard: no metrics selected")
	// ErrInvalidRange is returned for inverted or out-of-bounds year ranges.
	ErrInvalidRange = errors.New("dashboard: invalid year range")
	// ErrUnknownMetric is returned when a selection names a metric that is not selectable.
	ErrUnknownMetric = errors.New("dashboard: unknown metric")
)

// DataLoadError describes why the source table could not be loaded.
type DataLoadError struct {
	Source string
	Line   int
	Err    error
}

func (e *DataLoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("load %s: line %d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrDataLoad) match any DataLoadError.
func (e *DataLoadError) Is(target error) bool {
	return target == ErrDataLoad
}

func loadError(source string, line int, format string, args ...any) error {
	return &DataLoadError{Source: source, Line: line, Err: fmt.Errorf(format, args...)}
}
