package scraper

import (
	"errors"
	"fmt"
)

// ErrUnknownTeacher matches every *UnknownTeacherError via errors.Is.
var ErrUnknownTeacher = errors.New("unknown teacher")

// UnknownTeacherError is returned when a teacher id is not in the directory.
type UnknownTeacherError struct {
	ID int
}

func (e *UnknownTeacherError) Error() string {
	return fmt.Sprintf("teacher with id %d does not exist", e.ID)
}

func (e *UnknownTeacherError) Is(target error) bool {
	return target == ErrUnknownTeacher
}

// TransportError is a failed page fetch: network, timeout or non-2xx status.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
