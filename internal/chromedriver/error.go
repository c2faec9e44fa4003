package chromedriver

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedHost  = errors.New("unsupported host")
	ErrVersionNotFound  = errors.New("browser version not found")
	ErrMalformedVersion = errors.New("malformed browser version")
	ErrResolutionFailed = errors.New("driver release resolution failed")
	ErrDownloadFailed   = errors.New("driver download failed")
	ErrExtractionFailed = errors.New("driver extraction failed")
	ErrPermissionFailed = errors.New("driver permission change failed")
)

// StageError matches both its stage sentinel and its cause with errors.Is and errors.As.
type StageError struct {
	Stage error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return e.Stage.Error()
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Stage}
	}
	return []error{e.Stage, e.Err}
}

func NewStageError(stage, err error) error {
	return &StageError{
		Stage: stage,
		Err:   err,
	}
}

type UnexpectedStatusCodeError struct {
	URL  string
	Got  int
	Want []int
}

func (e *UnexpectedStatusCodeError) Error() string {
	return fmt.Sprintf("unexpected status code for %s: got %d, want one of %d", e.URL, e.Got, e.Want)
}

func NewUnexpectedStatusCodeError(url string, got int, want ...int) error {
	return &UnexpectedStatusCodeError{
		URL:  url,
		Got:  got,
		Want: want,
	}
}
