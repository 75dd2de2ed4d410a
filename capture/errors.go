package capture

import "fmt"

// ClassifierError reports a classifier failure on a single frame. It is fatal
// to the capture: skipping frames silently would desynchronize the timing
// counters, so the call is aborted instead.
type ClassifierError struct {
	Err error
}

func (e *ClassifierError) Error() string {
	return fmt.Sprintf("speech classifier: %v", e.Err)
}

func (e *ClassifierError) Unwrap() error {
	return e.Err
}
