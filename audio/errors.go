package audio

import "fmt"

// DeviceError reports a failure to open or read from the input device. It is
// fatal to the capture that encountered it; silence never produces one.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
