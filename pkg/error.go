package pkg

import "errors"

// Protocol and relay errors.
var (
	// ErrParity indicates a received frame failed the odd parity check.
	ErrParity = errors.New("parity error")

	// ErrFraming indicates no valid stop bit was seen within the frame window.
	ErrFraming = errors.New("framing error")

	// ErrContention indicates a send was refused because a receive is in progress.
	ErrContention = errors.New("bus contention")

	// ErrBusy indicates a previous frame is still being clocked out.
	ErrBusy = errors.New("transmitter busy")

	// ErrInhibited indicates the computer inhibited the line or requested to
	// send while a frame was being clocked out to it.
	ErrInhibited = errors.New("line inhibited")

	// ErrIdle indicates no frame has been requested on the line.
	ErrIdle = errors.New("line idle")

	// ErrBusTimeout indicates an incomplete frame was abandoned after the
	// guard interval elapsed without clock activity.
	ErrBusTimeout = errors.New("bus timeout")

	// ErrOverflow indicates a byte was dropped because a queue was full.
	ErrOverflow = errors.New("queue overflow")

	// ErrAlreadyRunning indicates the relay is already running.
	ErrAlreadyRunning = errors.New("already running")

	// ErrInvalidParameter indicates an invalid parameter was provided.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// FrameStatus represents the outcome of a single frame transfer.
type FrameStatus int

// Frame status values.
const (
	FrameStatusSuccess    FrameStatus = iota // Frame transferred
	FrameStatusParity                        // Parity check failed
	FrameStatusFraming                       // Stop bit missing
	FrameStatusContention                    // Refused, receive in progress
	FrameStatusBusy                          // Refused, transmit in progress
	FrameStatusInhibited                     // Cancelled by the computer
	FrameStatusTimeout                       // Abandoned by the bus guard
)

// String returns a string representation of the frame status.
func (s FrameStatus) String() string {
	switch s {
	case FrameStatusSuccess:
		return "success"
	case FrameStatusParity:
		return "parity"
	case FrameStatusFraming:
		return "framing"
	case FrameStatusContention:
		return "contention"
	case FrameStatusBusy:
		return "busy"
	case FrameStatusInhibited:
		return "inhibited"
	case FrameStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error returns the corresponding error for the frame status.
func (s FrameStatus) Error() error {
	switch s {
	case FrameStatusSuccess:
		return nil
	case FrameStatusParity:
		return ErrParity
	case FrameStatusFraming:
		return ErrFraming
	case FrameStatusContention:
		return ErrContention
	case FrameStatusBusy:
		return ErrBusy
	case FrameStatusInhibited:
		return ErrInhibited
	case FrameStatusTimeout:
		return ErrBusTimeout
	default:
		return ErrInvalidParameter
	}
}

// StatusOf maps an error returned by an engine to its frame status.
// Unrecognized errors map to FrameStatusFraming.
func StatusOf(err error) FrameStatus {
	switch {
	case err == nil:
		return FrameStatusSuccess
	case errors.Is(err, ErrParity):
		return FrameStatusParity
	case errors.Is(err, ErrContention):
		return FrameStatusContention
	case errors.Is(err, ErrBusy):
		return FrameStatusBusy
	case errors.Is(err, ErrInhibited):
		return FrameStatusInhibited
	case errors.Is(err, ErrBusTimeout):
		return FrameStatusTimeout
	default:
		return FrameStatusFraming
	}
}

// IsRetryable reports whether a failed send should be retried by pushing the
// byte back onto its queue.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrContention) || errors.Is(err, ErrBusy) || errors.Is(err, ErrInhibited)
}
