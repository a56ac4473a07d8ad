package protocol

import "errors"

var (
	// ErrInvalidLength is returned when a frame header carries a length that
	// is not a positive integer. The byte stream cannot be resynchronised
	// after it, so the session must end.
	ErrInvalidLength = errors.New("invalid command data size")

	// ErrTooManyTokens is returned when a payload holds more than MaxTokens words
	ErrTooManyTokens = errors.New("too many args")

	// ErrInvalidTag is returned by the encoder for tags that are not 3 bytes
	ErrInvalidTag = errors.New("command tag must be 3 bytes")

	// ErrPayloadSize is returned by the encoder for empty or oversized payloads
	ErrPayloadSize = errors.New("payload size out of range")

	// ErrUnknownCommand is returned for frames whose tag is not a known family
	ErrUnknownCommand = errors.New("unknown command")

	// ErrEmptyCommand is returned for a mouse frame without tokens
	ErrEmptyCommand = errors.New("empty mouse command")

	// ErrUnknownMouseCommand is returned for an unrecognised mouse sub-command
	ErrUnknownMouseCommand = errors.New("unknown mouse command")

	// ErrArgCount is returned when a sub-command has the wrong number of tokens
	ErrArgCount = errors.New("bad argument count")

	// ErrUnknownButton is returned for an unrecognised raw button selector
	ErrUnknownButton = errors.New("unknown mouse button")

	// ErrUnknownAction is returned for an unrecognised raw button action
	ErrUnknownAction = errors.New("unknown mouse press")

	// ErrUnknownScroll is returned for an unrecognised wheel direction
	ErrUnknownScroll = errors.New("unknown mouse scroll")
)

// ErrorKind maps a protocol error to a short, stable label.
// Errors that do not come from this package map to "other".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidLength):
		return "invalid_length"
	case errors.Is(err, ErrTooManyTokens):
		return "too_many_tokens"
	case errors.Is(err, ErrUnknownCommand):
		return "unknown_command"
	case errors.Is(err, ErrEmptyCommand):
		return "empty_command"
	case errors.Is(err, ErrUnknownMouseCommand):
		return "unknown_mouse_command"
	case errors.Is(err, ErrArgCount):
		return "arg_count"
	case errors.Is(err, ErrUnknownButton):
		return "unknown_button"
	case errors.Is(err, ErrUnknownAction):
		return "unknown_action"
	case errors.Is(err, ErrUnknownScroll):
		return "unknown_scroll"
	default:
		return "other"
	}
}
