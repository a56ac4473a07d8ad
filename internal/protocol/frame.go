package protocol

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Wire format of a single frame:
//
//	header  = tag(3) + length(3, decimal ASCII, zero padded or not)
//	payload = exactly length bytes of space separated tokens
//
//	e.g. "mos009" + "m 12 -7"
const (
	TagSize    = 3
	HeaderSize = 6
	MaxPayload = 999
	MaxTokens  = 8
)

// TagMouse is the only command family the relay understands
const TagMouse = "mos"

// Token is one space separated word of a payload
type Token struct {
	Text string
	Int  int // leading integer of Text, 0 when there is none
}

// Frame is a decoded command
type Frame struct {
	Tag     string
	Payload []byte
	Tokens  []Token
}

// Decoder reads frames from a byte stream
type Decoder struct {
	r      io.Reader
	header [HeaderSize]byte
}

// NewDecoder returns a decoder reading from r
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Next reads one frame.
//
// A stream that ends before a full header or payload yields io.EOF. A
// header with a non-positive or unparsable length yields ErrInvalidLength.
// A payload with too many tokens yields the frame (without tokens) together
// with ErrTooManyTokens; the stream stays aligned and decoding may go on.
func (d *Decoder) Next() (*Frame, error) {
	if err := d.fill(d.header[:]); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	size, ok := parseLeadingInt(string(d.header[TagSize:]))
	if !ok || size <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLength, d.header[TagSize:])
	}

	payload := make([]byte, size)
	if err := d.fill(payload); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}

	frame := &Frame{
		Tag:     string(d.header[:TagSize]),
		Payload: payload,
	}

	tokens, err := Tokenize(string(payload))
	if err != nil {
		return frame, err
	}
	frame.Tokens = tokens
	return frame, nil
}

// fill reads exactly len(buf) bytes; a short read is reported as io.EOF
func (d *Decoder) fill(buf []byte) error {
	_, err := io.ReadFull(d.r, buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return io.EOF
	}
	return err
}

// Tokenize splits a payload on spaces. Runs of spaces count as one
// separator and leading or trailing spaces are ignored.
func Tokenize(payload string) ([]Token, error) {
	words := strings.FieldsFunc(payload, func(r rune) bool { return r == ' ' })
	if len(words) > MaxTokens {
		return nil, fmt.Errorf("%w: %d words", ErrTooManyTokens, len(words))
	}

	tokens := make([]Token, len(words))
	for i, w := range words {
		n, _ := parseLeadingInt(w)
		tokens[i] = Token{Text: w, Int: n}
	}
	return tokens, nil
}

// parseLeadingInt parses the base-10 integer at the start of s, after
// optional leading whitespace and sign. Trailing garbage is ignored.
// Values beyond the int32 range are clamped. ok is false when s has no
// digits to parse.
func parseLeadingInt(s string) (n int, ok bool) {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}

	// out of range values saturate at the int32 bounds, as strtol does
	v, err := strconv.ParseInt(s[:end], 10, 32)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return int(v), true
}

// Encode builds the wire form of a frame
func Encode(tag string, payload []byte) ([]byte, error) {
	if len(tag) != TagSize {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	if len(payload) == 0 || len(payload) > MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadSize, len(payload))
	}

	buf := make([]byte, 0, HeaderSize+len(payload))
	buf = append(buf, tag...)
	buf = append(buf, fmt.Sprintf("%03d", len(payload))...)
	buf = append(buf, payload...)
	return buf, nil
}

// Encoder writes frames to a byte stream
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an encoder writing to w
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteFrame encodes and writes one frame
func (e *Encoder) WriteFrame(tag string, payload []byte) error {
	data, err := Encode(tag, payload)
	if err != nil {
		return err
	}
	_, err = e.w.Write(data)
	return err
}
