// Package stream turns the line-delimited JSON body of a streamed workout
// generation into an ordered sequence of envelopes.
//
// Bytes may arrive split at any offset, including inside a multi-byte UTF-8
// sequence. The decoder carries incomplete sequences and unterminated lines
// across chunks, so the accumulated text does not depend on how the body was
// chunked.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/claude/atlas/internal/models"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readChunkSize is the size of a single read from the underlying source.
const readChunkSize = 4096

// ErrIncompleteStream is returned when the source ends with a non-empty line
// that is not newline-terminated and does not parse as an envelope.
var ErrIncompleteStream = errors.New("stream ended inside an unterminated line")

// ParseWarning records a single line that could not be decoded. It is logged
// and skipped, never returned as a stream failure.
type ParseWarning struct {
	Line string
	Err  error
}

func (w ParseWarning) Error() string {
	return fmt.Sprintf("undecodable stream line %q: %v", w.Line, w.Err)
}

func (w ParseWarning) Unwrap() error {
	return w.Err
}

// Handler receives decoded envelopes in arrival order.
type Handler interface {
	// OnText is called after every text envelope with the full text
	// accumulated so far.
	OnText(accumulated string)
	// OnError is called once per error envelope. Consumption continues.
	OnError(message string)
}

// HandlerFuncs adapts plain functions to Handler. Nil fields are skipped.
type HandlerFuncs struct {
	Text  func(accumulated string)
	Error func(message string)
}

func (h HandlerFuncs) OnText(accumulated string) {
	if h.Text != nil {
		h.Text(accumulated)
	}
}

func (h HandlerFuncs) OnError(message string) {
	if h.Error != nil {
		h.Error(message)
	}
}

// Decoder is a single-producer, single-consumer accumulator. Feed it chunks
// with Write and finish with Close. It is not safe for concurrent use.
type Decoder struct {
	handler Handler
	log     *slog.Logger

	utf8    transform.Transformer
	pending []byte // undecoded bytes of an incomplete UTF-8 sequence
	carry   strings.Builder
	text    strings.Builder
	closed  bool

	warnings []ParseWarning
	errors   []string
	usage    *models.StreamEnvelope
}

// NewDecoder returns a Decoder reporting to h. A nil logger discards logs.
func NewDecoder(h Handler, log *slog.Logger) *Decoder {
	if h == nil {
		h = HandlerFuncs{}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Decoder{
		handler: h,
		log:     log,
		utf8:    unicode.UTF8.NewDecoder(),
	}
}

// Write feeds one chunk. Every newline-terminated line contained in the data
// seen so far is processed before Write returns.
func (d *Decoder) Write(chunk []byte) (int, error) {
	if d.closed {
		return 0, errors.New("stream: write after close")
	}
	decoded, err := d.decode(chunk, false)
	if err != nil {
		return 0, err
	}
	d.frame(decoded)
	return len(chunk), nil
}

// Close signals end of stream. A trailing unterminated line is parsed as a
// final envelope; if it does not parse, ErrIncompleteStream is returned.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	decoded, err := d.decode(nil, true)
	if err != nil {
		return err
	}
	d.frame(decoded)

	tail := d.carry.String()
	d.carry.Reset()
	if strings.TrimSpace(tail) == "" {
		return nil
	}

	var env models.StreamEnvelope
	if err := json.Unmarshal([]byte(tail), &env); err != nil {
		d.log.Warn("stream ended inside an unterminated line", "bytes", len(tail), "error", err)
		return fmt.Errorf("%w (%d bytes)", ErrIncompleteStream, len(tail))
	}
	d.dispatch(env)
	return nil
}

// Text returns the text accumulated from all text envelopes so far.
func (d *Decoder) Text() string {
	return d.text.String()
}

// Warnings returns the lines that were skipped because they were not valid JSON.
func (d *Decoder) Warnings() []ParseWarning {
	return d.warnings
}

// Errors returns the messages of every error envelope seen, in order.
func (d *Decoder) Errors() []string {
	return d.errors
}

// Usage returns the last usage envelope, if the stream sent one.
func (d *Decoder) Usage() (models.StreamEnvelope, bool) {
	if d.usage == nil {
		return models.StreamEnvelope{}, false
	}
	return *d.usage, true
}

// Reset prepares the decoder for a new stream, dropping all state.
func (d *Decoder) Reset() {
	d.utf8.Reset()
	d.pending = nil
	d.carry.Reset()
	d.text.Reset()
	d.closed = false
	d.warnings = nil
	d.errors = nil
	d.usage = nil
}

// decode converts bytes to text, keeping a trailing incomplete sequence in
// d.pending until the next chunk (or replacing it with U+FFFD at EOF).
func (d *Decoder) decode(chunk []byte, atEOF bool) (string, error) {
	d.pending = append(d.pending, chunk...)

	var out strings.Builder
	buf := make([]byte, readChunkSize)
	for {
		nDst, nSrc, err := d.utf8.Transform(buf, d.pending, atEOF)
		out.Write(buf[:nDst])
		d.pending = d.pending[nSrc:]

		switch {
		case err == nil:
			return out.String(), nil
		case errors.Is(err, transform.ErrShortDst):
			continue
		case errors.Is(err, transform.ErrShortSrc):
			// Incomplete sequence; wait for more bytes.
			d.pending = append([]byte(nil), d.pending...)
			return out.String(), nil
		default:
			return "", fmt.Errorf("decoding stream: %w", err)
		}
	}
}

// frame appends text to the carry-over buffer and processes every complete line.
func (d *Decoder) frame(text string) {
	if text == "" {
		return
	}
	d.carry.WriteString(text)
	buffered := d.carry.String()

	last := strings.LastIndexByte(buffered, '\n')
	if last < 0 {
		return
	}

	complete, rest := buffered[:last], buffered[last+1:]
	d.carry.Reset()
	d.carry.WriteString(rest)

	for _, line := range strings.Split(complete, "\n") {
		d.line(line)
	}
}

func (d *Decoder) line(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	var env models.StreamEnvelope
	if err := json.Unmarshal([]byte(line), &env); err != nil {
		w := ParseWarning{Line: line, Err: err}
		d.warnings = append(d.warnings, w)
		d.log.Warn("skipping undecodable stream line", "line", line, "error", err)
		return
	}
	d.dispatch(env)
}

func (d *Decoder) dispatch(env models.StreamEnvelope) {
	switch env.Type {
	case models.EnvelopeText:
		d.text.WriteString(env.Text)
		d.handler.OnText(d.text.String())
	case models.EnvelopeError:
		d.errors = append(d.errors, env.Message)
		d.log.Warn("stream error envelope", "message", env.Message)
		d.handler.OnError(env.Message)
	case models.EnvelopeUsage:
		d.usage = &env
		d.log.Debug("stream usage", "input_tokens", env.InputTokens, "output_tokens", env.OutputTokens)
	default:
		d.log.Debug("ignoring stream envelope", "type", env.Type)
	}
}

// Decode reads src to the end, feeding each chunk to a new Decoder, and
// returns that decoder for inspection. The context is checked between reads.
func Decode(ctx context.Context, src io.Reader, h Handler, log *slog.Logger) (*Decoder, error) {
	d := NewDecoder(h, log)
	buf := make([]byte, readChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return d, err
		}

		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := d.Write(buf[:n]); werr != nil {
				return d, werr
			}
		}
		if errors.Is(err, io.EOF) {
			return d, d.Close()
		}
		if err != nil {
			return d, fmt.Errorf("reading stream: %w", err)
		}
	}
}
