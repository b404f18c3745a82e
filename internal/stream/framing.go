package stream

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nerrad567/huelink-core/internal/infrastructure/logging"
)

// Scanner buffer sizing. A single event batch can carry the state of
// many resources; the default 64K token limit is not enough.
const (
	scanInitialBuffer = 64 * 1024
	scanMaxBuffer     = 1024 * 1024
)

// batchEvent is one entry of a decoded stream payload: an event type
// and the resource deltas it carries.
type batchEvent struct {
	Type string           `json:"type"`
	Data []map[string]any `json:"data"`
}

// frameDecoder reads one stream payload per call. Implementations
// normalize a wire framing into []batchEvent; a returned error means
// the connection is done and the caller should reconnect.
type frameDecoder interface {
	next() ([]batchEvent, error)
}

// newFrameDecoder selects the decoder for a connection based on the
// Content-Type the bridge reported. Older firmware answers with plain
// JSON arrays; newer firmware speaks server-sent events. Probing the
// response header picks the right framing per connection instead of
// hardcoding one.
func newFrameDecoder(r io.Reader, contentType string, log *logging.Logger) frameDecoder {
	if strings.Contains(contentType, "text/event-stream") {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, scanInitialBuffer), scanMaxBuffer)
		return &sseDecoder{scanner: sc, log: log}
	}
	return &arrayDecoder{dec: json.NewDecoder(r), log: log}
}

// arrayDecoder handles the bare framing: each read yields one JSON
// array of batch events.
type arrayDecoder struct {
	dec *json.Decoder
	log *logging.Logger
}

func (d *arrayDecoder) next() ([]batchEvent, error) {
	var batches []batchEvent
	if err := d.dec.Decode(&batches); err != nil {
		return nil, fmt.Errorf("decoding event array: %w", err)
	}
	return batches, nil
}

// sseDecoder handles the server-sent-events framing: newline-delimited
// records where comment lines (": hi" keep-alives) and id lines are
// interleaved with data lines carrying a bracketed JSON array.
//
// Keep-alive and unrecognized lines are skipped, never treated as
// decode failures. A data line that fails to parse is logged and
// skipped; only transport-level read errors end the connection.
type sseDecoder struct {
	scanner *bufio.Scanner
	log     *logging.Logger
}

func (d *sseDecoder) next() ([]batchEvent, error) {
	for d.scanner.Scan() {
		line := strings.TrimSpace(d.scanner.Text())
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		payload, ok := extractArray(line)
		if !ok {
			continue
		}

		var batches []batchEvent
		if err := json.Unmarshal([]byte(payload), &batches); err != nil {
			d.log.Warn("skipping undecodable stream line", "error", err)
			continue
		}
		return batches, nil
	}

	if err := d.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading event stream: %w", err)
	}
	return nil, io.EOF
}

// extractArray pulls the bracketed JSON array out of a stream line,
// tolerating a "data:" field prefix.
func extractArray(line string) (string, bool) {
	if v, found := strings.CutPrefix(line, "data:"); found {
		line = strings.TrimSpace(v)
	}
	start := strings.IndexByte(line, '[')
	if start < 0 {
		return "", false
	}
	return line[start:], true
}
