package stream

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/nerrad567/huelink-core/internal/infrastructure/logging"
)

func TestFrameDecoder_Selection(t *testing.T) {
	log := logging.Default()

	if _, ok := newFrameDecoder(strings.NewReader(""), "text/event-stream; charset=utf-8", log).(*sseDecoder); !ok {
		t.Error("text/event-stream did not select the SSE decoder")
	}
	if _, ok := newFrameDecoder(strings.NewReader(""), "application/json", log).(*arrayDecoder); !ok {
		t.Error("application/json did not select the array decoder")
	}
	if _, ok := newFrameDecoder(strings.NewReader(""), "", log).(*arrayDecoder); !ok {
		t.Error("empty content type did not fall back to the array decoder")
	}
}

func TestArrayDecoder(t *testing.T) {
	input := `[{"type":"update","data":[{"id":"l1"}]}]` + "\n" +
		`[{"type":"delete","data":[{"id":"l2"}]}]`
	dec := newFrameDecoder(strings.NewReader(input), "application/json", logging.Default())

	first, err := dec.next()
	if err != nil {
		t.Fatalf("next() error = %v", err)
	}
	if len(first) != 1 || first[0].Type != "update" {
		t.Fatalf("first payload = %+v, want one update batch", first)
	}
	if first[0].Data[0]["id"] != "l1" {
		t.Errorf("first batch id = %v, want l1", first[0].Data[0]["id"])
	}

	second, err := dec.next()
	if err != nil {
		t.Fatalf("next() error = %v", err)
	}
	if len(second) != 1 || second[0].Type != "delete" {
		t.Fatalf("second payload = %+v, want one delete batch", second)
	}

	if _, err := dec.next(); err == nil {
		t.Error("next() after stream end expected error, got nil")
	}
}

func TestSSEDecoder_SkipsKeepAlives(t *testing.T) {
	input := strings.Join([]string{
		": hi",
		"",
		"id: 1234:0",
		`data: [{"type":"update","data":[{"id":"l1"}]}]`,
		"",
		": hi",
		`data: [{"type":"update","data":[{"id":"l2"}]}]`,
		"",
	}, "\n")
	dec := newFrameDecoder(strings.NewReader(input), "text/event-stream", logging.Default())

	first, err := dec.next()
	if err != nil {
		t.Fatalf("next() error = %v", err)
	}
	if first[0].Data[0]["id"] != "l1" {
		t.Errorf("first id = %v, want l1", first[0].Data[0]["id"])
	}

	second, err := dec.next()
	if err != nil {
		t.Fatalf("next() error = %v", err)
	}
	if second[0].Data[0]["id"] != "l2" {
		t.Errorf("second id = %v, want l2", second[0].Data[0]["id"])
	}

	if _, err := dec.next(); !errors.Is(err, io.EOF) {
		t.Errorf("next() after stream end = %v, want io.EOF", err)
	}
}

func TestSSEDecoder_SkipsUndecodableLine(t *testing.T) {
	input := strings.Join([]string{
		`data: [{"type":"update","data":[{"id":`,
		`data: [{"type":"update","data":[{"id":"l1"}]}]`,
	}, "\n")
	dec := newFrameDecoder(strings.NewReader(input), "text/event-stream", logging.Default())

	// The broken line is logged and skipped; the good one still decodes.
	batches, err := dec.next()
	if err != nil {
		t.Fatalf("next() error = %v", err)
	}
	if batches[0].Data[0]["id"] != "l1" {
		t.Errorf("id = %v, want l1", batches[0].Data[0]["id"])
	}
}

func TestSSEDecoder_BareArrayLine(t *testing.T) {
	// Some firmware omits the data: field prefix.
	input := `[{"type":"add","data":[{"id":"l1","type":"light"}]}]` + "\n"
	dec := newFrameDecoder(strings.NewReader(input), "text/event-stream", logging.Default())

	batches, err := dec.next()
	if err != nil {
		t.Fatalf("next() error = %v", err)
	}
	if len(batches) != 1 || batches[0].Type != "add" {
		t.Errorf("batches = %+v, want one add batch", batches)
	}
}

func TestExtractArray(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   string
		wantOK bool
	}{
		{"data prefix", `data: [{"type":"update"}]`, `[{"type":"update"}]`, true},
		{"no prefix", `[{"type":"update"}]`, `[{"type":"update"}]`, true},
		{"prefix without space", `data:[{"x":1}]`, `[{"x":1}]`, true},
		{"no array", "id: 42", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractArray(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("extractArray(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("extractArray(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
