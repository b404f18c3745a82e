package stream

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/huelink-core/internal/infrastructure/logging"
)

type mutation struct {
	op string
	id string
}

// fakeMutator records registry mutations in order.
type fakeMutator struct {
	mutations []mutation
}

func (f *fakeMutator) Add(payload map[string]any) error {
	id, _ := payload["id"].(string)
	f.mutations = append(f.mutations, mutation{op: "add", id: id})
	return nil
}

func (f *fakeMutator) Modify(id string, _ map[string]any) error {
	f.mutations = append(f.mutations, mutation{op: "modify", id: id})
	return nil
}

func (f *fakeMutator) Delete(id string) error {
	f.mutations = append(f.mutations, mutation{op: "delete", id: id})
	return nil
}

// fakeOpener serves a fixed body once, then fails until the context ends.
type fakeOpener struct {
	body        string
	contentType string
	opens       int
}

func (f *fakeOpener) OpenStream(ctx context.Context) (io.ReadCloser, string, error) {
	f.opens++
	if f.opens > 1 {
		<-ctx.Done()
		return nil, "", ctx.Err()
	}
	return io.NopCloser(strings.NewReader(f.body)), f.contentType, nil
}

func runConsumer(t *testing.T, opener Opener, reg Mutator) {
	t.Helper()
	c := New(opener, reg, time.Millisecond, logging.Default())

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	c.Run(ctx)
}

func TestConsumer_DispatchesBatches(t *testing.T) {
	reg := &fakeMutator{}
	opener := &fakeOpener{
		contentType: "application/json",
		body: `[` +
			`{"type":"add","data":[{"id":"l1","type":"light"}]},` +
			`{"type":"update","data":[{"id":"l1","on":{"on":true}}]},` +
			`{"type":"delete","data":[{"id":"l1"}]}` +
			`]`,
	}

	runConsumer(t, opener, reg)

	want := []mutation{
		{op: "add", id: "l1"},
		{op: "modify", id: "l1"},
		{op: "delete", id: "l1"},
	}
	if len(reg.mutations) != len(want) {
		t.Fatalf("mutations = %+v, want %+v", reg.mutations, want)
	}
	for i := range want {
		if reg.mutations[i] != want[i] {
			t.Errorf("mutations[%d] = %+v, want %+v", i, reg.mutations[i], want[i])
		}
	}
}

func TestConsumer_SSEFraming(t *testing.T) {
	reg := &fakeMutator{}
	opener := &fakeOpener{
		contentType: "text/event-stream",
		body: strings.Join([]string{
			": hi",
			`data: [{"type":"update","data":[{"id":"l1","on":{"on":true}}]}]`,
			"",
		}, "\n"),
	}

	runConsumer(t, opener, reg)

	if len(reg.mutations) != 1 || reg.mutations[0] != (mutation{op: "modify", id: "l1"}) {
		t.Errorf("mutations = %+v, want single modify of l1", reg.mutations)
	}
}

func TestConsumer_UnknownBatchTypeIgnored(t *testing.T) {
	reg := &fakeMutator{}
	opener := &fakeOpener{
		contentType: "application/json",
		body: `[` +
			`{"type":"error","data":[{"id":"x"}]},` +
			`{"type":"update","data":[{"id":"l1"}]}` +
			`]`,
	}

	runConsumer(t, opener, reg)

	if len(reg.mutations) != 1 || reg.mutations[0].op != "modify" {
		t.Errorf("mutations = %+v, want the update only", reg.mutations)
	}
}

func TestConsumer_MissingIDSkipped(t *testing.T) {
	reg := &fakeMutator{}
	opener := &fakeOpener{
		contentType: "application/json",
		body: `[` +
			`{"type":"update","data":[{"on":{"on":true}},{"id":"l1"}]},` +
			`{"type":"delete","data":[{},{"id":"l2"}]}` +
			`]`,
	}

	runConsumer(t, opener, reg)

	want := []mutation{
		{op: "modify", id: "l1"},
		{op: "delete", id: "l2"},
	}
	if len(reg.mutations) != len(want) {
		t.Fatalf("mutations = %+v, want %+v", reg.mutations, want)
	}
}

func TestConsumer_PreMutationHook(t *testing.T) {
	reg := &fakeMutator{}
	opener := &fakeOpener{
		contentType: "application/json",
		body: `[` +
			`{"type":"update","data":[{"id":"l1"}]},` +
			`{"type":"add","data":[{"id":"l2","type":"light"}]},` +
			`{"type":"delete","data":[{"id":"l2"}]}` +
			`]`,
	}

	c := New(opener, reg, time.Millisecond, logging.Default())
	var hookTypes []string
	c.SetPreMutationHook(func(eventType string) {
		hookTypes = append(hookTypes, eventType)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	c.Run(ctx)

	// The hook fires for structural events only, not updates.
	want := []string{"add", "delete"}
	if len(hookTypes) != len(want) {
		t.Fatalf("hook types = %v, want %v", hookTypes, want)
	}
	for i := range want {
		if hookTypes[i] != want[i] {
			t.Errorf("hook types[%d] = %q, want %q", i, hookTypes[i], want[i])
		}
	}
}

func TestConsumer_ReconnectsAfterFailure(t *testing.T) {
	reg := &fakeMutator{}
	opener := &countingOpener{}

	c := New(opener, reg, time.Millisecond, logging.Default())
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	c.Run(ctx)

	if opener.opens < 2 {
		t.Errorf("opens = %d, want at least 2 (reconnect after failure)", opener.opens)
	}
}

// countingOpener always fails, counting attempts.
type countingOpener struct {
	opens int
}

func (f *countingOpener) OpenStream(context.Context) (io.ReadCloser, string, error) {
	f.opens++
	return nil, "", errors.New("connection refused")
}
