package playlist

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

// mockSource returns a fixed entry list.
type mockSource struct {
	entries []Entry
	err     error
}

func (m *mockSource) FetchAll(ctx context.Context) ([]Entry, error) {
	return m.entries, m.err
}

// mockSink records every mutation in call order.
type mockSink struct {
	calls   []string
	failOn  string
	failErr error
}

func (m *mockSink) SetPosition(ctx context.Context, e Entry, index int64) error {
	m.calls = append(m.calls, "set:"+e.EntryID)
	if e.EntryID == m.failOn {
		return m.failErr
	}
	return nil
}

func (m *mockSink) Delete(ctx context.Context, e Entry) error {
	m.calls = append(m.calls, "del:"+e.EntryID)
	if e.EntryID == m.failOn {
		return m.failErr
	}
	return nil
}

func TestCuratorRunAppliesSequentially(t *testing.T) {
	source := &mockSource{entries: []Entry{
		{EntryID: "old", VideoID: "vo", Title: "old", PublishedAt: ts(10, 0, 0)},
		{EntryID: "dead", VideoID: "vd", Title: "dead"},
		{EntryID: "new", VideoID: "vn", Title: "new", PublishedAt: ts(11, 0, 0)},
	}}
	sink := &mockSink{}

	curator := NewCurator(source, sink, Options{MaxRetained: 10})
	report, err := curator.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !report.Changed {
		t.Fatal("Run() report.Changed = false, want true")
	}

	want := []string{"del:dead", "set:new", "set:old"}
	if len(sink.calls) != len(want) {
		t.Fatalf("sink calls = %v, want %v", sink.calls, want)
	}
	for i := range want {
		if sink.calls[i] != want[i] {
			t.Fatalf("sink calls = %v, want %v", sink.calls, want)
		}
	}
}

func TestCuratorRunNoOpWhenCanonical(t *testing.T) {
	source := &mockSource{entries: []Entry{
		{EntryID: "new", VideoID: "vn", Title: "new", PublishedAt: ts(11, 0, 0)},
		{EntryID: "old", VideoID: "vo", Title: "old", PublishedAt: ts(10, 0, 0)},
	}}
	sink := &mockSink{}

	curator := NewCurator(source, sink, Options{MaxRetained: 10})
	report, err := curator.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Changed {
		t.Error("Run() report.Changed = true, want false")
	}
	if len(sink.calls) != 0 {
		t.Errorf("sink calls = %v, want none", sink.calls)
	}
}

func TestCuratorDryRunSkipsSink(t *testing.T) {
	source := &mockSource{entries: []Entry{
		{EntryID: "old", VideoID: "vo", Title: "old", PublishedAt: ts(10, 0, 0)},
		{EntryID: "new", VideoID: "vn", Title: "new", PublishedAt: ts(11, 0, 0)},
	}}
	sink := &mockSink{}

	curator := NewCurator(source, sink, Options{MaxRetained: 10, DryRun: true})
	report, err := curator.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Decisions are identical to a live run; only dispatch is suppressed.
	if !report.Changed {
		t.Error("dry run report.Changed = false, want true")
	}
	if len(report.Intents()) != 2 {
		t.Errorf("dry run intents = %d, want 2", len(report.Intents()))
	}
	if len(sink.calls) != 0 {
		t.Errorf("dry run dispatched mutations: %v", sink.calls)
	}
}

func TestCuratorRunAbortsOnSinkError(t *testing.T) {
	source := &mockSource{entries: []Entry{
		{EntryID: "c", VideoID: "vc", Title: "c", PublishedAt: ts(10, 0, 0)},
		{EntryID: "b", VideoID: "vb", Title: "b", PublishedAt: ts(11, 0, 0)},
		{EntryID: "a", VideoID: "va", Title: "a", PublishedAt: ts(12, 0, 0)},
	}}
	sinkErr := errors.New("quota exceeded")
	sink := &mockSink{failOn: "b", failErr: sinkErr}

	curator := NewCurator(source, sink, Options{MaxRetained: 10})
	report, err := curator.Run(context.Background())

	if !errors.Is(err, sinkErr) {
		t.Fatalf("Run() error = %v, want %v", err, sinkErr)
	}
	if report == nil {
		t.Fatal("Run() report = nil, want computed report alongside error")
	}

	// Canonical order a, b, c: a succeeds, b fails, c is never attempted.
	want := []string{"set:a", "set:b"}
	if len(sink.calls) != len(want) {
		t.Fatalf("sink calls = %v, want %v", sink.calls, want)
	}
}

func TestCuratorRunPropagatesSourceError(t *testing.T) {
	sourceErr := errors.New("transport down")
	curator := NewCurator(&mockSource{err: sourceErr}, &mockSink{}, Options{})

	_, err := curator.Run(context.Background())
	if !errors.Is(err, sourceErr) {
		t.Fatalf("Run() error = %v, want %v", err, sourceErr)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		maxLen int
		want   string
	}{
		{"short ascii", "Sunday Service", 50, "Sunday Service"},
		{"exact length", "abcde", 5, "abcde"},
		{"long ascii", "abcdefghij", 8, "abcde..."},
		{"multibyte kept", "日曜礼拝", 10, "日曜礼拝"},
		{"multibyte cut", "日曜礼拝ライブ配信アーカイブ", 10, "日曜礼拝ライブ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.s, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.s, tt.maxLen)
			}
		})
	}
}

func TestCuratorPrint(t *testing.T) {
	curator := NewCurator(&mockSource{}, &mockSink{}, Options{})

	report := Reconcile(
		[]Entry{
			{EntryID: "pl1", VideoID: "v1", Title: "Sunday Service", PublishedAt: ts(10, 0, 0)},
			{EntryID: "pl2", VideoID: "v2", Title: "Broken", Blocked: true},
		},
		Prune(Sorted([]Entry{
			{EntryID: "pl1", VideoID: "v1", Title: "Sunday Service", PublishedAt: ts(10, 0, 0)},
			{EntryID: "pl2", VideoID: "v2", Title: "Broken", Blocked: true},
		}), 10),
	)

	var buf bytes.Buffer
	if err := curator.Print(&buf, report); err != nil {
		t.Fatalf("Print() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"ENTRY ID", "Sunday Service", "blocked", "needs changes"} {
		if !strings.Contains(out, want) {
			t.Errorf("Print() output missing %q:\n%s", want, out)
		}
	}
}
