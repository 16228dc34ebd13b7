package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/schedulizer/internal/core"
)

func TestPreview_LeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	rec := &recorder{}
	cfg := testConfig()
	cfg.Import.HistorySize = 5
	svc := core.NewService(cfg, core.WithStore(store), core.WithRecorder(rec))

	if _, err := svc.Import(ctx, core.ImportRequest{FileName: "fall.csv", Data: []byte(fallCSV)}); err != nil {
		t.Fatalf("import fall: %v", err)
	}

	preview, err := svc.Preview(ctx, core.ImportRequest{FileName: "spring.csv", Data: []byte(springCSV), Additive: true})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}

	if preview.Rows != 2 || preview.Courses != 3 || preview.Sections != 5 || preview.NumDistinctSchedules != 2 {
		t.Errorf("preview counts = %+v", preview.ImportResult)
	}
	if preview.Parsed == nil || len(preview.Parsed.Courses) != 2 {
		t.Fatalf("Parsed = %+v, want the 2 spring courses", preview.Parsed)
	}
	if preview.ImportID != "" {
		t.Errorf("ImportID = %q, want empty for a preview", preview.ImportID)
	}

	sched := svc.Schedule()
	if len(sched.Courses) != 2 || sched.NumDistinctSchedules != 1 {
		t.Errorf("schedule changed by preview: %d courses, %d imports", len(sched.Courses), sched.NumDistinctSchedules)
	}
	if len(store.saved) != 1 {
		t.Errorf("store saved %d snapshots, want 1", len(store.saved))
	}
	if len(rec.succeeded) != 1 {
		t.Errorf("recorder saw %d imports, want 1", len(rec.succeeded))
	}
	if got := len(svc.History()); got != 1 {
		t.Errorf("History() has %d entries, want 1", got)
	}
}

func TestPreview_Constraints(t *testing.T) {
	svc := core.NewService(testConfig())

	preview, err := svc.Preview(context.Background(), core.ImportRequest{
		FileName: "conflicts.json",
		Data:     []byte(`[["MATH-171-A","CS-108-A"]]`),
	})
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if preview.Constraints != 2 {
		t.Errorf("Constraints = %d, want 2", preview.Constraints)
	}
	if got := preview.ParsedConstraints["CS-108-A"]; len(got) != 1 || got[0] != "MATH-171-A" {
		t.Errorf("ParsedConstraints[CS-108-A] = %v", got)
	}
	if preview.Parsed != nil {
		t.Error("Parsed should be nil for a constraints file")
	}
	if len(svc.Constraints()) != 0 {
		t.Error("constraints applied by preview")
	}
}

func TestPreview_Errors(t *testing.T) {
	svc := core.NewService(testConfig())

	tests := []struct {
		name     string
		req      core.ImportRequest
		wantCode string
	}{
		{name: "unsupported", req: core.ImportRequest{FileName: "a.pdf", Data: []byte("x")}, wantCode: "FILE006"},
		{name: "empty", req: core.ImportRequest{FileName: "a.csv"}, wantCode: "FILE005"},
		{name: "bad json", req: core.ImportRequest{FileName: "a.json", Data: []byte("{")}, wantCode: "FILE008"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Preview(context.Background(), tt.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if code := core.MapError(err).Code; code != tt.wantCode {
				t.Errorf("code = %s, want %s", code, tt.wantCode)
			}
		})
	}
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Import.HistorySize = 2
	svc := core.NewService(cfg)

	if len(svc.History()) != 0 {
		t.Fatal("history should start empty")
	}

	svc.Import(ctx, core.ImportRequest{FileName: "fall.csv", Data: []byte(fallCSV)})
	svc.Import(ctx, core.ImportRequest{FileName: "notes.txt", Data: []byte("x")})
	svc.Import(ctx, core.ImportRequest{FileName: "spring.csv", Data: []byte(springCSV), Additive: true})

	history := svc.History()
	if len(history) != 2 {
		t.Fatalf("History() has %d entries, want 2", len(history))
	}

	// Newest first; the oldest import was dropped.
	if history[0].FileName != "spring.csv" || history[0].ErrorCode != "" || history[0].Sections != 5 {
		t.Errorf("history[0] = %+v", history[0])
	}
	if history[1].FileName != "notes.txt" || history[1].ErrorCode != "FILE006" {
		t.Errorf("history[1] = %+v", history[1])
	}
	if history[0].StartedAt.IsZero() {
		t.Error("StartedAt not set")
	}

	// Returned slices are copies.
	history[0].FileName = "changed"
	if svc.History()[0].FileName != "spring.csv" {
		t.Error("History() exposed internal storage")
	}
}

func TestHistory_Disabled(t *testing.T) {
	svc := core.NewService(testConfig())
	svc.Import(context.Background(), core.ImportRequest{FileName: "fall.csv", Data: []byte(fallCSV)})

	if got := svc.History(); len(got) != 0 {
		t.Errorf("History() = %v, want empty when size is 0", got)
	}
}

type pruningStore struct {
	memStore

	mu    sync.Mutex
	keeps []int
	err   error
	calls chan struct{}
}

func (p *pruningStore) Prune(_ context.Context, keep int) (int64, error) {
	p.mu.Lock()
	p.keeps = append(p.keeps, keep)
	p.mu.Unlock()
	select {
	case p.calls <- struct{}{}:
	default:
	}
	return 3, p.err
}

func TestStartSnapshotPruner(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "prunes periodically"},
		{name: "keeps running after failures", err: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &pruningStore{calls: make(chan struct{}, 1), err: tt.err}
			svc := core.NewService(testConfig(), core.WithStore(st))

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan struct{})
			go func() {
				svc.StartSnapshotPruner(ctx, core.PruneConfig{Keep: 7, Interval: 5 * time.Millisecond})
				close(done)
			}()

			for i := 0; i < 2; i++ {
				select {
				case <-st.calls:
				case <-time.After(2 * time.Second):
					t.Fatalf("prune run %d did not happen", i+1)
				}
			}

			cancel()
			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("pruner did not stop after cancel")
			}

			st.mu.Lock()
			defer st.mu.Unlock()
			for _, keep := range st.keeps {
				if keep != 7 {
					t.Errorf("Prune called with keep = %d, want 7", keep)
				}
			}
		})
	}
}

func TestStartSnapshotPruner_Disabled(t *testing.T) {
	tests := []struct {
		name string
		opts []core.Option
		keep int
	}{
		{name: "no store", keep: 5},
		{name: "store cannot prune", opts: []core.Option{core.WithStore(&memStore{})}, keep: 5},
		{name: "keep all", opts: []core.Option{core.WithStore(&pruningStore{calls: make(chan struct{}, 1)})}, keep: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := core.NewService(testConfig(), tt.opts...)

			done := make(chan struct{})
			go func() {
				svc.StartSnapshotPruner(context.Background(), core.PruneConfig{Keep: tt.keep, Interval: time.Millisecond})
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("StartSnapshotPruner should return immediately")
			}
		})
	}
}
