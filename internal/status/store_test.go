package status

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/asritha26k/BankingTermDepositPrediction/internal/redisx"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := NewStore(redisx.New("redis://"+mr.Addr()), 0)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestGet_UnknownTask(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "never-submitted")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	url := "/results/results_t1_input.csv"
	rec := &Record{
		TaskID:             "t1",
		Status:             StateSuccess,
		Message:            "Batch prediction completed successfully.",
		ResultsDownloadURL: &url,
	}
	if err := store.Set(ctx, rec); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StateSuccess {
		t.Errorf("expected SUCCESS, got %s", got.Status)
	}
	if got.ResultsDownloadURL == nil || *got.ResultsDownloadURL != url {
		t.Errorf("expected download url %s, got %v", url, got.ResultsDownloadURL)
	}
}

func TestGet_MalformedRecord(t *testing.T) {
	store, mr := newTestStore(t)

	mr.Set(Key("t1"), "not json{")

	_, err := store.Get(context.Background(), "t1")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestSet_TerminalIsFinal(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, &Record{TaskID: "t1", Status: StateSuccess, Message: "done"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	err := store.Set(ctx, &Record{TaskID: "t1", Status: StateProgress, Message: "late write"})
	if !errors.Is(err, ErrTerminal) {
		t.Errorf("expected ErrTerminal, got %v", err)
	}

	got, err := store.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StateSuccess {
		t.Errorf("terminal state was overwritten: %s", got.Status)
	}
}

// Random permutations of writes must never move a record out of a
// terminal state.
func TestSet_MonotonicUnderPermutations(t *testing.T) {
	states := []State{StateProgress, StateProgress, StateSuccess, StateFailure}
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 50; trial++ {
		store, _ := newTestStore(t)
		ctx := context.Background()

		perm := rng.Perm(len(states))
		var firstTerminal State
		for _, i := range perm {
			s := states[i]
			err := store.Set(ctx, &Record{TaskID: "t", Status: s, Message: string(s)})
			if firstTerminal != "" && !errors.Is(err, ErrTerminal) {
				t.Fatalf("trial %d: write of %s after terminal %s not refused", trial, s, firstTerminal)
			}
			if firstTerminal == "" && s.Terminal() {
				firstTerminal = s
			}
		}

		got, err := store.Get(ctx, "t")
		if err != nil {
			t.Fatalf("trial %d: Get: %v", trial, err)
		}
		if got.Status != firstTerminal {
			t.Errorf("trial %d: expected %s to stick, got %s", trial, firstTerminal, got.Status)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StatePending, false},
		{StateProgress, false},
		{StateSuccess, true},
		{StateFailure, true},
		{StateUnknown, false},
	}
	for _, tt := range tests {
		if got := tt.state.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestSet_WithTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewStore(redisx.New("redis://"+mr.Addr()), time.Minute)
	defer store.Close()

	if err := store.Set(context.Background(), &Record{TaskID: "t1", Status: StateProgress}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if mr.TTL(Key("t1")) == 0 {
		t.Error("expected a TTL on the status key")
	}
}
