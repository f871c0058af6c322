package refresh

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// --- モック定義 ---

// mockStaleLister はStaleListerのテスト用モック。
type mockStaleLister struct {
	listStaleFunc func(ctx context.Context, olderThan time.Time, limit int) ([]string, error)
}

func (m *mockStaleLister) ListStale(ctx context.Context, olderThan time.Time, limit int) ([]string, error) {
	if m.listStaleFunc != nil {
		return m.listStaleFunc(ctx, olderThan, limit)
	}
	return nil, nil
}

// mockRefresher はCollectionRefresherのテスト用モック。
type mockRefresher struct {
	refreshFunc func(ctx context.Context, username string) error
}

func (m *mockRefresher) Refresh(ctx context.Context, username string) error {
	if m.refreshFunc != nil {
		return m.refreshFunc(ctx, username)
	}
	return nil
}

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

func TestNewScheduler_DefaultConcurrency(t *testing.T) {
	var buf bytes.Buffer
	s := NewScheduler(&mockStaleLister{}, &mockRefresher{}, newTestLogger(&buf), time.Hour, 0, 0)

	if s.maxConcurrency != 4 {
		t.Errorf("maxConcurrency = %d, want 4", s.maxConcurrency)
	}
	if s.batchSize != 50 {
		t.Errorf("batchSize = %d, want 50", s.batchSize)
	}
}

func TestScheduler_RunOnce_RefreshesAllStale(t *testing.T) {
	var buf bytes.Buffer
	lister := &mockStaleLister{
		listStaleFunc: func(ctx context.Context, olderThan time.Time, limit int) ([]string, error) {
			return []string{"alice", "bob", "carol"}, nil
		},
	}

	var mu sync.Mutex
	refreshed := make(map[string]bool)
	refresher := &mockRefresher{
		refreshFunc: func(ctx context.Context, username string) error {
			mu.Lock()
			defer mu.Unlock()
			refreshed[username] = true
			return nil
		},
	}

	s := NewScheduler(lister, refresher, newTestLogger(&buf), time.Hour, 50, 4)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() がエラーを返した: %v", err)
	}

	for _, name := range []string{"alice", "bob", "carol"} {
		if !refreshed[name] {
			t.Errorf("%s が再取得されていない", name)
		}
	}
}

func TestScheduler_RunOnce_PassesStaleWindow(t *testing.T) {
	var buf bytes.Buffer
	staleAfter := 12 * time.Hour

	var gotOlderThan time.Time
	var gotLimit int
	lister := &mockStaleLister{
		listStaleFunc: func(ctx context.Context, olderThan time.Time, limit int) ([]string, error) {
			gotOlderThan = olderThan
			gotLimit = limit
			return nil, nil
		},
	}

	s := NewScheduler(lister, &mockRefresher{}, newTestLogger(&buf), staleAfter, 25, 4)
	before := time.Now()
	_ = s.RunOnce(context.Background())

	wantAround := before.Add(-staleAfter)
	if gotOlderThan.Before(wantAround.Add(-time.Second)) || gotOlderThan.After(wantAround.Add(time.Second)) {
		t.Errorf("olderThan = %v, want およそ %v", gotOlderThan, wantAround)
	}
	if gotLimit != 25 {
		t.Errorf("limit = %d, want 25", gotLimit)
	}
}

func TestScheduler_RunOnce_LimitsConcurrency(t *testing.T) {
	var buf bytes.Buffer
	usernames := make([]string, 20)
	for i := range usernames {
		usernames[i] = "user" + string(rune('a'+i))
	}
	lister := &mockStaleLister{
		listStaleFunc: func(ctx context.Context, olderThan time.Time, limit int) ([]string, error) {
			return usernames, nil
		},
	}

	var current, peak atomic.Int32
	refresher := &mockRefresher{
		refreshFunc: func(ctx context.Context, username string) error {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			current.Add(-1)
			return nil
		},
	}

	s := NewScheduler(lister, refresher, newTestLogger(&buf), time.Hour, 50, 3)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() がエラーを返した: %v", err)
	}

	if p := peak.Load(); p > 3 {
		t.Errorf("同時実行数のピーク = %d, want <= 3", p)
	}
}

func TestScheduler_RunOnce_ContinuesOnRefreshError(t *testing.T) {
	var buf bytes.Buffer
	lister := &mockStaleLister{
		listStaleFunc: func(ctx context.Context, olderThan time.Time, limit int) ([]string, error) {
			return []string{"alice", "bob"}, nil
		},
	}

	var succeeded atomic.Int32
	refresher := &mockRefresher{
		refreshFunc: func(ctx context.Context, username string) error {
			if username == "alice" {
				return errors.New("catalog timeout")
			}
			succeeded.Add(1)
			return nil
		},
	}

	s := NewScheduler(lister, refresher, newTestLogger(&buf), time.Hour, 50, 2)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("個別の失敗でRunOnce()はエラーを返さないべき: %v", err)
	}

	if succeeded.Load() != 1 {
		t.Errorf("失敗したユーザー以外は処理されるべき: succeeded = %d", succeeded.Load())
	}
	if !strings.Contains(buf.String(), "catalog timeout") {
		t.Errorf("失敗がログに記録されるべき。ログ出力: %s", buf.String())
	}
}

func TestScheduler_RunOnce_ReturnsErrorOnListFailure(t *testing.T) {
	var buf bytes.Buffer
	lister := &mockStaleLister{
		listStaleFunc: func(ctx context.Context, olderThan time.Time, limit int) ([]string, error) {
			return nil, errors.New("db unavailable")
		},
	}

	s := NewScheduler(lister, &mockRefresher{}, newTestLogger(&buf), time.Hour, 50, 4)
	if err := s.RunOnce(context.Background()); err == nil {
		t.Fatal("一覧取得の失敗はRunOnce()のエラーとして返すべき")
	}
}

func TestScheduler_RunOnce_NoStaleCollections(t *testing.T) {
	var buf bytes.Buffer
	called := false
	refresher := &mockRefresher{
		refreshFunc: func(ctx context.Context, username string) error {
			called = true
			return nil
		},
	}

	s := NewScheduler(&mockStaleLister{}, refresher, newTestLogger(&buf), time.Hour, 50, 4)
	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce() がエラーを返した: %v", err)
	}
	if called {
		t.Error("対象がない場合はRefreshを呼ばないべき")
	}
}

func TestScheduler_Start_StopsOnContextCancel(t *testing.T) {
	var buf bytes.Buffer
	s := NewScheduler(&mockStaleLister{}, &mockRefresher{}, newTestLogger(&buf), time.Hour, 50, 4)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx, time.Hour)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("コンテキストキャンセル後にStartが停止しない")
	}
}

func TestRefresherFunc_Adapts(t *testing.T) {
	called := false
	var r CollectionRefresher = RefresherFunc(func(ctx context.Context, username string) error {
		called = true
		return nil
	})

	if err := r.Refresh(context.Background(), "alice"); err != nil {
		t.Fatalf("Refresh() がエラーを返した: %v", err)
	}
	if !called {
		t.Error("ラップした関数が呼ばれるべき")
	}
}
