package intake

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T, backend *fakeBackend) *Registry {
	t.Helper()
	r := NewRegistry(context.Background(), testBank(t), backend, time.Minute, WithPollInterval(testInterval))
	t.Cleanup(r.Close)
	return r
}

func TestRegistry_GetOrCreate(t *testing.T) {
	r := newTestRegistry(t, &fakeBackend{})

	first, created := r.GetOrCreate("visitor-1")
	require.True(t, created)

	again, created := r.GetOrCreate("visitor-1")
	assert.False(t, created)
	assert.Same(t, first, again)

	other, _ := r.GetOrCreate("visitor-2")
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, r.Len())

	_, ok := r.Get("missing")
	assert.False(t, ok)
}

func TestRegistry_SweepEvictsIdleWorkflows(t *testing.T) {
	backend := &fakeBackend{submitID: 1}
	r := newTestRegistry(t, backend)

	idle, _ := r.GetOrCreate("idle")
	fillValid(t, idle)
	require.NoError(t, idle.Submit(context.Background()))
	require.True(t, idle.Snapshot().Polling)

	watched, _ := r.GetOrCreate("watched")
	stop := watched.Watch(func(Snapshot) {})
	defer stop()

	fresh, _ := r.GetOrCreate("fresh")
	_ = fresh

	// Act: "сейчас" сдвинуто так, что только что созданные анкеты считаются старыми
	evicted := r.Sweep(time.Now().Add(2 * time.Minute))

	// Assert
	assert.Equal(t, 2, evicted)
	assert.Equal(t, 1, r.Len())
	_, ok := r.Get("watched")
	assert.True(t, ok, "Анкета с открытым просмотром не удаляется")

	assert.False(t, idle.Snapshot().Polling, "У удаленной анкеты опрос остановлен")
	calls := backend.statusCall.Load()
	time.Sleep(5 * testInterval)
	assert.Equal(t, calls, backend.statusCall.Load())
}

func TestRegistry_SweepKeepsActive(t *testing.T) {
	r := newTestRegistry(t, &fakeBackend{})
	r.GetOrCreate("a")

	assert.Zero(t, r.Sweep(time.Now()))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RemoveAndClose(t *testing.T) {
	r := newTestRegistry(t, &fakeBackend{submitID: 2})
	w, _ := r.GetOrCreate("a")
	fillValid(t, w)
	require.NoError(t, w.Submit(context.Background()))

	r.Remove("a")
	assert.Zero(t, r.Len())
	assert.False(t, w.Snapshot().Polling)

	r.GetOrCreate("b")
	r.Close()
	assert.Zero(t, r.Len())
}

func TestRegistry_RunStopsWithContext(t *testing.T) {
	r := newTestRegistry(t, &fakeBackend{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run не завершился после отмены контекста")
	}
}

func TestRegistry_GetOrCreateRefreshesActivity(t *testing.T) {
	r := newTestRegistry(t, &fakeBackend{})
	w, _ := r.GetOrCreate("a")
	w.mu.Lock()
	w.lastActive = time.Now().Add(-time.Hour)
	w.mu.Unlock()

	again, created := r.GetOrCreate("a")

	require.False(t, created)
	assert.Same(t, w, again)
	assert.Zero(t, r.Sweep(time.Now()), "Только что выданная анкета не удаляется")
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_SweepStopsUnwatchedPolling(t *testing.T) {
	backend := &fakeBackend{submitID: 3}
	r := NewRegistry(context.Background(), testBank(t), backend, time.Hour, WithPollInterval(testInterval))
	t.Cleanup(r.Close)
	r.SetUnwatchedPollTimeout(time.Minute)

	unwatched, _ := r.GetOrCreate("unwatched")
	fillValid(t, unwatched)
	require.NoError(t, unwatched.Submit(context.Background()))

	watched, _ := r.GetOrCreate("watched")
	fillValid(t, watched)
	require.NoError(t, watched.Submit(context.Background()))
	stop := watched.Watch(func(Snapshot) {})
	defer stop()

	// Act
	evicted := r.Sweep(time.Now().Add(2 * time.Minute))

	// Assert: анкета остается, но опрос без просмотра остановлен
	assert.Zero(t, evicted)
	assert.Equal(t, 2, r.Len())
	assert.False(t, unwatched.IsPolling())
	assert.True(t, watched.IsPolling(), "Опрос с открытым просмотром продолжается")

	unwatched.Activate()
	assert.True(t, unwatched.IsPolling(), "Следующий просмотр возобновляет опрос")
}
