// Package worker ports the Worker Runtime (spec.md §2): a reentrant
// processing loop with pre/post hooks around start/stop/play/pause,
// liveness ping/pong, and optional loop-duration benchmarking. Grounded
// on original_source/common/runnable.py, translated from an OS thread
// plus Python's reentrant lock into a goroutine driven by a command
// channel — the message-passing alternative to reentrant locking
// spec.md's Design Notes call for.
package worker

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const maxBenchSamples = 30

// Hooks are the lifecycle callbacks a concrete worker (a Strategy
// Trader, a market data subscriber, ...) supplies. Update runs once per
// loop iteration while playing; the others bracket the whole run and
// each iteration.
type Hooks interface {
	PreRun() error
	PostRun() error
	PreUpdate()
	Update() error
	PostUpdate()
}

// Worker runs Hooks.Update in a loop on its own goroutine, exactly like
// Runnable.run: pre_run once, then pre_update/update/post_update every
// iteration while playing (idle-sleeping 100ms while paused), then
// post_run once the loop exits. An Update error is logged and the loop
// restarts rather than terminating the worker, matching the original's
// "don't waste with try/catch, do it only at last level" comment; a
// PreRun error aborts the worker before the loop ever starts.
type Worker struct {
	name  string
	hooks Hooks

	mu      sync.Mutex // the reentrant-lock analogue; Lock/Unlock below
	running bool
	playing bool
	bench   bool

	err error

	pingCh chan chan string
	stopCh chan struct{}
	doneCh chan struct{}

	lastTimes []time.Duration
	worstTime time.Duration
	avgTime   time.Duration
}

// New builds a Worker with the given name and hooks. bench enables
// loop-duration sampling (Runnable.DEFAULT_USE_BENCH is false upstream;
// callers opt in explicitly).
func New(name string, hooks Hooks, bench bool) *Worker {
	return &Worker{
		name:   name,
		hooks:  hooks,
		bench:  bench,
		pingCh: make(chan chan string),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Name returns the worker's identifier.
func (w *Worker) Name() string { return w.name }

// Running reports whether the worker's goroutine is alive.
func (w *Worker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Playing reports whether the loop is actively calling Update (as
// opposed to idling while paused).
func (w *Worker) Playing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.playing
}

// Err returns the last error that aborted PreRun, if any.
func (w *Worker) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Start launches the worker's goroutine. Returns false if already
// running.
func (w *Worker) Start() bool {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return false
	}
	w.running = true
	w.playing = true
	w.mu.Unlock()

	go w.run()
	return true
}

// Play resumes Update calls after a Pause.
func (w *Worker) Play() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		w.playing = true
	}
}

// Pause suspends Update calls without stopping the goroutine.
func (w *Worker) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		w.playing = false
	}
}

// Stop signals the loop to exit and blocks until PostRun has run.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
}

// Lock acquires the worker's mutex. Hooks that touch shared state (the
// active trade list, indicator snapshots) take this around their
// critical section, the same role Runnable.lock()/unlock() play around
// the Python strategy trader's process().
func (w *Worker) Lock() { w.mu.Lock() }

// Unlock releases the worker's mutex.
func (w *Worker) Unlock() { w.mu.Unlock() }

// Ping requests a liveness pong. Safe to call from any goroutine; the
// response is delivered asynchronously to resultCh once the current (or
// next) loop iteration completes.
func (w *Worker) Ping() <-chan string {
	resultCh := make(chan string, 1)
	select {
	case w.pingCh <- resultCh:
	case <-w.doneCh:
		resultCh <- fmt.Sprintf("worker %s is not running", w.name)
	}
	return resultCh
}

func (w *Worker) run() {
	defer close(w.doneCh)

	if err := w.hooks.PreRun(); err != nil {
		w.mu.Lock()
		w.err = err
		w.running = false
		w.mu.Unlock()
		return
	}

	w.loop()

	if err := w.hooks.PostRun(); err != nil {
		w.mu.Lock()
		w.err = err
		w.mu.Unlock()
	}

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

func (w *Worker) loop() {
	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		if w.Playing() {
			w.processOnce()
		} else {
			time.Sleep(100 * time.Millisecond)
		}

		select {
		case respCh := <-w.pingCh:
			respCh <- w.pong()
		default:
		}
	}
}

func (w *Worker) processOnce() {
	if !w.bench {
		w.hooks.PreUpdate()
		if err := w.hooks.Update(); err != nil {
			log.Error().Err(err).Str("worker", w.name).Msg("update failed, loop continues")
			w.hooks.PostUpdate()
			return
		}
		w.hooks.PostUpdate()
		return
	}

	begin := time.Now()
	w.hooks.PreUpdate()
	if err := w.hooks.Update(); err != nil {
		log.Error().Err(err).Str("worker", w.name).Msg("update failed, loop continues")
	}
	w.hooks.PostUpdate()
	elapsed := time.Since(begin)

	w.mu.Lock()
	w.lastTimes = append(w.lastTimes, elapsed)
	if elapsed > w.worstTime {
		w.worstTime = elapsed
	}
	var sum time.Duration
	for _, d := range w.lastTimes {
		sum += d
	}
	w.avgTime = sum / time.Duration(len(w.lastTimes))
	if len(w.lastTimes) > maxBenchSamples {
		w.lastTimes = w.lastTimes[1:]
	}
	w.mu.Unlock()
}

// pong formats the liveness message: plain when bench sampling is off,
// or the "Last loop X ms / worst loop Y ms / avg loop Z ms" format when
// it's on.
func (w *Worker) pong() string {
	if !w.bench {
		return fmt.Sprintf("worker %s is alive", w.name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.lastTimes) == 0 {
		return fmt.Sprintf("worker %s is alive (no samples yet)", w.name)
	}
	last := w.lastTimes[len(w.lastTimes)-1]
	return fmt.Sprintf("Last loop %.3fms / worst loop %.3fms / avg loop %.3fms",
		float64(last.Microseconds())/1000.0,
		float64(w.worstTime.Microseconds())/1000.0,
		float64(w.avgTime.Microseconds())/1000.0)
}
