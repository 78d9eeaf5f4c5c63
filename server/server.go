// Package server runs a Level's tick loop on its own goroutine against a
// real-time clock: a double-buffered operation queue lets other goroutines
// inject commands safely, and an interframe read lock gives renderers a
// tear-free snapshot window.
package server

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/horazont/maniaclab/level"
	channerics "github.com/niceyeti/channerics/channels"
)

// Op is a command enqueued from outside the game thread and applied to the
// level during game_frame, in enqueue order.
type Op func(*level.Level)

// Server owns a Level, a game thread, a terminated flag, and the op queue
// other goroutines use to inject commands onto the game thread.
type Server struct {
	lvl *level.Level

	terminated atomic.Bool
	done       chan struct{}
	doneOnce   sync.Once

	queueMu  sync.Mutex
	opQueue  []Op
	opBuffer []Op

	interframe sync.RWMutex

	logger *slog.Logger
}

// New builds a Server around lvl. Run must be called to start the clock
// thread.
func New(lvl *level.Level, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		lvl:    lvl,
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run paces game_frame at the level's time slice until Stop is called. It
// blocks; callers typically invoke it with `go`.
//
// The ticker is the pacing primitive rather than a hand-rolled
// sleep-until-next-deadline loop: a Go ticker never queues a backlog of
// missed ticks, so a frame that overruns its slice is naturally absorbed
// without an explicit "catch up" branch.
func (s *Server) Run() {
	interval := time.Duration(s.lvl.TimeSlice() * float64(time.Second))
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := channerics.NewTicker(s.done, interval)
	for range channerics.OrDone(s.done, ticker) {
		if s.terminated.Load() {
			return
		}
		s.gameFrame()
	}
}

// Stop signals the clock thread to exit after its current frame.
func (s *Server) Stop() {
	s.terminated.Store(true)
	s.doneOnce.Do(func() { close(s.done) })
}

// gameFrame runs one game_frame: settle the automaton, take the interframe
// write lock, swap in queued ops, step the level (objects only, automaton
// left settled), run the ops, release the lock, and only then resume the
// automaton so it can compute the next frame concurrently. Resume must
// come after the ops run: an op that mutates the grid (PlaceObject,
// RemoveAt, ...) asserts the automaton is settled, and running it while
// the workers are already in flight would fail that assertion.
func (s *Server) gameFrame() {
	s.lvl.Automaton().WaitFor()

	s.interframe.Lock()
	s.queueMu.Lock()
	s.opQueue, s.opBuffer = s.opBuffer, s.opQueue
	ops := s.opBuffer
	s.opBuffer = s.opBuffer[:0]
	s.queueMu.Unlock()

	s.lvl.Step()

	for _, op := range ops {
		op(s.lvl)
	}
	s.interframe.Unlock()
	s.lvl.Automaton().Resume()
}

// EnqueueOp submits op to run during the next game_frame, after that
// frame's Level.Step.
func (s *Server) EnqueueOp(op Op) {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	s.opQueue = append(s.opQueue, op)
}

// SyncSafePoint returns a read-lock guard a renderer holds while snapshotting
// the level; it excludes the mutation phase of a frame without blocking the
// automaton's own concurrent computation of the next frame.
func (s *Server) SyncSafePoint() func() {
	s.interframe.RLock()
	return s.interframe.RUnlock
}

// Level exposes the underlying level for read-only embedding use (renderer,
// input driver) while holding a SyncSafePoint guard.
func (s *Server) Level() *level.Level { return s.lvl }
