// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package navigation

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrLoopStopped is returned by Do once the loop has exited.
var ErrLoopStopped = errors.New("navigation loop stopped")

// Executor runs callbacks on the navigation context. Everything in this
// package (sessions, trackers, controller) assumes it is only touched from
// functions run by one Executor.
type Executor interface {
	Post(fn func())
}

// Inline runs every function immediately on the caller's goroutine. Use it
// when the caller is already serialized (tests, single-threaded tools).
type Inline struct{}

// Post runs fn.
func (Inline) Post(fn func()) { fn() }

// Loop is a channel-backed Executor: sensor goroutines Post, a single
// goroutine running Run consumes in FIFO order.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop with the given queue capacity.
func NewLoop(capacity int) *Loop {
	if capacity <= 0 {
		capacity = 64
	}
	return &Loop{
		tasks: make(chan func(), capacity),
		done:  make(chan struct{}),
	}
}

// Post queues fn. It blocks while the queue is full and drops fn once the
// loop has exited.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		log.Debug().Msg("navigation: loop stopped, dropping task")
		return
	default:
	}
	select {
	case l.tasks <- fn:
	case <-l.done:
	}
}

// Do runs fn on the loop and waits for it to finish. Must not be called from
// inside the loop.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	ran := make(chan struct{})
	select {
	case l.tasks <- func() { fn(); close(ran) }:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-ran:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run consumes queued functions until ctx is done. Pending functions are
// discarded on exit.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
		}
	}
}

// Done is closed when Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}
