// Package progress defines the display-sink contract and the single ordered
// delivery queue that carries worker events to it.
//
// Workers never call a sink directly. They hand events to a Dispatcher, whose
// one consumer goroutine drains a FIFO queue and invokes the sink. Because
// each worker enqueues sequentially, per-worker order is preserved; events of
// different workers interleave in arrival order. The Dispatcher is fenced by
// generation: once Begin has switched to a new generation, events from any
// older generation are discarded instead of delivered.
package progress
