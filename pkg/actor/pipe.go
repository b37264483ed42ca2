package actor

import "context"

// Pipe transforms a Pipeline<I> into a Pipeline<O> by applying f to each
// element. It is the named identity of spec.md §4.1's `pipe` primitive; it
// is implemented directly in terms of Map, which already has the right
// shape (one input channel, one output channel, context-cancellable).
func Pipe[I, O any](
	name string,
	concurrency int,
	input <-chan I,
	f func(context.Context, I) (O, error),
) Map[I, O] {
	return NewMap(name, concurrency, input, f)
}
