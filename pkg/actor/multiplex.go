package actor

import "context"

// Multiplex rearranges N input channels into M output channels according to
// a routing function. It generalizes Fork (1→N duplication) and Merge (N→1)
// into the N→M primitive spec.md §4.1 calls `multiplex`.
type Multiplex[T any] struct {
	Name    string
	Inputs  []<-chan T
	Route   func(T) int
	Outputs []chan T
}

// NewMultiplex builds a Multiplex actor with `outs` freshly allocated,
// unbuffered output channels. `route` maps an element to the index of the
// output channel it should be sent on; an out-of-range index drops the
// element (used by stages that only care about a subset of routes).
func NewMultiplex[T any](
	name string,
	inputs []<-chan T,
	route func(T) int,
	outs int,
) (mux Multiplex[T]) {
	mux.Name = name
	mux.Inputs = inputs
	mux.Route = route
	mux.Outputs = make([]chan T, outs)
	for i := range mux.Outputs {
		mux.Outputs[i] = make(chan T)
	}
	return
}

func (mux *Multiplex[T]) Output(i int) <-chan T {
	return mux.Outputs[i]
}

func (mux *Multiplex[T]) Run(ctx context.Context) error {
	defer func() {
		for _, out := range mux.Outputs {
			close(out)
		}
	}()

	workers := make(Multi, len(mux.Inputs))
	for i := range mux.Inputs {
		in := mux.Inputs[i]
		input := &Input[T]{Input: in}
		input.Name = mux.Name
		input.Concurrency = 1
		input.Callback = func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case elt, ok := <-in:
				if !ok {
					return ErrStop
				}
				idx := mux.Route(elt)
				if idx < 0 || idx >= len(mux.Outputs) {
					return nil
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case mux.Outputs[idx] <- elt:
					return nil
				}
			}
		}
		workers[i] = input
	}
	return workers.Run(ctx)
}
