package actor

import "context"

// Merge combines N input channels into a single output channel. Ordering
// across the inputs is not guaranteed (spec: "merge may reorder"); each
// input's own internal order is preserved because a single goroutine drains
// each input in sequence.
type Merge[T any] struct {
	Name   string
	Inputs []<-chan T
	Output chan T
}

// NewMerge builds a Merge actor over the given input channels.
func NewMerge[T any](name string, inputs ...<-chan T) (merge Merge[T]) {
	merge.Name = name
	merge.Inputs = inputs
	merge.Output = make(chan T)
	return
}

func (merge *Merge[T]) OutputChan() <-chan T {
	return merge.Output
}

func (merge *Merge[T]) Run(ctx context.Context) error {
	defer close(merge.Output)

	workers := make(Multi, len(merge.Inputs))
	for i := range merge.Inputs {
		in := merge.Inputs[i]
		input := &Input[T]{Input: in}
		input.Name = merge.Name
		input.Concurrency = 1
		input.Callback = func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case elt, ok := <-in:
				if !ok {
					return ErrStop
				}
				select {
				case <-ctx.Done():
					return ctx.Err()
				case merge.Output <- elt:
					return nil
				}
			}
		}
		workers[i] = input
	}
	return workers.Run(ctx)
}
