package actor

import (
	"context"
	"log/slog"
)

// Fork duplicates every element received on Input onto every channel in
// Outputs (a 1→N fan-out by duplication). It generalizes the teacher's
// MultiChan, which only ever had two hardcoded outputs.
type Fork[T any] struct {
	Name    string
	Input   <-chan T
	Outputs []chan T
}

// NewFork builds a Fork with n freshly allocated, unbuffered output
// channels.
func NewFork[T any](name string, input <-chan T, n int) (fork Fork[T]) {
	fork.Name = name
	fork.Input = input
	fork.Outputs = make([]chan T, n)
	for i := range fork.Outputs {
		fork.Outputs[i] = make(chan T)
	}
	return
}

func (fork *Fork[T]) Output(i int) <-chan T {
	return fork.Outputs[i]
}

func (fork *Fork[T]) Run(ctx context.Context) error {
	defer slog.Debug("closing actor", "name", fork.Name)
	defer func() {
		for _, out := range fork.Outputs {
			close(out)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case elt, chanOpen := <-fork.Input:
			if !chanOpen {
				return nil
			}
			for _, out := range fork.Outputs {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case out <- elt:
				}
			}
		}
	}
}
