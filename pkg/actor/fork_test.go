package actor

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForkDuplicatesToEveryOutput(t *testing.T) {
	in := make(chan int)
	fork := NewFork[int]("Fork", in, 3)

	go func() {
		defer close(in)
		in <- 1
		in <- 2
	}()

	var got [3][]int
	done := make(chan error, 1)
	go func() { done <- fork.Run(context.Background()) }()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for v := range fork.Output(i) {
				got[i] = append(got[i], v)
			}
		}(i)
	}
	wg.Wait()
	require.NoError(t, <-done)
	for i := 0; i < 3; i++ {
		require.Equal(t, []int{1, 2}, got[i])
	}
}

func TestMergeCombinesAllInputs(t *testing.T) {
	a := make(chan int)
	b := make(chan int)
	merge := NewMerge[int]("Merge", a, b)

	go func() {
		defer close(a)
		a <- 1
		a <- 2
	}()
	go func() {
		defer close(b)
		b <- 3
	}()

	done := make(chan error, 1)
	go func() { done <- merge.Run(context.Background()) }()

	var got []int
	for v := range merge.OutputChan() {
		got = append(got, v)
	}
	require.NoError(t, <-done)
	sort.Ints(got)
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestMultiplexRoutesByIndex(t *testing.T) {
	in := make(chan int)
	mux := NewMultiplex[int]("Mux", []<-chan int{in}, func(v int) int {
		return v % 2
	}, 2)

	go func() {
		defer close(in)
		for i := 0; i < 6; i++ {
			in <- i
		}
	}()

	done := make(chan error, 1)
	go func() { done <- mux.Run(context.Background()) }()

	var evens, odds []int
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for v := range mux.Output(0) {
			evens = append(evens, v)
		}
	}()
	for v := range mux.Output(1) {
		odds = append(odds, v)
	}
	<-finished

	require.NoError(t, <-done)
	sort.Ints(evens)
	sort.Ints(odds)
	require.Equal(t, []int{0, 2, 4}, evens)
	require.Equal(t, []int{1, 3, 5}, odds)
}
