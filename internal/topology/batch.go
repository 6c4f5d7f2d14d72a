package topology

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/multierr"
)

// Failure is one item of a batch that did not complete.
type Failure struct {
	Item   string `json:"item"`
	Reason string `json:"error"`
	Err    error  `json:"-"`
}

// Batch is the outcome of a fan-out of independent remote calls. A batch
// always completes; per-item errors land in Failed instead of aborting
// sibling calls.
type Batch[T any] struct {
	Succeeded []T       `json:"succeeded"`
	Failed    []Failure `json:"failed"`
}

// Err combines every per-item error, or returns nil when all items succeeded.
func (b Batch[T]) Err() error {
	var err error
	for _, f := range b.Failed {
		e := f.Err
		if e == nil {
			e = errors.New(f.Reason)
		}
		err = multierr.Append(err, e)
	}
	return err
}

func (b *Batch[T]) fail(item string, err error) {
	b.Failed = append(b.Failed, Failure{Item: item, Reason: err.Error(), Err: err})
}

// fanOut runs fn for every item concurrently and waits for all of them.
// Successful results keep the order of items.
func fanOut[In, Out any](ctx context.Context, items []In, name func(In) string, fn func(context.Context, In) (Out, error)) Batch[Out] {
	type outcome struct {
		val Out
		err error
	}

	outcomes := make([]outcome, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := fn(ctx, item)
			outcomes[i] = outcome{val: v, err: err}
		}()
	}
	wg.Wait()

	b := Batch[Out]{Succeeded: make([]Out, 0, len(items)), Failed: []Failure{}}
	for i, o := range outcomes {
		if o.err != nil {
			b.fail(name(items[i]), o.err)
			continue
		}
		b.Succeeded = append(b.Succeeded, o.val)
	}
	return b
}
