package reads

import "sync"

// fanOut applies fn to every item on its own goroutine and collects the
// results in input order. A failed item is reported to onErr and dropped; it
// never fails the batch. fn may also return (nil, nil) to skip an item.
func fanOut[T, R any](items []T, fn func(T) (*R, error), onErr func(T, error)) []*R {
	slots := make([]*R, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			res, err := fn(item)
			if err != nil {
				if onErr != nil {
					onErr(item, err)
				}
				return
			}
			slots[i] = res
		}(i, item)
	}
	wg.Wait()

	out := make([]*R, 0, len(items))
	for _, r := range slots {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
