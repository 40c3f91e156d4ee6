package types

// AsyncError runs fn on a new goroutine and delivers its error on the
// returned channel, which is closed afterwards.
func AsyncError(fn func() error) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		errCh <- fn()
	}()
	return errCh
}

// AsyncGet runs get on a new goroutine and delivers its result on the
// returned channel, which is closed afterwards.
func AsyncGet[V any](get func() (Entry[V], bool, error)) <-chan AsyncGetResult[V] {
	resultCh := make(chan AsyncGetResult[V], 1)
	go func() {
		defer close(resultCh)
		entry, found, err := get()
		resultCh <- AsyncGetResult[V]{
			Entry: entry,
			Found: found,
			Error: err,
		}
	}()
	return resultCh
}
