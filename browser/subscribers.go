package browser

import "sync"

// subscribers fans page events out to registered callbacks.
// Callbacks run on the event goroutine and must not block.
type subscribers struct {
	mu     sync.RWMutex
	next   int
	cons   map[int]func(ConsoleMessage)
	errs   map[int]func(PageError)
	failed map[int]func(RequestFailure)
}

func newSubscribers() *subscribers {
	return &subscribers{
		cons:   map[int]func(ConsoleMessage){},
		errs:   map[int]func(PageError){},
		failed: map[int]func(RequestFailure){},
	}
}

func (s *subscribers) addConsole(fn func(ConsoleMessage)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.cons[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.cons, id)
		s.mu.Unlock()
	}
}

func (s *subscribers) addPageError(fn func(PageError)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.errs[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.errs, id)
		s.mu.Unlock()
	}
}

func (s *subscribers) addRequestFailed(fn func(RequestFailure)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.failed[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.failed, id)
		s.mu.Unlock()
	}
}

func (s *subscribers) console(m ConsoleMessage) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.cons {
		fn(m)
	}
}

func (s *subscribers) pageError(e PageError) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.errs {
		fn(e)
	}
}

func (s *subscribers) requestFailed(f RequestFailure) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.failed {
		fn(f)
	}
}

// count reports the number of live subscriptions.
func (s *subscribers) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cons) + len(s.errs) + len(s.failed)
}
