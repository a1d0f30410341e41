package session

import (
	"sync"
	"testing"
)

func TestAwaitingOrderNumber(t *testing.T) {
	s := NewStore()

	if s.AwaitingOrderNumber(10) {
		t.Error("fresh store must report false")
	}

	s.SetAwaitingOrderNumber(10, true)
	if !s.AwaitingOrderNumber(10) {
		t.Error("flag not set")
	}
	if s.AwaitingOrderNumber(11) {
		t.Error("flag leaked to another user")
	}

	s.SetAwaitingOrderNumber(10, false)
	if s.AwaitingOrderNumber(10) {
		t.Error("flag not cleared")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			s.SetAwaitingOrderNumber(id, true)
			s.AwaitingOrderNumber(id)
			s.SetAwaitingOrderNumber(id, false)
		}(int64(i % 5))
	}
	wg.Wait()
}
