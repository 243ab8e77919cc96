package trace

import (
	"sync"
	"testing"
)

func TestClock_Sequence(t *testing.T) {
	c := NewClock()
	if got := c.Current(); got != 0 {
		t.Errorf("Current() = %d before first Next, want 0", got)
	}
	for want := int64(1); want <= 5; want++ {
		if got := c.Next(); got != want {
			t.Errorf("Next() = %d, want %d", got, want)
		}
	}
	if got := c.Current(); got != 5 {
		t.Errorf("Current() = %d, want 5", got)
	}

	c.Reset()
	if got := c.Next(); got != 1 {
		t.Errorf("Next() after Reset = %d, want 1", got)
	}
}

func TestClock_ConcurrentNext(t *testing.T) {
	c := NewClock()
	const goroutines = 8
	const perGoroutine = 100

	var wg sync.WaitGroup
	seen := make([]map[int64]bool, goroutines)
	for g := 0; g < goroutines; g++ {
		seen[g] = make(map[int64]bool, perGoroutine)
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				seen[g][c.Next()] = true
			}
		}(g)
	}
	wg.Wait()

	all := make(map[int64]bool)
	for _, m := range seen {
		for seq := range m {
			if all[seq] {
				t.Fatalf("sequence %d issued twice", seq)
			}
			all[seq] = true
		}
	}
	if len(all) != goroutines*perGoroutine {
		t.Errorf("issued %d unique sequences, want %d", len(all), goroutines*perGoroutine)
	}
}