package quiz

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyMutex_SerializesPerKey(t *testing.T) {
	m := newKeyMutex()

	const n = 100
	var alice, bob int

	var wg sync.WaitGroup
	for _, w := range []struct {
		key     string
		counter *int
	}{
		{key: "alice", counter: &alice},
		{key: "bob", counter: &bob},
	} {
		w := w
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := m.Lock(w.key)
				defer unlock()
				*w.counter++
			}()
		}
	}
	wg.Wait()

	assert.Equal(t, n, alice)
	assert.Equal(t, n, bob)
}
