package resource

import (
	stderrors "errors"
	"strings"
	"sync"
	"testing"

	"github.com/wippyai/disposable"
)

func TestLocalBackend_Basic(t *testing.T) {
	var log []string
	b := NewLocalBackend()

	v := newValue("a", &log)
	handle, err := b.Create(1, v)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if handle == 0 {
		t.Fatal("Expected non-zero handle")
	}

	got, ok := b.Get(handle)
	if !ok || got != v {
		t.Fatalf("Get = %v, %v", got, ok)
	}
	if typeID, ok := b.TypeID(handle); !ok || typeID != 1 {
		t.Fatalf("TypeID = %d, %v", typeID, ok)
	}

	taken, typeID, ok := b.Take(handle)
	if !ok || taken != v || typeID != 1 {
		t.Fatalf("Take = %v, %d, %v", taken, typeID, ok)
	}
	if v.IsDisposed() {
		t.Fatal("Take must not dispose")
	}

	if _, ok := b.Get(handle); ok {
		t.Fatal("Get after Take should fail")
	}
	if _, _, ok := b.Take(handle); ok {
		t.Fatal("second Take should fail")
	}
}

func TestLocalBackend_InvalidHandles(t *testing.T) {
	b := NewLocalBackend()
	for _, h := range []Handle{0, 1, 100} {
		if _, ok := b.Get(h); ok {
			t.Errorf("Get(%d) should fail", h)
		}
		if _, ok := b.TypeID(h); ok {
			t.Errorf("TypeID(%d) should fail", h)
		}
		if _, _, ok := b.Take(h); ok {
			t.Errorf("Take(%d) should fail", h)
		}
	}
}

func TestLocalBackend_HandleReuse(t *testing.T) {
	var log []string
	b := NewLocalBackend()

	h1, _ := b.Create(1, newValue("a", &log))
	b.Take(h1)
	h2, _ := b.Create(1, newValue("b", &log))
	if h2 != h1 {
		t.Fatalf("expected handle reuse: %d != %d", h2, h1)
	}
}

func TestLocalBackend_Remove(t *testing.T) {
	var log []string
	b := NewLocalBackend()

	a := newValue("a", &log)
	h, _ := b.Create(1, a)
	if !b.Remove(h, a) {
		t.Fatal("Remove should succeed for the stored value")
	}
	if b.Remove(h, a) {
		t.Fatal("second Remove should fail")
	}

	// The handle is reused by another value; the stale owner must not take it.
	other := newValue("b", &log)
	if h2, _ := b.Create(1, other); h2 != h {
		t.Fatalf("expected handle reuse: %d != %d", h2, h)
	}
	if b.Remove(h, a) {
		t.Fatal("Remove with a stale value must not take the reused handle")
	}
	if b.Len() != 1 || len(log) != 0 {
		t.Fatalf("Len=%d log=%v, want 1 live value and nothing disposed", b.Len(), log)
	}
}

func TestLocalBackend_Close(t *testing.T) {
	var log []string
	b := NewLocalBackend()

	b.Create(1, newValue("a", &log))
	b.Create(2, newValue("b", &log))
	b.Create(3, newValue("c", &log))

	if err := b.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := strings.Join(log, ","); got != "c,b,a" {
		t.Fatalf("dispose order = %s, want c,b,a", got)
	}
	if b.Len() != 0 {
		t.Fatal("Len should be 0 after Close")
	}

	_, err := b.Create(1, newValue("late", &log))
	if !stderrors.Is(err, ErrClosed) {
		t.Fatalf("Create after Close = %v, want ErrClosed", err)
	}
	if err := b.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if len(log) != 3 {
		t.Fatalf("second Close should not dispose again: %v", log)
	}
}

func TestLocalBackend_Each(t *testing.T) {
	var log []string
	b := NewLocalBackend()
	for _, name := range []string{"a", "b", "c"} {
		b.Create(1, newValue(name, &log))
	}

	count := 0
	b.Each(func(Handle, uint32, disposable.Disposable) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Fatalf("Each should stop early, visited %d", count)
	}
}

func TestLocalBackend_Concurrent(t *testing.T) {
	b := NewLocalBackend()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h, err := b.Create(1, &testValue{})
				if err != nil {
					t.Errorf("Create: %v", err)
					return
				}
				b.Get(h)
				b.Take(h)
			}
		}()
	}

	wg.Wait()

	if b.Len() != 0 {
		t.Fatalf("Len = %d, want 0", b.Len())
	}
}
