package slot

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()

	f, err := NewFile(t.TempDir())
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	return map[string]Backend{
		"memory": NewMemory(),
		"file":   f,
	}
}

func TestBackends_GetMissingIsEmpty(t *testing.T) {
	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := b.Get(context.Background(), DefaultKey)
			if !errors.Is(err, ErrEmpty) {
				t.Fatalf("err=%v want ErrEmpty", err)
			}
		})
	}
}

func TestBackends_SetOverwritesWholeValue(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := New(b, SessionKey("s_1"))

			if err := s.Save(ctx, []byte(`[{"id":1,"amount":2},{"id":2,"amount":1}]`)); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := s.Save(ctx, []byte(`[]`)); err != nil {
				t.Fatalf("save: %v", err)
			}

			got, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if !bytes.Equal(got, []byte(`[]`)) {
				t.Fatalf("got=%s", got)
			}
		})
	}
}

func TestBackends_KeysAreIsolated(t *testing.T) {
	ctx := context.Background()

	for name, b := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a := New(b, SessionKey("s_a"))
			other := New(b, SessionKey("s_b"))

			if err := a.Save(ctx, []byte(`[1]`)); err != nil {
				t.Fatalf("save: %v", err)
			}
			if _, err := other.Load(ctx); !errors.Is(err, ErrEmpty) {
				t.Fatalf("other slot err=%v want ErrEmpty", err)
			}
		})
	}
}

func TestMemory_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	in := []byte("abc")
	if err := m.Set(ctx, "k", in); err != nil {
		t.Fatalf("set: %v", err)
	}
	in[0] = 'x'

	got, _ := m.Get(ctx, "k")
	got[1] = 'y'

	again, _ := m.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("stored value mutated: %q", again)
	}
}

func TestFile_LeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	f, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := f.Set(ctx, DefaultKey, []byte(`[]`)); err != nil {
			t.Fatalf("set: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries=%d want 1", len(entries))
	}
}

func TestSessionKey(t *testing.T) {
	if got := SessionKey(""); got != DefaultKey {
		t.Fatalf("empty session key=%q", got)
	}
	if got := SessionKey("s_1"); got != "@RocketShoes:cart:s_1" {
		t.Fatalf("session key=%q", got)
	}
}

func TestRedis_GetGivesUpOnSilentServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		var conns []net.Conn
		for {
			c, err := ln.Accept()
			if err != nil {
				for _, c := range conns {
					_ = c.Close()
				}
				return
			}
			conns = append(conns, c)
		}
	}()

	r := NewRedisWithClient(redis.NewClient(&redis.Options{
		Addr:        ln.Addr().String(),
		ReadTimeout: -1,
		MaxRetries:  -1,
	}))
	r.timeout = 100 * time.Millisecond
	t.Cleanup(func() { _ = r.Close() })

	start := time.Now()
	_, err = r.Get(context.Background(), DefaultKey)
	if err == nil || errors.Is(err, ErrEmpty) {
		t.Fatalf("err=%v want timeout", err)
	}
	if d := time.Since(start); d > 2*time.Second {
		t.Fatalf("get took %v", d)
	}
}
