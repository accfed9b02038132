package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestCache_BasicOperations(t *testing.T) {
	c := NewCache[string, string]()

	t.Run("Set and Get", func(t *testing.T) {
		c.Set("k", "v")
		got, ok := c.Get("k")
		if !ok || got != "v" {
			t.Errorf("Expected (v, true), got (%q, %v)", got, ok)
		}
	})

	t.Run("Get non-existent key", func(t *testing.T) {
		if _, ok := c.Get("missing"); ok {
			t.Error("Expected key to not exist")
		}
	})

	t.Run("Delete", func(t *testing.T) {
		c.Set("gone", "soon")
		c.Delete("gone")
		if _, ok := c.Get("gone"); ok {
			t.Error("Expected key to be deleted")
		}
		c.Delete("never-there")
	})

	t.Run("Clear", func(t *testing.T) {
		c.Set("a", "1")
		c.Clear()
		if c.Len() != 0 {
			t.Errorf("Expected empty cache, got %d items", c.Len())
		}
	})
}

func TestCache_Take(t *testing.T) {
	c := NewCache[string, int]()
	c.Set("one", 1)

	v, ok := c.Take("one")
	if !ok || v != 1 {
		t.Fatalf("Expected (1, true), got (%d, %v)", v, ok)
	}
	if _, ok := c.Take("one"); ok {
		t.Error("Expected second Take to miss")
	}
}

func TestCache_Concurrency(t *testing.T) {
	c := NewCache[string, int]()
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("%d-%d", g, i)
				c.Set(key, i)
				c.Get(key)
				if i%3 == 0 {
					c.Take(key)
				}
			}
		}(g)
	}
	wg.Wait()

	// 34 of every 100 keys per goroutine were taken
	if c.Len() != 8*66 {
		t.Errorf("Expected %d items, got %d", 8*66, c.Len())
	}
}

func TestRenderedMarkdownCache(t *testing.T) {
	ClearRenderedMarkdownCache()

	SetRenderedMarkdown("hash", "github", []byte("<p>a</p>"))
	SetRenderedMarkdown("hash", "monokai", []byte("<p>b</p>"))

	a, ok := GetRenderedMarkdown("hash", "github")
	if !ok || string(a.HTML) != "<p>a</p>" {
		t.Errorf("Expected github entry, got %v %v", a, ok)
	}
	b, ok := GetRenderedMarkdown("hash", "monokai")
	if !ok || string(b.HTML) != "<p>b</p>" {
		t.Errorf("Expected monokai entry, got %v %v", b, ok)
	}

	ClearRenderedMarkdownCache()
	if _, ok := GetRenderedMarkdown("hash", "github"); ok {
		t.Error("Expected cache to be cleared")
	}
}
