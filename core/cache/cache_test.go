package cache

import (
	"fmt"
	"testing"

	"github.com/FocuswithJustin/Lectern/core/usj"
)

func testDoc(code string) *usj.Document {
	return &usj.Document{Nodes: []usj.Node{{Type: usj.NodeBook, Code: code}}}
}

func TestKey(t *testing.T) {
	a := Key([]byte("\\id GEN\n"))
	b := Key([]byte("\\id GEN\n"))
	c := Key([]byte("\\id EXO\n"))
	if a != b {
		t.Error("Key() not deterministic")
	}
	if a == c {
		t.Error("Key() collides on different content")
	}
	if len(a) != 64 {
		t.Errorf("Key() length = %d, want 64 hex chars", len(a))
	}
}

func TestGetPut(t *testing.T) {
	c := NewDocumentCache(10)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get() on empty cache hit")
	}

	c.Put("k", testDoc("GEN"))
	doc, ok := c.Get("k")
	if !ok || doc.BookCode() != "GEN" {
		t.Errorf("Get() = (%v, %v)", doc, ok)
	}

	// Overwrite keeps one entry.
	c.Put("k", testDoc("EXO"))
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
	if doc, _ := c.Get("k"); doc.BookCode() != "EXO" {
		t.Error("Put() did not replace existing value")
	}
}

func TestEviction(t *testing.T) {
	c := NewDocumentCache(2)
	c.Put("a", testDoc("GEN"))
	c.Put("b", testDoc("EXO"))

	// Touch "a" so "b" is the LRU victim.
	c.Get("a")
	c.Put("c", testDoc("LEV"))

	if _, ok := c.Get("b"); ok {
		t.Error("LRU entry survived eviction")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("recently used entry was evicted")
	}

	stats := c.Stats()
	if stats.Evictions != 1 {
		t.Errorf("Evictions = %d, want 1", stats.Evictions)
	}
	if stats.Size != 2 || stats.MaxSize != 2 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestUnbounded(t *testing.T) {
	c := NewDocumentCache(0)
	for i := 0; i < 100; i++ {
		c.Put(fmt.Sprintf("k%d", i), testDoc("GEN"))
	}
	if c.Len() != 100 {
		t.Errorf("Len() = %d, want 100", c.Len())
	}
}
