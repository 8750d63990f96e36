package cache

import (
	"fmt"
	"sync"
	"testing"
	"testing/fstest"
)

func TestNewCache(t *testing.T) {
	cache := NewCache[string, []int]()
	if cache == nil {
		t.Fatal("Expected non-nil cache")
	}
	if cache.items == nil {
		t.Fatal("Expected items map to be initialized")
	}
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache, got %d items", cache.Len())
	}
}

func TestCache_BasicOperations(t *testing.T) {
	cache := NewCache[string, string]()

	t.Run("Get missing key", func(t *testing.T) {
		got, ok := cache.Get("missing")
		if ok {
			t.Error("Expected missing key to report not found")
		}
		if got != "" {
			t.Errorf("Expected zero value, got %q", got)
		}
	})

	t.Run("Set and Get", func(t *testing.T) {
		cache.Set("PSSP2025", "areas")
		got, ok := cache.Get("PSSP2025")
		if !ok || got != "areas" {
			t.Errorf("Expected (areas, true), got (%q, %v)", got, ok)
		}
		if !cache.Has("PSSP2025") {
			t.Error("Expected Has to report the key")
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		cache.Set("PSSP2025", "other")
		got, _ := cache.Get("PSSP2025")
		if got != "other" {
			t.Errorf("Expected overwritten value, got %q", got)
		}
		if cache.Len() != 1 {
			t.Errorf("Expected 1 item, got %d", cache.Len())
		}
	})

	t.Run("Delete", func(t *testing.T) {
		cache.Delete("PSSP2025")
		if cache.Has("PSSP2025") {
			t.Error("Expected key to be deleted")
		}
		cache.Delete("never-there")
	})
}

func TestCache_ClearAndSetTo(t *testing.T) {
	cache := NewCache[string, int]()
	cache.Set("a", 1)
	cache.Set("b", 2)

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Expected cache to be empty after Clear, got %d", cache.Len())
	}

	cache.Set("old", 0)
	cache.SetTo(map[string]int{"x": 10, "y": 20})

	if cache.Has("old") {
		t.Error("Expected SetTo to drop previous items")
	}
	if v, ok := cache.Get("y"); !ok || v != 20 {
		t.Errorf("Expected y=20, got %d (%v)", v, ok)
	}
}

func TestCache_Concurrency(t *testing.T) {
	cache := NewCache[int, string]()
	const numGoroutines = 50
	const numOperations = 200

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				cache.Set(id*numOperations+j, fmt.Sprintf("value-%d-%d", id, j))
			}
		}(i)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < numOperations; j++ {
				cache.Get(id*numOperations + j)
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() != numGoroutines*numOperations {
		t.Errorf("Expected %d items, got %d", numGoroutines*numOperations, cache.Len())
	}
}

func TestStaticHash(t *testing.T) {
	SetStaticHash("/static/style.css", "abc")

	hash, ok := GetStaticHash("/static/style.css")
	if !ok || hash != "abc" {
		t.Errorf("Expected (abc, true), got (%q, %v)", hash, ok)
	}

	if _, ok := GetStaticHash("/static/missing.js"); ok {
		t.Error("Expected no hash for unknown path")
	}
}

func TestHashStatic(t *testing.T) {
	assets := fstest.MapFS{
		"static/style.css":     {Data: []byte("body{}")},
		"static/js/app.js":     {Data: []byte("console.log(1)")},
		"templates/index.html": {Data: []byte("<html></html>")},
	}

	n, err := HashStatic(assets, "static", "/static/")
	if err != nil {
		t.Fatalf("HashStatic failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 hashed files, got %d", n)
	}

	css, ok := GetStaticHash("/static/style.css")
	if !ok || len(css) != 18 || css[0] != '"' {
		t.Errorf("Expected a quoted ETag for style.css, got (%q, %v)", css, ok)
	}
	if _, ok := GetStaticHash("/static/js/app.js"); !ok {
		t.Error("Expected nested files to be hashed")
	}
	if _, ok := GetStaticHash("/static/index.html"); ok {
		t.Error("Expected files outside the static dir to be skipped")
	}

	assets["static/style.css"] = &fstest.MapFile{Data: []byte("body{color:red}")}
	if _, err := HashStatic(assets, "static", "/static/"); err != nil {
		t.Fatalf("HashStatic failed: %v", err)
	}
	if again, _ := GetStaticHash("/static/style.css"); again == css {
		t.Error("Expected the ETag to follow the content")
	}
}
