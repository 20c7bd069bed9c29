package benchmarks

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/burrow/pkg/burrow/savegame"
)

// BenchmarkCapture measures reading the world into a snapshot.
func BenchmarkCapture(b *testing.B) {
	reg := newRegistry(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = savegame.Capture(ctx, reg, "bench", uint64(i))
	}
}

// BenchmarkEncode measures CBOR encoding of a snapshot.
func BenchmarkEncode(b *testing.B) {
	snap := savegame.Capture(context.Background(), newRegistry(b), "bench", 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := savegame.Encode(snap); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRestore measures decoding a snapshot and rebuilding the world.
func BenchmarkRestore(b *testing.B) {
	data, err := savegame.Encode(savegame.Capture(context.Background(), newRegistry(b), "bench", 0))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		snap, err := savegame.Decode(data)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := savegame.Restore(snap); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkMemoryStore_Save measures an in-memory save.
func BenchmarkMemoryStore_Save(b *testing.B) {
	store := savegame.NewMemoryStore()
	data := encodedWorld(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Save("bench", slot(i%100), data)
	}
}

// BenchmarkSQLiteStore_Save measures a save to a SQLite file.
func BenchmarkSQLiteStore_Save(b *testing.B) {
	store, err := savegame.NewSQLiteStore(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	data := encodedWorld(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Save("bench", slot(i%100), data)
	}
}

// BenchmarkSQLiteStore_Load measures loading from a SQLite file.
func BenchmarkSQLiteStore_Load(b *testing.B) {
	store, err := savegame.NewSQLiteStore(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatal(err)
	}
	defer store.Close()
	if err := store.Save("bench", "final", encodedWorld(b)); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Load("bench", "final")
	}
}

func encodedWorld(b *testing.B) []byte {
	b.Helper()
	data, err := savegame.Encode(savegame.Capture(context.Background(), newRegistry(b), "bench", 0))
	if err != nil {
		b.Fatal(err)
	}
	return data
}

func slot(i int) string {
	return fmt.Sprintf("turn-%d", i)
}
