package savegame_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/randalmurphal/burrow/pkg/burrow/savegame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeFactory func(t *testing.T) savegame.Store

// storeContractTest runs the same checks against any Store implementation.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	t.Run(name+"/Save_and_Load", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		data := []byte{0xa1, 0x01, 0x02}
		require.NoError(t, store.Save("s1", "turn-1", data))

		loaded, err := store.Load("s1", "turn-1")
		require.NoError(t, err)
		assert.Equal(t, data, loaded)
	})

	t.Run(name+"/Load_NotFound", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, err := store.Load("nobody", "nothing")
		assert.ErrorIs(t, err, savegame.ErrNotFound)
	})

	t.Run(name+"/Save_Overwrite", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save("s1", "auto", []byte("first")))
		require.NoError(t, store.Save("s1", "auto", []byte("second")))

		loaded, err := store.Load("s1", "auto")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), loaded)
	})

	t.Run(name+"/List_Ordered", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save("s1", "a", []byte("a")))
		require.NoError(t, store.Save("s1", "b", []byte("bb")))
		require.NoError(t, store.Save("s1", "c", []byte("ccc")))
		// Rewriting a slot moves it to the end.
		require.NoError(t, store.Save("s1", "a", []byte("aaaa")))

		infos, err := store.List("s1")
		require.NoError(t, err)
		require.Len(t, infos, 3)

		assert.Equal(t, []string{"b", "c", "a"}, []string{infos[0].Slot, infos[1].Slot, infos[2].Slot})
		assert.Equal(t, int64(4), infos[2].Size)
		assert.Equal(t, "s1", infos[0].SessionID)
		assert.False(t, infos[0].Timestamp.IsZero())
	})

	t.Run(name+"/List_Empty", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		infos, err := store.List("nobody")
		require.NoError(t, err)
		assert.Empty(t, infos)
	})

	t.Run(name+"/LoadLatest", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		_, _, err := savegame.LoadLatest(store, "s1")
		assert.ErrorIs(t, err, savegame.ErrNotFound)

		require.NoError(t, store.Save("s1", "turn-1", []byte("one")))
		require.NoError(t, store.Save("s1", "turn-2", []byte("two")))

		data, slot, err := savegame.LoadLatest(store, "s1")
		require.NoError(t, err)
		assert.Equal(t, "turn-2", slot)
		assert.Equal(t, []byte("two"), data)
	})

	t.Run(name+"/Delete", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save("s1", "a", []byte("a")))
		require.NoError(t, store.Save("s1", "b", []byte("b")))
		require.NoError(t, store.Delete("s1", "a"))
		require.NoError(t, store.Delete("s1", "missing"))

		_, err := store.Load("s1", "a")
		assert.ErrorIs(t, err, savegame.ErrNotFound)
		_, err = store.Load("s1", "b")
		assert.NoError(t, err)
	})

	t.Run(name+"/DeleteSession", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		require.NoError(t, store.Save("s1", "a", []byte("a")))
		require.NoError(t, store.Save("s2", "a", []byte("a")))
		require.NoError(t, store.DeleteSession("s1"))

		infos, err := store.List("s1")
		require.NoError(t, err)
		assert.Empty(t, infos)

		infos, err = store.List("s2")
		require.NoError(t, err)
		assert.Len(t, infos, 1)
	})

	t.Run(name+"/Closed", func(t *testing.T) {
		store := factory(t)
		require.NoError(t, store.Close())

		assert.ErrorIs(t, store.Save("s1", "a", nil), savegame.ErrStoreClosed)
		_, err := store.Load("s1", "a")
		assert.ErrorIs(t, err, savegame.ErrStoreClosed)
		_, err = store.List("s1")
		assert.ErrorIs(t, err, savegame.ErrStoreClosed)
		assert.ErrorIs(t, store.Delete("s1", "a"), savegame.ErrStoreClosed)
		assert.ErrorIs(t, store.DeleteSession("s1"), savegame.ErrStoreClosed)
	})

	t.Run(name+"/Concurrent", func(t *testing.T) {
		store := factory(t)
		defer store.Close()

		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				slot := string(rune('a' + i))
				assert.NoError(t, store.Save("s1", slot, []byte(slot)))
				_, err := store.Load("s1", slot)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		infos, err := store.List("s1")
		require.NoError(t, err)
		assert.Len(t, infos, 8)
	})
}

func TestMemoryStore(t *testing.T) {
	storeContractTest(t, "MemoryStore", func(t *testing.T) savegame.Store {
		return savegame.NewMemoryStore()
	})
}

func TestSQLiteStore(t *testing.T) {
	storeContractTest(t, "SQLiteStore", func(t *testing.T) savegame.Store {
		store, err := savegame.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return store
	})
}

func TestMemoryStore_Len(t *testing.T) {
	store := savegame.NewMemoryStore()
	assert.Equal(t, 0, store.Len())

	require.NoError(t, store.Save("s1", "a", nil))
	require.NoError(t, store.Save("s1", "b", nil))
	require.NoError(t, store.Save("s2", "a", nil))
	assert.Equal(t, 3, store.Len())
}

func TestMemoryStore_CopiesData(t *testing.T) {
	store := savegame.NewMemoryStore()
	data := []byte("abc")
	require.NoError(t, store.Save("s1", "a", data))
	data[0] = 'x'

	loaded, err := store.Load("s1", "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), loaded)

	loaded[1] = 'y'
	again, _ := store.Load("s1", "a")
	assert.Equal(t, []byte("abc"), again)
}

func TestSQLiteStore_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.db")

	store, err := savegame.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save("s1", "auto", []byte("kept")))
	require.NoError(t, store.Close())

	store, err = savegame.NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.Load("s1", "auto")
	require.NoError(t, err)
	assert.Equal(t, []byte("kept"), loaded)
}

func TestSQLiteStore_CloseIdempotent(t *testing.T) {
	store, err := savegame.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
