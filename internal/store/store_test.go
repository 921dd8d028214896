package store

import (
	"fmt"
	"sync"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Entries []string `json:"entries"`
}

func (r record) Key() string { return r.ID }

func newTestStore(t *testing.T) *Store[record] {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New[record](db, "record")
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)

	created, err := s.Create(record{ID: "a", Name: "first"})
	require.NoError(t, err)
	require.Equal(t, "first", created.Name)

	got, err := s.Get("a")
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestCreateDuplicateKey(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create(record{ID: "a"})
	require.NoError(t, err)

	_, err = s.Create(record{ID: "a"})
	require.ErrorIs(t, err, ErrKeyExists)
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMutateMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Mutate("nope", func(r record) (record, error) { return r, nil })
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMutateGuardAbortsWrite(t *testing.T) {
	s := newTestStore(t)
	guard := fmt.Errorf("guard failed")

	_, err := s.Create(record{ID: "a", Name: "original"})
	require.NoError(t, err)

	_, err = s.Mutate("a", func(r record) (record, error) {
		r.Name = "changed"
		return r, guard
	})
	require.ErrorIs(t, err, guard)

	got, err := s.Get("a")
	require.NoError(t, err)
	require.Equal(t, "original", got.Name)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create(record{ID: "a"})
	require.NoError(t, err)
	require.NoError(t, s.Delete("a"))

	_, err = s.Get("a")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, s.Delete("a"), ErrNotFound)
}

func TestQuery(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := s.Create(record{ID: fmt.Sprintf("r%d", i), Name: fmt.Sprintf("name%d", i%2)})
		require.NoError(t, err)
	}

	matches, err := s.Query(func(r record) bool { return r.Name == "name0" })
	require.NoError(t, err)
	require.Len(t, matches, 3)

	none, err := s.Query(func(r record) bool { return false })
	require.NoError(t, err)
	require.Empty(t, none)
}

// Concurrent mutations of one key must all land: each call sees the result
// of the previous one, so no append may be lost.
func TestConcurrentMutateSameKey(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Create(record{ID: "log", Entries: []string{}})
	require.NoError(t, err)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Mutate("log", func(r record) (record, error) {
				r.Entries = append(r.Entries, fmt.Sprintf("entry-%d", i))
				return r, nil
			})
			require.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := s.Get("log")
	require.NoError(t, err)
	require.Len(t, got.Entries, n)

	seen := make(map[string]bool, n)
	for _, e := range got.Entries {
		seen[e] = true
	}
	require.Len(t, seen, n)
}

func TestConcurrentMutateDistinctKeys(t *testing.T) {
	s := newTestStore(t)

	const keys = 10
	for i := 0; i < keys; i++ {
		_, err := s.Create(record{ID: fmt.Sprintf("k%d", i), Entries: []string{}})
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for i := 0; i < keys; i++ {
		for j := 0; j < 10; j++ {
			wg.Add(1)
			go func(i, j int) {
				defer wg.Done()
				_, err := s.Mutate(fmt.Sprintf("k%d", i), func(r record) (record, error) {
					r.Entries = append(r.Entries, fmt.Sprintf("%d", j))
					return r, nil
				})
				require.NoError(t, err)
			}(i, j)
		}
	}
	wg.Wait()

	for i := 0; i < keys; i++ {
		got, err := s.Get(fmt.Sprintf("k%d", i))
		require.NoError(t, err)
		require.Len(t, got.Entries, 10)
	}
}
