package lookup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/metar-card-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavorites_EmptyStore(t *testing.T) {
	svc, _ := newTestService(kjfkFetcher(), NewMemoryStore(), Options{})
	favs, err := svc.Favorites(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, favs)
	assert.Empty(t, favs)
}

func TestAddFavorite_SetSemantics(t *testing.T) {
	svc, _ := newTestService(kjfkFetcher(), NewMemoryStore(), Options{})

	_, err := svc.AddFavorite(t.Context(), "KJFK")
	require.NoError(t, err)
	_, err = svc.AddFavorite(t.Context(), "klax")
	require.NoError(t, err)
	favs, err := svc.AddFavorite(t.Context(), "KJFK")
	require.NoError(t, err)

	assert.Equal(t, []domain.StationCode{"KJFK", "KLAX"}, favs)
}

func TestAddFavorite_Invalid(t *testing.T) {
	svc, _ := newTestService(kjfkFetcher(), NewMemoryStore(), Options{})
	_, err := svc.AddFavorite(t.Context(), "JFK")
	require.ErrorIs(t, err, domain.ErrInvalidCode)

	favs, err := svc.Favorites(t.Context())
	require.NoError(t, err)
	assert.Empty(t, favs)
}

func TestRemoveFavorite(t *testing.T) {
	svc, _ := newTestService(kjfkFetcher(), NewMemoryStore(), Options{})
	for _, c := range []string{"KJFK", "KLAX", "KBOS"} {
		_, err := svc.AddFavorite(t.Context(), c)
		require.NoError(t, err)
	}

	favs, err := svc.RemoveFavorite(t.Context(), "klax")
	require.NoError(t, err)
	assert.Equal(t, []domain.StationCode{"KJFK", "KBOS"}, favs)

	stored, err := svc.Favorites(t.Context())
	require.NoError(t, err)
	assert.Equal(t, favs, stored)
}

func TestRemoveFavorite_NonMemberIsNoop(t *testing.T) {
	store := NewMemoryStore()
	svc, _ := newTestService(kjfkFetcher(), store, Options{})
	_, err := svc.AddFavorite(t.Context(), "KJFK")
	require.NoError(t, err)
	before, _, _ := store.Get(t.Context(), KeyFavorites)

	favs, err := svc.RemoveFavorite(t.Context(), "EGLL")
	require.NoError(t, err)
	assert.Equal(t, []domain.StationCode{"KJFK"}, favs)

	after, _, _ := store.Get(t.Context(), KeyFavorites)
	assert.Equal(t, before, after)
}

func TestFavorites_StoredAsJSONList(t *testing.T) {
	store := NewMemoryStore()
	svc, _ := newTestService(kjfkFetcher(), store, Options{})
	_, err := svc.AddFavorite(t.Context(), "KJFK")
	require.NoError(t, err)
	_, err = svc.AddFavorite(t.Context(), "KSEA")
	require.NoError(t, err)

	raw, ok, err := store.Get(t.Context(), KeyFavorites)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `["KJFK","KSEA"]`, raw)
}

func TestFavorites_CorruptValueReadsEmpty(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(t.Context(), KeyFavorites, "{not json"))
	svc, _ := newTestService(kjfkFetcher(), store, Options{})

	favs, err := svc.Favorites(t.Context())
	require.NoError(t, err)
	assert.Empty(t, favs)

	favs, err = svc.AddFavorite(t.Context(), "KDEN")
	require.NoError(t, err)
	assert.Equal(t, []domain.StationCode{"KDEN"}, favs)
}

func TestFavorites_NullValueReadsEmpty(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(t.Context(), KeyFavorites, "null"))
	svc, _ := newTestService(kjfkFetcher(), store, Options{})

	favs, err := svc.Favorites(t.Context())
	require.NoError(t, err)
	assert.NotNil(t, favs)
	assert.Empty(t, favs)
}

// slowStore widens the window between reading and writing the list.
type slowStore struct {
	*MemoryStore
	delay time.Duration
}

func (s slowStore) Get(ctx context.Context, key string) (string, bool, error) {
	time.Sleep(s.delay)
	return s.MemoryStore.Get(ctx, key)
}

func TestLookup_ConcurrentAutoFavoriteKeepsEveryCode(t *testing.T) {
	f := &fakeFetcher{reports: map[domain.StationCode]string{
		"KJFK": kjfkReport,
		"KLAX": "METAR KLAX 061753Z 25012KT 10SM FEW020 22/14 A2992",
		"KBOS": "METAR KBOS 061754Z 09008KT 10SM BKN025 18/12 A3010",
		"KDEN": "METAR KDEN 061753Z 16011KT 10SM SCT080 28/04 A3018",
	}}
	store := slowStore{MemoryStore: NewMemoryStore(), delay: 5 * time.Millisecond}
	svc, _ := newTestService(f, store, Options{AutoFavorite: true})

	codes := []string{"KJFK", "KLAX", "KBOS", "KDEN"}
	var wg sync.WaitGroup
	for _, c := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := svc.Lookup(context.Background(), Request{Code: c})
			assert.Equal(t, StateOK, res.State, c)
		}()
	}
	wg.Wait()

	favs, err := svc.Favorites(t.Context())
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.StationCode{"KJFK", "KLAX", "KBOS", "KDEN"}, favs)
}

func TestFavorites_StoreReadError(t *testing.T) {
	svc, _ := newTestService(kjfkFetcher(), failingStore{getErr: errors.New("closed")}, Options{})
	_, err := svc.Favorites(t.Context())
	require.Error(t, err)
	_, err = svc.AddFavorite(t.Context(), "KJFK")
	require.Error(t, err)
}

func TestMemoryStore_MissingKey(t *testing.T) {
	s := NewMemoryStore()
	v, ok, err := s.Get(t.Context(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, v)
}
