package inventory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fridgechef/internal/database"
	"fridgechef/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := database.OpenSQL("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	svc := NewService(store, zap.NewNop())
	// Strictly increasing clock so newest-first ordering is deterministic.
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	var tick atomic.Int64
	svc.now = func() time.Time {
		return base.Add(time.Duration(tick.Add(1)) * time.Second)
	}
	return svc
}

func amount(v float64) *float64 { return &v }

func TestAdd_NormalizesName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	res, err := svc.Add(ctx, AddInput{Name: "  Tomato ", Value: amount(2), Unit: "pieces"})
	require.NoError(t, err)
	assert.Equal(t, "tomato", res.Item.Name)

	items, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "tomato", items[0].Name)
	assert.Equal(t, models.Quantity{Value: 2, Unit: models.UnitPieces}, items[0].Quantity)
}

func TestAdd_ReturnsFullSnapshot(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, AddInput{Name: "milk", Value: amount(1), Unit: "liters"})
	require.NoError(t, err)
	res, err := svc.Add(ctx, AddInput{Name: "eggs", Value: amount(6), Unit: "pieces"})
	require.NoError(t, err)

	require.Len(t, res.Fridge, 2)
	assert.Equal(t, "eggs", res.Fridge[0].Name)
	assert.Equal(t, "milk", res.Fridge[1].Name)
}

func TestAdd_CaseOnlyDuplicateIsConflict(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, AddInput{Name: "Tomato", Value: amount(2), Unit: "pieces"})
	require.NoError(t, err)

	_, err = svc.Add(ctx, AddInput{Name: "TOMATO", Value: amount(5), Unit: "pieces"})
	assert.ErrorIs(t, err, models.ErrConflict)

	items, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2.0, items[0].Quantity.Value, "add must not merge quantities")
}

func TestAdd_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   AddInput
	}{
		{"empty name", AddInput{Name: "   ", Value: amount(1), Unit: "grams"}},
		{"missing value", AddInput{Name: "flour", Unit: "grams"}},
		{"negative value", AddInput{Name: "flour", Value: amount(-1), Unit: "grams"}},
		{"zero with unknown unit", AddInput{Name: "flour", Value: amount(0), Unit: "oz"}},
		{"empty unit", AddInput{Name: "flour", Value: amount(3), Unit: ""}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tc.in)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}

	items, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAdd_ZeroWithKnownUnitIsAccepted(t *testing.T) {
	svc := newTestService(t)

	res, err := svc.Add(context.Background(), AddInput{Name: "salt", Value: amount(0), Unit: "Teaspoons"})
	require.NoError(t, err)
	assert.Equal(t, models.UnitTeaspoons, res.Item.Quantity.Unit)
}

func TestAdd_ConcurrentSameNameStoresOne(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	const workers = 10
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Add(ctx, AddInput{Name: "Milk", Value: amount(1), Unit: "liters"})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.True(t, errors.Is(err, models.ErrConflict), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, ok)

	items, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "milk", items[0].Name)
}

func TestRemove(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, AddInput{Name: "butter", Value: amount(250), Unit: "grams"})
	require.NoError(t, err)
	_, err = svc.Add(ctx, AddInput{Name: "bread", Value: amount(1), Unit: "pieces"})
	require.NoError(t, err)

	res, err := svc.Remove(ctx, " BUTTER")
	require.NoError(t, err)
	require.Len(t, res.Fridge, 1)
	assert.Equal(t, "bread", res.Fridge[0].Name)
}

func TestRemove_MissingIsNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Remove(context.Background(), "unicorn steak")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestList_FilterAndOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Tomato", "Onion", "Green Tomatoes"} {
		_, err := svc.Add(ctx, AddInput{Name: name, Value: amount(1), Unit: "pieces"})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"green tomatoes", "onion", "tomato"}, namesOf(all))

	filtered, err := svc.List(ctx, "TOMA")
	require.NoError(t, err)
	assert.Equal(t, []string{"green tomatoes", "tomato"}, namesOf(filtered))

	names, err := svc.Names(ctx)
	require.NoError(t, err)
	assert.Len(t, names, 3)
}

func namesOf(items []models.IngredientRecord) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Name
	}
	return out
}

// brokenListStore commits writes but fails every read
type brokenListStore struct {
	*database.SQLStore
}

func (s brokenListStore) List(ctx context.Context, filter string) ([]models.IngredientRecord, error) {
	return nil, errors.New("read replica down")
}

func TestAdd_SnapshotFailureKeepsItem(t *testing.T) {
	store, err := database.OpenSQL("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	ctx := context.Background()

	svc := NewService(brokenListStore{store}, zap.NewNop())
	res, err := svc.Add(ctx, AddInput{Name: "Butter", Value: amount(250), Unit: "grams"})
	require.ErrorIs(t, err, ErrSnapshotUnavailable)
	require.NotNil(t, res)
	assert.Equal(t, "butter", res.Item.Name)
	assert.Nil(t, res.Fridge)

	saved, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"butter"}, namesOf(saved))

	res, err = svc.Remove(ctx, "butter")
	require.ErrorIs(t, err, ErrSnapshotUnavailable)
	require.NotNil(t, res)

	saved, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, saved)
}
