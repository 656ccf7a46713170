package orders

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kieracarman/tablepos/internal/models"
)

func espresso() models.MenuItem {
	return models.NewDrinkItem("Espresso", decimal.RequireFromString("3.99"), 100, false, "Hot")
}

func putOrder(t *testing.T, s *Store, table int, at time.Time) *models.Order {
	t.Helper()
	o, err := models.NewOrder(table, at)
	require.NoError(t, err)
	s.Put(o)
	return o
}

func TestStore_PutGet(t *testing.T) {
	s := NewStore()
	o := putOrder(t, s, 3, time.Now())

	got, ok := s.Get(o.ID)
	require.True(t, ok)
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, 3, got.TableNo)

	_, ok = s.Get("missing")
	assert.False(t, ok)
}

func TestStore_PutStoresCopy(t *testing.T) {
	s := NewStore()
	o := putOrder(t, s, 3, time.Now())
	require.NoError(t, o.AddLine(espresso(), 1))

	got, _ := s.Get(o.ID)
	assert.Equal(t, 0, got.LineCount())
}

func TestStore_Update(t *testing.T) {
	s := NewStore()
	o := putOrder(t, s, 3, time.Now())
	item := espresso()

	updated, err := s.Update(o.ID, func(o *models.Order) error {
		return o.AddLine(item, 2)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.LineCount())

	got, _ := s.Get(o.ID)
	assert.True(t, decimal.RequireFromString("8.778").Equal(got.Total))
}

func TestStore_UpdateDiscardsFailedChange(t *testing.T) {
	s := NewStore()
	o := putOrder(t, s, 3, time.Now())
	boom := errors.New("boom")

	current, err := s.Update(o.ID, func(o *models.Order) error {
		require.NoError(t, o.AddLine(espresso(), 2))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	require.NotNil(t, current)
	assert.Equal(t, 0, current.LineCount())

	got, _ := s.Get(o.ID)
	assert.Equal(t, 0, got.LineCount())
	assert.True(t, got.Total.IsZero())
}

func TestStore_UpdateMissing(t *testing.T) {
	s := NewStore()
	order, err := s.Update("missing", func(*models.Order) error { return nil })
	assert.Nil(t, order)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, models.CodeNotFound, models.CodeOf(err))
}

func TestStore_RemoveIf(t *testing.T) {
	s := NewStore()
	o := putOrder(t, s, 3, time.Now())
	keep := errors.New("keep")

	removed, err := s.RemoveIf(o.ID, func(*models.Order) error { return keep })
	assert.False(t, removed)
	assert.ErrorIs(t, err, keep)
	_, ok := s.Get(o.ID)
	assert.True(t, ok)

	removed, err = s.RemoveIf(o.ID, func(*models.Order) error { return nil })
	assert.True(t, removed)
	assert.NoError(t, err)
	_, ok = s.Get(o.ID)
	assert.False(t, ok)

	_, err = s.RemoveIf(o.ID, nil)
	assert.True(t, IsNotFound(err))
	assert.False(t, s.Remove(o.ID))
}

func TestStore_Listing(t *testing.T) {
	s := NewStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	first := putOrder(t, s, 1, base)
	second := putOrder(t, s, 2, base.Add(time.Minute))
	third := putOrder(t, s, 1, base.Add(2*time.Minute))

	_, err := s.Update(second.ID, func(o *models.Order) error {
		if err := o.AddLine(espresso(), 1); err != nil {
			return err
		}
		return o.MarkPaid(base.Add(3 * time.Minute))
	})
	require.NoError(t, err)

	ids := func(orders []*models.Order) []string {
		out := []string{}
		for _, o := range orders {
			out = append(out, o.ID)
		}
		return out
	}

	assert.Equal(t, []string{first.ID, second.ID, third.ID}, ids(s.List()))
	assert.Equal(t, []string{first.ID, third.ID}, ids(s.ListByTable(1)))
	assert.Equal(t, []string{first.ID, third.ID}, ids(s.ListByStatus(models.Draft)))
	assert.Equal(t, []string{second.ID}, ids(s.ListByStatus(models.Paid)))
	assert.Empty(t, s.ListByTable(9))
}

func TestStore_ConcurrentUpdatesAreSerialized(t *testing.T) {
	s := NewStore()
	o := putOrder(t, s, 3, time.Now())
	item := espresso()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Update(o.ID, func(o *models.Order) error {
				return o.AddLine(item, 1)
			})
		}()
	}
	wg.Wait()

	got, _ := s.Get(o.ID)
	line, ok := got.Line(item.ID)
	require.True(t, ok)
	assert.Equal(t, 50, line.Quantity)
	assert.True(t, decimal.RequireFromString("199.5").Equal(got.Subtotal))
}
