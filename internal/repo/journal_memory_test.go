package repo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockops/stock-console/internal/models"
	"github.com/stockops/stock-console/internal/repo"
)

func event(id, productID int, ts time.Time) models.MovementEvent {
	return models.MovementEvent{
		ID:        id,
		ProductID: productID,
		Type:      models.MovementIn,
		Quantity:  5,
		Timestamp: ts,
	}
}

func intPtr(v int) *int              { return &v }
func timePtr(t time.Time) *time.Time { return &t }

func TestInMemoryJournal_RecordAndCount(t *testing.T) {
	j := repo.NewInMemoryJournalRepository()
	base := time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, j.Record(event(1, 10, base)))
	require.NoError(t, j.Record(event(2, 10, base.Add(time.Hour))))
	require.NoError(t, j.Record(event(3, 20, base.Add(2*time.Hour))))

	total, err := j.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	counts, err := j.CountByProduct()
	require.NoError(t, err)
	assert.Equal(t, map[int]int{10: 2, 20: 1}, counts)
}

func TestInMemoryJournal_DuplicateEvent(t *testing.T) {
	j := repo.NewInMemoryJournalRepository()
	base := time.Now()

	require.NoError(t, j.Record(event(1, 10, base)))
	err := j.Record(event(1, 10, base))
	assert.ErrorIs(t, err, repo.ErrDuplicateEvent)

	total, err := j.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestInMemoryJournal_ByProductNewestFirst(t *testing.T) {
	j := repo.NewInMemoryJournalRepository()
	base := time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, j.Record(event(1, 10, base)))
	require.NoError(t, j.Record(event(2, 10, base.Add(2*time.Hour))))
	require.NoError(t, j.Record(event(3, 10, base.Add(time.Hour))))
	require.NoError(t, j.Record(event(4, 20, base.Add(3*time.Hour))))

	got, total, err := j.ByProduct(10, repo.JournalFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 3)
	assert.Equal(t, []int{2, 3, 1}, []int{got[0].ID, got[1].ID, got[2].ID})
}

func TestInMemoryJournal_TimeRangeFilter(t *testing.T) {
	j := repo.NewInMemoryJournalRepository()
	base := time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, j.Record(event(i+1, 10, base.Add(time.Duration(i)*time.Hour))))
	}

	got, total, err := j.ByProduct(10, repo.JournalFilter{
		Since: timePtr(base.Add(time.Hour)),
		Until: timePtr(base.Add(3 * time.Hour)),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []int{4, 3, 2}, []int{got[0].ID, got[1].ID, got[2].ID})
}

func TestInMemoryJournal_Pagination(t *testing.T) {
	j := repo.NewInMemoryJournalRepository()
	base := time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		require.NoError(t, j.Record(event(i+1, 10, base.Add(time.Duration(i)*time.Minute))))
	}

	got, total, err := j.ByProduct(10, repo.JournalFilter{Limit: intPtr(3), Offset: intPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, 10, total, "total counts before pagination")
	require.Len(t, got, 3)
	// Newest first: ids 10..1; offset 2 skips 10 and 9.
	assert.Equal(t, []int{8, 7, 6}, []int{got[0].ID, got[1].ID, got[2].ID})

	got, total, err = j.ByProduct(10, repo.JournalFilter{Offset: intPtr(50)})
	require.NoError(t, err)
	assert.Equal(t, 10, total)
	assert.Empty(t, got)
}

func TestInMemoryJournal_UnknownProduct(t *testing.T) {
	j := repo.NewInMemoryJournalRepository()
	got, total, err := j.ByProduct(99, repo.JournalFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, got)
}
