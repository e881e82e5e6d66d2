package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortingEntryValidate(t *testing.T) {
	valid := SortingEntry{
		ShipmentID:      "SHIP-1",
		CaseNumber:      "CASE-001",
		LinesRequested:  5,
		DomesticPortion: 3,
		BulkPortion:     2,
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("missing shipment", func(t *testing.T) {
		entry := valid
		entry.ShipmentID = ""
		assert.Error(t, entry.Validate())
	})

	t.Run("empty case number", func(t *testing.T) {
		entry := valid
		entry.CaseNumber = " #! "
		assert.ErrorIs(t, entry.Validate(), ErrEmptyCaseNumber)
	})

	t.Run("non-positive lines", func(t *testing.T) {
		entry := valid
		entry.LinesRequested = 0
		assert.ErrorIs(t, entry.Validate(), ErrInvalidQuantity)
	})

	t.Run("negative portion", func(t *testing.T) {
		entry := valid
		entry.BulkPortion = -1
		assert.ErrorIs(t, entry.Validate(), ErrInvalidQuantity)
	})
}

func TestPackingEntryValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, PackingEntry{LocationNo: "L-12", NewCaseNo: "NEW-1", LinesPacked: 40}.Validate())
	})

	t.Run("empty new case number", func(t *testing.T) {
		err := PackingEntry{NewCaseNo: "###", LinesPacked: 10}.Validate()
		assert.ErrorIs(t, err, ErrEmptyCaseNumber)
	})

	t.Run("non-positive lines", func(t *testing.T) {
		assert.ErrorIs(t, PackingEntry{NewCaseNo: "NEW-1", LinesPacked: 0}.Validate(), ErrInvalidQuantity)
	})
}

func TestSummaryDelta(t *testing.T) {
	var delta SummaryDelta
	assert.True(t, delta.Empty())

	delta.AddSorting(12)
	delta.AddSorting(8)
	delta.AddPacking(60)

	assert.False(t, delta.Empty())
	assert.Equal(t, 20, delta.SorterLines)
	assert.Equal(t, 2, delta.SorterCases)
	assert.Equal(t, 1, delta.PackerCases)
	assert.Equal(t, 60, delta.PackerLines)
}

func TestParseWorkDate(t *testing.T) {
	t.Run("valid date", func(t *testing.T) {
		date, err := ParseWorkDate("2026-02-28")
		require.NoError(t, err)
		assert.Equal(t, "2026-02-28", date)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := ParseWorkDate("28/02/2026")
		assert.Error(t, err)
	})

	t.Run("impossible date", func(t *testing.T) {
		_, err := ParseWorkDate("2026-02-30")
		assert.Error(t, err)
	})
}

func TestMonthRange(t *testing.T) {
	t.Run("mid-month date", func(t *testing.T) {
		from, to, err := MonthRange("2026-08-15")
		require.NoError(t, err)
		assert.Equal(t, "2026-08-01", from)
		assert.Equal(t, "2026-08-31", to)
	})

	t.Run("leap February", func(t *testing.T) {
		from, to, err := MonthRange("2024-02-10")
		require.NoError(t, err)
		assert.Equal(t, "2024-02-01", from)
		assert.Equal(t, "2024-02-29", to)
	})

	t.Run("invalid date", func(t *testing.T) {
		_, _, err := MonthRange("not-a-date")
		assert.Error(t, err)
	})
}
