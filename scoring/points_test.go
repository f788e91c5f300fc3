package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferencePointsTable(t *testing.T) {
	table := ReferencePointsTable()
	assert.Equal(t, 40, table.Len())
	assert.Equal(t, 100, table.PointsForRank(1))
	assert.Equal(t, 95, table.PointsForRank(2))
	assert.Equal(t, 72, table.PointsForRank(7))
	assert.Equal(t, 2, table.PointsForRank(40))
	assert.Equal(t, 0, table.PointsForRank(41))
	assert.Equal(t, 0, table.PointsForRank(1000))
	assert.Equal(t, 0, table.PointsForRank(0))
}

func TestPointsNonIncreasing(t *testing.T) {
	table := ReferencePointsTable()
	for rank := 2; rank <= 60; rank++ {
		assert.LessOrEqual(t, table.PointsForRank(rank), table.PointsForRank(rank-1), "rank %d", rank)
		assert.GreaterOrEqual(t, table.PointsForRank(rank), 0)
	}
}

func TestNewPointsTableRejectsInvalidTables(t *testing.T) {
	_, err := NewPointsTable(nil)
	assert.Error(t, err)
	_, err = NewPointsTable([]int{10, 20})
	assert.Error(t, err)
	_, err = NewPointsTable([]int{10, -1})
	assert.Error(t, err)
}

func TestNewPointsTableCopiesInput(t *testing.T) {
	values := []int{10, 5}
	table, err := NewPointsTable(values)
	require.NoError(t, err)
	values[0] = 1
	assert.Equal(t, 10, table.PointsForRank(1))
}

func TestParsePointsTable(t *testing.T) {
	table, err := ParsePointsTable(" 50, 30 ,10,")
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 30, table.PointsForRank(2))
	assert.Equal(t, 0, table.PointsForRank(4))

	_, err = ParsePointsTable("50,abc")
	assert.Error(t, err)
	_, err = ParsePointsTable("")
	assert.Error(t, err)
}
