package scoring

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ReferencePoints awards 100 points to the workout winner and decreases to 2
// points for rank 40. Every rank after that is worth nothing.
var ReferencePoints = []int{
	100, 95, 90, 85, 80, 75, 72, 69, 66, 63,
	60, 58, 56, 54, 52, 50, 48, 46, 44, 42,
	40, 38, 36, 34, 32, 30, 28, 26, 24, 22,
	20, 18, 16, 14, 12, 10, 8, 6, 4, 2,
}

type PointsTable struct {
	points []int
}

func NewPointsTable(points []int) (*PointsTable, error) {
	if len(points) == 0 {
		return nil, errors.New("points table is empty")
	}
	for i, value := range points {
		if value < 0 {
			return nil, fmt.Errorf("points table value %d at rank %d is negative", value, i+1)
		}
		if i > 0 && value > points[i-1] {
			return nil, fmt.Errorf("points table increases at rank %d", i+1)
		}
	}
	return &PointsTable{points: append([]int(nil), points...)}, nil
}

func ReferencePointsTable() *PointsTable {
	table, _ := NewPointsTable(ReferencePoints)
	return table
}

// ParsePointsTable reads a comma separated list such as "100,95,90".
func ParsePointsTable(raw string) (*PointsTable, error) {
	values := make([]int, 0)
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		value, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid points value %q: %w", field, err)
		}
		values = append(values, value)
	}
	return NewPointsTable(values)
}

func (t *PointsTable) PointsForRank(rank int) int {
	if rank < 1 || rank > len(t.points) {
		return 0
	}
	return t.points[rank-1]
}

func (t *PointsTable) Len() int {
	return len(t.points)
}
