package gcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/tabletpath/internal/model"
)

func TestColumns(t *testing.T) {
	for q, want := range map[int]int{1: 1, 2: 2, 4: 2, 5: 3, 9: 3, 10: 4, 16: 4, 17: 5, 0: 0} {
		assert.Equal(t, want, Columns(q), "Columns(%d)", q)
	}
}

func TestPlace_TenAtTwentyFour(t *testing.T) {
	p := Place(10, 24)
	require.Len(t, p, 10)
	assert.Equal(t, model.UnitPlacement{Index: 0, OffsetX: 0, OffsetY: 0}, p[0])
	assert.Equal(t, model.UnitPlacement{Index: 3, OffsetX: 72, OffsetY: 0}, p[3])
	assert.Equal(t, model.UnitPlacement{Index: 4, OffsetX: 0, OffsetY: 24}, p[4])
	assert.Equal(t, model.UnitPlacement{Index: 5, OffsetX: 24, OffsetY: 24}, p[5])
	assert.Equal(t, model.UnitPlacement{Index: 9, OffsetX: 24, OffsetY: 48}, p[9])
}

func TestPlace_Deterministic(t *testing.T) {
	assert.Equal(t, Place(37, 18.5), Place(37, 18.5))
	assert.Nil(t, Place(0, 24))
}

func TestPlace_RowMajor(t *testing.T) {
	p := Place(7, 10)
	for i := 1; i < len(p); i++ {
		prev, cur := p[i-1], p[i]
		if cur.OffsetY == prev.OffsetY {
			assert.Greater(t, cur.OffsetX, prev.OffsetX)
		} else {
			assert.Greater(t, cur.OffsetY, prev.OffsetY)
			assert.Equal(t, 0.0, cur.OffsetX)
		}
	}
}
