package pager

import (
	"math"
	"testing"

	"github.com/ButyrinIA/feedrank/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	p, err := Pager{}.Normalize(0, 0)
	require.NoError(t, err)
	assert.Equal(t, Page{Page: 1, Limit: 20}, p)
	assert.Equal(t, 0, p.Skip())
}

func TestNormalizeInvalid(t *testing.T) {
	_, err := Pager{}.Normalize(-1, 10)
	assert.True(t, apperr.IsValidation(err))

	_, err = Pager{}.Normalize(1, -5)
	assert.True(t, apperr.IsValidation(err))
}

func TestNormalizePageTooLarge(t *testing.T) {
	_, err := Pager{}.Normalize(1<<62, 20)
	assert.True(t, apperr.IsValidation(err))

	_, err = Pager{}.Normalize(math.MaxInt, 1)
	assert.NoError(t, err, "при limit=1 сдвиг помещается в int")

	p, err := Pager{}.Normalize(math.MaxInt/20+1, 20)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, p.Skip(), 0)
}

func TestNormalizeMaxLimit(t *testing.T) {
	p, err := Pager{DefaultLimit: 10, MaxLimit: 50}.Normalize(2, 500)
	require.NoError(t, err)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 50, p.Skip())
}

func TestInfoPages(t *testing.T) {
	p := Page{Page: 1, Limit: 20}
	info := p.Info(45)
	assert.EqualValues(t, 3, info.Pages)
	assert.EqualValues(t, 45, info.Total)

	assert.EqualValues(t, 0, p.Info(0).Pages)
	assert.EqualValues(t, 1, p.Info(20).Pages)
	assert.EqualValues(t, 2, p.Info(21).Pages)
}

func TestSlice(t *testing.T) {
	start, end := Page{Page: 3, Limit: 20}.Slice(45)
	assert.Equal(t, 40, start)
	assert.Equal(t, 45, end)

	start, end = Page{Page: 4, Limit: 20}.Slice(45)
	assert.Equal(t, 45, start)
	assert.Equal(t, 45, end)
}

func TestSliceOutOfRange(t *testing.T) {
	start, end := Page{Page: 1 << 62, Limit: 20}.Slice(45)
	assert.Equal(t, 45, start)
	assert.Equal(t, 45, end)

	start, end = Page{Page: 1, Limit: math.MaxInt}.Slice(45)
	assert.Equal(t, 0, start)
	assert.Equal(t, 45, end)
}
