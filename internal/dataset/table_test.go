package dataset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/ruleminer/internal/miner"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New([]string{"bread", "milk", "eggs"}, [][]bool{
		{true, true, false},
		{true, false, true},
		{true, true, true},
		{false, true, false},
	})
	require.NoError(t, err)
	return tbl
}

func TestNew_Validation(t *testing.T) {
	_, err := New([]string{"a", "a"}, nil)
	assert.ErrorIs(t, err, ErrDuplicateColumn)

	_, err = New([]string{"a", " "}, nil)
	assert.ErrorIs(t, err, ErrEmptyColumnName)

	_, err = New([]string{"a", "b"}, [][]bool{{true}})
	assert.ErrorIs(t, err, ErrRaggedRow)

	tbl, err := New([]string{"a"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.RowCount())
}

func TestNew_CopiesInput(t *testing.T) {
	cols := []string{"a", "b"}
	rows := [][]bool{{true, true}}
	tbl := MustNew(cols, rows)

	cols[0] = "z"
	rows[0][0] = false

	assert.Equal(t, []string{"a", "b"}, tbl.ColumnNames())
	n, err := tbl.RowMatches([]string{"a"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRowMatches(t *testing.T) {
	tbl := sampleTable(t)

	tests := []struct {
		items []string
		want  int
	}{
		{[]string{"bread"}, 3},
		{[]string{"milk"}, 3},
		{[]string{"bread", "milk"}, 2},
		{[]string{"milk", "bread"}, 2},
		{[]string{"bread", "milk", "eggs"}, 1},
		{[]string{"milk", "eggs"}, 1},
	}
	for _, tt := range tests {
		got, err := tbl.RowMatches(tt.items)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "items %v", tt.items)
	}
}

func TestRowMatches_UnknownColumn(t *testing.T) {
	tbl := sampleTable(t)
	_, err := tbl.RowMatches([]string{"bread", "butter"})
	assert.True(t, errors.Is(err, miner.ErrUnknownColumn))
}

func TestValue(t *testing.T) {
	tbl := sampleTable(t)

	v, err := tbl.Value(1, "eggs")
	require.NoError(t, err)
	assert.True(t, v)

	_, err = tbl.Value(9, "eggs")
	assert.Error(t, err)

	_, err = tbl.Value(0, "butter")
	assert.ErrorIs(t, err, miner.ErrUnknownColumn)
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		in      any
		want    bool
		wantErr bool
	}{
		{true, true, false},
		{false, false, false},
		{nil, false, false},
		{1, true, false},
		{0, false, false},
		{int64(-3), true, false},
		{uint8(0), false, false},
		{0.0, false, false},
		{0.5, true, false},
		{"true", true, false},
		{"1", true, false},
		{"F", false, false},
		{"", false, false},
		{"maybe", false, true},
		{struct{}{}, false, true},
	}
	for _, tt := range tests {
		got, err := Truthy(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrNotBoolean, "input %#v", tt.in)
			continue
		}
		require.NoError(t, err, "input %#v", tt.in)
		assert.Equal(t, tt.want, got, "input %#v", tt.in)
	}
}

func TestFromValues(t *testing.T) {
	tbl, err := FromValues([]string{"a", "b"}, [][]any{
		{1, "true"},
		{0, true},
		{"yes?", nil},
	})
	assert.Nil(t, tbl)
	assert.ErrorIs(t, err, ErrNotBoolean)

	tbl, err = FromValues([]string{"a", "b"}, [][]any{
		{1, "true"},
		{0, true},
		{2.5, nil},
	})
	require.NoError(t, err)
	n, err := tbl.RowMatches([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
