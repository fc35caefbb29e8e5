package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starchart/config"
)

func TestNewReportLayout(t *testing.T) {
	layout, err := NewReportLayout(config.Report{
		FocusMember:          "莫寒",
		CmpHighlightedRows:   []int{1, 5},
		CmpThickBorderedRows: []int{10},
		GroupCutoffRow:       16,
	})
	require.NoError(t, err)
	assert.Equal(t, Style{VerticalHeader: true, HighlightedRows: []int{1, 5}, ThickBorderedRows: []int{10}}, layout.Comparison)
	assert.Equal(t, Style{CutoffRow: 16}, layout.Group)
	assert.Equal(t, "莫寒", layout.FocusMember)

	_, err = NewReportLayout(config.Report{CmpHighlightedRows: []int{0}})
	assert.ErrorIs(t, err, ErrMalformedStyleDirective)
	_, err = NewReportLayout(config.Report{GroupCutoffRow: -1})
	assert.ErrorIs(t, err, ErrMalformedStyleDirective)
}
