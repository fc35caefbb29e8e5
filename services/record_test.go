package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLinesKeepsOrder(t *testing.T) {
	rec, err := ParseLines([]string{"member:莫寒", "status:金V", "更新时间:10:00"})
	require.NoError(t, err)
	assert.Equal(t, []string{"member", "status", "更新时间"}, rec.Keys())
	assert.Equal(t, []string{"莫寒", "金V", "10:00"}, rec.Values())

	v, ok := rec.Get("更新时间")
	require.True(t, ok)
	assert.Equal(t, "10:00", v)
}

func TestParseLinesMissingDelimiter(t *testing.T) {
	_, err := ParseLines([]string{"member:莫寒", "no delimiter here"})
	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorContains(t, err, "line 2")
}

func TestParseLinesDuplicateLabel(t *testing.T) {
	_, err := ParseLines([]string{"阅读数:1", "阅读数:2"})
	assert.ErrorIs(t, err, ErrDuplicateField)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestRecordFields(t *testing.T) {
	rec := NewRecord()
	require.NoError(t, rec.Set("rank", "1"))
	require.NoError(t, rec.Set("member", "莫寒"))
	assert.Equal(t, []Field{{Label: "rank", Value: "1"}, {Label: "member", Value: "莫寒"}}, rec.Fields())
	assert.Equal(t, 2, rec.Len())
}

func TestFormatLines(t *testing.T) {
	assert.Equal(t, "", FormatLines(nil))
	assert.Equal(t, "a:1\nb:2\n", FormatLines([]string{"a:1", "b:2"}))
}
