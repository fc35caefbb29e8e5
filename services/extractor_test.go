package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starchart/document"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func parseFixture(t *testing.T, name string) *document.Node {
	t.Helper()
	doc, err := document.Parse(loadFixture(t, name))
	require.NoError(t, err)
	return doc
}

var referenceLabels = []string{
	"member", "status", "followers", "following", "rising-star-rank",
	"总榜排名", "总榜得分", "阅读数", "互动数", "社会影响力",
	"内地榜排名", "内地榜得分", "爱慕值", "正能量值", "守护值",
	"超话排名", "超话粉丝", "超话帖子", "签到人数", "去打榜",
	"周榜排名", "月榜排名", "提及量", "搜索量", "转发量", "评论量", "点赞量",
	"更新时间",
}

func TestExtractIndividualReferenceSchema(t *testing.T) {
	doc := parseFixture(t, "individual.json")

	rec, lines, err := ExtractIndividual(doc, IndividualPolicy{Name: "莫寒", ExpectedLines: DefaultIndividualLineCount})
	require.NoError(t, err)
	assert.Len(t, lines, DefaultIndividualLineCount)
	assert.Equal(t, referenceLabels, rec.Keys())

	get := func(k string) string {
		v, ok := rec.Get(k)
		require.True(t, ok, k)
		return v
	}
	assert.Equal(t, "莫寒", get(LabelMember))
	assert.Equal(t, StatusGold, get(LabelStatus))
	assert.Equal(t, "5234567", get(LabelFollowers))
	assert.Equal(t, "321", get(LabelFollowing))
	assert.Equal(t, "3", get(LabelRisingStarRank))
	assert.Equal(t, "2", get("内地榜排名"))
	assert.Equal(t, "10:00", get("更新时间"))
}

func TestExtractIndividualMissingFieldIsSchemaMismatch(t *testing.T) {
	raw := strings.Replace(string(loadFixture(t, "individual.json")), `"friends_count": 321`, `"friends_count": 0`, 1)
	doc, err := document.Parse([]byte(raw))
	require.NoError(t, err)

	_, lines, err := ExtractIndividual(doc, IndividualPolicy{Name: "莫寒", ExpectedLines: DefaultIndividualLineCount})
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Len(t, lines, DefaultIndividualLineCount-1)
}

func TestIndividualYellowStatus(t *testing.T) {
	doc := document.Object(
		document.F("screen_name", document.String("莫寒")),
		document.F("verified_type_ext", document.Int(0)),
		document.F("followers_count", document.Int(0)),
	)
	lines := IndividualLines(doc, IndividualPolicy{Name: "莫寒"})
	assert.Equal(t, []string{"member:莫寒", "status:" + StatusYellow}, lines)
}

func TestIndividualPredicateOrderWithinNode(t *testing.T) {
	// Alle Prädikate feuern auf demselben Objekt; die Reihenfolge ist fest.
	doc := document.Object(
		document.F("desc_extr", document.String("d:1")),
		document.F("title_sub", document.String("t:1")),
		document.F("item_title", document.String("x")),
		document.F("item_desc", document.String("i")),
		document.F("data", document.String("-")),
		document.F("user", document.Object(document.F("screen_name", document.String("SNH48-莫寒")))),
		document.F("rank", document.Int(4)),
		document.F("friends_count", document.Int(2)),
		document.F("followers_count", document.Int(1)),
		document.F("screen_name", document.String("莫寒")),
	)
	lines := IndividualLines(doc, IndividualPolicy{Name: "莫寒"})
	assert.Equal(t, []string{
		"member:莫寒",
		"followers:1",
		"following:2",
		"rising-star-rank:4",
		"i:x",
		"t:1",
		"d:1",
	}, lines)
}

func TestIndividualMatchesDoNotPrune(t *testing.T) {
	doc := document.Object(
		document.F("title_sub", document.String("outer:1")),
		document.F("child", document.Object(document.F("title_sub", document.String("inner:2")))),
	)
	lines := IndividualLines(doc, IndividualPolicy{Name: "x"})
	assert.Equal(t, []string{"member:x", "outer:1", "inner:2"}, lines)
}

func TestExtractIndividualBareLineWithoutDelimiter(t *testing.T) {
	doc := document.Object(document.F("desc_extr", document.String("kein Trenner")))
	_, _, err := ExtractIndividual(doc, IndividualPolicy{Name: "x", ExpectedLines: 2})
	assert.ErrorIs(t, err, ErrParse)
}

func TestExtractGroupScenario(t *testing.T) {
	doc, err := document.Parse([]byte(`{"user": {"screen_name": "Alice-SNH48"}, "rank": 2, "data": "100票"}`))
	require.NoError(t, err)

	section, _, err := ExtractGroup(doc)
	require.NoError(t, err)
	require.Len(t, section.Entries, 1)
	assert.Equal(t, []Field{
		{Label: "rank", Value: "2"},
		{Label: "member", Value: "Alice"},
		{Label: "contribution", Value: "100票"},
	}, section.Entries[0].Fields())
	assert.Equal(t, 0, section.Preamble.Len())
}

func TestExtractGroupFixture(t *testing.T) {
	section, blocks, err := ExtractGroup(parseFixture(t, "group.json"))
	require.NoError(t, err)
	require.Len(t, blocks, 4)
	assert.Equal(t, []string{"更新时间"}, section.Preamble.Keys())

	require.Len(t, section.Entries, 3)
	for _, entry := range section.Entries {
		assert.Equal(t, []string{"rank", "member", "contribution", "涨跌", "昨日排名"}, entry.Keys())
	}
	members := []string{}
	for _, entry := range section.Entries {
		m, _ := entry.Get(LabelMember)
		members = append(members, m)
	}
	assert.Equal(t, []string{"李艺彤", "莫寒", "黄婷婷"}, members)

	c, _ := section.Entries[0].Get(LabelContribution)
	assert.Equal(t, "98.5万", c)

	for _, entry := range section.Entries {
		for _, k := range entry.Keys() {
			assert.False(t, strings.HasPrefix(k, detailMarker), k)
		}
	}
}

func TestFormatBlocks(t *testing.T) {
	out := FormatBlocks([][]string{nil, {"rank:1", "member:a"}, {"rank:2", "member:b"}})
	assert.Equal(t, "\nrank:1\nmember:a\n\nrank:2\nmember:b\n", out)
}

func TestCheckLineCount(t *testing.T) {
	assert.NoError(t, CheckLineCount([]string{"a:1"}, 1))
	assert.NoError(t, CheckLineCount([]string{"a:1"}, 0))
	assert.ErrorIs(t, CheckLineCount([]string{"a:1"}, 28), ErrSchemaMismatch)
}
