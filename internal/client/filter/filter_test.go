package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atinyakov/LearnLingo/internal/models"
)

func tutors() []models.Tutor {
	return []models.Tutor{
		{ID: "t1", Languages: []string{"French", "English"}, Levels: []string{"A1", "B2"}, PricePerHour: 30},
		{ID: "t2", Languages: []string{"German"}, Levels: []string{"A1"}, PricePerHour: 27.5},
		{ID: "t3", Languages: []string{"French"}, Levels: []string{"C1"}, PricePerHour: 30},
		{ID: "t4", Languages: []string{"Spanish"}, Levels: []string{"B2"}, PricePerHour: 25},
	}
}

func TestOptions(t *testing.T) {
	got := Options(tutors())
	assert.Equal(t, []string{"English", "French", "German", "Spanish"}, got.Languages)
	assert.Equal(t, []string{"A1", "B2", "C1"}, got.Levels)
	assert.Equal(t, []string{"25$", "27.5$", "30$"}, got.Prices)
}

func TestOptions_NumericPriceOrder(t *testing.T) {
	got := Options([]models.Tutor{{PricePerHour: 100}, {PricePerHour: 9}, {PricePerHour: 45}})
	assert.Equal(t, []string{"9$", "45$", "100$"}, got.Prices)
}

func TestOptions_Empty(t *testing.T) {
	got := Options(nil)
	assert.Empty(t, got.Languages)
	assert.Empty(t, got.Levels)
	assert.Empty(t, got.Prices)
}

func TestMatch(t *testing.T) {
	items := tutors()
	tests := []struct {
		name string
		sel  Selection
		want []string
	}{
		{"no constraint", NoConstraint(), []string{"t1", "t2", "t3", "t4"}},
		{"language", Selection{Language: "French", Level: All, Price: All}, []string{"t1", "t3"}},
		{"language and level", Selection{Language: "French", Level: "B2", Price: All}, []string{"t1"}},
		{"price", Selection{Language: All, Level: All, Price: "30$"}, []string{"t1", "t3"}},
		{"fractional price", Selection{Language: All, Level: All, Price: "27.5$"}, []string{"t2"}},
		{"all three", Selection{Language: "French", Level: "C1", Price: "30$"}, []string{"t3"}},
		{"stale language", Selection{Language: "Klingon", Level: All, Price: All}, []string{}},
		{"unparsable price", Selection{Language: All, Level: All, Price: "cheap"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := []string{}
			for _, tu := range Apply(items, tt.sel) {
				got = append(got, tu.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatch_FieldOrderDoesNotMatter(t *testing.T) {
	items := tutors()
	a := NewEngine()
	a.SetLanguage("French")
	a.SetLevel("B2")
	a.SetPrice("30$")

	b := NewEngine()
	b.SetPrice("30$")
	b.SetLanguage("French")
	b.SetLevel("B2")

	assert.Equal(t, a.Selection(), b.Selection())
	assert.Equal(t, Apply(items, a.Selection()), Apply(items, b.Selection()))
}

func TestShowLoadMore(t *testing.T) {
	french := Selection{Language: "French", Level: All, Price: All}
	tests := []struct {
		name     string
		hasMore  bool
		sel      Selection
		filtered int
		want     bool
	}{
		{"exhausted", false, NoConstraint(), 4, false},
		{"exhausted with filter", false, french, 0, false},
		{"no filter", true, NoConstraint(), 4, true},
		{"filter with few matches", true, french, 2, true},
		{"filter with no matches", true, french, 0, true},
		{"filter with a full page", true, french, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShowLoadMore(tt.hasMore, tt.sel, tt.filtered, 4))
		})
	}
}

func TestEngine_ResetIsOneTransition(t *testing.T) {
	e := NewEngine()
	e.SetLanguage("French")
	e.SetLevel("B2")
	e.SetPrice("30$")

	var seen []Selection
	unsubscribe := e.Subscribe(func(s Selection) { seen = append(seen, s) })
	defer unsubscribe()

	e.Reset()
	assert.Equal(t, []Selection{NoConstraint()}, seen)
	assert.False(t, e.Selection().Active())

	e.Reset()
	assert.Len(t, seen, 1, "resetting a clear selection publishes nothing")
}

func TestEngine_EmptyValueClears(t *testing.T) {
	e := NewEngine()
	e.SetLevel("A1")
	e.SetLevel("")
	assert.Equal(t, All, e.Selection().Level)
}

func TestPriceRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 9, 27.5, 100} {
		p, ok := ParsePrice(FormatPrice(v))
		assert.True(t, ok)
		assert.Equal(t, v, p)
	}
}
