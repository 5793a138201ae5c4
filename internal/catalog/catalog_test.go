package catalog

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp-meter/circles/internal/config"
)

func unitPage(t *testing.T) *Page {
	t.Helper()
	p, err := NewPage(config.UnitPage())
	require.NoError(t, err)
	return p
}

func prefixPage(t *testing.T) *Page {
	t.Helper()
	p, err := NewPage(config.PrefixPage())
	require.NoError(t, err)
	return p
}

func TestNewPageBuildsUnits(t *testing.T) {
	p := unitPage(t)

	units := p.Units()
	require.NotEmpty(t, units)
	assert.Equal(t, "°C", units[0].Label)
	assert.Equal(t, "섭씨", units[0].Name)

	u, ok := p.Unit("m")
	require.True(t, ok)
	assert.Equal(t, "미터", u.Name)
	assert.Equal(t, "meter", u.ID)
	assert.True(t, u.Supported())

	yd, ok := p.Unit("yd")
	require.True(t, ok)
	assert.False(t, yd.Supported())

	_, ok = p.Unit("nope")
	assert.False(t, ok)
}

func TestUnitsReturnsCopy(t *testing.T) {
	p := unitPage(t)
	units := p.Units()
	units[0].Name = "changed"
	u, _ := p.Unit(units[0].Label)
	assert.Equal(t, "섭씨", u.Name)
}

func TestNewPageRejectsDuplicateLabels(t *testing.T) {
	pc := config.UnitPage()
	pc.Units = append(pc.Units, config.UnitConfig{Label: " m ", Name: "또 미터", ID: "meter2"})
	_, err := NewPage(pc)
	assert.Error(t, err)
}

func TestIDForTrimsName(t *testing.T) {
	p := prefixPage(t)

	id, ok := p.IDFor("  킬로 ")
	require.True(t, ok)
	assert.Equal(t, "kilo", id)

	_, ok = p.IDFor("펨토")
	assert.False(t, ok, "unmapped circle has no id")

	u, ok := p.UnitByName(" 메가")
	require.True(t, ok)
	assert.Equal(t, "M", u.Label)
}

func TestResolve(t *testing.T) {
	p := unitPage(t)

	from, to, err := p.Resolve("미터", "피트")
	require.NoError(t, err)
	assert.Equal(t, "meter", from)
	assert.Equal(t, "ft", to)

	_, _, err = p.Resolve("야드", "피트")
	assert.True(t, errors.Is(err, ErrUnknownUnit))

	_, _, err = p.Resolve("미터", "야드")
	assert.True(t, errors.Is(err, ErrUnknownUnit))
}

func TestPrepareValue(t *testing.T) {
	prefix := prefixPage(t)
	v, err := prefix.PrepareValue("abc")
	require.NoError(t, err, "prefix page forwards the raw string")
	assert.Equal(t, "abc", v)

	unit := unitPage(t)
	v, err = unit.PrepareValue("10")
	require.NoError(t, err)
	assert.Equal(t, "10", v)

	v, err = unit.PrepareValue("1.50kg")
	require.NoError(t, err)
	assert.Equal(t, "1.5", v)

	v, err = unit.PrepareValue("-0")
	require.NoError(t, err)
	assert.Equal(t, "0", v)

	v, err = unit.PrepareValue("0.0000005")
	require.NoError(t, err)
	assert.Equal(t, "5e-7", v)

	_, err = unit.PrepareValue("abc")
	assert.True(t, errors.Is(err, ErrInvalidNumber))
}

func TestParseLeadingFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"10", 10, true},
		{"  -3.25 ", -3.25, true},
		{"+.5", 0.5, true},
		{"5.", 5, true},
		{"1e3", 1000, true},
		{"2E-2x", 0.02, true},
		{"12abc", 12, true},
		{"1e", 1, true},
		{"abc", 0, false},
		{"", 0, false},
		{".", 0, false},
		{"-", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseLeadingFloat(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-12, "input %q", tt.in)
		}
	}

	inf, ok := ParseLeadingFloat("-Infinity")
	require.True(t, ok)
	assert.True(t, math.IsInf(inf, -1))
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{10, "10"},
		{1.5, "1.5"},
		{-0.25, "-0.25"},
		{0, "0"},
		{0.00001, "0.00001"},
		{1e-8, "1e-8"},
		{1e-6, "0.000001"},
		{5e-7, "5e-7"},
		{-1e-7, "-1e-7"},
		{math.Copysign(0, -1), "0"},
		{1.5e21, "1.5e+21"},
		{123456789012, "123456789012"},
		{math.Inf(1), "Infinity"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), "input %v", tt.in)
	}
}

func TestCatalog(t *testing.T) {
	cat, err := New(config.DefaultConfig().Pages)
	require.NoError(t, err)

	pages := cat.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, "prefix", pages[0].ID)

	p, err := cat.Page("unit")
	require.NoError(t, err)
	assert.Equal(t, config.PageKindUnit, p.Kind)

	_, err = cat.Page("missing")
	assert.True(t, errors.Is(err, ErrUnknownPage))
}

func TestCatalogRejectsDuplicatePages(t *testing.T) {
	_, err := New([]config.PageConfig{config.UnitPage(), config.UnitPage()})
	assert.Error(t, err)
}
