package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp-meter/circles/internal/backend"
	"github.com/sp-meter/circles/internal/catalog"
	"github.com/sp-meter/circles/internal/config"
	"github.com/sp-meter/circles/internal/render"
)

func TestHTMLTextExplanation(t *testing.T) {
	p, err := catalog.NewPage(config.UnitPage())
	require.NoError(t, err)

	out, err := render.New(p).Explanation(&backend.UnitInfo{
		Name:      "미터",
		Symbol:    "m",
		Dimension: "L",
		Desc:      "길이의\n기본 단위",
	})
	require.NoError(t, err)

	assert.Equal(t, "미터 단위 설명\n기호: m\n차원: L\n길이의\n기본 단위", htmlText(out))
}

func TestHTMLTextResult(t *testing.T) {
	p, err := catalog.NewPage(config.UnitPage())
	require.NoError(t, err)

	out, err := render.New(p).Result("미터", "피트", &backend.Conversion{Result: "32.8084", Formula: "10 × 3.28084"})
	require.NoError(t, err)

	assert.Equal(t, "미터 → 피트\n결과: 32.8084\n계산 과정: 10 × 3.28084", htmlText(out))
}

func TestHTMLTextMessageAndEntities(t *testing.T) {
	assert.Equal(t, "a & b", htmlText(`<div class="message">a &amp; b</div>`))
	assert.Equal(t, "", htmlText(""))
}

func TestFindUnit(t *testing.T) {
	p, err := catalog.NewPage(config.PrefixPage())
	require.NoError(t, err)

	u, err := findUnit(p, "k")
	require.NoError(t, err)
	assert.Equal(t, "kilo", u.ID)

	u, err = findUnit(p, "메가")
	require.NoError(t, err)
	assert.Equal(t, "M", u.Label)

	_, err = findUnit(p, "zz")
	assert.Error(t, err)
}
