package mcp

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sp-meter/circles/internal/backend"
	"github.com/sp-meter/circles/internal/backend/backendtest"
	"github.com/sp-meter/circles/internal/catalog"
	"github.com/sp-meter/circles/internal/config"
	"github.com/sp-meter/circles/internal/db"
	"github.com/sp-meter/circles/internal/history"
)

type testEnv struct {
	srv    *Server
	unit   *backendtest.Fake
	prefix *backendtest.Fake
	store  *history.Store
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	cat, err := catalog.New(config.DefaultConfig().Pages)
	require.NoError(t, err)

	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	env := &testEnv{
		unit:   backendtest.New(),
		prefix: backendtest.New(),
		store:  history.NewStore(database),
	}
	env.srv = NewServer(cat, map[string]backend.API{
		"unit":   env.unit,
		"prefix": env.prefix,
	}, Options{Recorder: env.store, DefaultPage: "unit"})
	return env
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])
	return tc.Text
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{listUnitsTool, "list_units"},
		{unitInfoTool, "unit_info"},
		{convertUnitsTool, "convert_units"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			assert.Equal(t, tt.wantName, tt.tool.Name)
			assert.NotEmpty(t, tt.tool.Description)
		})
	}
}

func TestNewServer(t *testing.T) {
	env := setupTest(t)

	require.NotNil(t, env.srv.mcp)
	assert.Equal(t, "unit", env.srv.defaultPage)
}

func TestHandleListUnits(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	t.Run("all pages", func(t *testing.T) {
		result, err := env.srv.handleListUnits(ctx, call(map[string]any{}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		out := text(t, result)
		assert.Contains(t, out, "## 접두어 변환 (prefix, prefix)")
		assert.Contains(t, out, "## 단위 변환 (unit, unit)")
		assert.Contains(t, out, "- k 킬로: kilo")
		assert.Contains(t, out, "- yd 야드: unsupported")
	})

	t.Run("one page", func(t *testing.T) {
		result, err := env.srv.handleListUnits(ctx, call(map[string]any{"page": "prefix"}))
		require.NoError(t, err)
		out := text(t, result)
		assert.Contains(t, out, "킬로")
		assert.NotContains(t, out, "미터")
	})

	t.Run("unknown page", func(t *testing.T) {
		result, err := env.srv.handleListUnits(ctx, call(map[string]any{"page": "nope"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestHandleUnitInfo(t *testing.T) {
	env := setupTest(t)
	env.unit.SetInfo("meter", &backend.UnitInfo{Name: "미터", Symbol: "m", Dimension: "L", Desc: "길이"})
	ctx := context.Background()

	t.Run("by label", func(t *testing.T) {
		result, err := env.srv.handleUnitInfo(ctx, call(map[string]any{"unit": "m"}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		out := text(t, result)
		assert.Contains(t, out, "# 미터")
		assert.Contains(t, out, "- symbol: m")
		assert.Contains(t, out, "- dimension: L")
		assert.Contains(t, out, "길이")
	})

	t.Run("by name on prefix page", func(t *testing.T) {
		result, err := env.srv.handleUnitInfo(ctx, call(map[string]any{"unit": "킬로", "page": "prefix"}))
		require.NoError(t, err)
		require.False(t, result.IsError)
		assert.Contains(t, text(t, result), "- magnification: -")
		assert.Equal(t, []backendtest.Call{{Endpoint: "info", UnitID: "kilo"}}, env.prefix.Calls())
	})

	t.Run("unsupported unit", func(t *testing.T) {
		result, err := env.srv.handleUnitInfo(ctx, call(map[string]any{"unit": "yd"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "해당 단위 설명 데이터가 없습니다.", text(t, result))
	})

	t.Run("unknown unit", func(t *testing.T) {
		result, err := env.srv.handleUnitInfo(ctx, call(map[string]any{"unit": "zz"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})

	t.Run("missing unit", func(t *testing.T) {
		result, err := env.srv.handleUnitInfo(ctx, call(map[string]any{}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}

func TestHandleConvertUnits(t *testing.T) {
	ctx := context.Background()

	t.Run("converts", func(t *testing.T) {
		env := setupTest(t)
		env.unit.SetConversion("meter", "ft", &backend.Conversion{Result: "32.8084", Formula: "10 × 3.28084"})

		result, err := env.srv.handleConvertUnits(ctx, call(map[string]any{"from": "미터", "to": "ft", "value": "10"}))
		require.NoError(t, err)
		require.False(t, result.IsError)

		out := text(t, result)
		assert.Contains(t, out, "10 미터 = 32.8084 피트")
		assert.Contains(t, out, "formula: 10 × 3.28084")

		entries, err := env.store.Query(ctx, history.Filter{SessionID: "mcp"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, history.OutcomeOK, entries[0].Outcome)
	})

	t.Run("same unit", func(t *testing.T) {
		env := setupTest(t)
		result, err := env.srv.handleConvertUnits(ctx, call(map[string]any{"from": "m", "to": "미터", "value": "1"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Zero(t, env.unit.CallCount(""))
	})

	t.Run("invalid number", func(t *testing.T) {
		env := setupTest(t)
		result, err := env.srv.handleConvertUnits(ctx, call(map[string]any{"from": "m", "to": "ft", "value": "abc"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "유효한 숫자를 입력해주세요.", text(t, result))
		assert.Zero(t, env.unit.CallCount(""))
	})

	t.Run("raw value on prefix page", func(t *testing.T) {
		env := setupTest(t)
		result, err := env.srv.handleConvertUnits(ctx, call(map[string]any{"from": "k", "to": "M", "value": "abc", "page": "prefix"}))
		require.NoError(t, err)
		assert.False(t, result.IsError)
		assert.Equal(t, []backendtest.Call{{Endpoint: "result", FromID: "kilo", ToID: "mega", Value: "abc"}}, env.prefix.Calls())
	})

	t.Run("unmapped", func(t *testing.T) {
		env := setupTest(t)
		result, err := env.srv.handleConvertUnits(ctx, call(map[string]any{"from": "m", "to": "yd", "value": "1"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Equal(t, "해당 단위 변환 API가 없습니다.", text(t, result))
	})

	t.Run("backend failure", func(t *testing.T) {
		env := setupTest(t)
		env.unit.ConvertErr = &backend.StatusError{Endpoint: "result", Code: 500}
		result, err := env.srv.handleConvertUnits(ctx, call(map[string]any{"from": "m", "to": "ft", "value": "1"}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
		assert.Contains(t, text(t, result), "변환 중 오류 발생")
	})

	t.Run("missing value", func(t *testing.T) {
		env := setupTest(t)
		result, err := env.srv.handleConvertUnits(ctx, call(map[string]any{"from": "m", "to": "ft", "value": "  "}))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	})
}
