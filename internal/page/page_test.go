package page

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
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
	router chi.Router
	unit   *backendtest.Fake
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
		unit:  backendtest.New(),
		store: history.NewStore(database),
	}
	apis := map[string]backend.API{
		"prefix": backendtest.New(),
		"unit":   env.unit,
	}

	h := New(cat, apis, Options{Recorder: env.store, DefaultPage: "unit"})
	env.router = chi.NewRouter()
	h.RegisterRoutes(env.router)
	return env
}

func dial(t *testing.T, env *testEnv, pageID string) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(env.router)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/" + pageID
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	return conn
}

type wireMessage struct {
	Type    string `json:"type"`
	Region  string `json:"region"`
	HTML    string `json:"html"`
	Label   string `json:"label"`
	Open    bool   `json:"open"`
	Content string `json:"content"`
}

func readMessage(t *testing.T, conn *websocket.Conn) wireMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg wireMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil reads messages until one matches and returns it.
func readUntil(t *testing.T, conn *websocket.Conn, match func(wireMessage) bool) wireMessage {
	t.Helper()
	for i := 0; i < 20; i++ {
		if msg := readMessage(t, conn); match(msg) {
			return msg
		}
	}
	t.Fatal("expected message never arrived")
	return wireMessage{}
}

func isRegion(region string) func(wireMessage) bool {
	return func(m wireMessage) bool { return m.Type == "region" && m.Region == region }
}

func TestRootRedirectsToDefaultPage(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/pages/unit", w.Header().Get("Location"))
}

func TestServePage(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest(http.MethodGet, "/pages/unit", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Contains(t, body, "<title>단위 변환</title>")
	assert.Contains(t, body, `data-label="ft"`)
	assert.Contains(t, body, "피트")
	assert.Contains(t, body, `id="explanation"`)
	assert.Contains(t, body, `id="result"`)
	assert.Contains(t, body, `href="/pages/prefix"`)
	assert.Contains(t, body, `const pageID = "unit";`)
	// 야드 has no backend id.
	assert.Contains(t, body, `circle unsupported" type="button" data-label="yd"`)
}

func TestServePageUnknown(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest(http.MethodGet, "/pages/nope", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPages(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/pages", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var pages []pageSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&pages))
	require.Len(t, pages, 2)
	assert.Equal(t, "prefix", pages[0].ID)
	assert.Equal(t, "/pages/unit", pages[1].URL)
	assert.Equal(t, 10, pages[1].Units)
}

func TestGetPage(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/pages/prefix", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var detail pageDetail
	require.NoError(t, json.NewDecoder(w.Body).Decode(&detail))
	assert.Equal(t, config.PageKindPrefix, detail.Kind)
	assert.Equal(t, config.DetailMagnification, detail.Detail)
	assert.False(t, detail.ValidateNumeric)
	assert.Contains(t, detail.Units, catalog.Unit{Label: "k", Name: "킬로", ID: "kilo"})
	assert.Contains(t, detail.Units, catalog.Unit{Label: "f", Name: "펨토"})
}

func TestGetPageUnknown(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/pages/nope", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWebSocketUnknownPage(t *testing.T) {
	env := setupTest(t)
	server := httptest.NewServer(env.router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/nope"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketConversionFlow(t *testing.T) {
	env := setupTest(t)
	env.unit.SetInfo("meter", &backend.UnitInfo{Name: "미터", Symbol: "m", Dimension: "L"})
	env.unit.SetConversion("meter", "ft", &backend.Conversion{Result: "32.8084", Formula: "10 × 3.28084"})
	conn := dial(t, env, "unit")

	require.NoError(t, conn.WriteJSON(event{Type: "click", Label: "m"}))
	msg := readMessage(t, conn)
	assert.Equal(t, wireMessage{Type: "tooltip", Label: "m", Open: true}, msg)

	require.NoError(t, conn.WriteJSON(event{Type: "confirm", Label: "m", Value: "10"}))
	msg = readMessage(t, conn)
	assert.Equal(t, wireMessage{Type: "tooltip", Label: "m", Open: false}, msg)

	msg = readUntil(t, conn, isRegion("explanation"))
	assert.Contains(t, msg.HTML, "<b>미터</b> 단위 설명")

	require.NoError(t, conn.WriteJSON(event{Type: "click", Label: "ft"}))
	msg = readUntil(t, conn, isRegion("result"))
	assert.Contains(t, msg.HTML, "32.8084")

	assert.Equal(t, []backendtest.Call{
		{Endpoint: "info", UnitID: "meter"},
		{Endpoint: "result", FromID: "meter", ToID: "ft", Value: "10"},
	}, env.unit.Calls())

	require.Eventually(t, func() bool {
		entries, err := env.store.Query(t.Context(), history.Filter{Page: "unit"})
		return err == nil && len(entries) == 2
	}, 5*time.Second, 10*time.Millisecond)
}

func TestWebSocketReset(t *testing.T) {
	env := setupTest(t)
	conn := dial(t, env, "unit")

	require.NoError(t, conn.WriteJSON(event{Type: "reset"}))

	got := []wireMessage{readMessage(t, conn), readMessage(t, conn), readMessage(t, conn)}
	assert.Equal(t, []wireMessage{
		{Type: "region", Region: "explanation"},
		{Type: "region", Region: "result"},
		{Type: "clear_inputs"},
	}, got)
}

func TestWebSocketDismiss(t *testing.T) {
	env := setupTest(t)
	conn := dial(t, env, "prefix")

	require.NoError(t, conn.WriteJSON(event{Type: "click", Label: "k"}))
	assert.True(t, readMessage(t, conn).Open)

	require.NoError(t, conn.WriteJSON(event{Type: "dismiss"}))
	assert.Equal(t, wireMessage{Type: "tooltip", Label: "k", Open: false}, readMessage(t, conn))
}

func TestWebSocketErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"invalid json", "{not json", "invalid message format"},
		{"unknown type", `{"type":"explode"}`, "unknown message type: explode"},
		{"unknown label", `{"type":"click","label":"zz"}`, "unknown circle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTest(t)
			conn := dial(t, env, "unit")

			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.payload)))
			msg := readMessage(t, conn)
			assert.Equal(t, "error", msg.Type)
			assert.Contains(t, msg.Content, tt.want)
		})
	}
}
