package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"seniorkiosk/internal/catalog"
	"seniorkiosk/internal/config"
	"seniorkiosk/internal/intent"
	"seniorkiosk/internal/kiosk"
	"seniorkiosk/internal/models"
	"seniorkiosk/internal/monitoring"
	"seniorkiosk/internal/order"
)

type stubHistory struct {
	orders []models.CompletedOrder
	err    error
	limit  int
}

func (s *stubHistory) RecentOrders(_ context.Context, limit int) ([]models.CompletedOrder, error) {
	s.limit = limit
	return s.orders, s.err
}

type fixture struct {
	api     *KioskAPI
	session *kiosk.Session
	monitor *monitoring.Monitor
}

func setupAPI(t *testing.T, mutate func(*Options)) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c := catalog.Default()
	monitor := monitoring.NewMonitor()
	session := kiosk.NewSession(kiosk.Config{LandingDelay: time.Millisecond}, kiosk.Deps{
		Catalog:   c,
		Resolver:  intent.NewResolver(nil, intent.NewKeywordMatcher(c), time.Second, zap.NewNop()),
		Finalizer: order.NewFinalizer(order.NewMemoryStore(), zap.NewNop()),
		Observer:  monitor,
	})
	session.Start()
	t.Cleanup(session.Close)
	require.Eventually(t, func() bool {
		return session.Snapshot().Screen == models.ScreenMenu
	}, time.Second, 5*time.Millisecond)

	opts := Options{
		Session:    session,
		Catalog:    c,
		Monitor:    monitor,
		Classifier: ClassifierInfo{Provider: "none"},
	}
	if mutate != nil {
		mutate(&opts)
	}
	return &fixture{api: NewKioskAPI(opts), session: session, monitor: monitor}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	f.api.Router.ServeHTTP(rec, req)
	return rec
}

func decodeAction(t *testing.T, rec *httptest.ResponseRecorder) actionResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp actionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (f *fixture) say(t *testing.T, text string) actionResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/v1/voice/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var activated struct {
		TurnID int64 `json:"turn_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &activated))

	return decodeAction(t, f.do(t, http.MethodPost, "/api/v1/voice/transcript", gin.H{
		"turn_id":    activated.TurnID,
		"transcript": text,
	}))
}

func TestHealth(t *testing.T) {
	f := setupAPI(t, nil)

	rec := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestGetMenu(t *testing.T) {
	f := setupAPI(t, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/menu", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []models.MenuItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 4)
	assert.Equal(t, "아메리카노", resp.Items[0].Name)
	assert.True(t, resp.Items[3].SoldOut)
}

func TestVoiceOrderFlow(t *testing.T) {
	f := setupAPI(t, nil)

	resp := f.say(t, "아메리카노 주세요")
	assert.Equal(t, models.ScreenMenu, resp.Screen)
	assert.Equal(t, "따뜻한 아메리카노를 담았습니다. 더 필요하시면 말씀해주세요.", resp.Message)
	require.Len(t, resp.Session.Cart, 1)

	resp = f.say(t, "결제해줘")
	assert.Equal(t, models.ScreenSuccess, resp.Screen)
	assert.Equal(t, "주문이 완료되었습니다. 주문번호는 101번입니다. 약 4분 후에 준비됩니다.", resp.Message)
	require.NotNil(t, resp.Session.Order)
	assert.Equal(t, 101, resp.Session.Order.Number)
	assert.Equal(t, 3000, resp.Session.Order.Total)

	resp = decodeAction(t, f.do(t, http.MethodPost, "/api/v1/home", nil))
	assert.Equal(t, models.ScreenMenu, resp.Screen)
	assert.Empty(t, resp.Session.Cart)
}

func TestVoiceTurnGuards(t *testing.T) {
	f := setupAPI(t, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/voice/activate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/voice/activate", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), kiosk.ErrVoiceBusy.Error())

	rec = f.do(t, http.MethodPost, "/api/v1/voice/transcript", gin.H{"turn_id": 99, "transcript": "결제"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/voice/transcript", gin.H{"transcript": "결제"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/voice/end", gin.H{"turn_id": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, f.session.Snapshot().Listening)

	rec = f.do(t, http.MethodPost, "/api/v1/voice/unsupported", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/v1/voice/activate", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), kiosk.ErrVoiceUnavailable.Error())
}

func TestTouchFlow(t *testing.T) {
	f := setupAPI(t, nil)

	rec := f.do(t, http.MethodPost, "/api/v1/menu/99/select", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeAction(t, f.do(t, http.MethodPost, "/api/v1/menu/4/select", nil))
	assert.Equal(t, models.ScreenMenu, resp.Screen)
	require.NotNil(t, resp.Session.Alert)

	rec = f.do(t, http.MethodPost, "/api/v1/alert/dismiss", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, f.session.Snapshot().Alert)

	resp = decodeAction(t, f.do(t, http.MethodPost, "/api/v1/menu/2/select", nil))
	assert.Equal(t, models.ScreenMenuDetail, resp.Screen)
	assert.Equal(t, "카페라떼입니다. 가격은 3,500원입니다. 온도를 선택해주세요.", resp.Message)

	rec = f.do(t, http.MethodPost, "/api/v1/detail/temperature", gin.H{"temperature": "warm"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp = decodeAction(t, f.do(t, http.MethodPost, "/api/v1/detail/temperature", gin.H{"temperature": "ice"}))
	assert.Equal(t, models.Ice, resp.Session.Temperature)

	resp = decodeAction(t, f.do(t, http.MethodPost, "/api/v1/detail/add", nil))
	assert.Equal(t, models.ScreenMenu, resp.Screen)
	require.Len(t, resp.Session.Cart, 1)
	assert.Equal(t, models.Ice, resp.Session.Cart[0].Temperature)

	resp = decodeAction(t, f.do(t, http.MethodPost, "/api/v1/cart/open", nil))
	assert.Equal(t, models.ScreenCartView, resp.Screen)

	rec = f.do(t, http.MethodDelete, "/api/v1/cart/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp = decodeAction(t, f.do(t, http.MethodDelete, "/api/v1/cart/5", nil))
	assert.Equal(t, "빼실 메뉴를 찾지 못했습니다.", resp.Message)
	assert.Len(t, resp.Session.Cart, 1)

	resp = decodeAction(t, f.do(t, http.MethodPost, "/api/v1/checkout", nil))
	assert.Equal(t, models.ScreenSuccess, resp.Screen)
	assert.Equal(t, 3500, resp.Session.Order.Total)

	resp = decodeAction(t, f.do(t, http.MethodPost, "/api/v1/checkout", nil))
	assert.True(t, resp.Ignored)
}

func TestBackAndRemove(t *testing.T) {
	f := setupAPI(t, nil)

	f.say(t, "유자차")
	f.say(t, "라떼")
	decodeAction(t, f.do(t, http.MethodPost, "/api/v1/cart/open", nil))

	resp := decodeAction(t, f.do(t, http.MethodDelete, "/api/v1/cart/0", nil))
	assert.Equal(t, "유자차를 뺐습니다.", resp.Message)
	require.Len(t, resp.Session.Cart, 1)
	assert.Equal(t, "카페라떼", resp.Session.Cart[0].Item.Name)

	resp = decodeAction(t, f.do(t, http.MethodPost, "/api/v1/back", nil))
	assert.Equal(t, models.ScreenMenu, resp.Screen)
	assert.Equal(t, "메뉴를 더 고르러 갑니다.", resp.Message)
}

func TestDiagnostics(t *testing.T) {
	f := setupAPI(t, func(o *Options) {
		o.Classifier = ClassifierInfo{Provider: "openai", Remote: true, BreakerState: func() string { return "closed" }}
	})
	f.say(t, "아메리카노")

	rec := f.do(t, http.MethodGet, "/api/v1/diagnostics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Classifier  map[string]interface{}  `json:"classifier"`
		Metrics     map[string]interface{}  `json:"metrics"`
		RecentTurns []monitoring.TurnRecord `json:"recent_turns"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "openai", resp.Classifier["provider"])
	assert.Equal(t, "closed", resp.Classifier["breaker"])
	assert.Contains(t, resp.Metrics, "uptime_seconds")
	require.Len(t, resp.RecentTurns, 1)
	assert.Equal(t, models.ActionAddOrder, resp.RecentTurns[0].Action)
}

func TestResetDiagnostics(t *testing.T) {
	f := setupAPI(t, nil)
	f.monitor.RecordMetric("store_driver", "memory")
	f.say(t, "아메리카노")

	rec := f.do(t, http.MethodPost, "/api/v1/diagnostics/reset", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Empty(t, f.monitor.RecentTurns())
	_, ok := f.monitor.GetMetric("store_driver")
	assert.False(t, ok)
}

func TestRecentOrders(t *testing.T) {
	history := &stubHistory{orders: []models.CompletedOrder{{Number: 102}, {Number: 101}}}
	f := setupAPI(t, func(o *Options) { o.Orders = history })

	rec := f.do(t, http.MethodGet, "/api/v1/orders/recent?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, history.limit)
	assert.Contains(t, rec.Body.String(), `"number":102`)

	rec = f.do(t, http.MethodGet, "/api/v1/orders/recent?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	history.err = errors.New("db down")
	rec = f.do(t, http.MethodGet, "/api/v1/orders/recent", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 20, history.limit)
}

func TestRecentOrdersRouteRequiresHistory(t *testing.T) {
	f := setupAPI(t, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/orders/recent", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := setupAPI(t, func(o *Options) { o.AllowedOrigins = []string{"http://kiosk.local"} })

	rec := f.do(t, http.MethodOptions, "/api/v1/checkout", nil, "Origin", "http://kiosk.local")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://kiosk.local", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = f.do(t, http.MethodGet, "/api/v1/menu", nil, "Origin", "http://evil.example")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuth(t *testing.T) {
	authCfg := config.AuthConfig{Enabled: true, Secret: "kiosk-secret", Issuer: "seniorkiosk", TokenTTL: time.Hour}
	f := setupAPI(t, func(o *Options) { o.Auth = authCfg })

	rec := f.do(t, http.MethodGet, "/api/v1/menu", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	token, err := IssueDeviceToken(authCfg, "kiosk-1", time.Now())
	require.NoError(t, err)

	rec = f.do(t, http.MethodGet, "/api/v1/menu", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/menu?token="+token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	expired, err := IssueDeviceToken(authCfg, "kiosk-1", time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/api/v1/menu", nil, "Authorization", "Bearer "+expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other := authCfg
	other.Secret = "another-secret"
	forged, err := IssueDeviceToken(other, "kiosk-1", time.Now())
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/api/v1/menu", nil, "Authorization", "Bearer "+forged)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	wrongIssuer := authCfg
	wrongIssuer.Issuer = "someone-else"
	misissued, err := IssueDeviceToken(wrongIssuer, "kiosk-1", time.Now())
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/api/v1/menu", nil, "Authorization", "Bearer "+misissued)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIssueDeviceTokenValidation(t *testing.T) {
	_, err := IssueDeviceToken(config.AuthConfig{}, "kiosk-1", time.Now())
	assert.Error(t, err)

	_, err = IssueDeviceToken(config.AuthConfig{Secret: "s"}, "", time.Now())
	assert.Error(t, err)
}
