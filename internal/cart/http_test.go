package cart_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"RocketShoes/internal/cart"
	"RocketShoes/internal/catalog"
	"RocketShoes/internal/notify"
	"RocketShoes/internal/slot"
	"RocketShoes/pkg/kit"
)

type cartEnv struct {
	ts      *httptest.Server
	catalog *catalog.MemStore
	backend *slot.Memory
	reg     *cart.Registry
}

func newCartEnv(t *testing.T) *cartEnv {
	t.Helper()

	store := catalog.NewMemStore()
	store.Put(catalog.Product{ID: 1, Title: "Tênis de Caminhada", Price: 179.9, Image: "tenis1.jpg"}, 5)
	store.Put(catalog.Product{ID: 2, Title: "Tênis VR", Price: 139.9, Image: "tenis2.jpg"}, 1)
	catalogTS := newCatalogTS(t, store)

	backend := slot.NewMemory()
	promReg := prometheus.NewRegistry()
	reg := cart.NewRegistry(cart.RegistryDeps{
		Catalog: cart.NewCatalogClient(catalogTS.URL, time.Second),
		Backend: backend,
		Log:     zap.NewNop(),
		Metrics: cart.NewMetrics(promReg),
	})

	h := cart.NewHandler(&cart.Server{Sessions: reg, Log: zap.NewNop()}, cart.HTTPDeps{
		Log:      zap.NewNop(),
		Service:  "cart",
		Registry: promReg,
	})
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	return &cartEnv{ts: ts, catalog: store, backend: backend, reg: reg}
}

func (e *cartEnv) do(t *testing.T, method, path, session string, body any) (*http.Response, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, e.ts.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if session != "" {
		req.Header.Set(kit.SessionHeader, session)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, raw
}

func decodeCart(t *testing.T, raw []byte) cart.Cart {
	t.Helper()
	var c cart.Cart
	if err := json.Unmarshal(raw, &c); err != nil {
		t.Fatalf("decode cart: %v body=%s", err, raw)
	}
	return c
}

type errorBody struct {
	Error   string `json:"error"`
	Details struct {
		Kind      string    `json:"kind"`
		ProductID int       `json:"product_id"`
		Cart      cart.Cart `json:"cart"`
	} `json:"details"`
}

func decodeError(t *testing.T, raw []byte) errorBody {
	t.Helper()
	var e errorBody
	if err := json.Unmarshal(raw, &e); err != nil {
		t.Fatalf("decode error: %v body=%s", err, raw)
	}
	return e
}

func TestCartHTTP_RequiresSession(t *testing.T) {
	env := newCartEnv(t)

	resp, raw := env.do(t, http.MethodGet, "/cart", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status=%d body=%s", resp.StatusCode, raw)
	}
}

func TestCartHTTP_Flow(t *testing.T) {
	env := newCartEnv(t)
	const sid = "s_flow"

	resp, raw := env.do(t, http.MethodPost, "/cart/items/1", sid, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add status=%d body=%s", resp.StatusCode, raw)
	}
	c := decodeCart(t, raw)
	if len(c) != 1 || c[0].ID != 1 || c[0].Amount != 1 || c[0].Title != "Tênis de Caminhada" {
		t.Fatalf("cart=%+v", c)
	}

	resp, raw = env.do(t, http.MethodPut, "/cart/items/1", sid, map[string]any{"amount": 4})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status=%d body=%s", resp.StatusCode, raw)
	}
	if c := decodeCart(t, raw); c[0].Amount != 4 {
		t.Fatalf("cart=%+v", c)
	}

	resp, raw = env.do(t, http.MethodPut, "/cart/items/1", sid, map[string]any{"amount": 10})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("over-stock status=%d body=%s", resp.StatusCode, raw)
	}
	e := decodeError(t, raw)
	if e.Error != cart.MsgStockExceeded || e.Details.Kind != "insufficient_stock" || e.Details.Cart[0].Amount != 4 {
		t.Fatalf("error=%+v", e)
	}

	resp, raw = env.do(t, http.MethodGet, "/cart", sid, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status=%d", resp.StatusCode)
	}
	if c := decodeCart(t, raw); len(c) != 1 || c[0].Amount != 4 {
		t.Fatalf("cart=%+v", c)
	}

	resp, raw = env.do(t, http.MethodDelete, "/cart/items/1", sid, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove status=%d body=%s", resp.StatusCode, raw)
	}
	if c := decodeCart(t, raw); len(c) != 0 {
		t.Fatalf("cart=%+v", c)
	}
}

func TestCartHTTP_FailureStatuses(t *testing.T) {
	env := newCartEnv(t)
	const sid = "s_fail"

	if resp, raw := env.do(t, http.MethodPost, "/cart/items/1", sid, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("seed add status=%d body=%s", resp.StatusCode, raw)
	}

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		msg    string
	}{
		{"remove absent", http.MethodDelete, "/cart/items/2", nil, http.StatusNotFound, cart.MsgRemoveFailed},
		{"update absent", http.MethodPut, "/cart/items/2", map[string]any{"amount": 1}, http.StatusNotFound, cart.MsgUpdateFailed},
		{"update zero", http.MethodPut, "/cart/items/1", map[string]any{"amount": 0}, http.StatusUnprocessableEntity, cart.MsgUpdateFailed},
		{"add unknown product", http.MethodPost, "/cart/items/77", nil, http.StatusBadGateway, cart.MsgAddFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := env.do(t, tc.method, tc.path, sid, tc.body)
			if resp.StatusCode != tc.status {
				t.Fatalf("status=%d want %d body=%s", resp.StatusCode, tc.status, raw)
			}
			e := decodeError(t, raw)
			if e.Error != tc.msg {
				t.Fatalf("error=%q want %q", e.Error, tc.msg)
			}
			if len(e.Details.Cart) != 1 || e.Details.Cart[0].Amount != 1 {
				t.Fatalf("cart in details=%+v", e.Details.Cart)
			}
		})
	}
}

func TestCartHTTP_BadRequests(t *testing.T) {
	env := newCartEnv(t)
	const sid = "s_bad"

	if resp, _ := env.do(t, http.MethodPost, "/cart/items/abc", sid, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", resp.StatusCode)
	}
	if resp, _ := env.do(t, http.MethodPut, "/cart/items/1", sid, map[string]any{"qty": 1}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown field status=%d", resp.StatusCode)
	}
	if resp, _ := env.do(t, http.MethodPut, "/cart/items/1", sid, map[string]any{}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("missing amount status=%d", resp.StatusCode)
	}
}

func TestCartHTTP_SessionsAreIsolatedAndPersisted(t *testing.T) {
	env := newCartEnv(t)

	if resp, raw := env.do(t, http.MethodPost, "/cart/items/1", "s_a", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("add status=%d body=%s", resp.StatusCode, raw)
	}

	_, raw := env.do(t, http.MethodGet, "/cart", "s_b", nil)
	if c := decodeCart(t, raw); len(c) != 0 {
		t.Fatalf("session b sees %+v", c)
	}
	if env.reg.Len() != 2 {
		t.Fatalf("sessions=%d", env.reg.Len())
	}

	stored, err := env.backend.Get(t.Context(), slot.SessionKey("s_a"))
	if err != nil {
		t.Fatalf("slot get: %v", err)
	}
	c, err := cart.Decode(stored)
	if err != nil || len(c) != 1 || c[0].ID != 1 {
		t.Fatalf("stored=%s err=%v", stored, err)
	}
}

func TestCartHTTP_NotificationsDrain(t *testing.T) {
	env := newCartEnv(t)
	const sid = "s_notes"

	env.do(t, http.MethodPost, "/cart/items/2", sid, nil)
	env.do(t, http.MethodPost, "/cart/items/2", sid, nil)
	env.do(t, http.MethodDelete, "/cart/items/1", sid, nil)

	resp, raw := env.do(t, http.MethodGet, "/cart/notifications", sid, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	var notes []notify.Notification
	if err := json.Unmarshal(raw, &notes); err != nil {
		t.Fatalf("decode: %v body=%s", err, raw)
	}
	if len(notes) != 2 || notes[0].Message != cart.MsgStockExceeded || notes[1].Message != cart.MsgRemoveFailed {
		t.Fatalf("notifications=%+v", notes)
	}

	_, raw = env.do(t, http.MethodGet, "/cart/notifications", sid, nil)
	if string(bytes.TrimSpace(raw)) != "[]" {
		t.Fatalf("second drain=%s", raw)
	}
}

func TestCartHTTP_StockChangesAreSeenImmediately(t *testing.T) {
	env := newCartEnv(t)
	const sid = "s_stock"

	env.catalog.SetStock(1, 1)
	if resp, _ := env.do(t, http.MethodPost, "/cart/items/1", sid, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("first add status=%d", resp.StatusCode)
	}
	if resp, _ := env.do(t, http.MethodPost, "/cart/items/1", sid, nil); resp.StatusCode != http.StatusConflict {
		t.Fatalf("second add status=%d", resp.StatusCode)
	}

	env.catalog.SetStock(1, 2)
	if resp, _ := env.do(t, http.MethodPost, "/cart/items/1", sid, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("add after restock status=%d", resp.StatusCode)
	}
}

func TestCartHTTP_Readyz(t *testing.T) {
	env := newCartEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/readyz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status=%d", resp.StatusCode)
	}
}
