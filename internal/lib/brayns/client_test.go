package brayns

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCall struct {
	Method string          `json:"method"`
	ID     int64           `json:"id"`
	Params json.RawMessage `json:"params"`
}

// fakeBrayns answers every request with result true, after pushing a
// progress notification and a reply to an unrelated id. Methods listed in
// failing get a JSON-RPC error instead.
type fakeBrayns struct {
	mu      sync.Mutex
	calls   []recordedCall
	failing map[string]bool
}

func (f *fakeBrayns) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	for {
		var call recordedCall
		if err := wsjson.Read(ctx, conn, &call); err != nil {
			return
		}
		f.mu.Lock()
		f.calls = append(f.calls, call)
		f.mu.Unlock()

		_ = wsjson.Write(ctx, conn, map[string]any{"jsonrpc": "2.0", "method": "progress", "params": map[string]any{"amount": 0.5}})
		_ = wsjson.Write(ctx, conn, map[string]any{"jsonrpc": "2.0", "id": call.ID + 1000, "result": false})

		if f.failing[call.Method] {
			_ = wsjson.Write(ctx, conn, map[string]any{
				"jsonrpc": "2.0",
				"id":      call.ID,
				"error":   map[string]any{"code": -32602, "message": "Invalid params"},
			})
			continue
		}
		_ = wsjson.Write(ctx, conn, map[string]any{"jsonrpc": "2.0", "id": call.ID, "result": true})
	}
}

func (f *fakeBrayns) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func startFake(t *testing.T, failing ...string) (*fakeBrayns, *httptest.Server) {
	t.Helper()
	fake := &fakeBrayns{failing: map[string]bool{}}
	for _, m := range failing {
		fake.failing[m] = true
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestURL(t *testing.T) {
	tests := map[string]string{
		"r1i4n21:5000":         "ws://r1i4n21:5000/",
		"http://localhost:80":  "ws://localhost:80/",
		"https://brayns.local": "wss://brayns.local/",
		"ws://host:1/":         "ws://host:1/",
		" host:2 ":             "ws://host:2/",
	}
	for in, want := range tests {
		assert.Equal(t, want, URL(in), in)
	}
}

func TestDialEmptyHost(t *testing.T) {
	_, err := Dial(context.Background(), " ")
	assert.Error(t, err)
}

func TestDialUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := Dial(testContext(t), srv.URL)
	assert.Error(t, err)
}

func TestRequest(t *testing.T) {
	fake, srv := startFake(t)
	ctx := testContext(t)

	client, err := Dial(ctx, srv.URL)
	require.NoError(t, err)
	defer client.Close()

	var ok bool
	require.NoError(t, client.Request(ctx, "get-version", nil, &ok))
	assert.True(t, ok)

	require.NoError(t, client.Request(ctx, "reset-camera", nil, nil))

	calls := fake.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "get-version", calls[0].Method)
	assert.Equal(t, int64(1), calls[0].ID)
	assert.Equal(t, int64(2), calls[1].ID)
}

func TestRequestError(t *testing.T) {
	_, srv := startFake(t, "set-camera")
	ctx := testContext(t)

	client, err := Dial(ctx, srv.URL)
	require.NoError(t, err)
	defer client.Close()

	err = client.Request(ctx, "set-camera", map[string]any{"orientation": 1}, nil)
	require.Error(t, err)

	var rpcErr *Error
	require.ErrorAs(t, err, &rpcErr)
	assert.Equal(t, -32602, rpcErr.Code)
	assert.Equal(t, "Invalid params", rpcErr.Message)
}

func TestSetMaterial(t *testing.T) {
	fake, srv := startFake(t)
	ctx := testContext(t)

	client, err := Dial(ctx, srv.URL)
	require.NoError(t, err)
	defer client.Close()

	ce := NewCircuitExplorer(client)
	require.NoError(t, ce.SetMaterialExtraAttributes(ctx, 3))

	m := NewMaterial(3, 7, []float64{1, 0.5, 0}, ParseShadingMode("cartoon"))
	m.Glossiness = 0.4
	require.NoError(t, ce.SetMaterial(ctx, m))

	calls := fake.recorded()
	require.Len(t, calls, 2)
	assert.Equal(t, "set-material-extra-attributes", calls[0].Method)
	assert.JSONEq(t, `{"modelId":3}`, string(calls[0].Params))

	assert.Equal(t, "set-material", calls[1].Method)
	assert.JSONEq(t, `{
		"modelId": 3,
		"materialId": 7,
		"diffuseColor": [1, 0.5, 0],
		"specularColor": [1, 1, 1],
		"specularExponent": 20,
		"reflectionIndex": 0,
		"opacity": 1,
		"refractionIndex": 1,
		"emission": 0,
		"glossiness": 0.4,
		"simulationDataCast": true,
		"shadingMode": 3,
		"clippingMode": 0,
		"userParameter": 1
	}`, string(calls[1].Params))
}

func TestParseShadingMode(t *testing.T) {
	assert.Equal(t, ShadingDiffuse, ParseShadingMode("diffuse"))
	assert.Equal(t, ShadingElectron, ParseShadingMode("electron"))
	assert.Equal(t, ShadingCartoon, ParseShadingMode("cartoon"))
	assert.Equal(t, ShadingNone, ParseShadingMode("none"))
	assert.Equal(t, ShadingNone, ParseShadingMode("perlin"))
	assert.Equal(t, ShadingNone, ParseShadingMode(""))
	assert.Equal(t, ShadingNone, ParseShadingMode("Diffuse"))
	assert.Equal(t, ShadingNone, ParseShadingMode(" cartoon"))
	assert.Equal(t, ShadingMode(7), ShadingChecker)
}
