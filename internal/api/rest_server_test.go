package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/caaluza/internal/eventbus"
	"github.com/annel0/caaluza/internal/logging"
	"github.com/annel0/caaluza/internal/mapformat"
	"github.com/annel0/caaluza/internal/storage"
	"github.com/annel0/caaluza/internal/validation"
	"github.com/annel0/caaluza/internal/vec"
)

type testServer struct {
	rs     *RestServer
	server *httptest.Server
	bus    eventbus.EventBus
	events chan *eventbus.Envelope
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	bus := eventbus.NewMemoryBus(32)
	events := make(chan *eventbus.Envelope, 32)
	_, err := bus.Subscribe(context.Background(), eventbus.Filter{}, func(ctx context.Context, ev *eventbus.Envelope) {
		events <- ev
	})
	require.NoError(t, err)

	rs, err := NewRestServer(Config{
		Store:       storage.NewMemoryStore(),
		Bus:         bus,
		CORSOrigins: []string{"http://editor.local"},
		Logger:      logging.NewConsoleLogger("api-test", io.Discard, logging.ERROR),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(rs.Handler())
	t.Cleanup(func() {
		srv.Close()
		bus.Close()
	})
	return &testServer{rs: rs, server: srv, bus: bus, events: events}
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (ts *testServer) nextEvent(t *testing.T, eventType string) *eventbus.Envelope {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-ts.events:
			if ev.EventType == eventType {
				return ev
			}
		case <-deadline:
			t.Fatalf("событие %s не получено", eventType)
			return nil
		}
	}
}

func pointBrick(color string, points ...vec.Vec3) mapformat.SerializedBrick {
	return mapformat.SerializedBrick{Color: mapformat.WireColor(color), Points: points}
}

func sampleMap() mapformat.Map {
	return mapformat.Map{
		Metadata: mapformat.NewMetadata("tower", "tester"),
		Bricks: []mapformat.SerializedBrick{
			pointBrick("#C91A09", vec.Vec3{X: 0, Y: 0, Z: 0}, vec.Vec3{X: 1, Y: 0, Z: 0}),
			pointBrick("#0055BF", vec.Vec3{X: 1, Y: 1, Z: 0}),
		},
	}
}

func TestValidate_ValidMap(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/caaluza/validate", sampleMap())
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var res validation.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
	assert.Contains(t, string(body), `"errors":[]`)

	ev := ts.nextEvent(t, eventbus.EventMapValidated)
	var payload eventbus.MapValidated
	require.NoError(t, ev.Decode(&payload))
	assert.Equal(t, "tower", payload.Name)
	assert.Equal(t, 2, payload.Bricks)
	assert.True(t, payload.Valid)
	assert.NotEmpty(t, ev.CorrelationID)

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.rs.domain.validations.WithLabelValues("valid")))
}

func TestValidate_OverlapReportsIndexes(t *testing.T) {
	ts := newTestServer(t)

	m := sampleMap()
	m.Bricks = append(m.Bricks, pointBrick("#F2CD37", vec.Vec3{X: 1, Y: 0, Z: 0}))

	resp, body := ts.do(t, http.MethodPost, "/caaluza/validate", m)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var res validation.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.False(t, res.Valid)
	assert.Equal(t, 1, res.Count(validation.ErrorOverlap))
	assert.Equal(t, []int{0, 2}, res.Offending())

	assert.Equal(t, 1.0, testutil.ToFloat64(ts.rs.domain.validations.WithLabelValues("invalid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(ts.rs.domain.offending))
}

func TestValidate_MissingBoundsUseServerGrid(t *testing.T) {
	ts := newTestServer(t)

	m := mapformat.Map{Bricks: []mapformat.SerializedBrick{
		pointBrick("#C91A09", vec.Vec3{X: 9, Y: 0, Z: 0}),
	}}
	resp, body := ts.do(t, http.MethodPost, "/caaluza/validate", m)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res validation.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.False(t, res.Valid)
	assert.Equal(t, 1, res.Count(validation.ErrorOutOfBounds))
}

func TestValidate_MalformedJSON(t *testing.T) {
	ts := newTestServer(t)

	resp, err := ts.server.Client().Post(ts.server.URL+"/caaluza/validate", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var e mapformat.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.Contains(t, e.Error, "malformed map")
}

func TestMapLifecycle(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodPost, "/caaluza/map/tower", sampleMap())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var saved mapformat.SaveResponse
	require.NoError(t, json.Unmarshal(body, &saved))
	assert.Equal(t, "tower", saved.MapID)
	assert.Equal(t, "Map created successfully", saved.Message)

	ev := ts.nextEvent(t, eventbus.EventMapSaved)
	var payload eventbus.MapSaved
	require.NoError(t, ev.Decode(&payload))
	assert.Equal(t, "tester", payload.Author)
	assert.Equal(t, 2, payload.Bricks)

	resp, body = ts.do(t, http.MethodPost, "/caaluza/map/tower", sampleMap())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &saved))
	assert.Equal(t, "Map with id tower updated successfully", saved.Message)

	resp, body = ts.do(t, http.MethodGet, "/caaluza/map/tower", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var loaded mapformat.LoadResponse
	require.NoError(t, json.Unmarshal(body, &loaded))
	assert.Equal(t, "tower", loaded.MapID)
	assert.Equal(t, sampleMap().Bricks, loaded.Map.Bricks)

	resp, body = ts.do(t, http.MethodGet, "/caaluza/maps", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list mapformat.ListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, []string{"tower"}, list.Maps)

	resp, body = ts.do(t, http.MethodDelete, "/caaluza/map/tower", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Map with id tower deleted successfully")
	ts.nextEvent(t, eventbus.EventMapDeleted)

	assert.Equal(t, 2.0, testutil.ToFloat64(ts.rs.domain.mapsSaved))
	assert.Equal(t, 1.0, testutil.ToFloat64(ts.rs.domain.mapsDeleted))
}

func TestLoadMissingMap(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/caaluza/map/nonexistent_id", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var e mapformat.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "Map with id nonexistent_id not found", e.Error)

	resp, _ = ts.do(t, http.MethodDelete, "/caaluza/map/nonexistent_id", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListMapsEmpty(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/caaluza/maps", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"maps":[]}`, string(body))
}

func TestGenerate(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/caaluza/generate?nrpieces=6&maxheight=3&seed=42", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var gen mapformat.GenerateResponse
	require.NoError(t, json.Unmarshal(body, &gen))
	assert.NotEmpty(t, gen.Map.Bricks)
	assert.LessOrEqual(t, len(gen.Map.Bricks), 6)

	res, err := validation.NewEngine().Validate(context.Background(), gen.Map)
	require.NoError(t, err)
	assert.True(t, res.Valid, "%+v", res.Errors)

	ev := ts.nextEvent(t, eventbus.EventMapGenerated)
	var payload eventbus.MapGenerated
	require.NoError(t, ev.Decode(&payload))
	assert.Equal(t, int64(42), payload.Seed)
	assert.Equal(t, 6, payload.Pieces)
	assert.Equal(t, 3, payload.MaxHeight)

	// тот же seed даёт ту же карту
	_, again := ts.do(t, http.MethodGet, "/caaluza/generate?nrpieces=6&maxheight=3&seed=42", nil)
	var gen2 mapformat.GenerateResponse
	require.NoError(t, json.Unmarshal(again, &gen2))
	assert.Equal(t, gen.Map.Bricks, gen2.Map.Bricks)
}

func TestGenerate_BadQuery(t *testing.T) {
	ts := newTestServer(t)

	for _, q := range []string{"nrpieces=many", "maxheight=x", "seed=1.5"} {
		resp, _ := ts.do(t, http.MethodGet, "/caaluza/generate?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, q)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var h HealthReport
	require.NoError(t, json.Unmarshal(body, &h))
	assert.Equal(t, "ok", h.Status)
	assert.NotEmpty(t, h.Uptime)
	assert.Greater(t, h.Memory.Goroutines, 0)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.server.URL+"/caaluza/validate", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://editor.local")

	resp, err := ts.server.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://editor.local", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodGet, "/caaluza/maps", nil)

	resp, body := ts.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "caaluza_http_request_duration_seconds")
	assert.Contains(t, string(body), "caaluza_maps_saved_total")
}

func TestNewRestServer_RequiresStore(t *testing.T) {
	_, err := NewRestServer(Config{})
	assert.Error(t, err)
}

func TestNewRestServer_DuplicateRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	quiet := logging.NewConsoleLogger("api-test", io.Discard, logging.ERROR)

	_, err := NewRestServer(Config{Store: storage.NewMemoryStore(), Registry: reg, Logger: quiet})
	require.NoError(t, err)

	_, err = NewRestServer(Config{Store: storage.NewMemoryStore(), Registry: reg, Logger: quiet})
	assert.Error(t, err)
}

func TestFormatUptime(t *testing.T) {
	cases := map[time.Duration]string{
		5 * time.Second:               "5с",
		2*time.Minute + 3*time.Second: "2м 3с",
		3*time.Hour + 4*time.Minute:   "3ч 4м 0с",
		26*time.Hour + 1*time.Second:  "1д 2ч 0м 1с",
	}
	for d, want := range cases {
		assert.Equal(t, want, formatUptime(d))
	}
}
