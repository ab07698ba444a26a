package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/caaluza/internal/editor"
	"github.com/annel0/caaluza/internal/logging"
	"github.com/annel0/caaluza/internal/mapformat"
	"github.com/annel0/caaluza/internal/validation"
	"github.com/annel0/caaluza/internal/vec"
)

func sampleMap() mapformat.Map {
	return mapformat.Map{
		Metadata: mapformat.NewMetadata("tower", "ann"),
		Bricks: []mapformat.SerializedBrick{
			{Color: "#c91a09", Name: "1x1 Red", Points: []vec.Vec3{{X: 0, Y: 0, Z: 0}}},
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_Validate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/caaluza/validate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var m mapformat.Map
		require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
		assert.Len(t, m.Bricks, 1)

		writeJSON(w, http.StatusOK, validation.Result{
			Valid: false,
			Errors: []validation.Error{
				{Type: validation.ErrorFloating, Message: "brick 0 floats", OffendingBricks: []int{0}},
			},
		})
	}))
	defer srv.Close()

	res, err := New(srv.URL, nil).Validate(context.Background(), sampleMap())
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, []int{0}, res.Offending())
}

func TestClient_SaveLoadDelete(t *testing.T) {
	stored := map[string]mapformat.Map{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path[len("/caaluza/map/"):]
		switch r.Method {
		case http.MethodPost:
			var m mapformat.Map
			require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
			stored[name] = m
			writeJSON(w, http.StatusOK, mapformat.SaveResponse{MapID: name, Message: "Map saved successfully"})
		case http.MethodGet:
			m, ok := stored[name]
			if !ok {
				writeJSON(w, http.StatusNotFound, mapformat.ErrorResponse{Error: "Map with id " + name + " not found"})
				return
			}
			writeJSON(w, http.StatusOK, mapformat.LoadResponse{MapID: name, Map: m})
		case http.MethodDelete:
			delete(stored, name)
			writeJSON(w, http.StatusOK, mapformat.SaveResponse{MapID: name, Message: "Map deleted"})
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", nil)
	ctx := context.Background()

	id, err := c.SaveMap(ctx, "tower", sampleMap())
	require.NoError(t, err)
	assert.Equal(t, "tower", id)

	m, err := c.LoadMap(ctx, "tower")
	require.NoError(t, err)
	assert.Equal(t, "tower", m.Metadata.Name)
	require.Len(t, m.Bricks, 1)

	require.NoError(t, c.DeleteMap(ctx, "tower"))

	_, err = c.LoadMap(ctx, "tower")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "Map with id tower not found")
}

func TestClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/caaluza/generate", r.URL.Path)
		assert.Equal(t, "12", r.URL.Query().Get("nrpieces"))
		assert.Equal(t, "4", r.URL.Query().Get("maxheight"))
		assert.Equal(t, "99", r.URL.Query().Get("seed"))
		writeJSON(w, http.StatusOK, mapformat.GenerateResponse{Map: sampleMap()})
	}))
	defer srv.Close()

	m, err := New(srv.URL, nil).GenerateSeeded(context.Background(), 12, 4, 99)
	require.NoError(t, err)
	assert.Len(t, m.Bricks, 1)
}

func TestClient_ListMaps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, mapformat.ListResponse{Maps: []string{"a", "b"}})
	}))
	defer srv.Close()

	names, err := New(srv.URL, nil).ListMaps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestClient_RemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Validate(context.Background(), sampleMap())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemote))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "boom")
}

func TestClient_ErrorBodyWithOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, mapformat.ErrorResponse{Error: "Map with id x not found"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.LoadMap(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = c.SaveMap(context.Background(), "x", sampleMap())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestClient_ResponseWithoutMap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/caaluza/generate" {
			writeJSON(w, http.StatusOK, map[string]interface{}{"map": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"map_id": "x"})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.LoadMap(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemote))

	_, err = c.Generate(context.Background(), 4, 4)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRemote))
}

func TestSessionOpen_FailedLoadKeepsBricks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, mapformat.ErrorResponse{Error: "Map with id x not found"})
	}))
	defer srv.Close()

	s := editor.New(editor.Options{
		Remote: New(srv.URL, nil),
		Logger: logging.NewConsoleLogger("editor", io.Discard, logging.ERROR),
	})
	_, ok := s.PressSelector("1x2 Red", vec.Vec2Float{X: 1, Z: 1})
	require.True(t, ok)
	require.True(t, s.Drop())
	before := s.Bricks()

	_, err := s.Open(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, before, s.Bricks(), "неудачная загрузка не трогает поле")

	_, err = s.Generate(context.Background(), 4, 4)
	require.Error(t, err)
	assert.Equal(t, before, s.Bricks())
}

func TestClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, validation.Result{Valid: true})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(srv.URL, nil).Validate(ctx, sampleMap())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

var (
	_ editor.Validator = (*Client)(nil)
	_ editor.Remote    = (*Client)(nil)
)
