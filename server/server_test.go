package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/saurus-othello/saurus/config"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAbout(t *testing.T) {
	s := New(config.DefaultConfig())
	rec := do(t, s, http.MethodGet, "/about", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp AboutResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Saurus 1.0.0 - developed by Curtis Barlow-Wilkes", resp.About)

	_, err := uuid.Parse(rec.Header().Get(requestIDHeader))
	assert.NoError(t, err)
}

func TestMoves(t *testing.T) {
	s := New(config.DefaultConfig())
	rec := do(t, s, http.MethodPost, "/moves", `{"position": "startpos"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp MovesResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"D3", "C4", "F5", "E6"}, resp.Moves)
	assert.Equal(t, "black", resp.Side)
	assert.False(t, resp.GameOver)
	assert.Equal(t, 0, resp.Eval)
}

func TestMovesBadInput(t *testing.T) {
	s := New(config.DefaultConfig())
	for _, body := range []string{`{"position": "nonsense"}`, `{"position":`} {
		rec := do(t, s, http.MethodPost, "/moves", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestSearch(t *testing.T) {
	s := New(config.DefaultConfig())
	rec := do(t, s, http.MethodPost, "/search", `{"position": "startpos", "depth": 1}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 0, resp.Eval)
	assert.Equal(t, []string{"D3"}, resp.PV)
	assert.Equal(t, uint64(5), resp.Nodes)
	assert.Len(t, resp.Hash, 16)
	assert.Equal(t, rec.Header().Get(requestIDHeader), resp.RequestID)
}

func TestSearchDepthZero(t *testing.T) {
	s := New(config.DefaultConfig())
	rec := do(t, s, http.MethodPost, "/search", `{"position": "startpos", "depth": 0}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{}, resp.PV)
}

func TestSearchErrors(t *testing.T) {
	stuck := "OX" + strings.Repeat("-", 62) + " X"
	cases := []struct {
		name string
		body string
		code int
	}{
		{"depth too deep", `{"position": "startpos", "depth": 99}`, http.StatusBadRequest},
		{"negative depth", `{"position": "startpos", "depth": -1}`, http.StatusBadRequest},
		{"bad position", `{"position": "XO X", "depth": 1}`, http.StatusBadRequest},
		{"bad engine", `{"position": "startpos", "engine": "oracle"}`, http.StatusBadRequest},
		{"no legal moves", `{"position": "` + stuck + `", "depth": 1}`, http.StatusUnprocessableEntity},
	}
	s := New(config.DefaultConfig())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/search", tc.body)
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestSearchTimeout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigSearchTimeout, time.Nanosecond)
	s := New(cfg)
	rec := do(t, s, http.MethodPost, "/search", `{"position": "startpos", "depth": 12}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "search aborted")
}

func TestSearchRandomEngine(t *testing.T) {
	s := New(config.DefaultConfig())
	rec := do(t, s, http.MethodPost, "/search", `{"position": "startpos", "depth": 3, "engine": "random"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.PV, 3)
}
