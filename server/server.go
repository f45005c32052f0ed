// Package server exposes the search engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/saurus-othello/saurus/board"
	"github.com/saurus-othello/saurus/config"
	"github.com/saurus-othello/saurus/engine"
	"github.com/saurus-othello/saurus/engine/alphabeta"
	"github.com/saurus-othello/saurus/engine/random"
	"github.com/saurus-othello/saurus/evaluation"
)

const requestIDHeader = "X-Request-Id"

type ctxKey struct{}

type PositionRequest struct {
	Position string `json:"position"`
}

type SearchRequest struct {
	Position string `json:"position"`
	Depth    *int   `json:"depth,omitempty"`
	Engine   string `json:"engine,omitempty"`
}

type SearchResponse struct {
	RequestID string   `json:"request_id"`
	Eval      int      `json:"eval"`
	PV        []string `json:"pv"`
	Nodes     uint64   `json:"nodes"`
	Hash      string   `json:"hash"`
}

type MovesResponse struct {
	Moves    []string `json:"moves"`
	Side     string   `json:"side"`
	GameOver bool     `json:"game_over"`
	Eval     int      `json:"eval"`
}

type AboutResponse struct {
	About string `json:"about"`
}

type Server struct {
	cfg    *config.Config
	router *chi.Mux
}

func New(cfg *config.Config) *Server {
	s := &Server{cfg: cfg, router: chi.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(requestID)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/about", s.handleAbout)
	s.router.Post("/moves", s.handleMoves)
	s.router.Post("/search", s.handleSearch)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.GetString(config.ConfigListenAddr),
		Handler: s.router,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server-listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info().Msg("server-shutting-down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set(requestIDHeader, id)
		tstart := time.Now()
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
		log.Debug().
			Str("request-id", id).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(tstart)).
			Msg("http-request")
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func (s *Server) newEngine(name string) (engine.Engine, error) {
	if name == "" {
		name = s.cfg.GetString(config.ConfigEngine)
	}
	switch name {
	case config.EngineAlphaBeta:
		return alphabeta.NewSolver(), nil
	case config.EngineRandom:
		return random.NewEngine(), nil
	}
	return nil, fmt.Errorf("unknown engine %q", name)
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	eng, err := s.newEngine("")
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, AboutResponse{About: eng.About()})
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	pos, err := board.FromString(req.Position)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	resp := MovesResponse{
		Moves:    []string{},
		Side:     pos.SideToMoveString(),
		GameOver: pos.GameOver(),
		Eval:     evaluation.Evaluate(pos),
	}
	for _, m := range pos.LegalMoves() {
		resp.Moves = append(resp.Moves, m.String())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	pos, err := board.FromString(req.Position)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	depth := s.cfg.GetInt(config.ConfigDefaultDepth)
	if req.Depth != nil {
		depth = *req.Depth
	}
	if maxDepth := s.cfg.GetInt(config.ConfigMaxDepth); depth < 0 || depth > maxDepth {
		writeJSONError(w, http.StatusBadRequest,
			fmt.Sprintf("%v: %d (must be between 0 and %d)", engine.ErrInvalidDepth, depth, maxDepth))
		return
	}
	eng, err := s.newEngine(req.Engine)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	eng.SetPosition(pos)

	ctx := r.Context()
	if timeout := s.cfg.GetDuration(config.ConfigSearchTimeout); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	id := requestIDFrom(r.Context())
	eval, pv, err := eng.Search(ctx, depth)
	switch {
	case errors.Is(err, engine.ErrAborted):
		log.Info().Str("request-id", id).Err(err).Msg("search-aborted")
		writeJSONError(w, http.StatusServiceUnavailable, err.Error())
		return
	case errors.Is(err, engine.ErrInvariantViolation):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		log.Error().Str("request-id", id).Err(err).Msg("search-failed")
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := SearchResponse{
		RequestID: id,
		Eval:      eval,
		PV:        engine.PVLine{Moves: pv, Score: eval}.Notation(),
		Hash:      fmt.Sprintf("%016x", pos.Hash()),
	}
	if solver, ok := eng.(*alphabeta.Solver); ok {
		resp.Nodes = solver.Nodes()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("write-json-encode-error")
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
	log.Debug().Int("status", status).Str("error", msg).Msg("write-json-error")
}
