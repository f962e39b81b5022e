package httpmedia

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/avrel/mediapack/internal/application"
	"github.com/avrel/mediapack/internal/domain"
)

// Ingest is the pipeline surface the server needs.
type Ingest interface {
	Submit(ctx context.Context, sub application.Submission) error
	Discard(user domain.UserID)
}

// Server exposes the ingest API:
//
//	POST /v1/items    queue one media item for the sender's burst
//	POST /v1/discard  drop the sender's pending burst
//	GET  /healthz     liveness probe
//
// Requests must carry the shared bearer token when one is configured.
type Server struct {
	ingest    Ingest
	authToken string
	logger    *slog.Logger
}

func NewServer(ingest Ingest, authToken string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{ingest: ingest, authToken: authToken, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/items", s.authorized(s.handleItem))
	mux.HandleFunc("POST /v1/discard", s.authorized(s.handleDiscard))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func (s *Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken != "" {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token != s.authToken {
				writeError(w, http.StatusUnauthorized, "invalid or missing token")
				return
			}
		}
		next(w, r)
	}
}

type itemRequest struct {
	User     int64  `json:"user"`
	Dest     int64  `json:"destination"`
	Ref      string `json:"ref"`
	Caption  string `json:"caption"`
	MIMEType string `json:"mime_type"`
	FileName string `json:"file_name"`
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.User == 0 || req.Ref == "" {
		writeError(w, http.StatusBadRequest, "user and ref are required")
		return
	}
	// The destination defaults to the sender, mirroring a reply-to-chat
	// delivery model.
	if req.Dest == 0 {
		req.Dest = req.User
	}

	err := s.ingest.Submit(r.Context(), application.Submission{
		User:     domain.UserID(req.User),
		Dest:     domain.Destination(req.Dest),
		Ref:      domain.MediaRef(req.Ref),
		Caption:  req.Caption,
		MIMEType: req.MIMEType,
		FileName: req.FileName,
	})
	if err != nil {
		s.logger.Error("item submit failed", "user_id", req.User, "error", err)
		writeError(w, http.StatusInternalServerError, "submit failed")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

type discardRequest struct {
	User int64 `json:"user"`
}

func (s *Server) handleDiscard(w http.ResponseWriter, r *http.Request) {
	var req discardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.User == 0 {
		writeError(w, http.StatusBadRequest, "user is required")
		return
	}
	s.ingest.Discard(domain.UserID(req.User))
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
