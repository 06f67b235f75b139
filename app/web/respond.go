package web

import (
	"fmt"
	"io"
	"net/http"

	"github.com/ohler55/ojg/oj"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := oj.Marshal(v)
	if err != nil {
		s.logger.Error("marshal response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
	w.Write([]byte("\n"))
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.logger.Warn("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err))
	s.respondJSON(w, status, ErrorResponse{Error: err.Error()})
}

// decodeBody reads and unmarshals a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("empty request body")
	}
	if err := oj.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}
