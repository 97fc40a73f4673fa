package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/matzehuels/matelas/pkg/buildinfo"
	"github.com/matzehuels/matelas/pkg/errors"
	"github.com/matzehuels/matelas/pkg/export"
	"github.com/matzehuels/matelas/pkg/pipeline"
	"github.com/matzehuels/matelas/pkg/tufting"
)

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: s.cfg.Server.ServiceName,
		Version: buildinfo.Get().Version,
	})
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	data, ok := s.render(w, r, pipeline.Options{Formats: []string{export.FormatJSON}})
	if !ok {
		return
	}
	s.writeBytes(w, export.FormatJSON, data)
}

func (s *Server) handleDownloadCSV(w http.ResponseWriter, r *http.Request) {
	data, ok := s.render(w, r, pipeline.Options{Formats: []string{export.FormatCSV}})
	if !ok {
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename="+export.CSVFilename)
	s.writeBytes(w, export.FormatCSV, data)
}

// handlePreview renders an image preview. Query parameters: size (pixels),
// distances (draw guides) and highlight (mark the first point, default on).
func (s *Server) handlePreview(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := pipeline.Options{Formats: []string{format}}
		q := r.URL.Query()
		if v := q.Get("size"); v != "" {
			size, err := strconv.Atoi(v)
			if err != nil {
				s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "size must be a positive integer, got %q", v))
				return
			}
			if err := export.ValidatePreviewSize(size); err != nil {
				s.writeError(w, r, err)
				return
			}
			opts.Size = size
		}
		opts.Distances, _ = strconv.ParseBool(q.Get("distances"))
		if v := q.Get("highlight"); v != "" {
			highlight, err := strconv.ParseBool(v)
			if err != nil {
				s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "highlight must be a boolean, got %q", v))
				return
			}
			opts.NoHighlight = !highlight
		}

		data, ok := s.render(w, r, opts)
		if !ok {
			return
		}
		s.writeBytes(w, format, data)
	}
}

// render decodes the request body into opts.Params and runs the pipeline.
// It writes the error response itself and reports false on failure.
func (s *Server) render(w http.ResponseWriter, r *http.Request, opts pipeline.Options) ([]byte, bool) {
	params, err := decodeParams(w, r, s.cfg.Server.MaxBodyBytes, s.cfg.Layout.Spacing())
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	opts.Params = params
	opts.MaxPoints = s.maxPoints()

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return res.Artifacts[opts.Formats[0]], true
}

func (s *Server) maxPoints() int {
	if s.cfg.Layout.MaxPoints > 0 {
		return s.cfg.Layout.MaxPoints
	}
	return tufting.DefaultMaxPoints
}

func (s *Server) writeBytes(w http.ResponseWriter, format string, data []byte) {
	w.Header().Set("Content-Type", export.ContentTypes[format])
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}

// writeError maps err to a status code. Client errors carry their message;
// server errors are logged and reported generically.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if err == errBodyTooLarge {
		status = http.StatusRequestEntityTooLarge
	}
	resp := errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(errors.GetCode(err)),
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "id", RequestID(r.Context()), "err", err)
		resp = errorResponse{Error: "internal error", Code: string(errors.ErrCodeInternal)}
	}
	s.writeJSON(w, status, resp)
}
