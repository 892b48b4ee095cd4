package web

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/erpimport/internal/application"
	"github.com/JonMunkholm/erpimport/internal/core"
	"github.com/JonMunkholm/erpimport/internal/report"
	"github.com/JonMunkholm/erpimport/internal/sheet"
)

// ImportRequest is the JSON body of POST /api/imports/{kind}. Rows without
// a "line" get their 1-based position.
type ImportRequest struct {
	Rows    []core.Row           `json:"rows"`
	Options core.OptionOverrides `json:"options"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"imports": s.service.Limiter().Status(),
	})
}

func (s *Server) handleListKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ListKinds())
}

// handleImport runs a batch from a JSON body or a multipart spreadsheet
// upload. Multipart forms may carry a JSON "options" field and a "sheet"
// name; with redirect=report the client is sent to the HTML report.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	if _, ok := core.Get(kind); !ok {
		s.respondError(w, r, fmt.Errorf("%w: %s", core.ErrUnknownKind, kind))
		return
	}

	maxSize := s.cfg.Server.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	var (
		req    ImportRequest
		source string
		err    error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		req, source, err = s.readUpload(r, maxSize)
	} else {
		req, err = readJSON(r.Body)
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	opts := req.Options.Apply(application.BatchOptions(s.cfg.Import))
	ctx := withRequestMetadata(r.Context(), r, source)
	res, err := s.service.Run(ctx, kind, req.Rows, opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	if r.FormValue("redirect") == "report" {
		http.Redirect(w, r, "/imports/"+res.ID+"/report", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) readUpload(r *http.Request, maxSize int64) (ImportRequest, string, error) {
	var req ImportRequest
	if err := r.ParseMultipartForm(maxSize); err != nil {
		return req, "", fmt.Errorf("%w: %v", core.ErrFileTooLarge, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return req, "", core.ErrNoFile
	}
	defer file.Close()

	if raw := r.FormValue("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Options); err != nil {
			return req, "", fmt.Errorf("%w: options: %v", errBadRequest, err)
		}
	}

	req.Rows, err = sheet.Read(file, header.Filename, sheet.Options{
		Sheet:   r.FormValue("sheet"),
		MaxSize: maxSize,
	})
	return req, header.Filename, err
}

func readJSON(body io.Reader) (ImportRequest, error) {
	var req ImportRequest
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		return req, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if len(req.Rows) == 0 {
		return req, core.ErrEmptyFile
	}
	for i, row := range req.Rows {
		for k, v := range row {
			if n, ok := v.(json.Number); ok {
				row[k] = jsonNumber(n)
			}
		}
		if _, ok := row["line"]; !ok {
			row["line"] = i + 1
		}
	}
	return req, nil
}

// jsonNumber keeps integers as int so that they are not mistaken for
// spreadsheet floats.
func jsonNumber(n json.Number) any {
	if i, err := strconv.Atoi(n.String()); err == nil {
		return i
	}
	f, _ := n.Float64()
	return f
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Batch(chi.URLParam(r, "batchID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Batch(chi.URLParam(r, "batchID"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.Page(res).Render(r.Context(), w); err != nil {
		s.respondError(w, r, err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexPage(s.service.ListKinds()).Render(r.Context(), w); err != nil {
		s.respondError(w, r, err)
	}
}
