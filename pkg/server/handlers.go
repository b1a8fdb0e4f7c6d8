package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stringbean/pkg/buildinfo"
	"github.com/matzehuels/stringbean/pkg/errors"
	sbio "github.com/matzehuels/stringbean/pkg/io"
	"github.com/matzehuels/stringbean/pkg/pipeline"
	"github.com/matzehuels/stringbean/pkg/store"
)

// multipartMemory is the part of an upload kept in memory; the rest spills
// to temporary files.
const multipartMemory = 8 << 20

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthBody{Status: "ok", Version: buildinfo.Short()})
}

// createPlan plans the uploaded image and stores the result. Exhausted
// plans are stored too; their document carries exhausted=true.
func (s *Server) createPlan(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > s.maxUpload {
		s.tooLarge(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			s.tooLarge(w)
			return
		}
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	opts, err := s.decodeOptions(r.FormValue("options"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "missing image file"))
		return
	}
	defer file.Close()
	if err := errors.ValidateUploadName(header.Filename); err != nil {
		s.writeError(w, r, err)
		return
	}

	img, err := sbio.ReadImage(file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.planTimeout)
	defer cancel()
	opts.Logger = s.logger.With("request_id", middleware.GetReqID(r.Context()))

	doc, err := s.runner.Plan(ctx, img, opts)
	if err != nil && !errors.Is(err, errors.ErrCodePlanExhausted) {
		s.writeError(w, r, err)
		return
	}

	rec := store.NewRecord(doc)
	if err := s.store.Save(r.Context(), rec); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Location", "/v1/plans/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) tooLarge(w http.ResponseWriter) {
	writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
		Code:    errors.ErrCodeInvalidInput,
		Message: "upload exceeds " + strconv.FormatInt(s.maxUpload, 10) + " bytes",
	})
}

// decodeOptions overlays the JSON options field on the server defaults.
func (s *Server) decodeOptions(raw string) (pipeline.Options, error) {
	opts := s.requestOptions()
	if raw == "" {
		return opts, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return opts, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid options")
	}
	if err := opts.ValidateForPlan(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (s *Server) listPlans(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid limit: %q", v))
			return
		}
		limit = n
	}

	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		recs = []*store.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) getPlan(w http.ResponseWriter, r *http.Request) {
	rec, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) deletePlan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidatePlanID(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getArtifact renders a stored plan. The query parameters width, height,
// stroke_width and background override the server's render defaults.
func (s *Server) getArtifact(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	opts, err := s.renderOptions(r, format)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := s.lookup(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	artifacts, err := s.runner.Render(r.Context(), rec.Document, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) renderOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts := s.requestOptions()
	opts.Formats = []string{format}
	q := r.URL.Query()

	for name, dst := range map[string]*int{"width": &opts.Width, "height": &opts.Height} {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", name, v)
			}
			*dst = n
		}
	}
	if v := q.Get("stroke_width"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || !(f > 0) {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid stroke_width: %q", v)
		}
		opts.StrokeWidth = f
	}
	if v := q.Get("background"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid background: %q", v)
		}
		opts.Background = b
	}
	opts.Logger = s.logger
	return opts, nil
}

func (s *Server) lookup(r *http.Request) (*store.Record, error) {
	id := chi.URLParam(r, "id")
	if err := errors.ValidatePlanID(id); err != nil {
		return nil, err
	}
	return s.store.Get(r.Context(), id)
}
