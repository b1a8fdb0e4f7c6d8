package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stringbean/pkg/errors"
	sbio "github.com/matzehuels/stringbean/pkg/io"
	"github.com/matzehuels/stringbean/pkg/observability"
	"github.com/matzehuels/stringbean/pkg/pipeline"
	"github.com/matzehuels/stringbean/pkg/store"
)

func testServer(t *testing.T, maxUpload int64) (*Server, *store.MemoryStore) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	st := store.NewMemoryStore()
	s := New(Config{
		Runner:         pipeline.NewRunner(nil, nil, logger),
		Store:          st,
		Logger:         logger,
		Defaults:       pipeline.Options{Chords: 12, Anchors: 24, Gap: 2, Workers: 1},
		MaxUploadBytes: maxUpload,
	})
	return s, st
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetGray(x, y, color.Gray{Y: uint8((x + y) * 255 / (w + h))})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// uploadRequest builds a multipart plan request. An empty filename omits
// the image part.
func uploadRequest(t *testing.T, filename string, data []byte, options string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(data)
	}
	if options != "" {
		mw.WriteField("options", options)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/plans", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func createPlan(t *testing.T, s *Server, options string) store.Record {
	t.Helper()
	rec := serve(s, uploadRequest(t, "portrait.png", pngBytes(t, 24, 24), options))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/plans = %d: %s", rec.Code, rec.Body.String())
	}
	var out store.Record
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if got := rec.Header().Get("Location"); got != "/v1/plans/"+out.ID {
		t.Errorf("Location = %q", got)
	}
	return out
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t, 0)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body healthBody
	json.NewDecoder(rec.Body).Decode(&body)
	if body.Status != "ok" || body.Version == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestPlanLifecycle(t *testing.T) {
	s, _ := testServer(t, 0)
	created := createPlan(t, s, `{"start": 3}`)

	if created.Document == nil || created.Document.ID != created.ID {
		t.Fatalf("created document = %+v", created.Document)
	}
	if created.Document.Order[0] != 3 || created.Document.Lines() != 12 {
		t.Errorf("order = %v", created.Document.Order)
	}

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/v1/plans/"+created.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET = %d", rec.Code)
	}

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/v1/plans", nil))
	var list []store.Record
	json.NewDecoder(rec.Body).Decode(&list)
	if rec.Code != http.StatusOK || len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("list = %d, %d records", rec.Code, len(list))
	}

	rec = serve(s, httptest.NewRequest(http.MethodDelete, "/v1/plans/"+created.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("DELETE = %d", rec.Code)
	}
	rec = serve(s, httptest.NewRequest(http.MethodGet, "/v1/plans/"+created.ID, nil))
	if rec.Code != http.StatusNotFound || decodeError(t, rec).Code != errors.ErrCodeNotFound {
		t.Errorf("GET after DELETE = %d", rec.Code)
	}
}

func TestArtifacts(t *testing.T) {
	s, _ := testServer(t, 0)
	created := createPlan(t, s, "")

	tests := []struct {
		path        string
		contentType string
		check       func([]byte) bool
	}{
		{"artifact.svg", "image/svg+xml", func(b []byte) bool { return bytes.HasPrefix(b, []byte("<svg")) }},
		{"artifact.svg?width=100&height=50&stroke_width=2", "image/svg+xml", func(b []byte) bool {
			return bytes.Contains(b, []byte(`width="100"`)) && bytes.Contains(b, []byte("stroke-width:2"))
		}},
		{"artifact.png?width=40&height=40", "image/png", func(b []byte) bool {
			img, err := png.Decode(bytes.NewReader(b))
			return err == nil && img.Bounds().Dx() == 40
		}},
		{"artifact.json", "application/json", func(b []byte) bool {
			doc, err := sbio.UnmarshalJSON(b)
			return err == nil && doc.ID == created.ID
		}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := serve(s, httptest.NewRequest(http.MethodGet, "/v1/plans/"+created.ID+"/"+tt.path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if !tt.check(rec.Body.Bytes()) {
				t.Errorf("unexpected body: %.80s", rec.Body.String())
			}
		})
	}
}

func TestArtifactErrors(t *testing.T) {
	s, _ := testServer(t, 0)
	created := createPlan(t, s, "")
	missing := "00000000-0000-4000-8000-000000000000"

	tests := []struct {
		name   string
		path   string
		status int
		code   errors.Code
	}{
		{"format", "/v1/plans/" + created.ID + "/artifact.gif", http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"width", "/v1/plans/" + created.ID + "/artifact.svg?width=abc", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"stroke", "/v1/plans/" + created.ID + "/artifact.svg?stroke_width=0", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"background", "/v1/plans/" + created.ID + "/artifact.png?background=maybe", http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"missing", "/v1/plans/" + missing + "/artifact.svg", http.StatusNotFound, errors.ErrCodeNotFound},
		{"bad id", "/v1/plans/not-an-id/artifact.svg", http.StatusBadRequest, errors.ErrCodeInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decodeError(t, rec).Code; got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestCreatePlanErrors(t *testing.T) {
	s, st := testServer(t, 0)
	img := pngBytes(t, 16, 16)

	tests := []struct {
		name     string
		filename string
		data     []byte
		options  string
		code     errors.Code
	}{
		{"missing image", "", nil, "", errors.ErrCodeInvalidInput},
		{"unknown option", "a.png", img, `{"chord": 10}`, errors.ErrCodeInvalidConfig},
		{"malformed options", "a.png", img, `{`, errors.ErrCodeInvalidConfig},
		{"bad opacity", "a.png", img, `{"opacity": 2}`, errors.ErrCodeInvalidConfig},
		{"bad shape", "a.png", img, `{"shape": "hexagon"}`, errors.ErrCodeInvalidShape},
		{"bad strategy", "a.png", img, `{"strategy": "forever"}`, errors.ErrCodeInvalidStrategy},
		{"not an image", "a.png", []byte("hello"), "", errors.ErrCodeInvalidImage},
		{"hidden file", ".png", img, "", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(s, uploadRequest(t, tt.filename, tt.data, tt.options))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if got := decodeError(t, rec).Code; got != tt.code {
				t.Errorf("code = %s, want %s", got, tt.code)
			}
		})
	}

	if recs, _ := st.List(context.Background(), 0); len(recs) != 0 {
		t.Errorf("failed requests stored %d records", len(recs))
	}
}

func TestCreatePlanNotMultipart(t *testing.T) {
	s, _ := testServer(t, 0)
	req := httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := serve(s, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadTooLarge(t *testing.T) {
	s, _ := testServer(t, 64)
	rec := serve(s, uploadRequest(t, "big.png", pngBytes(t, 64, 64), ""))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestExhaustedPlanIsStored(t *testing.T) {
	s, st := testServer(t, 0)
	created := createPlan(t, s, `{"chords": 5, "anchors": 8, "gap": 4}`)
	if !created.Document.Exhausted {
		t.Error("document not marked exhausted")
	}
	if _, err := st.Get(context.Background(), created.ID); err != nil {
		t.Errorf("exhausted plan not stored: %v", err)
	}
}

func TestInvalidIDAndUnknownRoute(t *testing.T) {
	s, _ := testServer(t, 0)

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/v1/plans/NOT-A-UUID", http.StatusBadRequest},
		{http.MethodDelete, "/v1/plans/nope", http.StatusBadRequest},
		{http.MethodDelete, "/v1/plans/00000000-0000-4000-8000-000000000000", http.StatusNotFound},
		{http.MethodGet, "/v2/plans", http.StatusNotFound},
		{http.MethodGet, "/v1/plans?limit=-1", http.StatusBadRequest},
		{http.MethodPut, "/v1/plans", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := serve(s, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidImage, http.StatusBadRequest},
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodePlanExhausted, http.StatusUnprocessableEntity},
		{errors.ErrCodeTimeout, http.StatusGatewayTimeout},
		{errors.ErrCodeUnsupported, http.StatusNotImplemented},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

type recordingHTTPHooks struct {
	mu        sync.Mutex
	requests  []string
	responses []string
}

func (h *recordingHTTPHooks) OnRequest(_ context.Context, method, route string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+route)
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, method+" "+route+" "+http.StatusText(status))
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s, _ := testServer(t, 0)
	serve(s, httptest.NewRequest(http.MethodGet, "/v1/plans/00000000-0000-4000-8000-000000000000", nil))

	if len(hooks.requests) != 1 || hooks.requests[0] != "GET /v1/plans/{id}" {
		t.Errorf("requests = %v", hooks.requests)
	}
	if len(hooks.responses) != 1 || hooks.responses[0] != "GET /v1/plans/{id} Not Found" {
		t.Errorf("responses = %v", hooks.responses)
	}
}

func TestDefaultsNotMutated(t *testing.T) {
	penalty := 2.0
	s := New(Config{
		Runner:   pipeline.NewRunner(nil, nil, nil),
		Store:    store.NewMemoryStore(),
		Logger:   log.NewWithOptions(io.Discard, log.Options{}),
		Defaults: pipeline.Options{Penalty: &penalty, Formats: []string{"svg"}},
	})
	if _, err := s.decodeOptions(`{"penalty": 9, "formats": ["png"]}`); err != nil {
		t.Fatal(err)
	}
	if penalty != 2 || s.defaults.Formats[0] != "svg" {
		t.Errorf("defaults mutated: penalty %v formats %v", penalty, s.defaults.Formats)
	}
}
