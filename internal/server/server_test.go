package server

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/menuforge/menuforge/pkg/menu"
	"github.com/menuforge/menuforge/pkg/pipeline"
	"github.com/menuforge/menuforge/pkg/store"
)

func testServer(t *testing.T, opts ...Option) http.Handler {
	t.Helper()
	runner := pipeline.NewRunner(nil, nil, nil, log.NewWithOptions(io.Discard, log.Options{}))
	opts = append([]Option{WithLogger(log.NewWithOptions(io.Discard, log.Options{}))}, opts...)
	return New(runner, opts...).Handler()
}

func encodeTestPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{245, 240, 230, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func layoutBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"content": &menu.Content{
			Title: "Cocktail Menu",
			Sections: []menu.Section{
				{Title: "Classics", Items: []menu.Item{{Name: "Negroni", Price: "$13"}}},
			},
		},
		"format":  "slide",
		"no_zone": true,
	})
	if err != nil {
		t.Fatal(err)
	}
	return body
}

func TestHealthz(t *testing.T) {
	h := testServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestDetectEndpoint(t *testing.T) {
	h := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/detect", bytes.NewReader(encodeTestPNG(t, 600, 900)))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Zone struct {
			Top    int `json:"top"`
			Bottom int `json:"bottom"`
			Left   int `json:"left"`
			Right  int `json:"right"`
		} `json:"zone"`
		Detected bool `json:"detected"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Detected {
		t.Error("uniform image should be detected")
	}
	if resp.Zone.Top >= resp.Zone.Bottom || resp.Zone.Left >= resp.Zone.Right {
		t.Errorf("invalid zone: %+v", resp.Zone)
	}
}

func TestDetectEndpointRejectsGarbage(t *testing.T) {
	h := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/detect", strings.NewReader("not an image"))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "INVALID_IMAGE") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLayoutEndpoint(t *testing.T) {
	h := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/layout", bytes.NewReader(layoutBody(t)))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var l struct {
		Width    float64 `json:"width"`
		Height   float64 `json:"height"`
		Elements []struct {
			Text string `json:"text"`
		} `json:"elements"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &l); err != nil {
		t.Fatal(err)
	}
	if l.Width != 1920 || l.Height != 1080 {
		t.Errorf("canvas = %vx%v, want 1920x1080", l.Width, l.Height)
	}
	if len(l.Elements) == 0 || l.Elements[0].Text != "Cocktail Menu" {
		t.Errorf("elements = %+v", l.Elements)
	}
}

func TestLayoutEndpointMissingContent(t *testing.T) {
	h := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/layout", strings.NewReader(`{"format":"flyer"}`))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRenderEndpointSVG(t *testing.T) {
	h := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/render", bytes.NewReader(layoutBody(t)))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/svg+xml" {
		t.Errorf("content type = %q", got)
	}
	if !strings.Contains(rec.Body.String(), "Cocktail Menu") {
		t.Error("svg should contain the title")
	}
}

func TestRenderEndpointPreview(t *testing.T) {
	h := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/render?output=preview", bytes.NewReader(layoutBody(t)))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("content type = %q", got)
	}
	if _, err := png.Decode(bytes.NewReader(rec.Body.Bytes())); err != nil {
		t.Errorf("preview is not a PNG: %v", err)
	}
}

func TestRenderEndpointRejectsOutput(t *testing.T) {
	h := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/render?output=pdf", bytes.NewReader(layoutBody(t)))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRecordsEndpoints(t *testing.T) {
	st := store.NewMemoryStore()
	rec1 := store.NewRecord("Dinner", "flyer", "img", "lay", []string{"menu.svg"})
	if err := st.Put(context.Background(), rec1); err != nil {
		t.Fatal(err)
	}

	h := testServer(t, WithStore(st))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/records", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), rec1.ID) {
		t.Error("list should contain the record")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/records/"+rec1.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/records/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing record status = %d, want 404", rec.Code)
	}
}

func TestRecordsEndpointsAbsentWithoutStore(t *testing.T) {
	h := testServer(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/records", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 without a store", rec.Code)
	}
}
