package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/charsetlab/internal/config"
	"github.com/JonMunkholm/charsetlab/internal/dataset"
)

const usersCSV = "id,name,home\n1,山田太郎,C:\\Users\\test\n2,表示ソフト,/home/soft\n"

type fixture struct {
	server   *Server
	dataFile string
	public   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()

	public := filepath.Join(root, "public")
	if err := os.MkdirAll(public, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(public, "index.html"), []byte("<h1>harness</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(public, "hello.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &fixture{dataFile: filepath.Join(root, "users.csv"), public: public}
	f.writeData(t, usersCSV)

	cfg := &config.Config{
		Server:  config.ServerConfig{Port: 8000, RequestTimeout: 5 * time.Second, ShutdownTimeout: time.Second},
		Paths:   config.PathsConfig{PublicDir: public, DataFile: f.dataFile},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
	f.server = NewServer(cfg)
	return f
}

func (f *fixture) writeData(t *testing.T, content string) {
	t.Helper()
	b, err := dataset.EncodeShiftJIS([]byte(content))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f.dataFile, b, 0o644); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func parseUsers(t *testing.T, body []byte, sjis bool) []map[string]string {
	t.Helper()
	if sjis {
		var err error
		if body, err = dataset.DecodeShiftJIS(body); err != nil {
			t.Fatalf("DecodeShiftJIS: %v", err)
		}
	}
	var users []map[string]string
	if err := json.Unmarshal(body, &users); err != nil {
		t.Fatalf("Unmarshal: %v (body %q)", err, body)
	}
	return users
}

func TestAPI_Variants(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		query       string
		contentType string
		sjis        bool
	}{
		{"", "application/json; charset=UTF-8", false},
		{"?api=users-utf8", "application/json; charset=UTF-8", false},
		{"?api=users-sjis", "application/json; charset=Shift_JIS", true},
		{"?api=users-sjis-no-header", "application/json", true},
	}

	want := []map[string]string{
		{"id": "1", "name": "山田太郎", "home": "C:&yen;Users&yen;test"},
		{"id": "2", "name": "表示ソフト", "home": "/home/soft"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := f.get(t, "/api"+tt.query)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
			}
			if got := parseUsers(t, rec.Body.Bytes(), tt.sjis); !reflect.DeepEqual(got, want) {
				t.Errorf("users = %v, want %v", got, want)
			}
		})
	}
}

func TestAPI_NoHeaderBytesMatchSJIS(t *testing.T) {
	f := newFixture(t)

	sjis := f.get(t, "/api?api=users-sjis")
	noHeader := f.get(t, "/api?api=users-sjis-no-header")

	if !bytes.Equal(sjis.Body.Bytes(), noHeader.Body.Bytes()) {
		t.Error("sjis and sjis-no-header bodies differ")
	}
}

func TestAPI_UnknownVariantMatchesDefault(t *testing.T) {
	f := newFixture(t)

	def := f.get(t, "/api")
	bogus := f.get(t, "/api?api=bogus")

	if bogus.Code != def.Code {
		t.Errorf("status = %d, want %d", bogus.Code, def.Code)
	}
	for _, h := range []string{"Content-Type", "Access-Control-Allow-Origin", "Content-Length"} {
		if bogus.Header().Get(h) != def.Header().Get(h) {
			t.Errorf("%s = %q, want %q", h, bogus.Header().Get(h), def.Header().Get(h))
		}
	}
	if !bytes.Equal(bogus.Body.Bytes(), def.Body.Bytes()) {
		t.Error("bogus body differs from default body")
	}
}

func TestAPI_NoBackslashInOutput(t *testing.T) {
	f := newFixture(t)

	body := f.get(t, "/api").Body.String()
	if strings.Contains(body, `\`) {
		t.Errorf("body contains a backslash: %s", body)
	}
	if !strings.Contains(body, "C:&yen;Users&yen;test") {
		t.Errorf("body missing yen entity: %s", body)
	}
}

func TestAPI_MissingDataset(t *testing.T) {
	f := newFixture(t)
	if err := os.Remove(f.dataFile); err != nil {
		t.Fatal(err)
	}

	for _, q := range []string{"", "?api=users-sjis", "?api=users-sjis-no-header"} {
		rec := f.get(t, "/api"+q)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s: status = %d, want 500", q, rec.Code)
		}
		if got := rec.Header().Get("Content-Type"); got != "application/json; charset=UTF-8" {
			t.Errorf("%s: Content-Type = %q", q, got)
		}

		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: Unmarshal: %v", q, err)
		}
		if body["error"] == "" {
			t.Errorf("%s: error message is empty", q)
		}
	}
}

func TestAPI_InvalidShiftJISDataset(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(f.dataFile, []byte("id,name\n1,\x81\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, q := range []string{"", "?api=users-sjis", "?api=users-sjis-no-header"} {
		rec := f.get(t, "/api"+q)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%q: status = %d, want 500", q, rec.Code)
		}
		if got := rec.Header().Get("Content-Type"); got != "application/json; charset=UTF-8" {
			t.Errorf("%q: Content-Type = %q", q, got)
		}
		if strings.ContainsRune(rec.Body.String(), '\uFFFD') {
			t.Errorf("%q: body carries U+FFFD: %s", q, rec.Body.String())
		}
	}
}

func TestAPI_ReadsFreshOnEveryRequest(t *testing.T) {
	f := newFixture(t)

	first := parseUsers(t, f.get(t, "/api").Body.Bytes(), false)
	if len(first) != 2 {
		t.Fatalf("len(first) = %d, want 2", len(first))
	}

	f.writeData(t, "id,name\n9,佐藤\n")

	second := parseUsers(t, f.get(t, "/api").Body.Bytes(), false)
	if len(second) != 1 || second[0]["name"] != "佐藤" {
		t.Errorf("second = %v, want the edited dataset", second)
	}
}

func TestAPI_HeaderOnlyDataset(t *testing.T) {
	f := newFixture(t)
	f.writeData(t, "id,name\n")

	rec := f.get(t, "/api?api=users-sjis")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "[]" {
		t.Errorf("body = %q, want []", rec.Body.String())
	}
}

func TestAPI_TakesPrecedenceOverStatic(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(filepath.Join(f.public, "api"), []byte("static"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := f.get(t, "/api")
	if rec.Body.String() == "static" {
		t.Fatal("/api was served by the static delegate")
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json; charset=UTF-8" {
		t.Errorf("Content-Type = %q", got)
	}
}

func TestAPI_MethodNotAllowed(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(filepath.Join(f.public, "api"), []byte("static"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodPost, "/api", http.StatusMethodNotAllowed},
		{http.MethodPut, "/api", http.StatusMethodNotAllowed},
		{http.MethodDelete, "/api?api=users-sjis", http.StatusMethodNotAllowed},
		{http.MethodPost, "/hello.txt", http.StatusMethodNotAllowed},
		{http.MethodHead, "/hello.txt", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			f.server.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestStatic(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/hello.txt", http.StatusOK, "hello"},
		{"/", http.StatusOK, "<h1>harness</h1>"},
		{"/missing.html", http.StatusNotFound, ""},
		{"/api/extra", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := f.get(t, tt.path)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.body != "" && rec.Body.String() != tt.body {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.body)
			}
		})
	}
}

func TestStatic_IndexMatchesFileServer(t *testing.T) {
	f := newFixture(t)

	want := httptest.NewRecorder()
	http.FileServer(http.Dir(f.public)).ServeHTTP(want, httptest.NewRequest(http.MethodGet, "/index.html", nil))

	got := f.get(t, "/index.html")
	if got.Code != want.Code {
		t.Errorf("status = %d, want %d", got.Code, want.Code)
	}
	if got.Header().Get("Location") != want.Header().Get("Location") {
		t.Errorf("Location = %q, want %q", got.Header().Get("Location"), want.Header().Get("Location"))
	}
	if got.Body.String() != want.Body.String() {
		t.Errorf("body = %q, want %q", got.Body.String(), want.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/api?api=users-sjis", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	if rec.Code >= 300 {
		t.Errorf("status = %d, want 2xx", rec.Code)
	}
}

func TestCORS_NotOnErrorResponse(t *testing.T) {
	f := newFixture(t)
	if err := os.Remove(f.dataFile); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api?api=users-sjis", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("Access-Control-Allow-Origin = %q, want none", got)
	}
	if got := rec.Header().Values("Vary"); len(got) != 0 {
		t.Errorf("Vary = %v, want none", got)
	}
}

func TestCORS_SuccessWithOrigin(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Values("Access-Control-Allow-Origin"); len(got) != 1 || got[0] != "*" {
		t.Errorf("Access-Control-Allow-Origin = %v, want [*]", got)
	}
}

func TestRequestIDHeader(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/api")
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("X-Request-Id header not set")
	}
}
