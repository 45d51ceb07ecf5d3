package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-tables/live"
	"github.com/yeremiapane/restaurant-tables/models"
	"github.com/yeremiapane/restaurant-tables/router"
	"github.com/yeremiapane/restaurant-tables/services"
	"github.com/yeremiapane/restaurant-tables/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeUpstream meniru API /api/Ban/* yang dipakai layar meja
type fakeUpstream struct {
	mu sync.Mutex

	tables       []map[string]interface{}
	zones        []map[string]interface{}
	stubStatus   map[string]int // "GET /all" -> status
	stubBody     map[string]string
	created      []map[string]string
	deleted      []string
	createdImage []string
}


func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		tables: []map[string]interface{}{
			{"maBan": 1, "soBan": "5", "soChoNgoi": 4, "hinhAnh": "a.jpg;b.jpg", "maKhuVuc": "KV001"},
			{"maBan": 2, "soBan": "6", "soChoNgoi": 2, "hinhAnh": "", "maKhuVuc": "KV001"},
			{"maBan": 3, "soBan": "7", "soChoNgoi": 6, "hinhAnh": "c.jpg", "maKhuVuc": "KV002"},
			{"maBan": 4, "soBan": "8", "soChoNgoi": 8, "hinhAnh": "", "maKhuVuc": "KV003"},
			{"maBan": 5, "soBan": "9", "soChoNgoi": 2, "hinhAnh": "", "maKhuVuc": "KV099"},
		},
		zones: []map[string]interface{}{
			{"id": "KV004", "tenKhuVuc": "Sân vườn"},
		},
		stubStatus: map[string]int{},
		stubBody:   map[string]string{},
	}
}

func (f *fakeUpstream) stub(route string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stubStatus[route] = status
	f.stubBody[route] = body
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	route := r.Method + " " + strings.TrimPrefix(r.URL.Path, "/api/Ban")
	if status, ok := f.stubStatus[route]; ok {
		w.WriteHeader(status)
		io.WriteString(w, f.stubBody[route])
		return
	}

	switch route {
	case "GET /all":
		json.NewEncoder(w).Encode(f.tables)
	case "GET /create":
		json.NewEncoder(w).Encode(map[string]interface{}{"khuVuc": f.zones})
	case "POST /create":
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.created = append(f.created, map[string]string{
			"soBan":     r.FormValue("soBan"),
			"soChoNgoi": r.FormValue("soChoNgoi"),
			"soKhuVuc":  r.FormValue("soKhuVuc"),
		})
		for _, fh := range r.MultipartForm.File["image"] {
			f.createdImage = append(f.createdImage, fh.Filename)
		}
		w.WriteHeader(http.StatusCreated)
	case "DELETE /delete":
		id := r.URL.Query().Get("ma")
		f.deleted = append(f.deleted, id)
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeUpstream) snapshot() (created []map[string]string, deleted []string, images []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string{}, f.created...), append([]string{}, f.deleted...), append([]string{}, f.createdImage...)
}

type testEnv struct {
	router   *gin.Engine
	upstream *fakeUpstream
	db       *gorm.DB
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	upstream := newFakeUpstream()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.ActivityLog{}))

	hub := live.NewHub(utils.InfoLogger)
	recorder := services.NewActivityRecorder(db, hub, utils.ErrorLogger)
	api := services.NewTableAPIClient(srv.URL, "Ban", 5*time.Second, utils.InfoLogger)
	screens := services.NewScreenRegistry(api, recorder, utils.InfoLogger, time.Minute)

	r := router.SetupRouter(screens, recorder, hub, router.Options{
		CORSAllowedOrigins:    []string{"http://127.0.0.1:5500"},
		RateLimitPerSecond:    1000,
		MutationRatePerMinute: 1000,
	})
	return &testEnv{router: r, upstream: upstream, db: db}
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.serve(t, req)
}

func (e *testEnv) serve(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return w.Code, resp
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), "data: %s", string(raw))
	return out
}

func (e *testEnv) mountBrowser(t *testing.T) services.BrowserSnapshot {
	t.Helper()
	code, resp := e.do(t, http.MethodPost, "/browsers", nil)
	require.Equal(t, http.StatusCreated, code)
	return decode[services.BrowserSnapshot](t, resp.Data)
}

func (e *testEnv) mountForm(t *testing.T) services.FormSnapshot {
	t.Helper()
	code, resp := e.do(t, http.MethodPost, "/forms", nil)
	require.Equal(t, http.StatusCreated, code)
	return decode[services.FormSnapshot](t, resp.Data)
}

func browserPath(id string, parts ...string) string {
	return fmt.Sprintf("/browsers/%s%s", id, strings.Join(parts, ""))
}

func formPath(id string, parts ...string) string {
	return fmt.Sprintf("/forms/%s%s", id, strings.Join(parts, ""))
}
