package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"suraksha/internal/device"
	"suraksha/internal/emergency"
	"suraksha/internal/models"
	"suraksha/internal/store"
	"suraksha/pkg/cache"
	"suraksha/pkg/config"
	"suraksha/pkg/logger"
	"suraksha/pkg/scheduler"
	"suraksha/pkg/sse"
	stores "suraksha/pkg/storage"
	"suraksha/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testApp struct {
	router    *gin.Engine
	store     *store.Store
	locations *device.LocationGateway
	media     *device.MediaGateway
	token     string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	util.Sig().Reset()
	logger.Init(logger.LogConfig{Level: "error"})

	db, err := util.OpenDatabase(&gorm.Config{}, "", "")
	require.NoError(t, err)
	st := store.New(db, stores.NewLocalStore(t.TempDir()))
	require.NoError(t, st.AutoMigrate())

	sched := scheduler.New()
	t.Cleanup(sched.Stop)

	locations := device.NewLocationGateway()
	media := device.NewMediaGateway()
	hub := sse.NewHub()
	c, err := cache.NewCache(cache.Config{Type: "gocache"})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	cfg := &config.Config{
		APIPrefix:       "/api",
		SessionSecret:   "test-secret",
		JWTSecret:       "test-secret",
		HoldDuration:    60 * time.Millisecond,
		AudioClipLength: 100 * time.Millisecond,
	}
	orch := emergency.New(st, locations, media, sched, hub, emergency.Options{
		HoldDuration:    cfg.HoldDuration,
		AudioClipLength: cfg.AudioClipLength,
	})
	t.Cleanup(orch.Shutdown)

	r := gin.New()
	New(st, orch, hub, c, locations, media, cfg).Register(r)

	return &testApp{router: r, store: st, locations: locations, media: media}
}

func (a *testApp) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) signup(t *testing.T) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"email": "meera@example.com", "password": "secret123", "name": "Meera",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "meera@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	a.token = resp.Data.Token
}

func TestAuthFlow(t *testing.T) {
	app := newTestApp(t)

	t.Run("register and login", func(t *testing.T) {
		app.signup(t)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/auth/register", gin.H{
			"email": "meera@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		token := app.token
		app.token = ""
		defer func() { app.token = token }()
		w := app.do(t, http.MethodPost, "/api/auth/login", gin.H{
			"email": "meera@example.com", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("me", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/auth/me", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "meera@example.com")
	})

	t.Run("unauthenticated rejected", func(t *testing.T) {
		token := app.token
		app.token = ""
		defer func() { app.token = token }()
		w := app.do(t, http.MethodGet, "/api/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestContactsRoundTrip(t *testing.T) {
	app := newTestApp(t)
	app.signup(t)

	w := app.do(t, http.MethodPut, "/api/profile/contacts", gin.H{
		"contacts": []gin.H{
			{"name": "Asha", "phone": "+919800000001", "relationship": "sister"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	t.Run("incomplete contact rejected wholesale", func(t *testing.T) {
		w := app.do(t, http.MethodPut, "/api/profile/contacts", gin.H{
			"contacts": []gin.H{
				{"name": "Ravi", "phone": "+919800000002"},
				{"name": "", "phone": "+919800000003"},
			},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)

		// First write still intact.
		w = app.do(t, http.MethodGet, "/api/profile", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Asha")
		assert.NotContains(t, w.Body.String(), "Ravi")
	})
}

func TestEmergencyOverHTTP(t *testing.T) {
	app := newTestApp(t)
	app.signup(t)

	w := app.do(t, http.MethodPut, "/api/profile/contacts", gin.H{
		"contacts": []gin.H{{"name": "Asha", "phone": "+919800000001"}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, "/api/device/position", gin.H{"lat": 28.6139, "lng": 77.2090})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, "/api/emergency/activate", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data models.EmergencySession `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	sessionID := created.Data.ID
	require.NotEmpty(t, sessionID)
	require.NotNil(t, created.Data.LocationLat)

	t.Run("session visible in history", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/sessions", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), sessionID)
	})

	t.Run("tracked position annotated with distance", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/device/position", gin.H{"lat": 28.62, "lng": 77.21})
		require.Equal(t, http.StatusOK, w.Code)

		require.Eventually(t, func() bool {
			w := app.do(t, http.MethodGet, "/api/locations/recent?lat=28.6139&lng=77.2090", nil)
			return w.Code == http.StatusOK && bytes.Contains(w.Body.Bytes(), []byte("distance_km"))
		}, 2*time.Second, 20*time.Millisecond)
	})

	t.Run("uploaded audio lands as recording", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("kind", "audio"))
		require.NoError(t, mw.WriteField("duration_seconds", "30"))
		fw, err := mw.CreateFormFile("file", "clip.webm")
		require.NoError(t, err)
		_, err = fw.Write([]byte("not really webm"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/device/media", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+app.token)
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		require.Eventually(t, func() bool {
			w := app.do(t, http.MethodGet, fmt.Sprintf("/api/sessions/%s/recordings", sessionID), nil)
			return w.Code == http.StatusOK && bytes.Contains(w.Body.Bytes(), []byte("audio"))
		}, 2*time.Second, 20*time.Millisecond)
	})

	t.Run("resolve closes the session", func(t *testing.T) {
		w := app.do(t, http.MethodPost, fmt.Sprintf("/api/sessions/%s/resolve", sessionID), nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = app.do(t, http.MethodGet, "/api/sessions/"+sessionID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), models.SessionResolved)

		w = app.do(t, http.MethodPost, fmt.Sprintf("/api/sessions/%s/resolve", sessionID), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "already closed")
	})

	t.Run("dashboard aggregates", func(t *testing.T) {
		w := app.do(t, http.MethodGet, "/api/dashboard", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "contact_count")
		assert.Contains(t, w.Body.String(), "last_session")
	})
}

func TestDashboardCache(t *testing.T) {
	app := newTestApp(t)
	app.signup(t)

	// Prime the cached snapshot.
	w := app.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("timer state live on cache hits", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/timer/start", gin.H{"minutes": 30})
		require.Equal(t, http.StatusOK, w.Code)

		w = app.do(t, http.MethodGet, "/api/dashboard", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"timer_running":true`)

		w = app.do(t, http.MethodPost, "/api/timer/checkin", nil)
		require.Equal(t, http.StatusOK, w.Code)

		// Still within the cache TTL: the hit must reflect the stopped
		// timer, i.e. the snapshot was never mutated by the earlier read.
		w = app.do(t, http.MethodGet, "/api/dashboard", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"timer_running":false`)
	})

	t.Run("concurrent reads on a warm cache", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
				req.Header.Set("Authorization", "Bearer "+app.token)
				rec := httptest.NewRecorder()
				app.router.ServeHTTP(rec, req)
				assert.Equal(t, http.StatusOK, rec.Code)
			}()
		}
		wg.Wait()
	})
}

func TestCachedSnapshotForms(t *testing.T) {
	raw := []byte(`{"contact_count":1}`)

	b, ok := cachedSnapshot(json.RawMessage(raw))
	require.True(t, ok)
	assert.Equal(t, raw, b)

	b, ok = cachedSnapshot(raw)
	require.True(t, ok)
	assert.Equal(t, raw, b)

	_, ok = cachedSnapshot("not a snapshot")
	assert.False(t, ok)

	_, ok = cachedSnapshot(&dashboardPayload{})
	assert.False(t, ok)
}

func TestSafetyTimerOverHTTP(t *testing.T) {
	app := newTestApp(t)
	app.signup(t)

	w := app.do(t, http.MethodPost, "/api/timer/start", gin.H{"minutes": 30})
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/timer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"running":true`)

	w = app.do(t, http.MethodPost, "/api/timer/checkin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodPost, "/api/timer/checkin", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "nothing left to check in")

	t.Run("zero minutes rejected", func(t *testing.T) {
		w := app.do(t, http.MethodPost, "/api/timer/start", gin.H{"minutes": 0})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionOwnership(t *testing.T) {
	app := newTestApp(t)
	app.signup(t)

	app.locations.Push(1, device.Position{Lat: 1, Lng: 2})
	w := app.do(t, http.MethodPost, "/api/emergency/activate", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Data models.EmergencySession `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// Second account must not see or close the first account's session.
	w = app.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"email": "other@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	w = app.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email": "other@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	app.token = login.Data.Token

	w = app.do(t, http.MethodGet, "/api/sessions/"+created.Data.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = app.do(t, http.MethodPost, fmt.Sprintf("/api/sessions/%s/cancel", created.Data.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
