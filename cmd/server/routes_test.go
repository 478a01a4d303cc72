package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/nereus/internal/engine"
	"github.com/Nixie-Tech-LLC/nereus/internal/history"
	"github.com/Nixie-Tech-LLC/nereus/internal/notify"
	"github.com/Nixie-Tech-LLC/nereus/internal/runner"
	"github.com/Nixie-Tech-LLC/nereus/internal/store"
	"github.com/Nixie-Tech-LLC/nereus/internal/sysinfo"
)

func TestRegisterRoutesServesCoreSurface(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()

	scheduleStore, err := store.NewFileStore(filepath.Join(dir, "schedules.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	runLog, err := history.Open(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	defer runLog.Close()

	notifier := notify.NewNotifier(notify.NewSMTPMailer("localhost", 587, "", ""))
	eng := engine.New(engine.Config{
		Store:    scheduleStore,
		Runner:   runner.New("rsync", filepath.Join(dir, "logs"), time.Minute),
		Notifier: notifier,
		RunLog:   runLog,
	})

	r := gin.New()
	RegisterRoutes(r, scheduleStore, eng, runLog, notifier, sysinfo.NewBrowser(dir))

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", path, nil)
		r.ServeHTTP(w, req)
		return w
	}

	if w := get("/health"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Errorf("health = %d %s", w.Code, w.Body.String())
	}
	if w := get("/api/schedules"); w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("schedules = %d %s", w.Code, w.Body.String())
	}
	if w := get("/metrics"); w.Code != http.StatusOK {
		t.Errorf("metrics = %d", w.Code)
	}
	if w := get("/api/system/timezone"); w.Code != http.StatusOK {
		t.Errorf("timezone = %d", w.Code)
	}

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("OPTIONS", "/api/schedules", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", "POST")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Errorf("preflight = %d, allow-origin = %q", w.Code, w.Header().Get("Access-Control-Allow-Origin"))
	}
}
