package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/codex/internal/config"
	"github.com/okian/codex/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

const testData = `
collections:
  - {index: 1, collection_level: 0, group: Equipment, type: Weapon, rarity_condition: 2, level_condition: 0, status_type: ATK, status_value: 0}
  - {index: 1, collection_level: 1, group: Equipment, type: Weapon, rarity_condition: 2, level_condition: 1, status_type: ATK, status_value: 10}
inventory:
  - {id: sword, name: Iron Sword, type: Weapon, rarity: Rare, level: 1}
`

func TestMainWiring(t *testing.T) {
	convey.Convey("Given configuration from the environment", t, func() {
		dir := t.TempDir()
		dataPath := filepath.Join(dir, "collections.yaml")
		convey.So(os.WriteFile(dataPath, []byte(testData), 0o600), convey.ShouldBeNil)

		t.Setenv("CODEX_ADDR", ":0")
		t.Setenv("CODEX_DATA_PATH", dataPath)
		t.Setenv("CODEX_STORE_PATH", filepath.Join(dir, "progress.db"))
		t.Setenv("CODEX_WORKER_COUNT", "2")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.WorkerCount, convey.ShouldEqual, 2)

		convey.Convey("When the service and handler are built", func() {
			svc := newService(cfg, logger.Nop())
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer func() { _ = svc.Stop(ctx) }()

			h := newHandler(ctx, svc, logger.Nop())

			convey.Convey("Then the entry is already eligible from the seeded level", func() {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/badge", http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, `"on":true`)
			})

			convey.Convey("And the docs and metrics routes are mounted", func() {
				for _, path := range []string{"/openapi.yaml", "/api-docs", "/healthz", "/stats"} {
					w := httptest.NewRecorder()
					h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				}
			})
		})
	})
}

func TestUpdateSystemMetrics(t *testing.T) {
	convey.Convey("Updating system metrics does not panic", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)
	})
}
