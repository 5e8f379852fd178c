package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/codex/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.DataPath, convey.ShouldEqual, "data/collections.yaml")
			convey.So(cfg.StorePath, convey.ShouldBeEmpty)
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1_024)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.FeedBuffer, convey.ShouldEqual, 32)
			convey.So(cfg.MaxItemLevel, convey.ShouldEqual, 50)
			convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "codex")
			convey.So(cfg.Node, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with bad values", t, func() {
		cases := map[string]func(*config.Config){
			"empty data path": func(c *config.Config) { c.DataPath = "" },
			"zero queue":      func(c *config.Config) { c.QueueSize = 0 },
			"no workers":      func(c *config.Config) { c.WorkerCount = -1 },
			"zero dedupe":     func(c *config.Config) { c.DedupeSize = 0 },
			"zero feed":       func(c *config.Config) { c.FeedBuffer = 0 },
			"zero max level":  func(c *config.Config) { c.MaxItemLevel = 0 },
			"bad log format":  func(c *config.Config) { c.LogFormat = "xml" },
		}
		for name, mutate := range cases {
			convey.Convey("Then "+name+" is rejected", func() {
				cfg := config.New()
				mutate(cfg)
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})
}
