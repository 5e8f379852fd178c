package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/codex/internal/app"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration_SQLiteRestore(t *testing.T) {
	Convey("Given a service backed by a sqlite file", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		path := filepath.Join(t.TempDir(), "progress.db")

		first := newService(service.WithStorePath(path))
		So(first.Start(ctx), ShouldBeNil)

		levelUp(ctx, first, "sword", 2)
		So(eventually(func() bool {
			p, _ := first.Collection(ctx, 1)
			return p.Eligible
		}), ShouldBeTrue)

		_, err := first.Advance(ctx, 1)
		So(err, ShouldBeNil)
		So(first.GetStats()["storedKeys"], ShouldEqual, 1)
		So(first.Stop(ctx), ShouldBeNil)

		Convey("When a new service starts on the same file", func() {
			second := newService(service.WithStorePath(path))
			So(second.Start(ctx), ShouldBeNil)
			defer func() { _ = second.Stop(ctx) }()

			Convey("Then the tier and its stat are restored", func() {
				p, err := second.Collection(ctx, 1)
				So(err, ShouldBeNil)
				So(p.Tier, ShouldEqual, 1)
				So(p.CurrentText, ShouldEqual, "ATK +10")

				status, err := second.Status(ctx)
				So(err, ShouldBeNil)
				So(status.Base["ATK"], ShouldEqual, 10)
			})

			Convey("Then eligibility is recomputed from the seeded levels", func() {
				b, err := second.Badge(ctx)
				So(err, ShouldBeNil)
				So(b.On, ShouldBeFalse)
			})
		})
	})
}

func TestServiceIntegration_Restart(t *testing.T) {
	Convey("Given a started service on a sqlite file", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		svc := newService(service.WithStorePath(filepath.Join(t.TempDir(), "progress.db")))
		So(svc.Start(ctx), ShouldBeNil)

		levelUp(ctx, svc, "sword", 2)
		So(eventually(func() bool {
			p, _ := svc.Collection(ctx, 1)
			return p.Eligible
		}), ShouldBeTrue)
		_, err := svc.Advance(ctx, 1)
		So(err, ShouldBeNil)

		Convey("When it is stopped and started again", func() {
			So(svc.Stop(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)
			defer func() { _ = svc.Stop(ctx) }()

			Convey("Then it reopens the file and keeps the tier", func() {
				p, err := svc.Collection(ctx, 1)
				So(err, ShouldBeNil)
				So(p.Tier, ShouldEqual, 1)
				So(svc.GetStats()["storedKeys"], ShouldEqual, 1)

				status, err := svc.Status(ctx)
				So(err, ShouldBeNil)
				So(status.Base["ATK"], ShouldEqual, 10)
			})
		})
	})
}
