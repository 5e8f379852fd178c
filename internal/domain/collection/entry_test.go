package collection_test

import (
	"context"
	"testing"

	"github.com/okian/codex/internal/domain/collection"
	"github.com/okian/codex/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestEntryReevaluate(t *testing.T) {
	Convey("Given an initialized weapon entry", t, func() {
		ctx := context.Background()
		reg, err := collection.NewRegistry(weaponLadder(1))
		So(err, ShouldBeNil)
		So(reg.LoadAll(ctx), ShouldBeNil)
		e, _ := reg.Entry(1)
		So(e.Subscribed(), ShouldBeTrue)
		So(e.Key(), ShouldEqual, "collection_1_level")
		So(e.Next().LevelCondition, ShouldEqual, 3)

		Convey("An empty level list is never satisfied", func() {
			So(e.Reevaluate(ctx, nil), ShouldBeFalse)
			So(e.Subscribed(), ShouldBeTrue)
		})

		Convey("Every level must meet the condition", func() {
			So(e.Reevaluate(ctx, []int{3, 1, 5}), ShouldBeFalse)
			So(e.Reevaluate(ctx, []int{3, 3, 5}), ShouldBeTrue)
			So(e.Subscribed(), ShouldBeFalse)
		})

		Convey("Eligibility can be withdrawn before advancing", func() {
			So(e.Reevaluate(ctx, []int{4}), ShouldBeTrue)
			So(e.Reevaluate(ctx, []int{2}), ShouldBeFalse)
			So(e.Eligible(), ShouldBeFalse)
		})

		Convey("A notification without levels is ignored", func() {
			So(e.Reevaluate(ctx, []int{4}), ShouldBeTrue)
			e.HandleGroup(ctx, model.GroupNotification{Kind: model.KindWeapon, Rarity: model.RarityRare})
			So(e.Eligible(), ShouldBeTrue)
		})

		Convey("Initialize re-attaches and recomputes from the source", func() {
			So(e.Reevaluate(ctx, []int{4}), ShouldBeTrue)
			So(e.Initialize(ctx), ShouldBeNil)
			So(e.Subscribed(), ShouldBeTrue)
			So(e.Eligible(), ShouldBeFalse)
		})

		Convey("A maxed entry is never eligible whatever the levels", func() {
			So(e.Reevaluate(ctx, []int{4}), ShouldBeTrue)
			_, _, err := e.Advance(ctx)
			So(err, ShouldBeNil)
			So(e.Maxed(), ShouldBeTrue)

			So(e.Reevaluate(ctx, []int{99}), ShouldBeFalse)
			So(e.Reevaluate(ctx, []int{99, 99, 99}), ShouldBeFalse)
			So(e.Eligible(), ShouldBeFalse)
		})

		Convey("The ladder is exposed as a copy", func() {
			recs := e.Records()
			So(recs, ShouldHaveLength, 2)
			recs[1].LevelCondition = 0
			So(e.Next().LevelCondition, ShouldEqual, 3)
		})
	})
}
