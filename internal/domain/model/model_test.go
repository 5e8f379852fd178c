package model_test

import (
	"errors"
	"testing"

	model "github.com/okian/codex/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestItemKind(t *testing.T) {
	convey.Convey("Given the closed set of item kinds", t, func() {
		convey.Convey("When asking for categories", func() {
			convey.So(model.KindWeapon.Category(), convey.ShouldEqual, model.CategoryEquipment)
			convey.So(model.KindArmor.Category(), convey.ShouldEqual, model.CategoryEquipment)
			convey.So(model.KindActiveSkill.Category(), convey.ShouldEqual, model.CategorySkill)
			convey.So(model.KindBuffSkill.Category(), convey.ShouldEqual, model.CategorySkill)
			convey.So(model.KindPassiveSkill.Category(), convey.ShouldEqual, model.CategorySkill)
		})

		convey.Convey("When matching items against an active tier", func() {
			convey.Convey("Then active and buff skills both count", func() {
				convey.So(model.KindActiveSkill.Accepts(model.KindActiveSkill), convey.ShouldBeTrue)
				convey.So(model.KindActiveSkill.Accepts(model.KindBuffSkill), convey.ShouldBeTrue)
				convey.So(model.KindActiveSkill.Accepts(model.KindPassiveSkill), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When matching items against a passive tier", func() {
			convey.Convey("Then only passive skills count", func() {
				convey.So(model.KindPassiveSkill.Accepts(model.KindPassiveSkill), convey.ShouldBeTrue)
				convey.So(model.KindPassiveSkill.Accepts(model.KindBuffSkill), convey.ShouldBeFalse)
				convey.So(model.KindPassiveSkill.Accepts(model.KindActiveSkill), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When grouping a buff skill", func() {
			convey.So(model.KindBuffSkill.Group(), convey.ShouldEqual, model.KindActiveSkill)
			convey.So(model.KindActiveSkill.Members(), convey.ShouldResemble, []model.ItemKind{model.KindActiveSkill, model.KindBuffSkill})
			convey.So(model.KindArmor.Members(), convey.ShouldResemble, []model.ItemKind{model.KindArmor})
			convey.So(model.KindBuffSkill.TierKind(), convey.ShouldBeFalse)
			convey.So(model.KindWeapon.TierKind(), convey.ShouldBeTrue)
		})

		convey.Convey("When parsing names", func() {
			k, err := model.ParseItemKind("Passive")
			convey.So(err, convey.ShouldBeNil)
			convey.So(k, convey.ShouldEqual, model.KindPassiveSkill)

			_, err = model.ParseItemKind("shield")
			convey.So(errors.Is(err, model.ErrUnknownValue), convey.ShouldBeTrue)
		})
	})
}

func TestRarityAndCategoryParsing(t *testing.T) {
	convey.Convey("Given rarity and category names", t, func() {
		r, err := model.ParseRarity("rare")
		convey.So(err, convey.ShouldBeNil)
		convey.So(r, convey.ShouldEqual, model.RarityRare)

		r, err = model.ParseRarity("3")
		convey.So(err, convey.ShouldBeNil)
		convey.So(r, convey.ShouldEqual, model.RarityEpic)

		_, err = model.ParseRarity("golden")
		convey.So(err, convey.ShouldNotBeNil)

		c, err := model.ParseCategory("SKILL")
		convey.So(err, convey.ShouldBeNil)
		convey.So(c, convey.ShouldEqual, model.CategorySkill)
	})
}

func TestTierRecordChannels(t *testing.T) {
	convey.Convey("Given tier records built from table rows", t, func() {
		convey.Convey("When the stat is fractional", func() {
			rec := model.NewTierRecord(1, 1, model.KindWeapon, model.RarityRare, 3, model.StatCritChance, 150)

			convey.Convey("Then only the float channel is populated", func() {
				convey.So(rec.Value, convey.ShouldEqual, 0)
				convey.So(rec.Fraction, convey.ShouldAlmostEqual, 1.5, 1e-9)
				c := rec.Contribution()
				convey.So(c.IsFraction, convey.ShouldBeTrue)
				convey.So(c.Negate().Fraction, convey.ShouldAlmostEqual, -1.5, 1e-9)
				convey.So(c.Negate().Value, convey.ShouldEqual, 0)
			})
		})

		convey.Convey("When the stat is an integer stat", func() {
			rec := model.NewTierRecord(1, 2, model.KindArmor, model.RarityEpic, 5, model.StatAttack, 40)

			convey.Convey("Then only the integer channel is populated", func() {
				convey.So(rec.Value, convey.ShouldEqual, 40)
				convey.So(rec.Fraction, convey.ShouldEqual, 0)
				convey.So(rec.Category, convey.ShouldEqual, model.CategoryEquipment)
				c := rec.Contribution()
				convey.So(c.IsFraction, convey.ShouldBeFalse)
				convey.So(c.Negate().Value, convey.ShouldEqual, -40)
			})
		})

		convey.Convey("When formatting contributions", func() {
			convey.So(model.NewTierRecord(1, 1, model.KindWeapon, 0, 1, model.StatAttack, 12).Contribution().Format(), convey.ShouldEqual, "+12")
			convey.So(model.NewTierRecord(1, 1, model.KindWeapon, 0, 1, model.StatGoldIncrease, 5).Contribution().Format(), convey.ShouldEqual, "+5%")
			convey.So(model.NewTierRecord(1, 1, model.KindWeapon, 0, 1, model.StatMoveSpeed, 3).Contribution().Format(), convey.ShouldEqual, "+3%")
		})
	})
}

func TestStatTypeParsing(t *testing.T) {
	convey.Convey("Given stat names from the tier table", t, func() {
		s, err := model.ParseStatType("dmg_redu")
		convey.So(err, convey.ShouldBeNil)
		convey.So(s, convey.ShouldEqual, model.StatDamageReduction)
		convey.So(s.IsFraction(), convey.ShouldBeTrue)
		convey.So(model.StatBossDamage.IsPercent(), convey.ShouldBeTrue)
		convey.So(model.StatHealth.IsPercent(), convey.ShouldBeFalse)
		convey.So(model.StatHealth.String(), convey.ShouldEqual, "HP")
	})
}
