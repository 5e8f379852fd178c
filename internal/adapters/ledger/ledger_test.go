package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/codex/internal/adapters/ledger"
	"github.com/okian/codex/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLedger(t *testing.T) {
	Convey("Given an empty ledger", t, func() {
		ctx := context.Background()
		l := ledger.New()

		Convey("Changes land on their channel", func() {
			So(l.Push(ctx, model.StatChange{Stat: model.StatAttack, Value: 10}), ShouldBeNil)
			So(l.Push(ctx, model.StatChange{Stat: model.StatBossDamage, Value: 5}), ShouldBeNil)
			So(l.Push(ctx, model.StatChange{Stat: model.StatCritChance, Fraction: 0.05, IsFraction: true}), ShouldBeNil)

			s := l.Snapshot()
			So(s.Base, ShouldResemble, map[string]int{"ATK": 10})
			So(s.Percent, ShouldResemble, map[string]int{"BOSS_DMG": 5})
			So(s.Fraction["CRIT_CH"], ShouldAlmostEqual, 0.05)
		})

		Convey("A retract followed by an apply leaves only the new value", func() {
			first := model.StatChange{Stat: model.StatMoveSpeed, Fraction: 0.01 * 3, IsFraction: true}
			So(l.Push(ctx, first), ShouldBeNil)
			So(l.Push(ctx, first.Negate()), ShouldBeNil)
			So(l.Snapshot().Fraction, ShouldBeEmpty)

			So(l.Push(ctx, model.StatChange{Stat: model.StatMoveSpeed, Fraction: 0.07, IsFraction: true}), ShouldBeNil)
			So(l.Snapshot().Fraction["MOV_SPD"], ShouldAlmostEqual, 0.07)
		})

		Convey("Changes on the wrong channel are refused", func() {
			err := l.Push(ctx, model.StatChange{Stat: model.StatCritChance, Value: 5})
			So(errors.Is(err, ledger.ErrChannelMismatch), ShouldBeTrue)

			err = l.Push(ctx, model.StatChange{Stat: model.StatType(99), Value: 1})
			So(errors.Is(err, ledger.ErrUnknownStat), ShouldBeTrue)
			So(l.Snapshot().Base, ShouldBeEmpty)
		})
	})
}
