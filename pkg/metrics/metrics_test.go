package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := newManager(withRegisterer(registry))

			Convey("Then it uses the codex namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "codex")
				So(manager.subsystem, ShouldEqual, "collection")
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := newManager(
				WithNamespace("game"),
				WithSubsystem("codex"),
				WithBuckets([]float64{0.1, 0.5, 1.0}),
				WithNode("node-a"),
				withRegisterer(registry),
			)
			manager.advances.Inc()

			Convey("Then metric names and labels follow them", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() != "game_codex_advances_total" {
						continue
					}
					found = true
					So(f.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "node")
					So(f.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 1)
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When options carry empty values", func() {
			manager := newManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithBuckets(nil),
				WithNode(""),
				withRegisterer(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "codex")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.constLabels, ShouldBeNil)
			})
		})
	})
}

func TestCollectionRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		m := globalManager

		Convey("Advances and rejections are counted", func() {
			before := testutil.ToFloat64(m.advances)
			RecordAdvance()
			So(testutil.ToFloat64(m.advances), ShouldEqual, before+1)

			rb := testutil.ToFloat64(m.advancesRejected.WithLabelValues("not_eligible"))
			RecordAdvanceRejected("not_eligible")
			So(testutil.ToFloat64(m.advancesRejected.WithLabelValues("not_eligible")), ShouldEqual, rb+1)
		})

		Convey("Eligibility gauges and counters are set", func() {
			UpdateEligibleEntries(3)
			So(testutil.ToFloat64(m.eligibleEntries), ShouldEqual, 3)

			UpdateCollectionEntries(12)
			So(testutil.ToFloat64(m.collectionEntries), ShouldEqual, 12)

			before := testutil.ToFloat64(m.eligibilityChanges.WithLabelValues("true"))
			RecordEligibilityChange(true)
			So(testutil.ToFloat64(m.eligibilityChanges.WithLabelValues("true")), ShouldEqual, before+1)
		})

		Convey("Bus activity is labelled by channel", func() {
			UpdateSubscriptions("Skill", 4)
			So(testutil.ToFloat64(m.subscriptions.WithLabelValues("Skill")), ShouldEqual, 4)

			before := testutil.ToFloat64(m.groupPublishes.WithLabelValues("Equipment"))
			RecordGroupPublish("Equipment")
			So(testutil.ToFloat64(m.groupPublishes.WithLabelValues("Equipment")), ShouldEqual, before+1)
		})
	})
}

func TestPlumbingRecorders(t *testing.T) {
	Convey("Given the plumbing recorders", t, func() {
		Convey("They never panic", func() {
			So(func() {
				RecordLedgerPush("fraction")
				RecordLevelUp()
				RecordLevelUpDuplicate()
				RecordLevelUpError("max_level")
				UpdateFeedClients(2)
				RecordHTTPRequest("/badge", "GET", "200")
				RecordHTTPRequestDuration("/badge", "GET", "200", 1.5)
				UpdateRepositoryRecordsTotal(5)
				RecordRepositoryUpdateLatency(0.2)
				RecordRepositoryQueryLatency(0.1)
				UpdateQueueSize(10)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(3)
				UpdateWorkerCount(4)
				UpdateWorkerActiveCount(1)
				UpdateWorkerIdleCount(3)
				RecordWorkerProcessingLatency(2)
				RecordWorkerError()
				RecordErrorByComponent("collection", "persist")
				RecordErrorByType("persist", "warning")
				RecordErrorByEndpoint("/collections/{id}/advance", "POST", "conflict")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})

		Convey("The global registry gathers codex metrics", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			for _, f := range families {
				So(f.GetName(), ShouldStartWith, "codex_collection_")
			}
		})
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given a node-labelled configuration", t, func() {
		Configure(WithNamespace("player"), WithNode("eu-1"))
		Reset(func() { Configure() })

		Convey("Recorders write to the fresh registry under the new names", func() {
			RecordAdvance()
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			var found bool
			for _, f := range families {
				So(f.GetName(), ShouldStartWith, "player_collection_")
				if f.GetName() != "player_collection_advances_total" {
					continue
				}
				found = true
				label := f.GetMetric()[0].GetLabel()[0]
				So(label.GetName(), ShouldEqual, "node")
				So(label.GetValue(), ShouldEqual, "eu-1")
				So(f.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 1)
			}
			So(found, ShouldBeTrue)
		})
	})
}
