package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// sampleValue returns the counter value, gauge value or histogram sample count of the
// first series in family name whose labels include want.
func sampleValue(reg *prometheus.Registry, name string, want map[string]string) float64 {
	families, err := reg.Gather()
	if err != nil {
		return -1
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
					matched++
				}
			}
			if matched != len(want) {
				continue
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				return float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return 0
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("veto"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithConstLabels(map[string]string{"gen_tag": "genParticles"}),
				WithPrometheusRegistry(registry),
			)
			manager.eventsFiltered.WithLabelValues(DecisionVeto).Inc()

			Convey("Then metric names should carry the namespace and subsystem", func() {
				So(manager, ShouldNotBeNil)
				So(sampleValue(registry, "test_veto_events_filtered_total",
					map[string]string{"decision": "veto", "gen_tag": "genParticles"}), ShouldEqual, 1)
			})
		})

		Convey("When empty options are supplied", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithConstLabels(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "fsrfilter")
				So(manager.subsystem, ShouldEqual, "")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.constLabels, ShouldBeNil)
			})
		})

		Convey("When registering twice on the same registry", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then promauto should panic on the duplicate collector", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestFilterMetrics(t *testing.T) {
	Convey("Given the global manager", t, func() {
		reg := GetRegistry()

		Convey("When recording filter decisions", func() {
			keepBefore := sampleValue(reg, "fsrfilter_events_filtered_total", map[string]string{"decision": DecisionKeep})
			vetoBefore := sampleValue(reg, "fsrfilter_events_filtered_total", map[string]string{"decision": DecisionVeto})
			RecordEventFiltered(true)
			RecordEventFiltered(true)
			RecordEventFiltered(false)

			Convey("Then each decision should be counted under its label", func() {
				So(sampleValue(reg, "fsrfilter_events_filtered_total",
					map[string]string{"decision": DecisionKeep})-keepBefore, ShouldEqual, 2)
				So(sampleValue(reg, "fsrfilter_events_filtered_total",
					map[string]string{"decision": DecisionVeto})-vetoBefore, ShouldEqual, 1)
			})
		})

		Convey("When recording photon candidates", func() {
			before := sampleValue(reg, "fsrfilter_photon_candidates_total", map[string]string{"origin": "fsr"})
			RecordPhotonCandidates("fsr", 3)
			RecordPhotonCandidates("fsr", 0)

			Convey("Then only positive counts should be added", func() {
				So(sampleValue(reg, "fsrfilter_photon_candidates_total",
					map[string]string{"origin": "fsr"})-before, ShouldEqual, 3)
			})
		})

		Convey("When recording a vetoing photon", func() {
			ptBefore := sampleValue(reg, "fsrfilter_veto_photon_pt_gev", nil)
			drBefore := sampleValue(reg, "fsrfilter_veto_photon_delta_r", nil)
			RecordVetoPhoton(15, 0.6)

			Convey("Then both histograms should observe one sample", func() {
				So(sampleValue(reg, "fsrfilter_veto_photon_pt_gev", nil)-ptBefore, ShouldEqual, 1)
				So(sampleValue(reg, "fsrfilter_veto_photon_delta_r", nil)-drBefore, ShouldEqual, 1)
			})
		})

		Convey("When updating gauges", func() {
			UpdateQueueSize(12)
			UpdateStoreRecordsTotal(40)
			UpdateStoreRecordsPerShard("3", 7)

			Convey("Then the latest value should be exposed", func() {
				So(sampleValue(reg, "fsrfilter_queue_size", nil), ShouldEqual, 12)
				So(sampleValue(reg, "fsrfilter_store_records_total", nil), ShouldEqual, 40)
				So(sampleValue(reg, "fsrfilter_store_records_per_shard", map[string]string{"shard_id": "3"}), ShouldEqual, 7)
			})
		})
	})
}

func TestMetricsRecordingDoesNotPanic(t *testing.T) {
	Convey("Given every recording helper", t, func() {
		So(func() {
			RecordEventDuplicate()
			RecordEventInvalid()
			RecordFilterLatency(0.2)
			UpdateQueueCapacity(1000)
			UpdateQueueUtilization(0.5)
			RecordQueueEnqueue()
			RecordQueueDequeue()
			RecordQueueEnqueueError()
			UpdateWorkerCount(4)
			UpdateWorkerActiveCount(2)
			RecordWorkerProcessingLatency(1.5)
			RecordWorkerError()
			UpdateStoreShardCount(16)
			RecordStoreUpdateLatency(0.1)
			RecordStoreQueryLatency(0.1)
			RecordHTTPRequest("/events", "POST", "202")
			RecordHTTPRequestDuration("/events", "POST", "202", 3)
			RecordErrorByComponent("worker", "record_failed")
			RecordErrorByEndpoint("/events", "POST", "bad_request")
			UpdateSystemMemoryUsage(1 << 20)
			UpdateSystemGoroutineCount(10)
			RecordSystemGCPauseTime(0.3)
		}, ShouldNotPanic)
	})
}
