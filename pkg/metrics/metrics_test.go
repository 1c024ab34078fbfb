package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a private registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When a manager is created with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors are registered there", func() {
				So(m, ShouldNotBeNil)
				m.rowsIngested.Add(3)
				families, err := registry.Gather()
				So(err, ShouldBeNil)

				var found bool
				for _, f := range families {
					if f.GetName() == "test_unit_rows_ingested_total" {
						found = true
						So(f.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 3)
						So(f.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "test")
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When empty options are passed", func() {
			m := NewManager(WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then defaults are kept", func() {
				So(m.namespace, ShouldEqual, "excess")
				So(m.subsystem, ShouldEqual, "engine")
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When ingestion is recorded", func() {
			before := testutil.ToFloat64(globalManager.rowsIngested)
			RecordRowsIngested(5)
			RecordRowsRejected("non_positive_rate", 2)
			UpdateCountriesKept(12)

			Convey("Then the counters move", func() {
				So(testutil.ToFloat64(globalManager.rowsIngested), ShouldEqual, before+5)
				So(testutil.ToFloat64(globalManager.rowsRejected.WithLabelValues("non_positive_rate")), ShouldBeGreaterThanOrEqualTo, 2)
				So(testutil.ToFloat64(globalManager.countriesKept), ShouldEqual, 12)
			})
		})

		Convey("When a grid search is recorded", func() {
			UpdateCandidateWindows(136)
			RecordCandidateEvaluated()
			RecordBaselineFit("ok")
			UpdateSelectionRMSE(4.2)
			RecordSelectionDuration(12)
			RecordAnalysisRun("ok")

			Convey("Then the gauges hold the last values", func() {
				So(testutil.ToFloat64(globalManager.candidateWindows), ShouldEqual, 136)
				So(testutil.ToFloat64(globalManager.selectionRMSE), ShouldEqual, 4.2)
			})
		})

		Convey("When the remaining recorders are called", func() {
			So(func() {
				UpdateQueueSize(1)
				UpdateQueueCapacity(10)
				UpdateQueueUtilization(0.1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(0.5)
				UpdateWorkerActiveCount(4)
				UpdateWorkerEvaluationsPerSecond(100)
				RecordWorkerProcessingLatency(3)
				RecordWorkerError()
				RecordHTTPRequest("/series", "GET", 200)
				RecordHTTPRequestDuration("/series", "GET", 200, 1.5)
				RecordErrorByComponent("worker", "fit")
				RecordErrorByType("client_error", "low")
				RecordErrorByEndpoint("/series", "GET", "not_found")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(8)
			}, ShouldNotPanic)

			So(testutil.ToFloat64(globalManager.workerActiveCount), ShouldEqual, 4)
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
