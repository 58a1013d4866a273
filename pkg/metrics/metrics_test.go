package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

// value reads the current value of a counter or gauge.
func value(c prometheus.Metric) float64 {
	var m dto.Metric
	So(c.Write(&m), ShouldBeNil)
	switch {
	case m.Counter != nil:
		return m.Counter.GetValue()
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	default:
		return 0
	}
}

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When a manager is created with options", func() {
			m := NewManager(
				WithPrometheusRegistry(reg),
				WithNamespace("test"),
				WithSubsystem("board"),
				WithHistogramBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"env": "ci"}),
			)

			Convey("Then the options should be applied", func() {
				So(m.namespace, ShouldEqual, "test")
				So(m.subsystem, ShouldEqual, "board")
				So(m.histogramBuckets, ShouldResemble, []float64{1, 10})
				So(m.constLabels["env"], ShouldEqual, "ci")
			})

			Convey("Then collectors should be registered under the namespace", func() {
				m.sessionsSubmitted.Inc()
				m.sessionsRejected.WithLabelValues("validation").Inc()

				families, err := reg.Gather()
				So(err, ShouldBeNil)

				var found *dto.MetricFamily
				for _, f := range families {
					if f.GetName() == "test_board_sessions_submitted_total" {
						found = f
					}
				}
				So(found, ShouldNotBeNil)
				So(found.GetMetric(), ShouldHaveLength, 1)
				So(found.GetMetric()[0].GetCounter().GetValue(), ShouldEqual, 1)
				So(found.GetMetric()[0].GetLabel()[0].GetName(), ShouldEqual, "env")
				So(found.GetMetric()[0].GetLabel()[0].GetValue(), ShouldEqual, "ci")
				So(value(m.sessionsRejected.WithLabelValues("validation")), ShouldEqual, 1)
			})
		})

		Convey("When empty options are passed", func() {
			m := NewManager(WithPrometheusRegistry(reg), WithNamespace(""), WithSubsystem(""), WithHistogramBuckets(nil))

			Convey("Then defaults should be kept", func() {
				So(m.namespace, ShouldEqual, defaultNamespace)
				So(m.subsystem, ShouldEqual, defaultSubsystem)
				So(m.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			})
		})
	})
}

func TestGlobalRecorders(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("Recording should update the global collectors", func() {
			before := value(globalManager.sessionsSubmitted)
			RecordSessionSubmitted()
			So(value(globalManager.sessionsSubmitted), ShouldEqual, before+1)

			UpdateTracked(7, 3)
			So(value(globalManager.trackedSessions), ShouldEqual, 7)
			So(value(globalManager.trackedUsers), ShouldEqual, 3)

			RecordSessionRejected("validation")
			So(value(globalManager.sessionsRejected.WithLabelValues("validation")), ShouldBeGreaterThanOrEqualTo, 1)

			RecordHTTPRequest("/api/stats", "GET", "200")
			So(value(globalManager.httpRequests.WithLabelValues("/api/stats", "GET", "200")), ShouldBeGreaterThanOrEqualTo, 1)
		})

		Convey("Histogram and error recorders should not panic", func() {
			So(func() {
				RecordAggregationLatency(2 * time.Millisecond)
				RecordStoreAppendLatency("memory", 0.2)
				RecordStoreReadLatency("sqlite", 1.5)
				RecordHTTPRequestDuration("/api/stats", "GET", "200", 3)
				RecordErrorByComponent("api", "validation")
				RecordErrorByType("validation", "low")
				RecordErrorByEndpoint("/api/submit", "POST", "validation")
				RecordErrorLatency("api", "validation", 0.4)
			}, ShouldNotPanic)
		})

		Convey("The custom registry should expose runtime collectors", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			names := make(map[string]bool, len(families))
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["go_goroutines"], ShouldBeTrue)
			So(names["crosscount_leaderboard_sessions_submitted_total"], ShouldBeTrue)
		})
	})
}
