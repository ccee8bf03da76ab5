package metrics

import (
	"testing"
	"time"

	"github.com/peterldowns/testy/check"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())

	m.RecordCommand("place_bid", "accepted")
	m.RecordCommand("place_bid", "accepted")
	m.RecordCommand("place_bid", "already_leading")
	m.RecordSale(1_700_000)
	m.RecordSale(300_000)
	m.RecordAutoResolution("sold")
	m.RecordPublish("nats", false, time.Millisecond)
	m.RecordCoalesced(3)
	m.RecordCoalesced(0)

	check.Equal(t, 2.0, testutil.ToFloat64(m.commands.WithLabelValues("place_bid", "accepted")))
	check.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("place_bid", "already_leading")))
	check.Equal(t, 2.0, testutil.ToFloat64(m.sales))
	check.Equal(t, 2_000_000.0, testutil.ToFloat64(m.salesValue))
	check.Equal(t, 1.0, testutil.ToFloat64(m.autoResolutions.WithLabelValues("sold")))
	check.Equal(t, 1.0, testutil.ToFloat64(m.publishes.WithLabelValues("nats", "failure")))
	check.Equal(t, 3.0, testutil.ToFloat64(m.coalesced))
}
