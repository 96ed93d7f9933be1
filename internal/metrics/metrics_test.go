package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/five82/parkdash/internal/parking"
)

func TestObserveFetch(t *testing.T) {
	success := testutil.ToFloat64(fetchTotal.WithLabelValues("success"))
	failure := testutil.ToFloat64(fetchTotal.WithLabelValues("error"))

	ObserveFetch(20*time.Millisecond, nil)
	ObserveFetch(30*time.Millisecond, errors.New("boom"))
	ObserveFetch(10*time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(fetchTotal.WithLabelValues("success")) - success; got != 1 {
		t.Fatalf("success delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(fetchTotal.WithLabelValues("error")) - failure; got != 2 {
		t.Fatalf("error delta = %v, want 2", got)
	}
	if testutil.ToFloat64(lastSuccess) == 0 {
		t.Fatalf("last success timestamp not set")
	}
}

func TestRecordCycle(t *testing.T) {
	cards := []parking.Card{
		{Status: parking.StatusCritical},
		{Status: parking.StatusCritical},
		{Status: parking.StatusNormal},
	}
	before := testutil.ToFloat64(rejectedTotal.WithLabelValues(string(parking.RejectExpired)))

	RecordCycle(cards, []parking.Rejected{{Reason: parking.RejectExpired}})

	if got := testutil.ToFloat64(stations.WithLabelValues("critical")); got != 2 {
		t.Fatalf("critical gauge = %v, want 2", got)
	}
	if got := testutil.ToFloat64(stations.WithLabelValues("stale")); got != 0 {
		t.Fatalf("stale gauge = %v, want 0", got)
	}
	if got := testutil.ToFloat64(rejectedTotal.WithLabelValues(string(parking.RejectExpired))) - before; got != 1 {
		t.Fatalf("rejected delta = %v, want 1", got)
	}
}
