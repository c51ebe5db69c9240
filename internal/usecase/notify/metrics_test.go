package notify

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSendResults(t *testing.T) {
	tests := []struct {
		name    string
		record  func(string, time.Duration)
		status  string
		channel string
	}{
		{"success", RecordSuccess, "success", "metrics-a"},
		{"failure", RecordFailure, "failure", "metrics-b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(notificationSentTotal.WithLabelValues(tt.channel, tt.status))
			tt.record(tt.channel, 250*time.Millisecond)
			after := testutil.ToFloat64(notificationSentTotal.WithLabelValues(tt.channel, tt.status))
			if after != before+1 {
				t.Errorf("counter = %v, want %v", after, before+1)
			}
		})
	}
}

func TestRecordDispatchAndDropped(t *testing.T) {
	before := testutil.ToFloat64(notificationDispatchedTotal.WithLabelValues("metrics-c"))
	RecordDispatch("metrics-c")
	if got := testutil.ToFloat64(notificationDispatchedTotal.WithLabelValues("metrics-c")); got != before+1 {
		t.Errorf("dispatch counter = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(notificationDroppedTotal.WithLabelValues("metrics-c", "pool_full"))
	RecordDropped("metrics-c", "pool_full")
	if got := testutil.ToFloat64(notificationDroppedTotal.WithLabelValues("metrics-c", "pool_full")); got != before+1 {
		t.Errorf("dropped counter = %v, want %v", got, before+1)
	}
}

func TestSetChannelsEnabled(t *testing.T) {
	SetChannelsEnabled(2)
	if got := testutil.ToFloat64(channelsEnabled); got != 2 {
		t.Errorf("channels enabled = %v, want 2", got)
	}
}
