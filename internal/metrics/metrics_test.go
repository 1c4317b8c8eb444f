package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRecordEvent(t *testing.T) {
	c := EventsRecorded.WithLabelValues("play_session")
	before := counterValue(t, c)

	RecordEvent("play_session")
	RecordEvent("play_session")

	if got := counterValue(t, c) - before; got != 2 {
		t.Errorf("play_session delta = %v, want 2", got)
	}
}

func TestRecordAlert(t *testing.T) {
	c := AlertsGenerated.WithLabelValues("risky-group", "high")
	before := counterValue(t, c)

	RecordAlert("risky-group", "high")

	if got := counterValue(t, c) - before; got != 1 {
		t.Errorf("risky-group/high delta = %v, want 1", got)
	}
}

func TestRecordRejectionAndMarkRead(t *testing.T) {
	rej := EventsRejected.WithLabelValues("unknown_child")
	rejBefore := counterValue(t, rej)
	readBefore := counterValue(t, AlertsMarkedRead)

	RecordRejection("unknown_child")
	RecordMarkRead()

	if got := counterValue(t, rej) - rejBefore; got != 1 {
		t.Errorf("rejection delta = %v, want 1", got)
	}
	if got := counterValue(t, AlertsMarkedRead) - readBefore; got != 1 {
		t.Errorf("marked read delta = %v, want 1", got)
	}
}

func TestObserveSummary(t *testing.T) {
	var before dto.Metric
	if err := SummaryDuration.Write(&before); err != nil {
		t.Fatalf("Write: %v", err)
	}

	ObserveSummary(2 * time.Millisecond)

	var after dto.Metric
	if err := SummaryDuration.Write(&after); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := after.GetHistogram().GetSampleCount() - before.GetHistogram().GetSampleCount(); got != 1 {
		t.Errorf("sample count delta = %d, want 1", got)
	}
}

func TestWriteText(t *testing.T) {
	RecordEvent("group")
	RecordAlert("late-night-gaming", "high")

	var buf bytes.Buffer
	if err := WriteText(&buf); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`guardian_events_recorded_total{kind="group"}`,
		`guardian_alerts_generated_total{severity="high",type="late-night-gaming"}`,
		"# TYPE guardian_summary_duration_seconds histogram",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("WriteText output missing %q", want)
		}
	}
	if strings.Contains(out, "go_goroutines") {
		t.Error("WriteText included runtime collectors")
	}
}
