package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRecordListedAccumulates(t *testing.T) {
	before := testutil.ToFloat64(recordsListedTotal.WithLabelValues("forum"))
	RecordListed("forum", 40)
	RecordListed("forum", 2)
	after := testutil.ToFloat64(recordsListedTotal.WithLabelValues("forum"))
	if diff := after - before; diff != 42 {
		t.Errorf("listed counter moved by %v, want 42", diff)
	}
}

func TestRecordDroppedByReason(t *testing.T) {
	before := testutil.ToFloat64(recordsDroppedTotal.WithLabelValues("bulletin", DropNoDate))
	RecordDropped("bulletin", DropNoDate)
	after := testutil.ToFloat64(recordsDroppedTotal.WithLabelValues("bulletin", DropNoDate))
	if after-before != 1 {
		t.Errorf("drop counter moved by %v, want 1", after-before)
	}
}

func TestRecordPersisted(t *testing.T) {
	insBefore := testutil.ToFloat64(documentsInsertedTotal.WithLabelValues("forum"))
	dupBefore := testutil.ToFloat64(documentsDuplicatedTotal.WithLabelValues("forum"))
	RecordPersisted("forum", 7, 3)
	if got := testutil.ToFloat64(documentsInsertedTotal.WithLabelValues("forum")) - insBefore; got != 7 {
		t.Errorf("inserted moved by %v, want 7", got)
	}
	if got := testutil.ToFloat64(documentsDuplicatedTotal.WithLabelValues("forum")) - dupBefore; got != 3 {
		t.Errorf("duplicated moved by %v, want 3", got)
	}
}

func TestRecordDroppedLabelPairs(t *testing.T) {
	RecordDropped("forum", DropOutOfWindow)

	var m dto.Metric
	if err := recordsDroppedTotal.WithLabelValues("forum", DropOutOfWindow).Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}

	labels := map[string]string{}
	for _, pair := range m.GetLabel() {
		labels[pair.GetName()] = pair.GetValue()
	}
	if labels["source"] != "forum" || labels["reason"] != DropOutOfWindow {
		t.Errorf("unexpected label pairs: %v", labels)
	}
}

func TestRecordRun(t *testing.T) {
	before := testutil.ToFloat64(runsTotal.WithLabelValues("success"))
	RecordRun(true, 90*time.Second)
	if got := testutil.ToFloat64(runsTotal.WithLabelValues("success")) - before; got != 1 {
		t.Errorf("runs counter moved by %v, want 1", got)
	}
}
