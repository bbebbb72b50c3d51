package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	recorder := NewRecorder()
	recorder.RecordRequest("text", "medium")
	recorder.RecordRequest("text", "medium")
	recorder.RecordRequest("url", "short")
	recorder.RecordError("url", "short", "url-fetch")

	snap := recorder.Snapshot()
	require.Len(t, snap.Requests, 2)
	require.Equal(t, CounterSample{Source: "text", TargetLength: "medium", Count: 2}, snap.Requests[0])
	require.Equal(t, CounterSample{Source: "url", TargetLength: "short", Count: 1}, snap.Requests[1])

	require.Len(t, snap.Errors, 1)
	require.Equal(t, CounterSample{Source: "url", TargetLength: "short", Category: "url-fetch", Count: 1}, snap.Errors[0])
}

func TestRecorderLatencyAggregates(t *testing.T) {
	recorder := NewRecorder()
	recorder.ObserveLatency("text", "medium", "success", 100*time.Millisecond)
	recorder.ObserveLatency("text", "medium", "success", 300*time.Millisecond)
	recorder.ObserveLatency("text", "medium", "error", 50*time.Millisecond)

	snap := recorder.Snapshot()
	require.Len(t, snap.Latencies, 2)

	errSample := snap.Latencies[0]
	require.Equal(t, "error", errSample.Status)
	require.EqualValues(t, 1, errSample.Count)

	okSample := snap.Latencies[1]
	require.Equal(t, "success", okSample.Status)
	require.EqualValues(t, 2, okSample.Count)
	require.EqualValues(t, 200, okSample.MeanMs)
	require.EqualValues(t, 100, okSample.MinMs)
	require.EqualValues(t, 300, okSample.MaxMs)
}

func TestSnapshotIsDeterministic(t *testing.T) {
	recorder := NewRecorder()
	recorder.RecordRequest("url", "short")
	recorder.RecordRequest("text", "long")
	recorder.RecordRequest("text", "medium")

	first := recorder.Snapshot()
	second := recorder.Snapshot()
	require.Equal(t, first, second)
	require.Equal(t, "text", first.Requests[0].Source)
	require.Equal(t, "long", first.Requests[0].TargetLength)
}

func TestSnapshotEmptyRecorder(t *testing.T) {
	snap := NewRecorder().Snapshot()
	require.Empty(t, snap.Requests)
	require.Empty(t, snap.Errors)
	require.Empty(t, snap.Latencies)
}
