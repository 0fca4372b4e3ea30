package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct {
	measurement string
	tags        map[string]string
	fields      map[string]interface{}
}

type fakePointWriter struct {
	points []point
}

func (w *fakePointWriter) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	w.points = append(w.points, point{measurement: measurement, tags: tags, fields: fields})
}

func TestInfluxRecorder_RecordTransition(t *testing.T) {
	w := &fakePointWriter{}
	rec := NewInfluxRecorder(w, "ff-north")

	rec.RecordTransition(Transition{
		Op:       OpReturn,
		Outcome:  "conflict",
		Cause:    CauseStatusOverride,
		DeviceID: "dev-1",
		Duration: 1500 * time.Microsecond,
	})
	rec.RecordTransition(Transition{Op: OpCreate, Outcome: OutcomeOK, Duration: time.Millisecond})

	require.Len(t, w.points, 2)

	p := w.points[0]
	assert.Equal(t, MeasurementTransition, p.measurement)
	assert.Equal(t, map[string]string{"org": "ff-north", "op": "return", "outcome": "conflict", "cause": "device_status_override"}, p.tags)
	assert.Equal(t, 1, p.fields["count"])
	assert.InDelta(t, 1.5, p.fields["duration_ms"], 0.0001)
	assert.Equal(t, "dev-1", p.fields["device_id"])

	p = w.points[1]
	assert.Equal(t, "ff-north", p.tags["org"])
	assert.NotContains(t, p.tags, "cause")
	assert.NotContains(t, p.fields, "device_id")
}

func TestInfluxRecorder_OmitsEmptyOrg(t *testing.T) {
	w := &fakePointWriter{}
	NewInfluxRecorder(w, "").RecordTransition(Transition{Op: OpCreate, Outcome: OutcomeOK})

	require.Len(t, w.points, 1)
	assert.NotContains(t, w.points[0].tags, "org")
}
