package loan

// MeasurementTransition is the InfluxDB measurement for transition attempts.
const MeasurementTransition = "loan_transition"

// PointWriter writes a single time-series point.
// It is satisfied by *influxdb.Client.
type PointWriter interface {
	WritePoint(measurement string, tags map[string]string, fields map[string]interface{})
}

// InfluxRecorder records transitions as InfluxDB points tagged by
// organisation, operation, outcome and race cause.
type InfluxRecorder struct {
	writer PointWriter
	orgID  string
}

// NewInfluxRecorder creates a recorder writing through w. A non-empty orgID
// is added to every point as the "org" tag.
func NewInfluxRecorder(w PointWriter, orgID string) *InfluxRecorder {
	return &InfluxRecorder{writer: w, orgID: orgID}
}

// RecordTransition implements MetricsRecorder.
func (r *InfluxRecorder) RecordTransition(t Transition) {
	tags := map[string]string{
		"op":      t.Op,
		"outcome": t.Outcome,
	}
	if r.orgID != "" {
		tags["org"] = r.orgID
	}
	if t.Cause != "" {
		tags["cause"] = t.Cause
	}

	fields := map[string]interface{}{
		"count":       1,
		"duration_ms": float64(t.Duration.Microseconds()) / 1000,
	}
	if t.DeviceID != "" {
		fields["device_id"] = t.DeviceID
	}

	r.writer.WritePoint(MeasurementTransition, tags, fields)
}
