// Package influxdb provides InfluxDB connectivity for Radio Loan Core.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, batched point writes and health monitoring. The loan service
// records one loan_transition point per borrow or return attempt, tagged
// with the organisation id, the operation, its outcome and the race cause
// of a lost race.
//
// InfluxDB is optional. Connect returns ErrDisabled when it is switched
// off, and writes on a disconnected client are dropped.
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WritePoint("loan_transition",
//	    map[string]string{"op": "return", "outcome": "conflict"},
//	    map[string]interface{}{"count": 1})
package influxdb
