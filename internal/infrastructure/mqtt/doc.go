// Package mqtt provides MQTT publishing for Radio Loan Core.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Topics
//
//	radioloan/loans/{borrowed|returned}/{device_id}   loan events, not retained
//	radioloan/devices/{device_id}/status              device projection, retained
//	radioloan/system/status                           online/offline, retained, LWT
//
// MQTT is optional. Loan transitions never depend on the broker: the loan
// service publishes after commit and only logs a failed publish.
//
// # Security Considerations
//
//   - Use TLS outside local development (cfg.Broker.TLS=true)
//   - Payloads carry borrower names; restrict subscribe ACLs accordingly
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.LoanEvent("borrowed", "dev-1")
//	err = client.Publish(topic, payload, 1, false)
package mqtt
