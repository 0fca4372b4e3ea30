package mqtt

import "fmt"

// Topic prefixes of the Radio Loan MQTT hierarchy.
const (
	// TopicPrefix is the root of every Radio Loan topic.
	TopicPrefix = "radioloan"

	// TopicPrefixLoans carries loan transition events.
	TopicPrefixLoans = TopicPrefix + "/loans"

	// TopicPrefixDevices carries retained per-device state.
	TopicPrefixDevices = TopicPrefix + "/devices"

	// TopicPrefixSystem carries service presence.
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics provides builders for Radio Loan MQTT topics.
//
//	topics := mqtt.Topics{}
//	topic := topics.LoanEvent("borrowed", "dev-1")
//	// Returns: "radioloan/loans/borrowed/dev-1"
type Topics struct{}

// LoanEvent returns the topic for a loan transition event on a device.
//
// Example: radioloan/loans/returned/dev-1
func (Topics) LoanEvent(eventType, deviceID string) string {
	return fmt.Sprintf("%s/%s/%s", TopicPrefixLoans, eventType, deviceID)
}

// DeviceStatus returns the retained status topic of a device.
//
// Example: radioloan/devices/dev-1/status
func (Topics) DeviceStatus(deviceID string) string {
	return fmt.Sprintf("%s/%s/status", TopicPrefixDevices, deviceID)
}

// SystemStatus returns the service presence topic (online/offline, LWT).
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// AllLoanEvents returns a wildcard for every loan event.
func (Topics) AllLoanEvents() string {
	return TopicPrefixLoans + "/#"
}

// AllDeviceStatuses returns a wildcard for every device status topic.
func (Topics) AllDeviceStatuses() string {
	return TopicPrefixDevices + "/+/status"
}
