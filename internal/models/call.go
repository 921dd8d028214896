package models

// CallSession describes one in-flight call attempt. It is never persisted;
// it exists only as long as the signaling events it produces.
type CallSession struct {
	CallID      string
	InitiatorID string
	TargetTopic string
	IsGroup     bool
}
