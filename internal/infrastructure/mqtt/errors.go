package mqtt

import "errors"

// Sentinel errors, matched with errors.Is. Operation failures wrap the
// underlying paho error.
var (
	ErrNotConnected      = errors.New("mqtt: client not connected")
	ErrConnectionFailed  = errors.New("mqtt: connection failed")
	ErrPublishFailed     = errors.New("mqtt: publish failed")
	ErrSubscribeFailed   = errors.New("mqtt: subscribe failed")
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe failed")
	ErrInvalidQoS        = errors.New("mqtt: QoS must be 0, 1, or 2")
	ErrInvalidTopic      = errors.New("mqtt: topic cannot be empty")
)
