package notification

import "github.com/NordCoder/SendModes/internal/liberr"

type EventChannel string

const (
	ChannelSMS              EventChannel = "sms"
	ChannelPushNotification EventChannel = "push_notification"
)

func Channels() []EventChannel { return []EventChannel{ChannelSMS, ChannelPushNotification} }

func ParseEventChannel(s string) (EventChannel, error) {
	switch EventChannel(s) {
	case ChannelSMS, ChannelPushNotification:
		return EventChannel(s), nil
	}
	return "", liberr.InvalidDeviceMode(s)
}

func (c EventChannel) String() string { return string(c) }

func (c EventChannel) MarshalText() ([]byte, error) {
	if _, err := ParseEventChannel(string(c)); err != nil {
		return nil, err
	}
	return []byte(c), nil
}

func (c *EventChannel) UnmarshalText(b []byte) error {
	v, err := ParseEventChannel(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
