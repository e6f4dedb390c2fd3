package notification

import (
	"encoding/json"
	"testing"

	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventChannelJSONRoundTrip(t *testing.T) {
	for _, c := range Channels() {
		b, err := json.Marshal(c)
		require.NoError(t, err)

		var got EventChannel
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, c, got)
	}
	b, _ := json.Marshal(ChannelPushNotification)
	assert.Equal(t, `"push_notification"`, string(b))
}

func TestEventChannelRejectsUnknown(t *testing.T) {
	var c EventChannel
	err := json.Unmarshal([]byte(`"email"`), &c)
	assert.ErrorIs(t, err, liberr.ErrInvalidDeviceMode)

	_, err = ParseEventChannel("SMS")
	assert.ErrorIs(t, err, liberr.ErrInvalidDeviceMode)

	_, err = json.Marshal(EventChannel("fax"))
	assert.ErrorIs(t, err, liberr.ErrInvalidDeviceMode)
}

func TestSendEventDecodeUnknownChannel(t *testing.T) {
	var ev SendEvent
	err := json.Unmarshal([]byte(`{"source":"900","text":"hi","channel":"telegram"}`), &ev)
	assert.ErrorIs(t, err, liberr.ErrInvalidDeviceMode)
}
