package sendmode

import (
	"encoding/json"
	"testing"

	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindJSONRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		b, err := json.Marshal(k)
		require.NoError(t, err)
		assert.Equal(t, `"`+string(k)+`"`, string(b))

		var got Kind
		require.NoError(t, json.Unmarshal(b, &got))
		assert.Equal(t, k, got)
	}
}

func TestKindSQLRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		v, err := k.Value()
		require.NoError(t, err)

		var fromString, fromBytes Kind
		require.NoError(t, fromString.Scan(v))
		require.NoError(t, fromBytes.Scan([]byte(v.(string))))
		assert.Equal(t, k, fromString)
		assert.Equal(t, k, fromBytes)
	}
}

func TestKindRejectsUnknown(t *testing.T) {
	_, err := ParseKind("kraft")
	assert.ErrorIs(t, err, liberr.ErrInvalidDeviceMode)

	var k Kind
	assert.ErrorIs(t, k.Scan("SMTP"), liberr.ErrInvalidDeviceMode)
	assert.ErrorIs(t, k.Scan(nil), liberr.ErrInvalidDeviceMode)
	assert.ErrorIs(t, k.Scan(int64(1)), liberr.ErrInvalidDeviceMode)
	assert.ErrorIs(t, json.Unmarshal([]byte(`"SMTP"`), &k), liberr.ErrInvalidDeviceMode)

	_, err = Kind("SMTP").Value()
	assert.ErrorIs(t, err, liberr.ErrInvalidDeviceMode)
	_, err = json.Marshal(Kind(""))
	assert.ErrorIs(t, err, liberr.ErrInvalidDeviceMode)
}
