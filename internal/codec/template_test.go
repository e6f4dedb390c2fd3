package codec

import (
	"testing"

	"github.com/NordCoder/SendModes/internal/domain/notification"
	"github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTemplate() notification.Template {
	return notification.Template{
		Bank:               "alpha",
		SendMode:           sendmode.KindKraft,
		Template:           "Credit {{amount}} RUB, balance {{balance}}",
		SearchBy:           "900",
		HasRequisite:       false,
		HasBalance:         true,
		NotificationType:   "sms",
		Source:             "900",
		NeedToReplaceComma: true,
	}
}

func TestTemplateRoundTripAllRepresentations(t *testing.T) {
	tpl := sampleTemplate()

	b, err := TemplateJSON.Encode(tpl)
	require.NoError(t, err)
	fromJSON, err := TemplateJSON.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, tpl, fromJSON)

	row, err := TemplateRow.Encode(tpl)
	require.NoError(t, err)
	fromRow, err := TemplateRow.Decode(row)
	require.NoError(t, err)
	assert.Equal(t, tpl, fromRow)

	blob, err := TemplateCache.Encode(tpl)
	require.NoError(t, err)
	fromCache, err := TemplateCache.Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, tpl, fromCache)
}

func TestTemplateRowColumns(t *testing.T) {
	row, err := TemplateRow.Encode(sampleTemplate())
	require.NoError(t, err)

	for _, col := range []string{"bank", "send_mode", "template", "search_by", "has_requisite",
		"has_balance", "notification_type", "source", "need_to_replace_comma"} {
		assert.Contains(t, row, col)
	}
	assert.Len(t, row, 9)
	assert.Equal(t, "KRAFT", row["send_mode"])
}

func TestTemplateRowDecodeFailures(t *testing.T) {
	row, _ := TemplateRow.Encode(sampleTemplate())
	row[ColSendMode] = "SMTP"
	_, err := TemplateRow.Decode(row)
	assert.ErrorIs(t, err, liberr.ErrInvalidDeviceMode)

	row, _ = TemplateRow.Encode(sampleTemplate())
	row[ColHasBalance] = "yes"
	_, err = TemplateRow.Decode(row)
	assert.ErrorIs(t, err, liberr.ErrInternal)

	_, err = TemplateJSON.Decode([]byte(`{"bank":"a","send_mode":"nope"}`))
	assert.ErrorIs(t, err, liberr.ErrInvalidDeviceMode)
}
