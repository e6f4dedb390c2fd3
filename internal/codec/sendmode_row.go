package codec

import (
	"github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/NordCoder/SendModes/internal/liberr"
)

const (
	ColID                    = "id"
	ColAggregateID           = "aggregate_id"
	ColName                  = "name"
	ColSendMode              = "send_mode"
	ColAccessToken           = "access_token"
	ColFingerprint           = "fingerprint"
	ColPrivateKey            = "private_key"
	ColAutoHeartbeatInterval = "auto_heartbeat_interval"
	ColLastHeartbeat         = "last_heartbeat"
)

type sendModeRow struct{}

func (sendModeRow) Encode(m sendmode.SendMode) (Row, error) {
	if !m.Kind.Valid() {
		return nil, liberr.InvalidDeviceMode(string(m.Kind))
	}
	var key any
	if m.PrivateKey != nil {
		p, err := sendmode.EncodePrivateKeyPEM(m.PrivateKey)
		if err != nil {
			return nil, err
		}
		key = p
	}
	return Row{
		ColID:                    m.ID,
		ColAggregateID:           m.AggregateID,
		ColName:                  m.Name,
		ColSendMode:              string(m.Kind),
		ColAccessToken:           m.AccessToken,
		ColFingerprint:           nullable(m.Fingerprint),
		ColPrivateKey:            key,
		ColAutoHeartbeatInterval: nullable(m.AutoHeartbeatInterval),
		ColLastHeartbeat:         m.LastHeartbeat.UTC(),
	}, nil
}

// Decode tolerates an unparsable private_key by leaving the key absent; callers
// that need the key must check for it.
func (sendModeRow) Decode(r Row) (sendmode.SendMode, error) {
	var (
		m   sendmode.SendMode
		err error
	)
	if m.ID, err = colString(r, ColID); err != nil {
		return sendmode.SendMode{}, rowErr("send mode", err)
	}
	if m.AggregateID, err = colString(r, ColAggregateID); err != nil {
		return sendmode.SendMode{}, rowErr("send mode", err)
	}
	if m.Name, err = colString(r, ColName); err != nil {
		return sendmode.SendMode{}, rowErr("send mode", err)
	}
	if err = m.Kind.Scan(r[ColSendMode]); err != nil {
		return sendmode.SendMode{}, rowErr("send mode", err)
	}
	if m.AccessToken, err = colString(r, ColAccessToken); err != nil {
		return sendmode.SendMode{}, rowErr("send mode", err)
	}
	if m.Fingerprint, err = colNullString(r, ColFingerprint); err != nil {
		return sendmode.SendMode{}, rowErr("send mode", err)
	}
	pemText, err := colNullString(r, ColPrivateKey)
	if err != nil {
		return sendmode.SendMode{}, rowErr("send mode", err)
	}
	if pemText != nil {
		if key, kerr := sendmode.DecodePrivateKeyPEM(*pemText); kerr == nil {
			m.PrivateKey = key
		}
	}
	if m.AutoHeartbeatInterval, err = colNullInt32(r, ColAutoHeartbeatInterval); err != nil {
		return sendmode.SendMode{}, rowErr("send mode", err)
	}
	if m.LastHeartbeat, err = colTime(r, ColLastHeartbeat); err != nil {
		return sendmode.SendMode{}, rowErr("send mode", err)
	}
	return m, nil
}
