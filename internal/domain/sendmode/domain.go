package sendmode

import (
	"crypto/rsa"
	"time"
)

// SendMode is a named, access-controlled channel instance. Several send modes can
// share one AggregateID (their owner).
type SendMode struct {
	ID                    string
	AggregateID           string
	Name                  string
	Kind                  Kind
	AccessToken           string
	Fingerprint           *string
	PrivateKey            *rsa.PrivateKey
	AutoHeartbeatInterval *int32
	LastHeartbeat         time.Time
}

// HeartbeatEvery returns the automatic heartbeat period, or zero when the mode
// does not heartbeat on its own.
func (m SendMode) HeartbeatEvery() time.Duration {
	if m.AutoHeartbeatInterval == nil || *m.AutoHeartbeatInterval <= 0 {
		return 0
	}
	return time.Duration(*m.AutoHeartbeatInterval) * time.Second
}

type NewSendModeRequest struct {
	AggregateID           string
	Name                  string
	Kind                  Kind
	AccessToken           string
	AutoHeartbeatInterval *int32
}

type RenameSendModeRequest struct {
	ID   string
	Name string
}
