package codec

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/NordCoder/SendModes/internal/liberr"
)

type sendModeDTO struct {
	ID                    string        `json:"id"`
	AggregateID           string        `json:"aggregate_id"`
	Name                  string        `json:"name"`
	SendMode              sendmode.Kind `json:"send_mode"`
	AccessToken           string        `json:"access_token"`
	Fingerprint           *string       `json:"fingerprint"`
	PrivateKey            *string       `json:"private_key,omitempty"`
	AutoHeartbeatInterval *int32        `json:"auto_heartbeat_interval"`
	LastHeartbeat         time.Time     `json:"last_heartbeat"`
}

func toSendModeDTO(m sendmode.SendMode) (sendModeDTO, error) {
	dto := sendModeDTO{
		ID:                    m.ID,
		AggregateID:           m.AggregateID,
		Name:                  m.Name,
		SendMode:              m.Kind,
		AccessToken:           m.AccessToken,
		Fingerprint:           m.Fingerprint,
		AutoHeartbeatInterval: m.AutoHeartbeatInterval,
		LastHeartbeat:         m.LastHeartbeat.UTC(),
	}
	if m.PrivateKey != nil {
		p, err := sendmode.EncodePrivateKeyPEM(m.PrivateKey)
		if err != nil {
			return sendModeDTO{}, err
		}
		dto.PrivateKey = &p
	}
	return dto, nil
}

func (d sendModeDTO) toDomain() (sendmode.SendMode, error) {
	m := sendmode.SendMode{
		ID:                    d.ID,
		AggregateID:           d.AggregateID,
		Name:                  d.Name,
		Kind:                  d.SendMode,
		AccessToken:           d.AccessToken,
		Fingerprint:           d.Fingerprint,
		AutoHeartbeatInterval: d.AutoHeartbeatInterval,
		LastHeartbeat:         d.LastHeartbeat.UTC(),
	}
	if !m.Kind.Valid() {
		return sendmode.SendMode{}, liberr.InvalidDeviceMode(string(d.SendMode))
	}
	if d.PrivateKey != nil {
		key, err := sendmode.DecodePrivateKeyPEM(*d.PrivateKey)
		if err != nil {
			return sendmode.SendMode{}, err
		}
		m.PrivateKey = key
	}
	return m, nil
}

type sendModeJSON struct{}

func (sendModeJSON) Encode(m sendmode.SendMode) ([]byte, error) {
	dto, err := toSendModeDTO(m)
	if err != nil {
		return nil, err
	}
	return marshal("send mode", dto)
}

func (sendModeJSON) Decode(b []byte) (sendmode.SendMode, error) {
	var dto sendModeDTO
	if err := unmarshal("send mode", b, &dto); err != nil {
		return sendmode.SendMode{}, err
	}
	return dto.toDomain()
}

type sendModeListJSON struct{}

func (sendModeListJSON) Encode(ms []sendmode.SendMode) ([]byte, error) {
	dtos := make([]sendModeDTO, 0, len(ms))
	for _, m := range ms {
		dto, err := toSendModeDTO(m)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, dto)
	}
	return marshal("send modes", dtos)
}

func (sendModeListJSON) Decode(b []byte) ([]sendmode.SendMode, error) {
	var dtos []sendModeDTO
	if err := unmarshal("send modes", b, &dtos); err != nil {
		return nil, err
	}
	out := make([]sendmode.SendMode, 0, len(dtos))
	for _, dto := range dtos {
		m, err := dto.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

type newSendModeDTO struct {
	AggregateID           string        `json:"aggregate_id"`
	Name                  string        `json:"name"`
	Mode                  sendmode.Kind `json:"mode"`
	AccessToken           string        `json:"access_token"`
	AutoHeartbeatInterval *int32        `json:"auto_heartbeat_interval"`
}

type newSendModeJSON struct{}

func (newSendModeJSON) Encode(r sendmode.NewSendModeRequest) ([]byte, error) {
	return marshal("new send mode request", newSendModeDTO{
		AggregateID:           r.AggregateID,
		Name:                  r.Name,
		Mode:                  r.Kind,
		AccessToken:           r.AccessToken,
		AutoHeartbeatInterval: r.AutoHeartbeatInterval,
	})
}

func (newSendModeJSON) Decode(b []byte) (sendmode.NewSendModeRequest, error) {
	var dto newSendModeDTO
	if err := unmarshal("new send mode request", b, &dto); err != nil {
		return sendmode.NewSendModeRequest{}, err
	}
	if !dto.Mode.Valid() {
		return sendmode.NewSendModeRequest{}, liberr.InvalidDeviceMode(string(dto.Mode))
	}
	return sendmode.NewSendModeRequest{
		AggregateID:           dto.AggregateID,
		Name:                  dto.Name,
		Kind:                  dto.Mode,
		AccessToken:           dto.AccessToken,
		AutoHeartbeatInterval: dto.AutoHeartbeatInterval,
	}, nil
}

type renameDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type renameJSON struct{}

func (renameJSON) Encode(r sendmode.RenameSendModeRequest) ([]byte, error) {
	return marshal("rename request", renameDTO{ID: r.ID, Name: r.Name})
}

func (renameJSON) Decode(b []byte) (sendmode.RenameSendModeRequest, error) {
	var dto renameDTO
	if err := unmarshal("rename request", b, &dto); err != nil {
		return sendmode.RenameSendModeRequest{}, err
	}
	return sendmode.RenameSendModeRequest{ID: dto.ID, Name: dto.Name}, nil
}

// marshal and unmarshal keep taxonomy errors raised by field codecs and turn
// everything else into an internal failure.
func marshal(what string, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, classify("encode "+what, err)
	}
	return b, nil
}

func unmarshal(what string, b []byte, v any) error {
	if err := json.Unmarshal(b, v); err != nil {
		return classify("decode "+what, err)
	}
	return nil
}

func classify(msg string, err error) error {
	if errors.Is(err, liberr.ErrInvalidDeviceMode) || errors.Is(err, liberr.ErrInternal) {
		return err
	}
	return liberr.InternalCause(msg, err)
}
