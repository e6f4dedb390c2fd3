package codec

import (
	"github.com/NordCoder/SendModes/internal/domain/notification"
	"github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/NordCoder/SendModes/internal/liberr"
)

const (
	ColBank               = "bank"
	ColTemplate           = "template"
	ColSearchBy           = "search_by"
	ColHasRequisite       = "has_requisite"
	ColHasBalance         = "has_balance"
	ColNotificationType   = "notification_type"
	ColSource             = "source"
	ColNeedToReplaceComma = "need_to_replace_comma"
)

type templateDTO struct {
	Bank               string        `json:"bank"`
	SendMode           sendmode.Kind `json:"send_mode"`
	Template           string        `json:"template"`
	SearchBy           string        `json:"search_by"`
	HasRequisite       bool          `json:"has_requisite"`
	HasBalance         bool          `json:"has_balance"`
	NotificationType   string        `json:"notification_type"`
	Source             string        `json:"source"`
	NeedToReplaceComma bool          `json:"need_to_replace_comma"`
}

type templateJSON struct{}

func (templateJSON) Encode(t notification.Template) ([]byte, error) {
	return marshal("notification template", templateDTO(t))
}

func (templateJSON) Decode(b []byte) (notification.Template, error) {
	var dto templateDTO
	if err := unmarshal("notification template", b, &dto); err != nil {
		return notification.Template{}, err
	}
	if !dto.SendMode.Valid() {
		return notification.Template{}, liberr.InvalidDeviceMode(string(dto.SendMode))
	}
	return notification.Template(dto), nil
}

type templateRow struct{}

func (templateRow) Encode(t notification.Template) (Row, error) {
	if !t.SendMode.Valid() {
		return nil, liberr.InvalidDeviceMode(string(t.SendMode))
	}
	return Row{
		ColBank:               t.Bank,
		ColSendMode:           string(t.SendMode),
		ColTemplate:           t.Template,
		ColSearchBy:           t.SearchBy,
		ColHasRequisite:       t.HasRequisite,
		ColHasBalance:         t.HasBalance,
		ColNotificationType:   t.NotificationType,
		ColSource:             t.Source,
		ColNeedToReplaceComma: t.NeedToReplaceComma,
	}, nil
}

func (templateRow) Decode(r Row) (notification.Template, error) {
	var (
		t   notification.Template
		err error
	)
	for _, f := range []struct {
		col string
		dst *string
	}{
		{ColBank, &t.Bank},
		{ColTemplate, &t.Template},
		{ColSearchBy, &t.SearchBy},
		{ColNotificationType, &t.NotificationType},
		{ColSource, &t.Source},
	} {
		if *f.dst, err = colString(r, f.col); err != nil {
			return notification.Template{}, rowErr("notification template", err)
		}
	}
	for _, f := range []struct {
		col string
		dst *bool
	}{
		{ColHasRequisite, &t.HasRequisite},
		{ColHasBalance, &t.HasBalance},
		{ColNeedToReplaceComma, &t.NeedToReplaceComma},
	} {
		if *f.dst, err = colBool(r, f.col); err != nil {
			return notification.Template{}, rowErr("notification template", err)
		}
	}
	if err = t.SendMode.Scan(r[ColSendMode]); err != nil {
		return notification.Template{}, rowErr("notification template", err)
	}
	return t, nil
}
