// Package codec holds the transcoders between domain entities and their wire
// representations: JSON payloads, relational rows and cache blobs.
//
// Each (representation, entity) pair has one Codec. The cache codecs are built on
// top of the JSON ones so the two stay consistent.
package codec

import (
	"github.com/NordCoder/SendModes/internal/domain/notification"
	"github.com/NordCoder/SendModes/internal/domain/sendmode"
)

type Codec[R, E any] interface {
	Encode(E) (R, error)
	Decode(R) (E, error)
}

// Row is a relational row keyed by column name. It is what pgx.RowToMap yields and
// what pgx.NamedArgs accepts.
type Row = map[string]any

var (
	SendModeJSON     Codec[[]byte, sendmode.SendMode]              = sendModeJSON{}
	SendModeRow      Codec[Row, sendmode.SendMode]                 = sendModeRow{}
	SendModeCache    Codec[any, sendmode.SendMode]                 = Cache(SendModeJSON)
	SendModeListJSON Codec[[]byte, []sendmode.SendMode]            = sendModeListJSON{}
	NewSendModeJSON  Codec[[]byte, sendmode.NewSendModeRequest]    = newSendModeJSON{}
	RenameJSON       Codec[[]byte, sendmode.RenameSendModeRequest] = renameJSON{}

	TemplateJSON  Codec[[]byte, notification.Template] = templateJSON{}
	TemplateRow   Codec[Row, notification.Template]    = templateRow{}
	TemplateCache Codec[any, notification.Template]    = Cache(TemplateJSON)
)
