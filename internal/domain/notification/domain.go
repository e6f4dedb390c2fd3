package notification

import (
	"encoding/json"

	"github.com/NordCoder/SendModes/internal/domain/sendmode"
)

// Template is the per-bank rendering rule for a send mode kind.
type Template struct {
	Bank               string
	SendMode           sendmode.Kind
	Template           string
	SearchBy           string
	HasRequisite       bool
	HasBalance         bool
	NotificationType   string
	Source             string
	NeedToReplaceComma bool
}

// Event is a bank transaction signal for one send mode.
type Event struct {
	ModeID    string       `json:"mode_id"`
	Bank      string       `json:"bank"`
	Amount    json.Number  `json:"amount"`
	Requisite *string      `json:"requisite,omitempty"`
	Balance   *json.Number `json:"balance,omitempty"`
	SearchBy  string       `json:"search_by"`
}

// SendEvent is an inbound message to forward as is.
type SendEvent struct {
	Source  string       `json:"source"`
	Text    string       `json:"text"`
	Channel EventChannel `json:"channel"`
}

// TextMessage is the rendered outbound notification.
type TextMessage struct {
	ModeID  string       `json:"mode_id"`
	Source  string       `json:"source"`
	Text    string       `json:"text"`
	Channel EventChannel `json:"channel"`
}

// Context is the variable set a template is rendered with. Unset fields are absent.
type Context struct {
	Amount    string  `json:"amount"`
	Balance   *string `json:"balance,omitempty"`
	Requisite *string `json:"requisite,omitempty"`
}

// Vars returns the template variables, leaving out unset fields.
func (c Context) Vars() map[string]string {
	vars := map[string]string{"amount": c.Amount}
	if c.Balance != nil {
		vars["balance"] = *c.Balance
	}
	if c.Requisite != nil {
		vars["requisite"] = *c.Requisite
	}
	return vars
}
