package notifier

import (
	"io"
	"strings"

	"github.com/NordCoder/SendModes/internal/domain/notification"
	"github.com/NordCoder/SendModes/internal/liberr"
	"github.com/valyala/fasttemplate"
)

const (
	startTag = "{{"
	endTag   = "}}"
)

// BuildContext picks the variables tpl asks for out of ev. Balance and requisite
// are required when the template declares them and left out otherwise.
func BuildContext(tpl notification.Template, ev notification.Event) (notification.Context, error) {
	if ev.Amount == "" {
		return notification.Context{}, liberr.Internal("event for mode %s has no amount", ev.ModeID)
	}
	c := notification.Context{Amount: formatNumber(ev.Amount.String(), tpl.NeedToReplaceComma)}

	if tpl.HasBalance {
		if ev.Balance == nil {
			return notification.Context{}, liberr.Internal("template %s/%s needs a balance", tpl.Bank, tpl.SearchBy)
		}
		b := formatNumber(ev.Balance.String(), tpl.NeedToReplaceComma)
		c.Balance = &b
	}
	if tpl.HasRequisite {
		if ev.Requisite == nil {
			return notification.Context{}, liberr.Internal("template %s/%s needs a requisite", tpl.Bank, tpl.SearchBy)
		}
		r := *ev.Requisite
		c.Requisite = &r
	}
	return c, nil
}

func formatNumber(s string, comma bool) string {
	if comma {
		return strings.ReplaceAll(s, ".", ",")
	}
	return s
}

// Render substitutes {{name}} placeholders. A placeholder without a value is an
// error rather than an empty string.
func Render(template string, c notification.Context) (string, error) {
	vars := c.Vars()
	return fasttemplate.ExecuteFuncStringWithErr(template, startTag, endTag, func(w io.Writer, tag string) (int, error) {
		name := strings.TrimSpace(tag)
		v, ok := vars[name]
		if !ok {
			return 0, liberr.Internal("template variable %q has no value", name)
		}
		return w.Write([]byte(v))
	})
}
