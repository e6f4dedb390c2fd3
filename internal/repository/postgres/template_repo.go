package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/SendModes/internal/codec"
	"github.com/NordCoder/SendModes/internal/domain/notification"
	"github.com/NordCoder/SendModes/internal/domain/sendmode"
	"github.com/jackc/pgx/v5"
)

var _ notification.TemplateRepo = (*TemplateRepoImpl)(nil)

type TemplateRepoImpl struct{ db *DB }

func NewTemplateRepo(db *DB) *TemplateRepoImpl { return &TemplateRepoImpl{db: db} }

const (
	templateColumns = `bank, send_mode, template, search_by, has_requisite, has_balance,
       notification_type, source, need_to_replace_comma`

	qTemplateFind = `
SELECT ` + templateColumns + `
FROM notification_templates
WHERE bank = $1 AND send_mode = $2 AND search_by = $3;
`

	qTemplateListByBank = `
SELECT ` + templateColumns + `
FROM notification_templates
WHERE bank = $1
ORDER BY send_mode, search_by;
`
)

func (r *TemplateRepoImpl) Find(ctx context.Context, bank string, kind sendmode.Kind, searchBy string) (notification.Template, error) {
	var row codec.Row
	resource := fmt.Sprintf("notification template %s/%s/%s", bank, kind, searchBy)
	err := r.db.run(ctx, resource, func(ctx context.Context) error {
		rows, err := r.db.execQueryer(ctx).Query(ctx, qTemplateFind, bank, string(kind), searchBy)
		if err != nil {
			return err
		}
		row, err = pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
		return err
	})
	if err != nil {
		return notification.Template{}, err
	}
	return codec.TemplateRow.Decode(row)
}

func (r *TemplateRepoImpl) ListByBank(ctx context.Context, bank string) ([]notification.Template, error) {
	var rows []codec.Row
	err := r.db.run(ctx, "notification templates of "+bank, func(ctx context.Context) error {
		rs, err := r.db.execQueryer(ctx).Query(ctx, qTemplateListByBank, bank)
		if err != nil {
			return err
		}
		rows, err = pgx.CollectRows(rs, pgx.RowToMap)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]notification.Template, 0, len(rows))
	for _, row := range rows {
		t, err := codec.TemplateRow.Decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
