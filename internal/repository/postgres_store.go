package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/carrierwatch/carrierwatch/internal/domain"
)

// PostgresStore is the database-backed alternative to the xlsx file, for
// deployments where the tracker runs on a box the spreadsheet doesn't live
// on. Same snapshot semantics: Save replaces the whole table in one
// transaction.
type PostgresStore struct {
	pool   *pgxpool.Pool
	labels domain.LabelSet
}

func NewPostgresStore(pool *pgxpool.Pool, labels domain.LabelSet) *PostgresStore {
	return &PostgresStore{pool: pool, labels: labels}
}

type applicationRow struct {
	Code            string     `db:"code"`
	Company         string     `db:"company"`
	Topic           string     `db:"topic"`
	Domain          string     `db:"domain"`
	Status          string     `db:"status"`
	ApplicationDate *time.Time `db:"application_date"`
	InternshipStart *time.Time `db:"internship_start"`
	LastEmail       *time.Time `db:"last_email"`
	Source          string     `db:"source"`
	Extra           []byte     `db:"extra"`
}

func (p *PostgresStore) Load(ctx context.Context) ([]domain.Application, error) {
	rows := make([]applicationRow, 0)
	query := `
		SELECT code, company, topic, domain, status,
		       application_date, internship_start, last_email, source, extra
		FROM applications
		ORDER BY code`
	if err := pgxscan.Select(ctx, p.pool, &rows, query); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreRead, err)
	}

	apps := make([]domain.Application, 0, len(rows))
	for _, row := range rows {
		app := domain.Application{
			Code:            row.Code,
			Company:         row.Company,
			Topic:           row.Topic,
			Domain:          row.Domain,
			ApplicationDate: row.ApplicationDate,
			InternshipStart: row.InternshipStart,
			LastEmail:       row.LastEmail,
			Source:          domain.Source(row.Source),
		}
		if status, ok := domain.ParseStatus(row.Status); ok {
			app.Status = status
		}
		if len(row.Extra) > 0 {
			extra := make(map[string]string)
			if err := json.Unmarshal(row.Extra, &extra); err == nil && len(extra) > 0 {
				app.Extra = extra
			}
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (p *PostgresStore) Save(ctx context.Context, apps []domain.Application) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM applications`); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
	}

	query := `
		INSERT INTO applications
			(code, company, topic, domain, status,
			 application_date, internship_start, last_email, source, extra)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for _, app := range apps {
		extra := lo.Ternary(len(app.Extra) > 0, app.Extra, map[string]string{})
		extraJSON, err := json.Marshal(extra)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
		}
		_, err = tx.Exec(ctx, query,
			app.Code,
			app.Company,
			app.Topic,
			app.Domain,
			p.labels[app.Status],
			app.ApplicationDate,
			app.InternshipStart,
			app.LastEmail,
			string(app.Source),
			extraJSON,
		)
		if err != nil {
			return fmt.Errorf("%w: inserting %s: %v", domain.ErrStoreWrite, app.Code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
	}
	return nil
}
