package catalog

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"regexp"

	"support-bot/internal/common/errors"
	"support-bot/internal/models"

	"github.com/lib/pq"
)

// Phrase kinds stored in the kind column.
const (
	KindPattern  = "pattern"
	KindResponse = "response"
)

const undefinedTable pq.ErrorCode = "42P01"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// PostgresSource reads a catalog stored one phrase per row:
//
//	CREATE TABLE intent_phrases (
//	    intent_position INT  NOT NULL,
//	    intent_tag      TEXT NOT NULL,
//	    kind            TEXT NOT NULL CHECK (kind IN ('pattern', 'response')),
//	    position        INT  NOT NULL,
//	    body            TEXT NOT NULL
//	);
//
// Intents keep the order of intent_position, phrases the order of position.
type PostgresSource struct {
	db    *sql.DB
	table string
}

func NewPostgresSource(db *sql.DB, table string) (*PostgresSource, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid catalog table name %q", table)
	}
	return &PostgresSource{db: db, table: table}, nil
}

func (s *PostgresSource) Name() string { return "postgres:" + s.table }

func (s *PostgresSource) query() string {
	return fmt.Sprintf(
		"SELECT intent_tag, kind, body FROM %s ORDER BY intent_position, position",
		pq.QuoteIdentifier(s.table),
	)
}

func (s *PostgresSource) Load(ctx context.Context) (*models.Catalog, error) {
	rows, err := s.db.QueryContext(ctx, s.query())
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == undefinedTable {
			return nil, errors.NewCatalogNotFoundError(s.Name(), err)
		}
		return nil, errors.NewCatalogSourceFailedError(s.Name(), err)
	}
	defer rows.Close()

	var cat models.Catalog
	index := make(map[string]int)
	for rows.Next() {
		var tag, kind, body string
		if err := rows.Scan(&tag, &kind, &body); err != nil {
			return nil, errors.NewCatalogMalformedError(s.Name(), err)
		}

		i, ok := index[tag]
		if !ok {
			i = len(cat.Intents)
			index[tag] = i
			cat.Intents = append(cat.Intents, models.Intent{Tag: tag})
		}

		switch kind {
		case KindPattern:
			cat.Intents[i].Patterns = append(cat.Intents[i].Patterns, body)
		case KindResponse:
			cat.Intents[i].Responses = append(cat.Intents[i].Responses, body)
		default:
			return nil, errors.NewCatalogMalformedError(s.Name(), fmt.Errorf("intent %q has unknown phrase kind %q", tag, kind))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewCatalogSourceFailedError(s.Name(), err)
	}

	if len(cat.Intents) == 0 {
		return nil, errors.NewCatalogNotFoundError(s.Name(), fmt.Errorf("table is empty"))
	}
	if err := Validate(&cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// Save replaces the table contents with cat in one transaction.
func (s *PostgresSource) Save(ctx context.Context, cat *models.Catalog) error {
	if err := Validate(cat); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewCatalogSourceFailedError(s.Name(), err)
	}
	defer tx.Rollback()

	table := pq.QuoteIdentifier(s.table)
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return errors.NewCatalogSourceFailedError(s.Name(), err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (intent_position, intent_tag, kind, position, body) VALUES ($1, $2, $3, $4, $5)", table))
	if err != nil {
		return errors.NewCatalogSourceFailedError(s.Name(), err)
	}
	defer stmt.Close()

	for i, in := range cat.Intents {
		for j, p := range in.Patterns {
			if _, err := stmt.ExecContext(ctx, i, in.Tag, KindPattern, j, p); err != nil {
				return errors.NewCatalogSourceFailedError(s.Name(), err)
			}
		}
		for j, r := range in.Responses {
			if _, err := stmt.ExecContext(ctx, i, in.Tag, KindResponse, j, r); err != nil {
				return errors.NewCatalogSourceFailedError(s.Name(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewCatalogSourceFailedError(s.Name(), err)
	}
	return nil
}
