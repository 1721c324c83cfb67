package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/magic2d/internal/data"
)

// CatalogVersion — запись об одном импорте каталога.
type CatalogVersion struct {
	ID         int64
	Digest     string
	SpellCount int
	Source     string
}

// SpellRepository хранит каталог магий в PostgreSQL.
// Каждое определение лежит YAML-документом в spells.definition,
// тем же форматом, что и файлы каталога.
type SpellRepository struct {
	pool *pgxpool.Pool
}

// NewSpellRepository создаёт новый SpellRepository.
func NewSpellRepository(pool *pgxpool.Pool) *SpellRepository {
	return &SpellRepository{pool: pool}
}

// ImportCatalog заменяет содержимое spells каталогом c и записывает версию.
// Если последняя версия уже имеет тот же digest, ничего не меняется и возвращается false.
// Выполняется в транзакции: частичного каталога в базе не бывает.
func (r *SpellRepository) ImportCatalog(ctx context.Context, c *data.Catalog, source string) (bool, error) {
	if c == nil {
		return false, errors.New("importing nil catalog")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	latest, err := latestVersion(ctx, tx)
	if err != nil {
		return false, err
	}
	if latest != nil && latest.Digest == c.Digest() {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM spells`); err != nil {
		return false, fmt.Errorf("clearing spells: %w", err)
	}

	rows := make([][]any, 0, c.Len())
	for _, def := range c.All() {
		body, err := yaml.Marshal(def)
		if err != nil {
			return false, fmt.Errorf("encoding spell %s: %w", def.ID, err)
		}
		rows = append(rows, []any{def.ID, def.Name, int16(def.MoveKind), string(body)})
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"spells"},
		[]string{"id", "name", "move_kind", "definition"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return false, fmt.Errorf("copying spells: %w", err)
	}
	if int(copied) != c.Len() {
		return false, fmt.Errorf("copied %d spells, expected %d", copied, c.Len())
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO catalog_versions (digest, spell_count, source) VALUES ($1, $2, $3)`,
		c.Digest(), c.Len(), source,
	)
	if err != nil {
		return false, fmt.Errorf("recording catalog version: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing catalog import: %w", err)
	}
	return true, nil
}

// LoadCatalog собирает каталог из всех строк spells.
// Пустая таблица даёт пустой каталог.
func (r *SpellRepository) LoadCatalog(ctx context.Context) (*data.Catalog, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, definition FROM spells ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying spells: %w", err)
	}
	defer rows.Close()

	var defs []*data.SpellDefinition
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scanning spell row: %w", err)
		}
		def := &data.SpellDefinition{}
		if err := yaml.Unmarshal([]byte(body), def); err != nil {
			return nil, fmt.Errorf("decoding spell %s: %w", id, err)
		}
		if def.ID != id {
			return nil, fmt.Errorf("spell row %s holds definition of %q", id, def.ID)
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spell rows: %w", err)
	}

	c, err := data.NewCatalog(defs)
	if err != nil {
		return nil, fmt.Errorf("building catalog from database: %w", err)
	}
	return c, nil
}

// LatestVersion возвращает последнюю импортированную версию каталога.
// Возвращает nil, nil если импортов ещё не было.
func (r *SpellRepository) LatestVersion(ctx context.Context) (*CatalogVersion, error) {
	return latestVersion(ctx, r.pool)
}

// SpellIDsByKind возвращает ID магий данного типа движения, по возрастанию.
func (r *SpellRepository) SpellIDsByKind(ctx context.Context, kind data.MoveKind) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM spells WHERE move_kind = $1 ORDER BY id`, int16(kind))
	if err != nil {
		return nil, fmt.Errorf("querying spells of kind %s: %w", kind, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("collecting spell ids: %w", err)
	}
	return ids, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func latestVersion(ctx context.Context, q querier) (*CatalogVersion, error) {
	var v CatalogVersion
	err := q.QueryRow(ctx,
		`SELECT id, digest, spell_count, source FROM catalog_versions ORDER BY id DESC LIMIT 1`,
	).Scan(&v.ID, &v.Digest, &v.SpellCount, &v.Source)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading latest catalog version: %w", err)
	}
	return &v, nil
}
