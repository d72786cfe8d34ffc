package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/docs-api/internal/domain"
	"github.com/jhoicas/docs-api/internal/domain/entity"
	"github.com/jhoicas/docs-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

var documentColumns = []string{
	"id", "title", "content", "posted_by", "role", "filename",
	"storage_key", "content_type", "size_bytes", "created_at",
}

// DocumentRepo implementación del puerto DocumentRepository sobre PostgreSQL.
type DocumentRepo struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository construye el adaptador de persistencia para documentos.
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

// Create inserta el registro del documento.
func (r *DocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	sqlStr, args, err := buildInsertQuery(d)
	if err != nil {
		return fmt.Errorf("build insert document: %w", err)
	}
	if _, err := r.pool.Exec(ctx, sqlStr, args...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID obtiene un documento por ID; domain.ErrNotFound si no existe o si id no es un UUID.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	sqlStr, args, err := psql.Select(documentColumns...).
		From("documents").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get document: %w", err)
	}
	d, err := scanDocument(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// List devuelve los documentos en orden de inserción, filtrados por autor si el filtro lo indica.
func (r *DocumentRepo) List(ctx context.Context, filter repository.DocumentFilter) ([]*entity.Document, error) {
	sqlStr, args, err := buildListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build list documents: %w", err)
	}
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var list []*entity.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func buildInsertQuery(d *entity.Document) (string, []interface{}, error) {
	return psql.Insert("documents").
		Columns(documentColumns...).
		Values(d.ID, d.Title, d.Content, d.PostedBy, d.Role, d.Filename,
			d.StorageKey, d.ContentType, d.SizeBytes, d.CreatedAt).
		ToSql()
}

// buildListQuery ordena por seq (BIGSERIAL) para conservar el orden de inserción.
func buildListQuery(filter repository.DocumentFilter) (string, []interface{}, error) {
	q := psql.Select(documentColumns...).From("documents")
	if filter.PostedBy != "" {
		q = q.Where(sq.Eq{"posted_by": filter.PostedBy})
	}
	return q.OrderBy("seq ASC").ToSql()
}

func scanDocument(row pgx.Row) (*entity.Document, error) {
	var d entity.Document
	err := row.Scan(
		&d.ID, &d.Title, &d.Content, &d.PostedBy, &d.Role, &d.Filename,
		&d.StorageKey, &d.ContentType, &d.SizeBytes, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
