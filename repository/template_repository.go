package repository

import (
	"context"
	"errors"
	"fmt"

	"lawpath-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrTemplateNotFound is returned when a template ID has no stored template.
var ErrTemplateNotFound = errors.New("template not found")

// TemplateRepository handles database operations for standard templates.
// It implements service.TemplateStore.
type TemplateRepository struct {
	db *pgxpool.Pool
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// Get retrieves a standard template by ID
func (r *TemplateRepository) Get(ctx context.Context, templateID string) (*models.StandardTemplate, error) {
	template := &models.StandardTemplate{}
	query := `
		SELECT id, name, clauses, created_at, updated_at
		FROM standard_templates
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, templateID).Scan(
		&template.ID,
		&template.Name,
		&template.Clauses,
		&template.CreatedAt,
		&template.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("template %q: %w", templateID, ErrTemplateNotFound)
		}
		return nil, err
	}

	return template, nil
}

// Put stores a standard template, overwriting any existing one with the same ID
func (r *TemplateRepository) Put(ctx context.Context, template *models.StandardTemplate) (string, error) {
	query := `
		INSERT INTO standard_templates (id, name, clauses)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			clauses = EXCLUDED.clauses,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		template.ID,
		template.Name,
		template.Clauses,
	).Scan(&template.ID, &template.CreatedAt, &template.UpdatedAt)

	if err != nil {
		return "", err
	}

	return template.ID, nil
}

// List retrieves all stored standard templates
func (r *TemplateRepository) List(ctx context.Context) ([]*models.StandardTemplate, error) {
	query := `
		SELECT id, name, clauses, created_at, updated_at
		FROM standard_templates
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.StandardTemplate
	for rows.Next() {
		template := &models.StandardTemplate{}
		err := rows.Scan(
			&template.ID,
			&template.Name,
			&template.Clauses,
			&template.CreatedAt,
			&template.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}

	return templates, rows.Err()
}

// Delete removes a standard template
func (r *TemplateRepository) Delete(ctx context.Context, templateID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM standard_templates WHERE id = $1`, templateID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("template %q: %w", templateID, ErrTemplateNotFound)
	}
	return nil
}
