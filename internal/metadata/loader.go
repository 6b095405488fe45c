package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LoadAll reads all form documents from the database and populates the registry.
func LoadAll(ctx context.Context, pool *pgxpool.Pool, reg *Registry) error {
	forms, err := loadForms(ctx, pool)
	if err != nil {
		return fmt.Errorf("load forms: %w", err)
	}
	reg.Load(forms)

	log.Printf("Loaded %d forms into registry", len(forms))
	return nil
}

// Reload is an alias for LoadAll, called after builder mutations.
func Reload(ctx context.Context, pool *pgxpool.Pool, reg *Registry) error {
	return LoadAll(ctx, pool, reg)
}

func loadForms(ctx context.Context, pool *pgxpool.Pool) ([]*Form, error) {
	rows, err := pool.Query(ctx, `SELECT id, slug, published, definition FROM _forms`)
	if err != nil {
		return nil, fmt.Errorf("query _forms: %w", err)
	}
	defer rows.Close()

	var forms []*Form
	for rows.Next() {
		var (
			id, slug  string
			published bool
			def       []byte
		)
		if err := rows.Scan(&id, &slug, &published, &def); err != nil {
			return nil, fmt.Errorf("scan form row: %w", err)
		}

		var form Form
		if err := json.Unmarshal(def, &form); err != nil {
			log.Printf("WARN: skipping form %s: bad definition: %v", id, err)
			continue
		}
		// The row is authoritative for identity and publish state.
		form.ID = id
		form.Slug = slug
		form.Published = published
		forms = append(forms, &form)
	}
	return forms, rows.Err()
}
