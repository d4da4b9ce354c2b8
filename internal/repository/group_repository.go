// internal/repository/group_repository.go
package repository

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/domain"
	"github.com/Preston-Eck/UDRG-Inventory-Sales-Analysis/internal/repository/postgres"
)

type groupRepository struct {
	db *postgres.DB
}

func NewGroupRepository(db *postgres.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) ListGroups(ctx context.Context) ([]domain.CustomGroup, error) {
	query := `
		SELECT id, name, COALESCE(skus, '{}') AS skus
		FROM custom_groups
		ORDER BY name
	`

	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing custom groups: %w", err)
	}
	defer rows.Close()

	var groups []domain.CustomGroup
	for rows.Next() {
		var group domain.CustomGroup
		var skus pq.StringArray
		if err := rows.Scan(&group.ID, &group.Name, &skus); err != nil {
			return nil, fmt.Errorf("error scanning custom group: %w", err)
		}
		group.SKUs = []string(skus)
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

func (r *groupRepository) SaveGroup(ctx context.Context, group domain.CustomGroup) error {
	query := `
		INSERT INTO custom_groups (id, name, skus, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			skus = EXCLUDED.skus,
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, group.ID, group.Name, pq.StringArray(group.SKUs)); err != nil {
		return fmt.Errorf("error saving custom group %s: %w", group.ID, err)
	}
	return nil
}

func (r *groupRepository) DeleteGroup(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM custom_groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting custom group %s: %w", id, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("custom group %s not found", id)
	}
	return nil
}
