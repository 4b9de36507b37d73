package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lfarias-dev/labreport-pipeline/internal/core/domain"
)

type OwnerDirectory struct {
	db *sql.DB
}

func NewOwnerDirectory(db *sql.DB) *OwnerDirectory {
	return &OwnerDirectory{db: db}
}

func (d *OwnerDirectory) FindOwner(ctx context.Context, ownerKey string) (*domain.Owner, error) {
	row := d.db.QueryRowContext(ctx, `
SELECT owner_key, display_name
FROM owners
WHERE owner_key = $1
`, ownerKey)

	var owner domain.Owner
	if err := row.Scan(&owner.OwnerKey, &owner.DisplayName); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrOwnerNotFound, "find owner",
				fmt.Errorf("no owner %s", ownerKey))
		}
		return nil, domain.WrapError(domain.ErrStorageUnavailable, "scan owner", err)
	}
	return &owner, nil
}
