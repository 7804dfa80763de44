package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sydney-stones/rfwidjet-server/internal/domain"
)

// MerchantRepositoryPG implements domain.MerchantRepository backed by PostgreSQL.
type MerchantRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewMerchantRepository creates a new MerchantRepositoryPG.
func NewMerchantRepository(pool *pgxpool.Pool) *MerchantRepositoryPG {
	return &MerchantRepositoryPG{pool: pool}
}

// GetByID fetches a merchant by UUID.
func (r *MerchantRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Merchant, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, api_key, plan, created_at, updated_at FROM merchants WHERE id = $1`, id)
	return scanMerchant(row)
}

// GetByAPIKey fetches the merchant owning the given widget API key.
func (r *MerchantRepositoryPG) GetByAPIKey(ctx context.Context, key string) (*domain.Merchant, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, api_key, plan, created_at, updated_at FROM merchants WHERE api_key = $1`, key)
	return scanMerchant(row)
}

func scanMerchant(row pgx.Row) (*domain.Merchant, error) {
	var m domain.Merchant
	if err := row.Scan(&m.ID, &m.Name, &m.APIKey, &m.Plan, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}
