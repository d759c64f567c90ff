package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/vecindario/adserver/internal/database"
	"github.com/vecindario/adserver/internal/models"
	"github.com/vecindario/adserver/internal/service"
)

// PostgresRepository implements the service data access interfaces using
// PostgreSQL.
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

const adColumns = `id, titulo, descripcion, precio, moneda, imagenes, imagenes_originales,
	activo, fecha_modificacion, variants, celular_anunciante, categoria, residencial_id`

// GetAdByID retrieves the authoritative ad record.
func (r *PostgresRepository) GetAdByID(ctx context.Context, id string) (*models.Ad, error) {
	query := fmt.Sprintf(`SELECT %s FROM ads WHERE id = $1`, adColumns)

	ad, err := scanAd(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ad: %w", err)
	}
	return ad, nil
}

// GetAdsBySeller retrieves other active listings from the same advertiser.
func (r *PostgresRepository) GetAdsBySeller(ctx context.Context, phone string, excludeAdID string, limit int) ([]models.Ad, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM ads
		WHERE celular_anunciante = $1 AND id <> $2 AND activo = true
		ORDER BY fecha_modificacion DESC
		LIMIT $3
	`, adColumns)

	rows, err := r.db.QueryContext(ctx, query, phone, excludeAdID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query seller ads: %w", err)
	}
	defer rows.Close()

	var ads []models.Ad
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ad: %w", err)
		}
		ads = append(ads, *ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over ad rows: %w", err)
	}
	return ads, nil
}

// RecordView logs one ad view.
func (r *PostgresRepository) RecordView(ctx context.Context, adID string, requestID string) error {
	query := `INSERT INTO ad_views (ad_id, request_id) VALUES ($1, NULLIF($2, ''))`
	if _, err := r.db.ExecContext(ctx, query, adID, requestID); err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}
	return nil
}

// LookupByPhone resolves an advertiser display identity.
func (r *PostgresRepository) LookupByPhone(ctx context.Context, phone string) (*models.AdvertiserInfo, error) {
	query := `SELECT celular, nombre, COALESCE(avatar_url, '') FROM users WHERE celular = $1`

	var info models.AdvertiserInfo
	err := r.db.QueryRowContext(ctx, query, phone).Scan(&info.Phone, &info.DisplayName, &info.AvatarURL)
	if err == sql.ErrNoRows {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &info, nil
}

// GetResidentialByID resolves a residential community.
func (r *PostgresRepository) GetResidentialByID(ctx context.Context, id string) (*models.Residential, error) {
	query := `SELECT id, nombre, lat, lng, radio_metros FROM residentials WHERE id = $1`

	var res models.Residential
	err := r.db.QueryRowContext(ctx, query, id).Scan(&res.ID, &res.Name, &res.Latitude, &res.Longitude, &res.RadiusMeters)
	if err == sql.ErrNoRows {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query residential: %w", err)
	}
	return &res, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAd(row rowScanner) (*models.Ad, error) {
	var ad models.Ad
	err := row.Scan(
		&ad.ID,
		&ad.Title,
		&ad.Description,
		&ad.Price,
		&ad.Currency,
		pq.Array(&ad.Images),
		pq.Array(&ad.OriginalImages),
		&ad.Active,
		&ad.ModifiedAt,
		pq.Array(&ad.EncodedVariants),
		&ad.AdvertiserPhone,
		&ad.Category,
		&ad.ResidentialID,
	)
	if err != nil {
		return nil, err
	}
	return &ad, nil
}
