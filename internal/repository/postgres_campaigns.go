package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/vecindario/adserver/internal/models"
	"github.com/vecindario/adserver/internal/service"
)

const campaignColumns = `id, name, image_url, link_url, type, status, budget_credits, spent_credits,
	start_date, end_date, categories, residentials, impressions, clicks, created_at, updated_at`

// GetRunningCampaigns retrieves campaigns that are active, inside their date
// range and still have budget. Final audience filtering happens in the
// service layer.
func (r *PostgresRepository) GetRunningCampaigns(ctx context.Context) ([]models.Campaign, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM campaigns
		WHERE status = 'ACTIVE'
		  AND start_date <= NOW() AND end_date >= NOW()
		  AND spent_credits < budget_credits
		ORDER BY updated_at DESC
	`, campaignColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over campaign rows: %w", err)
	}
	return campaigns, nil
}

// GetCampaignByID retrieves one campaign.
func (r *PostgresRepository) GetCampaignByID(ctx context.Context, id string) (*models.Campaign, error) {
	query := fmt.Sprintf(`SELECT %s FROM campaigns WHERE id = $1`, campaignColumns)

	c, err := scanCampaign(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query campaign: %w", err)
	}
	return c, nil
}

// CreateCampaign inserts a new campaign.
func (r *PostgresRepository) CreateCampaign(ctx context.Context, c *models.Campaign) error {
	query := `
		INSERT INTO campaigns (id, name, image_url, link_url, type, status, budget_credits, spent_credits,
			start_date, end_date, categories, residentials, impressions, clicks, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.ImageURL, c.LinkURL, c.Type, c.Status, c.BudgetCredits, c.SpentCredits,
		c.StartDate, c.EndDate, pq.Array(c.Categories), pq.Array(c.Residentials),
		c.Impressions, c.Clicks, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert campaign: %w", err)
	}
	return nil
}

// UpdateCampaign persists campaign changes.
func (r *PostgresRepository) UpdateCampaign(ctx context.Context, c *models.Campaign) error {
	query := `
		UPDATE campaigns
		SET name = $2, image_url = $3, link_url = $4, type = $5, status = $6,
			budget_credits = $7, start_date = $8, end_date = $9,
			categories = $10, residentials = $11, updated_at = $12
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.ImageURL, c.LinkURL, c.Type, c.Status,
		c.BudgetCredits, c.StartDate, c.EndDate,
		pq.Array(c.Categories), pq.Array(c.Residentials), c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update campaign: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return service.ErrNotFound
	}
	return nil
}

// DeleteCampaign removes a campaign row.
func (r *PostgresRepository) DeleteCampaign(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return service.ErrNotFound
	}
	return nil
}

// IncrementCounter records one interaction. Impressions and clicks both
// debit one budget credit.
func (r *PostgresRepository) IncrementCounter(ctx context.Context, id string, event models.TrackEvent) error {
	var query string
	switch event {
	case models.EventClick:
		query = `UPDATE campaigns SET clicks = clicks + 1, spent_credits = spent_credits + 1 WHERE id = $1`
	default:
		query = `UPDATE campaigns SET impressions = impressions + 1, spent_credits = spent_credits + 1 WHERE id = $1`
	}

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to track campaign event: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return service.ErrNotFound
	}
	return nil
}

func scanCampaign(row rowScanner) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.ImageURL,
		&c.LinkURL,
		&c.Type,
		&c.Status,
		&c.BudgetCredits,
		&c.SpentCredits,
		&c.StartDate,
		&c.EndDate,
		pq.Array(&c.Categories),
		pq.Array(&c.Residentials),
		&c.Impressions,
		&c.Clicks,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
