package postgres

import (
	"context"
	"fmt"

	"alumni-prep-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type alumniRepository struct {
	db *pgxpool.Pool
}

func NewAlumniRepository(db *pgxpool.Pool) domain.AlumniRepository {
	return &alumniRepository{db: db}
}

func (r *alumniRepository) Create(ctx context.Context, profile *domain.CandidateProfile) error {
	query := `
		INSERT INTO alumni_profiles (
			name, email, show_email, company, advice,
			picture_url, calendly_link, show_calendly, linkedin_link, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		profile.Name, profile.Email, profile.ShowEmail, profile.Company, profile.Advice,
		profile.PictureURL, profile.CalendlyLink, profile.ShowCalendly, profile.LinkedinLink,
	).Scan(&profile.ID, &profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert alumni profile: %w", err)
	}
	return nil
}

func (r *alumniRepository) List(ctx context.Context) ([]domain.CandidateProfile, error) {
	query := `
		SELECT id, name, email, show_email, company, advice,
		       picture_url, calendly_link, show_calendly, linkedin_link, created_at
		FROM alumni_profiles
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list alumni profiles: %w", err)
	}

	profiles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CandidateProfile, error) {
		var p domain.CandidateProfile
		err := row.Scan(
			&p.ID, &p.Name, &p.Email, &p.ShowEmail, &p.Company, &p.Advice,
			&p.PictureURL, &p.CalendlyLink, &p.ShowCalendly, &p.LinkedinLink, &p.CreatedAt,
		)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan alumni profiles: %w", err)
	}
	return profiles, nil
}
