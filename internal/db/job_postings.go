package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/meghanahima/Resume-Matches-sub000/internal/matching"
)

// JobPostingStore serves the postings collection. Implements
// matching.PostingStore for the bulk matching query and exposes the CRUD
// methods the mutation handlers use.
type JobPostingStore struct {
	db *DB
}

// NewJobPostingStore creates a posting store over the given connection.
func NewJobPostingStore(database *DB) *JobPostingStore {
	return &JobPostingStore{db: database}
}

// ListForMatching bulk-fetches every posting for the preliminary matcher.
// Projection and filtering happen server-side; ordering is stable (insertion
// order) so equal-score ties paginate identically across runs.
func (s *JobPostingStore) ListForMatching(ctx context.Context) ([]matching.JobPosting, error) {
	rows, err := s.db.pool.Query(ctx,
		`SELECT id, title, company, skills, description, portal
		 FROM job_postings
		 WHERE skills IS NOT NULL
		 ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query job postings: %w", err)
	}
	defer rows.Close()

	var postings []matching.JobPosting
	for rows.Next() {
		var (
			id      uuid.UUID
			p       matching.JobPosting
			skills  []byte
			portal  *string
			descr   *string
			company *string
		)
		if err := rows.Scan(&id, &p.Title, &company, &skills, &descr, &portal); err != nil {
			return nil, fmt.Errorf("failed to scan job posting: %w", err)
		}
		p.ID = id.String()
		p.Skills = skills
		if company != nil {
			p.Company = *company
		}
		if descr != nil {
			p.Description = *descr
		}
		if portal != nil {
			p.Portal = *portal
		}
		postings = append(postings, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read job postings: %w", err)
	}

	return postings, nil
}

// Create inserts a posting and returns the stored row.
func (s *JobPostingStore) Create(ctx context.Context, input *JobPostingInput) (*JobPostingRow, error) {
	var row JobPostingRow
	err := s.db.pool.QueryRow(ctx,
		`INSERT INTO job_postings (title, company, skills, description, portal)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, title, company, skills, description, portal, created_at, updated_at`,
		input.Title, input.Company, []byte(input.Skills), input.Description, input.Portal,
	).Scan(&row.ID, &row.Title, &row.Company, &row.Skills, &row.Description, &row.Portal,
		&row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job posting: %w", err)
	}
	return &row, nil
}

// Update replaces a posting's mutable fields. Returns nil when the posting
// does not exist.
func (s *JobPostingStore) Update(ctx context.Context, id uuid.UUID, input *JobPostingInput) (*JobPostingRow, error) {
	var row JobPostingRow
	err := s.db.pool.QueryRow(ctx,
		`UPDATE job_postings
		 SET title = $2, company = $3, skills = $4, description = $5, portal = $6, updated_at = NOW()
		 WHERE id = $1
		 RETURNING id, title, company, skills, description, portal, created_at, updated_at`,
		id, input.Title, input.Company, []byte(input.Skills), input.Description, input.Portal,
	).Scan(&row.ID, &row.Title, &row.Company, &row.Skills, &row.Description, &row.Portal,
		&row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update job posting: %w", err)
	}
	return &row, nil
}

// Delete removes a posting. Reports whether a row was actually deleted.
func (s *JobPostingStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.db.pool.Exec(ctx,
		`DELETE FROM job_postings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete job posting: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List returns a page of postings plus the total count, newest first.
func (s *JobPostingStore) List(ctx context.Context, limit, offset int) ([]JobPostingRow, int, error) {
	var total int
	if err := s.db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_postings`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count job postings: %w", err)
	}

	rows, err := s.db.pool.Query(ctx,
		`SELECT id, title, company, skills, description, portal, created_at, updated_at
		 FROM job_postings
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list job postings: %w", err)
	}
	defer rows.Close()

	var postings []JobPostingRow
	for rows.Next() {
		var row JobPostingRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Company, &row.Skills, &row.Description,
			&row.Portal, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan job posting: %w", err)
		}
		postings = append(postings, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read job postings: %w", err)
	}

	return postings, total, nil
}
