package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "github.com/Adithya-Monish-Kumar-K/resume-match-analyzer/pkg/errors"
)

// PostgresRepository reads and writes the analyses table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a repository on db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores rec.
func (p *PostgresRepository) Insert(ctx context.Context, rec Record) error {
	matching, err := json.Marshal(rec.MatchingSkills)
	if err != nil {
		return fmt.Errorf("encoding matching skills: %w", err)
	}
	missing, err := json.Marshal(rec.MissingSkills)
	if err != nil {
		return fmt.Errorf("encoding missing skills: %w", err)
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO analyses (
			id, request_id, file_name, resume_sha256, jd_sha256,
			match_score, verdict, matching_skills, missing_skills,
			lexical_similarity, lexical_available, skill_overlap, match_mode, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		rec.ID, rec.RequestID, rec.FileName, rec.ResumeSHA256, rec.JobSHA256,
		rec.MatchScore, rec.Verdict, matching, missing,
		rec.LexicalSimilarity, rec.LexicalAvailable, rec.SkillOverlap, rec.MatchMode, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting analysis %s: %w", rec.ID, err)
	}
	return nil
}

// Find loads the record with id, returning ErrAnalysisNotFound when absent.
func (p *PostgresRepository) Find(ctx context.Context, id string) (Record, error) {
	var (
		rec               Record
		matching, missing []byte
	)
	err := p.db.QueryRowContext(ctx, `
		SELECT id, request_id, file_name, resume_sha256, jd_sha256,
		       match_score, verdict, matching_skills, missing_skills,
		       lexical_similarity, lexical_available, skill_overlap, match_mode, created_at
		FROM analyses WHERE id = $1`, id,
	).Scan(
		&rec.ID, &rec.RequestID, &rec.FileName, &rec.ResumeSHA256, &rec.JobSHA256,
		&rec.MatchScore, &rec.Verdict, &matching, &missing,
		&rec.LexicalSimilarity, &rec.LexicalAvailable, &rec.SkillOverlap, &rec.MatchMode, &rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("analysis %s: %w", id, apperrors.ErrAnalysisNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("querying analysis %s: %w", id, err)
	}
	if err := json.Unmarshal(matching, &rec.MatchingSkills); err != nil {
		return Record{}, fmt.Errorf("decoding matching skills: %w", err)
	}
	if err := json.Unmarshal(missing, &rec.MissingSkills); err != nil {
		return Record{}, fmt.Errorf("decoding missing skills: %w", err)
	}
	return rec, nil
}
