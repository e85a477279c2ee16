package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PredictionRecord is one persisted prediction result.
type PredictionRecord struct {
	ID             string    `json:"id"`
	City           string    `json:"city"`
	UserID         string    `json:"user_id"`
	TrajID         string    `json:"traj_id"`
	PromptType     string    `json:"prompt_type"`
	Model          string    `json:"model"`
	Platform       string    `json:"platform"`
	PredictedVenue string    `json:"predicted_venue"`
	GroundVenue    string    `json:"ground_venue"`
	Reason         string    `json:"reason"`
	ParseStage     string    `json:"parse_stage"`
	LatencyMs      int64     `json:"latency_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// Correct reports whether the prediction matched the ground truth.
func (r PredictionRecord) Correct() bool {
	return r.PredictedVenue != "" && r.PredictedVenue == r.GroundVenue
}

// PredictionFilter selects records to list.
type PredictionFilter struct {
	City     string
	UserID   string
	Model    string
	Page     int
	PageSize int
}

// PredictionRepository handles database operations for prediction records
type PredictionRepository struct {
	db *sql.DB
}

// NewPredictionRepository creates a new prediction repository
func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Insert stores one prediction record, assigning it a fresh id.
func (r *PredictionRepository) Insert(rec *PredictionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO predictions
		(id, city, user_id, traj_id, prompt_type, model, platform,
		predicted_venue, ground_venue, reason, parse_stage, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		rec.ID, rec.City, rec.UserID, rec.TrajID, rec.PromptType,
		rec.Model, rec.Platform, rec.PredictedVenue, rec.GroundVenue,
		rec.Reason, rec.ParseStage, rec.LatencyMs, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prediction: %w", err)
	}
	return nil
}

// List retrieves prediction records with filtering and pagination, newest
// first.
func (r *PredictionRepository) List(filter PredictionFilter) ([]PredictionRecord, int64, error) {
	var conditions []string
	var args []interface{}

	if filter.City != "" {
		conditions = append(conditions, "city = ?")
		args = append(args, filter.City)
	}
	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Model != "" {
		conditions = append(conditions, "model = ?")
		args = append(args, filter.Model)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM predictions" + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count predictions: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	offset := (filter.Page - 1) * filter.PageSize

	query := `SELECT id, city, user_id, traj_id, prompt_type, model, platform,
		predicted_venue, ground_venue, reason, parse_stage, latency_ms, created_at
		FROM predictions` + where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.PageSize, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var records []PredictionRecord
	for rows.Next() {
		var rec PredictionRecord
		if err := rows.Scan(
			&rec.ID, &rec.City, &rec.UserID, &rec.TrajID, &rec.PromptType,
			&rec.Model, &rec.Platform, &rec.PredictedVenue, &rec.GroundVenue,
			&rec.Reason, &rec.ParseStage, &rec.LatencyMs, &rec.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan prediction: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read predictions: %w", err)
	}

	return records, total, nil
}
