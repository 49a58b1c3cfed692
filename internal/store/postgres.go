// internal/store/postgres.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"entity-dedup-workers/internal/common/logger"
	"entity-dedup-workers/internal/models"

	"github.com/lib/pq"
)

// EntityStore reads scraped entities and persists merge and review decisions.
type EntityStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewEntityStore(db *sql.DB, log logger.Logger) *EntityStore {
	return &EntityStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "entity-store"}),
	}
}

// FetchSpeakers loads speakers by id, or every unmerged speaker when ids is
// empty.
func (s *EntityStore) FetchSpeakers(ctx context.Context, ids []string) ([]models.Speaker, error) {
	query := `SELECT id, name, COALESCE(normalized_name, ''), COALESCE(company, ''), COALESCE(bio, ''), COALESCE(confidence_score, 0)
		FROM speakers WHERE merged_into IS NULL`
	args := []interface{}{}
	if len(ids) > 0 {
		query += ` AND id = ANY($1)`
		args = append(args, pq.Array(ids))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch speakers: %w", err)
	}
	defer rows.Close()

	var speakers []models.Speaker
	for rows.Next() {
		var sp models.Speaker
		if err := rows.Scan(&sp.ID, &sp.Name, &sp.NormalizedName, &sp.Company, &sp.Bio, &sp.ConfidenceScore); err != nil {
			return nil, fmt.Errorf("scan speaker: %w", err)
		}
		speakers = append(speakers, sp)
	}
	return speakers, rows.Err()
}

// FetchCompanies loads companies by id, or every unmerged company when ids is
// empty.
func (s *EntityStore) FetchCompanies(ctx context.Context, ids []string) ([]models.Company, error) {
	query := `SELECT id, name, COALESCE(normalized_name, ''), COALESCE(domain, ''), COALESCE(industry, '')
		FROM companies WHERE merged_into IS NULL`
	args := []interface{}{}
	if len(ids) > 0 {
		query += ` AND id = ANY($1)`
		args = append(args, pq.Array(ids))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch companies: %w", err)
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.NormalizedName, &c.Domain, &c.Industry); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// FetchEvents loads events by id, or every unmerged event when ids is empty.
func (s *EntityStore) FetchEvents(ctx context.Context, ids []string) ([]models.Event, error) {
	query := `SELECT id, name, COALESCE(description, ''), COALESCE(location, ''), COALESCE(date, ''), COALESCE(data_quality_score, 0)
		FROM events WHERE merged_into IS NULL`
	args := []interface{}{}
	if len(ids) > 0 {
		query += ` AND id = ANY($1)`
		args = append(args, pq.Array(ids))
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.Date, &e.DataQualityScore); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ApplyMerge persists one merge outcome in a single transaction: the primary
// row receives the resolved field values as JSON, and every merged row is
// pointed at the primary so later fetches skip it.
func (s *EntityStore) ApplyMerge(ctx context.Context, entityType models.EntityType, outcome models.MergeOutcome) error {
	primaryID, err := entityID(outcome.Primary)
	if err != nil {
		return err
	}

	mergedIDs := make([]string, 0, len(outcome.MergedFrom))
	for _, m := range outcome.MergedFrom {
		id, err := entityID(m)
		if err != nil {
			return err
		}
		mergedIDs = append(mergedIDs, id)
	}

	mergedData, err := json.Marshal(outcome.MergedData)
	if err != nil {
		return fmt.Errorf("serialize merged data: %w", err)
	}

	table, err := tableFor(entityType)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin merge tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET merged_data = $2, updated_at = NOW() WHERE id = $1`, table),
		primaryID, mergedData,
	); err != nil {
		return fmt.Errorf("update primary %s: %w", table, err)
	}

	if len(mergedIDs) > 0 {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET merged_into = $1, updated_at = NOW() WHERE id = ANY($2)`, table),
			primaryID, pq.Array(mergedIDs),
		); err != nil {
			return fmt.Errorf("mark merged %s rows: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit merge tx: %w", err)
	}

	s.logger.Info("merge persisted", map[string]interface{}{
		"entityType": string(entityType),
		"primaryId":  primaryID,
		"mergedIds":  mergedIDs,
	})
	return nil
}

// RecordReviewDecision appends an audit row for a resolved review item.
func (s *EntityStore) RecordReviewDecision(ctx context.Context, itemID string, reviewType models.ReviewType, approved bool, decidedBy string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO review_decisions (review_item_id, review_type, approved, decided_by, decided_at)
		 VALUES ($1, $2, $3, $4, NOW())`,
		itemID, string(reviewType), approved, decidedBy,
	)
	if err != nil {
		return fmt.Errorf("record review decision: %w", err)
	}
	return nil
}

func tableFor(entityType models.EntityType) (string, error) {
	switch entityType {
	case models.EntityTypeSpeakers:
		return "speakers", nil
	case models.EntityTypeCompanies:
		return "companies", nil
	case models.EntityTypeEvents:
		return "events", nil
	}
	return "", fmt.Errorf("unknown entity type %q", entityType)
}

// entityID extracts the id from any of the three entity types. Merge results
// carry entities as interface{} values, so persistence has to unpack them.
func entityID(v interface{}) (string, error) {
	switch e := v.(type) {
	case models.Speaker:
		return e.ID, nil
	case models.Company:
		return e.ID, nil
	case models.Event:
		return e.ID, nil
	}
	return "", fmt.Errorf("cannot extract id from %T", v)
}
