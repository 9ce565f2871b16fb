package db

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Fantasim/rainmaker/internal/models"
)

// InsertSubmission records a broadcast submission and returns its ID.
func (d *DB) InsertSubmission(s models.Submission) (int64, error) {
	slog.Debug("inserting submission",
		"network", s.NetworkName,
		"txHash", s.TxHash,
		"recipients", s.RecipientCount,
		"total", s.TotalValue,
	)

	result, err := d.conn.Exec(
		`INSERT INTO submissions (network_id, network_name, contract_address, token_address,
		        decimals, recipient_count, total_value, tx_hash, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.NetworkID,
		s.NetworkName,
		s.ContractAddress,
		s.TokenAddress,
		s.Decimals,
		s.RecipientCount,
		s.TotalValue,
		s.TxHash,
		s.Status,
	)
	if err != nil {
		return 0, fmt.Errorf("insert submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}

	slog.Info("submission recorded",
		"id", id,
		"network", s.NetworkName,
		"txHash", s.TxHash,
	)

	return id, nil
}

// UpdateSubmissionStatus marks a submission's terminal outcome.
func (d *DB) UpdateSubmissionStatus(id int64, status, failureReason string) error {
	slog.Debug("updating submission status",
		"id", id,
		"status", status,
	)

	_, err := d.conn.Exec(
		"UPDATE submissions SET status = ?, failure_reason = ?, completed_at = datetime('now') WHERE id = ?",
		status, failureReason, id,
	)
	if err != nil {
		return fmt.Errorf("update submission %d status: %w", id, err)
	}

	slog.Info("submission status updated",
		"id", id,
		"status", status,
	)

	return nil
}

// GetSubmission retrieves a submission by its ID.
func (d *DB) GetSubmission(id int64) (*models.Submission, error) {
	slog.Debug("getting submission", "id", id)

	var s models.Submission
	var completedAt sql.NullString

	err := d.conn.QueryRow(
		`SELECT id, network_id, network_name, contract_address, token_address,
		        decimals, recipient_count, total_value, tx_hash, status, failure_reason,
		        created_at, completed_at
		 FROM submissions WHERE id = ?`,
		id,
	).Scan(
		&s.ID, &s.NetworkID, &s.NetworkName, &s.ContractAddress, &s.TokenAddress,
		&s.Decimals, &s.RecipientCount, &s.TotalValue, &s.TxHash, &s.Status,
		&s.FailureReason, &s.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("get submission %d: %w", id, err)
	}

	if completedAt.Valid {
		s.CompletedAt = completedAt.String
	}

	return &s, nil
}

// ListSubmissions returns paginated submissions, optionally filtered by
// network id, newest first.
func (d *DB) ListSubmissions(networkID *int64, page, pageSize int) ([]models.Submission, int64, error) {
	offset := (page - 1) * pageSize

	slog.Debug("listing submissions",
		"networkID", networkID,
		"page", page,
		"pageSize", pageSize,
		"offset", offset,
	)

	where := "1=1"
	var args []interface{}
	if networkID != nil {
		where = "network_id = ?"
		args = append(args, *networkID)
	}

	var total int64
	countArgs := make([]interface{}, len(args))
	copy(countArgs, args)
	if err := d.conn.QueryRow("SELECT COUNT(*) FROM submissions WHERE "+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	queryArgs := append(args, pageSize, offset)
	rows, err := d.conn.Query(
		`SELECT id, network_id, network_name, contract_address, token_address,
		        decimals, recipient_count, total_value, tx_hash, status, failure_reason,
		        created_at, completed_at
		 FROM submissions WHERE `+where+` ORDER BY id DESC LIMIT ? OFFSET ?`,
		queryArgs...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.Submission
	for rows.Next() {
		var s models.Submission
		var completedAt sql.NullString

		if err := rows.Scan(
			&s.ID, &s.NetworkID, &s.NetworkName, &s.ContractAddress, &s.TokenAddress,
			&s.Decimals, &s.RecipientCount, &s.TotalValue, &s.TxHash, &s.Status,
			&s.FailureReason, &s.CreatedAt, &completedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan submission row: %w", err)
		}

		if completedAt.Valid {
			s.CompletedAt = completedAt.String
		}

		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate submission rows: %w", err)
	}

	slog.Debug("submissions listed",
		"total", total,
		"returned", len(subs),
	)

	return subs, total, nil
}
