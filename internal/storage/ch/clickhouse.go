package ch

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"reportbot/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
)

type ClickHouseDB struct {
	conn clickhouse.Conn
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Initialize is a no-op - the reports table is managed via migrations
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	// Tables are managed via migrations (see migrations/ directory)
	// This method is kept for interface compatibility
	return nil
}

// SaveReport archives a submitted report
func (db *ClickHouseDB) SaveReport(ctx context.Context, record models.ReportRecord) error {
	err := db.conn.Exec(ctx, `
		INSERT INTO reports (user_id, category, chain, severity, completeness, attachment_count, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.UserID, record.Category, record.Chain, record.Severity,
		record.Completeness, int32(record.AttachmentCount), record.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// Stats returns aggregate counts over the archive
func (db *ClickHouseDB) Stats(ctx context.Context) (models.ReportStats, error) {
	stats := models.ReportStats{
		BySeverity: make(map[string]uint64),
		ByCategory: make(map[string]uint64),
	}

	row := db.conn.QueryRow(ctx, `SELECT count(), countIf(submitted_at > ?) FROM reports`,
		time.Now().Add(-24*time.Hour))
	if err := row.Scan(&stats.Total, &stats.Last24h); err != nil {
		return stats, fmt.Errorf("failed to count reports: %w", err)
	}

	rows, err := db.conn.Query(ctx, `SELECT severity, count() FROM reports GROUP BY severity`)
	if err != nil {
		return stats, fmt.Errorf("failed to group reports by severity: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var severity string
		var count uint64
		if err := rows.Scan(&severity, &count); err != nil {
			return stats, fmt.Errorf("failed to scan severity row: %w", err)
		}
		stats.BySeverity[severity] = count
	}

	catRows, err := db.conn.Query(ctx, `SELECT category, count() FROM reports GROUP BY category`)
	if err != nil {
		return stats, fmt.Errorf("failed to group reports by category: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var category string
		var count uint64
		if err := catRows.Scan(&category, &count); err != nil {
			return stats, fmt.Errorf("failed to scan category row: %w", err)
		}
		stats.ByCategory[category] = count
	}

	return stats, nil
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
