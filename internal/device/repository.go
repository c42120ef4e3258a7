package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for device persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// Insert persists a new device and assigns its ID and CreatedAt.
	Insert(ctx context.Context, d *Device) error

	// GetByID retrieves a device by its unique identifier.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetByID(ctx context.Context, id int64) (*Device, error)

	// List retrieves devices matching the filter. A zero filter returns
	// all devices. String filters match exactly, case-insensitively.
	List(ctx context.Context, f Filter) ([]Device, error)

	// Update rewrites the mutable fields of an existing device and stamps
	// UpdatedAt and LastSeenAt. Returns ErrDeviceNotFound if absent.
	Update(ctx context.Context, d *Device) error

	// Delete removes a device by ID.
	// Returns ErrDeviceNotFound if the device does not exist.
	Delete(ctx context.Context, id int64) error
}

// SQLiteRepository implements Repository using SQLite.
//
// Each statement commits atomically; the Manager relies on that boundary to
// sequence change notifications strictly after the committed write.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = "id, device_name, device_type, status, created_at, updated_at, last_seen_at"

// Insert persists a new device and assigns its system-generated ID.
func (r *SQLiteRepository) Insert(ctx context.Context, d *Device) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO devices (device_name, device_type, status, created_at, updated_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		d.Name,
		string(d.Type),
		string(d.Status),
		d.CreatedAt.Format(time.RFC3339),
		nullableTime(d.UpdatedAt),
		nullableTime(d.LastSeenAt),
	)
	if err != nil {
		return fmt.Errorf("inserting device: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading inserted device id: %w", err)
	}
	d.ID = id

	return nil
}

// GetByID retrieves a device by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}
	return d, nil
}

// List retrieves devices matching the filter.
//
// Filter values are lowercased before comparison; stored enum values are
// lowercase, so this gives exact-match, case-insensitive conjunction
// semantics. The (status, device_type) composite index accelerates the
// filtered forms.
func (r *SQLiteRepository) List(ctx context.Context, f Filter) ([]Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices`

	var conds []string
	var args []any
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, strings.ToLower(f.Status))
	}
	if f.Type != "" {
		conds = append(conds, "device_type = ?")
		args = append(args, strings.ToLower(f.Type))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	return r.queryDevices(ctx, query, args...)
}

// Update rewrites the mutable fields of an existing device.
func (r *SQLiteRepository) Update(ctx context.Context, d *Device) error {
	now := time.Now().UTC()

	query := `
		UPDATE devices
		SET device_name = ?, device_type = ?, status = ?, updated_at = ?, last_seen_at = ?
		WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query,
		d.Name,
		string(d.Type),
		string(d.Status),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
		d.ID,
	)
	if err != nil {
		return fmt.Errorf("updating device: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeviceNotFound
	}

	d.UpdatedAt = &now
	d.LastSeenAt = &now
	return nil
}

// Delete removes a device by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeviceNotFound
	}

	return nil
}

// queryDevices executes a query and returns a slice of devices.
func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}

	return devices, nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a row or rows result into a Device.
func scanDevice(scanner rowScanner) (*Device, error) {
	var d Device
	var deviceType, status string
	var createdAt string
	var updatedAt, lastSeenAt sql.NullString

	err := scanner.Scan(
		&d.ID,
		&d.Name,
		&deviceType,
		&status,
		&createdAt,
		&updatedAt,
		&lastSeenAt,
	)
	if err != nil {
		return nil, err
	}

	d.Type = Type(deviceType)
	d.Status = Status(status)

	var parseErr error
	d.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}

	if updatedAt.Valid {
		t, err := time.Parse(time.RFC3339, updatedAt.String)
		if err == nil {
			d.UpdatedAt = &t
		}
	}
	if lastSeenAt.Valid {
		t, err := time.Parse(time.RFC3339, lastSeenAt.String)
		if err == nil {
			d.LastSeenAt = &t
		}
	}

	return &d, nil
}

// nullableTime returns a sql.NullString for optional time pointers (as RFC3339 strings).
func nullableTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}
