package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/waymark/domain"
	"github.com/louisbranch/waymark/storage"
)

// GetScalar returns the current scalar register value. A register that has
// never been written reads as zero.
func (s *Store) GetScalar(ctx context.Context) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var value int64
	err := s.sqlDB.QueryRowContext(ctx, `
	SELECT value FROM scalar_slot WHERE slot = 0
	`).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get scalar: %w", err)
	}
	return uint32(value), nil
}

// PutScalar overwrites the scalar register value.
func (s *Store) PutScalar(ctx context.Context, value uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return putScalarExec(ctx, s.sqlDB, value, time.Now().UTC())
}

func putScalarExec(ctx context.Context, execer sqlExecer, value uint32, updatedAt time.Time) error {
	_, err := execer.ExecContext(ctx, `
	INSERT INTO scalar_slot (slot, value, updated_at) VALUES (0, ?, ?)
	ON CONFLICT(slot) DO UPDATE SET
		value = excluded.value,
		updated_at = excluded.updated_at
	`,
		int64(value),
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("put scalar: %w", err)
	}
	return nil
}

// GetSnapshot returns the stored reserve snapshot for an account. Accounts
// without a snapshot return storage.ErrNotFound.
func (s *Store) GetSnapshot(ctx context.Context, account domain.AccountID) (domain.Balance, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(string(account)) == "" {
		return 0, fmt.Errorf("account is required")
	}

	var stored int64
	err := s.sqlDB.QueryRowContext(ctx, `
	SELECT balance FROM reserve_snapshots WHERE account_id = ?
	`, string(account)).Scan(&stored)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("get snapshot: %w", err)
	}
	return domain.Balance(stored), nil
}

// PutSnapshot overwrites the reserve snapshot for an account.
func (s *Store) PutSnapshot(ctx context.Context, account domain.AccountID, balance domain.Balance) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(string(account)) == "" {
		return fmt.Errorf("account is required")
	}
	return putSnapshotExec(ctx, s.sqlDB, account, balance, time.Now().UTC())
}

func putSnapshotExec(ctx context.Context, execer sqlExecer, account domain.AccountID, balance domain.Balance, updatedAt time.Time) error {
	// Balance columns store uint64 values as two's complement INTEGER.
	_, err := execer.ExecContext(ctx, `
	INSERT INTO reserve_snapshots (account_id, balance, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(account_id) DO UPDATE SET
		balance = excluded.balance,
		updated_at = excluded.updated_at
	`,
		string(account),
		int64(balance),
		toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}
