package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/louisbranch/hippycrown/internal/platform/errors"
	"github.com/louisbranch/hippycrown/internal/services/crown/domain/crown"
)

// CreateEngine stores the constructor arguments of a new engine.
func (s *Store) CreateEngine(ctx context.Context, genesis crown.Genesis) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if err := genesis.Validate(); err != nil {
		return fmt.Errorf("invalid genesis: %w", err)
	}
	if genesis.CreatedAt.IsZero() {
		genesis.CreatedAt = time.Now().UTC()
	}

	// Fees are stored as decimal text so the full uint64 range survives.
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO engines (id, admin, sentinel, default_fee, created_at) VALUES (?, ?, ?, ?, ?)`,
		genesis.EngineID,
		string(genesis.Admin),
		string(genesis.Sentinel),
		strconv.FormatUint(genesis.DefaultFee, 10),
		toNanos(genesis.CreatedAt),
	)
	if err != nil {
		if isConstraintError(err) {
			return apperrors.WrapWithMetadata(apperrors.CodeAlreadyExists,
				fmt.Sprintf("engine %s already exists", genesis.EngineID),
				map[string]string{"EngineID": genesis.EngineID}, err)
		}
		return fmt.Errorf("insert engine: %w", err)
	}
	return nil
}

// GetEngine returns the stored genesis for engineID.
func (s *Store) GetEngine(ctx context.Context, engineID string) (crown.Genesis, error) {
	if err := s.ready(ctx); err != nil {
		return crown.Genesis{}, err
	}
	engineID = strings.TrimSpace(engineID)
	if engineID == "" {
		return crown.Genesis{}, fmt.Errorf("engine id is required")
	}

	var (
		admin, sentinel, fee string
		createdAt            int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT admin, sentinel, default_fee, created_at FROM engines WHERE id = ?`,
		engineID,
	).Scan(&admin, &sentinel, &fee, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return crown.Genesis{}, apperrors.WrapWithMetadata(apperrors.CodeNotFound,
				fmt.Sprintf("engine %s not found", engineID),
				map[string]string{"EngineID": engineID}, err)
		}
		return crown.Genesis{}, fmt.Errorf("get engine: %w", err)
	}
	defaultFee, err := strconv.ParseUint(fee, 10, 64)
	if err != nil {
		return crown.Genesis{}, fmt.Errorf("parse default fee: %w", err)
	}
	return crown.Genesis{
		EngineID:   engineID,
		Admin:      crown.Identity(admin),
		Sentinel:   crown.Identity(sentinel),
		DefaultFee: defaultFee,
		CreatedAt:  fromNanos(createdAt),
	}, nil
}
