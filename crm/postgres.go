package crm

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Open connects to Postgres with the given DSN.
func Open(dsn string) (*bun.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("database dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New()), nil
}

func MustOpen(dsn string) *bun.DB {
	db, err := Open(dsn)
	if err != nil {
		panic(err)
	}
	return db
}

// PGStore implements Store on a bun Postgres handle. Each method is a single
// implicit transaction.
type PGStore struct {
	db *bun.DB
}

func NewPGStore(db *bun.DB) *PGStore {
	return &PGStore{db: db}
}

// CreateTables bootstraps the schema. Idempotent.
func (s *PGStore) CreateTables(ctx context.Context) error {
	models := []any{
		(*HCP)(nil),
		(*Interaction)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

func (s *PGStore) GetHCP(ctx context.Context, id int64) (*HCP, error) {
	hcp := new(HCP)
	err := s.db.NewSelect().Model(hcp).Where("h.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHCPNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select hcp: %w", err)
	}
	return hcp, nil
}

func (s *PGStore) ListHCPs(ctx context.Context) ([]HCP, error) {
	var hcps []HCP
	if err := s.db.NewSelect().Model(&hcps).Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list hcps: %w", err)
	}
	return hcps, nil
}

func (s *PGStore) CreateHCP(ctx context.Context, hcp *HCP) error {
	if _, err := s.db.NewInsert().Model(hcp).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("insert hcp: %w", err)
	}
	return nil
}

func (s *PGStore) CountHCPs(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*HCP)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count hcps: %w", err)
	}
	return count, nil
}

func (s *PGStore) ListRecentInteractions(ctx context.Context, hcpID int64, limit int) ([]Interaction, error) {
	var interactions []Interaction
	err := s.db.NewSelect().
		Model(&interactions).
		Where("i.hcp_id = ?", hcpID).
		OrderExpr("i.interaction_date DESC NULLS LAST").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recent interactions: %w", err)
	}
	return interactions, nil
}

func (s *PGStore) ListInteractions(ctx context.Context, hcpID *int64) ([]Interaction, error) {
	var interactions []Interaction
	q := s.db.NewSelect().Model(&interactions)
	if hcpID != nil {
		q = q.Where("i.hcp_id = ?", *hcpID)
	}
	if err := q.OrderExpr("i.interaction_date DESC NULLS LAST").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return interactions, nil
}

func (s *PGStore) CreateInteraction(ctx context.Context, in *Interaction) error {
	if in.Source == "" {
		in.Source = SourceForm
	}
	if _, err := s.db.NewInsert().Model(in).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

func (s *PGStore) GetInteraction(ctx context.Context, id int64) (*Interaction, error) {
	in := new(Interaction)
	err := s.db.NewSelect().Model(in).Where("i.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInteractionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select interaction: %w", err)
	}
	return in, nil
}

func (s *PGStore) UpdateInteraction(ctx context.Context, id int64, patch InteractionPatch) (*Interaction, error) {
	in, err := s.GetInteraction(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(in)
	in.UpdatedAt = time.Now().UTC()

	if _, err := s.db.NewUpdate().Model(in).WherePK().Exec(ctx); err != nil {
		return nil, fmt.Errorf("update interaction: %w", err)
	}
	return in, nil
}
