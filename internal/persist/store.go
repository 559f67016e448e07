package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/natis1/luna/internal/world"
)

// PlayerStore is the storage backend for player save data. Implementations
// are called only from worker goroutines, never from the game loop.
type PlayerStore interface {
	// Load reads a player's save data. Returns (nil, nil) when no save
	// exists: a first-ever login, not an error.
	Load(ctx context.Context, username string) (*PlayerData, error)
	// Save writes a player's save data, replacing any previous save.
	Save(ctx context.Context, username string, data *PlayerData) error
}

// PostgresStore persists players in a single jsonb-heavy table.
type PostgresStore struct {
	db *DB
}

func NewPostgresStore(db *DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Load(ctx context.Context, username string) (*PlayerData, error) {
	var (
		d          PlayerData
		appearance []byte
		settings   []byte
		inventory  []byte
		bank       []byte
		equipment  []byte
		skills     []byte
		friends    []byte
		ignores    []byte
		attributes []byte
	)
	err := s.db.Pool.QueryRow(ctx,
		`SELECT username, password, x, y, z, rights, last_ip,
		        appearance, settings, inventory, bank, equipment, skills,
		        friends, ignores, attributes, unban_date, unmute_date
		 FROM players WHERE username = $1`, username,
	).Scan(
		&d.Username, &d.Password, &d.Position.X, &d.Position.Y, &d.Position.Z,
		&d.Rights, &d.LastIP,
		&appearance, &settings, &inventory, &bank, &equipment, &skills,
		&friends, &ignores, &attributes, &d.UnbanDate, &d.UnmuteDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load player %s: %w", username, err)
	}

	for _, col := range []struct {
		raw []byte
		dst any
	}{
		{appearance, &d.Appearance},
		{settings, &d.Settings},
		{inventory, &d.Inventory},
		{bank, &d.Bank},
		{equipment, &d.Equipment},
		{skills, &d.Skills},
		{friends, &d.Friends},
		{ignores, &d.Ignores},
		{attributes, &d.Attributes},
	} {
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return nil, fmt.Errorf("decode player %s: %w", username, err)
		}
	}
	return &d, nil
}

func (s *PostgresStore) Save(ctx context.Context, username string, data *PlayerData) error {
	cols, err := encodeColumns(data)
	if err != nil {
		return fmt.Errorf("encode player %s: %w", username, err)
	}
	_, err = s.db.Pool.Exec(ctx,
		`INSERT INTO players (
			username, password, x, y, z, rights, last_ip,
			appearance, settings, inventory, bank, equipment, skills,
			friends, ignores, attributes, unban_date, unmute_date, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,now()
		)
		ON CONFLICT (username) DO UPDATE SET
			password = EXCLUDED.password,
			x = EXCLUDED.x, y = EXCLUDED.y, z = EXCLUDED.z,
			rights = EXCLUDED.rights, last_ip = EXCLUDED.last_ip,
			appearance = EXCLUDED.appearance, settings = EXCLUDED.settings,
			inventory = EXCLUDED.inventory, bank = EXCLUDED.bank,
			equipment = EXCLUDED.equipment, skills = EXCLUDED.skills,
			friends = EXCLUDED.friends, ignores = EXCLUDED.ignores,
			attributes = EXCLUDED.attributes,
			unban_date = EXCLUDED.unban_date, unmute_date = EXCLUDED.unmute_date,
			updated_at = now()`,
		username, data.Password,
		data.Position.X, data.Position.Y, data.Position.Z,
		data.Rights, data.LastIP,
		cols[0], cols[1], cols[2], cols[3], cols[4], cols[5], cols[6], cols[7], cols[8],
		data.UnbanDate, data.UnmuteDate,
	)
	if err != nil {
		return fmt.Errorf("save player %s: %w", username, err)
	}
	return nil
}

func encodeColumns(d *PlayerData) ([][]byte, error) {
	out := make([][]byte, 0, 9)
	for _, v := range []any{
		orEmpty(d.Appearance), d.Settings,
		orEmptyItems(d.Inventory), orEmptyItems(d.Bank), orEmptyItems(d.Equipment),
		orEmptySkills(d.Skills), orEmptyHashes(d.Friends), orEmptyHashes(d.Ignores),
		orEmptyAttrs(d.Attributes),
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return out, nil
}

// jsonb columns are NOT NULL; nil slices must encode as empty collections.

func orEmpty(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func orEmptyItems(v []world.IndexedItem) []world.IndexedItem {
	if v == nil {
		return []world.IndexedItem{}
	}
	return v
}

func orEmptySkills(v []world.Skill) []world.Skill {
	if v == nil {
		return []world.Skill{}
	}
	return v
}

func orEmptyHashes(v []uint64) []uint64 {
	if v == nil {
		return []uint64{}
	}
	return v
}

func orEmptyAttrs(v world.AttributeMap) world.AttributeMap {
	if v == nil {
		return world.AttributeMap{}
	}
	return v
}
