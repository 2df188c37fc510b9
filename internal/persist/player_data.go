package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kvatch/worldserver/internal/actor"
)

// PlayerData is the persisted shape of §3's "PlayerData (per connection)":
// static identity, per-class levels/XP, inventory, unlock bitmasks,
// conditions, position/rotation/zone, and a snapshot of any in-progress
// event stack. The in-memory Inventory/Event types used while a player is
// connected live in package world; this is their storage-row projection.
type PlayerData struct {
	ContentID        actor.ContentId
	AccountID        actor.AccountId
	ServiceAccountID actor.ServiceAccountId
	Name             string
	HomeWorld        uint16

	ZoneID   uint16
	PosX     float32
	PosY     float32
	PosZ     float32
	Rotation float32

	GMRank uint8
	Gil    int64

	ClassLevels     map[string]uint8
	ClassExp        map[string]uint32
	CurrentClassJob uint8

	InventoryJSON json.RawMessage

	UnlockedAetherytes []byte
	UnlockedQuests     []byte
	UnlockedMounts     []byte
	UnlockedMinions    []byte

	Conditions uint64
	EventStack json.RawMessage

	UpdatedAt time.Time
}

// WorldDatabase is the persistence facade the World Core and Script Host
// are built against (§4.6). The concrete implementation wraps a pgx pool;
// callers depend on this interface, not *PlayerDataRepo, so a test double
// can stand in without a live Postgres instance.
type WorldDatabase interface {
	FindPlayerData(ctx context.Context, contentID actor.ContentId) (*PlayerData, error)
	CommitPlayerData(ctx context.Context, pd *PlayerData) error
	FindServiceAccount(ctx context.Context, contentID actor.ContentId) (actor.ServiceAccountId, error)
	FindCharaMake(ctx context.Context, contentID actor.ContentId) ([]byte, error)
	GetCharaMake(ctx context.Context, contentID actor.ContentId) ([]byte, error)
	GetCityState(ctx context.Context, contentID actor.ContentId) (uint16, error)
}

// PlayerDataRepo is the pgx-backed WorldDatabase implementation.
type PlayerDataRepo struct {
	db *DB
}

// NewPlayerDataRepo wraps an already-connected DB.
func NewPlayerDataRepo(db *DB) *PlayerDataRepo {
	return &PlayerDataRepo{db: db}
}

// FindPlayerData loads one character's persisted row (§4.6
// "find_player_data(actor_id, game_data) -> PlayerData"). game_data
// (the asset accessor used to re-derive class/level tables on load) is
// applied by the caller after this returns the raw row.
func (r *PlayerDataRepo) FindPlayerData(ctx context.Context, contentID actor.ContentId) (*PlayerData, error) {
	pd := &PlayerData{ContentID: contentID}
	var classLevels, classExp, inventory, eventStack []byte

	err := r.db.Pool.QueryRow(ctx,
		`SELECT account_id, service_account_id, name, home_world,
		        zone_id, pos_x, pos_y, pos_z, rotation,
		        gm_rank, gil,
		        class_levels, class_exp, current_class_job,
		        inventory,
		        unlocked_aetherytes, unlocked_quests, unlocked_mounts, unlocked_minions,
		        conditions, event_stack, updated_at
		 FROM player_data WHERE content_id = $1`, int64(contentID),
	).Scan(
		&pd.AccountID, &pd.ServiceAccountID, &pd.Name, &pd.HomeWorld,
		&pd.ZoneID, &pd.PosX, &pd.PosY, &pd.PosZ, &pd.Rotation,
		&pd.GMRank, &pd.Gil,
		&classLevels, &classExp, &pd.CurrentClassJob,
		&inventory,
		&pd.UnlockedAetherytes, &pd.UnlockedQuests, &pd.UnlockedMounts, &pd.UnlockedMinions,
		&pd.Conditions, &eventStack, &pd.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find player data %d: %w", contentID, err)
	}

	if err := json.Unmarshal(classLevels, &pd.ClassLevels); err != nil {
		return nil, fmt.Errorf("decode class_levels: %w", err)
	}
	if err := json.Unmarshal(classExp, &pd.ClassExp); err != nil {
		return nil, fmt.Errorf("decode class_exp: %w", err)
	}
	pd.InventoryJSON = inventory
	pd.EventStack = eventStack

	return pd, nil
}

// CommitPlayerData persists the authoritative snapshot, called on every
// logout (§4.6, §6 "Persisted state").
func (r *PlayerDataRepo) CommitPlayerData(ctx context.Context, pd *PlayerData) error {
	classLevels, err := json.Marshal(pd.ClassLevels)
	if err != nil {
		return fmt.Errorf("encode class_levels: %w", err)
	}
	classExp, err := json.Marshal(pd.ClassExp)
	if err != nil {
		return fmt.Errorf("encode class_exp: %w", err)
	}
	inventory := pd.InventoryJSON
	if inventory == nil {
		inventory = json.RawMessage("{}")
	}
	eventStack := pd.EventStack
	if eventStack == nil {
		eventStack = json.RawMessage("[]")
	}

	_, err = r.db.Pool.Exec(ctx,
		`INSERT INTO player_data (
			content_id, account_id, service_account_id, name, home_world,
			zone_id, pos_x, pos_y, pos_z, rotation,
			gm_rank, gil,
			class_levels, class_exp, current_class_job,
			inventory,
			unlocked_aetherytes, unlocked_quests, unlocked_mounts, unlocked_minions,
			conditions, event_stack, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22, now()
		)
		ON CONFLICT (content_id) DO UPDATE SET
			zone_id = EXCLUDED.zone_id,
			pos_x = EXCLUDED.pos_x, pos_y = EXCLUDED.pos_y, pos_z = EXCLUDED.pos_z,
			rotation = EXCLUDED.rotation,
			gm_rank = EXCLUDED.gm_rank, gil = EXCLUDED.gil,
			class_levels = EXCLUDED.class_levels, class_exp = EXCLUDED.class_exp,
			current_class_job = EXCLUDED.current_class_job,
			inventory = EXCLUDED.inventory,
			unlocked_aetherytes = EXCLUDED.unlocked_aetherytes,
			unlocked_quests = EXCLUDED.unlocked_quests,
			unlocked_mounts = EXCLUDED.unlocked_mounts,
			unlocked_minions = EXCLUDED.unlocked_minions,
			conditions = EXCLUDED.conditions,
			event_stack = EXCLUDED.event_stack,
			updated_at = now()`,
		int64(pd.ContentID), int64(pd.AccountID), int64(pd.ServiceAccountID), pd.Name, pd.HomeWorld,
		pd.ZoneID, pd.PosX, pd.PosY, pd.PosZ, pd.Rotation,
		pd.GMRank, pd.Gil,
		classLevels, classExp, pd.CurrentClassJob,
		inventory,
		pd.UnlockedAetherytes, pd.UnlockedQuests, pd.UnlockedMounts, pd.UnlockedMinions,
		pd.Conditions, eventStack,
	)
	if err != nil {
		return fmt.Errorf("commit player data %d: %w", pd.ContentID, err)
	}
	return nil
}

// FindServiceAccount resolves a content id to its service account (§4.6).
func (r *PlayerDataRepo) FindServiceAccount(ctx context.Context, contentID actor.ContentId) (actor.ServiceAccountId, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx,
		`SELECT service_account_id FROM service_account WHERE content_id = $1`, int64(contentID),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("find service account %d: %w", contentID, err)
	}
	return actor.ServiceAccountId(id), nil
}

// FindCharaMake and GetCharaMake both read the character-creation payload;
// the spec names them as two distinct WorldDatabase operations (§4.6)
// without distinguishing semantics, so both are served from the same row.
func (r *PlayerDataRepo) FindCharaMake(ctx context.Context, contentID actor.ContentId) ([]byte, error) {
	return r.readCharaMake(ctx, contentID)
}

func (r *PlayerDataRepo) GetCharaMake(ctx context.Context, contentID actor.ContentId) ([]byte, error) {
	return r.readCharaMake(ctx, contentID)
}

func (r *PlayerDataRepo) readCharaMake(ctx context.Context, contentID actor.ContentId) ([]byte, error) {
	var payload []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT payload FROM chara_make WHERE content_id = $1`, int64(contentID),
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read chara_make %d: %w", contentID, err)
	}
	return payload, nil
}

// GetCityState returns the starting-city id recorded at character
// creation (§4.6).
func (r *PlayerDataRepo) GetCityState(ctx context.Context, contentID actor.ContentId) (uint16, error) {
	var cityID int16
	err := r.db.Pool.QueryRow(ctx,
		`SELECT city_id FROM city_state WHERE content_id = $1`, int64(contentID),
	).Scan(&cityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get city state %d: %w", contentID, err)
	}
	return uint16(cityID), nil
}

var _ WorldDatabase = (*PlayerDataRepo)(nil)
