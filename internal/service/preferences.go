package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const preferencesVersion = "v1"

// Preferences are the per-owner defaults applied when a recipe is created
// without explicit pricing inputs.
type Preferences struct {
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	LabourRate   decimal.Decimal `json:"labour_rate"`
	Currency     string          `json:"currency,omitempty"`
}

// DefaultPreferences are used when an owner has none stored.
func DefaultPreferences() Preferences {
	return Preferences{
		ProfitMargin: decimal.NewFromInt(30),
		LabourRate:   decimal.NewFromInt(20),
	}
}

// PreferenceStore resolves an owner's preferences.
type PreferenceStore interface {
	Get(ctx context.Context, owner uuid.UUID) (Preferences, error)
	Set(ctx context.Context, owner uuid.UUID, p Preferences) error
}

// RedisPreferenceStore keeps preferences as JSON under
// user_preferences_<owner>_<version>. A nil client serves defaults only.
type RedisPreferenceStore struct {
	rdb      *redis.Client
	defaults Preferences
}

func NewPreferenceStore(rdb *redis.Client, defaults Preferences) *RedisPreferenceStore {
	return &RedisPreferenceStore{rdb: rdb, defaults: defaults}
}

func preferencesKey(owner uuid.UUID) string {
	return fmt.Sprintf("user_preferences_%s_%s", owner, preferencesVersion)
}

// Get never fails on a cache problem: a miss or an unreadable value falls
// back to the defaults.
func (s *RedisPreferenceStore) Get(ctx context.Context, owner uuid.UUID) (Preferences, error) {
	if s.rdb == nil {
		return s.defaults, nil
	}
	raw, err := s.rdb.Get(ctx, preferencesKey(owner)).Bytes()
	if errors.Is(err, redis.Nil) {
		return s.defaults, nil
	}
	if err != nil {
		log.Warn().Err(err).Str("owner_id", owner.String()).Msg("preferences: redis read failed, using defaults")
		return s.defaults, nil
	}
	return s.decode(owner, raw), nil
}

func (s *RedisPreferenceStore) decode(owner uuid.UUID, raw []byte) Preferences {
	var p Preferences
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Warn().Err(err).Str("owner_id", owner.String()).Msg("preferences: malformed value, using defaults")
		return s.defaults
	}
	if p.ProfitMargin.IsZero() {
		p.ProfitMargin = s.defaults.ProfitMargin
	}
	if p.LabourRate.IsZero() {
		p.LabourRate = s.defaults.LabourRate
	}
	if p.Currency == "" {
		p.Currency = s.defaults.Currency
	}
	return p
}

func (s *RedisPreferenceStore) Set(ctx context.Context, owner uuid.UUID, p Preferences) error {
	if p.ProfitMargin.IsNegative() {
		return invalid("profit_margin", "must not be negative")
	}
	if p.LabourRate.IsNegative() {
		return invalid("labour_rate", "must not be negative")
	}
	if s.rdb == nil {
		return errors.New("preferences: no redis client configured")
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, preferencesKey(owner), raw, 0).Err()
}
