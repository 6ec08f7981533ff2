package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonathanM-A/costmate/internal/testutil"
)

func TestPreferenceStore_NilClientServesDefaults(t *testing.T) {
	defaults := Preferences{ProfitMargin: testutil.Dec("25"), LabourRate: testutil.Dec("12.5"), Currency: "GHS"}
	store := NewPreferenceStore(nil, defaults)

	got, err := store.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, defaults, got)

	assert.Error(t, store.Set(context.Background(), uuid.New(), defaults))
}

func TestPreferenceStore_SetValidatesBeforeWriting(t *testing.T) {
	store := NewPreferenceStore(nil, DefaultPreferences())
	err := store.Set(context.Background(), uuid.New(), Preferences{ProfitMargin: testutil.Dec("-1")})
	assert.True(t, IsValidation(err))
}

func TestPreferenceStore_DecodeFillsMissingFields(t *testing.T) {
	store := NewPreferenceStore(nil, Preferences{ProfitMargin: testutil.Dec("30"), LabourRate: testutil.Dec("20"), Currency: "USD"})
	owner := uuid.New()

	p := store.decode(owner, []byte(`{"profit_margin":"45"}`))
	testutil.DecEqual(t, "45", p.ProfitMargin)
	testutil.DecEqual(t, "20", p.LabourRate)
	assert.Equal(t, "USD", p.Currency)

	p = store.decode(owner, []byte(`not json`))
	testutil.DecEqual(t, "30", p.ProfitMargin)
}

func TestPreferencesKey(t *testing.T) {
	owner := uuid.MustParse("7f1c8a52-3b0e-4c55-9a5e-0d6f3e2b1a90")
	assert.Equal(t, "user_preferences_7f1c8a52-3b0e-4c55-9a5e-0d6f3e2b1a90_v1", preferencesKey(owner))
}
