package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAd_IsExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name       string
		modifiedAt time.Time
		want       bool
	}{
		{name: "freshly modified", modifiedAt: now, want: false},
		{name: "inside the window", modifiedAt: now.Add(-29 * 24 * time.Hour), want: false},
		{name: "just past the window", modifiedAt: now.Add(-AdValidityWindow - time.Minute), want: true},
		{name: "long expired", modifiedAt: now.Add(-365 * 24 * time.Hour), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ad := Ad{ModifiedAt: tt.modifiedAt}
			assert.Equal(t, tt.want, ad.IsExpired(now))
		})
	}
}

func TestAd_HasVariants(t *testing.T) {
	assert.False(t, (&Ad{}).HasVariants())
	assert.True(t, (&Ad{EncodedVariants: []string{"e30="}}).HasVariants())
}

func TestAd_WireFieldNames(t *testing.T) {
	ad := Ad{
		ID:              "tamales-01",
		Title:           "Tamales caseros",
		Price:           40,
		Currency:        "MXN",
		Active:          true,
		AdvertiserPhone: "5215511112222",
		Category:        "comida",
		ResidentialID:   "res-pinos",
	}

	raw, err := json.Marshal(ad)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	// The front end depends on the Spanish wire names.
	assert.Equal(t, "Tamales caseros", decoded["titulo"])
	assert.Equal(t, 40.0, decoded["precio"])
	assert.Equal(t, "MXN", decoded["moneda"])
	assert.Equal(t, true, decoded["activo"])
	assert.Equal(t, "5215511112222", decoded["celular_anunciante"])
	assert.Equal(t, "comida", decoded["categoria"])
	assert.Equal(t, "res-pinos", decoded["residencial_id"])
}
