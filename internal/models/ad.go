package models

import (
	"time"
)

// AdValidityWindow is how long a listing remains publishable after its last
// modification. Expiration is always computed from fecha_modificacion, never
// stored.
const AdValidityWindow = 30 * 24 * time.Hour

// Ad is a marketplace listing. JSON field names follow the wire format the
// front end already depends on, which is why several of them are Spanish.
type Ad struct {
	ID              string    `json:"id" db:"id"`
	Title           string    `json:"titulo" db:"titulo"`
	Description     string    `json:"descripcion" db:"descripcion"`
	Price           float64   `json:"precio" db:"precio"`
	Currency        string    `json:"moneda" db:"moneda"`
	Images          []string  `json:"imagenes" db:"imagenes"`
	OriginalImages  []string  `json:"imagenes_originales,omitempty" db:"imagenes_originales"`
	Active          bool      `json:"activo" db:"activo"`
	ModifiedAt      time.Time `json:"fecha_modificacion" db:"fecha_modificacion"`
	EncodedVariants []string  `json:"variants,omitempty" db:"variants"`
	AdvertiserPhone string    `json:"celular_anunciante" db:"celular_anunciante"`
	Category        string    `json:"categoria" db:"categoria"`
	ResidentialID   string    `json:"residencial_id" db:"residencial_id"`
}

// IsExpired reports whether the validity window has elapsed since the last
// modification.
func (a *Ad) IsExpired(now time.Time) bool {
	return now.After(a.ModifiedAt.Add(AdValidityWindow))
}

// HasVariants reports whether the listing carries encoded variants.
func (a *Ad) HasVariants() bool {
	return len(a.EncodedVariants) > 0
}

// AdvertiserInfo is the display identity resolved from the advertiser's
// phone number.
type AdvertiserInfo struct {
	Phone       string `json:"celular" db:"celular"`
	DisplayName string `json:"nombre" db:"nombre"`
	AvatarURL   string `json:"avatar_url,omitempty" db:"avatar_url"`
}

// Residential is a gated community acting as an audience-segmentation unit.
// Coordinates and radius drive the access-verification distance check.
type Residential struct {
	ID           string  `json:"id" db:"id"`
	Name         string  `json:"nombre" db:"nombre"`
	Latitude     float64 `json:"lat" db:"lat"`
	Longitude    float64 `json:"lng" db:"lng"`
	RadiusMeters float64 `json:"radio_metros" db:"radio_metros"`
}
