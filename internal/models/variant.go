package models

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// OfferKind tags the shape an offer arrived in. Upstream stores offers either
// as free text or as a structured discount descriptor, so we resolve the
// duck-typed value into a tagged union once, at decode time.
type OfferKind string

const (
	OfferNone       OfferKind = "none"
	OfferText       OfferKind = "text"
	OfferStructured OfferKind = "structured"
)

// Offer describes a variant's promotional offer.
type Offer struct {
	Kind            OfferKind `json:"kind"`
	Label           string    `json:"label,omitempty"`
	DiscountPercent float64   `json:"discount_percent,omitempty"`
	MinQuantity     int       `json:"min_quantity,omitempty"`
}

// Variant is a purchasable configuration of an ad (pack size, unit count).
// Variants are derived on read from the opaque encoded strings stored inside
// the ad record; they are never persisted independently.
type Variant struct {
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	MinQuantity int     `json:"min_quantity"`
	Offer       Offer   `json:"offer"`
	Slug        string  `json:"slug"`
}

// rawVariant mirrors the encoded JSON payload. Field aliases (name/units) and
// the loose price fields reflect what advertisers have actually stored over
// time.
type rawVariant struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	MinQuantity *int            `json:"minQuantity"`
	Units       *int            `json:"units"`
	Price       *float64        `json:"price"`
	UnitPrice   *float64        `json:"unit_price"`
	TotalPrice  *float64        `json:"total_price"`
	PriceRaw    json.RawMessage `json:"price_raw"`
	Offer       json.RawMessage `json:"offer"`
}

// DecodeVariant decodes a single Base64-encoded UTF-8 JSON variant string and
// normalizes its fields.
func DecodeVariant(encoded string) (Variant, error) {
	payload, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		// Some historical entries were encoded without padding.
		payload, err = base64.RawStdEncoding.DecodeString(strings.TrimSpace(encoded))
		if err != nil {
			return Variant{}, fmt.Errorf("invalid base64: %w", err)
		}
	}

	// Lossy fallback for entries whose bytes are not valid UTF-8. The decode
	// must still succeed; replacement runes only affect display text.
	if !utf8.Valid(payload) {
		payload = []byte(strings.ToValidUTF8(string(payload), "�"))
	}

	var raw rawVariant
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Variant{}, fmt.Errorf("invalid variant json: %w", err)
	}

	return raw.normalize(), nil
}

// DecodeVariants decodes each entry independently. Malformed entries are
// skipped and reported back so the caller can log them; a single bad entry no
// longer discards the whole set.
func DecodeVariants(encoded []string) ([]Variant, []error) {
	var (
		variants []Variant
		errs     []error
	)
	for i, entry := range encoded {
		v, err := DecodeVariant(entry)
		if err != nil {
			errs = append(errs, fmt.Errorf("variant %d: %w", i, err))
			continue
		}
		variants = append(variants, v)
	}
	return variants, errs
}

// normalize resolves aliases, the price fallback chain and the offer shape.
func (raw *rawVariant) normalize() Variant {
	v := Variant{
		Type:        raw.Type,
		MinQuantity: 1,
	}
	if v.Type == "" {
		v.Type = raw.Name
	}

	if raw.MinQuantity != nil && *raw.MinQuantity > 0 {
		v.MinQuantity = *raw.MinQuantity
	} else if raw.Units != nil && *raw.Units > 0 {
		v.MinQuantity = *raw.Units
	}

	v.Price = raw.resolvePrice(v.MinQuantity)
	v.Offer = resolveOffer(raw.Offer)
	v.Slug = Slugify(v.Type)

	return v
}

// resolvePrice applies the fallback chain: explicit unit price, then total
// price divided by minimum quantity, then the raw price field when numeric,
// then zero.
func (raw *rawVariant) resolvePrice(minQuantity int) float64 {
	switch {
	case raw.Price != nil:
		return *raw.Price
	case raw.UnitPrice != nil:
		return *raw.UnitPrice
	case raw.TotalPrice != nil && minQuantity > 0:
		return *raw.TotalPrice / float64(minQuantity)
	}

	if len(raw.PriceRaw) > 0 {
		var n float64
		if err := json.Unmarshal(raw.PriceRaw, &n); err == nil {
			return n
		}
		var s string
		if err := json.Unmarshal(raw.PriceRaw, &s); err == nil {
			if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
				return n
			}
		}
	}

	return 0
}

// structuredOffer mirrors the object form an offer can arrive in.
type structuredOffer struct {
	Label           string  `json:"label"`
	DiscountPercent float64 `json:"discountPercent"`
	MinQuantity     int     `json:"minQuantity"`
}

// resolveOffer folds the string-or-object offer value into a tagged union.
func resolveOffer(raw json.RawMessage) Offer {
	if len(raw) == 0 || string(raw) == "null" {
		return Offer{Kind: OfferNone}
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if text == "" {
			return Offer{Kind: OfferNone}
		}
		return Offer{Kind: OfferText, Label: text}
	}

	var structured structuredOffer
	if err := json.Unmarshal(raw, &structured); err == nil && structured.Label != "" {
		return Offer{
			Kind:            OfferStructured,
			Label:           structured.Label,
			DiscountPercent: structured.DiscountPercent,
			MinQuantity:     structured.MinQuantity,
		}
	}

	return Offer{Kind: OfferNone}
}

var (
	slugWhitespace = regexp.MustCompile(`\s+`)
	slugInvalid    = regexp.MustCompile(`[^a-z0-9_-]`)
	slugDashes     = regexp.MustCompile(`-{2,}`)
)

// Slugify derives a URL-safe slug from a variant type: lowercase, whitespace
// collapsed to hyphens, non-word characters stripped, repeated hyphens
// collapsed, leading/trailing hyphens trimmed. Idempotent.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Selection is the outcome of resolving a route slug against a decoded
// variant set.
type Selection struct {
	Variant  *Variant `json:"variant,omitempty"`
	Quantity int      `json:"quantity,omitempty"`
	// RedirectSlug is set when the route carried no slug but variants exist:
	// the canonical URL should include the first variant's slug.
	RedirectSlug string `json:"redirect_slug,omitempty"`
}

// ResolveSelection matches an optional route slug against the variant set.
// No slug with variants present resolves to the first variant and requests a
// canonical redirect. A slug that matches nothing leaves the selection unset,
// matching the upstream behavior (the base ad is shown, no redirect, no 404).
func ResolveSelection(variants []Variant, slug string) Selection {
	if len(variants) == 0 {
		return Selection{}
	}

	if slug == "" {
		first := variants[0]
		return Selection{
			Variant:      &first,
			Quantity:     first.MinQuantity,
			RedirectSlug: first.Slug,
		}
	}

	for i := range variants {
		if variants[i].Slug == slug {
			v := variants[i]
			return Selection{Variant: &v, Quantity: v.MinQuantity}
		}
	}

	return Selection{}
}
