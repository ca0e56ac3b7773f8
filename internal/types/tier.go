package types

// VideoTier is the discrete percentile bucket a video occupies within one
// category pool. Ordered by descending selectivity.
type VideoTier string

const (
	TierPlatinum VideoTier = "PLATINUM"
	TierGold     VideoTier = "GOLD"
	TierSilver   VideoTier = "SILVER"
	TierBronze   VideoTier = "BRONZE"
)

// TiersDescending lists every tier from most to least selective.
var TiersDescending = []VideoTier{TierPlatinum, TierGold, TierSilver, TierBronze}

// NextTier returns the tier above t, or "" when t is already PLATINUM.
func NextTier(t VideoTier) VideoTier {
	switch t {
	case TierBronze:
		return TierSilver
	case TierSilver:
		return TierGold
	case TierGold:
		return TierPlatinum
	default:
		return ""
	}
}
