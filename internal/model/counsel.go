package model

// FactorScore is one weighted component of an advisor counsel.
type FactorScore struct {
	Name       string
	RawScore   float64
	Weight     float64
	Weighted   float64
	Commentary string
}

// CounselTier maps a total score to a recommended stance.
type CounselTier struct {
	Label      string
	Aggression float64 // 0 = avoid entirely, 1 = fully committed
}

// WarCounsel is the advisor's economic assessment of declaring war.
type WarCounsel struct {
	Realm      EntityID
	Target     EntityID
	Factors    []FactorScore
	TotalScore float64
	Tier       CounselTier
	Blocked    bool // hard veto: war would wreck the economy
	WarningMsg string
}
