package model

// SanctionType describes what a sanction restricts.
type SanctionType int

const (
	SanctionTradeEmbargo SanctionType = iota
	SanctionFinancial
	SanctionResource
	SanctionTechnology
)

func (t SanctionType) String() string {
	switch t {
	case SanctionTradeEmbargo:
		return "trade_embargo"
	case SanctionFinancial:
		return "financial"
	case SanctionResource:
		return "resource"
	case SanctionTechnology:
		return "technology"
	}
	return "unknown"
}

// SanctionSeverity is the tier of a sanction. Each tier fixes the trade
// reduction, cost multiplier, opinion penalty and monthly damage.
type SanctionSeverity int

const (
	SeverityMild SanctionSeverity = iota
	SeverityModerate
	SeveritySevere
	SeverityTotal
)

func (s SanctionSeverity) String() string {
	switch s {
	case SeverityMild:
		return "MILD"
	case SeverityModerate:
		return "MODERATE"
	case SeveritySevere:
		return "SEVERE"
	case SeverityTotal:
		return "TOTAL"
	}
	return "UNKNOWN"
}

// AgreementType describes the depth of a trade agreement.
type AgreementType int

const (
	AgreementPreferential AgreementType = iota
	AgreementFreeTrade
	AgreementCustomsUnion
	AgreementEconomicUnion
)

func (t AgreementType) String() string {
	switch t {
	case AgreementPreferential:
		return "preferential"
	case AgreementFreeTrade:
		return "free_trade"
	case AgreementCustomsUnion:
		return "customs_union"
	case AgreementEconomicUnion:
		return "economic_union"
	}
	return "unknown"
}
