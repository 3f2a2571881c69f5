package advisor

import (
	"fmt"

	"Imperium/internal/model"
)

// scoreTradeValue scores the bilateral trade that war would destroy.
// Weight: 0.30
func scoreTradeValue(tradeValue float64) model.FactorScore {
	var score float64
	switch {
	case tradeValue <= 10:
		score = 2.0
	case tradeValue <= 50:
		score = 1.5
	case tradeValue <= 100:
		score = 1.0
	case tradeValue <= 150:
		score = 0.5
	case tradeValue <= 200:
		score = 0
	case tradeValue <= 300:
		score = -1.0
	case tradeValue <= 500:
		score = -1.5
	default:
		score = -2.0
	}

	return model.FactorScore{
		Name:       "trade at stake",
		RawScore:   score,
		Weight:     0.30,
		Weighted:   score * 0.30,
		Commentary: fmt.Sprintf("value=%.0f", tradeValue),
	}
}

// scoreDependency scores how exposed the realm is to the target's economy.
// Weight: 0.25
func scoreDependency(dependency float64) model.FactorScore {
	var score float64
	switch {
	case dependency <= 0.05:
		score = 2.0
	case dependency <= 0.10:
		score = 1.5
	case dependency <= 0.20:
		score = 1.0
	case dependency <= 0.30:
		score = 0.5
	case dependency <= 0.40:
		score = 0
	case dependency <= 0.50:
		score = -1.0
	case dependency <= 0.70:
		score = -1.5
	default:
		score = -2.0
	}

	return model.FactorScore{
		Name:       "dependency exposure",
		RawScore:   score,
		Weight:     0.25,
		Weighted:   score * 0.25,
		Commentary: fmt.Sprintf("dependency=%.2f", dependency),
	}
}

// scoreLeverage scores the asymmetry of dependence: positive leverage means
// the target needs us more than we need them.
// Weight: 0.20
func scoreLeverage(leverage float64) model.FactorScore {
	var score float64
	switch {
	case leverage >= 0.4:
		score = 2.0
	case leverage >= 0.2:
		score = 1.5
	case leverage >= 0.1:
		score = 1.0
	case leverage >= 0:
		score = 0.5
	case leverage >= -0.1:
		score = -0.5
	case leverage >= -0.2:
		score = -1.0
	default:
		score = -2.0
	}

	return model.FactorScore{
		Name:       "economic leverage",
		RawScore:   score,
		Weight:     0.20,
		Weighted:   score * 0.20,
		Commentary: fmt.Sprintf("leverage=%+.2f", leverage),
	}
}

// scoreWarChest scores the treasury against a year of projected war costs.
// Weight: 0.15
func scoreWarChest(balance, projectedYearCost int64) model.FactorScore {
	coverage := 0.0
	if projectedYearCost > 0 {
		coverage = float64(balance) / float64(projectedYearCost)
	}

	var score float64
	switch {
	case coverage >= 10:
		score = 2.0
	case coverage >= 5:
		score = 1.5
	case coverage >= 3:
		score = 1.0
	case coverage >= 2:
		score = 0.5
	case coverage >= 1:
		score = 0
	case coverage >= 0.5:
		score = -1.0
	default:
		score = -2.0
	}

	return model.FactorScore{
		Name:       "war chest",
		RawScore:   score,
		Weight:     0.15,
		Weighted:   score * 0.15,
		Commentary: fmt.Sprintf("coverage=%.1fx", coverage),
	}
}

// scoreSanctionExposure scores how sanctioned the realm already is; a realm
// under pressure cannot afford another front.
// Weight: 0.10
func scoreSanctionExposure(impact float64) model.FactorScore {
	var score float64
	switch {
	case impact == 0:
		score = 1.0
	case impact <= 0.25:
		score = 0
	case impact <= 0.50:
		score = -1.0
	default:
		score = -2.0
	}

	return model.FactorScore{
		Name:       "sanction exposure",
		RawScore:   score,
		Weight:     0.10,
		Weighted:   score * 0.10,
		Commentary: fmt.Sprintf("impact=%.2f", impact),
	}
}
