package world

import "Imperium/internal/model"

// SampleSource returns a small fixed world for development and testing.
type SampleSource struct{}

func (SampleSource) Name() string { return "sample" }

func (SampleSource) Load() (*Store, error) {
	s := NewStore()

	type seed struct {
		id         model.EntityID
		name       string
		population float64
		happiness  float64
		wealth     float64
		literacy   float64
		treasury   int64
		routes     []model.EntityID
	}
	seeds := []seed{
		{1, "Aquileia", 120000, 0.55, 42, 0.35, 25000, []model.EntityID{2, 3}},
		{2, "Borvania", 80000, 0.50, 30, 0.28, 12000, []model.EntityID{1}},
		{3, "Castellum", 200000, 0.60, 55, 0.45, 60000, []model.EntityID{1, 4}},
		{4, "Drusa", 45000, 0.45, 22, 0.20, 5000, []model.EntityID{3}},
	}

	for _, sd := range seeds {
		s.AddRealm(sd.id, sd.name)
		pop := s.Population.Get(sd.id)
		pop.TotalPopulation = sd.population
		pop.AverageHappiness = sd.happiness
		pop.AverageWealth = sd.wealth
		pop.AverageLiteracy = sd.literacy
		s.Economy.Get(sd.id).Treasury = sd.treasury

		res := s.Research.Get(sd.id)
		res.Implemented[model.TechAgriculture] = 1
		res.Universities = 1
		res.Libraries = 2
		res.Workshops = 1
		res.Scholars = 5
	}

	for _, sd := range seeds {
		rec := s.Trade.Get(sd.id)
		for i, to := range sd.routes {
			route := TradeRoute{
				ID:     "sample-" + s.Name(sd.id) + "-" + s.Name(to),
				From:   sd.id,
				To:     to,
				Volume: 50 + float64(i)*25,
				Active: true,
			}
			rec.Update(func(routes []TradeRoute) []TradeRoute {
				return append(routes, route)
			})
		}
		rec.MerchantActivity = 100
	}

	return s, nil
}
