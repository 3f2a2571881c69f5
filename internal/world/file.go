package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"Imperium/internal/model"
)

// FileSource loads a world from a YAML scenario file.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource { return &FileSource{Path: path} }

func (f *FileSource) Name() string { return "file:" + f.Path }

type realmSpec struct {
	ID         uint32 `yaml:"id"`
	Name       string `yaml:"name"`
	Population struct {
		Total      float64 `yaml:"total"`
		Happiness  float64 `yaml:"happiness"`
		Wealth     float64 `yaml:"wealth"`
		Literacy   float64 `yaml:"literacy"`
		Employment float64 `yaml:"employment"`
	} `yaml:"population"`
	Economy struct {
		Treasury int64   `yaml:"treasury"`
		TaxRate  float64 `yaml:"tax_rate"`
	} `yaml:"economy"`
	Research struct {
		Implemented  map[string]int `yaml:"implemented"`
		Universities int            `yaml:"universities"`
		Libraries    int            `yaml:"libraries"`
		Workshops    int            `yaml:"workshops"`
		Scholars     int            `yaml:"scholars"`
	} `yaml:"research"`
	Routes []struct {
		To     uint32  `yaml:"to"`
		Volume float64 `yaml:"volume"`
	} `yaml:"routes"`
}

type worldSpec struct {
	Realms []realmSpec `yaml:"realms"`
}

// Load parses the scenario file into a fully populated store.
func (f *FileSource) Load() (*Store, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read world file: %w", err)
	}
	var spec worldSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse world file: %w", err)
	}
	if len(spec.Realms) == 0 {
		return nil, fmt.Errorf("world file %s defines no realms", f.Path)
	}

	s := NewStore()
	for _, r := range spec.Realms {
		if r.ID == 0 {
			return nil, fmt.Errorf("realm %q: id must be non-zero", r.Name)
		}
		id := model.EntityID(r.ID)
		s.AddRealm(id, r.Name)

		pop := s.Population.Get(id)
		if r.Population.Total > 0 {
			pop.TotalPopulation = r.Population.Total
		}
		if r.Population.Happiness > 0 {
			pop.AverageHappiness = r.Population.Happiness
		}
		if r.Population.Wealth > 0 {
			pop.AverageWealth = r.Population.Wealth
		}
		if r.Population.Literacy > 0 {
			pop.AverageLiteracy = r.Population.Literacy
		}
		if r.Population.Employment > 0 {
			pop.EmploymentRate = r.Population.Employment
		}

		econ := s.Economy.Get(id)
		if r.Economy.Treasury != 0 {
			econ.Treasury = r.Economy.Treasury
		}
		if r.Economy.TaxRate > 0 {
			econ.TaxRate = r.Economy.TaxRate
		}

		res := s.Research.Get(id)
		for cat, n := range r.Research.Implemented {
			res.Implemented[model.TechCategory(cat)] = n
		}
		res.Universities = r.Research.Universities
		res.Libraries = r.Research.Libraries
		res.Workshops = r.Research.Workshops
		res.Scholars = r.Research.Scholars
	}

	// Routes second pass so both endpoints exist.
	for _, r := range spec.Realms {
		from := model.EntityID(r.ID)
		rec := s.Trade.Get(from)
		for i, rt := range r.Routes {
			to := model.EntityID(rt.To)
			if s.Economy.Get(to) == nil {
				return nil, fmt.Errorf("realm %d: route to unknown realm %d", r.ID, rt.To)
			}
			route := TradeRoute{
				ID:     fmt.Sprintf("route-%d-%d-%d", r.ID, rt.To, i),
				From:   from,
				To:     to,
				Volume: rt.Volume,
				Active: true,
			}
			rec.Update(func(routes []TradeRoute) []TradeRoute {
				return append(routes, route)
			})
		}
	}

	return s, nil
}
