package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Default level counts provision for a fully bonded linear chain: the I
// role carries the lead particle of bonds, angles, torsions and 1-4
// pairs, so it needs four levels; the J role absorbs the vertex of both
// bonds and angles plus torsion interiors.
const (
	DefaultLevelsI        = 4
	DefaultLevelsJ        = 5
	DefaultLevelsK        = 4
	DefaultLevelsL        = 2
	DefaultDuplication    = 4
	DefaultMinChunk       = 64
	DefaultLJ14Scale      = 0.5
	DefaultCoulomb14Scale = 0.833333
)

// Levels holds the provisioned inverse map level count per role. Each
// value bounds how many terms may reference a single particle in that
// role; setup fails if the topology exceeds it.
type Levels struct {
	I int `yaml:"i"`
	J int `yaml:"j"`
	K int `yaml:"k"`
	L int `yaml:"l"`
}

type Config struct {
	Levels         Levels  `yaml:"levels"`
	Duplication    int     `yaml:"duplication"`
	MinChunk       int     `yaml:"min_chunk"`
	LJ14Scale      float64 `yaml:"lj14_scale"`
	Coulomb14Scale float64 `yaml:"coulomb14_scale"`
}

func DefaultConfig() *Config {
	return &Config{
		Levels: Levels{
			I: DefaultLevelsI,
			J: DefaultLevelsJ,
			K: DefaultLevelsK,
			L: DefaultLevelsL,
		},
		Duplication:    DefaultDuplication,
		MinChunk:       DefaultMinChunk,
		LJ14Scale:      DefaultLJ14Scale,
		Coulomb14Scale: DefaultCoulomb14Scale,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
