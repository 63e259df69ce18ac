package bus

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

//go:embed seed/demo.yml
var demoSeed []byte

// Seed is the initial fleet and route catalog the tracker starts with
type Seed struct {
	Vehicles []Vehicle `yaml:"vehicles" validate:"dive"`
	Routes   []Route   `yaml:"routes" validate:"dive"`
}

// DemoSeed returns the built-in demonstration fleet and routes
func DemoSeed() (*Seed, error) {
	return ParseSeed(demoSeed)
}

// LoadSeedFile reads and validates a YAML seed file from the local file system
func LoadSeedFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file %s: %w", path, err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes YAML seed data and checks it before any of it is used
func ParseSeed(data []byte) (*Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("decoding seed: %w", err)
	}
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	return &seed, nil
}

// Validate checks field constraints on every vehicle and route and the cross record rules:
// unique ids, drivers only on active vehicles and strictly increasing stop sequences
func (s *Seed) Validate() error {
	v := validator.New()
	if err := v.Struct(s); err != nil {
		return fmt.Errorf("invalid seed: %w", err)
	}

	vehicleIds := make(map[string]bool)
	for _, vehicle := range s.Vehicles {
		if vehicleIds[vehicle.VehicleId] {
			return fmt.Errorf("invalid seed: duplicate vehicle id %s", vehicle.VehicleId)
		}
		vehicleIds[vehicle.VehicleId] = true
		if vehicle.Driver != nil && vehicle.Status != StatusActive {
			return fmt.Errorf("invalid seed: vehicle %s has a driver but status %s", vehicle.VehicleId,
				vehicle.Status)
		}
	}

	routeIds := make(map[string]bool)
	var errs []error
	for i := range s.Routes {
		route := &s.Routes[i]
		if routeIds[route.RouteId] {
			return fmt.Errorf("invalid seed: duplicate route id %s", route.RouteId)
		}
		routeIds[route.RouteId] = true
		if err := route.checkStopSequence(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid seed: %w", errors.Join(errs...))
	}
	return nil
}
