// Package config loads simulation scenarios from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/KoroshM/Multithreading-Barbershop-Exercise/shop"
)

// Scenario describes one simulation. Durations are kept in microseconds in
// the file format because that is the resolution the service delay is
// usually given in.
type Scenario struct {
	Barbers         int `yaml:"barbers"`
	WaitingSeats    int `yaml:"waiting_seats"`
	Customers       int `yaml:"customers"`
	ServiceTimeUs   int `yaml:"service_time_us"`
	ArrivalJitterUs int `yaml:"arrival_jitter_us"`
}

// Default returns the scenario used when nothing else is specified: the
// shop's default sizes, ten customers, and the arrival jitter the original
// driver used.
func Default() Scenario {
	return Scenario{
		Barbers:         shop.DefaultBarbers,
		WaitingSeats:    shop.DefaultWaitingSeats,
		Customers:       10,
		ServiceTimeUs:   1000,
		ArrivalJitterUs: 1000,
	}
}

// Load reads a scenario file. Fields absent from the file keep their
// default values.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	sc := Default()
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parsing %s: %v", path, err)
	}
	return sc, nil
}

// Validate applies the same rules the original command line did: every
// parameter must be positive except the waiting seats and the jitter, which
// may be zero.
func (sc Scenario) Validate() error {
	if sc.Barbers < 1 {
		return fmt.Errorf("invalid number of barbers %d: must be greater than 0", sc.Barbers)
	}
	if sc.WaitingSeats < 0 {
		return fmt.Errorf("invalid number of waiting seats %d: must be greater than or equal to 0", sc.WaitingSeats)
	}
	if sc.Customers < 1 {
		return fmt.Errorf("invalid number of customers %d: must be greater than 0", sc.Customers)
	}
	if sc.ServiceTimeUs < 1 {
		return fmt.Errorf("invalid service time %d: must be greater than 0", sc.ServiceTimeUs)
	}
	if sc.ArrivalJitterUs < 0 {
		return fmt.Errorf("invalid arrival jitter %d: must be greater than or equal to 0", sc.ArrivalJitterUs)
	}
	return nil
}

func (sc Scenario) ServiceTime() time.Duration {
	return time.Duration(sc.ServiceTimeUs) * time.Microsecond
}

func (sc Scenario) ArrivalJitter() time.Duration {
	return time.Duration(sc.ArrivalJitterUs) * time.Microsecond
}
