package dispatch

import (
	"fmt"
	"time"
)

// Config defines the dispatch engine parameters.
type Config struct {
	// TruckCapacityRC is the rollcage capacity of one flex truck.
	TruckCapacityRC int `json:"truck_capacity_rc"`
	// LoadingMinutes is the loading-plus-unloading overhead of a single
	// order trip. A combined trip adds half of it per extra order.
	LoadingMinutes int `json:"loading_minutes"`
	// BestCaseWeight and DelayWeight blend the two efficiency terms.
	BestCaseWeight float64 `json:"best_case_weight"`
	DelayWeight    float64 `json:"delay_weight"`
	// ShiftExtensionMinutes is the allowance past nominal shift end granted
	// to eligible external trucks.
	ShiftExtensionMinutes int `json:"shift_extension_minutes"`
}

// SetDefaults applies the standard fleet parameters.
func (c *Config) SetDefaults() {
	if c.TruckCapacityRC == 0 {
		c.TruckCapacityRC = 48
	}
	if c.LoadingMinutes == 0 {
		c.LoadingMinutes = 20
	}
	if c.BestCaseWeight == 0 && c.DelayWeight == 0 {
		c.BestCaseWeight = 1
		c.DelayWeight = 1
	}
	if c.ShiftExtensionMinutes == 0 {
		c.ShiftExtensionMinutes = 60
	}
}

// Validate checks the parameters are usable.
func (c Config) Validate() error {
	if c.TruckCapacityRC <= 0 {
		return fmt.Errorf("truck_capacity_rc must be positive")
	}
	if c.LoadingMinutes < 0 {
		return fmt.Errorf("loading_minutes must not be negative")
	}
	if c.BestCaseWeight < 0 || c.DelayWeight < 0 {
		return fmt.Errorf("scoring weights must not be negative")
	}
	if c.BestCaseWeight == 0 && c.DelayWeight == 0 {
		return fmt.Errorf("at least one scoring weight must be positive")
	}
	if c.ShiftExtensionMinutes < 0 {
		return fmt.Errorf("shift_extension_minutes must not be negative")
	}
	return nil
}

// LoadingTime returns the single-order loading overhead.
func (c Config) LoadingTime() time.Duration {
	return time.Duration(c.LoadingMinutes) * time.Minute
}

// ShiftExtension returns the external-truck extension allowance.
func (c Config) ShiftExtension() time.Duration {
	return time.Duration(c.ShiftExtensionMinutes) * time.Minute
}
