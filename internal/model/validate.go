package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrNoVehicle is returned when an optimization is requested without vehicles.
	ErrNoVehicle = errors.New("no vehicle provided")
	// ErrInvalidInput marks malformed location or vehicle records.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidateLocation checks the structural fields of a location.
func ValidateLocation(l Location) error {
	if strings.TrimSpace(l.ID) == "" {
		return fmt.Errorf("%w: location id is required", ErrInvalidInput)
	}
	if err := validateCoords(l.Coordinates); err != nil {
		return fmt.Errorf("%w: location %s: %v", ErrInvalidInput, l.ID, err)
	}
	if l.EstimatedDuration < 0 {
		return fmt.Errorf("%w: location %s: estimatedDuration must be >= 0", ErrInvalidInput, l.ID)
	}
	for i, tw := range l.TimeWindows {
		switch tw.Kind {
		case WindowPreferred, WindowRequired, WindowUnavailable:
		default:
			return fmt.Errorf("%w: location %s: time window %d has unknown type %q", ErrInvalidInput, l.ID, i, tw.Kind)
		}
		if !validHHMM(tw.Start) || !validHHMM(tw.End) {
			return fmt.Errorf("%w: location %s: time window %d must use HH:MM", ErrInvalidInput, l.ID, i)
		}
	}
	return nil
}

// ValidateVehicle checks the structural fields of a vehicle.
func ValidateVehicle(v Vehicle) error {
	if strings.TrimSpace(v.ID) == "" {
		return fmt.Errorf("%w: vehicle id is required", ErrInvalidInput)
	}
	if v.Capacity <= 0 {
		return fmt.Errorf("%w: vehicle %s: capacity must be > 0", ErrInvalidInput, v.ID)
	}
	if v.SpeedKmh <= 0 || math.IsNaN(v.SpeedKmh) {
		return fmt.Errorf("%w: vehicle %s: speedKmh must be > 0", ErrInvalidInput, v.ID)
	}
	if v.CostPerKm < 0 {
		return fmt.Errorf("%w: vehicle %s: costPerKm must be >= 0", ErrInvalidInput, v.ID)
	}
	if err := validateCoords(v.StartLocation); err != nil {
		return fmt.Errorf("%w: vehicle %s start: %v", ErrInvalidInput, v.ID, err)
	}
	if v.EndLocation != nil {
		if err := validateCoords(*v.EndLocation); err != nil {
			return fmt.Errorf("%w: vehicle %s end: %v", ErrInvalidInput, v.ID, err)
		}
	}
	if !validHHMM(v.AvailableHours.Start) || !validHHMM(v.AvailableHours.End) {
		return fmt.Errorf("%w: vehicle %s: availableHours must use HH:MM", ErrInvalidInput, v.ID)
	}
	if v.Breaks != nil && (v.Breaks.Duration < 0 || v.Breaks.AfterHours <= 0) {
		return fmt.Errorf("%w: vehicle %s: break policy needs duration >= 0 and afterHours > 0", ErrInvalidInput, v.ID)
	}
	return nil
}

// Validate checks a full optimization input.
func Validate(locations []Location, vehicles []Vehicle) error {
	if len(vehicles) == 0 {
		return ErrNoVehicle
	}
	seen := make(map[string]struct{}, len(locations))
	for _, l := range locations {
		if err := ValidateLocation(l); err != nil {
			return err
		}
		if _, dup := seen[l.ID]; dup {
			return fmt.Errorf("%w: duplicate location id %s", ErrInvalidInput, l.ID)
		}
		seen[l.ID] = struct{}{}
	}
	for _, v := range vehicles {
		if err := ValidateVehicle(v); err != nil {
			return err
		}
	}
	return nil
}

func validateCoords(c Coordinates) error {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) {
		return errors.New("coordinates are missing")
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("coordinates out of range (%.6f,%.6f)", c.Lat, c.Lng)
	}
	return nil
}

// validHHMM accepts times up to 24:00; the clock package does the arithmetic.
func validHHMM(s string) bool {
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(h) == 0 || len(h) > 2 || len(m) != 2 {
		return false
	}
	hh, err1 := strconv.Atoi(h)
	mm, err2 := strconv.Atoi(m)
	if err1 != nil || err2 != nil || hh < 0 || mm < 0 || mm > 59 {
		return false
	}
	return hh < 24 || (hh == 24 && mm == 0)
}
