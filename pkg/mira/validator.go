// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package mira

import "fmt"

// AnomalyType represents different types of status anomalies
type AnomalyType int

const (
	AnomalyRefreshMode AnomalyType = iota
	AnomalySpeed
	AnomalyContrast
	AnomalyVersion
)

// String returns the anomaly name
func (a AnomalyType) String() string {
	switch a {
	case AnomalyRefreshMode:
		return "refresh_mode"
	case AnomalySpeed:
		return "speed"
	case AnomalyContrast:
		return "contrast"
	case AnomalyVersion:
		return "version"
	default:
		return "unknown"
	}
}

// ValidationError represents a snapshot value outside the documented range
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateSnapshot checks decoded values against the ranges the device
// accepts. Returns an empty slice if every value is in range.
func ValidateSnapshot(snap *Snapshot) []ValidationError {
	errors := []ValidationError{}

	checks := []struct {
		anomaly AnomalyType
		name    string
	}{
		{AnomalyRefreshMode, "refresh-mode"},
		{AnomalySpeed, "speed"},
		{AnomalyContrast, "contrast"},
	}
	for _, c := range checks {
		setting, _ := LookupSetting(c.name)
		v, ok := setting.Read(snap)
		if !ok {
			continue
		}
		if v < setting.Min || v > setting.Max {
			errors = append(errors, ValidationError{
				Type:    c.anomaly,
				Message: fmt.Sprintf("Invalid %s=%d (valid %s)", c.name, v, setting.Range()),
				Details: map[string]interface{}{"value": v, "min": setting.Min, "max": setting.Max},
			})
		}
	}

	errors = append(errors, validateVersionDetail(snap.VersionDetail)...)

	return errors
}

// validateVersionDetail flags separators caught in a field, which means
// the version text did not follow the fixed layout.
func validateVersionDetail(d VersionDetail) []ValidationError {
	fields := map[string]string{
		"mcu_hv": d.MCUHV, "mcu_sv": d.MCUSV,
		"rtd_hv": d.RTDHV, "rtd_sv": d.RTDSV,
		"fpga_hv": d.FPGAHV, "fpga_sv": d.FPGASV,
	}
	for _, name := range []string{"mcu_hv", "mcu_sv", "rtd_hv", "rtd_sv", "fpga_hv", "fpga_sv"} {
		v := fields[name]
		for _, r := range v {
			if r == ':' || r == '@' || r == '-' {
				return []ValidationError{{
					Type:    AnomalyVersion,
					Message: fmt.Sprintf("Version field %s=%q contains separator %q", name, v, r),
					Details: map[string]interface{}{"field": name, "value": v},
				}}
			}
		}
	}
	return nil
}
