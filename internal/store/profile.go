package store

import (
	"strconv"
	"time"
)

// GetProfile reads the user profile. Missing keys degrade to defaults; a
// read failure is treated the same way so rendering never depends on it.
func (s *Store) GetProfile() Profile {
	p := Profile{Timezone: "UTC"}
	if v, ok, err := s.LookupSetting("profile_name"); err == nil && ok {
		p.Name = v
	}
	if v, ok, err := s.LookupSetting("timezone"); err == nil && ok && v != "" {
		p.Timezone = v
	}
	return p
}

func (s *Store) UpsertProfile(p Profile) error {
	if err := s.SetSetting("profile_name", p.Name); err != nil {
		return err
	}
	return s.SetSetting("timezone", p.Timezone)
}

// Location resolves the profile's timezone, falling back to UTC when the
// zone name cannot be loaded. All civil-date projection goes through this.
func (p Profile) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RollingWindow reads the configured analytics window length in days.
func (s *Store) RollingWindow() int {
	const fallback = 30
	v, ok, err := s.LookupSetting("rolling_window")
	if err != nil || !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
