package config

import (
	"fmt"
	"strconv"
	"time"
)

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolPtr sets a tri-state bool. Unlike setBool, the destination itself
// is a pointer so "absent" survives the merge.
func (s *configSetter) setBoolPtr(flag string, value *bool, dst **bool) {
	if value == nil || s.changed[flag] {
		return
	}
	v := *value
	*dst = &v
}

// setIntPtr sets an optional int, preserving absence.
func (s *configSetter) setIntPtr(flag string, value *int, dst **int) {
	if value == nil || s.changed[flag] {
		return
	}
	v := *value
	*dst = &v
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt64 sets an int64 value if positive and flag not changed.
func (s *configSetter) setInt64(flag string, value int64, dst *int64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setInt64FromString parses a string to int64 and sets the destination.
func (s *configSetter) setInt64FromString(flag, value string, dst *int64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setIntPtrFromString parses an optional int from a string, preserving
// absence when the variable is unset.
func (s *configSetter) setIntPtrFromString(flag, value string, dst **int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = &i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

// setBoolPtrFromString parses a tri-state bool from a string, preserving
// absence when the variable is unset.
func (s *configSetter) setBoolPtrFromString(flag, value string, dst **bool) {
	if value == "" || s.changed[flag] {
		return
	}
	v := value == "true" || value == "1"
	*dst = &v
}
