package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Severity is the triage tier of one user message. Values are ordered so
// tiers compare with < and >.
type Severity int

const (
	SeveritySafe Severity = iota
	SeverityElevated
	SeverityDistressed
	SeverityImminent
)

var severityNames = [...]string{"SAFE", "ELEVATED", "DISTRESSED", "IMMINENT"}

// Severities lists every tier, lowest first.
func Severities() []Severity {
	return []Severity{SeveritySafe, SeverityElevated, SeverityDistressed, SeverityImminent}
}

func (s Severity) String() string {
	if s < SeveritySafe || s > SeverityImminent {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

// ParseSeverity accepts tier names case-insensitively.
func ParseSeverity(name string) (Severity, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for i, n := range severityNames {
		if n == upper {
			return Severity(i), nil
		}
	}
	return SeveritySafe, fmt.Errorf("unknown severity %q", name)
}

func (s Severity) MarshalText() ([]byte, error) {
	if s < SeveritySafe || s > SeverityImminent {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value stores the tier name so the column stays readable in SQL.
func (s Severity) Value() (driver.Value, error) {
	return s.String(), nil
}

func (s *Severity) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("scan severity: unsupported type %T", src)
	}
}
