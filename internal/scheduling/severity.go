package scheduling

import "fmt"

// Severity classifies how blocking a conflict is. The numeric order is the
// "worst severity" order: SeverityError > SeverityWarning > SeverityInfo.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// MarshalJSON encodes the severity as its lowercase name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// MaxSeverity reduces a conflict list to its worst severity. The zero value
// (SeverityInfo) is returned for an empty list.
func MaxSeverity(conflicts []Conflict) Severity {
	worst := SeverityInfo
	for _, c := range conflicts {
		if c.Severity > worst {
			worst = c.Severity
		}
	}
	return worst
}
