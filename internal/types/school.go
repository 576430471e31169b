package types

// SchoolRecord is immutable reference data about a college, looked up by name.
// RegularDecisionDeadline is a date string in one of the accepted deadline
// formats, or empty when no regular decision date is known.
type SchoolRecord struct {
	Name                    string `json:"schoolName"`
	RegularDecisionDeadline string `json:"regularDeadline,omitempty"`
	SchoolType              string `json:"schoolType,omitempty"`
	City                    string `json:"city,omitempty"`
	State                   string `json:"state,omitempty"`
	AcceptanceRate          string `json:"acceptanceRate,omitempty"`
	AdmissionsURL           string `json:"admissionsUrl,omitempty"`
}

// FindSchool returns the record matching name, or nil if none matches.
func FindSchool(records []SchoolRecord, name string) *SchoolRecord {
	for i := range records {
		if records[i].Name == name {
			return &records[i]
		}
	}
	return nil
}
