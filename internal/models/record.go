package models

import (
	"strings"
	"time"
)

// RecordType distinguishes individual and company entries.
type RecordType string

const (
	RecordTypeIndividual RecordType = "Individual"
	RecordTypeCompany    RecordType = "Company"
)

// ParseRecordType accepts case-insensitive record type names.
func ParseRecordType(raw string) (RecordType, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "individual":
		return RecordTypeIndividual, true
	case "company":
		return RecordTypeCompany, true
	default:
		return "", false
	}
}

// NegativeRecord is a blacklist entry describing adverse legal or credit history.
type NegativeRecord struct {
	ID          int64      `db:"id" json:"id"`
	Type        RecordType `db:"type" json:"type"`
	FirstName   string     `db:"first_name" json:"firstName,omitempty"`
	MiddleName  string     `db:"middle_name" json:"middleName,omitempty"`
	LastName    string     `db:"last_name" json:"lastName,omitempty"`
	CompanyName string     `db:"company_name" json:"companyName,omitempty"`
	CaseNumber  string     `db:"case_number" json:"caseNumber"`
	Plaintiff   string     `db:"plaintiff" json:"plaintiff"`
	CaseType    string     `db:"case_type" json:"caseType"`
	Court       string     `db:"court" json:"court"`
	Branch      string     `db:"branch" json:"branch"`
	City        string     `db:"city" json:"city"`
	DateFiled   *time.Time `db:"date_filed" json:"dateFiled,omitempty"`
	Details     string     `db:"details" json:"details"`
	Source      string     `db:"source" json:"source"`
	IsScanned   bool       `db:"is_scanned" json:"isScanned"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// DisplayName returns the human readable subject of the record.
func (r *NegativeRecord) DisplayName() string {
	if r.Type == RecordTypeCompany {
		return strings.TrimSpace(r.CompanyName)
	}
	return joinNonEmpty(r.FirstName, r.MiddleName, r.LastName)
}

// NormalizedTerm is the key search logs are matched against for access history.
func (r *NegativeRecord) NormalizedTerm() string {
	if r.Type == RecordTypeCompany {
		return NormalizeCompanyTerm(r.CompanyName)
	}
	return NormalizeNameTerm(r.FirstName, r.MiddleName, r.LastName)
}

// NormalizeNameTerm lowercases and space-joins the non-empty name parts.
func NormalizeNameTerm(first, middle, last string) string {
	return strings.ToLower(joinNonEmpty(first, middle, last))
}

// NormalizeCompanyTerm lowercases and trims a company name.
func NormalizeCompanyTerm(company string) string {
	return strings.ToLower(strings.Join(strings.Fields(company), " "))
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.Join(strings.Fields(part), " "); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, " ")
}

// RecordSearchFilter describes a substring search over negative records.
type RecordSearchFilter struct {
	Type       RecordType
	FirstName  string
	MiddleName string
	LastName   string
	Company    string
	Limit      int
}
