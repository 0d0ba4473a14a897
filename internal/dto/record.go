package dto

import (
	"time"

	"github.com/noah-isme/negative-records-api/internal/models"
)

// SearchRecordsRequest carries a claim-or-view search query.
type SearchRecordsRequest struct {
	Type       string `form:"type" json:"type"`
	FirstName  string `form:"firstName" json:"firstName"`
	MiddleName string `form:"middleName" json:"middleName"`
	LastName   string `form:"lastName" json:"lastName"`
	Company    string `form:"company" json:"company"`
}

// LockOwnerSummary is the masked identity of another user's lock.
type LockOwnerSummary struct {
	Name      string `json:"name"`
	Affiliate string `json:"affiliate"`
}

// RecordView is one search result with its per-requester visibility.
type RecordView struct {
	ID          int64             `json:"id"`
	Type        models.RecordType `json:"type"`
	FirstName   string            `json:"firstName,omitempty"`
	MiddleName  string            `json:"middleName,omitempty"`
	LastName    string            `json:"lastName,omitempty"`
	CompanyName string            `json:"companyName,omitempty"`
	CaseNumber  string            `json:"caseNumber"`
	Plaintiff   string            `json:"plaintiff"`
	CaseType    string            `json:"caseType"`
	Court       string            `json:"court"`
	Branch      string            `json:"branch"`
	City        string            `json:"city"`
	DateFiled   *time.Time        `json:"dateFiled,omitempty"`
	Details     *string           `json:"details,omitempty"`
	Source      *string           `json:"source,omitempty"`

	IsLocked          bool              `json:"isLocked"`
	IsOwner           bool              `json:"isOwner"`
	LockedAt          *time.Time        `json:"lockedAt,omitempty"`
	LockedBy          *LockOwnerSummary `json:"lockedBy,omitempty"`
	HasPendingRequest bool              `json:"hasPendingRequest"`
}

// SearchRecordsResponse is returned by the search endpoint.
type SearchRecordsResponse struct {
	Results         []RecordView `json:"results"`
	Total           int          `json:"total"`
	RemainingCredit int64        `json:"remainingCredit"`
}

// LockInfoResponse exposes the owner of a lock and who searched for the record.
type LockInfoResponse struct {
	RecordID      int64                       `json:"recordId"`
	LockedAt      time.Time                   `json:"lockedAt"`
	Owner         models.UserProfile          `json:"owner"`
	IsOwner       bool                        `json:"isOwner"`
	AccessHistory []models.AccessHistoryEntry `json:"accessHistory"`
}

// PrintMeta describes a completed print.
type PrintMeta struct {
	RecordID  int64     `json:"recordId"`
	PrintedBy int64     `json:"printedBy"`
	PrintedAt time.Time `json:"printedAt"`
	ClientID  int64     `json:"clientId"`
}

// PrintResponse is the JSON variant of the print endpoint.
type PrintResponse struct {
	PrintMeta       PrintMeta `json:"printMeta"`
	Billed          bool      `json:"billed"`
	Fee             int64     `json:"fee"`
	RemainingCredit int64     `json:"remainingCredit"`
}
