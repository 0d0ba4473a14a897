package models

import "time"

// SearchLog records every search attempt. SearchTerm is normalized.
type SearchLog struct {
	ID          int64      `db:"id" json:"id"`
	UserID      int64      `db:"user_id" json:"userId"`
	ClientID    int64      `db:"client_id" json:"clientId"`
	SearchType  RecordType `db:"search_type" json:"searchType"`
	SearchTerm  string     `db:"search_term" json:"searchTerm"`
	ResultCount int        `db:"result_count" json:"resultCount"`
	IsBilled    bool       `db:"is_billed" json:"isBilled"`
	Fee         int64      `db:"fee" json:"fee"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

// AccessHistoryEntry is a search log row joined with the searcher's identity.
type AccessHistoryEntry struct {
	SearchedAt time.Time  `db:"created_at" json:"searchedAt"`
	SearchType RecordType `db:"search_type" json:"searchType"`
	UserID     int64      `db:"user_id" json:"userId"`
	UserName   string     `db:"full_name" json:"userName"`
	ClientName string     `db:"client_name" json:"affiliate"`
}
