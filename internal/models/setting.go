package models

import "time"

// Setting is a site-wide key/value pair
type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     *string   `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updated_at,omitempty" db:"updated_at"`
}

// Stats holds entity counts reported by the stats endpoint
type Stats struct {
	Users    int `json:"users"`
	Articles int `json:"articles"`
	Comments int `json:"comments"`
	Likes    int `json:"likes"`
}
