package models

import (
	"slices"
	"time"
)

// OwnerField names one of the owner's free-text profile fields.
// The value doubles as the storage column name.
type OwnerField string

const (
	FieldInterests  OwnerField = "interests"
	FieldLookingFor OwnerField = "looking_for"
	FieldAbout      OwnerField = "about"
)

// OwnerFields lists the text fields in display order
var OwnerFields = []OwnerField{FieldInterests, FieldLookingFor, FieldAbout}

// Valid reports whether f is a known owner field
func (f OwnerField) Valid() bool {
	return slices.Contains(OwnerFields, f)
}

// OwnerProfile is the owner's published content
type OwnerProfile struct {
	Photos     []string `json:"photos"`
	Interests  string   `json:"interests"`
	LookingFor string   `json:"looking_for"`
	About      string   `json:"about"`
}

// Field returns the value of a text field
func (p *OwnerProfile) Field(f OwnerField) string {
	switch f {
	case FieldInterests:
		return p.Interests
	case FieldLookingFor:
		return p.LookingFor
	case FieldAbout:
		return p.About
	}
	return ""
}

// SetField overwrites a text field. Unknown fields are ignored.
func (p *OwnerProfile) SetField(f OwnerField, value string) {
	switch f {
	case FieldInterests:
		p.Interests = value
	case FieldLookingFor:
		p.LookingFor = value
	case FieldAbout:
		p.About = value
	}
}

// HasPhoto reports whether id is already one of the owner's photos
func (p *OwnerProfile) HasPhoto(id string) bool {
	for _, existing := range p.Photos {
		if existing == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy
func (p *OwnerProfile) Clone() *OwnerProfile {
	c := *p
	c.Photos = append([]string(nil), p.Photos...)
	return &c
}

// InterestRecord is stored once per visitor when they express interest
type InterestRecord struct {
	VisitorID int64     `json:"visitor_id"`
	Username  string    `json:"username"`
	PhotoID   string    `json:"photo_id"`
	AboutText string    `json:"about_text"`
	CreatedAt time.Time `json:"created_at"`
}
