package models

import (
	"time"
)

// PropertyType classifies a listing.
type PropertyType string

const (
	TypeHouse      PropertyType = "house"
	TypeApartment  PropertyType = "apartment"
	TypeCondo      PropertyType = "condo"
	TypeTownhouse  PropertyType = "townhouse"
	TypeLand       PropertyType = "land"
	TypeCommercial PropertyType = "commercial"
)

// PropertyStatus tracks where a listing is in its sales lifecycle.
type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "available"
	StatusSold      PropertyStatus = "sold"
	StatusPending   PropertyStatus = "pending"
	StatusRented    PropertyStatus = "rented"
)

// ValidPropertyType reports whether s is a known property type.
func ValidPropertyType(s string) bool {
	switch PropertyType(s) {
	case TypeHouse, TypeApartment, TypeCondo, TypeTownhouse, TypeLand, TypeCommercial:
		return true
	}
	return false
}

// ValidPropertyStatus reports whether s is a known listing status.
func ValidPropertyStatus(s string) bool {
	switch PropertyStatus(s) {
	case StatusAvailable, StatusSold, StatusPending, StatusRented:
		return true
	}
	return false
}

// validAmenities is the closed set of amenity tags a listing may carry.
var validAmenities = map[string]bool{
	"pool": true, "garden": true, "balcony": true, "fireplace": true,
	"basement": true, "attic": true, "garage": true, "parking": true,
	"elevator": true, "gym": true, "security": true, "air-conditioning": true,
	"heating": true, "dishwasher": true, "washer": true, "dryer": true,
	"furnished": true, "pet-friendly": true,
}

// ValidAmenity reports whether s is a known amenity tag.
func ValidAmenity(s string) bool {
	return validAmenities[s]
}

// Location holds the structured address of a property.
type Location struct {
	Address   string   `gorm:"not null" json:"address"`
	City      string   `gorm:"not null;index" json:"city"`
	State     string   `gorm:"not null;index" json:"state"`
	ZipCode   string   `gorm:"not null" json:"zipCode"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Details holds the physical characteristics of a property.
type Details struct {
	Bedrooms   int    `json:"bedrooms"`
	Bathrooms  int    `json:"bathrooms"`
	SquareFeet int    `json:"squareFeet"`
	LotSize    int    `json:"lotSize,omitempty"`
	YearBuilt  int    `json:"yearBuilt,omitempty"`
	Parking    string `json:"parking,omitempty"` // none|street|garage|carport
	Heating    string `json:"heating,omitempty"` // none|electric|gas|oil|solar
	Cooling    string `json:"cooling,omitempty"` // none|central|window|split
}

// Property represents a real-estate listing
type Property struct {
	ID            uint            `gorm:"primarykey" json:"id"`
	Title         string          `gorm:"not null" json:"title"`
	Description   string          `gorm:"not null" json:"description"`
	Type          PropertyType    `gorm:"not null;index" json:"type"`
	Status        PropertyStatus  `gorm:"not null;default:available;index" json:"status"`
	Price         float64         `gorm:"not null;index" json:"price"`
	OriginalPrice *float64        `json:"originalPrice,omitempty"`
	Location      Location        `gorm:"embedded" json:"location"`
	Details       Details         `gorm:"embedded" json:"details"`
	Amenities     []string        `gorm:"serializer:json" json:"amenities"`
	Images        []PropertyImage `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"images"`
	OwnerID       uint            `gorm:"not null;index" json:"ownerId"`
	Owner         *User           `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	AgentID       *uint           `json:"agentId,omitempty"`
	Agent         *User           `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Views         int64           `gorm:"not null;default:0" json:"views"`
	IsFeatured    bool            `gorm:"not null;default:false" json:"isFeatured"`
	IsActive      bool            `gorm:"not null;default:true;index" json:"isActive"`
	PriceHistory  []PriceChange   `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"priceHistory"`
	FavoriteCount int64           `gorm:"-" json:"favoriteCount"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// TableName overrides the table name
func (Property) TableName() string {
	return "properties"
}

// PricePerSqFt returns the rounded price per square foot, or 0 when
// square footage is unknown.
func (p *Property) PricePerSqFt() int {
	if p.Details.SquareFeet > 0 {
		return int(p.Price/float64(p.Details.SquareFeet) + 0.5)
	}
	return 0
}

// PropertyImage is an inline-encoded image attachment on a listing.
// URL holds a base64 data URL; Position preserves upload order.
type PropertyImage struct {
	ID         string    `gorm:"primarykey" json:"id"`
	PropertyID uint      `gorm:"not null;index" json:"-"`
	URL        string    `gorm:"not null" json:"url"`
	Caption    string    `json:"caption,omitempty"`
	IsPrimary  bool      `gorm:"not null;default:false" json:"isPrimary"`
	Position   int       `gorm:"not null;default:0" json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName overrides the table name
func (PropertyImage) TableName() string {
	return "property_images"
}

// PriceChange is one entry in a property's append-only price history.
// It records the price that was in effect before an update changed it.
type PriceChange struct {
	ID         uint      `gorm:"primarykey" json:"-"`
	PropertyID uint      `gorm:"not null;index" json:"-"`
	Price      float64   `gorm:"not null" json:"price"`
	RecordedAt time.Time `gorm:"not null" json:"date"`
}

// TableName overrides the table name
func (PriceChange) TableName() string {
	return "price_history"
}
