package entity

import (
	"time"

	wtentity "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/wastetype/entity"
)

// CollectionPoint is a physical site where citizens deposit sorted waste.
// AvgRating is nil while the point has no reviews.
type CollectionPoint struct {
	ID            int64     `db:"id" json:"id,string"`
	OperatorID    int64     `db:"operator_id" json:"operatorId,string"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description"`
	IsActive      bool      `db:"is_active" json:"isActive"`
	Accessibility *string   `db:"accessibility" json:"accessibility,omitempty"`
	Capacity      *string   `db:"capacity" json:"capacity,omitempty"`
	AvgRating     *float64  `db:"avg_rating" json:"avgRating"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`

	Address    *Address               `db:"-" json:"address,omitempty"`
	Schedule   *Schedule              `db:"-" json:"schedule,omitempty"`
	WasteTypes []*wtentity.WasteType `db:"-" json:"wasteTypes"`
}

type Address struct {
	CollectionPointID int64   `db:"collection_point_id" json:"-"`
	Street            string  `db:"street" json:"street" validate:"required,max=200"`
	Number            string  `db:"number" json:"number" validate:"max=20"`
	City              string  `db:"city" json:"city" validate:"required,max=100"`
	Zip               string  `db:"zip" json:"zip" validate:"max=20"`
	Country           string  `db:"country" json:"country" validate:"max=100"`
	Latitude          float64 `db:"latitude" json:"latitude" validate:"latitude"`
	Longitude         float64 `db:"longitude" json:"longitude" validate:"longitude"`
}

// Schedule holds the opening days and hours. Times are "HH:MM".
type Schedule struct {
	CollectionPointID int64   `db:"collection_point_id" json:"-"`
	Monday            bool    `db:"monday" json:"monday"`
	Tuesday           bool    `db:"tuesday" json:"tuesday"`
	Wednesday         bool    `db:"wednesday" json:"wednesday"`
	Thursday          bool    `db:"thursday" json:"thursday"`
	Friday            bool    `db:"friday" json:"friday"`
	Saturday          bool    `db:"saturday" json:"saturday"`
	Sunday            bool    `db:"sunday" json:"sunday"`
	OpeningTime       *string `db:"opening_time" json:"openingTime,omitempty" validate:"omitempty,datetime=15:04"`
	ClosingTime       *string `db:"closing_time" json:"closingTime,omitempty" validate:"omitempty,datetime=15:04"`
	IsAlwaysOpen      bool    `db:"is_always_open" json:"isAlwaysOpen"`
	Notes             *string `db:"notes" json:"notes,omitempty" validate:"omitempty,max=500"`
}

// Filter narrows a collection point listing. Zero values mean "any".
type Filter struct {
	Active      *bool
	WasteTypeID int64
	City        string
	OperatorID  int64
	Limit       uint
	Offset      uint
}
