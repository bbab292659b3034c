package entity

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a CLIENT's rating of a collection point. A user reviews a
// given point at most once.
type Review struct {
	ID                int64     `db:"id" json:"id,string"`
	UserID            int64     `db:"user_id" json:"userId,string"`
	CollectionPointID int64     `db:"collection_point_id" json:"collectionPointId,string"`
	Rating            int       `db:"rating" json:"rating"`
	Comment           *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
}
