package entity

import "time"

type Type string

const (
	TypeFullBin        Type = "FULL_BIN"
	TypeNeedsCleaning  Type = "NEEDS_CLEANING"
	TypeDamaged        Type = "DAMAGED"
	TypeIllegalDumping Type = "ILLEGAL_DUMPING"
	TypeOther          Type = "OTHER"
)

func (t Type) Valid() bool {
	switch t {
	case TypeFullBin, TypeNeedsCleaning, TypeDamaged, TypeIllegalDumping, TypeOther:
		return true
	}
	return false
}

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved:
		return true
	}
	return false
}

// Report is a problem a user flagged at a collection point. ResolvedBy is
// the operator or admin who last picked it up.
type Report struct {
	ID                int64     `db:"id" json:"id,string"`
	UserID            int64     `db:"user_id" json:"userId,string"`
	CollectionPointID int64     `db:"collection_point_id" json:"collectionPointId,string"`
	Type              Type      `db:"type" json:"type"`
	Description       string    `db:"description" json:"description"`
	Status            Status    `db:"status" json:"status"`
	ResolvedBy        *int64    `db:"resolved_by" json:"resolvedBy,string,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// Filter narrows a report listing. Zero values mean "any".
type Filter struct {
	UserID            int64
	OperatorID        int64
	CollectionPointID int64
	Status            Status
}
