package events

import (
	"errors"
	"time"

	"boxoffice/internal/seatmap"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrInvalidEventID = errors.New("invalid event id")
)

type Event struct {
	ID            uuid.UUID               `json:"id" gorm:"type:uuid;primaryKey"`
	Name          string                  `json:"name" gorm:"not null;size:255"`
	Description   string                  `json:"description" gorm:"type:text"`
	Venue         string                  `json:"venue" gorm:"not null;size:255"`
	StartsAt      time.Time               `json:"starts_at" gorm:"not null"`
	Status        EventStatus             `json:"status" gorm:"type:varchar(20);default:'draft'"`
	Sectors       []seatmap.SectorSummary `json:"sectores" gorm:"type:jsonb;serializer:json"`
	SeatMapConfig *seatmap.Config         `json:"seatMapConfig,omitempty" gorm:"type:jsonb;serializer:json"`

	CreatedBy string    `json:"created_by" gorm:"size:64"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return "events"
}

type EventResponse struct {
	ID            string                  `json:"id"`
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	Venue         string                  `json:"venue"`
	StartsAt      time.Time               `json:"starts_at"`
	Status        EventStatus             `json:"status"`
	Capacity      int                     `json:"capacity"`
	Sectores      []seatmap.SectorSummary `json:"sectores"`
	SeatMapConfig *seatmap.Config         `json:"seatMapConfig,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

type PaginatedEvents struct {
	Events     []EventResponse `json:"events"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}

func (e *Event) ToResponse() EventResponse {
	capacity := 0
	for _, s := range e.Sectors {
		capacity += s.Total
	}
	sectors := e.Sectors
	if sectors == nil {
		sectors = []seatmap.SectorSummary{}
	}
	return EventResponse{
		ID:            e.ID.String(),
		Name:          e.Name,
		Description:   e.Description,
		Venue:         e.Venue,
		StartsAt:      e.StartsAt,
		Status:        e.Status,
		Capacity:      capacity,
		Sectores:      sectors,
		SeatMapConfig: e.SeatMapConfig,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
