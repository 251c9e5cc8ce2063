package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateOpenHouseRequest struct {
	Address string    `json:"address" validate:"required,notblank,min=3,max=300"`
	StartAt time.Time `json:"startAt" validate:"required"`
	EndAt   time.Time `json:"endAt" validate:"required,gtfield=StartAt"`
}

type FlyerUploadRequest struct {
	FileName    string `json:"fileName" validate:"required,max=200"`
	ContentType string `json:"contentType" validate:"required,max=100"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,gt=0"`
}

type SetFlyerRequest struct {
	FileKey string `json:"fileKey" validate:"required,max=500"`
}

// Response DTOs

type OpenHouseResponse struct {
	ID         uuid.UUID `json:"id"`
	Address    string    `json:"address"`
	StartAt    time.Time `json:"startAt"`
	EndAt      time.Time `json:"endAt"`
	Status     string    `json:"status"`
	HasFlyer   bool      `json:"hasFlyer"`
	CheckInURL string    `json:"checkInUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type OpenHouseListResponse struct {
	Items []OpenHouseResponse `json:"items"`
	Total int                 `json:"total"`
}

// PublicOpenHouseResponse is what the visitor's check-in form shows.
type PublicOpenHouseResponse struct {
	ID      uuid.UUID `json:"id"`
	Address string    `json:"address"`
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
}

type FlyerURLResponse struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}
