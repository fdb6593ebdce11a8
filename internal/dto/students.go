package dto

import (
	"time"

	"github.com/noah-isme/schooldb-api/internal/models"
)

// StreamGroup lists the students of one stream within a class.
type StreamGroup struct {
	Stream   string           `json:"stream"`
	Students []models.Student `json:"students"`
}

// ClassGroup lists a class broken down by stream.
type ClassGroup struct {
	Class   string        `json:"student_class"`
	Streams []StreamGroup `json:"streams"`
}

// PhotoLink is a time-limited download link for a student photo.
type PhotoLink struct {
	URL       string    `json:"url"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
