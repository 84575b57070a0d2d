package domain

import (
	"time"

	"github.com/google/uuid"
)

type DocID string

// Document is shared-file metadata kept on the room. The bytes live in
// the file store; URL is what clients fetch.
type Document struct {
	ID       DocID     `json:"id"`
	Room     RoomID    `json:"roomId"`
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Size     int64     `json:"size"`
	Uploader SubjectID `json:"uploaderId"`

	UploadedAt time.Time `json:"uploadedAt"`
}

func NewDocument(room RoomID, name, url string, size int64, uploader SubjectID, now time.Time) *Document {
	return &Document{
		ID:         DocID(uuid.NewString()),
		Room:       room,
		Name:       name,
		URL:        url,
		Size:       size,
		Uploader:   uploader,
		UploadedAt: now,
	}
}
