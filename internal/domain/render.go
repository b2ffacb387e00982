package domain

import "time"

// Render is one persisted output image for a job. A job may produce zero or
// more renders; zero only when the whole job failed.
type Render struct {
	ID          string
	JobID       string
	Variant     int
	StoragePath string
	LikesCount  int
	ViewsCount  int
	CreatedAt   time.Time
}

// Asset is a user-uploaded reference image stored in the user assets bucket.
type Asset struct {
	ID        string
	UserID    string
	Path      string
	MIME      string
	Bytes     int64
	CreatedAt time.Time
}
