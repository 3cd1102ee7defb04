package models

import "time"

// Document is an uploaded file attached to a student record.
type Document struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	FileName   string    `db:"file_name" json:"file_name"`
	FileType   string    `db:"file_type" json:"file_type"`
	FileSize   int64     `db:"file_size" json:"file_size"`
	UploadDate time.Time `db:"upload_date" json:"upload_date"`
	Category   string    `db:"category" json:"category,omitempty"`
	Path       string    `db:"path" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DocumentFilter encapsulates allowed search parameters for listing documents.
type DocumentFilter struct {
	StudentID string
	Category  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
