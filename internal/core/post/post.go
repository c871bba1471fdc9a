package post

import "time"

// Post is the single entity of the collection endpoint. JSON names follow
// the remote API; gorm tags are used by the placeholder store.
type Post struct {
	ID        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    int       `json:"userId" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	Body      string    `json:"body" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"-" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"-" gorm:"autoUpdateTime"`
}

// Draft is the payload of a create or update request.
type Draft struct {
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// Provisional reports whether the post carries a board-local id rather than
// one issued by the remote API.
func (p Post) Provisional() bool {
	return p.ID < 0
}
