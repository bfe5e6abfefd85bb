package model

import "time"

// Article data model. Only the author may change or remove it.
type Article struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Slug        string    `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	AuthorID    uint      `gorm:"not null;index" json:"-"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	TopicID     uint      `gorm:"not null;index" json:"-"`
	Topic       Topic     `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	IsPublished bool      `gorm:"not null;default:false;index" json:"is_published"`
}

// OwnedBy reports whether u authored the article.
func (a *Article) OwnedBy(u *User) bool {
	return u != nil && a.AuthorID == u.ID
}
