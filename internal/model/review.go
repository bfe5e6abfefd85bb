package model

import "time"

// Review is a comment left by a user on an article.
type Review struct {
	ID        uint      `gorm:"primaryKey"`
	ArticleID uint      `gorm:"not null;index"`
	Article   Article   `gorm:"foreignKey:ArticleID;constraint:OnDelete:CASCADE"`
	UserID    uint      `gorm:"not null;index"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Text      string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"index"`
}

// OwnedBy reports whether u wrote the review.
func (r *Review) OwnedBy(u *User) bool {
	return u != nil && r.UserID == u.ID
}
