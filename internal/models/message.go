package models

import "time"

// Message is a direct message between two users. Messages are append-only.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	Sender     *User     `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`
	Receiver   *User     `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// Sender is the inbox projection of a user who has messaged the caller.
type Sender struct {
	ID       uint   `json:"_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}
