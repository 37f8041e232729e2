package domain

import (
	"errors"
	"time"
	"unicode/utf8"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MinCommentLength = 10
	MaxCommentLength = 500
)

var (
	ErrRatingOutOfRange = errors.New("rating must be between 1 and 5")
	ErrCommentLength    = errors.New("comment must be between 10 and 500 characters")
)

type Feedback struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (f *Feedback) Validate() error {
	if f.Rating < MinRating || f.Rating > MaxRating {
		return ErrRatingOutOfRange
	}
	if n := utf8.RuneCountInString(f.Comment); n < MinCommentLength || n > MaxCommentLength {
		return ErrCommentLength
	}
	return nil
}
