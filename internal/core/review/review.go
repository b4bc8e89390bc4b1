// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package review manages reviews of titles and the comments posted under them.

A review is a scored text written by one account about one title. Each
account may review a given title once. Comments hang off a review.

# Access Control

  - Public: Listing and reading.
  - Authenticated: Posting reviews and comments.
  - Author or moderator: Editing and deleting an existing review or comment.
    Administrators may post but may not edit what others wrote.
*/
package review

import "time"

// # Review Domain

// Review is one account's scored opinion of a title.
type Review struct {
	ID       string    `json:"id"`
	TitleID  string    `json:"-"`
	AuthorID string    `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	Score    int       `json:"score"`
	PubDate  time.Time `json:"pub_date"`
}

// OwnerID reports the author used by object-level permission rules.
func (review *Review) OwnerID() string {
	return review.AuthorID
}

// Comment is a reply posted under a review.
type Comment struct {
	ID       string    `json:"id"`
	ReviewID string    `json:"-"`
	AuthorID string    `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
}

// OwnerID reports the author used by object-level permission rules.
func (comment *Comment) OwnerID() string {
	return comment.AuthorID
}

// ReviewInput is the payload for creating or patching a review.
type ReviewInput struct {
	Text  *string `json:"text"`
	Score *int    `json:"score"`
}

// CommentInput is the payload for creating or patching a comment.
type CommentInput struct {
	Text *string `json:"text"`
}

// # Rating

// ComputeRating returns the arithmetic mean of scores, or nil when there are none.
// It is the single definition of a title's rating.
func ComputeRating(scores []int) *float64 {
	if len(scores) == 0 {
		return nil
	}

	sum := 0
	for _, score := range scores {
		sum += score
	}

	mean := float64(sum) / float64(len(scores))
	return &mean
}

// # Field Identifiers

const (
	FieldText  = "text"
	FieldScore = "score"
)

// # Constraints

const (
	ScoreMin = 1
	ScoreMax = 10
)
