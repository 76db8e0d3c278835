// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package api

import (
	"github.com/tomtom215/adaptrank/internal/ranking"
)

// maxBodyBytes bounds request bodies. A full rank request of 1000
// candidates with descriptions fits comfortably.
const maxBodyBytes = 4 << 20

// RankRequest is the body of POST /api/v1/rank.
type RankRequest struct {
	RequestID  string             `json:"request_id,omitempty" validate:"max=128"`
	Query      string             `json:"query" validate:"max=512"`
	User       UserPayload        `json:"user"`
	Candidates []CandidatePayload `json:"candidates" validate:"max=1000,dive"`
}

// UserPayload is the requesting user.
type UserPayload struct {
	ID          string   `json:"id" validate:"max=256"`
	Income      float64  `json:"income" validate:"finite,gte=0"`
	Preferences []string `json:"preferences,omitempty" validate:"max=64,dive,max=64"`
}

// CandidatePayload is one candidate item.
type CandidatePayload struct {
	ID            string   `json:"id" validate:"required,max=256"`
	Name          string   `json:"name" validate:"max=512"`
	Category      string   `json:"category,omitempty" validate:"max=128"`
	Description   string   `json:"description,omitempty" validate:"max=4096"`
	ClusterID     int      `json:"cluster_id"`
	Price         float64  `json:"price" validate:"finite,gte=0"`
	Rating        float64  `json:"rating" validate:"finite,gte=0,lte=5"`
	Affordability *float64 `json:"affordability,omitempty" validate:"omitempty,finite,gte=0,lte=100"`
}

// ToRanking converts the payload. requestID is used when the body carries
// none.
func (r *RankRequest) ToRanking(requestID string) ranking.Request {
	id := r.RequestID
	if id == "" {
		id = requestID
	}

	candidates := make([]ranking.Item, len(r.Candidates))
	for i := range r.Candidates {
		c := &r.Candidates[i]
		candidates[i] = ranking.Item{
			ID:            ranking.ItemID(c.ID),
			Name:          c.Name,
			Category:      c.Category,
			Description:   c.Description,
			ClusterID:     ranking.ClusterID(c.ClusterID),
			Price:         c.Price,
			Rating:        c.Rating,
			Affordability: c.Affordability,
		}
	}

	return ranking.Request{
		Query: r.Query,
		User: ranking.UserProfile{
			ID:          ranking.UserID(r.User.ID),
			Income:      r.User.Income,
			Preferences: r.User.Preferences,
		},
		Candidates: candidates,
		RequestID:  id,
	}
}

// FeedbackAccepted is the 202 body of an asynchronously delivered event.
type FeedbackAccepted struct {
	EventID string `json:"event_id"`
	Status  string `json:"status"`
}

// HealthStatus is the body of GET /healthz.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
