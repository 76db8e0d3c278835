// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps the validator library in a thread-safe singleton with
// human-readable error messages. Feedback events are validated here before
// they reach the bandit store, both when consumed from NATS and when posted
// to the ops server.
//
// # Custom Tags
//
//   - finite: rejects NaN and +/-Inf on float fields (numeric range tags
//     accept NaN because every comparison with it is false)
//
// # Quick Start
//
//	type Event struct {
//	    ItemID string   `validate:"required,max=256"`
//	    Action string   `validate:"required"`
//	    Rating *float64 `validate:"omitempty,finite,gte=0,lte=5"`
//	}
//
//	if verr := validation.ValidateStruct(&ev); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    // respond 400 with apiErr.Code and apiErr.Message
//	}
//
// # Thread Safety
//
// GetValidator and ValidateStruct are safe for concurrent use.
package validation
