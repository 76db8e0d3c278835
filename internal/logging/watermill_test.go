// Adaptrank - Adaptive Multi-Factor Ranking Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/adaptrank

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestWatermillAdapter(t *testing.T) {
	var buf bytes.Buffer
	a := NewWatermillAdapter(zerolog.New(&buf).Level(zerolog.InfoLevel))

	a.Info("Starting handler", watermill.LogFields{"topic": "feedback.events"})
	if buf.Len() != 0 {
		t.Errorf("watermill info written at info level: %s", buf.String())
	}

	a.Error("Handler failed", errors.New("boom"), watermill.LogFields{"handler": "bandit-updater"})
	out := buf.String()
	for _, want := range []string{`"level":"error"`, `"error":"boom"`, `"handler":"bandit-updater"`, `"component":"watermill"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}

	buf.Reset()
	a.InfoAsInfo().With(watermill.LogFields{"subscriber": "s1"}).Info("Subscribed", nil)
	out = buf.String()
	if !strings.Contains(out, `"level":"info"`) || !strings.Contains(out, `"subscriber":"s1"`) {
		t.Errorf("InfoAsInfo().With() output = %s", out)
	}
}
