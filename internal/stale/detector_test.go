package stale

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vvka-141/sprocc/pkg/sprocc"
)

func freshInput() Input {
	mod := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return Input{
		Previous: &sprocc.BuildMetadata{
			Routine:      "get_user",
			ModTime:      mod,
			Placeholders: map[string]string{"@SCHEMA@": "app"},
			Session: sprocc.SessionSettings{
				SQLMode:      "STRICT_TRANS_TABLES",
				CharacterSet: "utf8mb4",
				Collation:    "utf8mb4_0900_ai_ci",
			},
		},
		ModTime:       mod,
		Placeholders:  map[string]string{"@SCHEMA@": "app"},
		CatalogExists: true,
		Session: sprocc.SessionSettings{
			SQLMode:      "STRICT_TRANS_TABLES",
			CharacterSet: "utf8mb4",
			Collation:    "utf8mb4_0900_ai_ci",
		},
	}
}

func TestCheckUpToDate(t *testing.T) {
	got := Check(freshInput())
	assert.False(t, got.Stale)
	assert.Empty(t, got.Reason)
}

func TestCheckRules(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*Input)
		wantReason string
	}{
		{
			"no previous build",
			func(in *Input) { in.Previous = nil },
			"no previous build recorded",
		},
		{
			"mod time changed",
			func(in *Input) { in.ModTime = in.ModTime.Add(time.Second) },
			"source modified",
		},
		{
			"placeholder removed",
			func(in *Input) { delete(in.Placeholders, "@SCHEMA@") },
			"placeholder @SCHEMA@ no longer resolves",
		},
		{
			"placeholder value changed",
			func(in *Input) { in.Placeholders["@SCHEMA@"] = "staging" },
			"placeholder @SCHEMA@ changed value",
		},
		{
			"catalog entry missing",
			func(in *Input) { in.CatalogExists = false },
			"routine missing from database catalog",
		},
		{
			"session changed",
			func(in *Input) { in.Session.SQLMode = "ANSI" },
			"session settings changed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := freshInput()
			tt.mutate(&in)
			got := Check(in)
			assert.True(t, got.Stale)
			assert.Contains(t, got.Reason, tt.wantReason)
		})
	}
}

// New tokens in the source never force a rebuild on their own; only
// previously recorded placeholders participate.
func TestCheckIgnoresNewPlaceholders(t *testing.T) {
	in := freshInput()
	in.Placeholders["@LIMIT@"] = "10"

	got := Check(in)
	assert.False(t, got.Stale)
}

// Equal wall-clock times in different locations compare equal.
func TestCheckModTimeLocationInsensitive(t *testing.T) {
	in := freshInput()
	in.ModTime = in.ModTime.In(time.FixedZone("CET", 3600))

	got := Check(in)
	assert.False(t, got.Stale)
}
