package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const referenceClassFile = `
[[class]]
name = "Moving Together Standing"
acronym = "MTSTANDG1"
instructor_id = "instructor-001"
help_message = "Call 555-0100 for help"
start_date = 2021-12-06
weekdays = ["mon", "wed"]
start_time = "13:00"
timezone = "America/Los_Angeles"
session_count = 24
duration_minutes = 60
lobby_buffer_minutes = 15
participants = ["participant-001", "participant-002"]

[[class]]
name = "Moving Together Seated"
acronym = "MTSEATG1"
instructor_id = "instructor-002"
start_date = 2022-01-04
weekdays = ["tue"]
start_time = "09:30"
timezone = "America/New_York"
session_count = 8
duration_minutes = 45
`

func TestLoadClassFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.toml")
	if err := os.WriteFile(path, []byte(referenceClassFile), 0o600); err != nil {
		t.Fatalf("write class file: %v", err)
	}

	file, err := LoadClassFile(path)
	if err != nil {
		t.Fatalf("LoadClassFile returned error: %v", err)
	}
	if len(file.Classes) != 2 {
		t.Fatalf("expected two classes, got %d", len(file.Classes))
	}
	first := file.Classes[0]
	if first.StartDate.String() != "2021-12-06" {
		t.Fatalf("unexpected start date %s", first.StartDate)
	}
	if first.SessionCount != 24 || len(first.Weekdays) != 2 || len(first.Participants) != 2 {
		t.Fatalf("unexpected class %+v", first)
	}
	if second := file.Classes[1]; second.LobbyBufferMinutes != 0 || second.Timezone != "America/New_York" {
		t.Fatalf("unexpected second class %+v", second)
	}
}

func TestParseClassFileErrors(t *testing.T) {
	t.Run("unknown keys", func(t *testing.T) {
		_, err := ParseClassFile([]byte("[[class]]\nname = \"x\"\nsesion_count = 3\n"))
		if !errors.Is(err, ErrUnknownKey) {
			t.Fatalf("expected ErrUnknownKey, got %v", err)
		}
		if !strings.Contains(err.Error(), "sesion_count") || !strings.Contains(err.Error(), "line 3") {
			t.Fatalf("expected the misspelt key and its line in %q", err.Error())
		}
	})

	t.Run("syntax errors carry a position", func(t *testing.T) {
		_, err := ParseClassFile([]byte("[[class]]\nname = \n"))
		if err == nil || !strings.Contains(err.Error(), "line 2") {
			t.Fatalf("expected positioned error, got %v", err)
		}
	})

	t.Run("empty document", func(t *testing.T) {
		if _, err := ParseClassFile([]byte("# nothing here\n")); !errors.Is(err, ErrEmptyClassFile) {
			t.Fatalf("expected ErrEmptyClassFile, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadClassFile(filepath.Join(t.TempDir(), "none.toml")); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected not-exist error, got %v", err)
		}
	})
}
