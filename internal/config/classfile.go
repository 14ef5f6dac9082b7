package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ClassFile is a TOML document declaring one or more classes:
//
//	[[class]]
//	name = "Moving Together Standing"
//	acronym = "MTSTANDG1"
//	instructor_id = "instructor-001"
//	start_date = 2021-12-06
//	weekdays = ["mon", "wed"]
//	start_time = "13:00"
//	timezone = "America/Los_Angeles"
//	session_count = 24
//	duration_minutes = 60
//	lobby_buffer_minutes = 15
//	participants = ["participant-001"]
type ClassFile struct {
	Classes []ClassSpec `toml:"class"`
}

// ClassSpec is one class declaration. StartDate is a TOML local date.
type ClassSpec struct {
	Name               string         `toml:"name"`
	Acronym            string         `toml:"acronym"`
	InstructorID       string         `toml:"instructor_id"`
	HelpMessage        string         `toml:"help_message"`
	StartDate          toml.LocalDate `toml:"start_date"`
	Weekdays           []string       `toml:"weekdays"`
	StartTime          string         `toml:"start_time"`
	Timezone           string         `toml:"timezone"`
	SessionCount       int            `toml:"session_count"`
	DurationMinutes    int            `toml:"duration_minutes"`
	LobbyBufferMinutes int            `toml:"lobby_buffer_minutes"`
	Participants       []string       `toml:"participants"`
}

// ErrEmptyClassFile is returned when a class file declares no class.
var ErrEmptyClassFile = errors.New("config: class file declares no class")

// LoadClassFile decodes the class file at path.
func LoadClassFile(path string) (ClassFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ClassFile{}, fmt.Errorf("read class file: %w", err)
	}
	file, err := ParseClassFile(data)
	if err != nil {
		return ClassFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return file, nil
}

// ParseClassFile decodes a class file. Unknown keys are rejected so that a
// misspelt field does not silently fall back to its zero value.
func ParseClassFile(data []byte) (ClassFile, error) {
	var file ClassFile
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		var strictErr *toml.StrictMissingError
		if errors.As(err, &strictErr) {
			return ClassFile{}, unknownKeysError(strictErr)
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return ClassFile{}, fmt.Errorf("line %d column %d: %w", row, col, err)
		}
		return ClassFile{}, err
	}
	if len(file.Classes) == 0 {
		return ClassFile{}, ErrEmptyClassFile
	}
	return file, nil
}

// ErrUnknownKey is returned when a class file sets a key ClassSpec does not
// declare.
var ErrUnknownKey = errors.New("config: unknown key in class file")

func unknownKeysError(strictErr *toml.StrictMissingError) error {
	keys := make([]string, 0, len(strictErr.Errors))
	for _, keyErr := range strictErr.Errors {
		row, col := keyErr.Position()
		keys = append(keys, fmt.Sprintf("%s (line %d column %d)", strings.Join(keyErr.Key(), "."), row, col))
	}
	return fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
}
