package model

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// ModelInput mirrors the scheduling-inputs JSON document. Days and periods
// are 1-based throughout, matching the keys of the preference tables.
type ModelInput struct {
	Halls        int
	Labs         int
	Days         int
	Periods      int
	Environments []string
	Groups       map[string][]string
	Classes      map[string][]string
	Subjects     map[string][]string

	Assistants []string `mapstructure:"A"`
	Doctors    []string `mapstructure:"T"`

	// AssistantCaps / DoctorCaps hold [weekly period cap, distinct subject cap].
	AssistantCaps []int `mapstructure:"AL"`
	DoctorCaps    []int `mapstructure:"TL"`

	// Time preference tables: staff -> day -> period -> {0,1}.
	AssistantTimePrefs map[string]map[string]map[string]int `mapstructure:"AT"`
	DoctorTimePrefs    map[string]map[string]map[string]int `mapstructure:"TT"`

	// Subject preference tables: staff -> subject -> {0,1}.
	AssistantSubjectPrefs map[string]map[string]int `mapstructure:"AS"`
	DoctorSubjectPrefs    map[string]map[string]int `mapstructure:"TS"`
}

// GetTimePreference reads a staff member's flag for a (day, period) slot from
// a string-keyed preference table. The boolean reports whether the entry
// exists at all.
func GetTimePreference(table map[string]map[string]map[string]int, staff string, day, period int) (int, bool) {
	days, ok := table[staff]
	if !ok {
		return 0, false
	}
	periods, ok := days[strconv.Itoa(day)]
	if !ok {
		return 0, false
	}
	value, ok := periods[strconv.Itoa(period)]
	return value, ok
}

// GetSubjectPreference reads a staff member's flag for a subject.
func GetSubjectPreference(table map[string]map[string]int, staff, subject string) (int, bool) {
	subjects, ok := table[staff]
	if !ok {
		return 0, false
	}
	value, ok := subjects[subject]
	return value, ok
}

// InputFromJSON parses a scheduling-inputs document from a file.
func InputFromJSON(file string) (ModelInput, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return ModelInput{}, err
	}

	var inputJSON map[string]any
	if err := json.Unmarshal(bytes, &inputJSON); err != nil {
		return ModelInput{}, err
	}

	var input ModelInput
	if err := mapstructure.Decode(inputJSON, &input); err != nil {
		return ModelInput{}, fmt.Errorf("cannot decode input document: %w", err)
	}

	return input, nil
}
