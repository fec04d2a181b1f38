package model

import (
	"fmt"
)

// ValidationError reports a configuration problem, naming the offending
// field. Validation runs before any variable is created.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %v: %v", e.Field, e.Reason)
}

// Validate checks a scheduling-inputs document without building anything.
func Validate(input ModelInput) error {
	_, err := newEntityIndex(input)
	return err
}

type groupEntry struct {
	name    string
	env     int
	classes []string
}

// entityIndex enumerates the combinatorial domain of a validated input:
// dense indices for environments, groups, classes, subjects and staff, plus
// the preference tables re-keyed to those indices. Enumeration order is the
// declaration order of the input, so variable naming is stable per build.
type entityIndex struct {
	halls   int
	labs    int
	days    int
	periods int

	environments  []string
	groups        []groupEntry
	groupsByEnv   [][]int
	subjects      []string // union across environments, first-appearance order
	subjectID     map[string]int
	subjectsByEnv [][]int

	assistants []string
	doctors    []string

	assistantPeriodCap  int
	assistantSubjectCap int
	doctorPeriodCap     int
	doctorSubjectCap    int

	assistantTime    [][][]int // [assistant][day-1][period-1] -> {0,1}
	doctorTime       [][][]int
	assistantSubject [][]int // [assistant][subject] -> {0,1}
	doctorSubject    [][]int
}

func newEntityIndex(input ModelInput) (*entityIndex, error) {
	for _, bound := range []struct {
		field string
		value int
	}{
		{"halls", input.Halls},
		{"labs", input.Labs},
		{"days", input.Days},
		{"periods", input.Periods},
	} {
		if bound.value <= 0 {
			return nil, &ValidationError{Field: bound.field, Reason: "must be a positive integer"}
		}
	}

	if len(input.Environments) == 0 {
		return nil, &ValidationError{Field: "environments", Reason: "at least one environment is required"}
	}
	if duplicate, found := firstDuplicate(input.Environments); found {
		return nil, &ValidationError{Field: "environments", Reason: fmt.Sprintf("duplicate environment %q", duplicate)}
	}

	idx := &entityIndex{
		halls:        input.Halls,
		labs:         input.Labs,
		days:         input.Days,
		periods:      input.Periods,
		environments: input.Environments,
		subjectID:    make(map[string]int),
		assistants:   input.Assistants,
		doctors:      input.Doctors,
	}

	seenGroups := make(map[string]bool)
	for e, env := range input.Environments {
		groupNames, declared := input.Groups[env]
		if !declared || len(groupNames) == 0 {
			return nil, &ValidationError{Field: "groups", Reason: fmt.Sprintf("environment %q declares no groups", env)}
		}

		groupIDs := make([]int, 0, len(groupNames))
		for _, groupName := range groupNames {
			if seenGroups[groupName] {
				return nil, &ValidationError{Field: "groups", Reason: fmt.Sprintf("group %q declared more than once", groupName)}
			}
			seenGroups[groupName] = true

			classNames, declared := input.Classes[groupName]
			if !declared || len(classNames) == 0 {
				return nil, &ValidationError{Field: "classes", Reason: fmt.Sprintf("group %q declares no classes", groupName)}
			}
			if duplicate, found := firstDuplicate(classNames); found {
				return nil, &ValidationError{Field: "classes", Reason: fmt.Sprintf("group %q declares class %q more than once", groupName, duplicate)}
			}

			idx.groups = append(idx.groups, groupEntry{name: groupName, env: e, classes: classNames})
			groupIDs = append(groupIDs, len(idx.groups)-1)
		}
		idx.groupsByEnv = append(idx.groupsByEnv, groupIDs)

		subjectNames, declared := input.Subjects[env]
		if !declared || len(subjectNames) == 0 {
			return nil, &ValidationError{Field: "subjects", Reason: fmt.Sprintf("environment %q declares no subjects", env)}
		}
		if duplicate, found := firstDuplicate(subjectNames); found {
			return nil, &ValidationError{Field: "subjects", Reason: fmt.Sprintf("environment %q declares subject %q more than once", env, duplicate)}
		}

		subjectIDs := make([]int, 0, len(subjectNames))
		for _, subjectName := range subjectNames {
			id, known := idx.subjectID[subjectName]
			if !known {
				idx.subjects = append(idx.subjects, subjectName)
				id = len(idx.subjects) - 1
				idx.subjectID[subjectName] = id
			}
			subjectIDs = append(subjectIDs, id)
		}
		idx.subjectsByEnv = append(idx.subjectsByEnv, subjectIDs)
	}

	if len(input.Assistants) == 0 {
		return nil, &ValidationError{Field: "A", Reason: "at least one assistant is required"}
	}
	if len(input.Doctors) == 0 {
		return nil, &ValidationError{Field: "T", Reason: "at least one doctor is required"}
	}
	if duplicate, found := firstDuplicate(input.Assistants); found {
		return nil, &ValidationError{Field: "A", Reason: fmt.Sprintf("duplicate assistant %q", duplicate)}
	}
	if duplicate, found := firstDuplicate(input.Doctors); found {
		return nil, &ValidationError{Field: "T", Reason: fmt.Sprintf("duplicate doctor %q", duplicate)}
	}

	var err error
	if idx.assistantPeriodCap, idx.assistantSubjectCap, err = caps("AL", input.AssistantCaps); err != nil {
		return nil, err
	}
	if idx.doctorPeriodCap, idx.doctorSubjectCap, err = caps("TL", input.DoctorCaps); err != nil {
		return nil, err
	}

	if idx.assistantTime, err = idx.timeTable("AT", input.Assistants, input.AssistantTimePrefs); err != nil {
		return nil, err
	}
	if idx.doctorTime, err = idx.timeTable("TT", input.Doctors, input.DoctorTimePrefs); err != nil {
		return nil, err
	}
	if idx.assistantSubject, err = idx.subjectTable("AS", input.Assistants, input.AssistantSubjectPrefs); err != nil {
		return nil, err
	}
	if idx.doctorSubject, err = idx.subjectTable("TS", input.Doctors, input.DoctorSubjectPrefs); err != nil {
		return nil, err
	}

	return idx, nil
}

func caps(field string, values []int) (periodCap, subjectCap int, err error) {
	if len(values) != 2 {
		return 0, 0, &ValidationError{Field: field, Reason: "expected [period cap, subject cap]"}
	}
	if values[0] < 0 || values[1] < 0 {
		return 0, 0, &ValidationError{Field: field, Reason: "caps must be non-negative"}
	}
	return values[0], values[1], nil
}

// timeTable converts a string-keyed preference table into a dense
// [staff][day-1][period-1] array, rejecting missing entries and flags
// outside {0,1}.
func (idx *entityIndex) timeTable(field string, staff []string, table map[string]map[string]map[string]int) ([][][]int, error) {
	dense := make([][][]int, len(staff))
	for i, name := range staff {
		dense[i] = make([][]int, idx.days)
		for d := 1; d <= idx.days; d++ {
			dense[i][d-1] = make([]int, idx.periods)
			for p := 1; p <= idx.periods; p++ {
				flag, declared := GetTimePreference(table, name, d, p)
				if !declared {
					return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("missing entry for %q day %d period %d", name, d, p)}
				}
				if flag != 0 && flag != 1 {
					return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("entry for %q day %d period %d must be 0 or 1", name, d, p)}
				}
				dense[i][d-1][p-1] = flag
			}
		}
	}
	return dense, nil
}

func (idx *entityIndex) subjectTable(field string, staff []string, table map[string]map[string]int) ([][]int, error) {
	dense := make([][]int, len(staff))
	for i, name := range staff {
		dense[i] = make([]int, len(idx.subjects))
		for s, subject := range idx.subjects {
			flag, declared := GetSubjectPreference(table, name, subject)
			if !declared {
				return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("missing entry for %q subject %q", name, subject)}
			}
			if flag != 0 && flag != 1 {
				return nil, &ValidationError{Field: field, Reason: fmt.Sprintf("entry for %q subject %q must be 0 or 1", name, subject)}
			}
			dense[i][s] = flag
		}
	}
	return dense, nil
}

// representative returns the class used to stand in for a whole group in
// group-wide constraints: the first declared class.
func (idx *entityIndex) representative(group int) int {
	return 0
}

func (idx *entityIndex) classCount(group int) int {
	return len(idx.groups[group].classes)
}

func firstDuplicate(names []string) (string, bool) {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return name, true
		}
		seen[name] = true
	}
	return "", false
}
