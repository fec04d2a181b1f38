package model

import "strconv"

// fullTimePrefs builds a preference table with the given flag for every
// (staff, day, period) entry.
func fullTimePrefs(staff []string, days, periods, flag int) map[string]map[string]map[string]int {
	table := make(map[string]map[string]map[string]int, len(staff))
	for _, name := range staff {
		table[name] = make(map[string]map[string]int, days)
		for d := 1; d <= days; d++ {
			table[name][strconv.Itoa(d)] = make(map[string]int, periods)
			for p := 1; p <= periods; p++ {
				table[name][strconv.Itoa(d)][strconv.Itoa(p)] = flag
			}
		}
	}
	return table
}

// fullSubjectPrefs builds a subject preference table with one flag for every
// (staff, subject) entry.
func fullSubjectPrefs(staff, subjects []string, flag int) map[string]map[string]int {
	table := make(map[string]map[string]int, len(staff))
	for _, name := range staff {
		table[name] = make(map[string]int, len(subjects))
		for _, subject := range subjects {
			table[name][subject] = flag
		}
	}
	return table
}

// singleClassInput is the smallest useful instance: one environment, one
// group with one class, two subjects on a 2x2 grid, one doctor and one
// assistant with full availability and both subjects preferred.
func singleClassInput() ModelInput {
	assistants := []string{"eng.Ali"}
	doctors := []string{"Dr.Omar"}
	subjects := []string{"Math", "CS"}

	return ModelInput{
		Halls:        1,
		Labs:         1,
		Days:         2,
		Periods:      2,
		Environments: []string{"year1"},
		Groups:       map[string][]string{"year1": {"G1"}},
		Classes:      map[string][]string{"G1": {"C1"}},
		Subjects:     map[string][]string{"year1": subjects},

		Assistants:    assistants,
		Doctors:       doctors,
		AssistantCaps: []int{4, 2},
		DoctorCaps:    []int{4, 2},

		AssistantTimePrefs:    fullTimePrefs(assistants, 2, 2, 1),
		DoctorTimePrefs:       fullTimePrefs(doctors, 2, 2, 1),
		AssistantSubjectPrefs: fullSubjectPrefs(assistants, subjects, 1),
		DoctorSubjectPrefs:    fullSubjectPrefs(doctors, subjects, 1),
	}
}

// twoClassInput has one group with two classes and a single subject on a one
// day, two period grid; small enough to count every emitted constraint.
func twoClassInput() ModelInput {
	assistants := []string{"eng.Ali"}
	doctors := []string{"Dr.Omar"}
	subjects := []string{"Math"}

	return ModelInput{
		Halls:        1,
		Labs:         2,
		Days:         1,
		Periods:      2,
		Environments: []string{"year1"},
		Groups:       map[string][]string{"year1": {"G1"}},
		Classes:      map[string][]string{"G1": {"C1", "C2"}},
		Subjects:     map[string][]string{"year1": subjects},

		Assistants:    assistants,
		Doctors:       doctors,
		AssistantCaps: []int{8, 3},
		DoctorCaps:    []int{8, 3},

		AssistantTimePrefs:    fullTimePrefs(assistants, 1, 2, 1),
		DoctorTimePrefs:       fullTimePrefs(doctors, 1, 2, 1),
		AssistantSubjectPrefs: fullSubjectPrefs(assistants, subjects, 0),
		DoctorSubjectPrefs:    fullSubjectPrefs(doctors, subjects, 0),
	}
}
