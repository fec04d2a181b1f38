package model

import (
	"college-scheduler/internal/config"
	"college-scheduler/internal/milp"
)

// composeObjective builds the single minimized objective: weighted soft costs
// per (class, day) minus preference-alignment rewards. Rewards are subtracted
// so the one minimize direction captures both, which is why the weights and
// preference flags must stay non-negative.
func composeObjective(idx *entityIndex, cat *catalog, weights config.Weights) milp.LinearExpr {
	var objective milp.LinearExpr

	cat.eachClassDay(func(day classDayKey) {
		if weights.Deviation != 0 {
			objective.Add(cat.deviation[day], weights.Deviation)
		}
		if weights.ActiveDay != 0 {
			objective.Add(cat.busyDay[day], weights.ActiveDay)
		}
		if weights.Gap != 0 {
			objective.Add(cat.gap[day], weights.Gap)
		}
	})

	// Time-preference rewards. Doctor links are rewarded through the
	// representative class only, keeping the reward magnitude independent of
	// group size, the same convention every doctor-side aggregate uses.
	cat.eachSession(func(session sessionKey) {
		if session.class == idx.representative(session.group) {
			for t := range idx.doctors {
				if idx.doctorTime[t][session.day-1][session.period-1] == 1 {
					objective.Add(must(cat.DoctorLink(staffSessionKey{staff: t, session: session})), -1)
				}
			}
		}
		for a := range idx.assistants {
			if idx.assistantTime[a][session.day-1][session.period-1] == 1 {
				objective.Add(must(cat.AssistantLink(staffSessionKey{staff: a, session: session})), -1)
			}
		}
	})

	// Subject-preference rewards.
	for s := range idx.subjects {
		for t := range idx.doctors {
			if idx.doctorSubject[t][s] == 1 {
				objective.Add(cat.doctorSubject[staffSubjectKey{staff: t, subject: s}], -1)
			}
		}
		for a := range idx.assistants {
			if idx.assistantSubject[a][s] == 1 {
				objective.Add(cat.assistantSubject[staffSubjectKey{staff: a, subject: s}], -1)
			}
		}
	}

	return objective
}
