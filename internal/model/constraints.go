package model

import (
	"fmt"
	"math"

	"college-scheduler/internal/milp"
)

// constraintGenerator emits the hard-feasibility constraint set over the
// catalog. Each category gets one method; the reusable linearization
// templates (indicator-of-sum, two-sided-absolute-value, running-extremum)
// are named helpers instead of being re-derived inline.
type constraintGenerator struct {
	idx   *entityIndex
	cat   *catalog
	model *milp.Model
}

func newConstraintGenerator(idx *entityIndex, cat *catalog, model *milp.Model) *constraintGenerator {
	return &constraintGenerator{idx: idx, cat: cat, model: model}
}

func (g *constraintGenerator) EmitAll() {
	g.hallCapacity()
	g.labCapacity()
	g.coverage()
	g.busyPeriodLinks()
	g.groupCohesion()
	g.staffLinks()
	g.staffCohesion()
	g.staffSlotClash()
	g.staffPeriodCaps()
	g.staffSubjectCaps()
	g.subjectIndicatorLinks()
	g.dayDerivations()
}

func (g *constraintGenerator) emit(category milp.ConstraintCategory, key string, expr milp.LinearExpr, sense milp.Sense, rhs float64) {
	g.model.AddConstraint(milp.Constraint{Category: category, Key: key, Expr: expr, Sense: sense, RHS: rhs})
}

// hallCapacity bounds concurrent lectures per slot. Only the representative
// class of each group is counted: cohesion guarantees identical occupancy
// across a group's classes, so counting all of them would overstate demand.
func (g *constraintGenerator) hallCapacity() {
	idx := g.idx
	for d := 1; d <= idx.days; d++ {
		for p := 1; p <= idx.periods; p++ {
			var expr milp.LinearExpr
			for e := range idx.environments {
				for _, group := range idx.groupsByEnv[e] {
					rep := idx.representative(group)
					for _, s := range idx.subjectsByEnv[e] {
						key := sessionKey{env: e, group: group, class: rep, subject: s, day: d, period: p}
						expr.Add(must(g.cat.Lecture(key)), 1)
					}
				}
			}
			g.emit(milp.HallCapacity, fmt.Sprintf("d%d_p%d", d, p), expr, milp.LessEq, float64(idx.halls))
		}
	}
}

// labCapacity bounds concurrent sections per slot; sections are per-class, so
// every class counts.
func (g *constraintGenerator) labCapacity() {
	idx := g.idx
	for d := 1; d <= idx.days; d++ {
		for p := 1; p <= idx.periods; p++ {
			var expr milp.LinearExpr
			g.cat.eachSession(func(key sessionKey) {
				if key.day == d && key.period == p {
					expr.Add(must(g.cat.Section(key)), 1)
				}
			})
			g.emit(milp.LabCapacity, fmt.Sprintf("d%d_p%d", d, p), expr, milp.LessEq, float64(idx.labs))
		}
	}
}

// coverage forces exactly one lecture slot and exactly one section slot per
// (group, class, subject) across the week.
func (g *constraintGenerator) coverage() {
	idx := g.idx
	for e := range idx.environments {
		for _, group := range idx.groupsByEnv[e] {
			for class := range idx.groups[group].classes {
				for _, s := range idx.subjectsByEnv[e] {
					var lectures, sections milp.LinearExpr
					for d := 1; d <= idx.days; d++ {
						for p := 1; p <= idx.periods; p++ {
							key := sessionKey{env: e, group: group, class: class, subject: s, day: d, period: p}
							lectures.Add(must(g.cat.Lecture(key)), 1)
							sections.Add(must(g.cat.Section(key)), 1)
						}
					}
					tuple := fmt.Sprintf("e%d_g%d_c%d_s%d", e, group, class, s)
					g.emit(milp.LectureOnce, tuple, lectures, milp.Equal, 1)
					g.emit(milp.SectionOnce, tuple, sections, milp.Equal, 1)
				}
			}
		}
	}
}

// busyPeriodLinks defines BusyPeriod as the exact session count of a class
// slot and caps that count at one session.
func (g *constraintGenerator) busyPeriodLinks() {
	idx := g.idx
	g.cat.eachClassDay(func(day classDayKey) {
		for p := 1; p <= idx.periods; p++ {
			slot := slotKey{classDayKey: day, period: p}

			var sessions milp.LinearExpr
			for _, s := range idx.subjectsByEnv[day.env] {
				key := sessionKey{env: day.env, group: day.group, class: day.class, subject: s, day: day.day, period: p}
				sessions.Add(must(g.cat.Lecture(key)), 1)
				sessions.Add(must(g.cat.Section(key)), 1)
			}

			g.emit(milp.NoDoubleBooking, slot.String(), sessions, milp.LessEq, 1)

			var link milp.LinearExpr
			link.Terms = append([]milp.Term{}, sessions.Terms...)
			link.Add(g.cat.busyPeriod[slot], -1)
			g.emit(milp.BusyPeriodLink, slot.String(), link, milp.Equal, 0)
		}
	})
}

// groupCohesion forces all classes of a group into the same lecture slot:
// the class sum equals classCount times the representative's indicator.
func (g *constraintGenerator) groupCohesion() {
	idx := g.idx
	for e := range idx.environments {
		for _, group := range idx.groupsByEnv[e] {
			count := idx.classCount(group)
			if count == 1 {
				continue
			}
			rep := idx.representative(group)
			for _, s := range idx.subjectsByEnv[e] {
				for d := 1; d <= idx.days; d++ {
					for p := 1; p <= idx.periods; p++ {
						var expr milp.LinearExpr
						for class := 0; class < count; class++ {
							key := sessionKey{env: e, group: group, class: class, subject: s, day: d, period: p}
							expr.Add(must(g.cat.Lecture(key)), 1)
						}
						repKey := sessionKey{env: e, group: group, class: rep, subject: s, day: d, period: p}
						expr.Add(must(g.cat.Lecture(repKey)), -float64(count))
						g.emit(milp.GroupCohesion, fmt.Sprintf("e%d_g%d_s%d_d%d_p%d", e, group, s, d, p), expr, milp.Equal, 0)
					}
				}
			}
		}
	}
}

// staffLinks ties every scheduled session to exactly one staff member of the
// correct role: the link sum equals the occupancy indicator.
func (g *constraintGenerator) staffLinks() {
	g.cat.eachSession(func(session sessionKey) {
		var doctors milp.LinearExpr
		for t := range g.idx.doctors {
			doctors.Add(must(g.cat.DoctorLink(staffSessionKey{staff: t, session: session})), 1)
		}
		doctors.Add(must(g.cat.Lecture(session)), -1)
		g.emit(milp.StaffLink, "lec_"+session.String(), doctors, milp.Equal, 0)

		var assistants milp.LinearExpr
		for a := range g.idx.assistants {
			assistants.Add(must(g.cat.AssistantLink(staffSessionKey{staff: a, session: session})), 1)
		}
		assistants.Add(must(g.cat.Section(session)), -1)
		g.emit(milp.StaffLink, "sec_"+session.String(), assistants, milp.Equal, 0)
	})
}

// staffCohesion mirrors lecture cohesion on the doctor links: a doctor's link
// variable is identical across all classes of a group for the same
// (subject, slot).
func (g *constraintGenerator) staffCohesion() {
	idx := g.idx
	for e := range idx.environments {
		for _, group := range idx.groupsByEnv[e] {
			count := idx.classCount(group)
			if count == 1 {
				continue
			}
			rep := idx.representative(group)
			for t := range idx.doctors {
				for _, s := range idx.subjectsByEnv[e] {
					for d := 1; d <= idx.days; d++ {
						for p := 1; p <= idx.periods; p++ {
							repKey := staffSessionKey{staff: t, session: sessionKey{env: e, group: group, class: rep, subject: s, day: d, period: p}}
							for class := 0; class < count; class++ {
								if class == rep {
									continue
								}
								key := staffSessionKey{staff: t, session: sessionKey{env: e, group: group, class: class, subject: s, day: d, period: p}}
								var expr milp.LinearExpr
								expr.Add(must(g.cat.DoctorLink(key)), 1)
								expr.Add(must(g.cat.DoctorLink(repKey)), -1)
								g.emit(milp.StaffCohesion, key.String(), expr, milp.Equal, 0)
							}
						}
					}
				}
			}
		}
	}
}

// staffSlotClash forbids double-booking a staff member within a slot. Doctor
// links are counted through the representative class only, since a lecture
// engages the doctor once for the whole group.
func (g *constraintGenerator) staffSlotClash() {
	idx := g.idx
	for d := 1; d <= idx.days; d++ {
		for p := 1; p <= idx.periods; p++ {
			for t := range idx.doctors {
				expr := g.doctorEngagement(t, func(key sessionKey) bool { return key.day == d && key.period == p })
				g.emit(milp.StaffSlotClash, fmt.Sprintf("doc%d_d%d_p%d", t, d, p), expr, milp.LessEq, 1)
			}
			for a := range idx.assistants {
				expr := g.assistantEngagement(a, func(key sessionKey) bool { return key.day == d && key.period == p })
				g.emit(milp.StaffSlotClash, fmt.Sprintf("asst%d_d%d_p%d", a, d, p), expr, milp.LessEq, 1)
			}
		}
	}
}

// staffPeriodCaps bounds weekly engagements per staff member.
func (g *constraintGenerator) staffPeriodCaps() {
	idx := g.idx
	for t := range idx.doctors {
		expr := g.doctorEngagement(t, func(sessionKey) bool { return true })
		g.emit(milp.StaffPeriodCap, fmt.Sprintf("doc%d", t), expr, milp.LessEq, float64(idx.doctorPeriodCap))
	}
	for a := range idx.assistants {
		expr := g.assistantEngagement(a, func(sessionKey) bool { return true })
		g.emit(milp.StaffPeriodCap, fmt.Sprintf("asst%d", a), expr, milp.LessEq, float64(idx.assistantPeriodCap))
	}
}

// staffSubjectCaps bounds the number of distinct subjects a staff member
// teaches, via the subject indicators.
func (g *constraintGenerator) staffSubjectCaps() {
	idx := g.idx
	for t := range idx.doctors {
		var expr milp.LinearExpr
		for s := range idx.subjects {
			expr.Add(g.cat.doctorSubject[staffSubjectKey{staff: t, subject: s}], 1)
		}
		g.emit(milp.StaffSubjectCap, fmt.Sprintf("doc%d", t), expr, milp.LessEq, float64(idx.doctorSubjectCap))
	}
	for a := range idx.assistants {
		var expr milp.LinearExpr
		for s := range idx.subjects {
			expr.Add(g.cat.assistantSubject[staffSubjectKey{staff: a, subject: s}], 1)
		}
		g.emit(milp.StaffSubjectCap, fmt.Sprintf("asst%d", a), expr, milp.LessEq, float64(idx.assistantSubjectCap))
	}
}

// subjectIndicatorLinks is the indicator-of-sum template applied to weekly
// subject engagement: the indicator is forced to 1 by any engagement and the
// engagement is capped at periodCap times the indicator.
func (g *constraintGenerator) subjectIndicatorLinks() {
	idx := g.idx
	for s := range idx.subjects {
		for t := range idx.doctors {
			engagement := g.doctorEngagement(t, func(key sessionKey) bool { return key.subject == s })
			indicator := g.cat.doctorSubject[staffSubjectKey{staff: t, subject: s}]
			g.indicatorOfSum(milp.SubjectIndicatorLink, fmt.Sprintf("doc%d_s%d", t, s), engagement, indicator, float64(idx.doctorPeriodCap))
		}
		for a := range idx.assistants {
			engagement := g.assistantEngagement(a, func(key sessionKey) bool { return key.subject == s })
			indicator := g.cat.assistantSubject[staffSubjectKey{staff: a, subject: s}]
			g.indicatorOfSum(milp.SubjectIndicatorLink, fmt.Sprintf("asst%d_s%d", a, s), engagement, indicator, float64(idx.assistantPeriodCap))
		}
	}
}

// dayDerivations ties every per-(class, day) derived variable down to the
// occupancy variables. Every derived quantity carries a BusyDay upper bound
// so idle days cannot hold phantom nonzero values.
func (g *constraintGenerator) dayDerivations() {
	idx := g.idx
	periods := float64(idx.periods)
	target := math.Ceil(periods / 2)

	g.cat.eachClassDay(func(day classDayKey) {
		busyDay := g.cat.busyDay[day]
		load := g.cat.load[day]

		// Load is the exact count of busy periods of the day.
		var loadLink milp.LinearExpr
		for p := 1; p <= idx.periods; p++ {
			loadLink.Add(g.cat.busyPeriod[slotKey{classDayKey: day, period: p}], 1)
		}
		loadLink.Add(load, -1)
		g.emit(milp.LoadLink, day.String(), loadLink, milp.Equal, 0)

		// BusyDay tracks Load >= 1 (indicator-of-sum).
		var loadExpr milp.LinearExpr
		loadExpr.Add(load, 1)
		g.indicatorOfSum(milp.BusyDayLink, day.String(), loadExpr, busyDay, periods)

		// Deviation is the absolute distance from the target mid-day load,
		// forced to zero on idle days (two-sided-absolute-value).
		g.twoSidedAbsolute(day.String(), load, g.cat.deviation[day], busyDay, target, periods)

		// FirstPeriod/LastPeriod bracket the busy periods (running-extremum).
		g.runningExtremum(day, busyDay, periods)

		// Gap counts idle periods strictly inside the study day.
		var gapLink milp.LinearExpr
		gapLink.Add(g.cat.gap[day], 1)
		gapLink.Add(g.cat.lastPeriod[day], -1)
		gapLink.Add(g.cat.firstPeriod[day], 1)
		gapLink.Add(load, 1)
		gapLink.Add(busyDay, -1)
		g.emit(milp.GapLink, day.String(), gapLink, milp.Equal, 0)
	})
}

// indicatorOfSum emits the two-sided linkage sum >= z and sum <= bigM*z, so
// the binary z exactly tracks "is the sum nonzero".
func (g *constraintGenerator) indicatorOfSum(category milp.ConstraintCategory, key string, sum milp.LinearExpr, z milp.VarID, bigM float64) {
	lower := milp.LinearExpr{Terms: append([]milp.Term{}, sum.Terms...)}
	lower.Add(z, -1)
	g.emit(category, key+"_on", lower, milp.GreaterEq, 0)

	upper := milp.LinearExpr{Terms: append([]milp.Term{}, sum.Terms...)}
	upper.Add(z, -bigM)
	g.emit(category, key+"_off", upper, milp.LessEq, 0)
}

// twoSidedAbsolute emits dev >= x - target, dev >= target*z - x and
// dev <= bound*z: dev is |x - target| on busy days and zero on idle ones.
func (g *constraintGenerator) twoSidedAbsolute(key string, x, dev, z milp.VarID, target, bound float64) {
	var above milp.LinearExpr
	above.Add(dev, 1)
	above.Add(x, -1)
	g.emit(milp.DeviationBound, key+"_pos", above, milp.GreaterEq, -target)

	var below milp.LinearExpr
	below.Add(dev, 1)
	below.Add(x, 1)
	below.Add(z, -target)
	g.emit(milp.DeviationBound, key+"_neg", below, milp.GreaterEq, 0)

	var idle milp.LinearExpr
	idle.Add(dev, 1)
	idle.Add(z, -bound)
	g.emit(milp.DeviationBound, key+"_idle", idle, milp.LessEq, 0)
}

// runningExtremum bounds FirstPeriod below and LastPeriod above every busy
// period, with slack when the period is idle, and zeroes both on idle days.
func (g *constraintGenerator) runningExtremum(day classDayKey, busyDay milp.VarID, periods float64) {
	first := g.cat.firstPeriod[day]
	last := g.cat.lastPeriod[day]

	for p := 1; p <= g.idx.periods; p++ {
		busy := g.cat.busyPeriod[slotKey{classDayKey: day, period: p}]

		// first <= p + periods*(1 - busy)
		var lowest milp.LinearExpr
		lowest.Add(first, 1)
		lowest.Add(busy, periods)
		g.emit(milp.FirstPeriodBound, fmt.Sprintf("%v_p%d", day, p), lowest, milp.LessEq, float64(p)+periods)

		// last >= p * busy
		var highest milp.LinearExpr
		highest.Add(last, 1)
		highest.Add(busy, -float64(p))
		g.emit(milp.LastPeriodBound, fmt.Sprintf("%v_p%d", day, p), highest, milp.GreaterEq, 0)
	}

	var firstIdle milp.LinearExpr
	firstIdle.Add(first, 1)
	firstIdle.Add(busyDay, -periods)
	g.emit(milp.FirstPeriodBound, day.String()+"_idle", firstIdle, milp.LessEq, 0)

	var lastIdle milp.LinearExpr
	lastIdle.Add(last, 1)
	lastIdle.Add(busyDay, -periods)
	g.emit(milp.LastPeriodBound, day.String()+"_idle", lastIdle, milp.LessEq, 0)
}

// doctorEngagement sums a doctor's link variables over the representative
// class of every group session matching the filter. Lectures are group-wide,
// so per-class links would multiply one engagement by the group size.
func (g *constraintGenerator) doctorEngagement(doctor int, match func(sessionKey) bool) milp.LinearExpr {
	idx := g.idx
	var expr milp.LinearExpr
	for e := range idx.environments {
		for _, group := range idx.groupsByEnv[e] {
			rep := idx.representative(group)
			for _, s := range idx.subjectsByEnv[e] {
				for d := 1; d <= idx.days; d++ {
					for p := 1; p <= idx.periods; p++ {
						key := sessionKey{env: e, group: group, class: rep, subject: s, day: d, period: p}
						if match(key) {
							expr.Add(must(g.cat.DoctorLink(staffSessionKey{staff: doctor, session: key})), 1)
						}
					}
				}
			}
		}
	}
	return expr
}

// assistantEngagement sums an assistant's link variables over every class
// session matching the filter; sections are per-class events.
func (g *constraintGenerator) assistantEngagement(assistant int, match func(sessionKey) bool) milp.LinearExpr {
	var expr milp.LinearExpr
	g.cat.eachSession(func(key sessionKey) {
		if match(key) {
			expr.Add(must(g.cat.AssistantLink(staffSessionKey{staff: assistant, session: key})), 1)
		}
	})
	return expr
}
