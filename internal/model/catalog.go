package model

import (
	"fmt"

	"college-scheduler/internal/milp"
)

// sessionKey identifies one potential session occurrence: a class of a group
// attending a subject in a (day, period) slot. All indices are dense entity
// indices except day and period, which stay 1-based.
type sessionKey struct {
	env     int
	group   int
	class   int
	subject int
	day     int
	period  int
}

func (k sessionKey) String() string {
	return fmt.Sprintf("e%d_g%d_c%d_s%d_d%d_p%d", k.env, k.group, k.class, k.subject, k.day, k.period)
}

// staffSessionKey links a staff member (doctor or assistant, depending on the
// variable family) to a session occurrence.
type staffSessionKey struct {
	staff   int
	session sessionKey
}

func (k staffSessionKey) String() string {
	return fmt.Sprintf("t%d_%v", k.staff, k.session)
}

// classDayKey identifies one class's day, the unit of the derived
// load/deviation/gap variables.
type classDayKey struct {
	env   int
	group int
	class int
	day   int
}

func (k classDayKey) String() string {
	return fmt.Sprintf("e%d_g%d_c%d_d%d", k.env, k.group, k.class, k.day)
}

type slotKey struct {
	classDayKey
	period int
}

func (k slotKey) String() string {
	return fmt.Sprintf("%v_p%d", k.classDayKey, k.period)
}

type staffSubjectKey struct {
	staff   int
	subject int
}

func (k staffSubjectKey) String() string {
	return fmt.Sprintf("t%d_s%d", k.staff, k.subject)
}

// catalog declares every decision variable of the formulation and exposes
// lookup by composite key. Lookups outside the declared domain report
// ok=false; the constraint generator only iterates enumerated domains, so a
// failed lookup there is a programming error.
type catalog struct {
	model *milp.Model
	idx   *entityIndex

	lecture       map[sessionKey]milp.VarID      // Y
	section       map[sessionKey]milp.VarID      // X
	doctorLink    map[staffSessionKey]milp.VarID // I
	assistantLink map[staffSessionKey]milp.VarID // J

	busyPeriod map[slotKey]milp.VarID // BP

	busyDay     map[classDayKey]milp.VarID // BD
	load        map[classDayKey]milp.VarID
	deviation   map[classDayKey]milp.VarID
	firstPeriod map[classDayKey]milp.VarID
	lastPeriod  map[classDayKey]milp.VarID
	gap         map[classDayKey]milp.VarID

	doctorSubject    map[staffSubjectKey]milp.VarID // TDS
	assistantSubject map[staffSubjectKey]milp.VarID // ADS
}

func newCatalog(idx *entityIndex, model *milp.Model) *catalog {
	c := &catalog{
		model:            model,
		idx:              idx,
		lecture:          make(map[sessionKey]milp.VarID),
		section:          make(map[sessionKey]milp.VarID),
		doctorLink:       make(map[staffSessionKey]milp.VarID),
		assistantLink:    make(map[staffSessionKey]milp.VarID),
		busyPeriod:       make(map[slotKey]milp.VarID),
		busyDay:          make(map[classDayKey]milp.VarID),
		load:             make(map[classDayKey]milp.VarID),
		deviation:        make(map[classDayKey]milp.VarID),
		firstPeriod:      make(map[classDayKey]milp.VarID),
		lastPeriod:       make(map[classDayKey]milp.VarID),
		gap:              make(map[classDayKey]milp.VarID),
		doctorSubject:    make(map[staffSubjectKey]milp.VarID),
		assistantSubject: make(map[staffSubjectKey]milp.VarID),
	}

	c.declareSessions()
	c.declareStaffLinks()
	c.declareDerived()
	c.declareSubjectIndicators()

	return c
}

// eachSession calls visit for every valid session key in enumeration order.
func (c *catalog) eachSession(visit func(key sessionKey)) {
	idx := c.idx
	for e := range idx.environments {
		for _, g := range idx.groupsByEnv[e] {
			for classID := range idx.groups[g].classes {
				for _, s := range idx.subjectsByEnv[e] {
					for d := 1; d <= idx.days; d++ {
						for p := 1; p <= idx.periods; p++ {
							visit(sessionKey{env: e, group: g, class: classID, subject: s, day: d, period: p})
						}
					}
				}
			}
		}
	}
}

// eachClassDay calls visit for every (environment, group, class, day) key.
func (c *catalog) eachClassDay(visit func(key classDayKey)) {
	idx := c.idx
	for e := range idx.environments {
		for _, g := range idx.groupsByEnv[e] {
			for classID := range idx.groups[g].classes {
				for d := 1; d <= idx.days; d++ {
					visit(classDayKey{env: e, group: g, class: classID, day: d})
				}
			}
		}
	}
}

func (c *catalog) declareSessions() {
	c.eachSession(func(key sessionKey) {
		c.lecture[key] = c.model.AddVariable(milp.Variable{Name: "Y_" + key.String(), Kind: milp.Binary})
		c.section[key] = c.model.AddVariable(milp.Variable{Name: "X_" + key.String(), Kind: milp.Binary})
	})
}

func (c *catalog) declareStaffLinks() {
	c.eachSession(func(session sessionKey) {
		for t := range c.idx.doctors {
			key := staffSessionKey{staff: t, session: session}
			c.doctorLink[key] = c.model.AddVariable(milp.Variable{Name: "I_" + key.String(), Kind: milp.Binary})
		}
		for a := range c.idx.assistants {
			key := staffSessionKey{staff: a, session: session}
			c.assistantLink[key] = c.model.AddVariable(milp.Variable{Name: "J_" + key.String(), Kind: milp.Binary})
		}
	})
}

func (c *catalog) declareDerived() {
	periods := float64(c.idx.periods)
	c.eachClassDay(func(day classDayKey) {
		for p := 1; p <= c.idx.periods; p++ {
			slot := slotKey{classDayKey: day, period: p}
			c.busyPeriod[slot] = c.model.AddVariable(milp.Variable{Name: "BP_" + slot.String(), Kind: milp.Binary})
		}

		c.busyDay[day] = c.model.AddVariable(milp.Variable{Name: "BD_" + day.String(), Kind: milp.Binary})
		for _, family := range []struct {
			prefix string
			into   map[classDayKey]milp.VarID
		}{
			{"Load", c.load},
			{"Dev", c.deviation},
			{"FP", c.firstPeriod},
			{"LastP", c.lastPeriod},
			{"Gap", c.gap},
		} {
			into := family.into
			into[day] = c.model.AddVariable(milp.Variable{
				Name: family.prefix + "_" + day.String(),
				Kind: milp.IntegerVar,
				Low:  0,
				High: periods,
			})
		}
	})
}

func (c *catalog) declareSubjectIndicators() {
	for s := range c.idx.subjects {
		for t := range c.idx.doctors {
			key := staffSubjectKey{staff: t, subject: s}
			c.doctorSubject[key] = c.model.AddVariable(milp.Variable{Name: "TDS_" + key.String(), Kind: milp.Binary})
		}
		for a := range c.idx.assistants {
			key := staffSubjectKey{staff: a, subject: s}
			c.assistantSubject[key] = c.model.AddVariable(milp.Variable{Name: "ADS_" + key.String(), Kind: milp.Binary})
		}
	}
}

// Lecture returns the Y variable for the key, reporting whether the key is
// inside the declared domain.
func (c *catalog) Lecture(key sessionKey) (milp.VarID, bool) {
	id, ok := c.lecture[key]
	return id, ok
}

// Section returns the X variable for the key.
func (c *catalog) Section(key sessionKey) (milp.VarID, bool) {
	id, ok := c.section[key]
	return id, ok
}

// DoctorLink returns the I variable for the key.
func (c *catalog) DoctorLink(key staffSessionKey) (milp.VarID, bool) {
	id, ok := c.doctorLink[key]
	return id, ok
}

// AssistantLink returns the J variable for the key.
func (c *catalog) AssistantLink(key staffSessionKey) (milp.VarID, bool) {
	id, ok := c.assistantLink[key]
	return id, ok
}

// must converts a catalog lookup into a variable handle, panicking on keys
// outside the declared domain: the generator enumerates only valid keys, so
// a miss is a bug, not an input error.
func must(id milp.VarID, ok bool) milp.VarID {
	if !ok {
		panic("model: variable lookup outside the declared domain")
	}
	return id
}
