package sim

// Severity grades an alarm condition.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	}
	return "normal"
}

// Limits holds warning and critical trip points for one channel. Low
// limits are optional; a zero Limit is ignored.
type Limits struct {
	WarnHigh float64
	CritHigh float64
	WarnLow  float64
	CritLow  float64
	// DisplayLo/DisplayHi bound the gauge range for this channel.
	DisplayLo float64
	DisplayHi float64
}

// defaultLimits returns trip points scaled from plant ratings.
func defaultLimits(r Ratings) map[Channel]Limits {
	return map[Channel]Limits{
		ChanHotLeg: {
			WarnHigh: 327, CritHigh: 332,
			DisplayLo: 280, DisplayHi: 340,
		},
		ChanColdLeg: {
			WarnHigh: 300, CritHigh: 305,
			DisplayLo: 270, DisplayHi: 310,
		},
		ChanPressurizer: {
			WarnHigh: 16.2, CritHigh: 16.8, WarnLow: 14.5, CritLow: 13.8,
			DisplayLo: 12, DisplayHi: 18,
		},
		ChanFlow: {
			WarnLow: r.RatedFlowKgS * 0.92, CritLow: r.RatedFlowKgS * 0.85,
			DisplayLo: 0, DisplayHi: r.RatedFlowKgS * 1.1,
		},
		ChanPower: {
			WarnHigh: r.RatedPowerMW * 1.02, CritHigh: r.RatedPowerMW * 1.06,
			DisplayLo: 0, DisplayHi: r.RatedPowerMW * 1.1,
		},
	}
}

// grade classifies a reading against its limits.
func (l Limits) grade(v float64) Severity {
	if l.CritHigh != 0 && v >= l.CritHigh {
		return SeverityCritical
	}
	if l.CritLow != 0 && v <= l.CritLow {
		return SeverityCritical
	}
	if l.WarnHigh != 0 && v >= l.WarnHigh {
		return SeverityWarning
	}
	if l.WarnLow != 0 && v <= l.WarnLow {
		return SeverityWarning
	}
	return SeverityNormal
}

// AlarmEvent records a severity transition on one channel.
type AlarmEvent struct {
	Channel  Channel
	From     Severity
	To       Severity
	Value    float64
	AtTick   int
}

// Raised reports whether the event moved to a more severe state.
func (e AlarmEvent) Raised() bool { return e.To > e.From }

// evaluateAlarms compares a snapshot against limits and the previous
// severity per channel, returning transitions and the updated map.
func evaluateAlarms(s LoopState, limits map[Channel]Limits, prev map[Channel]Severity) ([]AlarmEvent, map[Channel]Severity) {
	next := make(map[Channel]Severity, len(limits))
	var events []AlarmEvent
	for _, ch := range Channels() {
		l, ok := limits[ch]
		if !ok {
			continue
		}
		sev := l.grade(s.Value(ch))
		next[ch] = sev
		if sev != prev[ch] {
			events = append(events, AlarmEvent{
				Channel: ch,
				From:    prev[ch],
				To:      sev,
				Value:   s.Value(ch),
				AtTick:  s.Tick,
			})
		}
	}
	return events, next
}
