package model

import "time"

// Bounds for the clamped values.
const (
	PressureMin = 0.0
	PressureMax = 100.0
	LatencyMin  = 100
	LatencyMax  = 200
)

// Metrics is one immutable snapshot of the simulated lead-flow counters.
type Metrics struct {
	Leads             int     `json:"leads"`
	WarmLeads         int     `json:"warmLeads"`
	QualifiedLeads    int     `json:"qualifiedLeads"`
	ConversionRate    float64 `json:"conversionRate"`    // percent
	ThroughputPerHour float64 `json:"throughputPerHour"` // unclamped
	LatencyMs         int     `json:"latencyMs"`
}

// State is everything the generator owns: the pressure value plus metrics.
// Seq counts committed ticks.
type State struct {
	Timestamp time.Time `json:"timestamp"`
	Seq       uint64    `json:"seq"`
	Pressure  float64   `json:"pressure"`
	Metrics   Metrics   `json:"metrics"`
}

// Seed returns the fixed startup state.
func Seed() State {
	return State{
		Timestamp: time.Now(),
		Pressure:  78,
		Metrics: Metrics{
			Leads:             12482,
			WarmLeads:         3891,
			QualifiedLeads:    842,
			ConversionRate:    12.4,
			ThroughputPerHour: 1.2,
			LatencyMs:         140,
		},
	}
}

// Gauge holds render parameters derived from a pressure value.
type Gauge struct {
	TrackOffset float64 `json:"trackOffset"`
	ArcOffset   float64 `json:"arcOffset"`
	NeedleAngle float64 `json:"needleAngleDegrees"`
}

// Toast is the read-only view of the notification state.
// LeadID and Company are empty once dismissed.
type Toast struct {
	Visible bool   `json:"visible"`
	LeadID  string `json:"leadId,omitempty"`
	Company string `json:"companyName,omitempty"`
}

// Host is a best-effort description of the machine running the widget.
type Host struct {
	Hostname string        `json:"hostname,omitempty"`
	Platform string        `json:"platform,omitempty"`
	Uptime   time.Duration `json:"uptime,omitempty"`
	Load1    float64       `json:"load1"`
}

// Lead is a record the router can resolve a detail view for.
type Lead struct {
	ID             string `json:"id"`
	Company        string `json:"companyName"`
	Status         string `json:"status"`
	PotentialValue int64  `json:"potentialValue"` // whole dollars
}

// Frame is the triple handed to a presentation shell on every render.
type Frame struct {
	State    State `json:"state"`
	Gauge    Gauge `json:"gauge"`
	Toast    Toast `json:"toast"`
	Expanded bool  `json:"expanded"`
	Host     Host  `json:"host"`
}
