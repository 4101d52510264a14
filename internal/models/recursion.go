package models

// RecursionRequest asks for recursions of a trajectory around locations.
// The trajectory is given inline or by the name of a stored dataset; when no
// locations are given every trajectory sample is used as a location.
type RecursionRequest struct {
	Dataset    string           `json:"dataset,omitempty"`
	Trajectory *TrajectoryInput `json:"trajectory,omitempty"`
	Locations  *LocationsInput  `json:"locations,omitempty"`

	Radius           float64 `json:"radius" binding:"required,gt=0"`
	Threshold        float64 `json:"threshold" binding:"gte=0"`
	TimeUnits        string  `json:"timeunits"` // secs, mins, hours, days
	Verbose          bool    `json:"verbose"`
	IncludeDistances bool    `json:"includeDistances"`
}

// TrajectoryInput holds samples column-wise. All columns must be equally long.
type TrajectoryInput struct {
	X  []float64 `json:"x" binding:"required"`
	Y  []float64 `json:"y" binding:"required"`
	T  []float64 `json:"t" binding:"required"` // Unix seconds
	ID []string  `json:"id"`                   // track identifiers, defaults to a single track
}

// LocationsInput holds locations of interest column-wise.
type LocationsInput struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// RecursionResult is the outcome of a recursion run
type RecursionResult struct {
	RunID         string        `json:"runId"`
	Revisits      []int         `json:"revisits"`
	ResidenceTime []float64     `json:"residenceTime"`
	Radius        float64       `json:"radius"`
	TimeUnits     string        `json:"timeunits"`
	Distances     [][]float64   `json:"dists,omitempty"`
	RevisitStats  []VisitRecord `json:"revisitStats,omitempty"`
}

// VisitRecord is one row of the verbose visit log
type VisitRecord struct {
	TrackID            string   `json:"id" db:"track_id"`
	X                  float64  `json:"x" db:"x"`
	Y                  float64  `json:"y" db:"y"`
	CoordIdx           int      `json:"coordIdx" db:"location_index"` // 1-based location index
	VisitIdx           int      `json:"visitIdx" db:"visit_index"`    // 1-based visit index within the location
	EntranceTime       float64  `json:"entranceTime" db:"entrance_time"`
	ExitTime           float64  `json:"exitTime" db:"exit_time"`
	TimeInside         float64  `json:"timeInside" db:"time_inside"`
	TimeSinceLastVisit *float64 `json:"timeSinceLastVisit" db:"time_since_last_visit"` // null for the first visit of a track
}

// RevisitSummary is the per-location outcome of a run
type RevisitSummary struct {
	LocationIndex int     `json:"locationIndex" db:"location_index"`
	X             float64 `json:"x" db:"x"`
	Y             float64 `json:"y" db:"y"`
	Revisits      int     `json:"revisits" db:"revisits"`
	ResidenceTime float64 `json:"residenceTime" db:"residence_time"`
}

// RecursionRun is the stored header of a run
type RecursionRun struct {
	ID            string  `json:"id" db:"id"`
	Dataset       string  `json:"dataset,omitempty" db:"dataset"`
	Radius        float64 `json:"radius" db:"radius"`
	Threshold     float64 `json:"threshold" db:"threshold"`
	TimeUnits     string  `json:"timeunits" db:"time_units"`
	Verbose       bool    `json:"verbose" db:"verbose"`
	SampleCount   int     `json:"sampleCount" db:"sample_count"`
	LocationCount int     `json:"locationCount" db:"location_count"`
	DurationMs    int64   `json:"durationMs" db:"duration_ms"`
	CreatedAt     string  `json:"createdAt,omitempty" db:"created_at"`
}

// RecursionRunDetail is a stored run with its results
type RecursionRunDetail struct {
	Run       RecursionRun     `json:"run"`
	Summaries []RevisitSummary `json:"summaries"`
	Visits    []VisitRecord    `json:"visits,omitempty"`
}

// RevisitPattern describes the regularity of returns to one location
type RevisitPattern struct {
	LocationIndex   int     `json:"locationIndex"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	VisitCount      int     `json:"visitCount"`
	FirstVisit      float64 `json:"firstVisit"` // Unix seconds
	LastVisit       float64 `json:"lastVisit"`  // Unix seconds
	TotalDuration   float64 `json:"totalDuration"`
	AvgInterval     float64 `json:"avgInterval"`
	StdInterval     float64 `json:"stdInterval"`
	MinInterval     float64 `json:"minInterval"`
	MaxInterval     float64 `json:"maxInterval"`
	RegularityScore float64 `json:"regularityScore"`
	IsPeriodic      bool    `json:"isPeriodic"`
	IsHabitual      bool    `json:"isHabitual"`
	RevisitStrength float64 `json:"revisitStrength"`
}
