package models

import (
	"math"
	"time"

	"github.com/jengzang/recurse-backend-go/internal/recurse"
)

// TrackPoint is one stored trajectory sample of a dataset
type TrackPoint struct {
	ID      int64   `json:"id" db:"id"`
	Dataset string  `json:"dataset" db:"dataset"`
	Seq     int     `json:"seq" db:"seq"` // position within the dataset, defines sample order
	TrackID string  `json:"trackId" db:"track_id"`
	X       float64 `json:"x" db:"x"`
	Y       float64 `json:"y" db:"y"`
	T       float64 `json:"t" db:"t"` // Unix timestamp in seconds, fractional allowed

	CreatedAt *string `json:"createdAt,omitempty" db:"created_at"`
}

// Sample converts the point to a recursion sample.
func (p TrackPoint) Sample() recurse.Sample {
	return recurse.Sample{X: p.X, Y: p.Y, T: FromUnixSeconds(p.T), TrackID: p.TrackID}
}

// TrackPointsResponse represents a paginated response of track points
type TrackPointsResponse struct {
	Data       []TrackPoint `json:"data"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	TotalPages int          `json:"totalPages"`
}

// TrackPointFilter represents filter parameters for querying track points
type TrackPointFilter struct {
	TrackID   string  `form:"trackId"`
	StartTime float64 `form:"startTime"` // Unix timestamp
	EndTime   float64 `form:"endTime"`   // Unix timestamp
	Page      int     `form:"page"`
	PageSize  int     `form:"pageSize"`
}

// UploadPointsRequest is the body of a dataset upload. Points are appended in
// the given order unless Replace is set.
type UploadPointsRequest struct {
	Points  []UploadPoint `json:"points" binding:"required,min=1,dive"`
	Replace bool          `json:"replace"`
}

// UploadPoint is one sample in an upload
type UploadPoint struct {
	TrackID string  `json:"trackId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	T       float64 `json:"t"`
}

// Dataset summarizes a stored trajectory
type Dataset struct {
	Name      string  `json:"name"`
	Points    int64   `json:"points"`
	Tracks    int64   `json:"tracks"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
}

// UnixSeconds converts t to fractional Unix seconds.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

// FromUnixSeconds converts fractional Unix seconds to a UTC time.
func FromUnixSeconds(secs float64) time.Time {
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(math.Round(frac*float64(time.Second)))).UTC()
}
