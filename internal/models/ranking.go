package models

// StudentAverage is a student's mean mark over every record they own.
type StudentAverage struct {
	AdmissionNumber string  `json:"admission_number"`
	Name            string  `json:"name"`
	Stream          string  `json:"stream"`
	Average         float64 `json:"average_marks"`
	Records         int     `json:"records"`
}

// RankedStudent is a StudentAverage with its 1-based position.
type RankedStudent struct {
	Rank int `json:"rank"`
	StudentAverage
}

// StreamAverage is the mean of per-student averages within a stream.
type StreamAverage struct {
	Stream   string  `json:"stream"`
	Average  float64 `json:"average_marks"`
	Students int     `json:"students"`
}

// TermAverage is the mean mark for one term label.
type TermAverage struct {
	Term    string  `json:"term"`
	Average float64 `json:"average_marks"`
}
