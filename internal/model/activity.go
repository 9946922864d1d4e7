package model

import "time"

// Activity is one cleaned run from an activity export.
// Distances are miles, times minutes, speeds as exported divided by 0.621371, elevation feet.
type Activity struct {
	Date          time.Time
	Type          string
	MovingTime    float64
	Distance      float64
	MaxSpeed      float64
	AverageSpeed  float64
	ElevationGain float64
	Speed         float64
}
