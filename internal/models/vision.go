package models

// DetectedObject is a single detection result. Box2D holds
// [ymin, xmin, ymax, xmax] normalized to a 0-1000 scale.
type DetectedObject struct {
	Name  string `json:"name"`
	Box2D [4]int `json:"box_2d"`
}
