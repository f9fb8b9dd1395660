package services

import (
	"math"

	"github.com/taskhive/backend/models"
)

// ComputeProgress returns the completion percentage of a child-set: the share
// of direct children whose status is Done, as a value in [0, 100] rounded to
// two decimal places. A set with no completed children yields 0, which also
// covers the empty set.
func ComputeProgress(children []models.Task) float64 {
	completed := 0
	for _, child := range children {
		if child.Status == models.TaskStatusDone {
			completed++
		}
	}
	if completed == 0 {
		return 0
	}
	progress := float64(completed) / float64(len(children)) * 100
	return math.Round(progress*100) / 100
}
