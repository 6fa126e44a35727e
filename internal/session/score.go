package session

import "math"

// Score is derived from the answer log.
type Score struct {
	Correct  int
	Wrong    int
	TimedOut int
	Total    int

	// Points is Correct*5 - Wrong. Timeouts cost nothing.
	Points int

	// Accuracy is Correct/Total as a rounded percentage.
	Accuracy int

	IsPerfect bool

	// Completed is true when at least one answer was correct.
	Completed bool
}

// PointsPerCorrect and PointsPerWrong are the session score weights.
const (
	PointsPerCorrect = 5
	PointsPerWrong   = 1
)

func scoreOf(log []Answer) Score {
	var s Score
	for _, a := range log {
		switch {
		case a.TimedOut:
			s.TimedOut++
		case a.Correct:
			s.Correct++
		default:
			s.Wrong++
		}
	}
	s.Total = len(log)
	s.Points = s.Correct*PointsPerCorrect - s.Wrong*PointsPerWrong
	if s.Total > 0 {
		s.Accuracy = int(math.Round(float64(s.Correct) / float64(s.Total) * 100))
	}
	s.IsPerfect = s.Wrong == 0 && s.Correct == s.Total && s.Total > 0
	s.Completed = s.Correct > 0
	return s
}

// progressPercent returns index/length as a percentage.
func progressPercent(index, length int) float64 {
	if length == 0 {
		return 0
	}
	return float64(index) / float64(length) * 100
}
