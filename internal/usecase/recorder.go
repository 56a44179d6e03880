package usecase

import "time"

// Recorder receives job metrics from the services.
type Recorder interface {
	MatchesLoaded(n int)
	PlayersCreated(n int)
	PeriodRated(players int, elapsed time.Duration)
	SolverIterations(n int)
}

type nopRecorder struct{}

func (nopRecorder) MatchesLoaded(int)              {}
func (nopRecorder) PlayersCreated(int)             {}
func (nopRecorder) PeriodRated(int, time.Duration) {}
func (nopRecorder) SolverIterations(int)           {}
