package progress

import (
	"time"

	"github.com/example/toeicbot/pkg/models"
)

// Streak decides how a study event moves a learner's streak.
// Calendar days are taken in Location.
type Streak struct {
	Location *time.Location
}

// NewStreak creates a streak engine for the given time zone. A nil location means UTC.
func NewStreak(loc *time.Location) *Streak {
	if loc == nil {
		loc = time.UTC
	}
	return &Streak{Location: loc}
}

// StartOfDay drops the time of day from t in the engine's location
func (s *Streak) StartOfDay(t time.Time) time.Time {
	t = t.In(s.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.Location)
}

// DaysBetween returns the absolute number of calendar days between a and b.
func (s *Streak) DaysBetween(a, b time.Time) int {
	a, b = a.In(s.Location), b.In(s.Location)
	// Counting in UTC keeps DST transitions from producing 23 or 25 hour days
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	diff := int(db.Sub(da).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff
}

// RecordStudyEvent applies a study event at now to the profile and reports
// whether anything changed.
//
// Same calendar day as the last study date: no change. The very first event on
// the day the profile was created lands here too, so the streak stays at 0
// until the learner comes back the next day.
// Exactly one day later: the streak grows by one.
// More than one day: the streak restarts at 1.
func (s *Streak) RecordStudyEvent(p *models.LearnerProfile, now time.Time) bool {
	today := s.StartOfDay(now)
	last := s.StartOfDay(p.LastStudyDate)
	if today.Equal(last) {
		return false
	}

	if s.DaysBetween(last, today) == 1 {
		p.StreakDays++
	} else {
		p.StreakDays = 1
	}
	p.LastStudyDate = today
	return true
}

// AtRisk reports whether the learner has a running streak that ends unless
// they study today, i.e. the last study day was yesterday.
func (s *Streak) AtRisk(p *models.LearnerProfile, now time.Time) bool {
	if p.StreakDays <= 0 {
		return false
	}
	last := s.StartOfDay(p.LastStudyDate)
	today := s.StartOfDay(now)
	return last.Before(today) && s.DaysBetween(last, today) == 1
}
