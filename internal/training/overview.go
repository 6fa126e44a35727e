package training

import (
	"github.com/abhisek/cybersage/internal/catalog"
	"github.com/abhisek/cybersage/internal/progress"
)

// Badge is the display state of a module.
type Badge string

const (
	BadgeLocked    Badge = "locked"
	BadgeReady     Badge = "ready"
	BadgeAvailable Badge = "available"
	BadgeCompleted Badge = "completed"
)

// ModuleCard is one module on the overview.
type ModuleCard struct {
	Module catalog.Module
	Badge  Badge
	Status progress.Status
}

// Overview is the learner's progress across the curriculum.
type Overview struct {
	// Modules are in topological order.
	Modules []ModuleCard

	Completed int
	Total     int

	// Percent is Completed/Total as a percentage.
	Percent float64

	// ReadyToUnlock counts modules whose dependencies are met but whose
	// unlock has not been announced.
	ReadyToUnlock int

	Points int
}

// Overview returns the learner's progress across every module.
func (o *Orchestrator) Overview() Overview {
	ov := Overview{
		Total:  o.catalog.Len(),
		Points: o.ledger.Balance(),
	}
	for _, m := range o.catalog.TopologicalOrder() {
		st, err := o.tracker.Status(m.ID)
		if err != nil {
			continue
		}
		card := ModuleCard{Module: m, Status: st, Badge: badgeFor(st)}
		switch card.Badge {
		case BadgeCompleted:
			ov.Completed++
		case BadgeReady:
			ov.ReadyToUnlock++
		}
		ov.Modules = append(ov.Modules, card)
	}
	if ov.Total > 0 {
		ov.Percent = float64(ov.Completed) / float64(ov.Total) * 100
	}
	return ov
}

func badgeFor(st progress.Status) Badge {
	switch {
	case st.Completed:
		return BadgeCompleted
	case st.CanUnlock:
		return BadgeReady
	case st.Unlocked:
		return BadgeAvailable
	}
	return BadgeLocked
}
