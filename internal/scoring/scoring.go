// Package scoring computes the affinity between a canonicalized request
// and each candidate specialist. Scoring is additive across independent
// signals with fixed point values; the values are part of the routing
// contract and must stay bit-for-bit stable for deterministic replays.
package scoring

import (
	"sort"
	"strings"
	"time"

	"github.com/linnemanlabs/counsel/internal/directory"
	"github.com/linnemanlabs/counsel/internal/roster"
)

// Point values for each signal.
const (
	availableBonus     = 25
	unavailablePenalty = -10
	perSlotBonus       = 2
	perSlotCap         = 15
	specialtyBonus     = 50
	locationBonus      = 30
	departmentBonus    = 20
	vipBonus           = 40
	sharedTagBonus     = 10
	empLocationBonus   = 15
	empDepartmentBonus = 10
)

// Defaults for Config zero values.
const (
	DefaultWindowDays = 7
	DefaultMinScore   = 20
)

// Config tunes the scorer.
type Config struct {
	// WindowDays is the availability look-ahead window.
	WindowDays int
	// MinScore is the qualification floor for SelectBest.
	MinScore int
}

func (c Config) windowDays() int {
	if c.WindowDays <= 0 {
		return DefaultWindowDays
	}
	return c.WindowDays
}

func (c Config) minScore() int {
	if c.MinScore <= 0 {
		return DefaultMinScore
	}
	return c.MinScore
}

// Request carries the canonical request fields the scorer compares.
// Employee metadata never appears here.
type Request struct {
	RequestType string
	Location    string
	Department  string
}

// Ranked is one scored candidate.
type Ranked struct {
	Specialist roster.Specialist
	Score      int
}

// Selection is the winning candidate with a human-readable justification.
type Selection struct {
	Specialist roster.Specialist
	Score      int
	Reason     string
}

// ScoreAndRank scores every candidate and returns them sorted descending
// by score. The sort is stable: equal-score candidates keep input order.
// The employee context is optional; all employee-derived bonuses simply
// do not apply when it is nil.
func ScoreAndRank(req Request, emp *directory.Employee, candidates []roster.Specialist, cfg Config, now time.Time) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))
	for _, s := range candidates {
		ranked = append(ranked, Ranked{Specialist: s, Score: score(req, emp, s, cfg, now)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// SelectBest returns the qualifying winner, or false when routing should
// fall back to the rule matcher. Routing never proceeds without a request
// type, and the best score must reach the qualification floor.
func SelectBest(req Request, emp *directory.Employee, candidates []roster.Specialist, cfg Config, now time.Time) (*Selection, bool) {
	if strings.TrimSpace(req.RequestType) == "" {
		return nil, false
	}

	ranked := ScoreAndRank(req, emp, candidates, cfg, now)
	if len(ranked) == 0 || ranked[0].Score < cfg.minScore() {
		return nil, false
	}

	best := ranked[0]
	return &Selection{
		Specialist: best.Specialist,
		Score:      best.Score,
		Reason:     reason(req, emp, best.Specialist, cfg, now),
	}, true
}

func score(req Request, emp *directory.Employee, s roster.Specialist, cfg Config, now time.Time) int {
	total := 0

	// Availability: reward open slots, actively penalize a full calendar.
	slots := s.Availability.SlotsWithin(cfg.windowDays(), now)
	if slots > 0 {
		total += availableBonus
		extra := slots * perSlotBonus
		if extra > perSlotCap {
			extra = perSlotCap
		}
		total += extra
	} else {
		total += unavailablePenalty
	}

	if specialtyMatches(req.RequestType, s.Specialties) {
		total += specialtyBonus
	}
	if containsFold(s.Locations, req.Location) {
		total += locationBonus
	}
	if containsFold(s.Departments, req.Department) {
		total += departmentBonus
	}

	if emp != nil {
		vip, shared := tagOverlap(emp.Tags, s.Tags)
		if vip {
			total += vipBonus
		}
		total += shared * sharedTagBonus

		// Employee-profile fallback bonuses are additive on top of the
		// request-based ones, so a specialist can still score on context
		// when the request omitted location or department.
		if containsFold(s.Locations, emp.Location) {
			total += empLocationBonus
		}
		if containsFold(s.Departments, emp.Department) {
			total += empDepartmentBonus
		}
	}

	return total
}

// reason lists the signals that fired, in fixed precedence: availability,
// specialty, location, department, VIP.
func reason(req Request, emp *directory.Employee, s roster.Specialist, cfg Config, now time.Time) string {
	var parts []string

	if s.Availability.SlotsWithin(cfg.windowDays(), now) > 0 {
		parts = append(parts, "available this week")
	}
	if specialtyMatches(req.RequestType, s.Specialties) {
		parts = append(parts, "specialty match")
	}
	if containsFold(s.Locations, req.Location) {
		parts = append(parts, "location match")
	}
	if containsFold(s.Departments, req.Department) {
		parts = append(parts, "department match")
	}
	if emp != nil {
		if vip, _ := tagOverlap(emp.Tags, s.Tags); vip {
			parts = append(parts, "VIP coverage")
		}
	}

	if len(parts) == 0 {
		return "best available match"
	}
	return strings.Join(parts, ", ")
}

// specialtyMatches is a bidirectional substring check so "Sales Contract"
// matches a specialty named "Contract" and a specialty of "Contract
// Review" matches a request of "Contract".
func specialtyMatches(requestType string, specialties []string) bool {
	rt := strings.ToLower(strings.TrimSpace(requestType))
	if rt == "" {
		return false
	}
	for _, sp := range specialties {
		s := strings.ToLower(strings.TrimSpace(sp))
		if s == "" {
			continue
		}
		if strings.Contains(s, rt) || strings.Contains(rt, s) {
			return true
		}
	}
	return false
}

func containsFold(haystack []string, needle string) bool {
	n := strings.ToLower(strings.TrimSpace(needle))
	if n == "" {
		return false
	}
	for _, h := range haystack {
		if strings.ToLower(strings.TrimSpace(h)) == n {
			return true
		}
	}
	return false
}

// tagOverlap reports whether both sides carry the "vip" tag, and how many
// other tags they share (case-insensitive, vip excluded from the count).
func tagOverlap(empTags, specTags []string) (vip bool, shared int) {
	empSet := make(map[string]bool, len(empTags))
	for _, t := range empTags {
		empSet[strings.ToLower(strings.TrimSpace(t))] = true
	}

	seen := make(map[string]bool, len(specTags))
	for _, t := range specTags {
		tag := strings.ToLower(strings.TrimSpace(t))
		if tag == "" || seen[tag] || !empSet[tag] {
			continue
		}
		seen[tag] = true
		if tag == "vip" {
			vip = true
			continue
		}
		shared++
	}
	return vip, shared
}
