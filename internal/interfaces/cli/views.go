package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/coalition-intelligence/internal/application/forecast"
	"github.com/turtacn/coalition-intelligence/internal/domain/coalition"
	"github.com/turtacn/coalition-intelligence/internal/infrastructure/database/postgres/repositories"
)

// Result views adapt application results to tableProvider. Each embeds or
// aliases its result so JSON output is unchanged.

func f2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
func f1(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// ─────────────────────────────────────────────────────────────────────────────
// predict
// ─────────────────────────────────────────────────────────────────────────────

type reportView struct {
	*forecast.Report
}

func (v reportView) Summary() string {
	topics := "off"
	if v.Topics {
		topics = "on"
	}
	return fmt.Sprintf("Year %d  profile %s  seats from %s  threshold %d  topics %s  evaluated %d  feasible %d  (%s)",
		v.Year, v.Profile, v.SeatsSource, v.Threshold, topics, v.Evaluated, v.Feasible, v.Elapsed.Round(time.Millisecond))
}

func (v reportView) TableHeaders() []string {
	return []string{"RANK", "COALITION", "SEATS", "HIST", "IDEO", "EK", "EK SEATS", "JSD", "PARTIES", "SURPLUS", "RAW", "SCORE"}
}

func (v reportView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Candidates))
	for i, c := range v.Candidates {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.Coalition.String(),
			strconv.Itoa(c.Seats),
			f2(c.HistoricalScore),
			f2(c.IdeologyScore),
			f2(c.EKScore),
			strconv.Itoa(c.EKTotalSeats),
			f2(c.JSDPenalty),
			f2(c.PartyPenalty),
			f2(c.SurplusPenalty),
			f2(c.RawScore),
			f1(c.FinalScore),
		})
	}
	return rows
}

// ─────────────────────────────────────────────────────────────────────────────
// score
// ─────────────────────────────────────────────────────────────────────────────

type scoreView struct {
	*forecast.ScoreResult
}

func (v scoreView) Summary() string {
	return fmt.Sprintf("Year %d  profile %s  %s", v.Year, v.Profile, v.Coalition.Coalition)
}

func (v scoreView) TableHeaders() []string {
	return []string{"COMPONENT", "VALUE"}
}

func (v scoreView) TableRows() [][]string {
	c := v.Coalition
	violation := "none"
	if v.Checks.Violation != nil {
		violation = v.Checks.Violation[0] + " + " + v.Checks.Violation[1]
	}
	return [][]string{
		{"coalition", c.Coalition.String()},
		{"seats", strconv.Itoa(c.Seats)},
		{"historical", f2(c.HistoricalScore)},
		{"ideology", f2(c.IdeologyScore)},
		{"upper_chamber", f2(c.EKScore)},
		{"upper_chamber_seats", strconv.Itoa(c.EKTotalSeats)},
		{"divergence", f2(c.JSDPenalty)},
		{"party_penalty", f2(c.PartyPenalty)},
		{"surplus_penalty", f2(c.SurplusPenalty)},
		{"raw", f2(c.RawScore)},
		{"score", f1(c.FinalScore)},
		{"includes_largest", yesNo(v.Checks.IncludesLargest)},
		{"meets_threshold", fmt.Sprintf("%s (%d)", yesNo(v.Checks.MeetsThreshold), v.Threshold)},
		{"unrealistic_pair", violation},
		{"year_known", yesNo(v.Checks.YearKnown)},
		{"feasible", yesNo(v.Feasible)},
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// history
// ─────────────────────────────────────────────────────────────────────────────

type historyView []coalition.FrequencyEntry

func (v historyView) TableHeaders() []string {
	return []string{"RANK", "PARTIES", "SIZE", "CABINETS"}
}

func (v historyView) TableRows() [][]string {
	rows := make([][]string, 0, len(v))
	for i, e := range v {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			coalition.Coalition(e.Parties).String(),
			strconv.Itoa(len(e.Parties)),
			strconv.Itoa(e.Count),
		})
	}
	return rows
}

// ─────────────────────────────────────────────────────────────────────────────
// profiles
// ─────────────────────────────────────────────────────────────────────────────

type profileInfo struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Spaces           []string `json:"spaces"`
	Parties          int      `json:"parties"`
	UnrealisticPairs int      `json:"unrealistic_pairs"`
	Topics           bool     `json:"topics"`
}

func newProfileInfo(ref coalition.ReferenceData) profileInfo {
	info := profileInfo{
		Name:             ref.Name,
		Description:      ref.Description,
		UnrealisticPairs: len(ref.UnrealisticPairs),
		Topics:           ref.UseTopics,
	}
	parties := map[coalition.PartyID]struct{}{}
	for _, s := range ref.Spaces {
		info.Spaces = append(info.Spaces, fmt.Sprintf("%s(%dD, w=%s)", s.Name, s.Dimensions, strconv.FormatFloat(s.Weight, 'f', -1, 64)))
		for p := range s.Coordinates {
			parties[p] = struct{}{}
		}
	}
	info.Parties = len(parties)
	return info
}

type profilesView []profileInfo

func (v profilesView) TableHeaders() []string {
	return []string{"NAME", "SPACES", "PARTIES", "PAIRS", "TOPICS", "DESCRIPTION"}
}

func (v profilesView) TableRows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, p := range v {
		rows = append(rows, []string{
			p.Name,
			strings.Join(p.Spaces, " "),
			strconv.Itoa(p.Parties),
			strconv.Itoa(p.UnrealisticPairs),
			yesNo(p.Topics),
			p.Description,
		})
	}
	return rows
}

// ─────────────────────────────────────────────────────────────────────────────
// migrate
// ─────────────────────────────────────────────────────────────────────────────

type migrationStatus struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
}

func (v migrationStatus) TableHeaders() []string { return []string{"VERSION", "DIRTY"} }

func (v migrationStatus) TableRows() [][]string {
	return [][]string{{strconv.FormatUint(uint64(v.Version), 10), yesNo(v.Dirty)}}
}

// ─────────────────────────────────────────────────────────────────────────────
// import
// ─────────────────────────────────────────────────────────────────────────────

type importsView []*repositories.ImportRecord

func (v importsView) TableHeaders() []string {
	return []string{"ID", "SOURCE", "CABINETS", "LOWER YEARS", "UPPER YEARS", "TOPICS", "IMPORTED AT"}
}

func (v importsView) TableRows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, r := range v {
		rows = append(rows, []string{
			r.ID.String(),
			r.Source,
			strconv.Itoa(r.Cabinets),
			strconv.Itoa(r.LowerYears),
			strconv.Itoa(r.UpperYears),
			strconv.Itoa(r.Topics),
			r.ImportedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

type uploadedObject struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type uploadsView []uploadedObject

func (v uploadsView) TableHeaders() []string { return []string{"OBJECT", "BYTES"} }

func (v uploadsView) TableRows() [][]string {
	rows := make([][]string, 0, len(v))
	for _, o := range v {
		rows = append(rows, []string{o.Name, strconv.FormatInt(o.Size, 10)})
	}
	return rows
}

// ─────────────────────────────────────────────────────────────────────────────
// version
// ─────────────────────────────────────────────────────────────────────────────

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func (v versionInfo) TableHeaders() []string {
	return []string{"VERSION", "COMMIT", "BUILT", "GO", "PLATFORM"}
}

func (v versionInfo) TableRows() [][]string {
	return [][]string{{v.Version, v.Commit, v.BuildDate, v.GoVersion, v.Platform}}
}

//Personal.AI order the ending
