package market

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"candlekit/internal/domain"
)

const (
	DefaultKillzoneProfile = "ict_classic"

	defaultReferenceZone = "America/New_York"
	defaultDisplayZone   = "UTC"
)

// Killzone is a recurring intraday session window defined in the reference
// zone. A window whose end does not come after its start rolls over midnight.
type Killzone struct {
	Key   string
	Name  string
	Start string // HH:MM
	End   string // HH:MM
}

// KillzoneProfiles maps profile names to their session windows. The classic
// profile is referenced in New York time.
var KillzoneProfiles = map[string][]Killzone{
	"ict_classic": {
		{Key: "asia", Name: "Asia Kill Zone", Start: "20:00", End: "00:00"},
		{Key: "london", Name: "London Kill Zone", Start: "02:00", End: "05:00"},
		{Key: "newyork", Name: "New York Kill Zone", Start: "08:00", End: "11:00"},
	},
}

type KillzoneQuery struct {
	Date          string // YYYY-MM-DD in the reference zone, default today
	Profile       string
	ReferenceZone string
	DisplayZone   string
}

type KillzoneWindow struct {
	Key    string    `json:"key"`
	Name   string    `json:"name"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Active bool      `json:"active"`
}

type NextKillzone struct {
	Name     string    `json:"name"`
	Start    time.Time `json:"start"`
	StartsIn string    `json:"starts_in"`
}

// KillzoneReport lists the session windows for a date plus the following day
// so midnight-crossing windows are visible, flags the window the current time
// falls inside, and names the next one to open. Crypto trades around the
// clock; the windows are a liquidity timing lens, not trading hours.
type KillzoneReport struct {
	Profile       string           `json:"profile"`
	ReferenceZone string           `json:"reference_zone"`
	DisplayZone   string           `json:"display_zone"`
	Date          string           `json:"date"`
	Now           time.Time        `json:"now"`
	Windows       []KillzoneWindow `json:"windows"`
	Active        []string         `json:"active,omitempty"`
	Next          *NextKillzone    `json:"next,omitempty"`
}

// Killzones resolves the queried profile's windows against now. Activity and
// the next window are always judged against now, even when an explicit date
// is given. Window times in the report are converted to the display zone.
func Killzones(now time.Time, q KillzoneQuery) (*KillzoneReport, error) {
	profile := strings.ToLower(strings.TrimSpace(q.Profile))
	if profile == "" {
		profile = DefaultKillzoneProfile
	}
	zones, ok := KillzoneProfiles[profile]
	if !ok {
		return nil, &domain.ValidationError{Field: "profile", Reason: fmt.Sprintf("unknown killzone profile %q", profile)}
	}

	refLoc, err := loadZone(q.ReferenceZone, defaultReferenceZone, "reference_timezone")
	if err != nil {
		return nil, err
	}
	dispLoc, err := loadZone(q.DisplayZone, defaultDisplayZone, "timezone")
	if err != nil {
		return nil, err
	}

	nowRef := now.In(refLoc)
	day := nowRef
	if d := strings.TrimSpace(q.Date); d != "" {
		parsed, err := time.ParseInLocation("2006-01-02", d, refLoc)
		if err != nil {
			return nil, &domain.ValidationError{Field: "date", Reason: fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", d)}
		}
		day = parsed
	}

	windows := make([]KillzoneWindow, 0, 2*len(zones))
	for offset := 0; offset < 2; offset++ {
		for _, kz := range zones {
			start, end, err := sessionWindow(day, offset, kz, refLoc)
			if err != nil {
				return nil, err
			}
			windows = append(windows, KillzoneWindow{Key: kz.Key, Name: kz.Name, Start: start, End: end})
		}
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].Start.Before(windows[j].Start) })

	var active []string
	var next *NextKillzone
	for i := range windows {
		w := &windows[i]
		if !w.Start.After(nowRef) && nowRef.Before(w.End) {
			w.Active = true
			active = append(active, w.Name)
		}
		if w.Start.After(nowRef) && (next == nil || w.Start.Before(next.Start)) {
			next = &NextKillzone{Name: w.Name, Start: w.Start}
		}
	}
	if next != nil {
		next.StartsIn = formatUntil(next.Start.Sub(nowRef))
		next.Start = next.Start.In(dispLoc)
	}
	for i := range windows {
		windows[i].Start = windows[i].Start.In(dispLoc)
		windows[i].End = windows[i].End.In(dispLoc)
	}

	return &KillzoneReport{
		Profile:       profile,
		ReferenceZone: refLoc.String(),
		DisplayZone:   dispLoc.String(),
		Date:          day.Format("2006-01-02"),
		Now:           nowRef,
		Windows:       windows,
		Active:        active,
		Next:          next,
	}, nil
}

func sessionWindow(day time.Time, offset int, kz Killzone, loc *time.Location) (time.Time, time.Time, error) {
	sh, sm, err := parseHHMM(kz.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	eh, em, err := parseHHMM(kz.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	y, m, d := day.Date()
	start := time.Date(y, m, d+offset, sh, sm, 0, 0, loc)
	end := time.Date(y, m, d+offset, eh, em, 0, 0, loc)
	if !end.After(start) {
		end = time.Date(y, m, d+offset+1, eh, em, 0, 0, loc)
	}
	return start, end, nil
}

func parseHHMM(hhmm string) (int, int, error) {
	hs, ms, ok := strings.Cut(hhmm, ":")
	h, herr := strconv.Atoi(hs)
	mi, merr := strconv.Atoi(ms)
	if !ok || herr != nil || merr != nil || h < 0 || h > 23 || mi < 0 || mi > 59 {
		return 0, 0, &domain.ValidationError{Field: "window", Reason: fmt.Sprintf("invalid HH:MM time %q", hhmm)}
	}
	return h, mi, nil
}

func loadZone(name, def, field string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = def
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, &domain.ValidationError{Field: field, Reason: fmt.Sprintf("unknown timezone %q", name)}
	}
	return loc, nil
}

func formatUntil(d time.Duration) string {
	mins := int(d.Minutes())
	if mins >= 60 {
		return fmt.Sprintf("%dh %dm", mins/60, mins%60)
	}
	return fmt.Sprintf("%dm", mins)
}
