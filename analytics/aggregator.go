package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/OxBryte/onchain-linktree/model"
)

const (
	topLinksLimit     = 10
	activeUsersLimit  = 10
	linkTypesLimit    = 5
	recentEventsLimit = 20
	dateFormat        = "2006-01-02"

	// Placeholder for events that carry no username or link key.
	unknown = "unknown"
)

// linkRef identifies one link of one profile. A structured key instead
// of a joined string, so usernames or keys containing separators never
// collide.
type linkRef struct {
	username string
	linkKey  string
}

// ComputeSnapshot derives the full dashboard aggregate from the event
// log contents. It is a pure function of its arguments: the same
// events and reference time always produce an identical snapshot, and
// output ordering is fully deterministic (ties broken alphabetically).
func ComputeSnapshot(events []model.Event, now time.Time) model.Snapshot {
	snap := model.Snapshot{
		TotalEvents:      len(events),
		TopLinks:         []model.LinkStats{},
		RecentActivity:   []model.Event{},
		HourlyBreakdown:  map[int]int{},
		DailyBreakdown:   map[string]int{},
		MostActiveUsers:  []model.UserActivity{},
		PopularLinkTypes: []model.LinkTypeStats{},
		UserGrowth:       []model.GrowthPoint{},
	}

	// Per-kind counts.
	for _, e := range events {
		switch e.Kind {
		case model.KindProfileView:
			snap.TotalProfileViews++
		case model.KindLinkClick:
			snap.TotalLinkClicks++
		case model.KindUserRegistered:
			snap.TotalRegistrations++
		case model.KindLinkAdded:
			snap.TotalLinksAdded++
		}
	}

	// Unique profile viewers.
	viewers := map[string]struct{}{}
	for _, e := range events {
		if e.Kind == model.KindProfileView {
			viewers[usernameOf(e)] = struct{}{}
		}
	}
	snap.UniqueViewers = len(viewers)

	// Top clicked links.
	clicksPerLink := map[linkRef]int{}
	for _, e := range events {
		if e.Kind == model.KindLinkClick {
			clicksPerLink[linkRef{username: e.Username, linkKey: e.LinkKey}]++
		}
	}
	for ref, count := range clicksPerLink {
		snap.TopLinks = append(snap.TopLinks, model.LinkStats{
			Username: ref.username,
			LinkKey:  ref.linkKey,
			Count:    count,
		})
	}
	sort.Slice(snap.TopLinks, func(i, j int) bool {
		a, b := snap.TopLinks[i], snap.TopLinks[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Username != b.Username {
			return a.Username < b.Username
		}
		return a.LinkKey < b.LinkKey
	})
	snap.TopLinks = truncateLinks(snap.TopLinks, topLinksLimit)

	// Most recent events across the whole log, newest first.
	start := len(events) - recentEventsLimit
	if start < 0 {
		start = 0
	}
	for i := len(events) - 1; i >= start; i-- {
		snap.RecentActivity = append(snap.RecentActivity, events[i])
	}

	// Hourly breakdown over the trailing 24 hours, bucketed by local
	// wall-clock hour rather than a rolling window.
	cutoff24h := now.Add(-24 * time.Hour).UnixMilli()
	for _, e := range events {
		if e.Timestamp > cutoff24h {
			snap.HourlyBreakdown[time.UnixMilli(e.Timestamp).Hour()]++
		}
	}

	// Daily breakdown over the trailing 7 days.
	cutoff7d := now.Add(-7 * 24 * time.Hour).UnixMilli()
	for _, e := range events {
		if e.Timestamp > cutoff7d {
			snap.DailyBreakdown[time.UnixMilli(e.Timestamp).Format(dateFormat)]++
		}
	}

	// Most active users. Every event's username gets a rollup entry;
	// registrations contribute presence but no counter.
	rollups := map[string]*model.UserActivity{}
	for _, e := range events {
		name := usernameOf(e)
		entry, ok := rollups[name]
		if !ok {
			entry = &model.UserActivity{Username: name}
			rollups[name] = entry
		}
		switch e.Kind {
		case model.KindProfileView:
			entry.Views++
		case model.KindLinkClick:
			entry.Clicks++
		case model.KindLinkAdded:
			entry.Links++
		}
	}
	for _, entry := range rollups {
		entry.Total = entry.Views + entry.Clicks + entry.Links
		snap.MostActiveUsers = append(snap.MostActiveUsers, *entry)
	}
	sort.Slice(snap.MostActiveUsers, func(i, j int) bool {
		a, b := snap.MostActiveUsers[i], snap.MostActiveUsers[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Username < b.Username
	})
	if len(snap.MostActiveUsers) > activeUsersLimit {
		snap.MostActiveUsers = snap.MostActiveUsers[:activeUsersLimit]
	}

	// Popular link types (lowercased key across all clicks).
	typeCounts := map[string]int{}
	for _, e := range events {
		if e.Kind != model.KindLinkClick {
			continue
		}
		linkType := unknown
		if e.LinkKey != "" {
			linkType = strings.ToLower(e.LinkKey)
		}
		typeCounts[linkType]++
	}
	for linkType, count := range typeCounts {
		snap.PopularLinkTypes = append(snap.PopularLinkTypes, model.LinkTypeStats{Type: linkType, Count: count})
	}
	sort.Slice(snap.PopularLinkTypes, func(i, j int) bool {
		a, b := snap.PopularLinkTypes[i], snap.PopularLinkTypes[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Type < b.Type
	})
	if len(snap.PopularLinkTypes) > linkTypesLimit {
		snap.PopularLinkTypes = snap.PopularLinkTypes[:linkTypesLimit]
	}

	// User growth: cumulative registration ordinal by timestamp.
	registrations := make([]model.Event, 0, snap.TotalRegistrations)
	for _, e := range events {
		if e.Kind == model.KindUserRegistered {
			registrations = append(registrations, e)
		}
	}
	sort.SliceStable(registrations, func(i, j int) bool {
		return registrations[i].Timestamp < registrations[j].Timestamp
	})
	for i, reg := range registrations {
		snap.UserGrowth = append(snap.UserGrowth, model.GrowthPoint{
			Date:  time.UnixMilli(reg.Timestamp).Format(dateFormat),
			Count: i + 1,
		})
	}

	// Averages, formatted to exactly two decimal places.
	snap.AvgLinksPerUser = average(snap.TotalLinksAdded, snap.TotalRegistrations)
	snap.AvgViewsPerUser = average(snap.TotalProfileViews, snap.TotalRegistrations)

	return snap
}

func usernameOf(e model.Event) string {
	if e.Username == "" {
		return unknown
	}
	return e.Username
}

func truncateLinks(links []model.LinkStats, limit int) []model.LinkStats {
	if len(links) > limit {
		return links[:limit]
	}
	return links
}

func average(numerator, denominator int) string {
	if numerator == 0 || denominator == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(numerator)/float64(denominator))
}
