package neows

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ParseFeed decodes a NeoWs feed body and flattens it into approaches sorted
// by close-approach time. Objects without a usable close-approach record are
// skipped with a warning log.
func ParseFeed(r io.Reader, logger *slog.Logger) ([]Approach, error) {
	var feed FeedResponse
	if err := json.NewDecoder(r).Decode(&feed); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}

	dates := make([]string, 0, len(feed.NearEarthObjects))
	for d := range feed.NearEarthObjects {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	var approaches []Approach
	for _, d := range dates {
		for _, obj := range feed.NearEarthObjects[d] {
			a, err := toApproach(obj)
			if err != nil {
				logger.Warn("skipping feed entry", "date", d, "id", obj.ID, "name", obj.Name, "error", err)
				continue
			}
			approaches = append(approaches, a)
		}
	}

	sort.SliceStable(approaches, func(i, j int) bool {
		if !approaches[i].ApproachTime.Equal(approaches[j].ApproachTime) {
			return approaches[i].ApproachTime.Before(approaches[j].ApproachTime)
		}
		return approaches[i].ID < approaches[j].ID
	})

	return approaches, nil
}

func toApproach(obj Object) (Approach, error) {
	if obj.ID == "" {
		return Approach{}, fmt.Errorf("missing id")
	}
	if len(obj.CloseApproachData) == 0 {
		return Approach{}, fmt.Errorf("no close approach data")
	}
	ca := obj.CloseApproachData[0]

	velocity, err := parseNumber(ca.RelativeVelocity.KilometersPerSecond)
	if err != nil {
		return Approach{}, fmt.Errorf("relative velocity: %w", err)
	}
	miss, err := parseNumber(ca.MissDistance.Kilometers)
	if err != nil {
		return Approach{}, fmt.Errorf("miss distance: %w", err)
	}

	date := ca.DateFull
	if date == "" {
		date = ca.Date
	}

	return Approach{
		ID:             obj.ID,
		Name:           obj.Name,
		Hazardous:      obj.IsPotentiallyHazardous,
		DiameterMinM:   round2(obj.EstimatedDiameter.Meters.Min),
		DiameterMaxM:   round2(obj.EstimatedDiameter.Meters.Max),
		ApproachDate:   date,
		ApproachTime:   time.UnixMilli(ca.EpochMillis).UTC(),
		VelocityKPS:    round2(velocity),
		MissDistanceKM: round2(miss),
	}, nil
}

// parseNumber parses a NeoWs string-encoded number. Empty means zero.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
