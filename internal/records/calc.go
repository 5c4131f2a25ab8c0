package records

import (
	"math"
	"strconv"
	"strings"
)

// earthRadiusMiles fixes haversine output to statute miles.
const earthRadiusMiles = 3959.0

// haversineMiles returns the great-circle distance between two
// (longitude, latitude) pairs in statute miles.
func haversineMiles(lon1, lat1, lon2, lat2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := rlat2 - rlat1
	dlon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	return 2 * earthRadiusMiles * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// parseClock parses a HH:MM:SS clock time into seconds past midnight.
func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, invalidProperty("time %q is not in HH:MM:SS form", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, invalidProperty("time %q is not in HH:MM:SS form", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, invalidProperty("time %q is not in HH:MM:SS form", s)
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil || sec < 0 || sec > 59 {
		return 0, invalidProperty("time %q is not in HH:MM:SS form", s)
	}
	return h*3600 + m*60 + sec, nil
}

// parseVariance parses a signed ±HHMM UTC variance into seconds. The
// string must be exactly five characters starting with + or -.
func parseVariance(s string) (int, error) {
	if len(s) != 5 || (s[0] != '+' && s[0] != '-') {
		return 0, invalidProperty("UTC variance %q is not a signed HHMM offset", s)
	}
	h, err := strconv.Atoi(s[1:3])
	if err != nil {
		return 0, invalidProperty("UTC variance %q is not a signed HHMM offset", s)
	}
	m, err := strconv.Atoi(s[3:5])
	if err != nil {
		return 0, invalidProperty("UTC variance %q is not a signed HHMM offset", s)
	}
	secs := h*3600 + m*60
	if s[0] == '-' {
		return -secs, nil
	}
	return secs, nil
}

// elapsedSeconds computes the scheduled wall time between departure
// and arrival. Both clock readings are projected onto the same
// reference date with their variances applied; a reading pushed past
// midnight by that arithmetic rolls to the adjacent day and consumes
// the explicit days indicator instead of stacking on top of it. Any
// indicator days left over are added to the arrival side.
func elapsedSeconds(beginTime, beginVariance, endTime, endVariance string, daysIndicator int) (int64, error) {
	beginClock, err := parseClock(beginTime)
	if err != nil {
		return 0, err
	}
	endClock, err := parseClock(endTime)
	if err != nil {
		return 0, err
	}
	beginOff, err := parseVariance(beginVariance)
	if err != nil {
		return 0, err
	}
	endOff, err := parseVariance(endVariance)
	if err != nil {
		return 0, err
	}

	begin := beginClock + beginOff
	end := endClock + endOff

	consumed := 0
	for begin < 0 {
		begin += 86400
		consumed--
	}
	for begin >= 86400 {
		begin -= 86400
		consumed++
	}
	for end < 0 {
		end += 86400
		consumed++
	}
	for end >= 86400 {
		end -= 86400
		consumed--
	}

	if extra := daysIndicator - consumed; extra > 0 {
		end += extra * 86400
	}

	diff := int64(end - begin)
	if diff < 0 {
		diff = -diff
	}
	return diff, nil
}

// countWeeklyFrequency counts how many of the seven operating-day
// flags are set.
func countWeeklyFrequency(days []any) int {
	n := 0
	for _, d := range days {
		if b, ok := d.(bool); ok && b {
			n++
		}
	}
	return n
}
