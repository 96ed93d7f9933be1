package parking

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func stamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05.000-0700")
}

func TestNormalizeTimestamp(t *testing.T) {
	cases := map[string]string{
		"2021-12-26 07:05:03.000+0000":  "2021-12-26T07:05:03.000+00:00",
		"2021-12-26 07:05:03.000-0530":  "2021-12-26T07:05:03.000-05:30",
		"2021-12-26T07:05:03.000+00:00": "2021-12-26T07:05:03.000+00:00",
		"2021-12-26 07:05:03.000":       "2021-12-26T07:05:03.000",
		"2021-12-26":                    "2021-12-26",
		"  2021-12-26T07:05:03Z ":       "2021-12-26T07:05:03Z",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeTimestamp(in), "input %q", in)
	}
}

func TestParseTimestamp_NormalizationRoundTrip(t *testing.T) {
	loose, err := ParseTimestamp("2021-12-26 07:05:03.000+0000", nil)
	require.NoError(t, err)
	strict, err := ParseTimestamp("2021-12-26T07:05:03.000+00:00", nil)
	require.NoError(t, err)

	assert.True(t, loose.Equal(strict), "%v != %v", loose, strict)
	assert.True(t, loose.Equal(time.Date(2021, 12, 26, 7, 5, 3, 0, time.UTC)))
}

func TestParseTimestamp_NoOffsetUsesLocation(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	got, err := ParseTimestamp("2021-12-26 07:05:03.000", rome)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2021, 12, 26, 6, 5, 3, 0, time.UTC)), "got %v", got)
}

func TestParseTimestamp_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "yesterday", "2021-13-45 99:00:00"} {
		_, err := ParseTimestamp(raw, time.UTC)
		assert.Error(t, err, "input %q", raw)
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		occupied, capacity int
		want               int
		ok                 bool
	}{
		{90, 100, 90, true},
		{2, 3, 66, true},
		{29, 100, 29, true},
		{0, 10, 0, true},
		{120, 100, 120, true},
		{5, 0, 0, false},
		{5, -1, 0, false},
	}
	for _, tc := range cases {
		got, ok := Percentage(tc.occupied, tc.capacity)
		assert.Equal(t, tc.ok, ok, "%d/%d", tc.occupied, tc.capacity)
		assert.Equal(t, tc.want, got, "%d/%d", tc.occupied, tc.capacity)
	}
}

func TestClassify(t *testing.T) {
	th := DefaultThresholds()
	fresh := testNow.Add(-time.Minute)

	cases := []struct {
		name     string
		updated  time.Time
		occupied int
		capacity int
		want     Status
	}{
		{"critical above", fresh, 90, 100, StatusCritical},
		{"critical boundary", fresh, 80, 100, StatusCritical},
		{"warning just below red", fresh, 79, 100, StatusWarning},
		{"warning boundary", fresh, 50, 100, StatusWarning},
		{"normal below orange", fresh, 49, 100, StatusNormal},
		{"floor keeps 399/500 warning", fresh, 399, 500, StatusWarning},
		{"stale overrides percentage", testNow.Add(-20 * time.Minute), 95, 100, StatusStale},
		{"exactly at threshold is not stale", testNow.Add(-15 * time.Minute), 10, 100, StatusNormal},
		{"zero capacity", fresh, 10, 0, StatusStale},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.updated, tc.occupied, tc.capacity, testNow, th))
		})
	}
}

func TestBuild_TwoStationScenario(t *testing.T) {
	fresh := stamp(testNow.Add(-2 * time.Minute))
	records := []Record{
		{Code: "104", Name: "Stazione", Occupied: 40, Capacity: 100, UpdatedAt: fresh},
		{Code: "103", Name: "Centro", Occupied: 90, Capacity: 100, UpdatedAt: fresh},
	}

	cards, rejected := Build(records, testNow, Options{Thresholds: DefaultThresholds()})
	require.Empty(t, rejected)
	require.Len(t, cards, 2)

	assert.Equal(t, "Centro", cards[0].Name)
	assert.Equal(t, StatusCritical, cards[0].Status)
	assert.Equal(t, 90, cards[0].Percentage)
	assert.Equal(t, "Stazione", cards[1].Name)
	assert.Equal(t, StatusNormal, cards[1].Status)
	assert.Equal(t, 40, cards[1].Percentage)
}

func TestBuild_TwentyMinuteOldIsStale(t *testing.T) {
	records := []Record{{Code: "105", Name: "Fiera", Occupied: 10, Capacity: 100,
		UpdatedAt: stamp(testNow.Add(-20 * time.Minute))}}

	cards, _ := Build(records, testNow, Options{Thresholds: DefaultThresholds()})
	require.Len(t, cards, 1)
	assert.Equal(t, StatusStale, cards[0].Status)
}

func TestBuild_ExcludesExpiredAndUnparseable(t *testing.T) {
	records := []Record{
		{Code: "1", Name: "Old", Occupied: 1, Capacity: 10, UpdatedAt: stamp(testNow.AddDate(0, -1, -1))},
		{Code: "2", Name: "Broken", Occupied: 1, Capacity: 10, UpdatedAt: "not a date"},
		{Code: "3", Name: "Empty", Occupied: 1, Capacity: 10},
		{Code: "4", Name: "Recent", Occupied: 1, Capacity: 10, UpdatedAt: stamp(testNow.AddDate(0, 0, -20))},
	}

	cards, rejected := Build(records, testNow, Options{Thresholds: DefaultThresholds()})
	require.Len(t, cards, 1)
	assert.Equal(t, "Recent", cards[0].Name)
	assert.Equal(t, StatusStale, cards[0].Status)

	require.Len(t, rejected, 3)
	assert.Equal(t, RejectExpired, rejected[0].Reason)
	assert.Equal(t, RejectUnparseable, rejected[1].Reason)
	assert.Error(t, rejected[1].Err)
	assert.Equal(t, RejectUnparseable, rejected[2].Reason)
}

func TestBuild_ZeroCapacityIsUnknownAndStale(t *testing.T) {
	records := []Record{{Code: "9", Name: "Nowhere", Occupied: 3, Capacity: 0,
		UpdatedAt: stamp(testNow.Add(-time.Minute))}}

	cards, _ := Build(records, testNow, Options{Thresholds: DefaultThresholds()})
	require.Len(t, cards, 1)
	assert.False(t, cards[0].Known)
	assert.Equal(t, StatusStale, cards[0].Status)
}

func TestBuild_OrderIsNonDecreasingAndStable(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"b", "a", "B", "Zeta", "alpha", "a", "b", "Äpfel", ""}
	fresh := stamp(testNow.Add(-time.Minute))

	records := make([]Record, 0, 60)
	for i := 0; i < 60; i++ {
		records = append(records, Record{
			Code:      fmt.Sprint(i),
			Name:      names[rng.Intn(len(names))],
			Occupied:  rng.Intn(100),
			Capacity:  100,
			UpdatedAt: fresh,
		})
	}

	cards, _ := Build(records, testNow, Options{Thresholds: DefaultThresholds()})
	require.Len(t, cards, len(records))

	seen := map[string]int{}
	for i := 1; i < len(cards); i++ {
		assert.LessOrEqual(t, cards[i-1].Name, cards[i].Name)
	}
	for _, c := range cards {
		var code int
		_, _ = fmt.Sscan(c.Code, &code)
		if prev, ok := seen[c.Name]; ok {
			assert.Greater(t, code, prev, "equal names must keep fetch order")
		}
		seen[c.Name] = code
	}
}

func TestCounts(t *testing.T) {
	counts := Counts([]Card{{Status: StatusCritical}, {Status: StatusCritical}, {Status: StatusStale}})
	assert.Equal(t, map[Status]int{
		StatusCritical: 2,
		StatusWarning:  0,
		StatusNormal:   0,
		StatusStale:    1,
	}, counts)
}

func TestFreshnessCutoff(t *testing.T) {
	assert.Equal(t, testNow.AddDate(0, -1, 0), FreshnessCutoff(testNow, 0))
	assert.Equal(t, testNow.AddDate(0, -3, 0), FreshnessCutoff(testNow, 3))
}

func TestFilterFresh_KeepsInputOrder(t *testing.T) {
	recent := stamp(testNow.Add(-time.Hour))
	records := []Record{
		{Code: "2", Name: "b", UpdatedAt: recent},
		{Code: "1", Name: "a", UpdatedAt: stamp(testNow.AddDate(-1, 0, 0))},
		{Code: "3", Name: "c", UpdatedAt: recent},
	}

	fresh, rejected := FilterFresh(records, testNow, Options{FreshnessMonths: 1})
	require.Len(t, fresh, 2)
	assert.Equal(t, "2", fresh[0].Code)
	assert.Equal(t, "3", fresh[1].Code)
	assert.True(t, fresh[0].Updated.Equal(testNow.Add(-time.Hour)))
	require.Len(t, rejected, 1)
	assert.Equal(t, "1", rejected[0].Record.Code)
}
