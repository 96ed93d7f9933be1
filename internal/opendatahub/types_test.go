package opendatahub

import (
	"encoding/json"
	"testing"
)

func TestStationDisplayName(t *testing.T) {
	s := Station{Name: "P03 - Piazza Walther", Metadata: StationMetadata{StandardName: "Parcheggio Walther"}}
	if got := s.DisplayName(false); got != "P03 - Piazza Walther" {
		t.Fatalf("DisplayName(false) = %q", got)
	}
	if got := s.DisplayName(true); got != "Walther" {
		t.Fatalf("DisplayName(true) = %q, want prefix stripped", got)
	}
	s.Metadata.StandardName = "  "
	if got := s.DisplayName(true); got != "P03 - Piazza Walther" {
		t.Fatalf("DisplayName(true) without standard name = %q, want sname", got)
	}
}

func TestRecordsConvertsInFetchOrder(t *testing.T) {
	var payload LatestResponse
	if err := json.Unmarshal([]byte(samplePayload), &payload); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	records := Records(payload.Data, true)
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	first := records[0]
	if first.Code != "103" || first.Name != "Walther" || first.Occupied != 90 || first.Capacity != 100 {
		t.Fatalf("first record = %#v", first)
	}
	if first.UpdatedAt != "2021-12-26 07:05:03.000+0000" {
		t.Fatalf("first UpdatedAt = %q, want mvalidtime", first.UpdatedAt)
	}
	if records[1].Name != "P04 - Fiera" {
		t.Fatalf("second record name = %q, want sname fallback", records[1].Name)
	}
}

func TestRecordMissingCapacityIsZero(t *testing.T) {
	var s Station
	if err := json.Unmarshal([]byte(`{"scode":"9","sname":"x","mvalue":3}`), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if rec := s.Record(false); rec.Capacity != 0 || rec.Occupied != 3 {
		t.Fatalf("record = %#v, want capacity 0 occupied 3", rec)
	}
}
