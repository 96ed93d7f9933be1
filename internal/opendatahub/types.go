package opendatahub

import (
	"math"
	"strings"

	"github.com/five82/parkdash/internal/parking"
)

// LatestResponse mirrors the flat,node "latest" measurement payload.
type LatestResponse struct {
	Offset int       `json:"offset"`
	Limit  int       `json:"limit"`
	Data   []Station `json:"data"`
}

// Station is one ParkingStation row with its latest "occupied" measurement.
type Station struct {
	Code      string          `json:"scode"`
	Name      string          `json:"sname"`
	Type      string          `json:"stype"`
	Origin    string          `json:"sorigin"`
	Value     float64         `json:"mvalue"`
	ValidTime string          `json:"mvalidtime"`
	Timestamp string          `json:"_timestamp"`
	Period    int             `json:"mperiod"`
	Metadata  StationMetadata `json:"smetadata"`
}

// StationMetadata holds the smetadata fields parkdash reads.
type StationMetadata struct {
	Capacity     float64 `json:"capacity"`
	StandardName string  `json:"standard_name"`
	Municipality string  `json:"municipality"`
}

const standardNamePrefix = "Parcheggio "

// DisplayName returns sname, or the metadata standard name without its
// "Parcheggio " prefix when preferStandard is set and one is present.
func (s Station) DisplayName(preferStandard bool) string {
	if preferStandard {
		if std := strings.TrimSpace(s.Metadata.StandardName); std != "" {
			return strings.TrimPrefix(std, standardNamePrefix)
		}
	}
	return s.Name
}

// UpdatedAt prefers the measurement valid time and falls back to _timestamp.
func (s Station) UpdatedAt() string {
	if v := strings.TrimSpace(s.ValidTime); v != "" {
		return v
	}
	return strings.TrimSpace(s.Timestamp)
}

// Record converts the wire row into a parking record.
func (s Station) Record(preferStandard bool) parking.Record {
	return parking.Record{
		Code:      s.Code,
		Name:      s.DisplayName(preferStandard),
		Occupied:  int(math.Round(s.Value)),
		Capacity:  int(math.Round(s.Metadata.Capacity)),
		UpdatedAt: s.UpdatedAt(),
	}
}

// Records converts a whole response in fetch order.
func Records(stations []Station, preferStandard bool) []parking.Record {
	out := make([]parking.Record, 0, len(stations))
	for _, s := range stations {
		out = append(out, s.Record(preferStandard))
	}
	return out
}
