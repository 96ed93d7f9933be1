// Package opendatahub provides an HTTP client for the Open Data Hub mobility API.
//
// # Overview
//
// parkdash needs exactly one endpoint: the latest "occupied" measurement of a
// set of ParkingStation nodes, in the flat representation.
//
//	GET /v2/flat,node/ParkingStation/occupied/latest
//	    ?limit=-1
//	    &where=scode.in.(%22103%22,%22104%22)
//	    &origin=webcomp-parking-dashboard
//
// Station codes are percent-encoded individually and quoted inside the
// where expression. limit=-1 asks for every row; origin tags the caller.
//
// # Client Usage
//
//	client, err := opendatahub.NewClient("https://mobility.api.opendatahub.com", opendatahub.Options{})
//	if err != nil {
//		return err
//	}
//	stations, err := client.FetchLatest(ctx, []string{"103", "104"})
//
// # Response Schema
//
// The payload is a JSON object whose data array holds one row per station.
// Station mirrors the fields parkdash reads (scode, sname, mvalue,
// mvalidtime, _timestamp, smetadata.capacity, smetadata.standard_name).
// Station.Record converts a row into a parking.Record, choosing the display
// name and the update timestamp.
//
// # Error Handling
//
// Errors are returned, never swallowed:
//
//   - "execute request": transport failure or timeout
//   - "api ... returned status N": HTTP status >= 400
//   - "decode response": the body is not the expected JSON
//
// Every request carries the caller's context; the client also enforces its own
// timeout so a stalled upstream cannot block a poll forever.
package opendatahub
