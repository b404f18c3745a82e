package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteResourceMetric writes one numeric resource measurement.
//
// This is the primary method for recording telemetry from mirrored
// resources. The write is non-blocking; data is batched and sent
// asynchronously.
//
// Parameters:
//   - resourceID: The resource's uid
//   - kind: The resource kind ("light", "temperature", ...)
//   - property: The property key that changed ("dimming", "temperature", ...)
//   - value: The numeric value to record
//
// Example:
//
//	client.WriteResourceMetric(id, "temperature", "temperature", 21.5)
//	client.WriteResourceMetric(id, "light", "dimming", 63.0)
func (c *Client) WriteResourceMetric(resourceID, kind, property string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"resource_metrics",
		map[string]string{
			"resource_id": resourceID,
			"kind":        kind,
			"property":    property,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteResourceState writes a boolean state transition as 0/1.
//
// Booleans dominate lighting telemetry (on/off, motion, contact);
// encoding them as numbers keeps them queryable alongside levels.
func (c *Client) WriteResourceState(resourceID, kind, property string, on bool) {
	value := 0.0
	if on {
		value = 1.0
	}
	c.WriteResourceMetric(resourceID, kind, property, value)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use when the timestamp is not "now" (e.g., replayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
