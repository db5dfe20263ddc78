// Package models - chain of custody record for collected evidence
package models

import (
	"time"

	"github.com/google/uuid"
)

// CustodyRecord documents who collected the evidence, on which host, and
// when. It is embedded in the manifest so the collected tree carries its own
// provenance.
type CustodyRecord struct {
	// Unique identifier for this collection run (UUID v4)
	ID string `json:"id"`

	// Version of the tool that produced this record
	AgentVersion string `json:"agent_version"`

	// Hostname of the machine the evidence was collected from
	AgentHostname string `json:"agent_hostname"`

	// Username that executed the collection
	AgentUser string `json:"agent_user"`

	// UTC timestamp when collection started
	StartTimestamp time.Time `json:"start_timestamp"`

	// UTC timestamp when collection completed
	EndTimestamp time.Time `json:"end_timestamp"`

	// Duration of the collection process
	Duration string `json:"duration"`

	// Total number of items recorded in the manifest
	ItemCount int `json:"item_count"`

	// Total bytes copied to the destination
	TotalSizeBytes uint64 `json:"total_size_bytes"`
}

// NewCustodyRecord creates a custody record with a fresh ID and the start
// timestamp set to now.
func NewCustodyRecord(version, hostname, username string) CustodyRecord {
	return CustodyRecord{
		ID:             uuid.New().String(),
		AgentVersion:   version,
		AgentHostname:  hostname,
		AgentUser:      username,
		StartTimestamp: time.Now().UTC(),
	}
}

// Finalize closes the record with the end timestamp and totals.
func (c *CustodyRecord) Finalize(itemCount int, totalBytes uint64) {
	c.EndTimestamp = time.Now().UTC()
	c.Duration = c.EndTimestamp.Sub(c.StartTimestamp).String()
	c.ItemCount = itemCount
	c.TotalSizeBytes = totalBytes
}
