package events

import (
	"time"
)

// DomainEvent is the base interface for all domain events
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
}

// SourceIngest is the event source name for everything this service emits
const SourceIngest = "allot.ingest"

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }

// ClusterRecorded is raised after a cluster record was written
type ClusterRecorded struct {
	BaseEvent
	ClusterID          string `json:"cluster_id"`
	Cluster            string `json:"cluster"`
	Version            string `json:"version"`
	HostCount          int    `json:"host_count"`
	CapacityViolations int    `json:"capacity_violations"`
}

// NewClusterRecorded creates a ClusterRecorded event
func NewClusterRecorded(clusterID, cluster, version string, hostCount, violations int, timestamp time.Time) ClusterRecorded {
	return ClusterRecorded{
		BaseEvent: BaseEvent{
			AggregateID: clusterID,
			EventType:   "cluster.recorded",
			Timestamp:   timestamp,
		},
		ClusterID:          clusterID,
		Cluster:            cluster,
		Version:            version,
		HostCount:          hostCount,
		CapacityViolations: violations,
	}
}

// CapacityExceeded is raised for each host whose usage exceeds its capacity
type CapacityExceeded struct {
	BaseEvent
	ClusterID string `json:"cluster_id"`
	HostID    string `json:"host_id"`
	Capacity  string `json:"capacity"`
	Used      string `json:"used"`
}

// NewCapacityExceeded creates a CapacityExceeded event
func NewCapacityExceeded(clusterID, hostID, capacity, used string, timestamp time.Time) CapacityExceeded {
	return CapacityExceeded{
		BaseEvent: BaseEvent{
			AggregateID: clusterID,
			EventType:   "cluster.capacity_exceeded",
			Timestamp:   timestamp,
		},
		ClusterID: clusterID,
		HostID:    hostID,
		Capacity:  capacity,
		Used:      used,
	}
}
