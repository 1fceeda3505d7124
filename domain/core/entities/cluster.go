package entities

// Host is one machine in a cluster. Capacity and Used are numbers carried as
// strings because the store's number type is string-encoded on the wire.
// Identifier is opaque and may be empty; key presence is checked by the loader.
type Host struct {
	Identifier string `json:"identifier"`
	Capacity   string `json:"capacity" validate:"required,numeral"`
	Used       string `json:"used" validate:"required,numeral"`
}

// ClusterInfo is one cluster submission. ClusterID is the partition key of
// the stored record.
type ClusterInfo struct {
	ClusterID           string `json:"cluster_id" validate:"required,numeral"`
	SaturatedHostsCount string `json:"saturated_hosts_count" validate:"required,numeral"`
	Cluster             string `json:"cluster"`
	Hosts               []Host `json:"hosts" validate:"required,dive"`
}

// HostCount returns the number of hosts in the submission
func (c *ClusterInfo) HostCount() int {
	return len(c.Hosts)
}

// ClusterRecord is a cluster as it is stored, carrying the version token
// assigned at write time.
type ClusterRecord struct {
	ClusterInfo
	Version string `json:"version"`
}
