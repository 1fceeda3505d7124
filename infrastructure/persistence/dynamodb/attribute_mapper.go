package dynamodb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/shijuleon/allot/domain/core/entities"
)

// Attribute names of a stored cluster record
const (
	attrClusterID           = "cluster_id"
	attrSaturatedHostsCount = "saturated_hosts_count"
	attrCluster             = "cluster"
	attrHosts               = "hosts"
	attrVersion             = "version"

	attrIdentifier = "identifier"
	attrCapacity   = "capacity"
	attrUsed       = "used"
)

// HostToAttributeMap converts a host into its item representation:
// identifier (S), capacity (N), used (N).
func HostToAttributeMap(h entities.Host) (map[string]types.AttributeValue, error) {
	return map[string]types.AttributeValue{
		attrIdentifier: &types.AttributeValueMemberS{Value: h.Identifier},
		attrCapacity:   &types.AttributeValueMemberN{Value: h.Capacity},
		attrUsed:       &types.AttributeValueMemberN{Value: h.Used},
	}, nil
}

// ClusterToAttributeMap converts a cluster into its item representation:
// cluster_id (N), saturated_hosts_count (N), cluster (S) and hosts, a list
// of host maps in input order. An empty host list maps to an empty L.
func ClusterToAttributeMap(c *entities.ClusterInfo) (map[string]types.AttributeValue, error) {
	if c == nil {
		return nil, fmt.Errorf("cannot map nil cluster")
	}

	hosts := make([]types.AttributeValue, 0, len(c.Hosts))
	for i, h := range c.Hosts {
		m, err := HostToAttributeMap(h)
		if err != nil {
			return nil, fmt.Errorf("failed to map host %d: %w", i, err)
		}
		hosts = append(hosts, &types.AttributeValueMemberM{Value: m})
	}

	return map[string]types.AttributeValue{
		attrClusterID:           &types.AttributeValueMemberN{Value: c.ClusterID},
		attrSaturatedHostsCount: &types.AttributeValueMemberN{Value: c.SaturatedHostsCount},
		attrCluster:             &types.AttributeValueMemberS{Value: c.Cluster},
		attrHosts:               &types.AttributeValueMemberL{Value: hosts},
	}, nil
}

// ClusterFromAttributeMap is the inverse of ClusterToAttributeMap. A stored
// version, when present, is carried on the record.
func ClusterFromAttributeMap(item map[string]types.AttributeValue) (*entities.ClusterRecord, error) {
	var (
		record entities.ClusterRecord
		err    error
	)

	if record.ClusterID, err = numberAttr(item, attrClusterID); err != nil {
		return nil, err
	}
	if record.SaturatedHostsCount, err = numberAttr(item, attrSaturatedHostsCount); err != nil {
		return nil, err
	}
	if record.Cluster, err = stringAttr(item, attrCluster); err != nil {
		return nil, err
	}
	if _, ok := item[attrVersion]; ok {
		if record.Version, err = stringAttr(item, attrVersion); err != nil {
			return nil, err
		}
	}

	list, ok := item[attrHosts].(*types.AttributeValueMemberL)
	if !ok {
		return nil, fmt.Errorf("attribute %q: expected L", attrHosts)
	}
	record.Hosts = make([]entities.Host, 0, len(list.Value))
	for i, av := range list.Value {
		m, ok := av.(*types.AttributeValueMemberM)
		if !ok {
			return nil, fmt.Errorf("attribute %q[%d]: expected M", attrHosts, i)
		}
		host, err := hostFromAttributeMap(m.Value)
		if err != nil {
			return nil, fmt.Errorf("attribute %q[%d]: %w", attrHosts, i, err)
		}
		record.Hosts = append(record.Hosts, host)
	}

	return &record, nil
}

func hostFromAttributeMap(item map[string]types.AttributeValue) (entities.Host, error) {
	var (
		host entities.Host
		err  error
	)
	if host.Identifier, err = stringAttr(item, attrIdentifier); err != nil {
		return host, err
	}
	if host.Capacity, err = numberAttr(item, attrCapacity); err != nil {
		return host, err
	}
	if host.Used, err = numberAttr(item, attrUsed); err != nil {
		return host, err
	}
	return host, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) (string, error) {
	v, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("attribute %q: expected S", name)
	}
	return v.Value, nil
}

func numberAttr(item map[string]types.AttributeValue, name string) (string, error) {
	v, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return "", fmt.Errorf("attribute %q: expected N", name)
	}
	return v.Value, nil
}
