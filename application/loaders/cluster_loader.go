package loaders

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shijuleon/allot/domain/core/entities"
	"github.com/shijuleon/allot/domain/core/validators"
	appErrors "github.com/shijuleon/allot/pkg/errors"
)

// ClusterLoader turns a JSON cluster description into a ClusterInfo.
// Every field is mandatory and unknown fields are rejected.
type ClusterLoader struct {
	validate *validator.Validate
}

// NewClusterLoader creates a loader with the cluster schema rules
func NewClusterLoader() *ClusterLoader {
	return &ClusterLoader{validate: validators.NewSchemaValidator()}
}

// OpenPath opens the file at path for reading
func (l *ClusterLoader) OpenPath(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, appErrors.NewIOError(path, err)
	}
	return f, nil
}

// ReadCluster buffers the whole of r and parses it as a ClusterInfo
func (l *ClusterLoader) ReadCluster(r io.Reader) (*entities.ClusterInfo, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return nil, appErrors.NewIOError(sourceName(r), err)
	}
	return l.Parse(contents)
}

// Parse decodes an in-memory cluster description
func (l *ClusterLoader) Parse(contents []byte) (*entities.ClusterInfo, error) {
	dec := json.NewDecoder(bytes.NewReader(contents))
	dec.DisallowUnknownFields()

	var cluster entities.ClusterInfo
	if err := dec.Decode(&cluster); err != nil {
		return nil, appErrors.NewParseError("malformed cluster record", err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, appErrors.NewParseError("trailing data after cluster record", err)
	}

	if err := checkKeys(contents); err != nil {
		return nil, err
	}
	if err := l.validate.Struct(cluster); err != nil {
		return nil, schemaError(err)
	}

	return &cluster, nil
}

// LoadFromPath opens, reads and parses the file at path
func (l *ClusterLoader) LoadFromPath(path string) (*entities.ClusterInfo, error) {
	f, err := l.OpenPath(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return l.ReadCluster(f)
}

func schemaError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.NewParseError("invalid cluster record", err)
	}

	details := make(map[string]interface{}, len(fieldErrs))
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details[fe.Namespace()] = fe.Tag()
		fields = append(fields, fe.Namespace())
	}

	return appErrors.NewParseError("invalid cluster record: "+strings.Join(fields, ", "), err).
		WithDetails(details)
}

func sourceName(r io.Reader) string {
	if f, ok := r.(*os.File); ok {
		return f.Name()
	}
	return "input"
}

// schemaField pairs a JSON key with the struct namespace used in error details
type schemaField struct {
	key   string
	field string
}

var (
	clusterFields = []schemaField{
		{key: "cluster_id", field: "ClusterID"},
		{key: "saturated_hosts_count", field: "SaturatedHostsCount"},
		{key: "cluster", field: "Cluster"},
		{key: "hosts", field: "Hosts"},
	}
	hostFields = []schemaField{
		{key: "identifier", field: "Identifier"},
		{key: "capacity", field: "Capacity"},
		{key: "used", field: "Used"},
	}
)

// checkKeys requires every key to be present, non-null and spelled exactly.
// encoding/json matches keys case-insensitively, so "CLUSTER_ID" would
// otherwise fill ClusterID. Empty strings are values, not missing keys.
func checkKeys(contents []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(contents, &doc); err != nil {
		return appErrors.NewParseError("malformed cluster record", err)
	}

	details := make(map[string]interface{})
	fields := make([]string, 0)
	note := func(namespace, problem string) {
		details[namespace] = problem
		fields = append(fields, namespace)
	}

	checkObject(doc, "ClusterInfo", clusterFields, note)

	if raw, ok := doc["hosts"]; ok && !isNull(raw) {
		var hosts []map[string]json.RawMessage
		if err := json.Unmarshal(raw, &hosts); err != nil {
			return appErrors.NewParseError("malformed host list", err)
		}
		for i, host := range hosts {
			checkObject(host, fmt.Sprintf("ClusterInfo.Hosts[%d]", i), hostFields, note)
		}
	}

	if len(fields) == 0 {
		return nil
	}
	sort.Strings(fields)
	return appErrors.NewParseError("invalid cluster record: "+strings.Join(fields, ", "), nil).
		WithDetails(details)
}

func checkObject(obj map[string]json.RawMessage, prefix string, want []schemaField, note func(namespace, problem string)) {
	known := make(map[string]bool, len(want))
	for _, f := range want {
		known[f.key] = true
		if raw, ok := obj[f.key]; !ok || isNull(raw) {
			note(prefix+"."+f.field, "required")
		}
	}
	for key := range obj {
		if !known[key] {
			note(prefix+"."+key, "unknown")
		}
	}
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
