// Package azdata binds streamtable.PartitionClient to Azure Data Tables via
// the official aztables SDK. It is the production backend; internal/fakeclient
// provides the in-memory equivalent used by the root package's own tests.
package azdata

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streamtable/streamtable"
)

// toEntityMap flattens a Row into the plain map[string]any shape aztables
// marshals to JSON on the wire, typed attributes included (the backend's
// scalar set is string, bool, int32, int64, float64, []byte, time.Time).
func toEntityMap(row streamtable.Row) (map[string]any, error) {
	m := map[string]any{
		"PartitionKey": row.PartitionKey,
		"RowKey":       row.RowKey,
	}
	for k, v := range row.Properties {
		switch val := v.(type) {
		case []byte:
			m[k] = base64.StdEncoding.EncodeToString(val)
			m[k+"@odata.type"] = "Edm.Binary"
		case time.Time:
			m[k] = val.UTC().Format(time.RFC3339Nano)
			m[k+"@odata.type"] = "Edm.DateTime"
		case int64:
			m[k] = val
			m[k+"@odata.type"] = "Edm.Int64"
		default:
			m[k] = v
		}
	}
	return m, nil
}

// marshalEntity is the []byte the SDK's transaction and single-entity calls
// expect.
func marshalEntity(row streamtable.Row) ([]byte, error) {
	m, err := toEntityMap(row)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("azdata: marshal entity: %w", err)
	}
	return b, nil
}

// fromEntityMap reconstructs a Row from the decoded wire map, reversing the
// @odata.type-driven typing toEntityMap applies.
func fromEntityMap(m map[string]any) (streamtable.Row, error) {
	row := streamtable.Row{
		Properties: streamtable.PropertyMap{},
	}
	for k, v := range m {
		switch k {
		case "PartitionKey":
			row.PartitionKey, _ = v.(string)
		case "RowKey":
			row.RowKey, _ = v.(string)
		case "odata.etag":
			if s, ok := v.(string); ok {
				row.ETag = streamtable.ETag(s)
			}
		case "Timestamp", "odata.type", "odata.id", "odata.editLink":
			// backend metadata, not a caller property
		default:
			if len(k) > 11 && k[len(k)-11:] == "@odata.type" {
				continue
			}
			row.Properties[k] = decodeTyped(m, k, v)
		}
	}
	return row, nil
}

func decodeTyped(m map[string]any, key string, raw any) any {
	switch m[key+"@odata.type"] {
	case "Edm.Binary":
		if s, ok := raw.(string); ok {
			if b, err := base64.StdEncoding.DecodeString(s); err == nil {
				return b
			}
		}
	case "Edm.DateTime":
		if s, ok := raw.(string); ok {
			if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
				return t
			}
		}
	case "Edm.Int64":
		switch n := raw.(type) {
		case float64:
			return int64(n)
		case json.Number:
			i, _ := n.Int64()
			return i
		}
	}
	return raw
}

func unmarshalEntity(b []byte) (streamtable.Row, error) {
	var m map[string]any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&m); err != nil {
		return streamtable.Row{}, fmt.Errorf("azdata: unmarshal entity: %w", err)
	}
	return fromEntityMap(m)
}
