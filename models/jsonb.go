package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonbValue marshals a value for storage in a JSONB column.
func jsonbValue(v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil // Return as string for JSONB type
}

// jsonbScan unmarshals a JSONB column into dst.
func jsonbScan(dst interface{}, value interface{}) error {
	if value == nil {
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal JSONB value: unsupported type %T", value)
	}

	return json.Unmarshal(data, dst)
}

// JSONMap is a free-form JSONB object, used for notification metadata.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	return jsonbValue(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	return jsonbScan(m, value)
}
