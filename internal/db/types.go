package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringArray handles JSONB string arrays
type StringArray []string

// Scan implements the Scanner interface for StringArray
func (a *StringArray) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = []string{}
		return nil
	case []byte:
		return a.unmarshal(v)
	case string:
		return a.unmarshal([]byte(v))
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("string array element has type %T", item)
			}
			out = append(out, s)
		}
		*a = out
		return nil
	default:
		return fmt.Errorf("cannot scan %T into StringArray", src)
	}
}

func (a *StringArray) unmarshal(data []byte) error {
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode string array: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	*a = out
	return nil
}

// Value implements the Valuer interface for StringArray
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(a))
}
