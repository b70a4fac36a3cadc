package cache

import (
	"encoding/json"
)

// JSONSerializer JSON serializer
type JSONSerializer struct{}

// NewJSONSerializer creates the default serializer
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{}
}

// Serialize object to JSON
func (s *JSONSerializer) Serialize(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, ErrSerialize.Wrap(err)
	}
	return data, nil
}

// Deserialize JSON to object
func (s *JSONSerializer) Deserialize(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return ErrDeserialize.Wrap(err)
	}
	return nil
}

// Name returns the serializer name
func (s *JSONSerializer) Name() string {
	return "json"
}
