package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Address is the flattened postal address of a contact.
type Address struct {
	Addr1   string
	Addr2   string
	City    string
	State   string
	Zip     string
	Country string
}

// Empty reports whether no address part is set.
func (a Address) Empty() bool {
	return a == Address{}
}

// String joins the non-empty address parts.
func (a Address) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Addr1, a.Addr2, a.City, a.State, a.Zip} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// MergeFields is the per-contact custom field payload, resolved once at decode
// time. The wire value is either a JSON object or a string holding encoded JSON.
type MergeFields struct {
	FirstName string
	LastName  string
	Address   Address
	Values    map[string]any
}

// UnmarshalJSON implements json.Unmarshaler. Malformed payloads decode to an
// empty value without error.
func (m *MergeFields) UnmarshalJSON(data []byte) error {
	*m = ResolveMergeFields(data)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (m MergeFields) MarshalJSON() ([]byte, error) {
	if m.Values == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m.Values)
}

// ResolveMergeFields decodes a raw merge_fields payload. Top-level CITY, STATE
// and ZIP take precedence over the nested ADDRESS object.
func ResolveMergeFields(raw []byte) MergeFields {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return MergeFields{}
		}
		raw = []byte(strings.TrimSpace(encoded))
	}
	if len(raw) == 0 || raw[0] != '{' {
		return MergeFields{}
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return MergeFields{}
	}

	out := MergeFields{
		FirstName: stringValue(values["FNAME"]),
		LastName:  stringValue(values["LNAME"]),
		Values:    values,
	}
	switch addr := values["ADDRESS"].(type) {
	case string:
		out.Address.Addr1 = addr
	case map[string]any:
		out.Address = Address{
			Addr1:   stringValue(addr["addr1"]),
			Addr2:   stringValue(addr["addr2"]),
			City:    stringValue(addr["city"]),
			State:   stringValue(addr["state"]),
			Zip:     stringValue(addr["zip"]),
			Country: stringValue(addr["country"]),
		}
	}
	if city := stringValue(values["CITY"]); city != "" {
		out.Address.City = city
	}
	if state := stringValue(values["STATE"]); state != "" {
		out.Address.State = state
	}
	if zip := stringValue(values["ZIP"]); zip != "" {
		out.Address.Zip = zip
	}
	return out
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
