package component

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrReservedMetadataKey is returned when a type's own metadata defines one of
// the fields the listing derives from the key ("name", "package").
var ErrReservedMetadataKey = errors.New("metadata redefines a reserved key")

// Reserved listing fields.
const (
	FieldName    = "name"
	FieldPackage = "package"
)

// TypeMetadata returns the listing value for a type: name and package merged
// with the type's metadata.
func TypeMetadata(pkg, name string, d Descriptor) (map[string]any, error) {
	md, err := d.GetMetadata()
	if err != nil {
		return nil, err
	}
	for _, reserved := range []string{FieldName, FieldPackage} {
		if _, ok := md[reserved]; ok {
			return nil, fmt.Errorf("%w: type %s.%s defines %q", ErrReservedMetadataKey, pkg, name, reserved)
		}
	}
	md[FieldName] = name
	md[FieldPackage] = pkg
	return md, nil
}

// KeyedMetadata splits a qualified key and returns its listing value.
func KeyedMetadata(key string, d Descriptor) (map[string]any, error) {
	pkg, name, err := SplitKey(key)
	if err != nil {
		return nil, err
	}
	return TypeMetadata(pkg, name, d)
}

// Listing is a JSON object that keeps its keys in insertion order.
type Listing struct {
	keys   []string
	values map[string]any
}

// NewListing returns an empty listing.
func NewListing() *Listing {
	return &Listing{values: make(map[string]any)}
}

// Set adds or replaces key. A new key is appended to the end.
func (l *Listing) Set(key string, value any) {
	if _, ok := l.values[key]; !ok {
		l.keys = append(l.keys, key)
	}
	l.values[key] = value
}

// Get returns the value stored under key.
func (l *Listing) Get(key string) (any, bool) {
	v, ok := l.values[key]
	return v, ok
}

// Keys returns keys in insertion order.
func (l *Listing) Keys() []string {
	return append([]string(nil), l.keys...)
}

// Len returns the number of entries.
func (l *Listing) Len() int {
	return len(l.keys)
}

// MarshalJSON writes the entries in insertion order.
func (l *Listing) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range l.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(l.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshaling %s: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
