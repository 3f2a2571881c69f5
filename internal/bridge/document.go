package bridge

import (
	"strconv"
	"strings"
)

// SystemKey tags a Document with the bridge that wrote it. Loading a
// document with the wrong tag fails as a whole.
const SystemKey = "system"

// Document is the flat key/value form bridge state persists as. Every
// value is a string; missing keys fall back to per-field defaults on load.
type Document map[string]string

func (d Document) Set(key, value string) { d[key] = value }

func (d Document) Get(key, def string) string {
	if v, ok := d[key]; ok {
		return v
	}
	return def
}

func (d Document) SetFloat(key string, v float64) {
	d[key] = strconv.FormatFloat(v, 'g', -1, 64)
}

func (d Document) Float(key string, def float64) float64 {
	v, ok := d[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func (d Document) SetInt(key string, v int64) {
	d[key] = strconv.FormatInt(v, 10)
}

func (d Document) Int(key string, def int64) int64 {
	v, ok := d[key]
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func (d Document) SetBool(key string, v bool) {
	d[key] = strconv.FormatBool(v)
}

func (d Document) Bool(key string, def bool) bool {
	v, ok := d[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// SetFloats stores a sample series as a comma-joined list.
func (d Document) SetFloats(key string, vs []float64) {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	d[key] = strings.Join(parts, ",")
}

// Floats parses a comma-joined sample series, skipping malformed entries.
func (d Document) Floats(key string) []float64 {
	v, ok := d[key]
	if !ok || v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil {
			continue
		}
		out = append(out, f)
	}
	return out
}

// CheckSystem verifies the document's system tag.
func (d Document) CheckSystem(name string) bool {
	return d.Get(SystemKey, "") == name
}
