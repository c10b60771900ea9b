// Package cachekey builds canonical cache keys. Keys are a pure,
// order-independent function of the logical parameters: params are sorted
// by name before encoding, so two requests with the same logical inputs
// always share one key.
package cachekey

import (
	"sort"
	"strconv"
	"strings"
)

// Separator delimits key segments.
const Separator = ":"

// Param is one named cache-key parameter.
type Param struct {
	Name  string
	Value string
}

// String creates a string parameter.
func String(name, value string) Param {
	return Param{Name: name, Value: value}
}

// Int creates an integer parameter.
func Int(name string, value int) Param {
	return Param{Name: name, Value: strconv.Itoa(value)}
}

// New encodes a cache key as prefix:op:name=value:... with params in
// name order.
func New(prefix, op string, params ...Param) string {
	sorted := make([]Param, len(params))
	copy(sorted, params)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(Separator)
	b.WriteString(op)
	for _, p := range sorted {
		b.WriteString(Separator)
		b.WriteString(escape(p.Name))
		b.WriteString("=")
		b.WriteString(escape(p.Value))
	}
	return b.String()
}

// escape keeps the separator and "=" unambiguous inside values.
var escaper = strings.NewReplacer(
	"%", "%25",
	Separator, "%3A",
	"=", "%3D",
)

func escape(s string) string {
	return escaper.Replace(s)
}
