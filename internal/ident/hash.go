// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ident generates consistent identifiers for immutable objects.
//
// Identifiers are SHA-1 digests of a normalized, linearized rendering of
// an object's identifying data. Normalization lowercases strings and
// truncates sub-second precision from timestamps, so the same logical
// object always hashes to the same identifier regardless of input case
// or clock jitter. Identifiers are opaque: callers may compare them for
// equality but must not inspect or manipulate them.
package ident

import (
	"crypto/sha1"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Linearize renders a value into the canonical string form used for
// hashing. Maps become "{key=value,...}" with keys sorted, slices become
// "[elem,...]", strings are lowercased, and timestamps are formatted as
// ISO 8601 with sub-second precision dropped.
func Linearize(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.ToLower(val)
	case time.Time:
		return formatTime(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32)
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + "=" + Linearize(val[k])
		}
		return "{" + strings.Join(parts, ",") + "}"
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Linearize(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	}

	return fmt.Sprint(v)
}

// formatTime drops sub-second precision. Timestamps at exactly midnight
// render as bare dates, matching how date-only values are recorded.
func formatTime(t time.Time) string {
	t = t.Truncate(time.Second)
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02T15:04:05")
}

// GenerateHash returns the opaque identifier for an object of the given
// type with the given identifying data. The object type participates in
// the hash so a person and a source with identical data never collide.
func GenerateHash(objectType string, objectData map[string]any) string {
	payload := strings.ToLower(objectType) + "#" + Linearize(objectData)
	return fmt.Sprintf("%x", sha1.Sum([]byte(payload)))
}

// SourceID derives the identifier for a source from its title, type,
// and the day it was recorded.
func SourceID(title, sourceType string, day time.Time) string {
	payload := strings.Join([]string{
		"source", title, sourceType, day.Format("2006-01-02"),
	}, ":")
	return fmt.Sprintf("%x", sha1.Sum([]byte(payload)))
}
