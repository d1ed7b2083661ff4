// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package urlutil simplifies URL manipulation on top of the standard
// library.
package urlutil

import (
	"net/url"
	"strings"
)

// Append safely appends path segments to a URL stem. Each segment is
// path-escaped, but slashes embedded inside a segment are preserved so
// callers can pass partial paths. Redundant separators between root and
// segments are collapsed.
func Append(root string, segments ...string) string {
	root = strings.TrimSuffix(root, "/")

	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		segment = strings.Trim(segment, "/")
		pieces := strings.Split(segment, "/")
		for i, piece := range pieces {
			pieces[i] = url.PathEscape(piece)
		}
		escaped = append(escaped, strings.Join(pieces, "/"))
	}

	return root + "/" + strings.Join(escaped, "/")
}
