// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package urlutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppend(t *testing.T) {
	tests := []struct {
		name     string
		root     string
		segments []string
		want     string
	}{
		{"inserts slash when missing", "root", []string{"extension"}, "root/extension"},
		{"no unnecessary slash", "root/", []string{"extension"}, "root/extension"},
		{"multiple segments", "root", []string{"one", "two"}, "root/one/two"},
		{"keeps embedded path separators", "root", []string{"embedded/path"}, "root/embedded/path"},
		{"strips extra path separators", "root", []string{"extra/", "slash"}, "root/extra/slash"},
		{"escapes spaces", "root", []string{"needs escape"}, "root/needs%20escape"},
		{"escapes reserved characters", "root", []string{"a?b"}, "root/a%3Fb"},
		{"absolute base URL", "http://localhost:7474/db/data", []string{"node"}, "http://localhost:7474/db/data/node"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Append(tt.root, tt.segments...))
		})
	}
}
