package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/synscript/synscript/internal/server/realtime"
)

func TestParseChannels(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]bool
	}{
		{"empty means all", "", map[string]bool{
			realtime.ConcernSources: true, realtime.ConcernMembers: true, realtime.ConcernPresence: true,
		}},
		{"single", "sources", map[string]bool{realtime.ConcernSources: true}},
		{"subset with spaces", "members, presence", map[string]bool{
			realtime.ConcernMembers: true, realtime.ConcernPresence: true,
		}},
		{"unknown names dropped", "sources,bogus", map[string]bool{realtime.ConcernSources: true}},
		{"only unknown falls back to all", "bogus", map[string]bool{
			realtime.ConcernSources: true, realtime.ConcernMembers: true, realtime.ConcernPresence: true,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseChannels(tt.raw))
		})
	}
}
