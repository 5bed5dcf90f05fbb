// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"grimm.is/lurewatch/internal/config"
	"grimm.is/lurewatch/internal/netutil"
)

func testPolicy() *Policy {
	return NewPolicy(config.DefaultAdminPorts, netutil.DefaultPrivateRanges)
}

func TestVisible(t *testing.T) {
	p := testPolicy()

	public := &Session{SrcIP: "198.51.100.7", DstPort: 2222, State: "ESTABLISHED"}
	private := &Session{SrcIP: "192.168.1.10", DstPort: 2222, State: "ESTABLISHED"}
	admin := &Session{SrcIP: "198.51.100.7", DstPort: 64295, State: "ESTABLISHED"}
	synSent := &Session{SrcIP: "198.51.100.7", DstPort: 2222, State: "SYN_SENT"}

	tests := []struct {
		name    string
		s       *Session
		toggles Toggles
		want    bool
	}{
		{"public passes defaults", public, DefaultToggles(), true},
		{"private hidden by default", private, DefaultToggles(), false},
		{"private shown when toggle off", private, Toggles{}, true},
		{"admin port hidden by default", admin, DefaultToggles(), false},
		{"admin port shown when toggle off", admin, Toggles{}, true},
		{"syn_sent passes in all mode", synSent, Toggles{}, true},
		{"syn_sent hidden in established mode", synSent, Toggles{EstablishedOnly: true}, false},
		{"established passes in established mode", public, Toggles{EstablishedOnly: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Visible(tt.s, tt.toggles))
		})
	}
}

func TestAdminPort(t *testing.T) {
	p := testPolicy()
	assert.True(t, p.AdminPort(64295))
	assert.True(t, p.AdminPort(64294))
	assert.True(t, p.AdminPort(64297))
	assert.False(t, p.AdminPort(2222))
}

func TestVisible_UnparsableSource(t *testing.T) {
	// A source that fails to parse is never classified as private.
	p := testPolicy()
	s := &Session{SrcIP: "not-an-ip", DstPort: 2222, State: "ESTABLISHED"}
	assert.True(t, p.Visible(s, Toggles{HidePrivate: true}))
}
