package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	tests := map[string]struct {
		input string
		want  string
	}{
		"ipv4 host":           {"203.0.113.47", "203.0.113.0"},
		"ipv4 network":        {"10.0.0.0", "10.0.0.0"},
		"ipv4 mapped in ipv6": {"::ffff:198.51.100.9", "198.51.100.0"},
		"ipv6 compressed":     {"2001:db8:85a3::8a2e:370:7334", "2001:db8:85a3::/48"},
		"ipv6 with zone":      {"fe80::1%eth0", "fe80::/48"},
		"ipv6 loopback":       {"::1", "::/48"},
		"empty":               {"", "unknown"},
		"unknown marker":      {"unknown", "unknown"},
		"garbage":             {"not-an-ip", "invalid"},
		"host and port":       {"203.0.113.47:8080", "invalid"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnonymizeIP(tt.input))
		})
	}
}

func TestAnonymizeIPHidesHost(t *testing.T) {
	assert.Equal(t, AnonymizeIP("192.0.2.1"), AnonymizeIP("192.0.2.254"),
		"hosts in one /24 are indistinguishable")
}
