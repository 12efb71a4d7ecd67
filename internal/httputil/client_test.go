package httputil

import (
	"net"
	"testing"
)

func TestValidateIP(t *testing.T) {
	tests := []struct {
		ip      string
		blocked bool
	}{
		{"8.8.8.8", false},
		{"140.82.112.3", false},
		{"10.0.0.1", true},
		{"172.16.0.1", true},
		{"192.168.1.1", true},
		{"127.0.0.1", true},
		{"169.254.169.254", true},
		{"224.0.0.1", true},
		{"0.0.0.0", true},
		{"::1", true},
		{"fe80::1", true},
		{"2606:4700:4700::1111", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			err := ValidateIP(net.ParseIP(tt.ip), tt.ip)
			if tt.blocked && err == nil {
				t.Errorf("ValidateIP(%s) should be blocked", tt.ip)
			}
			if !tt.blocked && err != nil {
				t.Errorf("ValidateIP(%s) unexpectedly blocked: %v", tt.ip, err)
			}
		})
	}
}

func TestNewSecureClientDefaults(t *testing.T) {
	c := NewSecureClient(ClientOptions{})
	if c.Timeout == 0 {
		t.Error("client must always carry a timeout")
	}
	if c.CheckRedirect == nil {
		t.Error("client must validate redirects")
	}
}

func TestRedirectCheckerRejectsPlainHTTP(t *testing.T) {
	check := redirectChecker(5)
	req := mustRequest(t, "http://example.com/file.zip")
	if err := check(req, nil); err == nil {
		t.Error("redirect to plain HTTP should be rejected")
	}
}
