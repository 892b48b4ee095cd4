package email

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/erpimport/internal/core"
)

type fakeDNS struct {
	mx       map[string][]*net.MX
	hosts    map[string][]string
	mxErr    error // Returned by LookupMX instead of "not found"
	hostsErr error // Returned by LookupHost instead of "not found"
}

func (f fakeDNS) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	if mx, ok := f.mx[name]; ok {
		return mx, nil
	}
	if f.mxErr != nil {
		return nil, f.mxErr
	}
	return nil, &net.DNSError{Err: "no such host", Name: name, IsNotFound: true}
}

func (f fakeDNS) LookupHost(_ context.Context, host string) ([]string, error) {
	if h, ok := f.hosts[host]; ok {
		return h, nil
	}
	if f.hostsErr != nil {
		return nil, f.hostsErr
	}
	return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
}

func TestValidate_Syntax(t *testing.T) {
	v := New(fakeDNS{})

	tests := []struct {
		addr string
		ok   bool
	}{
		{"jane.doe@example.com", true},
		{"jane+tag@sub.example.fr", true},
		{"jane.doe", false},
		{"jane@", false},
		{"@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			err := v.Validate(context.Background(), tt.addr, false)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrSyntax)
			}
		})
	}
}

func TestValidate_Deliverability(t *testing.T) {
	v := New(fakeDNS{
		mx: map[string][]*net.MX{
			"example.com": {{Host: "mx.example.com.", Pref: 10}},
			"nomail.com":  {{Host: ".", Pref: 0}},
		},
		hosts: map[string][]string{
			"a-only.org": {"192.0.2.1"},
		},
	})
	ctx := context.Background()

	require.NoError(t, v.Validate(ctx, "a@example.com", true))
	require.NoError(t, v.Validate(ctx, "a@a-only.org", true))

	err := v.Validate(ctx, "a@nomail.com", true)
	assert.True(t, errors.Is(err, ErrUndeliverable))

	err = v.Validate(ctx, "a@missing.invalid", true)
	assert.ErrorIs(t, err, ErrUndeliverable)
	assert.Contains(t, err.Error(), "missing.invalid")

	// Deliverability is skipped when not requested.
	assert.NoError(t, v.Validate(ctx, "a@missing.invalid", false))
}

func TestValidate_SyntaxMessage(t *testing.T) {
	err := New(fakeDNS{}).Validate(context.Background(), "john.example.com", false)
	require.ErrorIs(t, err, ErrSyntax)
	assert.Contains(t, err.Error(), `"john.example.com"`)
	assert.Contains(t, err.Error(), "email rule")
}

func TestValidate_LookupFailures(t *testing.T) {
	timeout := &net.DNSError{Err: "i/o timeout", Name: "gmail.com", IsTimeout: true}
	temporary := &net.DNSError{Err: "server misbehaving", Name: "gmail.com", IsTemporary: true}

	tests := []struct {
		name string
		dns  fakeDNS
	}{
		{"MX timeout", fakeDNS{mxErr: timeout, hostsErr: timeout}},
		{"MX temporary failure", fakeDNS{mxErr: temporary}},
		{"canceled lookup", fakeDNS{mxErr: context.Canceled}},
		{"no MX then host timeout", fakeDNS{hostsErr: timeout}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.dns).Validate(context.Background(), "jane.doe@gmail.com", true)
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrDeliverabilityUnknown)
			assert.NotErrorIs(t, err, ErrUndeliverable)
		})
	}
}
