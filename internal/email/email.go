// Package email checks e-mail syntax and, optionally, that the domain can
// receive mail.
package email

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/erpimport/internal/core"
)

var (
	ErrSyntax        = errors.New("the email address is not valid")
	ErrUndeliverable = errors.New("the domain name does not accept email")
)

// Lookup is the part of net.Resolver used for deliverability.
type Lookup interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Validator implements core.EmailValidator.
type Validator struct {
	validate *validator.Validate
	dns      Lookup
}

// New returns a validator. A nil lookup uses net.DefaultResolver.
func New(dns Lookup) *Validator {
	if dns == nil {
		dns = net.DefaultResolver
	}
	return &Validator{validate: validator.New(), dns: dns}
}

// Validate returns nil when addr is acceptable.
//
// A domain is only reported undeliverable on a definitive DNS answer: a null
// MX record, or no MX and no address records. Lookup failures such as
// timeouts return an error wrapping core.ErrDeliverabilityUnknown.
func (v *Validator) Validate(ctx context.Context, addr string, checkDeliverability bool) error {
	if err := v.validate.Var(addr, "required,email"); err != nil {
		return syntaxError(addr, err)
	}
	if !checkDeliverability {
		return nil
	}

	domain := addr[strings.LastIndexByte(addr, '@')+1:]
	mx, err := v.dns.LookupMX(ctx, domain)
	switch {
	case err == nil && len(mx) > 0:
		// RFC 7505 null MX.
		if len(mx) == 1 && (mx[0].Host == "." || mx[0].Host == "") {
			return fmt.Errorf("%w: %s", ErrUndeliverable, domain)
		}
		return nil
	case err != nil && !notFound(err):
		return fmt.Errorf("%w: MX lookup for %s: %v", core.ErrDeliverabilityUnknown, domain, err)
	}

	// No MX record: mail falls back to the A/AAAA records.
	hosts, err := v.dns.LookupHost(ctx, domain)
	switch {
	case err == nil && len(hosts) > 0:
		return nil
	case err != nil && !notFound(err):
		return fmt.Errorf("%w: host lookup for %s: %v", core.ErrDeliverabilityUnknown, domain, err)
	}
	return fmt.Errorf("%w: %s", ErrUndeliverable, domain)
}

// syntaxError names the address and the failed rule.
func syntaxError(addr string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Errorf("%w: %q fails the %s rule", ErrSyntax, addr, verrs[0].Tag())
	}
	return fmt.Errorf("%w: %q: %v", ErrSyntax, addr, err)
}

func notFound(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr) && dnsErr.IsNotFound
}

var _ core.EmailValidator = (*Validator)(nil)
