// Package vies checks EU VAT numbers against the VIES registry of the
// European Commission through its SOAP service.
package vies

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"golang.org/x/time/rate"
)

// DefaultURL is the public VIES checkVat endpoint.
const DefaultURL = "https://ec.europa.eu/taxation_customs/vies/services/checkVatService"

// ErrMalformedVAT is returned for numbers too short to carry a prefix.
var ErrMalformedVAT = errors.New("vies: malformed VAT number")

var requestTmpl = template.Must(template.New("checkVat").Funcs(template.FuncMap{"esc": escape}).Parse(
	`<?xml version="1.0" encoding="UTF-8"?>` +
		`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:urn="urn:ec.europa.eu:taxud:vies:services:checkVat:types">` +
		`<soapenv:Header/><soapenv:Body><urn:checkVat>` +
		`<urn:countryCode>{{esc .CountryCode}}</urn:countryCode>` +
		`<urn:vatNumber>{{esc .Number}}</urn:vatNumber>` +
		`</urn:checkVat></soapenv:Body></soapenv:Envelope>`))

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// Result is the registry answer for one VAT number.
type Result struct {
	CountryCode string `xml:"countryCode"`
	VATNumber   string `xml:"vatNumber"`
	RequestDate string `xml:"requestDate"`
	Valid       bool   `xml:"valid"`
	Name        string `xml:"name"`
	Address     string `xml:"address"`
}

type envelope struct {
	Body struct {
		Response *Result `xml:"checkVatResponse"`
		Fault    *struct {
			Code   string `xml:"faultcode"`
			String string `xml:"faultstring"`
		} `xml:"Fault"`
	} `xml:"Body"`
}

// Client queries VIES. Calls are paced by a token bucket since the service
// throttles aggressive clients with MS_MAX_CONCURRENT_REQ faults.
type Client struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client. An empty url selects DefaultURL; a zero
// interval disables pacing.
func NewClient(url string, timeout, interval time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// CheckVAT reports whether VIES knows the VAT number (prefix included).
func (c *Client) CheckVAT(ctx context.Context, vat string) (bool, error) {
	res, err := c.Check(ctx, vat)
	if err != nil {
		return false, err
	}
	return res.Valid, nil
}

// Check returns the full registry answer for a VAT number.
func (c *Client) Check(ctx context.Context, vat string) (*Result, error) {
	vat = strings.ToUpper(strings.TrimSpace(vat))
	if len(vat) < 3 {
		return nil, ErrMalformedVAT
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("vies: rate limit wait: %w", err)
	}

	var body bytes.Buffer
	if err := requestTmpl.Execute(&body, struct{ CountryCode, Number string }{vat[:2], vat[2:]}); err != nil {
		return nil, fmt.Errorf("vies: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("vies: create request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vies: request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("vies: read response: %w", err)
	}

	var env envelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("vies: decode response (status %d): %w", resp.StatusCode, err)
	}
	if f := env.Body.Fault; f != nil {
		return nil, fmt.Errorf("vies: %s", strings.TrimSpace(f.String))
	}
	if env.Body.Response == nil {
		return nil, fmt.Errorf("vies: unexpected response (status %d)", resp.StatusCode)
	}
	return env.Body.Response, nil
}
