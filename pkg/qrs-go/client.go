// Copyright (c) 2023 the qlik-rest-sdk authors
// All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package qrsgo is a thin client for the Qlik Sense Repository Service
// (QRS) REST API. It decorates every request with the headers, cookies,
// anti-forgery token and client certificates the repository expects, for
// either a direct connection to the repository port or a connection
// through the NTLM virtual proxy, and relays request/response bodies
// untouched.
package qrsgo

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"os/user"
	"strconv"
	"strings"
	"sync"

	r "github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go/internal/requester"
	qerrors "github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go/pkg/errors"
)

const (
	// DefaultDirectConnectionPort is the port the repository service
	// listens on for certificate-authenticated connections.
	DefaultDirectConnectionPort int = 4242

	// ntlmUserAgent makes the virtual proxy negotiate NTLM instead of
	// redirecting us to its form login.
	ntlmUserAgent string = "Windows"
)

type connectionMode int

const (
	modeUnconfigured connectionMode = iota
	modeDirectConnection
	modeNTLMProxy
)

type Client struct {
	host       string
	httpClient *http.Client

	lock      sync.Mutex
	mode      connectionMode
	insecure  bool
	certs     []tls.Certificate
	requester *r.Requester
}

type ConnectionOptions struct {
	UserDirectory string
	UserID        string
	Port          int
	SkipVerify    bool
	Certificates  []tls.Certificate
}

type ConnectionOption func(*ConnectionOptions)

// WithUser sets the identity the repository will be asked to impersonate.
// If not provided, the identity of the invoking OS user is used.
func WithUser(directory, id string) ConnectionOption {
	return func(opts *ConnectionOptions) {
		opts.UserDirectory = directory
		opts.UserID = id
	}
}

// WithPort overrides the repository port for direct connections. It has no
// effect when the host already carries an explicit port.
func WithPort(port int) ConnectionOption {
	return func(opts *ConnectionOptions) {
		opts.Port = port
	}
}

// WithSkipVerify disables certificate-chain validation for this client's
// transport only, never process-wide.
func WithSkipVerify() ConnectionOption {
	return func(opts *ConnectionOptions) {
		opts.SkipVerify = true
	}
}

// WithCertificates supplies client certificates up front, as an alternative
// to LoadCertificates.
func WithCertificates(certs ...tls.Certificate) ConnectionOption {
	return func(opts *ConnectionOptions) {
		opts.Certificates = append(opts.Certificates, certs...)
	}
}

// New creates an unconfigured client for the given central node. A
// connection mode must be configured before any request can be made.
func New(host string) (*Client, error) {
	if host == "" {
		return nil, fmt.Errorf("no host provided")
	}

	if !strings.Contains(host, "://") {
		host = "https://" + host
	}

	if _, err := url.Parse(host); err != nil {
		return nil, fmt.Errorf("host doesn't look valid: %w", err)
	}

	cookiesJar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("could not get cookie jar: %w", err)
	}

	return &Client{
		host:       host,
		httpClient: &http.Client{Jar: cookiesJar},
	}, nil
}

// ConfigureDirectConnection sets the client up to talk straight to the
// repository port, authenticating with client certificates and the
// impersonated identity header. The first successful Configure* call wins;
// later calls return ErrorAlreadyConfigured.
func (c *Client) ConfigureDirectConnection(opts ...ConnectionOption) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.mode != modeUnconfigured {
		return qerrors.ErrorAlreadyConfigured
	}

	options := &ConnectionOptions{Port: DefaultDirectConnectionPort}
	for _, opt := range opts {
		opt(options)
	}
	fillIdentityDefaults(options)

	u, err := url.Parse(c.host)
	if err != nil {
		return fmt.Errorf("host doesn't look valid: %w", err)
	}

	if u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(options.Port))
	}

	c.mode = modeDirectConnection
	c.insecure = options.SkipVerify
	c.certs = append(c.certs, options.Certificates...)
	c.requester = r.NewRequester(u, c.httpClient, r.Identity{
		UserDirectory: options.UserDirectory,
		UserID:        options.UserID,
	}, "")
	c.applyTransport()

	return nil
}

// ConfigureNTLMProxy sets the client up to go through the site's NTLM
// virtual proxy. Credential negotiation is left entirely to the transport;
// this mode only contributes the user-agent that makes the proxy pick
// NTLM, the shared cookie jar and the identity header.
func (c *Client) ConfigureNTLMProxy(opts ...ConnectionOption) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.mode != modeUnconfigured {
		return qerrors.ErrorAlreadyConfigured
	}

	options := &ConnectionOptions{}
	for _, opt := range opts {
		opt(options)
	}
	fillIdentityDefaults(options)

	u, err := url.Parse(c.host)
	if err != nil {
		return fmt.Errorf("host doesn't look valid: %w", err)
	}

	c.mode = modeNTLMProxy
	c.insecure = options.SkipVerify
	c.requester = r.NewRequester(u, c.httpClient, r.Identity{
		UserDirectory: options.UserDirectory,
		UserID:        options.UserID,
	}, ntlmUserAgent)
	c.applyTransport()

	return nil
}

// Get relays a GET to the given endpoint and returns the response body.
func (c *Client) Get(ctx context.Context, endpoint string) (string, error) {
	req, err := c.readyRequester()
	if err != nil {
		return "", err
	}

	resp, err := req.Get(ctx, r.WithEndpoint(endpoint))
	if err != nil {
		return "", err
	}

	return readBodyString(resp)
}

// Post relays a POST with the given body, JSON unless overridden through
// PostRaw, and returns the response body.
func (c *Client) Post(ctx context.Context, endpoint string, body []byte) (string, error) {
	req, err := c.readyRequester()
	if err != nil {
		return "", err
	}

	resp, err := req.Post(ctx, r.WithEndpoint(endpoint), r.WithBodyBytes(body))
	if err != nil {
		return "", err
	}

	return readBodyString(resp)
}

// PostRaw relays a POST with an arbitrary content type and returns the raw
// response bytes. This is the variant to use for binary payloads.
func (c *Client) PostRaw(ctx context.Context, endpoint string, body []byte, contentType string) ([]byte, error) {
	req, err := c.readyRequester()
	if err != nil {
		return nil, err
	}

	resp, err := req.Post(ctx,
		r.WithEndpoint(endpoint),
		r.WithBodyBytes(body),
		r.WithHeader("Content-Type", contentType),
	)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", qerrors.ErrorParsingBody, err)
	}

	return respBody, nil
}

// Delete relays a DELETE to the given endpoint and returns the response
// body, usually empty.
func (c *Client) Delete(ctx context.Context, endpoint string) (string, error) {
	req, err := c.readyRequester()
	if err != nil {
		return "", err
	}

	resp, err := req.Delete(ctx, r.WithEndpoint(endpoint))
	if err != nil {
		return "", err
	}

	return readBodyString(resp)
}

// UploadApp imports an application package under the given name and
// returns the repository's response body.
func (c *Client) UploadApp(ctx context.Context, name string, contents []byte) (string, error) {
	if name == "" {
		return "", qerrors.ErrorNoNameProvided
	}

	ops, err := c.Apps().requester()
	if err != nil {
		return "", err
	}

	resp, err := uploadApp(ctx, ops, name, contents)
	if err != nil {
		return "", err
	}

	return readBodyString(resp)
}

// readyRequester performs the pre-flight checks every operation shares:
// no request may leave an unconfigured client, and a direct connection
// without certificates cannot authenticate at all.
func (c *Client) readyRequester() (*r.Requester, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	switch {
	case c.mode == modeUnconfigured:
		return nil, qerrors.ErrorNotConfigured
	case c.mode == modeDirectConnection && len(c.certs) == 0:
		return nil, qerrors.ErrorCertificatesNotLoaded
	}

	return c.requester, nil
}

// applyTransport rebuilds the client's transport from its current TLS
// settings. Callers must hold the lock.
func (c *Client) applyTransport() {
	customTransport := http.DefaultTransport.(*http.Transport).Clone()
	customTransport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: c.insecure,
		Certificates:       c.certs,
	}

	c.httpClient.Transport = customTransport
}

func fillIdentityDefaults(options *ConnectionOptions) {
	if options.UserDirectory != "" && options.UserID != "" {
		return
	}

	directory, id := currentOSUser()
	if options.UserDirectory == "" {
		options.UserDirectory = directory
	}
	if options.UserID == "" {
		options.UserID = id
	}
}

// currentOSUser maps the invoking OS user to a repository identity: the
// domain part of DOMAIN\name when present, otherwise the machine name.
func currentOSUser() (directory, id string) {
	directory, _ = os.Hostname()

	current, err := user.Current()
	if err != nil {
		return directory, ""
	}

	if i := strings.LastIndex(current.Username, `\`); i != -1 {
		return current.Username[:i], current.Username[i+1:]
	}

	return directory, current.Username
}

func readBodyString(resp *http.Response) (string, error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s", qerrors.ErrorParsingBody, err)
	}

	return string(body), nil
}
