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

package requester

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	qerrors "github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go/pkg/errors"
)

// Identity is the user the repository service will be asked to impersonate,
// sent with every request as the X-Qlik-User header.
type Identity struct {
	UserDirectory string
	UserID        string
}

type Requester struct {
	baseURL    url.URL
	httpClient *http.Client
	identity   Identity
	userAgent  string
	session    *session
}

func NewRequester(baseURL *url.URL, httpClient *http.Client, identity Identity, userAgent string) *Requester {
	return &Requester{
		baseURL:    *baseURL,
		httpClient: httpClient,
		identity:   identity,
		userAgent:  userAgent,
		session:    newSession(baseURL.Path),
	}
}

func (r *Requester) Do(ctx context.Context, opts ...WithRequestOption) (*http.Response, error) {
	const (
		xrfKeyParam  string = "xrfkey"
		xrfKeyHeader string = "X-Qlik-Xrfkey"
		userHeader   string = "X-Qlik-User"
	)

	// ----------------------------------
	// Prepare options
	// ----------------------------------

	reqOptions := &RequestOptions{
		method:  http.MethodGet,
		body:    http.NoBody,
		headers: http.Header{},
	}

	for _, opt := range opts {
		opt(reqOptions)
	}

	// Mutating calls need session cookies first. GETs never trigger this.
	if reqOptions.method != http.MethodGet && !reqOptions.noBootstrap {
		if err := r.session.ensure(ctx, r); err != nil {
			return nil, fmt.Errorf("error while establishing session: %w", err)
		}
	}

	if _, exists := reqOptions.headers["Content-Type"]; !exists {
		reqOptions.headers.Add("Content-Type", "application/json")
	}

	xrfKey := newXrfKey()
	reqOptions.headers.Set("Accept", "application/json")
	reqOptions.headers.Set("Accept-Encoding", "gzip, deflate")
	reqOptions.headers.Set(xrfKeyHeader, xrfKey)
	reqOptions.headers.Set(userHeader,
		fmt.Sprintf("UserDirectory=%s;UserId=%s",
			r.identity.UserDirectory, r.identity.UserID))

	if r.userAgent != "" {
		reqOptions.headers.Set("User-Agent", r.userAgent)
	}

	// Make the URL
	u := r.baseURL
	u.Path = path.Join(r.baseURL.Path, reqOptions.path)

	query := url.Values{}
	for key, values := range reqOptions.queryParams {
		query[key] = values
	}
	query.Set(xrfKeyParam, xrfKey)

	// Encode spaces as %20 rather than '+'. Both decode the same, but the
	// repository's documented URLs use percent-encoding throughout.
	// Literal '+' characters come out of Encode as %2B, so this only ever
	// touches encoded spaces.
	u.RawQuery = strings.ReplaceAll(query.Encode(), "+", "%20")

	// ----------------------------------
	// Create and make the request
	// ----------------------------------

	req, err := http.NewRequestWithContext(ctx, reqOptions.method, u.String(), reqOptions.body)
	if err != nil {
		return nil, fmt.Errorf("error while creating request: %w", err)
	}
	req.Header = reqOptions.headers

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while performing request: %w", err)
	}

	// ----------------------------------
	// Parse the response
	// ----------------------------------

	bodyResp, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, fmt.Errorf("%w: %s", qerrors.ErrorParsingBody, err)
	}
	resp.Body.Close()

	// Advertising gzip/deflate ourselves opts us out of the transport's
	// transparent decompression, so we have to undo the encoding here
	// before relaying the body.
	bodyResp, err = decompressBody(resp.Header.Get("Content-Encoding"), bodyResp)
	if err != nil {
		return resp, fmt.Errorf("%w: %s", qerrors.ErrorParsingBody, err)
	}

	resp.Body = io.NopCloser(bytes.NewReader(bodyResp))

	// If we received HTML instead of JSON it is almost certainly the
	// virtual proxy serving its login form in place of our endpoint.
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		if login, _ := isProxyLoginPage(bytes.NewReader(bodyResp)); login {
			return resp, qerrors.ErrorSessionRejected
		}
	}

	if resp.StatusCode >= 400 {
		var qerr qerrors.QrsError
		if unmarshErr := json.Unmarshal(bodyResp, &qerr); unmarshErr == nil && qerr.Message != "" {
			return resp, &qerr
		}

		return resp, &qerrors.StatusError{
			Code: resp.StatusCode,
			Body: string(bodyResp),
		}
	}

	return resp, nil
}

// Get is just a shortcut for Do(ctx, WithGET())
func (r *Requester) Get(ctx context.Context, opts ...WithRequestOption) (*http.Response, error) {
	opts = append(opts, WithGET())
	return r.Do(ctx, opts...)
}

// Post is just a shortcut for Do(ctx, WithPOST())
func (r *Requester) Post(ctx context.Context, opts ...WithRequestOption) (*http.Response, error) {
	opts = append(opts, WithPOST())
	return r.Do(ctx, opts...)
}

// Delete is just a shortcut for Do(ctx, WithDELETE())
func (r *Requester) Delete(ctx context.Context, opts ...WithRequestOption) (*http.Response, error) {
	opts = append(opts, WithDELETE())
	return r.Do(ctx, opts...)
}

// CloneWithNewBasePath returns a requester scoped to the given resource
// path. The path is resolved against the root of the configured host, so
// a path prefix in the host, e.g. a virtual proxy, is preserved.
func (r *Requester) CloneWithNewBasePath(newPath string) *Requester {
	newRequester := *r
	newRequester.baseURL.Path = path.Join(r.session.rootPath, newPath)

	return &newRequester
}
