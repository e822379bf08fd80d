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
	"io"
	"net/http"
	"net/url"
	"path"
)

type RequestOptions struct {
	method      string
	path        string
	body        io.Reader
	headers     http.Header
	queryParams url.Values
	noBootstrap bool
}

type WithRequestOption func(r *RequestOptions)

func WithGET() WithRequestOption {
	return func(r *RequestOptions) {
		r.method = http.MethodGet
	}
}

func WithPOST() WithRequestOption {
	return func(r *RequestOptions) {
		r.method = http.MethodPost
	}
}

func WithDELETE() WithRequestOption {
	return func(r *RequestOptions) {
		r.method = http.MethodDelete
	}
}

func WithBodyBytes(body []byte) WithRequestOption {
	return func(r *RequestOptions) {
		r.body = bytes.NewReader(body)
	}
}

func WithBodyReader(body io.Reader) WithRequestOption {
	return func(r *RequestOptions) {
		r.body = body
	}
}

func WithPath(urlPath string) WithRequestOption {
	return func(r *RequestOptions) {
		r.path = path.Join(urlPath)
	}
}

// WithEndpoint splits a caller-supplied endpoint into its path and query
// parts, so that callers can pass strings like "qrs/app/full?filter=...".
func WithEndpoint(endpoint string) WithRequestOption {
	return func(r *RequestOptions) {
		u, err := url.Parse(endpoint)
		if err != nil {
			r.path = path.Join(endpoint)
			return
		}

		r.path = path.Join(u.Path)
		for key, values := range u.Query() {
			for _, value := range values {
				WithQueryParameter(key, value)(r)
			}
		}
	}
}

func WithHeader(key string, values ...string) WithRequestOption {
	return func(r *RequestOptions) {
		if len(r.headers) == 0 {
			r.headers = http.Header{}
		}

		for _, value := range values {
			r.headers.Add(key, value)
		}
	}
}

func WithQueryParameter(key string, values ...string) WithRequestOption {
	return func(r *RequestOptions) {
		if len(r.queryParams) == 0 {
			r.queryParams = url.Values{}
		}

		for _, value := range values {
			r.queryParams.Add(key, value)
		}
	}
}

func withNoBootstrap() WithRequestOption {
	return func(r *RequestOptions) {
		r.noBootstrap = true
	}
}
