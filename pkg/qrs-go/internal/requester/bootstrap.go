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
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

const pathBootstrap string = "qrs/about"

// session tracks whether the cookie jar shared by all requesters cloned
// from the same client has been populated yet. The jar itself lives on the
// http.Client; this only guards the one-time bootstrap call.
type session struct {
	rootPath string
	group    singleflight.Group
	ready    atomic.Bool
}

func newSession(rootPath string) *session {
	return &session{rootPath: rootPath}
}

// ensure populates the cookie jar by issuing a GET against the well-known
// status endpoint, at most once per client instance. Concurrent callers
// collapse into a single bootstrap request.
func (s *session) ensure(ctx context.Context, r *Requester) error {
	if s.ready.Load() {
		return nil
	}

	_, err, _ := s.group.Do("bootstrap", func() (interface{}, error) {
		if s.ready.Load() {
			return nil, nil
		}

		// Clones may carry a resource base path; the bootstrap endpoint
		// always hangs off the root of the site.
		root := r.CloneWithNewBasePath(pathBootstrap)

		resp, err := root.Do(ctx, WithGET(), withNoBootstrap())
		if err != nil {
			return nil, err
		}
		resp.Body.Close()

		s.ready.Store(true)
		return nil, nil
	})

	return err
}
