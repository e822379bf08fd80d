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

package qrsgo

import (
	"context"
	"encoding/json"
	"fmt"

	r "github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go/internal/requester"
	"github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go/pkg/about"
	qerrors "github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go/pkg/errors"
)

type aboutOps struct {
	c *Client
}

// About exposes the repository's own status endpoint, the same one the
// client uses to bootstrap its session cookies.
func (c *Client) About() *aboutOps {
	return &aboutOps{c}
}

// Get returns version and build information of the repository service.
func (a *aboutOps) Get(ctx context.Context) (*about.About, error) {
	req, err := a.c.readyRequester()
	if err != nil {
		return nil, err
	}

	resp, err := req.Get(ctx, r.WithPath("qrs/about"))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var info about.About
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %s", qerrors.ErrorUnmarshallingBody, err)
	}

	return &info, nil
}
