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
	"net/http"

	r "github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go/internal/requester"
	"github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go/pkg/app"
	qerrors "github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go/pkg/errors"
)

const (
	// contentTypeApp is the content type the repository expects for
	// application package uploads.
	contentTypeApp string = "application/vnd.qlik.sense.app"

	pathAppBase string = "qrs/app"
)

type appOps struct {
	c *Client
}

// Apps exposes the app resource of the repository.
func (c *Client) Apps() *appOps {
	return &appOps{c}
}

func (a *appOps) requester() (*r.Requester, error) {
	req, err := a.c.readyRequester()
	if err != nil {
		return nil, err
	}

	return req.CloneWithNewBasePath(pathAppBase), nil
}

// List returns all apps the requesting identity can see.
func (a *appOps) List(ctx context.Context) ([]*app.App, error) {
	req, err := a.requester()
	if err != nil {
		return nil, err
	}

	resp, err := req.Do(ctx, r.WithPath("full"))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var apps []*app.App
	if err := json.NewDecoder(resp.Body).Decode(&apps); err != nil {
		return nil, fmt.Errorf("%w: %s", qerrors.ErrorUnmarshallingBody, err)
	}

	return apps, nil
}

// Get returns the app with the given repository ID.
func (a *appOps) Get(ctx context.Context, id string) (*app.App, error) {
	if id == "" {
		return nil, qerrors.ErrorNoIDProvided
	}

	req, err := a.requester()
	if err != nil {
		return nil, err
	}

	resp, err := req.Do(ctx, r.WithPath(id))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var application app.App
	if err := json.NewDecoder(resp.Body).Decode(&application); err != nil {
		return nil, fmt.Errorf("%w: %s", qerrors.ErrorUnmarshallingBody, err)
	}

	return &application, nil
}

// Delete removes the app with the given repository ID.
func (a *appOps) Delete(ctx context.Context, id string) error {
	if id == "" {
		return qerrors.ErrorNoIDProvided
	}

	req, err := a.requester()
	if err != nil {
		return err
	}

	resp, err := req.Delete(ctx, r.WithPath(id))
	if err != nil {
		return err
	}
	resp.Body.Close()

	return nil
}

// Upload imports an application package and returns the created app.
func (a *appOps) Upload(ctx context.Context, name string, contents []byte) (*app.App, error) {
	if name == "" {
		return nil, qerrors.ErrorNoNameProvided
	}

	if len(contents) == 0 {
		return nil, qerrors.ErrorNoContentsProvided
	}

	req, err := a.requester()
	if err != nil {
		return nil, err
	}

	resp, err := uploadApp(ctx, req, name, contents)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var application app.App
	if err := json.NewDecoder(resp.Body).Decode(&application); err != nil {
		return nil, fmt.Errorf("%w: %s", qerrors.ErrorUnmarshallingBody, err)
	}

	return &application, nil
}

// uploadApp does the actual upload POST. The requester is expected to be
// scoped to the app resource already.
func uploadApp(ctx context.Context, req *r.Requester, name string, contents []byte) (*http.Response, error) {
	return req.Post(ctx,
		r.WithPath("upload"),
		r.WithQueryParameter("keepData", "true"),
		r.WithQueryParameter("name", name),
		r.WithBodyBytes(contents),
		r.WithHeader("Content-Type", contentTypeApp),
	)
}
