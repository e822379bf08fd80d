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

package qrsgo_test

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	qrsgo "github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go"
	qerrors "github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder is an httptest server that remembers every request it served.
type recorder struct {
	*httptest.Server

	lock     sync.Mutex
	requests []*http.Request
	bodies   [][]byte
}

func newRecorder(t *testing.T, handler http.HandlerFunc) *recorder {
	t.Helper()

	rec := &recorder{}
	rec.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		rec.lock.Lock()
		rec.requests = append(rec.requests, r.Clone(context.Background()))
		rec.bodies = append(rec.bodies, body)
		rec.lock.Unlock()

		if handler != nil {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(rec.Server.Close)

	return rec
}

func (rec *recorder) served() []*http.Request {
	rec.lock.Lock()
	defer rec.lock.Unlock()

	return append([]*http.Request{}, rec.requests...)
}

func newNTLMClient(t *testing.T, host string) *qrsgo.Client {
	t.Helper()

	client, err := qrsgo.New(host)
	require.NoError(t, err)
	require.NoError(t, client.ConfigureNTLMProxy(qrsgo.WithUser("QLIK", "admin")))

	return client
}

func TestUnconfiguredClientFailsBeforeAnyIO(t *testing.T) {
	rec := newRecorder(t, nil)

	client, err := qrsgo.New(rec.URL)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = client.Get(ctx, "qrs/about")
	assert.ErrorIs(t, err, qerrors.ErrorNotConfigured)

	_, err = client.Post(ctx, "qrs/app/someop", []byte(`{}`))
	assert.ErrorIs(t, err, qerrors.ErrorNotConfigured)

	_, err = client.Delete(ctx, "qrs/app/some-id")
	assert.ErrorIs(t, err, qerrors.ErrorNotConfigured)

	_, err = client.UploadApp(ctx, "Foo.qvf", []byte("data"))
	assert.ErrorIs(t, err, qerrors.ErrorNotConfigured)

	assert.Empty(t, rec.served())
}

func TestDirectConnectionRequiresCertificates(t *testing.T) {
	rec := newRecorder(t, nil)

	client, err := qrsgo.New(rec.URL)
	require.NoError(t, err)
	require.NoError(t, client.ConfigureDirectConnection())

	_, err = client.Get(context.Background(), "qrs/about")
	assert.ErrorIs(t, err, qerrors.ErrorCertificatesNotLoaded)

	_, err = client.Post(context.Background(), "qrs/app/someop", nil)
	assert.ErrorIs(t, err, qerrors.ErrorCertificatesNotLoaded)

	assert.Empty(t, rec.served())
}

func TestConfigureIsOneWay(t *testing.T) {
	client, err := qrsgo.New("sense.example.com")
	require.NoError(t, err)

	require.NoError(t, client.ConfigureDirectConnection())

	assert.ErrorIs(t, client.ConfigureDirectConnection(),
		qerrors.ErrorAlreadyConfigured)
	assert.ErrorIs(t, client.ConfigureNTLMProxy(),
		qerrors.ErrorAlreadyConfigured)
}

func TestMutatingCallBootstrapsExactlyOnce(t *testing.T) {
	rec := newRecorder(t, nil)
	client := newNTLMClient(t, rec.URL)

	ctx := context.Background()

	_, err := client.Post(ctx, "qrs/app/someop", []byte(`{}`))
	require.NoError(t, err)

	_, err = client.Delete(ctx, "qrs/app/some-id")
	require.NoError(t, err)

	served := rec.served()
	require.Len(t, served, 3)

	// The very first request must be the bootstrap, and it must not be
	// repeated once cookies are in place.
	assert.Equal(t, http.MethodGet, served[0].Method)
	assert.Equal(t, "/qrs/about", served[0].URL.Path)
	assert.Equal(t, http.MethodPost, served[1].Method)
	assert.Equal(t, http.MethodDelete, served[2].Method)
}

func TestGetNeverBootstraps(t *testing.T) {
	rec := newRecorder(t, nil)
	client := newNTLMClient(t, rec.URL)

	ctx := context.Background()

	_, err := client.Get(ctx, "qrs/app/full")
	require.NoError(t, err)
	_, err = client.Get(ctx, "qrs/app/full")
	require.NoError(t, err)

	served := rec.served()
	require.Len(t, served, 2)
	for _, req := range served {
		assert.Equal(t, "/qrs/app/full", req.URL.Path)
	}
}

func TestRequestDecoration(t *testing.T) {
	rec := newRecorder(t, nil)
	client := newNTLMClient(t, rec.URL)

	_, err := client.Get(context.Background(), "qrs/app/full")
	require.NoError(t, err)

	served := rec.served()
	require.Len(t, served, 1)
	req := served[0]

	xrfKey := req.URL.Query().Get("xrfkey")
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]{16}$`), xrfKey)
	assert.Equal(t, xrfKey, req.Header.Get("X-Qlik-Xrfkey"))

	assert.Equal(t, "UserDirectory=QLIK;UserId=admin", req.Header.Get("X-Qlik-User"))
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
	assert.Equal(t, "gzip, deflate", req.Header.Get("Accept-Encoding"))
	assert.Equal(t, "Windows", req.Header.Get("User-Agent"))
}

func TestXrfKeyIsFreshPerRequest(t *testing.T) {
	rec := newRecorder(t, nil)
	client := newNTLMClient(t, rec.URL)

	ctx := context.Background()

	_, err := client.Get(ctx, "qrs/about")
	require.NoError(t, err)
	_, err = client.Get(ctx, "qrs/about")
	require.NoError(t, err)

	served := rec.served()
	require.Len(t, served, 2)
	assert.NotEqual(t,
		served[0].URL.Query().Get("xrfkey"),
		served[1].URL.Query().Get("xrfkey"))
}

func TestUploadApp(t *testing.T) {
	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"new-app-id"}`))
	})

	client, err := qrsgo.New(rec.URL)
	require.NoError(t, err)
	require.NoError(t, client.ConfigureDirectConnection(
		qrsgo.WithUser("QLIK", "admin"),
		// The test server speaks plain HTTP, so any certificate
		// satisfies the pre-flight check without being used.
		qrsgo.WithCertificates(tls.Certificate{}),
	))

	contents := []byte("application package bytes")
	body, err := client.UploadApp(context.Background(), "New Foo.qvf", contents)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"new-app-id"}`, body)

	served := rec.served()
	require.Len(t, served, 2)

	upload := served[1]
	assert.Equal(t, http.MethodPost, upload.Method)
	assert.Equal(t, "/qrs/app/upload", upload.URL.Path)
	assert.Equal(t, "true", upload.URL.Query().Get("keepData"))
	assert.Equal(t, "New Foo.qvf", upload.URL.Query().Get("name"))
	assert.Contains(t, upload.URL.RawQuery, "name=New%20Foo.qvf")
	assert.Equal(t, "application/vnd.qlik.sense.app", upload.Header.Get("Content-Type"))
	assert.Equal(t, contents, rec.bodies[1])
}

func TestConcurrentMutatingCallsBootstrapOnce(t *testing.T) {
	rec := newRecorder(t, nil)
	client := newNTLMClient(t, rec.URL)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := client.Post(context.Background(), "qrs/app/someop", []byte(`{}`))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	served := rec.served()
	assert.Len(t, served, 9)

	bootstraps := 0
	for _, req := range served {
		if req.Method == http.MethodGet && req.URL.Path == "/qrs/about" {
			bootstraps++
		}
	}
	assert.Equal(t, 1, bootstraps)
}

func TestHostPathPrefixIsPreserved(t *testing.T) {
	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/full") {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`{}`))
	})

	// The host points at a virtual proxy, not the root of the server.
	client := newNTLMClient(t, rec.URL+"/myproxy")

	ctx := context.Background()

	_, err := client.Apps().List(ctx)
	require.NoError(t, err)

	require.NoError(t, client.Apps().Delete(ctx, "11111111-aaaa"))

	served := rec.served()
	require.Len(t, served, 3)

	assert.Equal(t, "/myproxy/qrs/app/full", served[0].URL.Path)
	assert.Equal(t, "/myproxy/qrs/about", served[1].URL.Path)
	assert.Equal(t, "/myproxy/qrs/app/11111111-aaaa", served[2].URL.Path)
}

func TestGzipResponsesAreDecompressed(t *testing.T) {
	const aboutBody = `{"buildVersion":"31.14.0"}`

	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		require.Contains(t, r.Header.Get("Accept-Encoding"), "gzip")

		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write([]byte(aboutBody))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	})
	client := newNTLMClient(t, rec.URL)

	body, err := client.Get(context.Background(), "qrs/about")
	require.NoError(t, err)
	assert.Equal(t, aboutBody, body)

	info, err := client.About().Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "31.14.0", info.BuildVersion)
}

func TestSkipVerifyIsClientScoped(t *testing.T) {
	client, err := qrsgo.New("sense.example.com")
	require.NoError(t, err)
	require.NoError(t, client.ConfigureNTLMProxy(qrsgo.WithSkipVerify()))

	// The process-wide default transport must be left alone.
	defaultTransport := http.DefaultTransport.(*http.Transport)
	if defaultTransport.TLSClientConfig != nil {
		assert.False(t, defaultTransport.TLSClientConfig.InsecureSkipVerify)
	}
}

func TestProxyLoginPageIsDetected(t *testing.T) {
	const loginPage = `<html><body>
		<form action="/login">
			<input name="username" type="text"/>
			<input name="pwd" type="password"/>
		</form>
	</body></html>`

	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(loginPage))
	})
	client := newNTLMClient(t, rec.URL)

	_, err := client.Get(context.Background(), "qrs/app/full")
	assert.ErrorIs(t, err, qerrors.ErrorSessionRejected)
}

func TestStatusErrorsPropagateUntranslated(t *testing.T) {
	rec := newRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("no such resource"))
	})
	client := newNTLMClient(t, rec.URL)

	_, err := client.Get(context.Background(), "qrs/app/unknown-id")
	require.Error(t, err)

	var statusErr *qerrors.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, "no such resource", statusErr.Body)
}
