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
	"os"
	"path/filepath"
	"testing"

	qrsgo "github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go"
	qerrors "github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCertificatesDirectoryMissing(t *testing.T) {
	client, err := qrsgo.New("sense.example.com")
	require.NoError(t, err)

	err = client.LoadCertificates(filepath.Join(t.TempDir(), "does-not-exist"), "")
	assert.ErrorIs(t, err, qerrors.ErrorCertificateDirNotFound)
}

func TestLoadCertificatesFileMissing(t *testing.T) {
	client, err := qrsgo.New("sense.example.com")
	require.NoError(t, err)

	// The directory exists but holds no client.pfx.
	err = client.LoadCertificates(t.TempDir(), "")
	assert.ErrorIs(t, err, qerrors.ErrorCertificateFileNotFound)
}

func TestLoadCertificatesBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t,
		os.WriteFile(filepath.Join(dir, "client.pfx"), []byte("not a pfx"), 0o600))

	client, err := qrsgo.New("sense.example.com")
	require.NoError(t, err)

	err = client.LoadCertificates(dir, "")
	assert.ErrorIs(t, err, qerrors.ErrorDecodingCertificate)
}
