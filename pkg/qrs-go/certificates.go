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
	"crypto/tls"
	"fmt"
	"os"
	"path/filepath"

	qerrors "github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go/pkg/errors"
	"software.sslmate.com/src/go-pkcs12"
)

// certificateFileName is the name the repository exports its client
// certificate under.
const certificateFileName string = "client.pfx"

// LoadCertificates reads client.pfx from the given directory and stores
// the decoded certificate for use by the direct connection mode. Pass an
// empty password if the export was not protected.
func (c *Client) LoadCertificates(dir, password string) error {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("%w: %s", qerrors.ErrorCertificateDirNotFound, dir)
	case err != nil:
		return fmt.Errorf("could not check certificates directory: %w", err)
	case !info.IsDir():
		return fmt.Errorf("%w: %s is not a directory", qerrors.ErrorCertificateDirNotFound, dir)
	}

	pfxPath := filepath.Join(dir, certificateFileName)
	if _, err := os.Stat(pfxPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", qerrors.ErrorCertificateFileNotFound, pfxPath)
		}

		return fmt.Errorf("could not check certificate file: %w", err)
	}

	data, err := os.ReadFile(pfxPath)
	if err != nil {
		return fmt.Errorf("could not read certificate file: %w", err)
	}

	key, cert, caCerts, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return fmt.Errorf("%w: %s", qerrors.ErrorDecodingCertificate, err)
	}

	chain := [][]byte{cert.Raw}
	for _, ca := range caCerts {
		chain = append(chain, ca.Raw)
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	c.certs = append(c.certs, tls.Certificate{
		Certificate: chain,
		PrivateKey:  key,
		Leaf:        cert,
	})

	if c.mode != modeUnconfigured {
		c.applyTransport()
	}

	return nil
}
