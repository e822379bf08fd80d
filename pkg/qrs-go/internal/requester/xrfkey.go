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
	"crypto/rand"
)

const (
	xrfKeyLength   int    = 16
	xrfKeyAlphabet string = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// newXrfKey returns a fresh anti-forgery token. The repository service
// requires the same 16-character alphanumeric value both as the xrfkey
// query parameter and the X-Qlik-Xrfkey header of every request.
func newXrfKey() string {
	buf := make([]byte, xrfKeyLength)

	// rand.Read never returns a partial buffer without an error, and on
	// supported platforms it does not fail.
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}

	for i, b := range buf {
		buf[i] = xrfKeyAlphabet[int(b)%len(xrfKeyAlphabet)]
	}

	return string(buf)
}
