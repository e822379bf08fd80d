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
	"compress/flate"
	"compress/gzip"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// decompressBody reverses the content encoding a server applied to a
// response body. Unknown or empty encodings pass the body through as-is.
func decompressBody(encoding string, body []byte) ([]byte, error) {
	switch encoding {
	case "gzip":
		reader, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("cannot open gzip body: %w", err)
		}
		defer reader.Close()

		return io.ReadAll(reader)
	case "deflate":
		reader := flate.NewReader(bytes.NewReader(body))
		defer reader.Close()

		return io.ReadAll(reader)
	default:
		return body, nil
	}
}

// isProxyLoginPage tells whether an HTML body is the virtual proxy's login
// form, which it serves instead of the requested endpoint when it does not
// accept the session.
func isProxyLoginPage(reader io.Reader) (bool, error) {
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return false, fmt.Errorf("cannot open HTML document: %w", err)
	}

	form := doc.FindMatcher(goquery.Single("form"))
	if form.Length() == 0 {
		return false, nil
	}

	// The form proxy page always carries a username input. Header-auth
	// error pages do not.
	return form.Find("input[name=username]").Length() == 1, nil
}
