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

package errors

import (
	"fmt"
)

var (
	ErrorNotConfigured           error = fmt.Errorf("no connection mode has been configured")
	ErrorAlreadyConfigured       error = fmt.Errorf("a connection mode has already been configured")
	ErrorCertificatesNotLoaded   error = fmt.Errorf("no client certificates have been loaded")
	ErrorCertificateDirNotFound  error = fmt.Errorf("certificates directory does not exist")
	ErrorCertificateFileNotFound error = fmt.Errorf("certificate file does not exist")
	ErrorDecodingCertificate     error = fmt.Errorf("could not decode certificate file")
	ErrorParsingBody             error = fmt.Errorf("could not read the response body")
	ErrorUnmarshallingBody       error = fmt.Errorf("could not unmarshal the response body")
	ErrorSessionRejected         error = fmt.Errorf("the proxy rejected the session and returned a login page")
	ErrorNoIDProvided            error = fmt.Errorf("no ID provided")
	ErrorNoNameProvided          error = fmt.Errorf("no name provided")
	ErrorNoContentsProvided      error = fmt.Errorf("no contents provided")
)

// QrsError is the error body the repository service returns when a request
// is well-formed but rejected, e.g. a validation failure.
type QrsError struct {
	Message   string `json:"message"`
	ErrorCode int    `json:"errorCode"`
}

func (q *QrsError) Error() string {
	return fmt.Sprintf("code: %d, message: %s", q.ErrorCode, q.Message)
}

// StatusError carries a non-2xx response untranslated, so that callers can
// look at the exact status code and body the repository returned.
type StatusError struct {
	Code int
	Body string
}

func (s *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", s.Code, s.Body)
}
