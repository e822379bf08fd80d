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
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewXrfKey(t *testing.T) {
	keyFormat := regexp.MustCompile(`^[A-Za-z0-9]{16}$`)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		key := newXrfKey()
		assert.Regexp(t, keyFormat, key)
		seen[key] = true
	}

	// 100 draws from a 62^16 space colliding would mean the generator is
	// broken, not unlucky.
	assert.Len(t, seen, 100)
}
