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

package app

import "time"

// App is an application as the repository describes it.
type App struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	// AppID is only set for apps that were migrated from older releases.
	AppID          string    `json:"appId"`
	Owner          *Owner    `json:"owner"`
	Published      bool      `json:"published"`
	PublishTime    time.Time `json:"publishTime"`
	CreatedDate    time.Time `json:"createdDate"`
	ModifiedDate   time.Time `json:"modifiedDate"`
	LastReloadTime time.Time `json:"lastReloadTime"`
	FileSize       int64     `json:"fileSize"`
	// Privileges the requesting identity holds on this app. Only filled
	// when the request asks for them.
	Privileges []string `json:"privileges"`
}

type Owner struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	UserDirectory string `json:"userDirectory"`
	Name          string `json:"name"`
}
