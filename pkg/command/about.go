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

package command

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const defaultRequestTimeout = 30 * time.Second

func getAboutCommand(opts *Options, certsPassword *string) *cobra.Command {
	return &cobra.Command{
		Use:     "about",
		Short:   "Print information about the repository service.",
		Example: "about --host sense.example.com --certificates-path /certs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := initLogger(opts)

			client, err := newClient(opts, *certsPassword)
			if err != nil {
				return err
			}

			ctx, canc := context.WithTimeout(cmd.Context(), defaultRequestTimeout)
			defer canc()

			log.Debug().Str("host", opts.Connection.Host).
				Msg("getting information from the repository...")

			info, err := client.About().Get(ctx)
			if err != nil {
				log.Err(err).Msg("could not get information from the repository")
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}
}
