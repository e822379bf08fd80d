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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

// Uploads may carry large packages, so they get a more generous timeout
// than plain requests.
const uploadTimeout = 10 * time.Minute

func getAppCommand(opts *Options, certsPassword *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "app ls|get|rm|upload",
		Short: "Manage applications on the site.",
	}

	cmd.AddCommand(getAppLsCommand(opts, certsPassword))
	cmd.AddCommand(getAppGetCommand(opts, certsPassword))
	cmd.AddCommand(getAppRmCommand(opts, certsPassword))
	cmd.AddCommand(getAppUploadCommand(opts, certsPassword))

	return cmd
}

func getAppLsCommand(opts *Options, certsPassword *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List all applications on the site.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := initLogger(opts)

			client, err := newClient(opts, *certsPassword)
			if err != nil {
				return err
			}

			ctx, canc := context.WithTimeout(cmd.Context(), defaultRequestTimeout)
			defer canc()

			apps, err := client.Apps().List(ctx)
			if err != nil {
				log.Err(err).Msg("could not list applications")
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(apps)
		},
	}
}

func getAppGetCommand(opts *Options, certsPassword *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get [ID]",
		Short: "Print one application.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := initLogger(opts)

			client, err := newClient(opts, *certsPassword)
			if err != nil {
				return err
			}

			ctx, canc := context.WithTimeout(cmd.Context(), defaultRequestTimeout)
			defer canc()

			application, err := client.Apps().Get(ctx, args[0])
			if err != nil {
				log.Err(err).Str("id", args[0]).Msg("could not get application")
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(application)
		},
	}
}

func getAppRmCommand(opts *Options, certsPassword *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm [ID]",
		Short: "Remove an application from the site.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := initLogger(opts)

			client, err := newClient(opts, *certsPassword)
			if err != nil {
				return err
			}

			ctx, canc := context.WithTimeout(cmd.Context(), defaultRequestTimeout)
			defer canc()

			if err := client.Apps().Delete(ctx, args[0]); err != nil {
				log.Err(err).Str("id", args[0]).Msg("could not remove application")
				return err
			}

			log.Info().Str("id", args[0]).Msg("application removed")
			return nil
		},
	}
}

func getAppUploadCommand(opts *Options, certsPassword *string) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:     "upload [FILE]",
		Short:   "Upload an application package to the site.",
		Example: "app upload ./Sales.qvf --name Sales",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := initLogger(opts)

			contents, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("could not read application package: %w", err)
			}

			if name == "" {
				name = filepath.Base(args[0])
			}

			client, err := newClient(opts, *certsPassword)
			if err != nil {
				return err
			}

			ctx, canc := context.WithTimeout(cmd.Context(), uploadTimeout)
			defer canc()

			log.Info().Str("name", name).Int("bytes", len(contents)).
				Msg("uploading application...")

			application, err := client.Apps().Upload(ctx, name, contents)
			if err != nil {
				log.Err(err).Str("name", name).Msg("could not upload application")
				return err
			}

			log.Info().Str("id", application.ID).Msg("application uploaded")

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(application)
		},
	}

	cmd.Flags().StringVar(&name, "name", "",
		"name to import the application as. Defaults to the file name.")

	return cmd
}
