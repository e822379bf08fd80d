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
	"github.com/spf13/cobra"
)

type ConnectionOptions struct {
	Host string `yaml:"host"`
	// Mode is either "direct" or "ntlm".
	Mode             string `yaml:"mode"`
	Port             int    `yaml:"port"`
	UserDirectory    string `yaml:"userDirectory"`
	UserID           string `yaml:"userId"`
	CertificatesPath string `yaml:"certificatesPath"`
	Insecure         bool   `yaml:"insecure"`
}

type Options struct {
	Connection *ConnectionOptions `yaml:"connection,omitempty"`
	Verbosity  int                `yaml:"verbosity"`
	PrettyLogs bool               `yaml:"prettyLogs"`
}

func GetRootCommand() *cobra.Command {
	flagOpts := &Options{Connection: &ConnectionOptions{}}
	var (
		settingsFile  string
		certsPassword string
	)

	cmd := &cobra.Command{
		Use:   "qlik-rest-sdk about|app [OPTIONS]",
		Short: "Administer a Qlik Sense site through the repository API.",
		Long: `Talk to the Qlik Sense Repository Service to inspect the site and
upload, list or remove applications.

Connections either go straight to the repository port using the site's
client certificates (direct mode, the default) or through the NTLM
virtual proxy using the credentials of the invoking user (ntlm mode).`,
		Example: "qlik-rest-sdk app ls --host sense.example.com --certificates-path /certs",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if settingsFile == "" {
				return nil
			}

			fileOpts, err := getSettingsFromFile(settingsFile)
			if err != nil {
				return err
			}

			mergeSettings(cmd, flagOpts, fileOpts)
			return nil
		},
	}

	// Flags
	cmd.PersistentFlags().StringVar(&flagOpts.Connection.Host, "host", "",
		"host name of the central node.")
	cmd.PersistentFlags().StringVar(&flagOpts.Connection.Mode, "mode", "direct",
		"connection mode: direct or ntlm.")
	cmd.PersistentFlags().IntVar(&flagOpts.Connection.Port, "port", 0,
		"repository port for direct connections. Leave 0 for the default.")
	cmd.PersistentFlags().StringVar(&flagOpts.Connection.UserDirectory, "user-directory", "",
		"user directory of the identity to impersonate.")
	cmd.PersistentFlags().StringVar(&flagOpts.Connection.UserID, "user-id", "",
		"user ID of the identity to impersonate.")
	cmd.PersistentFlags().StringVar(&flagOpts.Connection.CertificatesPath, "certificates-path", "",
		"directory containing client.pfx, for direct connections.")
	cmd.PersistentFlags().StringVar(&certsPassword, "certificates-password", "",
		"password of the exported certificates, if any.")
	cmd.PersistentFlags().BoolVar(&flagOpts.Connection.Insecure, "insecure", false,
		"whether to connect ignoring self signed certificates.")
	cmd.PersistentFlags().StringVar(&settingsFile, "settings-file", "",
		"path to the file containing settings")
	cmd.PersistentFlags().IntVar(&flagOpts.Verbosity, "verbosity", 1,
		"verbosity level, from 0 to 2.")
	cmd.PersistentFlags().BoolVar(&flagOpts.PrettyLogs, "pretty-logs", false,
		"whether to log data in a slower but human readable format.")

	// Commands
	cmd.AddCommand(getAboutCommand(flagOpts, &certsPassword))
	cmd.AddCommand(getAppCommand(flagOpts, &certsPassword))

	return cmd
}

// mergeSettings applies values from a settings file for every flag the
// user did not explicitly set. Flags always win.
func mergeSettings(cmd *cobra.Command, flagOpts, fileOpts *Options) {
	flags := cmd.Flags()

	if fileOpts.Connection != nil {
		fc := fileOpts.Connection

		if !flags.Changed("host") && fc.Host != "" {
			flagOpts.Connection.Host = fc.Host
		}
		if !flags.Changed("mode") && fc.Mode != "" {
			flagOpts.Connection.Mode = fc.Mode
		}
		if !flags.Changed("port") && fc.Port != 0 {
			flagOpts.Connection.Port = fc.Port
		}
		if !flags.Changed("user-directory") && fc.UserDirectory != "" {
			flagOpts.Connection.UserDirectory = fc.UserDirectory
		}
		if !flags.Changed("user-id") && fc.UserID != "" {
			flagOpts.Connection.UserID = fc.UserID
		}
		if !flags.Changed("certificates-path") && fc.CertificatesPath != "" {
			flagOpts.Connection.CertificatesPath = fc.CertificatesPath
		}
		if !flags.Changed("insecure") {
			flagOpts.Connection.Insecure = fc.Insecure
		}
	}

	if !flags.Changed("verbosity") {
		flagOpts.Verbosity = fileOpts.Verbosity
	}
	if !flags.Changed("pretty-logs") {
		flagOpts.PrettyLogs = fileOpts.PrettyLogs
	}
}
