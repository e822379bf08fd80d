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
	"fmt"
	"os"
	"strings"

	qrsgo "github.com/lcangeloti/qlik-rest-sdk/pkg/qrs-go"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	defaultVerbosity int = 1
)

func initLogger(opts *Options) (log zerolog.Logger) {
	logLevels := [3]zerolog.Level{
		zerolog.DebugLevel,
		zerolog.InfoLevel,
		zerolog.ErrorLevel,
	}

	if opts.Verbosity < 0 || opts.Verbosity >= len(logLevels) {
		fmt.Println("invalid verbosity level provided, using default...")
		opts.Verbosity = defaultVerbosity
	}

	if opts.PrettyLogs {
		log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	} else {
		log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	log = log.Level(logLevels[opts.Verbosity])
	return log
}

func getSettingsFromFile(settingsPath string) (*Options, error) {
	file, err := os.Open(settingsPath)
	switch {
	case err == nil:
		stat, err := file.Stat()
		if err != nil {
			return nil, fmt.Errorf("could not check file path: %w", err)
		}

		if stat.IsDir() {
			return nil, fmt.Errorf("provided file path is a directory")
		}
	case os.IsNotExist(err):
		return nil, fmt.Errorf("provided file path does not exist")
	default:
		return nil, fmt.Errorf("could not open file path: %w", err)
	}

	defer file.Close()

	var settings Options
	if err := yaml.NewDecoder(file).Decode(&settings); err != nil {
		return nil, fmt.Errorf("could not unmarshal settings file: %w", err)
	}

	return &settings, nil
}

// newClient builds and configures a repository client from the effective
// options, loading certificates when the mode needs them.
func newClient(opts *Options, certsPassword string) (*qrsgo.Client, error) {
	conn := opts.Connection
	if conn == nil || conn.Host == "" {
		return nil, fmt.Errorf("no host provided")
	}

	client, err := qrsgo.New(conn.Host)
	if err != nil {
		return nil, fmt.Errorf("could not create client: %w", err)
	}

	connOpts := []qrsgo.ConnectionOption{}
	if conn.UserDirectory != "" || conn.UserID != "" {
		connOpts = append(connOpts, qrsgo.WithUser(conn.UserDirectory, conn.UserID))
	}
	if conn.Insecure {
		connOpts = append(connOpts, qrsgo.WithSkipVerify())
	}

	switch strings.ToLower(conn.Mode) {
	case "", "direct":
		if conn.Port > 0 {
			connOpts = append(connOpts, qrsgo.WithPort(conn.Port))
		}

		if err := client.ConfigureDirectConnection(connOpts...); err != nil {
			return nil, err
		}

		if conn.CertificatesPath == "" {
			return nil, fmt.Errorf("no certificates path provided")
		}

		if err := client.LoadCertificates(conn.CertificatesPath, certsPassword); err != nil {
			return nil, fmt.Errorf("could not load certificates: %w", err)
		}
	case "ntlm":
		if err := client.ConfigureNTLMProxy(connOpts...); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported connection mode: %s", conn.Mode)
	}

	return client, nil
}
