// Copyright 2019 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
	"zombiezen.com/go/gqlcheck/graphql"
)

func newCheckCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [options] QUERY_FILE [...]",
		Short: "Validate query files against the schema",
		Long: "Validate query files against the schema. Each file's errors are " +
			"printed and the command fails if any file has errors.",
		Example: heredoc.Doc(`
			# Check two queries, printing one JSON object per file
			$ gqlcheck check --schema schema.graphql getCheese.graphql listCheeses.graphql

			# Print errors as file:line:column: message
			$ gqlcheck check --schema schema.graphql --format text queries/*.graphql
		`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, v, args)
		},
	}
	cmd.Flags().String("format", "json", "Output format: json, yaml, or text")
	v.BindPFlag("format", cmd.Flags().Lookup("format"))
	return cmd
}

// checkResult is the JSON and YAML form of one checked file.
type checkResult struct {
	File   string                   `json:"file" yaml:"file"`
	Errors []*graphql.ResponseError `json:"errors" yaml:"errors"`
}

func runCheck(cmd *cobra.Command, v *viper.Viper, files []string) error {
	format := v.GetString("format")
	if format != "json" && format != "yaml" && format != "text" {
		return xerrors.Errorf("unknown format %q", format)
	}
	schema, err := loadSchema(v.GetString("schema"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	failed := 0
	var yamlResults []checkResult
	for _, file := range files {
		source, err := os.ReadFile(file)
		if err != nil {
			return xerrors.Errorf("check: %w", err)
		}
		errs := schema.Check(string(source))
		if len(errs) > 0 {
			failed++
		}
		switch format {
		case "json":
			if errs == nil {
				errs = []*graphql.ResponseError{}
			}
			if err := enc.Encode(checkResult{File: file, Errors: errs}); err != nil {
				return xerrors.Errorf("check: %w", err)
			}
		case "yaml":
			yamlResults = append(yamlResults, checkResult{File: file, Errors: errs})
		case "text":
			if err := writeTextErrors(out, file, errs); err != nil {
				return xerrors.Errorf("check: %w", err)
			}
		}
	}
	if format == "yaml" {
		data, err := yaml.Marshal(yamlResults)
		if err != nil {
			return xerrors.Errorf("check: %w", err)
		}
		if _, err := out.Write(data); err != nil {
			return xerrors.Errorf("check: %w", err)
		}
	}
	if failed > 0 {
		return xerrors.Errorf("%d of %d files have errors", failed, len(files))
	}
	return nil
}

// writeTextErrors writes one "file:line:column: message" line per error.
// Errors without a location are written as "file: message".
func writeTextErrors(w io.Writer, file string, errs []*graphql.ResponseError) error {
	for _, e := range errs {
		var err error
		if len(e.Locations) > 0 {
			_, err = fmt.Fprintf(w, "%s:%v: %s\n", file, e.Locations[0], e.Message)
		} else {
			_, err = fmt.Fprintf(w, "%s: %s\n", file, e.Message)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func loadSchema(path string) (*graphql.Schema, error) {
	if path == "" {
		return nil, xerrors.New("no schema given (use --schema or GQLCHECK_SCHEMA)")
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("load schema: %w", err)
	}
	schema, err := graphql.ParseSchema(string(source))
	if err != nil {
		return nil, xerrors.Errorf("load schema %s: %w", path, err)
	}
	return schema, nil
}
