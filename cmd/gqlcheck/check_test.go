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
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v2"
	"zombiezen.com/go/gqlcheck/graphql"
)

const testSchema = `
	type Query {
		cheese(id: ID!): Cheese
		cheeses: [Cheese!]!
	}

	type Cheese {
		name: String!
		milk: Milk!
	}

	enum Milk {
		COW
		GOAT
		SHEEP
	}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o666); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCommand runs gqlcheck with the given arguments and returns its standard
// output. HOME points to an empty directory so no user config is read.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cmd := newRootCommand()
	stdout := new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func decodeResults(t *testing.T, out string) []checkResult {
	t.Helper()
	var results []checkResult
	dec := json.NewDecoder(bytes.NewBufferString(out))
	for dec.More() {
		var r checkResult
		if err := dec.Decode(&r); err != nil {
			t.Fatalf("decode output: %v\noutput:\n%s", err, out)
		}
		results = append(results, r)
	}
	return results
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.graphql", testSchema)
	goodPath := writeFile(t, dir, "good.graphql", "{ cheeses { name milk } }\n")
	badPath := writeFile(t, dir, "bad.graphql", "{\n  cheeses\n  cheese(id: 1) { milk { x } }\n}\n")

	t.Run("AllValid", func(t *testing.T) {
		out, err := runCommand(t, "check", "--schema", schemaPath, goodPath)
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		want := []checkResult{{File: goodPath, Errors: []*graphql.ResponseError{}}}
		if diff := cmp.Diff(want, decodeResults(t, out), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("results (-want +got):\n%s", diff)
		}
	})
	t.Run("SomeInvalid", func(t *testing.T) {
		out, err := runCommand(t, "check", "--schema", schemaPath, goodPath, badPath)
		if err == nil {
			t.Error("check did not return an error")
		}
		want := []checkResult{
			{File: goodPath},
			{
				File: badPath,
				Errors: []*graphql.ResponseError{
					{
						Message:   "Objects must have selections (field 'cheeses' returns Cheese but has no selections)",
						Locations: []graphql.Location{{Line: 2, Column: 3}},
						Fields:    []string{"query", "cheeses"},
					},
					{
						Message:   "Selections can't be made on scalars (field 'milk' returns Milk but has selections [x])",
						Locations: []graphql.Location{{Line: 3, Column: 19}},
						Fields:    []string{"query", "cheese", "milk"},
					},
				},
			},
		}
		if diff := cmp.Diff(want, decodeResults(t, out), cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("results (-want +got):\n%s", diff)
		}
	})
	t.Run("TextFormat", func(t *testing.T) {
		out, err := runCommand(t, "check", "--schema", schemaPath, "--format", "text", goodPath, badPath)
		if err == nil {
			t.Error("check did not return an error")
		}
		want := badPath + ":2:3: Objects must have selections (field 'cheeses' returns Cheese but has no selections)\n" +
			badPath + ":3:19: Selections can't be made on scalars (field 'milk' returns Milk but has selections [x])\n"
		if diff := cmp.Diff(want, out); diff != "" {
			t.Errorf("output (-want +got):\n%s", diff)
		}
	})
	t.Run("YAMLFormat", func(t *testing.T) {
		out, err := runCommand(t, "check", "--schema", schemaPath, "--format", "yaml", goodPath, badPath)
		if err == nil {
			t.Error("check did not return an error")
		}
		var got []checkResult
		if err := yaml.Unmarshal([]byte(out), &got); err != nil {
			t.Fatalf("decode output: %v\noutput:\n%s", err, out)
		}
		want := []checkResult{
			{File: goodPath},
			{
				File: badPath,
				Errors: []*graphql.ResponseError{
					{
						Message:   "Objects must have selections (field 'cheeses' returns Cheese but has no selections)",
						Locations: []graphql.Location{{Line: 2, Column: 3}},
						Fields:    []string{"query", "cheeses"},
					},
					{
						Message:   "Selections can't be made on scalars (field 'milk' returns Milk but has selections [x])",
						Locations: []graphql.Location{{Line: 3, Column: 19}},
						Fields:    []string{"query", "cheese", "milk"},
					},
				},
			},
		}
		if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("results (-want +got):\n%s", diff)
		}
	})
	t.Run("SchemaFromEnvironment", func(t *testing.T) {
		t.Setenv("GQLCHECK_SCHEMA", schemaPath)
		out, err := runCommand(t, "check", goodPath)
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if got := decodeResults(t, out); len(got) != 1 || len(got[0].Errors) != 0 {
			t.Errorf("results = %+v; want one result without errors", got)
		}
	})
	t.Run("SchemaFromConfigFile", func(t *testing.T) {
		configPath := writeFile(t, t.TempDir(), "gqlcheck.yaml", "schema: "+schemaPath+"\nformat: text\n")
		out, err := runCommand(t, "check", "--config", configPath, goodPath)
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if out != "" {
			t.Errorf("output = %q; want empty", out)
		}
	})
	t.Run("MissingConfigFile", func(t *testing.T) {
		_, err := runCommand(t, "check", "--config", filepath.Join(dir, "nope.yaml"), "--schema", schemaPath, goodPath)
		if err == nil {
			t.Error("check did not return an error")
		}
	})
	t.Run("NoSchema", func(t *testing.T) {
		_, err := runCommand(t, "check", goodPath)
		if err == nil {
			t.Error("check did not return an error")
		}
	})
	t.Run("BadSchema", func(t *testing.T) {
		badSchemaPath := writeFile(t, t.TempDir(), "schema.graphql", "type Query { cheese: Fromage }")
		_, err := runCommand(t, "check", "--schema", badSchemaPath, goodPath)
		if err == nil {
			t.Error("check did not return an error")
		}
	})
	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := runCommand(t, "check", "--schema", schemaPath, "--format", "xml", goodPath)
		if err == nil {
			t.Error("check did not return an error")
		}
	})
	t.Run("MissingQueryFile", func(t *testing.T) {
		_, err := runCommand(t, "check", "--schema", schemaPath, filepath.Join(dir, "nope.graphql"))
		if err == nil {
			t.Error("check did not return an error")
		}
	})
}

func TestWriteTextErrors(t *testing.T) {
	errs := []*graphql.ResponseError{
		{
			Message:   "Objects must have selections (field 'cheeses' returns Cheese but has no selections)",
			Locations: []graphql.Location{{Line: 2, Column: 3}},
		},
		{Message: "document contains no operations"},
	}
	buf := new(bytes.Buffer)
	if err := writeTextErrors(buf, "q.graphql", errs); err != nil {
		t.Fatal(err)
	}
	want := "q.graphql:2:3: Objects must have selections (field 'cheeses' returns Cheese but has no selections)\n" +
		"q.graphql: document contains no operations\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}
