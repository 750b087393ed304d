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

/*
Package graphql checks GraphQL documents against a schema. It follows the
specification laid out at https://graphql.github.io/graphql-spec/June2018/

A Schema is parsed once from its type definitions and can then validate any
number of queries:

	schema, err := graphql.ParseSchema(sdl)
	if err != nil {
		// ...
	}
	query, errs := graphql.ParseQuery(source)
	if len(errs) == 0 {
		errs = schema.Validate(query)
	}

# Selection sets

Validate enforces the leaf field selection rule. Every field (and every
operation) whose type is an object, interface, or union must select at least
one field, and every field whose type is a scalar or enum must not select
anything. Each problem is reported as a *ResponseError with the location of
the offending field and the path of response keys leading to it, starting with
the operation, like ["query getCheese", "missingFieldsCheese"].

For the common case of checking queries sent over HTTP, see the graphqlhttp
package in this module.
*/
package graphql
