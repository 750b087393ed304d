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

package graphqlhttp

import (
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

// ValidationErrors measures the number of errors found in each request.
var ValidationErrors = stats.Int64(
	"zombiezen.com/go/gqlcheck/graphqlhttp/validation_errors",
	"Number of errors found in a GraphQL request",
	stats.UnitDimensionless,
)

// KeyValid is the tag key that says whether a request passed validation:
// "true" or "false".
var KeyValid = tag.MustNewKey("graphql_valid")

// ValidationErrorsView aggregates ValidationErrors by KeyValid.
// Register it with view.Register to export it.
var ValidationErrorsView = &view.View{
	Name:        "zombiezen.com/go/gqlcheck/graphqlhttp/validation_errors",
	Description: "Distribution of errors found per GraphQL request",
	Measure:     ValidationErrors,
	TagKeys:     []tag.Key{KeyValid},
	Aggregation: view.Distribution(0, 1, 2, 4, 8, 16, 32, 64),
}
