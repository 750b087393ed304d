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
	"strings"

	"go.opencensus.io/stats/view"
	"go.opencensus.io/trace"
	"go.uber.org/zap"
)

// logExporter writes OpenCensus views and spans to a zap logger at info
// level. Sampling decides how many spans reach it.
type logExporter struct {
	log *zap.Logger
}

func (e *logExporter) ExportView(vd *view.Data) {
	for _, row := range vd.Rows {
		fields := []zap.Field{
			zap.String("view", vd.View.Name),
			zap.String("tags", formatTags(row)),
		}
		switch data := row.Data.(type) {
		case *view.DistributionData:
			fields = append(fields, zap.Int64("count", data.Count), zap.Float64("mean", data.Mean))
		case *view.CountData:
			fields = append(fields, zap.Int64("count", data.Value))
		case *view.SumData:
			fields = append(fields, zap.Float64("sum", data.Value))
		case *view.LastValueData:
			fields = append(fields, zap.Float64("value", data.Value))
		}
		e.log.Info("Metric", fields...)
	}
}

func (e *logExporter) ExportSpan(sd *trace.SpanData) {
	fields := []zap.Field{
		zap.String("span", sd.Name),
		zap.String("trace_id", sd.TraceID.String()),
		zap.String("span_id", sd.SpanID.String()),
		zap.Duration("duration", sd.EndTime.Sub(sd.StartTime)),
		zap.Int32("status_code", sd.Status.Code),
	}
	for k, v := range sd.Attributes {
		fields = append(fields, zap.Any(k, v))
	}
	e.log.Info("Span", fields...)
}

func formatTags(row *view.Row) string {
	parts := make([]string, 0, len(row.Tags))
	for _, tg := range row.Tags {
		parts = append(parts, tg.Key.Name()+"="+tg.Value)
	}
	return strings.Join(parts, ",")
}
