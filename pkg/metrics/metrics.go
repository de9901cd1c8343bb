// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// stasisNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	stasisNamespace = "stasis"

	// 以下为当前使用的通用标签名。
	resultLabelName    = "result"
	directionLabelName = "direction"
	kindLabelName      = "kind"

	ResolveExact     = "exact"
	ResolveSupertype = "supertype"
	ResolveMiss      = "miss"

	DirectionWrite = "write"
	DirectionRead  = "read"

	KindObject    = "object"
	KindReference = "reference"
)

var (
	// buckets 为借用耗时直方图的桶划分，单位为秒。
	// 实际桶分布为：[1e-06 4e-06 1.6e-05 6.4e-05 0.000256 0.001024 0.004096 0.016384 0.065536 0.262144]
	buckets = prometheus.ExponentialBuckets(0.000001, 4, 10)

	RegisteredSerializers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: stasisNamespace,
			Subsystem: "registry",
			Name:      "serializers",
			Help:      "number of serializers in the registry table",
		})

	ResolveTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: stasisNamespace,
			Name:      "resolve_total",
			Help:      "serializer resolutions that missed the cache, by result",
		}, []string{resultLabelName})

	ObjectsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: stasisNamespace,
			Name:      "objects_total",
			Help:      "values written or read by sessions, by header kind",
		}, []string{directionLabelName, kindLabelName})

	StringPoolBorrowSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: stasisNamespace,
			Name:      "string_pool_borrow_seconds",
			Help:      "time spent waiting for a scratch buffer in the string serializer",
			Buckets:   buckets,
		})

	registerOnce     sync.Once
	metricRegisterer prometheus.Registerer
)

// GetRegisterer 返回全局 Prometheus Registerer。
// 如果尚未通过 Register 显式设置，则返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// RegisterStasisMetrics 注册编解码相关的全部指标，只会生效一次。
func RegisterStasisMetrics(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(RegisteredSerializers)
		r.MustRegister(ResolveTotal)
		r.MustRegister(ObjectsTotal)
		r.MustRegister(StringPoolBorrowSeconds)
		metricRegisterer = r
	})
}
