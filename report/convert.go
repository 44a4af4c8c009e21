// Copyright 2025 The SocialSim Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

const (
	// NullMarker replaces missing values in converted reports
	NullMarker = "None"
)

type named interface {
	Name() string
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Convert recursively transforms a report-shaped value into plain
// maps, slices and primitive values: nil becomes NullMarker, floats
// become strings, measurement and metric functions are replaced by
// their names and map keys become strings. Converting an already
// converted value yields the same value.
func Convert(v any) any {
	switch tv := v.(type) {
	case nil:
		return NullMarker
	case string, bool, int, int64, int32, uint, uint64, uint32:
		return tv
	case float64:
		return formatFloat(tv)
	case float32:
		return formatFloat(float64(tv))
	case time.Time:
		return tv.Format(time.RFC3339)
	case time.Duration:
		return tv.String()
	case named:
		return tv.Name()
	case map[string]any:
		ans := make(map[string]any, len(tv))
		for k, item := range tv {
			ans[k] = Convert(item)
		}
		return ans
	case []any:
		ans := make([]any, len(tv))
		for i, item := range tv {
			ans[i] = Convert(item)
		}
		return ans
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return NullMarker
		}
		return Convert(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return []any{}
		}
		ans := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ans[i] = Convert(rv.Index(i).Interface())
		}
		return ans
	case reflect.Map:
		ans := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			ans[fmt.Sprint(iter.Key().Interface())] = Convert(iter.Value().Interface())
		}
		return ans
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	}
	return v
}
