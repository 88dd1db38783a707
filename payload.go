// Copyright 2025 Patrick J. Scruggs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package remotelog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"time"
)

// encodableArgument converts a log argument into a value encoding/json can
// serialize faithfully. Nil pointers encode as null without calling any of
// their methods.
func encodableArgument(arg any) any {
	if isNilPointer(arg) {
		return nil
	}
	switch v := arg.(type) {
	case nil:
		return nil
	case error:
		return v.Error()
	case slog.Attr:
		return map[string]any{v.Key: resolveSlogValue(v.Value)}
	case slog.Value:
		return resolveSlogValue(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return v.String()
	case json.Marshaler:
		if _, err := v.MarshalJSON(); err != nil {
			return fmt.Sprint(v)
		}
		return v
	case fmt.Stringer:
		if _, err := json.Marshal(v); err != nil {
			return v.String()
		}
		return v
	}
	if _, err := json.Marshal(arg); err != nil {
		return fmt.Sprint(arg)
	}
	return arg
}

// resolveSlogValue converts an slog.Value into a Go value suitable for JSON.
func resolveSlogValue(v slog.Value) any {
	rv := v.Resolve()
	switch rv.Kind() {
	case slog.KindGroup:
		return resolveGroupAttrs(rv.Group())
	case slog.KindBool:
		return rv.Bool()
	case slog.KindDuration:
		return rv.Duration().String()
	case slog.KindFloat64:
		return rv.Float64()
	case slog.KindInt64:
		return rv.Int64()
	case slog.KindString:
		return rv.String()
	case slog.KindTime:
		return rv.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindUint64:
		return rv.Uint64()
	case slog.KindAny:
		return encodableArgument(rv.Any())
	default:
		return nil
	}
}

// resolveGroupAttrs converts grouped attributes into a map, omitting blank keys.
func resolveGroupAttrs(attrs []slog.Attr) any {
	if len(attrs) == 0 {
		return nil
	}
	group := make(map[string]any, len(attrs))
	for _, a := range attrs {
		if a.Key == "" {
			continue
		}
		group[a.Key] = resolveSlogValue(a.Value)
	}
	return group
}

// isNilPointer reports whether arg is a nil interface or a typed nil pointer.
func isNilPointer(arg any) bool {
	if arg == nil {
		return true
	}
	rv := reflect.ValueOf(arg)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
