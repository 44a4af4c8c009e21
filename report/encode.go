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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"
)

type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// FormatFromPath chooses output format based on a file extension.
// Unknown extensions are encoded as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return FormatMsgpack
	}
	return FormatJSON
}

// Encode serializes a converted report. In both formats, map keys
// are written in sorted order.
func Encode(v any, format Format) ([]byte, error) {
	var buff bytes.Buffer
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(&buff)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
	case FormatMsgpack:
		enc := msgpack.NewEncoder(&buff)
		enc.SetSortMapKeys(true)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to encode report: unknown format %s", format)
	}
	return buff.Bytes(), nil
}

func WriteFile(path string, data []byte) error {
	log.Info().Str("path", path).Msg("saving results to file")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save results to %s: %w", path, err)
	}
	return nil
}
