package mcpserver

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const maxUploadSize = 16 << 20 // 16 MB

// decodeContent accepts plain base64 or a data:[<mediatype>];base64,<data> URI.
func decodeContent(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found {
			return nil, fmt.Errorf("invalid data URI: missing comma")
		}
		if !strings.HasSuffix(meta, ";base64") {
			return nil, fmt.Errorf("invalid data URI: binary content must be base64")
		}
		s = payload
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid base64 content: %w", err)
	}
	return data, nil
}
