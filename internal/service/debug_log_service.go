package service

import (
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// ErrDebugLogInvalid 表示客户端上报的日志缺少 location 或 message。
var ErrDebugLogInvalid = errors.New("invalid log data")

// DebugLogService 将前端调试日志逐行写入专用日志文件。
type DebugLogService struct {
	sink *zap.Logger
}

// NewDebugLogService wraps a logger whose output is the debug log file.
func NewDebugLogService(sink *zap.Logger) *DebugLogService {
	if sink == nil {
		sink = zap.NewNop()
	}
	return &DebugLogService{sink: sink}
}

// Write decodes raw as a JSON object and appends it to the debug log.
func (s *DebugLogService) Write(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrDebugLogInvalid
	}

	var record map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return ErrDebugLogInvalid
	}

	location, okLocation := record["location"]
	message, okMessage := record["message"]
	if !okLocation || !okMessage || location == nil || message == nil {
		return ErrDebugLogInvalid
	}

	fields := make([]zap.Field, 0, len(record))
	for key, value := range record {
		if key == "message" {
			continue
		}
		fields = append(fields, zap.Any(key, value))
	}
	s.sink.Info(stringify(message), fields...)
	return nil
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(encoded)
}
