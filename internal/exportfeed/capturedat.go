package exportfeed

import (
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var trailingEpochPattern = regexp.MustCompile(`(\d{10,})$`)

// InferCapturedAt extracts the capture timestamp (epoch milliseconds) from a
// source key that ends in a numeric run, falling back to now. Export file
// names carry the export time as a trailing millisecond timestamp.
func InferCapturedAt(sourceKey string, now time.Time) int64 {
	if match := trailingEpochPattern.FindStringSubmatch(sourceKey); match != nil {
		if parsed, err := strconv.ParseInt(match[1], 10, 64); err == nil {
			return parsed
		}
	}
	return now.UnixMilli()
}

// SourceKey derives the batch source key from an exported object key: the
// base file name without its extension.
func SourceKey(objectKey string) string {
	base := path.Base(objectKey)
	return strings.TrimSuffix(base, path.Ext(base))
}
