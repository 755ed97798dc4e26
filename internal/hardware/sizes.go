package hardware

import (
	"strconv"
	"strings"
)

// ParseSize converts a human-readable size such as "512M", "7.5G", "16GiB",
// or "123456" into a byte count. Binary suffixes (Ki/Mi/Gi/Ti) use 1024
// multipliers; bare K/M/G/T are treated as binary too, matching the output
// of df, lscpu, and system_profiler. Decimal suffixes (KB/MB/GB/TB) use
// 1000. Returns 0 and false when the input is not a size.
func ParseSize(s string) (uint64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Split number from suffix
	i := 0
	for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
		i++
	}
	numStr := s[:i]
	suffix := strings.TrimSpace(s[i:])

	value, err := strconv.ParseFloat(numStr, 64)
	if err != nil || value < 0 {
		return 0, false
	}

	var mult float64
	switch strings.ToUpper(suffix) {
	case "", "B":
		mult = 1
	case "K", "KI", "KIB":
		mult = 1 << 10
	case "M", "MI", "MIB":
		mult = 1 << 20
	case "G", "GI", "GIB":
		mult = 1 << 30
	case "T", "TI", "TIB":
		mult = 1 << 40
	case "KB":
		mult = 1e3
	case "MB":
		mult = 1e6
	case "GB":
		mult = 1e9
	case "TB":
		mult = 1e12
	default:
		return 0, false
	}

	return uint64(value * mult), true
}
