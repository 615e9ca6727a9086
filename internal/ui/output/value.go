package output

import (
	"fmt"
	"strconv"

	"go.trai.ch/pulse/internal/core/domain"
)

// FormatValue renders an output value on one line.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case float64:
		return strconv.FormatFloat(x, 'g', 6, 64)
	case string:
		return strconv.Quote(x)
	case *domain.Artifact:
		if x == nil {
			return "<no artifact>"
		}
		return fmt.Sprintf("%s [%d bytes %s]", x.DebugName, len(x.Bytes), x.Fingerprint)
	default:
		return fmt.Sprintf("%v", x)
	}
}
