package usage

import "fmt"

var byteUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatBytes renders a byte count with binary (1024) unit steps, two decimal
// places from KB up. Negative counts are not meaningful and render as "N/A".
func FormatBytes(size int64) string {
	if size < 0 {
		return "N/A"
	}
	if size == 0 {
		return "0 Bytes"
	}

	value := float64(size)
	unit := 0
	for value >= 1024 && unit < len(byteUnits)-1 {
		value /= 1024
		unit++
	}
	if unit == 0 {
		return fmt.Sprintf("%d Bytes", size)
	}
	return fmt.Sprintf("%.2f %s", value, byteUnits[unit])
}
