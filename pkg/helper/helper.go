package helper

import (
	"fmt"
	"strings"
)

// method to convert from seconds to minutes:seconds:milliseconds
func SecondsToMinutes(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	minutes := int(seconds / 60)
	seconds = seconds - float64(minutes*60)
	milliseconds := int((seconds - float64(int(seconds))) * 1000)
	return fmt.Sprintf("%02d:%02d.%03d", minutes, int(seconds), milliseconds)
}

// method to convert to seconds and 3 milliseconds
func ToSectorTime(t float64) string {
	if t <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.3f", t)
}

func ToSpeed(speed float64) string {
	if speed <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f km/h", speed)
}

// SignedDiff renders a record delta with its sign; record deltas are
// negative for times and positive for speeds. Zero means no delta.
func SignedDiff(delta float64, unit string) string {
	if delta == 0 {
		return "-"
	}
	return fmt.Sprintf("%+.3f%s", delta, unit)
}

func GetDriverCodeName(name string) string {
	// this function reads a name with possible surname and will return the
	// first letter of the name and the first letters of the surname
	if name == "" {
		return ""
	}
	words := strings.Split(name, " ")
	code := string(words[0][0])
	if len(words) > 1 {
		if len(words[1]) > 2 {
			code += words[1][:2]
		} else {
			code += words[1]
		}
	} else {
		if len(words[0]) > 2 {
			code += words[0][1:3]
		} else {
			code += words[0]
		}
	}
	return strings.ToUpper(code)
}
