package notice

import (
	"fmt"
	"strings"
)

// compareValues orders context values: numbers numerically, everything
// else by its printed form. Numbers sort before non-numbers.
func compareValues(a, b interface{}) int {
	fa, aNum := number(a)
	fb, bNum := number(b)
	switch {
	case aNum && bNum:
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case aNum:
		return -1
	case bNum:
		return 1
	}
	return strings.Compare(text(a), text(b))
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

func text(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// compareContexts orders two contexts field by field.
func compareContexts(a, b []Field) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := strings.Compare(a[i].Name, b[i].Name); c != 0 {
			return c
		}
		if c := compareValues(a[i].Value, b[i].Value); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// compareNotices orders notices by code, severity and context.
func compareNotices(a, b Notice) int {
	if c := strings.Compare(a.code, b.code); c != 0 {
		return c
	}
	if a.severity != b.severity {
		return int(b.severity) - int(a.severity)
	}
	return compareContexts(a.context, b.context)
}
