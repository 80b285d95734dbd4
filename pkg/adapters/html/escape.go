package html

import (
	"fmt"
	stdhtml "html"
)

func escape(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return stdhtml.EscapeString(v)
	default:
		return stdhtml.EscapeString(fmt.Sprint(v))
	}
}
