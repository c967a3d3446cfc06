package scanapi

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractDetail pulls the human-readable "detail" out of an error body. It accepts
// {"detail": "text"}, {"detail": [{"msg": "..."}, ...]} and {"detail": {"msg": "..."}}.
// Anything else yields "".
func ExtractDetail(body []byte) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}

	detail := gjson.GetBytes(body, "detail")
	switch {
	case !detail.Exists():
		return ""
	case detail.Type == gjson.String:
		return strings.TrimSpace(detail.String())
	case detail.IsArray():
		var msgs []string
		for _, item := range detail.Array() {
			if msg := itemMessage(item); msg != "" {
				msgs = append(msgs, msg)
			}
		}
		return strings.Join(msgs, "; ")
	case detail.IsObject():
		return itemMessage(detail)
	case detail.Type == gjson.Number || detail.Type == gjson.True || detail.Type == gjson.False:
		return detail.String()
	default:
		return ""
	}
}

func itemMessage(item gjson.Result) string {
	if item.Type == gjson.String {
		return strings.TrimSpace(item.String())
	}
	if msg := item.Get("msg"); msg.Exists() && msg.Type == gjson.String {
		return strings.TrimSpace(msg.String())
	}
	return ""
}
