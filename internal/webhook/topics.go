package webhook

import "strings"

// NormalizeScope turns a webhook scope into a stable snake_case name.
//   - "store/cart/created" -> "cart_created"
//   - "store/order/statusUpdated" -> "order_status_updated"
func NormalizeScope(scope string) string {
	s := strings.TrimSpace(scope)
	s = strings.TrimPrefix(s, "store/")

	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '/' || r == '.' || r == '-':
			b.WriteByte('_')
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune(r)
		}
	}
	t := b.String()
	for strings.Contains(t, "__") {
		t = strings.ReplaceAll(t, "__", "_")
	}
	return strings.Trim(t, "_")
}
