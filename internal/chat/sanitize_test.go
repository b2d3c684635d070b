package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"Plain", "hello there", "hello there"},
		{"Trims", "  hello  ", "hello"},
		{"ScriptBlock", `before<script>alert("x")</script>after`, "beforeafter"},
		{"ScriptWithAttrs", `<script type="text/javascript">evil()</script>ok`, "ok"},
		{"MixedCase", `<SCRIPT>evil()</SCRIPT>ok`, "ok"},
		{"Multiline", "a<script>\nevil()\n</script>b", "ab"},
		{"MultipleBlocks", "<script>a</script>x<script>b</script>y", "xy"},
		{"OnlyScript", "<script>alert(1)</script>", ""},
		{"OtherMarkupKept", "<b>bold</b> claim", "<b>bold</b> claim"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sanitize(tc.in))
		})
	}
}
