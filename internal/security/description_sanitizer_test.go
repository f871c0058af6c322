package security

import "testing"

func TestSanitizeDescription(t *testing.T) {
	sanitizer := NewDescriptionSanitizer()

	cases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "空文字列",
			raw:  "",
			want: "",
		},
		{
			name: "プレーンテキスト",
			raw:  "A game of tactical combat.",
			want: "A game of tactical combat.",
		},
		{
			name: "許可タグは通過",
			raw:  "<p>Build <strong>engines</strong> and <em>win</em>.</p>",
			want: "<p>Build <strong>engines</strong> and <em>win</em>.</p>",
		},
		{
			name: "scriptタグは除去",
			raw:  `<p>Fun game</p><script>alert("xss")</script>`,
			want: "<p>Fun game</p>",
		},
		{
			name: "イベント属性は除去",
			raw:  `<p onclick="steal()">text</p>`,
			want: "<p>text</p>",
		},
		{
			name: "リンクはテキストのみ残る",
			raw:  `<a href="https://evil.example.com">BGG</a>`,
			want: "BGG",
		},
		{
			name: "エスケープ済みタグをアンエスケープしてから除去",
			raw:  "&lt;p&gt;Designed by someone&lt;/p&gt;&lt;script&gt;bad()&lt;/script&gt;",
			want: "<p>Designed by someone</p>",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizer.SanitizeDescription(tc.raw); got != tc.want {
				t.Errorf("SanitizeDescription(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestSanitizeDescription_Idempotent(t *testing.T) {
	sanitizer := NewDescriptionSanitizer()

	raw := "<p>Worker placement with <em>dice</em>.</p>"
	once := sanitizer.SanitizeDescription(raw)
	twice := sanitizer.SanitizeDescription(once)
	if once != twice {
		t.Errorf("サニタイズは冪等であるべき: once=%q twice=%q", once, twice)
	}
}
