package security

import (
	"strings"
	"testing"
	"time"
)

func TestValidateURL_AllowsPublicHosts(t *testing.T) {
	guard := NewCatalogGuard()

	for _, rawURL := range []string{
		"https://boardgamegeek.com/xmlapi2",
		"http://api.example.com/catalog",
		"https://8.8.8.8/xmlapi2",
	} {
		if err := guard.ValidateURL(rawURL); err != nil {
			t.Errorf("ValidateURL(%q) = %v, 許可されるべき", rawURL, err)
		}
	}
}

func TestValidateURL_BlocksDangerousURLs(t *testing.T) {
	guard := NewCatalogGuard()

	cases := []struct {
		name   string
		rawURL string
		reason string
	}{
		{"空URL", "", "empty URL"},
		{"不正スキーム", "ftp://boardgamegeek.com/", "disallowed scheme"},
		{"ファイルスキーム", "file:///etc/passwd", "disallowed scheme"},
		{"ループバックIP", "http://127.0.0.1/xmlapi2", "blocked IP"},
		{"プライベートIP 10系", "http://10.1.2.3/", "blocked IP"},
		{"プライベートIP 172系", "http://172.16.0.1/", "blocked IP"},
		{"プライベートIP 192系", "http://192.168.1.1/", "blocked IP"},
		{"メタデータIP", "http://169.254.169.254/latest/meta-data/", "blocked IP"},
		{"IPv6ループバック", "http://[::1]/", "blocked IP"},
		{"localhost", "http://localhost:8080/", "blocked host"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := guard.ValidateURL(tc.rawURL)
			if err == nil {
				t.Fatalf("ValidateURL(%q) はエラーを返すべき", tc.rawURL)
			}
			if !strings.Contains(err.Error(), tc.reason) {
				t.Errorf("エラー理由が不一致: got %q, want substring %q", err.Error(), tc.reason)
			}
		})
	}
}

func TestNewSafeClient(t *testing.T) {
	guard := NewCatalogGuard()

	client := guard.NewSafeClient(10 * time.Second)
	if client == nil {
		t.Fatal("NewSafeClientはnilを返すべきでない")
	}
}
