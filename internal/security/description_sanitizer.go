// Package security はアプリケーションのセキュリティ機能を提供する。
//
// DescriptionSanitizerService はカタログから取得したゲーム説明文を
// サニタイズし、XSS攻撃などのセキュリティリスクからユーザーを保護する。
// bluemondayライブラリを使用した許可リストベースのポリシーで、
// 安全なタグのみを通過させる。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// DescriptionSanitizerService はゲーム説明文のサニタイズ機能のインターフェースを定義する。
// 詳細レコードの保存前に使用される。
type DescriptionSanitizerService interface {
	// SanitizeDescription は説明文をサニタイズして安全なHTMLを返す。
	// カタログはHTMLエスケープ済みの説明文を返すため、まずアンエスケープしてから
	// 許可タグ（p, br, ul, ol, li, strong, em, i, b）のみを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	SanitizeDescription(raw string) string
}

// descriptionSanitizer はDescriptionSanitizerServiceの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type descriptionSanitizer struct {
	policy *bluemonday.Policy
}

// NewDescriptionSanitizer はDescriptionSanitizerServiceの新しいインスタンスを生成する。
// 初期化時にbluemondayのカスタムポリシーを構築する。
// ポリシーの内容:
//   - 許可タグ: p, br, ul, ol, li, strong, em, i, b
//   - 禁止タグ: script, iframe, style, a, img および全てのon*イベント属性
//
// 説明文はリンクも画像も持たないプレーンな本文として扱う。
func NewDescriptionSanitizer() *descriptionSanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em", "i", "b",
	)
	return &descriptionSanitizer{
		policy: p,
	}
}

// SanitizeDescription は説明文をサニタイズして安全なHTMLを返す。
func (s *descriptionSanitizer) SanitizeDescription(raw string) string {
	if raw == "" {
		return ""
	}
	// カタログの説明文は二重エスケープされている（&amp;mdash; など）。
	unescaped := html.UnescapeString(raw)
	return strings.TrimSpace(s.policy.Sanitize(unescaped))
}
