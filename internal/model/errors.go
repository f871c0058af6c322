// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, data, catalog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeNoPrimaryName        = "NO_PRIMARY_NAME"
	ErrCodeInvalidPlayerCount   = "INVALID_PLAYER_COUNT"
	ErrCodeMissingRequiredField = "MISSING_REQUIRED_FIELD"
	ErrCodeInvalidQuery         = "INVALID_QUERY"
	ErrCodeInvalidUsername      = "INVALID_USERNAME"
	ErrCodeCollectionNotFound   = "COLLECTION_NOT_FOUND"
	ErrCodeCollectionPreparing  = "COLLECTION_PREPARING"
	ErrCodeCatalogUnavailable   = "CATALOG_UNAVAILABLE"
)

// NewNoPrimaryNameError は主表示名が特定できないレコードのエラーを生成する。
// データ形状エラー: 該当レコード1件のビルドのみが失敗する。
func NewNoPrimaryNameError(gameID int) *APIError {
	return &APIError{
		Code:     ErrCodeNoPrimaryName,
		Message:  fmt.Sprintf("主表示名（type=primary）が見つかりません: id=%d", gameID),
		Category: "data",
		Action:   "カタログ側のレコードが不完全です。コレクションを再取得してください。",
	}
}

// NewInvalidPlayerCountError は解釈できないプレイ人数指定のエラーを生成する。
// 数字でも「N+」形式でもない指定は黙ってNaNに落とさず、該当レコードを失敗させる。
func NewInvalidPlayerCountError(gameID int, designator string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidPlayerCount,
		Message:  fmt.Sprintf("解釈できないプレイ人数指定です: id=%d, designator=%q", gameID, designator),
		Category: "data",
		Action:   "カタログ側の投票データが不正です。コレクションを再取得してください。",
	}
}

// NewMissingRequiredFieldError は必須スカラーフィールド欠落のエラーを生成する。
func NewMissingRequiredFieldError(gameID int, field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingRequiredField,
		Message:  fmt.Sprintf("必須フィールドがありません: id=%d, field=%s", gameID, field),
		Category: "data",
		Action:   "カタログ側のレコードが不完全です。コレクションを再取得してください。",
	}
}

// NewInvalidQueryError は無効なクエリパラメータのエラーを生成する。
func NewInvalidQueryError(param, value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidQuery,
		Message:  fmt.Sprintf("無効なクエリパラメータです: %s=%q", param, value),
		Category: "validation",
		Action:   "パラメータの形式を確認してください。",
	}
}

// NewInvalidUsernameError は無効なユーザー名のエラーを生成する。
func NewInvalidUsernameError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidUsername,
		Message:  fmt.Sprintf("無効なユーザー名です: %q", username),
		Category: "validation",
		Action:   "カタログサービスに登録されているユーザー名を指定してください。",
	}
}

// NewCollectionNotFoundError はコレクション未検出のエラーを生成する。
func NewCollectionNotFoundError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeCollectionNotFound,
		Message:  fmt.Sprintf("コレクションが見つかりません: %s", username),
		Category: "catalog",
		Action:   "ユーザー名を確認してください。",
	}
}

// NewCollectionPreparingError はカタログ側でコレクション生成中のエラーを生成する。
// 「リクエスト受理・後で再試行」ステータスがリトライ上限まで続いた場合に使う。
// 「データなし」とは区別されるリトライ可能ステータス。
func NewCollectionPreparingError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeCollectionPreparing,
		Message:  fmt.Sprintf("カタログ側でコレクションを準備中です: %s", username),
		Category: "catalog",
		Action:   "しばらく待ってから再度リクエストしてください。",
	}
}

// NewCatalogUnavailableError はカタログサービス利用不可のエラーを生成する。
func NewCatalogUnavailableError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeCatalogUnavailable,
		Message:  fmt.Sprintf("カタログサービスにアクセスできません: %s", reason),
		Category: "catalog",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
