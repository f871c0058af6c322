package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/davidhorm/bgg-what-to-play-sub000/internal/collection"
	"github.com/davidhorm/bgg-what-to-play-sub000/internal/game"
	"github.com/davidhorm/bgg-what-to-play-sub000/internal/model"
	"github.com/davidhorm/bgg-what-to-play-sub000/internal/query"
)

// CollectionServiceInterface はコレクションハンドラーが必要とするサービスインターフェース。
type CollectionServiceInterface interface {
	// GetCollection はユーザーのコレクションを取得する。キャッシュが有効なら再利用する。
	GetCollection(ctx context.Context, username string, forceRefresh bool) (*game.CollectionResult, error)
	// Refresh はキャッシュを無視してカタログから再取得する。
	Refresh(ctx context.Context, username string) (*game.CollectionResult, error)
}

// CollectionHandler はコレクション取得のHTTPハンドラー。
type CollectionHandler struct {
	service CollectionServiceInterface
	logger  *slog.Logger
}

// NewCollectionHandler はCollectionHandlerを生成する。
func NewCollectionHandler(service CollectionServiceInterface, logger *slog.Logger) *CollectionHandler {
	return &CollectionHandler{
		service: service,
		logger:  logger,
	}
}

// collectionResponse はコレクション取得APIのレスポンス。
// totalCountはフィルター適用前、filteredCountは適用後のゲーム数。
type collectionResponse struct {
	Username      string             `json:"username"`
	FetchedAt     time.Time          `json:"fetchedAt"`
	FromCache     bool               `json:"fromCache"`
	TotalCount    int                `json:"totalCount"`
	FilteredCount int                `json:"filteredCount"`
	SkippedCount  int                `json:"skippedCount"`
	Games         []model.GameRecord `json:"games"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// GetCollection はコレクション取得を処理する。
// クエリ文字列のフィルター・ソート条件を適用した結果を返す。
// GET /api/collections/:username
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	filterState, err := query.ParseFilterState(r.URL.Query())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	sortSpec, err := query.ParseSortSpec(r.URL.Query())
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	result, err := h.service.GetCollection(r.Context(), username, false)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	filtered := collection.ApplyFiltersAndSorts(filterState, sortSpec)(result.Games)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(collectionResponse{
		Username:      result.Username,
		FetchedAt:     result.FetchedAt,
		FromCache:     result.FromCache,
		TotalCount:    len(result.Games),
		FilteredCount: len(filtered),
		SkippedCount:  result.SkippedCount,
		Games:         filtered,
	})
}

// RefreshCollection はキャッシュを無視した再取得を処理する。
// フィルターは適用せず、取得結果の概要のみ返す。
// POST /api/collections/:username/refresh
func (h *CollectionHandler) RefreshCollection(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	result, err := h.service.Refresh(r.Context(), username)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(collectionResponse{
		Username:      result.Username,
		FetchedAt:     result.FetchedAt,
		FromCache:     false,
		TotalCount:    len(result.Games),
		FilteredCount: len(result.Games),
		SkippedCount:  result.SkippedCount,
		Games:         result.Games,
	})
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func (h *CollectionHandler) handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	h.logger.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
// COLLECTION_PREPARINGはカタログ側が準備中のため202を返し、クライアントに再試行を促す。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidQuery, model.ErrCodeInvalidUsername:
		return http.StatusBadRequest
	case model.ErrCodeCollectionNotFound:
		return http.StatusNotFound
	case model.ErrCodeCollectionPreparing:
		return http.StatusAccepted
	case model.ErrCodeCatalogUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
