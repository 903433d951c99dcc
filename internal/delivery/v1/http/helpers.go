package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/onlinestore/internal/domain"
	"github.com/DRSN-tech/onlinestore/internal/usecase"
	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/DRSN-tech/onlinestore/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

const (
	maxImageCount = 10
	maxFileSize   = 15 << 20
	maxJSONBody   = 1 << 20
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

// errorStatuses сопоставляет ошибки приложения с HTTP-статусами. Порядок важен:
// побеждает первая совпавшая ошибка.
var errorStatuses = []struct {
	err  error
	code int
}{
	{e.ErrStatusBadRequest, http.StatusBadRequest},
	{e.ErrInvalidRequestBody, http.StatusBadRequest},
	{e.ErrExpectedMultipart, http.StatusBadRequest},
	{e.ErrInvalidID, http.StatusBadRequest},
	{e.ErrInvalidPrice, http.StatusBadRequest},
	{e.ErrPricePrecision, http.StatusBadRequest},
	{e.ErrTooManyImages, http.StatusBadRequest},
	{e.ErrFileTooLarge, http.StatusRequestEntityTooLarge},
	{e.ErrProductNameRequired, http.StatusBadRequest},
	{e.ErrPriceMustBePositive, http.StatusBadRequest},
	{e.ErrInvalidStock, http.StatusBadRequest},
	{e.ErrNoImages, http.StatusBadRequest},
	{e.ErrNoProducts, http.StatusBadRequest},
	{e.ErrUnsupportedMediaType, http.StatusUnsupportedMediaType},
	{e.ErrInvalidRating, http.StatusBadRequest},
	{e.ErrInvalidQuantity, http.StatusBadRequest},
	{e.ErrInsufficientStock, http.StatusBadRequest},
	{e.ErrInvalidEmail, http.StatusBadRequest},
	{e.ErrPasswordTooShort, http.StatusBadRequest},
	{e.ErrNameRequired, http.StatusBadRequest},
	{e.ErrEmailTaken, http.StatusBadRequest},
	{e.ErrCredentialsRequired, http.StatusBadRequest},
	{e.ErrIDTokenRequired, http.StatusBadRequest},

	{e.ErrUnauthorized, http.StatusUnauthorized},
	{e.ErrInvalidToken, http.StatusUnauthorized},
	{e.ErrInvalidCredentials, http.StatusUnauthorized},
	{e.ErrGoogleAccount, http.StatusUnauthorized},
	{e.ErrGoogleTokenInvalid, http.StatusUnauthorized},

	{e.ErrForbidden, http.StatusForbidden},

	{e.ErrProductNotFound, http.StatusNotFound},
	{e.ErrCartNotFound, http.StatusNotFound},
	{e.ErrItemNotInCart, http.StatusNotFound},
	{e.ErrUserNotFound, http.StatusNotFound},

	{e.ErrCartConflict, http.StatusConflict},

	{e.ErrGoogleAuthNotConfigured, http.StatusInternalServerError},
}

// ToHTTPResponse возвращает статус и текст для клиента. Неизвестные ошибки скрываются за 500.
func ToHTTPResponse(err error) (int, string) {
	for _, s := range errorStatuses {
		if errors.Is(err, s.err) {
			return s.code, s.err.Error()
		}
	}

	return http.StatusInternalServerError, e.ErrInternalServerError.Error()
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	WriteSuccess(w, code, NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeJSON читает тело запроса в dst. Неизвестные поля игнорируются.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return e.Wrap(err.Error(), e.ErrInvalidRequestBody)
	}

	return nil
}

func pathInt64(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, e.Wrap(name, e.ErrInvalidID)
	}

	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, e.Wrap(name, e.ErrStatusBadRequest)
	}

	return v, nil
}

func queryPrice(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	cents, err := parsePriceToCents(raw)
	if err != nil {
		return nil, e.Wrap(name, err)
	}

	return &cents, nil
}

// parsePriceToCents converts a string like "599.99" or "600" to int64 cents.
func parsePriceToCents(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, e.ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, e.ErrInvalidPrice
	}

	return decimalToCents(d)
}

// decimalToCents проверяет знак, точность и верхнюю границу цены.
func decimalToCents(d decimal.Decimal) (int64, error) {
	if d.LessThan(decimal.Zero) {
		return 0, e.ErrInvalidPrice
	}

	// 1 млрд рублей
	maxPrice := decimal.NewFromInt(1_000_000_000)
	if d.GreaterThan(maxPrice) {
		return 0, e.ErrInvalidPrice
	}

	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return 0, e.ErrPricePrecision
	}

	return domain.DecimalToCents(d), nil
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}
	return nil
}

func parseImages(files []*multipart.FileHeader) ([]usecase.ProductImage, error) {
	if len(files) == 0 {
		return nil, e.ErrNoImages
	}
	if len(files) > maxImageCount {
		return nil, e.ErrTooManyImages
	}

	images := make([]usecase.ProductImage, 0, len(files))
	for _, fh := range files {
		data, mimeType, err := readFile(fh, maxFileSize)
		if err != nil {
			return nil, err
		}
		images = append(images, *usecase.NewProductImage(data, mimeType, int64(len(data)), fh.Filename))
	}
	return images, nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if fh.Size > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxSize+1))
	if err != nil {
		return nil, "", e.ErrInternalServerError
	}
	if int64(len(data)) > maxSize {
		return nil, "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	mimeType := http.DetectContentType(data[:min(len(data), 512)])
	return data, mimeType, nil
}

// respondError логирует ошибку с уровнем по статусу и пишет ответ.
func respondError(log logger.Logger, w http.ResponseWriter, op string, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		log.Errorf(err, "%s", op)
	} else {
		log.Warnf("%s: %d %s", op, code, err.Error())
	}
	WriteError(w, err)
}
