package e

import "fmt"

var (
	// Внутренние ошибки
	ErrTransactionNotFound     = fmt.Errorf("transaction not found")
	ErrIncorrectEnvVariable    = fmt.Errorf("incorrect environment variable")
	ErrNoProducts              = fmt.Errorf("no products requested")
	ErrCartAlreadyExists       = fmt.Errorf("active cart already exists")
	ErrGoogleAuthNotConfigured = fmt.Errorf("google auth is not configured")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrInvalidRequestBody   = fmt.Errorf("invalid request body")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrInvalidID            = fmt.Errorf("invalid id")
	ErrInvalidPrice         = fmt.Errorf("invalid price")
	ErrPricePrecision       = fmt.Errorf("price must have at most 2 decimal places")
	ErrTooManyImages        = fmt.Errorf("too many images")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrProductNameRequired  = fmt.Errorf("product name is required")
	ErrPriceMustBePositive  = fmt.Errorf("price must be positive")
	ErrInvalidStock         = fmt.Errorf("stock must be greater than or equal to 0")
	ErrNoImages             = fmt.Errorf("no images provided")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrInvalidRating        = fmt.Errorf("rating must be between 1 and 5")
	ErrInvalidQuantity      = fmt.Errorf("quantity must be at least 1")
	ErrInsufficientStock    = fmt.Errorf("not enough stock")
	ErrInvalidEmail         = fmt.Errorf("invalid email")
	ErrPasswordTooShort     = fmt.Errorf("password must be at least 6 characters")
	ErrNameRequired         = fmt.Errorf("name is required")
	ErrEmailTaken           = fmt.Errorf("email is already registered")
	ErrCredentialsRequired  = fmt.Errorf("email and password are required")
	ErrIDTokenRequired      = fmt.Errorf("id token is required")

	// 401 Unauthorized
	ErrUnauthorized       = fmt.Errorf("unauthorized")
	ErrInvalidToken       = fmt.Errorf("invalid token")
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
	ErrGoogleAccount      = fmt.Errorf("account uses google sign-in")
	ErrGoogleTokenInvalid = fmt.Errorf("invalid google token")

	// 403 Forbidden
	ErrForbidden = fmt.Errorf("forbidden")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrCartNotFound    = fmt.Errorf("cart not found")
	ErrItemNotInCart   = fmt.Errorf("product not found in cart")
	ErrUserNotFound    = fmt.Errorf("user not found")

	// 409 Conflict
	ErrCartConflict = fmt.Errorf("cart was modified concurrently")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
