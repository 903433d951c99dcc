package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DRSN-tech/onlinestore/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriceToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr error
	}{
		{in: "599.99", want: 59999},
		{in: "600", want: 60000},
		{in: "0.1", want: 10},
		{in: "1.500", want: 150},
		{in: "1.999", wantErr: e.ErrPricePrecision},
		{in: "-1", wantErr: e.ErrInvalidPrice},
		{in: "abc", wantErr: e.ErrInvalidPrice},
		{in: " ", wantErr: e.ErrInvalidPrice},
		{in: "1000000000.01", wantErr: e.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePriceToCents(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToHTTPResponse(t *testing.T) {
	code, msg := ToHTTPResponse(fmt.Errorf("CartUseCase.AddItem: %w", e.ErrInsufficientStock))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, e.ErrInsufficientStock.Error(), msg)

	code, msg = ToHTTPResponse(errors.New("pq: connection reset"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, e.ErrInternalServerError.Error(), msg)

	code, _ = ToHTTPResponse(e.ErrUnsupportedMediaType)
	assert.Equal(t, http.StatusUnsupportedMediaType, code)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, ok := bearerToken(r)
	assert.False(t, ok)

	r.Header.Set("Authorization", "bearer abc")
	token, ok := bearerToken(r)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	r.Header.Set("Authorization", "Basic abc")
	_, ok = bearerToken(r)
	assert.False(t, ok)
}
