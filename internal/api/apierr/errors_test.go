package apierr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bingogame-go/internal/model"
)

func TestWriteError_MapsModelErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{model.ErrRoomNotFound, http.StatusNotFound, CodeRoomNotFound},
		{fmt.Errorf("joining: %w", model.ErrRoomFull), http.StatusConflict, CodeRoomFull},
		{model.ErrInvalidRoomCode, http.StatusBadRequest, CodeInvalidRoomCode},
		{model.ErrCodeSpaceExhausted, http.StatusServiceUnavailable, CodeUnavailable},
		{model.ErrStaleConnection, http.StatusConflict, CodeStaleConnection},
		{NewInvalidRequestError("bad"), http.StatusBadRequest, CodeInvalidRequest},
		{fmt.Errorf("something else"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, CodeInvalidClaim, Describe(model.ErrInvalidClaim).Code)
	assert.Equal(t, CodeRateLimited, Describe(NewRateLimitedError()).Code)
}
