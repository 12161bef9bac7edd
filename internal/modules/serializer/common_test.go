package serializer

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_JSONShape(t *testing.T) {
	tests := []struct {
		name string
		res  Response
		want string
	}{
		{name: "ok with data", res: OK(map[string]string{"id": "x"}), want: `{"success":true,"data":{"id":"x"}}`},
		{name: "ok without data", res: OK(nil), want: `{"success":true}`},
		{name: "auth error", res: AuthErr(""), want: `{"success":false,"code":"UNAUTHORIZED","message":"authentication required"}`},
		{
			name: "validation error",
			res:  ValidationErr(map[string][]string{"title": {"is required"}}),
			want: `{"success":false,"code":"VALIDATION_ERROR","message":"validation failed","fields":{"title":["is required"]}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.res)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))
		})
	}
}

func TestErr_HidesDetailInReleaseMode(t *testing.T) {
	prev := gin.Mode()
	t.Cleanup(func() { gin.SetMode(prev) })

	gin.SetMode(gin.ReleaseMode)
	assert.Empty(t, DBErr("", errors.New("connection refused")).Error)

	gin.SetMode(gin.TestMode)
	res := DBErr("", errors.New("connection refused"))
	assert.Equal(t, "connection refused", res.Error)
	assert.Equal(t, "database error", res.Message)
	assert.False(t, res.Success)
}
