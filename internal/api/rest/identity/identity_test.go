package identity

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgdesk/orgdesk-server/internal/model"
)

func TestSetAndFrom(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	id := model.Identity{UserID: uuid.New(), Role: model.RoleAdmin}
	Set(c, id)

	got, ok := From(c)
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestFrom_Unset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := From(c)
	assert.False(t, ok)
}
