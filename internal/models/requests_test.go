package models

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bindTransitionRequest(t *testing.T, body string) (*TransitionRequest, error) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	var request TransitionRequest
	err := c.ShouldBindJSON(&request)
	return &request, err
}

func TestTransitionRequestBindingAcceptsZeroQuantity(t *testing.T) {
	// A technician reporting zero consumption is a valid request; whether the
	// entry is recorded is decided downstream, not at bind time.
	request, err := bindTransitionRequest(t, `{
		"action": "finalize",
		"actor_id": 1,
		"consumed_materials": [{"material_id": "MAT-OIL", "quantity": 0}]
	}`)
	require.NoError(t, err)
	require.Len(t, request.ConsumedMaterials, 1)
	assert.Equal(t, float64(0), request.ConsumedMaterials[0].Quantity)
}

func TestTransitionRequestBindingRequiresMaterialID(t *testing.T) {
	_, err := bindTransitionRequest(t, `{
		"action": "finalize",
		"actor_id": 1,
		"consumed_materials": [{"quantity": 2}]
	}`)
	assert.Error(t, err)
}

func TestTransitionRequestBindingRequiresActionAndActor(t *testing.T) {
	_, err := bindTransitionRequest(t, `{"note": "missing action and actor"}`)
	assert.Error(t, err)
}
