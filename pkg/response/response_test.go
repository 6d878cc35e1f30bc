package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestPaginate(t *testing.T) {
	m := Paginate(25, 2, 10)

	assert.Equal(t, 3, m.PageCount)
	assert.Equal(t, 25, m.TotalCount)
	assert.False(t, m.IsFirstPage)
	assert.False(t, m.IsLastPage)
	require.NotNil(t, m.PreviousPage)
	require.NotNil(t, m.NextPage)
	assert.Equal(t, 1, *m.PreviousPage)
	assert.Equal(t, 3, *m.NextPage)
}

func TestPaginate_SinglePage(t *testing.T) {
	m := Paginate(0, 0, 0)

	assert.True(t, m.IsFirstPage)
	assert.True(t, m.IsLastPage)
	assert.Nil(t, m.PreviousPage)
	assert.Nil(t, m.NextPage)
}

func TestSuccessWithMeta(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SuccessWithMeta(c, []string{"a"}, Paginate(1, 1, 10))

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.JSONEq(t, `["a"]`, string(body["data"]))
	assert.Contains(t, body, "meta")
}

func TestError_WritesNestedMessages(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Unauthorized(c, "Invalid email or password")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.True(t, c.IsAborted())

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "Invalid email or password", body.Errors[0].Message)
	assert.Equal(t, "Unauthorized", body.Status)
	assert.Equal(t, http.StatusUnauthorized, body.StatusCode)
}

func TestInternalError_HidesCause(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	InternalError(c, errors.New("db exploded"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db exploded")
	assert.Len(t, c.Errors, 1)
}

func TestNoContent(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	NoContent(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}
