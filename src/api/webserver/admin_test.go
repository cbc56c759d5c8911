package webserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func adminRequest(t *testing.T, role, body string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("role", role)
	return w, c
}

func TestAdminEndpointsRejectNonAdmins(t *testing.T) {
	admin := NewAdmin(nil, nil)

	handlers := map[string]gin.HandlerFunc{
		"SetPrice":        admin.SetPrice,
		"RefreshSettings": admin.RefreshSettings,
	}
	for name, handler := range handlers {
		w, c := adminRequest(t, "vc", `{"ventureId":1,"newPrice":"2.5"}`)
		handler(c)
		assert.Equal(t, http.StatusForbidden, w.Code, "%s must be admin-only", name)
	}
}

func TestSetPriceRejectsBadPrice(t *testing.T) {
	admin := NewAdmin(nil, nil)

	for _, price := range []string{"0", "-1", "abc"} {
		w, c := adminRequest(t, "admin", `{"ventureId":1,"newPrice":"`+price+`"}`)
		admin.SetPrice(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, "price %q", price)
	}
}
