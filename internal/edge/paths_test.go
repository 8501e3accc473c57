package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/ratelimit/models"
)

func TestClassFor(t *testing.T) {
	assert.Equal(t, models.ClassAuth, ClassFor("/api/auth/login"))
	assert.Equal(t, models.ClassAuth, ClassFor("/api/auth/"))
	assert.Equal(t, models.ClassAPI, ClassFor("/api/auth"))
	assert.Equal(t, models.ClassAPI, ClassFor("/api/courses"))
	assert.Equal(t, models.ClassAPI, ClassFor("/api"))
}

func TestPathPredicates(t *testing.T) {
	tests := []struct {
		path   string
		api    bool
		static bool
		admin  bool
	}{
		{path: "/api", api: true},
		{path: "/api/orders/1", api: true},
		{path: "/api/export.csv", api: true, static: true},
		{path: "/apiary"},
		{path: "/_next/data/build/page.json", static: true},
		{path: "/_vercel/insights", static: true},
		{path: "/static/app.css", static: true},
		{path: "/favicon.ico", static: true},
		{path: "/images/hero.png", static: true},
		{path: "/courses/go.basics", static: true},
		{path: "/courses"},
		{path: "/admin", admin: true},
		{path: "/admin/users", admin: true},
		{path: "/administrator"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.api, IsAPI(tt.path), "IsAPI")
			assert.Equal(t, tt.static, IsStatic(tt.path), "IsStatic")
			assert.Equal(t, tt.admin, IsAdmin(tt.path), "IsAdmin")
		})
	}
}

func TestRetryMessage(t *testing.T) {
	assert.Equal(t, "Vui lòng thử lại sau", RetryMessage("vi"))
	assert.Equal(t, "Please try again later", RetryMessage("en"))
	assert.Equal(t, "Please try again later", RetryMessage("de"))
}
