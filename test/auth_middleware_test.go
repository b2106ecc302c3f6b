package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"main/middleware"
	"main/repository"
	"main/services"
	"main/test/testutils"
	"main/utils"

	"github.com/gin-gonic/gin"
)

func newAuthTestRouter(users *repository.UserStore, sessions *repository.SessionRegistry) *gin.Engine {
	router := gin.New()
	router.GET("/protected",
		middleware.AuthRequired(users, sessions),
		func(c *gin.Context) {
			utils.Success(c, gin.H{"user_id": c.GetString(middleware.CtxUserID)})
		})
	router.GET("/admin",
		middleware.AuthRequired(users, sessions),
		middleware.RequireRole("admin"),
		func(c *gin.Context) {
			utils.Success(c, nil)
		})
	return router
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return response
}

func TestAuthRequired(t *testing.T) {
	testutils.Init()

	users := repository.NewUserStore()
	sessions := repository.NewSessionRegistry()
	router := newAuthTestRouter(users, sessions)

	user, err := users.CreateUser("a@b.com", "secret1!", "A", "")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	disabled, _ := users.CreateUser("off@b.com", "secret1!", "Off", "")
	inactive := false
	users.UpdateUser(disabled.UserID, repository.UserUpdate{IsActive: &inactive})

	tests := []struct {
		name           string
		setupRequest   func(r *http.Request)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "Valid Token",
			setupRequest: func(r *http.Request) {
				token, _ := services.GenerateToken(user.UserID, "")
				r.Header.Set("Authorization", "Bearer "+token)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Query Parameter Fallback",
			setupRequest: func(r *http.Request) {
				token, _ := services.GenerateToken(user.UserID, "")
				q := r.URL.Query()
				q.Set("token", token)
				r.URL.RawQuery = q.Encode()
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "No Token",
			setupRequest:   func(r *http.Request) {},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  middleware.ErrKindAuthRequired,
		},
		{
			name: "Garbage Token",
			setupRequest: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer not-a-token")
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  middleware.ErrKindInvalidToken,
		},
		{
			name: "Expired Token",
			setupRequest: func(r *http.Request) {
				saved := utils.JWTExpirationTime
				utils.JWTExpirationTime = -10
				token, _ := services.GenerateToken(user.UserID, "")
				utils.JWTExpirationTime = saved
				r.Header.Set("Authorization", "Bearer "+token)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  middleware.ErrKindTokenExpired,
		},
		{
			name: "Deleted User",
			setupRequest: func(r *http.Request) {
				token, _ := services.GenerateToken("no-such-user", "")
				r.Header.Set("Authorization", "Bearer "+token)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  middleware.ErrKindInvalidToken,
		},
		{
			name: "Disabled Account",
			setupRequest: func(r *http.Request) {
				token, _ := services.GenerateToken(disabled.UserID, "")
				r.Header.Set("Authorization", "Bearer "+token)
			},
			expectedStatus: http.StatusUnauthorized,
			expectedError:  middleware.ErrKindAccountDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			tt.setupRequest(req)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.expectedStatus, w.Body.String())
			}
			if tt.expectedError != "" {
				response := decodeEnvelope(t, w)
				if got, _ := response["error"].(string); got != tt.expectedError {
					t.Errorf("error kind = %q, want %q", got, tt.expectedError)
				}
			}
		})
	}
}

func TestAuthRequiredTouchesSession(t *testing.T) {
	testutils.Init()

	users := repository.NewUserStore()
	sessions := repository.NewSessionRegistry()
	router := newAuthTestRouter(users, sessions)

	user, _ := users.CreateUser("a@b.com", "secret1!", "A", "")
	session := sessions.CreateSession(user.UserID, nil)
	token, _ := services.GenerateToken(user.UserID, session.SessionID)

	before := sessions.GetSession(session.SessionID).LastActivity

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	after := sessions.GetSession(session.SessionID).LastActivity
	if after.Before(before) {
		t.Error("expected last activity to be refreshed")
	}
}

func TestRequireRole(t *testing.T) {
	testutils.Init()

	users := repository.NewUserStore()
	sessions := repository.NewSessionRegistry()
	router := newAuthTestRouter(users, sessions)

	regular, _ := users.CreateUser("user@b.com", "secret1!", "U", "")
	admin, _ := users.CreateUser("admin@b.com", "secret1!", "Adm", "admin")

	regularToken, _ := services.GenerateToken(regular.UserID, "")
	adminToken, _ := services.GenerateToken(admin.UserID, "")

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+regularToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("regular user status = %d, want 403", w.Code)
	}

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	testutils.Init()

	limiter := services.NewRateLimiter()
	defer limiter.Stop()

	router := gin.New()
	router.GET("/limited",
		middleware.RateLimit(limiter, 3, time.Second),
		func(c *gin.Context) { utils.Success(c, nil) })

	for i := 1; i <= 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/limited", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("call %d status = %d, want 200", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/limited", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("call 4 status = %d, want 429", w.Code)
	}

	response := decodeEnvelope(t, w)
	data, _ := response["data"].(map[string]interface{})
	if retry, _ := data["retry_after"].(float64); retry != 1 {
		t.Errorf("retry_after = %v, want 1", data["retry_after"])
	}

	time.Sleep(1100 * time.Millisecond)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/limited", nil))
	if w.Code != http.StatusOK {
		t.Errorf("call after window status = %d, want 200", w.Code)
	}
}
