package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/internal/dto"
	"github.com/Bronny721/nadu-website/pkg/response"
	"github.com/gin-gonic/gin"
)

// MockAuthService is a mock implementation of AuthService for testing
type MockAuthService struct {
	RegisterFunc         func(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error)
	LoginFunc            func(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	GetUserFunc          func(ctx context.Context, id int64) (*domain.User, error)
	UpdateProfileFunc    func(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*domain.User, error)
	PromoteMerchantsFunc func(ctx context.Context, emails []string) (int64, error)
}

func (m *MockAuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*domain.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, userID, req)
	}
	return nil, nil
}

func (m *MockAuthService) PromoteMerchants(ctx context.Context, emails []string) (int64, error) {
	if m.PromoteMerchantsFunc != nil {
		return m.PromoteMerchantsFunc(ctx, emails)
	}
	return 0, nil
}

// MockOrderService is a mock implementation of OrderService for testing
type MockOrderService struct {
	CreateOrderFunc  func(ctx context.Context, userID int64, req *dto.CreateOrderRequest) (*domain.Order, error)
	ListForUserFunc  func(ctx context.Context, userID int64) ([]*domain.Order, error)
	GetForUserFunc   func(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	ListAllFunc      func(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
	GetByIDFunc      func(ctx context.Context, orderID int64) (*domain.Order, error)
	UpdateStatusFunc func(ctx context.Context, orderID int64, req *dto.UpdateOrderStatusRequest) (*domain.Order, error)
}

func (m *MockOrderService) CreateOrder(ctx context.Context, userID int64, req *dto.CreateOrderRequest) (*domain.Order, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, userID, req)
	}
	return nil, nil
}

func (m *MockOrderService) ListForUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	if m.ListForUserFunc != nil {
		return m.ListForUserFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockOrderService) GetForUser(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	if m.GetForUserFunc != nil {
		return m.GetForUserFunc(ctx, userID, orderID)
	}
	return nil, nil
}

func (m *MockOrderService) ListAll(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx, status)
	}
	return nil, nil
}

func (m *MockOrderService) GetByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, orderID)
	}
	return nil, nil
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID int64, req *dto.UpdateOrderStatusRequest) (*domain.Order, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, orderID, req)
	}
	return nil, nil
}

// MockProductService is a mock implementation of ProductService for testing
type MockProductService struct {
	ImportFunc  func(ctx context.Context, r io.Reader) (*domain.ImportResult, error)
	GetByIDFunc func(ctx context.Context, id int64) (*domain.Product, error)
}

func (m *MockProductService) Create(ctx context.Context, req *dto.ProductRequest) (*domain.Product, error) {
	return req.ToDomain(), nil
}

func (m *MockProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrProductNotFound
}

func (m *MockProductService) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	return nil, nil
}

func (m *MockProductService) Update(ctx context.Context, id int64, req *dto.ProductRequest) (*domain.Product, error) {
	return req.ToDomain(), nil
}

func (m *MockProductService) Delete(ctx context.Context, id int64) error {
	return nil
}

func (m *MockProductService) Import(ctx context.Context, r io.Reader) (*domain.ImportResult, error) {
	if m.ImportFunc != nil {
		return m.ImportFunc(ctx, r)
	}
	return &domain.ImportResult{}, nil
}

func setupTestRouterWithAuth(userID int64, role domain.Role, register func(r *gin.Engine)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.Use(func(c *gin.Context) {
		if userID != 0 {
			c.Set("user_id", userID)
			c.Set("role", role.String())
		}
		c.Next()
	})
	register(router)
	return router
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewBuffer(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	if resp.Error == nil {
		return ""
	}
	return resp.Error.Code
}

func errorField(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	if resp.Error == nil {
		return ""
	}
	return resp.Error.Field
}

func TestAuthHandler_Register(t *testing.T) {
	validBody := map[string]string{"email": "a@x.com", "password": "password1", "name": "Amy", "phone": "0912345678"}

	tests := []struct {
		name           string
		body           interface{}
		mockFunc       func(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error)
		expectedStatus int
		expectedCode   string
	}{
		{
			name: "successful registration",
			body: validBody,
			mockFunc: func(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
				return &domain.User{ID: 1, Email: req.Email, Name: req.Name, Phone: req.Phone, Role: domain.RoleCustomer}, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "duplicate email",
			body: validBody,
			mockFunc: func(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
				return nil, fmt.Errorf("create user: %w", domain.ErrEmailTaken)
			},
			expectedStatus: http.StatusConflict,
			expectedCode:   "EMAIL_TAKEN",
		},
		{
			name: "invalid phone",
			body: validBody,
			mockFunc: func(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
				return nil, &dto.FieldError{Field: "phone", Err: domain.ErrInvalidPhone}
			},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "unknown field rejected",
			body:           `{"email":"a@x.com","password":"password1","name":"Amy","phone":"0912345678","role":"merchant"}`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name:           "missing field",
			body:           map[string]string{"email": "a@x.com"},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "VALIDATION_ERROR",
		},
		{
			name: "store failure is hidden",
			body: validBody,
			mockFunc: func(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
				return nil, errors.New("dial tcp 10.0.0.5:5432: connection refused")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&MockAuthService{RegisterFunc: tt.mockFunc}, false)
			router := setupTestRouterWithAuth(0, "", func(r *gin.Engine) {
				r.POST("/auth/register", h.Register)
			})

			w := doJSON(router, http.MethodPost, "/auth/register", tt.body)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedCode != "" {
				if code := errorCode(t, w); code != tt.expectedCode {
					t.Errorf("expected code %s, got %s", tt.expectedCode, code)
				}
			}
			if bytes.Contains(w.Body.Bytes(), []byte("10.0.0.5")) {
				t.Error("internal error text leaked to the client")
			}
		})
	}
}

func TestAuthHandler_LoginSetsCookie(t *testing.T) {
	expires := time.Now().Add(7 * 24 * time.Hour)
	mock := &MockAuthService{
		LoginFunc: func(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
			if req.Password != "password1" {
				return nil, domain.ErrInvalidCredentials
			}
			return &dto.LoginResponse{Token: "signed-token", ExpiresAt: expires, User: dto.UserResponse{ID: 1, Email: req.Email}}, nil
		},
	}
	h := NewAuthHandler(mock, true)
	router := setupTestRouterWithAuth(0, "", func(r *gin.Engine) {
		r.POST("/auth/login", h.Login)
		r.POST("/auth/logout", h.Logout)
	})

	t.Run("valid credentials", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/auth/login", map[string]string{"email": "a@x.com", "password": "password1"})
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}

		cookies := w.Result().Cookies()
		if len(cookies) != 1 {
			t.Fatalf("expected one cookie, got %d", len(cookies))
		}
		c := cookies[0]
		if c.Name != "token" || c.Value != "signed-token" || !c.HttpOnly || !c.Secure {
			t.Errorf("unexpected cookie %+v", c)
		}
		if c.SameSite != http.SameSiteLaxMode {
			t.Errorf("expected SameSite=Lax, got %v", c.SameSite)
		}
		if c.MaxAge < int((7*24*time.Hour - time.Minute).Seconds()) {
			t.Errorf("cookie MaxAge = %d, want about 7 days", c.MaxAge)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/auth/login", map[string]string{"email": "a@x.com", "password": "wrong"})
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", w.Code)
		}
		if code := errorCode(t, w); code != "INVALID_CREDENTIALS" {
			t.Errorf("expected INVALID_CREDENTIALS, got %s", code)
		}
		if len(w.Result().Cookies()) != 0 {
			t.Error("failed login must not set a cookie")
		}
	})

	t.Run("logout clears cookie", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/auth/logout", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", w.Code)
		}
		cookies := w.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Value != "" || cookies[0].MaxAge >= 0 {
			t.Errorf("expected an expired token cookie, got %+v", cookies)
		}
	})
}

func TestOrderHandler_GetOrder(t *testing.T) {
	mock := &MockOrderService{
		GetForUserFunc: func(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
			if userID != 1 || orderID != 7 {
				return nil, domain.ErrOrderNotFound
			}
			return &domain.Order{ID: 7, UserID: 1, Total: 549, Status: domain.OrderStatusPending}, nil
		},
	}
	h := NewOrderHandler(mock)

	tests := []struct {
		name           string
		userID         int64
		path           string
		expectedStatus int
		expectedCode   string
	}{
		{"owner", 1, "/orders/7", http.StatusOK, ""},
		{"other customer", 2, "/orders/7", http.StatusNotFound, "NOT_FOUND"},
		{"malformed id", 1, "/orders/abc", http.StatusNotFound, "NOT_FOUND"},
		{"no identity", 0, "/orders/7", http.StatusUnauthorized, "MISSING_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouterWithAuth(tt.userID, domain.RoleCustomer, func(r *gin.Engine) {
				r.GET("/orders/:id", h.GetOrder)
			})

			w := doJSON(router, http.MethodGet, tt.path, nil)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedCode != "" {
				if code := errorCode(t, w); code != tt.expectedCode {
					t.Errorf("expected code %s, got %s", tt.expectedCode, code)
				}
			}
		})
	}
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	var gotUser int64
	var gotTotal float64
	var gotProduct int64
	mock := &MockOrderService{
		CreateOrderFunc: func(ctx context.Context, userID int64, req *dto.CreateOrderRequest) (*domain.Order, error) {
			if err := req.Validate(); err != nil {
				return nil, err
			}
			gotUser, gotTotal, gotProduct = userID, *req.Total, req.ToItems()[0].ProductID
			return &domain.Order{ID: 1, UserID: userID, Total: *req.Total, Status: domain.OrderStatusPending}, nil
		},
	}
	h := NewOrderHandler(mock)
	router := setupTestRouterWithAuth(3, domain.RoleCustomer, func(r *gin.Engine) {
		r.POST("/orders", h.CreateOrder)
	})

	body := `{"items":[{"id":"1","name":"Linen Shirt","price":399,"quantity":1,"slug":"linen-shirt"}],"total":549,
		"shippingInfo":{"firstName":"Amy","lastName":"Lin","email":"a@x.com","address":"1 Main St","city":"Taipei","postalCode":"100","country":"TW","phone":"0912345678"}}`
	w := doJSON(router, http.MethodPost, "/orders", body)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if gotUser != 3 || gotTotal != 549 || gotProduct != 1 {
		t.Errorf("service called with user %d total %v product %d", gotUser, gotTotal, gotProduct)
	}

	rejected := []struct {
		name      string
		body      string
		wantField string
	}{
		{"empty items", `{"items":[],"total":0,"shippingInfo":{}}`, "items"},
		{"zero quantity", `{"items":[{"id":1,"name":"Tote","quantity":0}],"total":100,"shippingInfo":{}}`, "items[0].quantity"},
		{"missing total", `{"items":[{"id":1,"name":"Tote","quantity":1}],"shippingInfo":{}}`, "total"},
		{"missing item name", `{"items":[{"id":1,"quantity":1}],"total":100}`, "items[0].name"},
		{"total as text", `{"items":[{"id":1,"name":"Tote","quantity":1}],"total":"549"}`, "total"},
		{"bad product id", `{"items":[{"id":"tote","name":"Tote","quantity":1}],"total":549}`, "items.id"},
		{"unknown field", `{"items":[{"id":1,"name":"Tote","quantity":1}],"total":549,"shipping_info":{}}`, "shipping_info"},
	}
	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(router, http.MethodPost, "/orders", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
			}
			if field := errorField(t, w); field != tt.wantField {
				t.Errorf("expected field %q, got %q: %s", tt.wantField, field, w.Body.String())
			}
		})
	}
}

func TestAdminHandler_UpdateOrderStatus(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		mockErr        error
		expectedStatus int
		expectedCode   string
	}{
		{"ship", map[string]string{"status": "Shipped", "trackingNumber": "TW999"}, nil, http.StatusOK, ""},
		{"illegal transition", map[string]string{"status": "Pending"}, domain.ErrInvalidTransition, http.StatusConflict, "INVALID_TRANSITION"},
		{"missing tracking", map[string]string{"status": "Shipped"}, domain.ErrTrackingNumberRequired, http.StatusConflict, "TRACKING_NUMBER_REQUIRED"},
		{"lost race", map[string]string{"status": "Cancelled"}, domain.ErrStatusConflict, http.StatusConflict, "STATUS_CONFLICT"},
		{"unknown status", map[string]string{"status": "Lost"}, &dto.FieldError{Field: "status", Err: domain.ErrInvalidOrderStatus}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing order", map[string]string{"status": "Cancelled"}, domain.ErrOrderNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"empty body", `{}`, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockOrderService{
				UpdateStatusFunc: func(ctx context.Context, orderID int64, req *dto.UpdateOrderStatusRequest) (*domain.Order, error) {
					if tt.mockErr != nil {
						return nil, tt.mockErr
					}
					return &domain.Order{ID: orderID, Status: domain.OrderStatus(req.Status), TrackingNumber: req.TrackingNumber}, nil
				},
			}
			h := NewAdminHandler(mock, nil)
			router := setupTestRouterWithAuth(2, domain.RoleMerchant, func(r *gin.Engine) {
				r.PUT("/admin/orders/:id", h.UpdateOrderStatus)
			})

			w := doJSON(router, http.MethodPut, "/admin/orders/1", tt.body)

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if tt.expectedCode != "" {
				if code := errorCode(t, w); code != tt.expectedCode {
					t.Errorf("expected code %s, got %s", tt.expectedCode, code)
				}
			}
		})
	}
}

func TestAdminHandler_ListOrdersPassesStatus(t *testing.T) {
	var got domain.OrderStatus
	mock := &MockOrderService{
		ListAllFunc: func(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
			got = status
			return nil, nil
		},
	}
	h := NewAdminHandler(mock, nil)
	router := setupTestRouterWithAuth(2, domain.RoleMerchant, func(r *gin.Engine) {
		r.GET("/admin/orders", h.ListOrders)
	})

	w := doJSON(router, http.MethodGet, "/admin/orders?status=Pending", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if got != domain.OrderStatusPending {
		t.Errorf("expected status filter Pending, got %q", got)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"orders":[]`)) {
		t.Errorf("expected an empty array, got %s", w.Body.String())
	}
}

func TestProductHandler_ImportProducts(t *testing.T) {
	mock := &MockProductService{
		ImportFunc: func(ctx context.Context, r io.Reader) (*domain.ImportResult, error) {
			data, _ := io.ReadAll(r)
			if string(data) != "workbook-bytes" {
				return nil, domain.ErrInvalidSpreadsheet
			}
			return &domain.ImportResult{Imported: 2, Skipped: 1}, nil
		},
	}
	h := NewProductHandler(mock)
	router := setupTestRouterWithAuth(2, domain.RoleMerchant, func(r *gin.Engine) {
		r.POST("/admin/products/import", h.ImportProducts)
	})

	upload := func(filename, content string) *httptest.ResponseRecorder {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		if filename != "" {
			part, _ := mw.CreateFormFile("file", filename)
			_, _ = part.Write([]byte(content))
		}
		_ = mw.Close()

		req := httptest.NewRequest(http.MethodPost, "/admin/products/import", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("valid workbook", func(t *testing.T) {
		w := upload("products.xlsx", "workbook-bytes")
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if !bytes.Contains(w.Body.Bytes(), []byte(`"imported":2`)) {
			t.Errorf("unexpected body %s", w.Body.String())
		}
	})

	t.Run("wrong extension", func(t *testing.T) {
		if w := upload("products.csv", "a,b"); w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if w := upload("", ""); w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("corrupt workbook", func(t *testing.T) {
		w := upload("products.xlsx", "garbage")
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
		if code := errorCode(t, w); code != "INVALID_SPREADSHEET" {
			t.Errorf("expected INVALID_SPREADSHEET, got %s", code)
		}
	})
}

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(ctx context.Context) error { return s.err }

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		db             HealthChecker
		redis          HealthChecker
		expectedStatus int
	}{
		{"all healthy", stubChecker{}, stubChecker{}, http.StatusOK},
		{"redis not configured", stubChecker{}, nil, http.StatusOK},
		{"database down", stubChecker{err: errors.New("connection refused")}, nil, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(tt.db, tt.redis, nil)
			router := gin.New()
			router.GET("/health", h.Health)
			router.GET("/ready", h.Ready)

			if w := doJSON(router, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
				t.Errorf("health: expected 200, got %d", w.Code)
			}

			w := doJSON(router, http.MethodGet, "/ready", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("ready: expected %d, got %d", tt.expectedStatus, w.Code)
			}
			if bytes.Contains(w.Body.Bytes(), []byte("connection refused")) {
				t.Error("readiness leaked the failure cause")
			}
		})
	}
}

func TestHandleError_WrappedSentinelMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	handleError(c, fmt.Errorf("update order 42 in pg_orders: %w", domain.ErrStatusConflict))

	if w.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", w.Code)
	}
	if bytes.Contains(w.Body.Bytes(), []byte("pg_orders")) {
		t.Errorf("wrapped context leaked: %s", w.Body.String())
	}
}
