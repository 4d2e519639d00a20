package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/queiroz-sistemas/supermercado-api/database"
	"github.com/queiroz-sistemas/supermercado-api/models"
	"github.com/queiroz-sistemas/supermercado-api/router"
	"github.com/queiroz-sistemas/supermercado-api/utils"
)

var testDBSeq int64

func newTestEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.InitLogger()

	dsn := fmt.Sprintf("file:ctrl_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return router.SetupRouter(db), db
}

func seedAdmin(t *testing.T, db *gorm.DB) (*models.User, string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("admin-secret"), bcrypt.MinCost)
	require.NoError(t, err)

	admin := models.User{
		Name:         "Administrador",
		Email:        "admin@queiroz.com.br",
		PasswordHash: string(hashed),
		Role:         models.RoleAdmin,
	}
	require.NoError(t, db.Create(&admin).Error)

	token, err := utils.GenerateToken(admin.ID, admin.Role)
	require.NoError(t, err)
	return &admin, token
}

// seedTenant creates a supermarket with a static API token plus its
// panel user, and returns the market, the panel user's session token
// and the static token.
func seedTenant(t *testing.T, db *gorm.DB, name string) (*models.Supermarket, string, string) {
	t.Helper()

	staticToken := fmt.Sprintf("tok-%s-%d", name, atomic.AddInt64(&testDBSeq, 1))
	market := models.Supermarket{
		Name:         name,
		Email:        fmt.Sprintf("%s@queiroz.com.br", name),
		Phone:        "1133334444",
		CEP:          "01310-100",
		Address:      "Av. Paulista",
		Number:       "1000",
		Neighborhood: "Bela Vista",
		City:         "São Paulo",
		State:        "SP",
		Plan:         "basico",
		Active:       true,
		CustomToken:  &staticToken,
	}
	require.NoError(t, db.Create(&market).Error)

	hashed, err := bcrypt.GenerateFromPassword([]byte("market-secret"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{
		Name:         name,
		Email:        market.Email,
		PasswordHash: string(hashed),
		Role:         models.RoleSupermarket,
		TenantID:     &market.ID,
	}
	require.NoError(t, db.Create(&user).Error)

	sessionToken, err := utils.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return &market, sessionToken, staticToken
}

func perform(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// envelope mirrors the utils.RespondJSON wire shape.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out), "data: %s", string(env.Data))
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, w.Code, "body: %s", w.Body.String())
}
