package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/user-identity-service/internal/logging"
	"github.com/iliyamo/user-identity-service/internal/model"
	"github.com/iliyamo/user-identity-service/internal/service"
	"github.com/iliyamo/user-identity-service/internal/utils"
)

func decodeBody(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("response is not JSON: %v\n%s", err, raw)
	}
	return body
}

func TestRegisterEndpoint_Success(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	h := newAuthHandler(store)

	rec := doJSON(t, h.Register, http.MethodPost, "/api/login/register",
		`{"email":"a@b.com","username":"alice1","password":"123456","firstName":"A","lastName":"B"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec.Body.Bytes())
	assert.Equal(t, "Successfully Registered", body["message"])
	assert.Len(t, store.users, 1)
}

func TestRegisterEndpoint_DuplicateEmail(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.seed(t, "a@b.com", "someoneelse", "123456", model.RoleUser)
	h := newAuthHandler(store)

	rec := doJSON(t, h.Register, http.MethodPost, "/api/login/register",
		`{"email":"a@b.com","username":"alice1","password":"123456","firstName":"A","lastName":"B"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec.Body.Bytes())
	assert.Equal(t, "This email is already registered.", body["error"])
}

func TestRegisterEndpoint_BlankFieldNamed(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(newMemStore())

	rec := doJSON(t, h.Register, http.MethodPost, "/api/login/register",
		`{"email":"a@b.com","username":"","password":"123456","firstName":"A","lastName":"B"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec.Body.Bytes())
	assert.Equal(t, "username is required.", body["error"])
}

func TestRegisterEndpoint_StorageFailureLogged(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := logging.New(dir)
	require.NoError(t, err)

	store := newMemStore()
	store.createErr = errors.New("connection reset by peer")
	h := &AuthHandler{
		Auth: service.NewAuthService(store, testConfig(), logger),
		Log:  logger,
	}

	rec := doJSON(t, h.Register, http.MethodPost, "/api/login/register",
		`{"email":"a@b.com","username":"alice1","password":"123456","firstName":"A","lastName":"B"}`, nil)

	// the client sees only the generic message
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec.Body.Bytes())
	assert.Equal(t, "internal server error", body["error"])

	// the underlying cause lands in error.log with the request context
	raw, err := os.ReadFile(filepath.Join(dir, "error.log"))
	require.NoError(t, err)
	require.NotEmpty(t, raw, "storage failure must be written to error.log")
	assert.Contains(t, string(raw), "connection reset by peer")
	assert.Contains(t, string(raw), "/api/login/register")
}

func TestRegisterEndpoint_MalformedBody(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(newMemStore())

	rec := doJSON(t, h.Register, http.MethodPost, "/api/login/register", `{not json`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint_Success(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	user := store.seed(t, "a@b.com", "alice1", "123456", model.RoleUser)
	h := newAuthHandler(store)

	rec := doJSON(t, h.Login, http.MethodPost, "/api/login",
		`{"emailOrUsername":"alice1","password":"123456"}`, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec.Body.Bytes())
	token, ok := body["token"].(string)
	require.True(t, ok, "response must carry a token")

	claims, err := utils.ParseToken("test-secret", "identity-service", "identity-clients", token)
	require.NoError(t, err)
	uid, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, uid)
	assert.Equal(t, model.RoleUser, claims.Role)
}

func TestLoginEndpoint_WrongPassword(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.seed(t, "a@b.com", "alice1", "123456", model.RoleUser)
	h := newAuthHandler(store)

	rec := doJSON(t, h.Login, http.MethodPost, "/api/login",
		`{"emailOrUsername":"alice1","password":"wrong1"}`, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec.Body.Bytes())
	assert.Equal(t, "Invalid password", body["error"])
}

func TestLoginEndpoint_UnknownEmail(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(newMemStore())

	rec := doJSON(t, h.Login, http.MethodPost, "/api/login",
		`{"emailOrUsername":"missing@b.com","password":"123456"}`, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec.Body.Bytes())
	assert.Equal(t, "Invalid Email", body["error"])
}

func TestLoginEndpoint_BlankIdentifier(t *testing.T) {
	t.Parallel()

	h := newAuthHandler(newMemStore())

	rec := doJSON(t, h.Login, http.MethodPost, "/api/login",
		`{"emailOrUsername":"","password":"123456"}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec.Body.Bytes())
	assert.Equal(t, "emailOrUsername is required.", body["error"])
}
