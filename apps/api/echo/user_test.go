package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/belleza/salon/apps/api/echo"
	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/user"
	"github.com/belleza/salon/testutil"
)

const testPwd = "Bl0ndes&Balayage"

func parseToken(t *testing.T, conf *core.Config, token string) *Claims {
	t.Helper()

	claims := new(Claims)
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(conf.SecretKey), nil
	})
	require.NoError(t, err)
	return claims
}

func Test_userApi_login(t *testing.T) {
	env := setup(t)

	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@belleza.test", testPwd, []string{user.RoleAdmin}, true)
	testutil.CreateUser(t, env.usrRepo, "Gone", "gone", "gone@belleza.test", testPwd, []string{user.RoleStaff}, false)

	body := func(uname, pwd string) []byte {
		return marchallObj(t, LoginRequest{Username: uname, Password: pwd})
	}

	tests := []httpTest{
		{
			name: "missing fields", method: http.MethodPost, path: "/v1/users/login", body: body("", ""),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name: "unknown user", method: http.MethodPost, path: "/v1/users/login", body: body("nobody", testPwd),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/users/login", body: body("admin", "nope"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated", method: http.MethodPost, path: "/v1/users/login", body: body("gone", testPwd),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	runHTTPTests(t, env, tests)

	for _, uname := range []string{"admin", "ADMIN@belleza.test"} {
		t.Run("success with "+uname, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", body(uname, testPwd))
			env.serve(req, rec)
			require.Equal(t, http.StatusOK, rec.Code)

			var resp LoginResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			claims := parseToken(t, env.conf, resp.Token)
			assert.Equal(t, admin.ID, claims.Subject)
			assert.True(t, claims.IsAdmin)
			assert.False(t, claims.IsStaff)
			assert.Equal(t, claims.IssuedAt, claims.OrigIssuedAt)
		})
	}

	usr, err := env.usrRepo.GetUser(context.Background(), user.GetFilter{ID: admin.ID})
	require.NoError(t, err)
	assert.False(t, usr.LastLogin.IsZero())
}

func Test_userApi_loginRateLimit(t *testing.T) {
	env := setup(t, func(conf *core.Config) {
		conf.Server.RateLimit = 0.001
		conf.Server.RateBurst = 2
	})

	body := marchallObj(t, LoginRequest{Username: "nobody", Password: testPwd})
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
		env.serve(req, rec)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusBadRequest, http.StatusBadRequest, http.StatusTooManyRequests}, codes)

	// another client is not affected
	req, rec := newRequest(http.MethodPost, "/v1/users/login", body)
	req.RemoteAddr = "198.51.100.7:4321"
	env.serve(req, rec)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func Test_userApi_query(t *testing.T) {
	env := setup(t)

	path := func(search string, roles ...string) string {
		v := make(url.Values)
		if search != "" {
			v.Add("search", search)
		}
		for _, r := range roles {
			v.Add("role", r)
		}
		return "/v1/users?" + v.Encode()
	}

	now := time.Now()
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@belleza.test", "", []string{user.RoleAdmin}, true, now)
	owner := testutil.CreateUser(t, env.usrRepo, "Owner", "owner", "owner@belleza.test", "", []string{user.RoleAdminOwner}, true, now.Add(time.Minute))
	stylist := testutil.CreateUser(t, env.usrRepo, "Nia Stylist", "nia", "nia@belleza.test", "", []string{user.RoleStaff}, true, now.Add(2*time.Minute))
	client := testutil.CreateUser(t, env.usrRepo, "Client", "client", "client@belleza.test", "", []string{user.RoleCustomer}, true, now.Add(3*time.Minute))

	adminToken := getToken(t, env.conf, admin)
	empty := marchallList(t)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/users", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff required", path: "/v1/users", token: getToken(t, env.conf, client),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{name: "staff see customer accounts only", path: "/v1/users", token: getToken(t, env.conf, stylist), wantData: marchallList(t, client)},
		{name: "staff cannot widen roles", path: path("", user.RoleAdmin), token: getToken(t, env.conf, stylist), wantData: marchallList(t, client)},
		{name: "Get all", path: "/v1/users", token: adminToken, wantData: marchallList(t, admin, owner, stylist, client)},
		{name: "search (unknown)", path: path("lol"), token: adminToken, wantData: empty},
		{name: "search=NIA", path: path("NIA"), token: adminToken, wantData: marchallList(t, stylist)},
		{name: "role=admin:", path: path("", user.RoleAdmin), token: adminToken, wantData: marchallList(t, admin, owner)},
		{name: "role=staff:,customer:", path: path("", user.RoleStaff, user.RoleCustomer), token: adminToken, wantData: marchallList(t, stylist, client)},
		{
			name: "order by -created_at", path: "/v1/users?ordering=-created_at", token: adminToken,
			wantData: marchallList(t, client, stylist, owner, admin),
		},
		{name: "roles", path: "/v1/users/roles", token: adminToken, wantData: marchallObj(t, user.Roles)},
	}
	runHTTPTests(t, env, tests)
}

func Test_userApi_create(t *testing.T) {
	env := setup(t)

	admin := env.createAdmin(t)
	owner := testutil.CreateUser(t, env.usrRepo, "Owner", "owner", "owner@belleza.test", "", []string{user.RoleAdminOwner}, true)
	stylist := env.createStaffUser(t)

	newUser := func(uname string, roles ...string) []byte {
		return marchallObj(t, user.NewUser{
			Name:            "New " + uname,
			Username:        uname,
			Email:           uname + "@belleza.test",
			Password:        testPwd,
			PasswordConfirm: testPwd,
			Roles:           roles,
		})
	}

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodPost, path: "/v1/users/register", body: newUser("maya", user.RoleStaff),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Staff required", method: http.MethodPost, path: "/v1/users/register", body: newUser("maya"),
			token: getToken(t, env.conf, env.createCustomerUser(t)), wantCode: http.StatusForbidden,
		},
		{
			name: "staff open staff account", method: http.MethodPost, path: "/v1/users/register", body: newUser("maya", user.RoleStaff),
			token: getToken(t, env.conf, stylist), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
		{
			name: "staff open customer account", method: http.MethodPost, path: "/v1/users/register", body: newUser("zoe"),
			token: getToken(t, env.conf, stylist), wantCode: http.StatusCreated,
		},
		{
			name: "duplicate username", method: http.MethodPost, path: "/v1/users/register", body: newUser("stylist", user.RoleStaff),
			token: getToken(t, env.conf, admin), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": user.ErrUsernameExists.Error()}),
		},
		{
			name: "role above own", method: http.MethodPost, path: "/v1/users/register", body: newUser("boss", user.RoleAdminOwner),
			token: getToken(t, env.conf, admin), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"roles": "not enough rights to set these roles"}),
		},
		{
			name: "owner sets owner", method: http.MethodPost, path: "/v1/users/register", body: newUser("boss", user.RoleAdminOwner),
			token: getToken(t, env.conf, owner), wantCode: http.StatusCreated,
		},
		{
			name: "staff member", method: http.MethodPost, path: "/v1/users/register", body: newUser("maya", user.RoleStaff),
			token: getToken(t, env.conf, admin), wantCode: http.StatusCreated,
		},
	}
	runHTTPTests(t, env, tests)

	maya, err := env.usrRepo.GetUser(context.Background(), user.GetFilter{Username: "maya"})
	require.NoError(t, err)
	assert.Equal(t, []string{user.RoleStaff}, maya.Roles)
	assert.NoError(t, maya.CheckPassword(testPwd))

	zoe, err := env.usrRepo.GetUser(context.Background(), user.GetFilter{Username: "zoe"})
	require.NoError(t, err)
	assert.Equal(t, []string{user.RoleCustomer}, zoe.Roles)
}

func Test_userApi_detail(t *testing.T) {
	env := setup(t)

	admin := env.createAdmin(t)
	stylist := env.createStaffUser(t)
	client := env.createCustomerUser(t)

	stylistToken := getToken(t, env.conf, stylist)
	adminToken := getToken(t, env.conf, admin)

	tests := []httpTest{
		{name: "self", path: "/v1/users/" + stylist.ID, token: stylistToken, wantData: marchallObj(t, stylist)},
		{
			name: "someone else", path: "/v1/users/" + client.ID, token: stylistToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
		{name: "admin reads anyone", path: "/v1/users/" + client.ID, token: adminToken, wantData: marchallObj(t, client)},
		{name: "unknown", path: "/v1/users/nope", token: adminToken, wantCode: http.StatusNotFound},
		{
			name: "non admin cannot change roles", method: http.MethodPut, path: "/v1/users/" + stylist.ID, token: stylistToken,
			body: marchallObj(t, map[string]interface{}{"roles": []string{user.RoleAdmin}}), wantCode: http.StatusForbidden,
		},
		{
			name: "cannot delete self", method: http.MethodDelete, path: "/v1/users/" + admin.ID, token: adminToken,
			wantCode: http.StatusForbidden,
		},
		{name: "delete", method: http.MethodDelete, path: "/v1/users/" + client.ID, token: adminToken, wantCode: http.StatusNoContent},
		{name: "deleted", path: "/v1/users/" + client.ID, token: adminToken, wantCode: http.StatusNotFound},
	}
	runHTTPTests(t, env, tests)

	t.Run("rename self", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/users/"+stylist.ID, stylistToken, marchallObj(t, map[string]string{"name": "Nia"}))
		env.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code)

		var got user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "Nia", got.Name)
		assert.Equal(t, stylist.Username, got.Username)
	})
}

func Test_userApi_passwordReset(t *testing.T) {
	env := setup(t)
	usr := testutil.CreateUser(t, env.usrRepo, "Client", "client", "client@belleza.test", testPwd, []string{user.RoleCustomer}, true)

	success := marchallObj(t, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	tests := []httpTest{
		{
			name: "invalid email", method: http.MethodPost, path: "/v1/users/password-reset",
			body: marchallObj(t, PasswordResetRequest{Email: "lol"}), wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown email", method: http.MethodPost, path: "/v1/users/password-reset",
			body: marchallObj(t, PasswordResetRequest{Email: "nobody@belleza.test"}), wantData: success,
		},
	}
	runHTTPTests(t, env, tests)
	assert.Empty(t, env.mailSvc.SentMessages())

	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", marchallObj(t, PasswordResetRequest{Email: "CLIENT@belleza.test"}))
	env.serve(req, rec)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: success}, rec)

	sent := env.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, usr.Email, sent[0].To[0].Address)
	assert.Equal(t, "password_reset", sent[0].TemplateName)

	data, ok := sent[0].TemplateData.(map[string]interface{})
	require.True(t, ok)

	newPwd := "Sh0rt&Curly!"
	confirm := func(uid, token string) []byte {
		return marchallObj(t, user.ResetUserPassword{Token: token, UID: uid, Password: newPwd, PasswordConfirm: newPwd})
	}
	tests = []httpTest{
		{
			name: "bad token", method: http.MethodPost, path: "/v1/users/password-reset-confirm",
			body: confirm(data["UID"].(string), "bad-token"), wantCode: http.StatusBadRequest,
		},
		{
			name: "confirm", method: http.MethodPost, path: "/v1/users/password-reset-confirm",
			body:     confirm(data["UID"].(string), data["Token"].(string)),
			wantData: marchallObj(t, SuccessResponse{Success: "Password has been reset with the new password."}),
		},
	}
	runHTTPTests(t, env, tests)

	usr, err := env.usrRepo.GetUser(req.Context(), user.GetFilter{ID: usr.ID})
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword(newPwd))
}

func Test_userApi_refreshToken(t *testing.T) {
	env := setup(t)
	stylist := env.createStaffUser(t)

	t.Run("refresh", func(t *testing.T) {
		oriat := time.Now().Add(-time.Hour).Unix()
		token, err := GenerateToken(GetUserClaims(stylist, env.conf, oriat), env.conf)
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
		env.serve(req, rec)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		claims := parseToken(t, env.conf, resp.Token)
		assert.Equal(t, oriat, claims.OrigIssuedAt)
		assert.True(t, claims.IsStaff)
	})

	t.Run("refresh expired", func(t *testing.T) {
		oriat := time.Now().Add(-env.conf.Server.JWTRefreshExpirationDelta - time.Minute).Unix()
		token, err := GenerateToken(GetUserClaims(stylist, env.conf, oriat), env.conf)
		require.NoError(t, err)

		req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
		env.serve(req, rec)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})}, rec)
	})
}
