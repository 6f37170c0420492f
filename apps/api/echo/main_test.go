package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/belleza/salon/apps/api/echo"
	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/analytics"
	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/cart"
	"github.com/belleza/salon/core/customer"
	"github.com/belleza/salon/core/product"
	"github.com/belleza/salon/core/risk"
	"github.com/belleza/salon/core/staff"
	"github.com/belleza/salon/core/user"
	"github.com/belleza/salon/services/email"
	"github.com/belleza/salon/services/filestore"
	"github.com/belleza/salon/services/logger"
	"github.com/belleza/salon/storage/database/inmem"
	"github.com/belleza/salon/storage/kv/badgerdb"
	"github.com/belleza/salon/testutil"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// testEnv is a server backed by in-memory storage, with direct access to its repositories.
type testEnv struct {
	app       *Server
	conf      *core.Config
	usrRepo   user.Repository
	custRepo  customer.Repository
	staffRepo staff.Repository
	prodRepo  product.Repository
	apptRepo  appointment.Repository
	mailSvc   *emailsvc.ConsoleService
	riskSvc   *risk.Service
}

func setup(t *testing.T, opts ...func(conf *core.Config)) *testEnv {
	t.Helper()

	conf := testutil.NewConfig()
	conf.Upload.Dir = t.TempDir()
	for _, opt := range opts {
		opt(conf)
	}

	// set up DB & repos
	db := inmemdb.Open()
	env := &testEnv{
		conf:      conf,
		usrRepo:   inmemdb.NewUserRepository(db),
		custRepo:  inmemdb.NewCustomerRepository(db),
		staffRepo: inmemdb.NewStaffRepository(db),
		prodRepo:  inmemdb.NewProductRepository(db),
		apptRepo:  inmemdb.NewAppointmentRepository(db),
		mailSvc:   emailsvc.NewConsoleServiceMock(conf),
	}

	kv, err := badgerdb.Open(conf, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	files, err := filestore.NewLocalStore(conf.Upload.Dir, conf.Upload.BaseURL)
	require.NoError(t, err)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up services
	usrSvc := user.NewService(env.usrRepo, env.mailSvc, conf)
	custSvc := customer.NewService(env.custRepo)
	staffSvc := staff.NewService(env.staffRepo)
	prodSvc := product.NewService(env.prodRepo)
	apptSvc := appointment.NewService(env.apptRepo, custSvc, staffSvc, env.mailSvc)
	env.riskSvc = risk.NewService(custSvc, apptSvc, conf)

	// set up server
	env.app = NewServer(
		"",  /* addr */
		nil, /* shutdown */
		&Deps{
			Conf:           conf,
			Logger:         logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf),
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
			UserSvc:        usrSvc,
			CustomerSvc:    custSvc,
			StaffSvc:       staffSvc,
			ProductSvc:     prodSvc,
			AppointmentSvc: apptSvc,
			CartSvc:        cart.NewService(badgerdb.NewCartRepository(kv, conf.Cart.TTL), prodSvc),
			RiskSvc:        env.riskSvc,
			AnalyticsSvc:   analytics.NewService(env.riskSvc, conf),
			FileStore:      files,
		},
	)
	return env
}

func (env *testEnv) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	env.app.ServeHTTP(rec, req)
}

// users of every portal
func (env *testEnv) createAdmin(t *testing.T) user.User {
	return testutil.CreateUser(t, env.usrRepo, "Admin", "admin", "admin@belleza.test", "", []string{user.RoleAdmin}, true)
}

func (env *testEnv) createStaffUser(t *testing.T) user.User {
	return testutil.CreateUser(t, env.usrRepo, "Stylist", "stylist", "stylist@belleza.test", "", []string{user.RoleStaff}, true)
}

func (env *testEnv) createCustomerUser(t *testing.T) user.User {
	return testutil.CreateUser(t, env.usrRepo, "Client", "client", "client@belleza.test", "", []string{user.RoleCustomer}, true)
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	claims := GetUserClaims(usr, conf)
	token, err := GenerateToken(claims, conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if _, ok := j1.([]interface{}); !ok {
		return false, nil
	}
	if _, ok := j2.([]interface{}); !ok {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()

	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, env *testEnv, tests []httpTest) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			wantCode := tt.wantCode
			if wantCode == 0 {
				wantCode = http.StatusOK
			}
			tt.wantCode = wantCode

			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			env.serve(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestHome(t *testing.T) {
	env := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	env.serve(req, rec)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Welcome to Belleza API!", rec.Body.String())
}

func TestMetrics(t *testing.T) {
	env := setup(t)

	req, rec := newRequest(http.MethodGet, "/v1/products")
	env.serve(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)

	req, rec = newRequest(http.MethodGet, "/metrics")
	env.serve(req, rec)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `belleza_http_requests_total{code="200",method="GET",route="/v1/products"} 1`)
}

func TestTokenExpired(t *testing.T) {
	env := setup(t)
	admin := env.createAdmin(t)

	claims := GetUserClaims(admin, env.conf)
	claims.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	token, err := GenerateToken(claims, env.conf)
	require.NoError(t, err)

	req, rec := newAuthRequest(http.MethodGet, "/v1/customers", token)
	env.serve(req, rec)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
