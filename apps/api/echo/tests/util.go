package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/levelup/apps/api/echo"
	"github.com/trezcool/levelup/core"
	"github.com/trezcool/levelup/core/levels"
	"github.com/trezcool/levelup/core/xp"
	"github.com/trezcool/levelup/storage/database/inmem"
	"github.com/trezcool/levelup/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	server    *Server
	conf      *core.Config
	db        *inmemdb.DB
	levelsSvc *levels.Service
	xpSvc     *xp.Service
	events    []xp.LevelUpEvent
}

func setup(t *testing.T) *testApp {
	t.Helper()
	conf := testutil.NewConfig()
	conf.Server.DisableReqLogs = true

	// set up DB & services
	a := &testApp{conf: conf, db: inmemdb.Open()}
	logger := new(testutil.Logger)
	validate, translator := testutil.NewValidator()
	a.levelsSvc = levels.NewService(inmemdb.NewLevelsRepository(a.db), nil, validate, logger)
	notifier := xp.NotifierFunc(func(_ context.Context, evt xp.LevelUpEvent) error {
		a.events = append(a.events, evt)
		return nil
	})
	a.xpSvc = xp.NewService(inmemdb.NewStateRepository(a.db), a.levelsSvc, notifier, logger)

	// set up server
	a.server = NewServer(
		ServerDeps{
			Conf:       conf,
			Logger:     logger,
			LevelsSvc:  a.levelsSvc,
			XPSvc:      a.xpSvc,
			Translator: translator,
		},
	)
	return a
}

func (a *testApp) getToken(t *testing.T, userID int, isAdmin bool, managedCourses ...int) string {
	t.Helper()
	token, err := GenerateToken(NewClaims(a.conf.AppName, userID, isAdmin, managedCourses...), a.conf.SecretKey)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func (a *testApp) do(req *http.Request, rec *httptest.ResponseRecorder) {
	a.server.ServeHTTP(rec, req)
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

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("unmarshall() failed: %v; body %s", err, rec.Body.String())
	}
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
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCode(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	checkCode(t, tt, rec)
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
