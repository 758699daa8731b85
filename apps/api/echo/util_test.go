package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/member"
	"github.com/trezcool/kazi/core/rating"
	"github.com/trezcool/kazi/core/task"
	"github.com/trezcool/kazi/core/track"
	"github.com/trezcool/kazi/storage/database/inmem"
	"github.com/trezcool/kazi/tests"
)

const pwd = "Kaz!-2025pwd"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type env struct {
	app      *Server
	conf     *core.Config
	members  member.Repository
	tracks   track.Repository
	notifier *testutil.Notifier
	logger   *testutil.Logger
}

func setup(t *testing.T) *env {
	t.Helper()
	conf := &core.Config{
		AppName:   "Kazi",
		TestMode:  true,
		SecretKey: "test-secret",
		Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
		Task:      core.TaskConfig{HeadPercent: 50, DeadlinePercent: 20},
	}

	db := inmemdb.Open()
	e := &env{
		conf:     conf,
		members:  inmemdb.NewMemberRepository(db),
		tracks:   inmemdb.NewTrackRepository(db),
		notifier: &testutil.Notifier{},
		logger:   &testutil.Logger{},
	}

	validate, translator := testutil.NewValidator()
	e.app = NewServer(Deps{
		Conf:       conf,
		Logger:     e.logger,
		Validate:   validate,
		Translator: translator,
		MemberSvc:  member.NewService(e.members, e.logger),
		TaskSvc:    task.NewService(e.members, e.notifier, e.logger, conf),
		RatingSvc:  rating.NewService(e.members, e.tracks, e.notifier, e.logger),
		TrackSvc:   track.NewService(e.tracks, inmemdb.NewAnnouncementRepository(db), e.members, e.notifier, e.logger),
	})
	return e
}

func (e *env) createMember(t *testing.T, name, email, committee, role string) member.Member {
	return testutil.CreateMember(t, e.members, name, email, committee, role, pwd)
}

func (e *env) token(t *testing.T, m member.Member) string {
	token, err := GenerateToken(e.conf, NewClaims(e.conf, m))
	if err != nil {
		t.Fatalf("token(): %v", err)
	}
	return token
}

// do serves the request and returns the recorded response.
func (e *env) do(method, path, token string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(method, path, token, data...)
	e.app.ServeHTTP(rec, req)
	return rec
}

// run serves each test and checks its code and data.
func (e *env) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			checkCodeAndData(t, tt, e.do(method, tt.path, tt.token, tt.body))
		})
	}
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
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode(%s): %v", rec.Body.String(), err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
