package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core/member"
	"github.com/trezcool/kazi/tests"
)

func Test_memberApi_register(t *testing.T) {
	e := setup(t)
	e.createMember(t, "Amani", "amani@kazi.test", "IT", member.RoleMember)

	body := func(name, email, committee, password, confirm string) []byte {
		return marshallObj(t, map[string]string{
			"name": name, "email": email, "committee": committee, "password": password, "passwordConfirm": confirm,
		})
	}

	e.run(t, []httpTest{
		{
			name: "missing name", method: http.MethodPost, path: "/v1/members/register",
			body:     body("", "neo@kazi.test", "IT", pwd, pwd),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "weak password", method: http.MethodPost, path: "/v1/members/register",
			body: body("Neo", "neo@kazi.test", "IT", "short", "short"), wantCode: http.StatusBadRequest,
		},
		{
			name: "duplicate email", method: http.MethodPost, path: "/v1/members/register",
			body:     body("Amani", "AMANI@kazi.test", "IT", pwd, pwd),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"email": member.ErrEmailExists.Error()}),
		},
	})

	rec := e.do(http.MethodPost, "/v1/members/register", "", body("Neo", " Neo@Kazi.test ", "Media", pwd, pwd))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var m member.Member
	decode(t, rec, &m)
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "neo@kazi.test", m.Email)
	assert.Equal(t, member.RoleNotAccepted, m.Role)
	assert.NotContains(t, rec.Body.String(), "pwd")
}

func Test_memberApi_login(t *testing.T) {
	e := setup(t)
	amani := e.createMember(t, "Amani", "amani@kazi.test", "IT", member.RoleMember)

	errCreds := marshallObj(t, httpErr{Error: "invalid credentials"})
	e.run(t, []httpTest{
		{
			name: "unknown email", method: http.MethodPost, path: "/v1/members/login",
			body:     marshallObj(t, LoginRequest{Email: "ghost@kazi.test", Password: pwd}),
			wantCode: http.StatusBadRequest, wantData: errCreds,
		},
		{
			name: "wrong password", method: http.MethodPost, path: "/v1/members/login",
			body:     marshallObj(t, LoginRequest{Email: amani.Email, Password: "nope"}),
			wantCode: http.StatusBadRequest, wantData: errCreds,
		},
		{
			name: "missing password", method: http.MethodPost, path: "/v1/members/login",
			body:     marshallObj(t, LoginRequest{Email: amani.Email}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"password": "this field is required"}),
		},
	})

	rec := e.do(http.MethodPost, "/v1/members/login", "", marshallObj(t, LoginRequest{Email: "Amani@Kazi.test", Password: pwd}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	decode(t, rec, &resp)
	assert.Equal(t, amani.ID, resp.Member.ID)
	require.NotEmpty(t, resp.Token)

	// the issued token opens the authed endpoints
	rec = e.do(http.MethodGet, "/v1/members/me", resp.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var me member.Member
	decode(t, rec, &me)
	assert.Equal(t, amani.ID, me.ID)
}

func Test_gate(t *testing.T) {
	e := setup(t)
	amani := e.createMember(t, "Amani", "amani@kazi.test", "IT", member.RoleMember)
	ghost := member.Member{ID: "ghost", Email: "ghost@kazi.test", Role: member.RoleHead}

	// a stale head claim does not grant head permissions
	stale := amani
	stale.Role = member.RoleHead

	e.run(t, []httpTest{
		{name: "no token", path: "/v1/members/me", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "bad token", path: "/v1/members/me", token: "not-a-jwt", wantCode: http.StatusUnauthorized},
		{
			name: "unknown member", path: "/v1/members/me", token: e.token(t, ghost),
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "member not found"}),
		},
		{name: "role from store", path: "/v1/members", token: e.token(t, stale), wantCode: http.StatusForbidden},
		{name: "home", path: "/", wantCode: http.StatusOK},
	})
}

func Test_memberApi_management(t *testing.T) {
	e := setup(t)
	head := e.createMember(t, "Baraka", "baraka@kazi.test", "IT", member.RoleHead)
	amani := e.createMember(t, "Amani", "amani@kazi.test", "IT", member.RoleMember)
	neo := e.createMember(t, "Neo", "neo@kazi.test", "Media", member.RoleNotAccepted)
	headToken, memberToken := e.token(t, head), e.token(t, amani)

	t.Run("query", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/v1/members?committee=IT", headToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got []member.Member
		decode(t, rec, &got)
		require.Len(t, got, 2)
		assert.Equal(t, head.ID, got[0].ID)
		assert.Equal(t, amani.ID, got[1].ID)

		rec = e.do(http.MethodGet, "/v1/members?role=not+accepted", headToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &got)
		require.Len(t, got, 1)
		assert.Equal(t, neo.ID, got[0].ID)
	})

	e.run(t, []httpTest{
		{name: "query as member", path: "/v1/members", token: memberToken, wantCode: http.StatusForbidden},
		{
			name: "accept as member", method: http.MethodPut, path: "/v1/members/" + neo.ID + "/role", token: memberToken,
			body: marshallObj(t, member.RoleUpdate{Role: member.RoleMember}), wantCode: http.StatusForbidden,
		},
		{
			name: "invalid role", method: http.MethodPut, path: "/v1/members/" + neo.ID + "/role", token: headToken,
			body:     marshallObj(t, member.RoleUpdate{Role: "boss"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, map[string]string{"role": "invalid role"}),
		},
		{
			name: "self demotion", method: http.MethodPut, path: "/v1/members/" + head.ID + "/role", token: headToken,
			body: marshallObj(t, member.RoleUpdate{Role: member.RoleMember}), wantCode: http.StatusForbidden,
		},
		{
			name: "unknown member", method: http.MethodPut, path: "/v1/members/ghost/rate", token: headToken,
			body: marshallObj(t, member.RateUpdate{Rate: testutil.FloatPtr(80)}), wantCode: http.StatusNotFound,
		},
		{
			name: "rate out of range", method: http.MethodPut, path: "/v1/members/" + amani.ID + "/rate", token: headToken,
			body: marshallObj(t, member.RateUpdate{Rate: testutil.FloatPtr(101)}), wantCode: http.StatusBadRequest,
		},
		{name: "self deletion", method: http.MethodDelete, path: "/v1/members/" + head.ID, token: headToken, wantCode: http.StatusForbidden},
	})

	t.Run("accept", func(t *testing.T) {
		rec := e.do(http.MethodPut, "/v1/members/"+neo.ID+"/role", headToken, marshallObj(t, member.RoleUpdate{Role: member.RoleMember}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, member.RoleMember, testutil.GetMember(t, e.members, neo.ID).Role)
	})

	t.Run("rate", func(t *testing.T) {
		rec := e.do(http.MethodPut, "/v1/members/"+amani.ID+"/rate", headToken, marshallObj(t, member.RateUpdate{Rate: testutil.FloatPtr(88.5)}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		got := testutil.GetMember(t, e.members, amani.ID)
		require.NotNil(t, got.Rate)
		assert.Equal(t, 88.5, *got.Rate)
	})

	t.Run("delete", func(t *testing.T) {
		rec := e.do(http.MethodDelete, "/v1/members/"+neo.ID, headToken)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
		rec = e.do(http.MethodGet, "/v1/members/me", e.token(t, neo))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func Test_memberApi_messages(t *testing.T) {
	e := setup(t)
	amani := e.createMember(t, "Amani", "amani@kazi.test", "IT", member.RoleMember)

	rec := e.do(http.MethodGet, "/v1/members/me/messages", e.token(t, amani))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	msg := member.Message{Title: "Welcome", Body: "Hi"}
	require.NoError(t, e.members.AppendMessage(context.Background(), amani.ID, msg))
	rec = e.do(http.MethodGet, "/v1/members/me/messages", e.token(t, amani))
	require.Equal(t, http.StatusOK, rec.Code)
	var got []member.Message
	decode(t, rec, &got)
	require.Len(t, got, 1)
	assert.Equal(t, "Welcome", got[0].Title)
}
