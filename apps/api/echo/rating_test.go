package echoapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/kazi/core/member"
	"github.com/trezcool/kazi/core/rating"
	"github.com/trezcool/kazi/tests"
)

func Test_ratingApi(t *testing.T) {
	e := setup(t)
	head := e.createMember(t, "Baraka", "baraka@kazi.test", "IT", member.RoleHead)
	amani := e.createMember(t, "Amani", "amani@kazi.test", "IT", member.RoleMember)
	e.createMember(t, "Neo", "neo@kazi.test", "IT", member.RoleNotAccepted)
	e.createMember(t, "Zawadi", "zawadi@kazi.test", "Media", member.RoleMember)
	headToken, memberToken := e.token(t, head), e.token(t, amani)

	hr := func(month string, social float64) rating.NewHRRating {
		return rating.NewHRRating{
			MemberID:         amani.ID,
			Month:            month,
			SocialScore:      testutil.FloatPtr(social),
			BehaviorScore:    testutil.FloatPtr(90),
			InteractionScore: testutil.FloatPtr(70),
		}
	}

	e.run(t, []httpTest{
		{
			name: "hr rating as member", method: http.MethodPost, path: "/v1/rating/hr-rating", token: memberToken,
			body: marshallObj(t, hr("2025-01", 80)), wantCode: http.StatusForbidden,
		},
		{
			name: "hr rating bad month", method: http.MethodPost, path: "/v1/rating/hr-rating", token: headToken,
			body: marshallObj(t, hr("2025-13", 80)), wantCode: http.StatusBadRequest,
		},
		{
			name: "hr rating, score out of range", method: http.MethodPost, path: "/v1/rating/hr-rating", token: headToken,
			body: marshallObj(t, hr("2025-01", 101)), wantCode: http.StatusBadRequest,
		},
		{
			name: "hr rating", method: http.MethodPost, path: "/v1/rating/hr-rating", token: headToken,
			body: marshallObj(t, hr("2025-01", 80)), wantCode: http.StatusOK,
			wantData: marshallObj(t, rating.HRRatingResult{
				MemberID: amani.ID, MemberName: "Amani", Month: "2025-01", TotalScore: 240,
			}),
		},
		{
			name: "hr rating upsert", method: http.MethodPost, path: "/v1/rating/hr-rating", token: headToken,
			body: marshallObj(t, hr("2025-01", 50)), wantCode: http.StatusOK,
			wantData: marshallObj(t, rating.HRRatingResult{
				MemberID: amani.ID, MemberName: "Amani", Month: "2025-01", TotalScore: 210, Updated: true,
			}),
		},
		{name: "dashboard as member", path: "/v1/rating/dashboard", token: memberToken, wantCode: http.StatusForbidden},
		{name: "dashboard bad month", path: "/v1/rating/dashboard?month=jan", token: headToken, wantCode: http.StatusBadRequest},
		{name: "history of another member", path: "/v1/rating/history/" + head.ID, token: memberToken, wantCode: http.StatusForbidden},
		{name: "history of unknown", path: "/v1/rating/history/ghost", token: headToken, wantCode: http.StatusNotFound},
		{name: "committee as member", path: "/v1/rating/committee/IT", token: memberToken, wantCode: http.StatusForbidden},
		{
			name: "empty committee", path: "/v1/rating/committee/Finance", token: headToken, wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "no members found in this committee"}),
		},
	})

	t.Run("dashboard", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/v1/rating/dashboard?committee=IT&month=2025-01", headToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var dash rating.Dashboard
		decode(t, rec, &dash)
		assert.Equal(t, rating.AppliedFilters{Committee: "IT", Month: "2025-01"}, dash.Filters)
		require.Len(t, dash.Members, 2, "not accepted members are left out")
		assert.Equal(t, head.ID, dash.Members[0].MemberID)
		assert.Nil(t, dash.Members[0].HRRating)
		require.NotNil(t, dash.Members[1].HRRating)
		assert.Equal(t, 210.0, dash.Members[1].HRRating.TotalHRScore)
		assert.Equal(t, 1, dash.Summary.MembersWithHRRating)

		rec = e.do(http.MethodGet, "/v1/rating/dashboard", headToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		decode(t, rec, &dash)
		assert.Equal(t, rating.AppliedFilters{Committee: "all", Month: "latest"}, dash.Filters)
		assert.Len(t, dash.Members, 3)
	})

	t.Run("history", func(t *testing.T) {
		rec := e.do(http.MethodGet, "/v1/rating/history/"+amani.ID, memberToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var h rating.History
		decode(t, rec, &h)
		assert.Equal(t, amani.ID, h.Member.ID)
		require.Len(t, h.HRRatingHistory, 1)
		assert.Equal(t, 210.0, h.HRRatingHistory[0].TotalScore)
		assert.Equal(t, 1, h.Summary.TotalHRRatings)
	})

	t.Run("committee performance", func(t *testing.T) {
		rec := e.do(http.MethodPut, "/v1/members/"+amani.ID+"/rate", headToken, marshallObj(t, member.RateUpdate{Rate: testutil.FloatPtr(75)}))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = e.do(http.MethodGet, "/v1/rating/committee/IT", headToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var report rating.CommitteeReport
		decode(t, rec, &report)
		assert.Equal(t, "IT", report.Committee)
		assert.Equal(t, 2, report.Stats.TotalMembers)
		assert.Equal(t, 1, report.Stats.Heads)
		assert.Equal(t, 75.0, report.Stats.AvgOverallRate)
		require.Len(t, report.TopPerformers, 1, "unrated members are not ranked")
		assert.Equal(t, amani.ID, report.TopPerformers[0].MemberID)
		assert.Equal(t, 1, report.TopPerformers[0].Rank)
	})
}
