package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/levelup/core/levels"
)

func newUpdate(thresholds ...int) levels.Update {
	upd := levels.Update{Algo: levels.Algo{Method: levels.MethodLinear, Base: 100, Incr: 50}}
	for i, xpReq := range thresholds {
		upd.Levels = append(upd.Levels, levels.Level{Level: i + 1, XPRequired: xpReq})
	}
	return upd
}

func Test_levelsApi_preview(t *testing.T) {
	app := setup(t)
	token := app.getToken(t, 1, false)

	tests := []httpTest{
		{
			name:     "no token",
			method:   http.MethodGet,
			path:     "/v1/levels/preview?method=relative&base=120&coef=1.3&n=3",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "relative",
			method:   http.MethodGet,
			path:     "/v1/levels/preview?method=relative&base=120&coef=1.3&n=4",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []levels.Level{
				{Level: 1, XPRequired: 0},
				{Level: 2, XPRequired: 120},
				{Level: 3, XPRequired: 276},
				{Level: 4, XPRequired: 479},
			}),
		},
		{
			name:     "linear",
			method:   http.MethodGet,
			path:     "/v1/levels/preview?method=linear&base=100&incr=50&n=4",
			token:    token,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, []levels.Level{
				{Level: 1, XPRequired: 0},
				{Level: 2, XPRequired: 100},
				{Level: 3, XPRequired: 250},
				{Level: 4, XPRequired: 450},
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token)
			app.do(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		for _, path := range []string{
			"/v1/levels/preview?method=relative&base=120&coef=1.3&n=1",
			"/v1/levels/preview?method=relative&base=120&coef=1.3&n=100",
			"/v1/levels/preview?method=cubic&base=120&n=5",
			"/v1/levels/preview?method=relative&base=0&coef=1.3&n=5",
			"/v1/levels/preview?method=relative&base=120&coef=nope&n=5",
			"/v1/levels/preview?method=relative&base=120&coef=11&n=99",
			"/v1/levels/preview?method=linear&base=120&incr=2000000&n=99",
		} {
			req, rec := newAuthRequest(http.MethodGet, path, token)
			app.do(req, rec)
			checkCode(t, httpTest{wantCode: http.StatusBadRequest}, rec)
		}
	})
}

func Test_levelsApi_defaults(t *testing.T) {
	app := setup(t)
	adminToken := app.getToken(t, 1, true)
	managerToken := app.getToken(t, 2, false, 5)

	t.Run("built-in defaults", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/defaults/levels", adminToken)
		app.do(req, rec)
		checkCode(t, httpTest{wantCode: http.StatusOK}, rec)

		var info levels.Info
		unmarshall(t, rec, &info)
		assert.True(t, info.IsDefault)
		assert.Len(t, info.Levels, levels.DefaultNbLevels)
		assert.Equal(t, levels.DefaultAlgo(), info.Algo)
	})

	tests := []httpTest{
		{
			name:     "not admin",
			method:   http.MethodPut,
			path:     "/v1/defaults/levels",
			body:     marshallObj(t, newUpdate(0, 100, 250)),
			token:    managerToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:   "badge on defaults",
			method: http.MethodPut,
			path:   "/v1/defaults/levels",
			body: marshallObj(t, levels.Update{
				Algo: levels.DefaultAlgo(),
				Levels: []levels.Level{
					{Level: 1, XPRequired: 0},
					{Level: 2, XPRequired: 100, BadgeAwardID: 3},
				},
			}),
			token:    adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"levels": "badges cannot be awarded by the default levels"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.do(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("set defaults", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/defaults/levels", adminToken, marshallObj(t, newUpdate(0, 100, 250)))
		app.do(req, rec)
		checkCode(t, httpTest{wantCode: http.StatusOK}, rec)

		// courses without their own levels use the new defaults
		req, rec = newAuthRequest(http.MethodGet, "/v1/courses/5/levels", managerToken)
		app.do(req, rec)
		checkCode(t, httpTest{wantCode: http.StatusOK}, rec)

		var info levels.Info
		unmarshall(t, rec, &info)
		assert.Equal(t, 5, info.CourseID)
		assert.True(t, info.IsDefault)
		assert.Equal(t, []int{0, 100, 250}, info.Thresholds())
	})
}

func Test_levelsApi_course(t *testing.T) {
	app := setup(t)
	managerToken := app.getToken(t, 2, false, 5)
	studentToken := app.getToken(t, 3, false)

	tests := []httpTest{
		{
			name:     "invalid course",
			method:   http.MethodGet,
			path:     "/v1/courses/nope/levels",
			token:    studentToken,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{Error: "not found"}),
		},
		{
			name:     "not manager",
			method:   http.MethodPut,
			path:     "/v1/courses/5/levels",
			body:     marshallObj(t, newUpdate(0, 100)),
			token:    studentToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "manager of another course",
			method:   http.MethodDelete,
			path:     "/v1/courses/6/levels",
			token:    managerToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "permission denied"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.do(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("invalid levels", func(t *testing.T) {
		for _, upd := range []levels.Update{
			newUpdate(0),            // too few
			newUpdate(0, 100, 100),  // not increasing
			newUpdate(10, 100, 200), // first level not at 0
		} {
			req, rec := newAuthRequest(http.MethodPut, "/v1/courses/5/levels", managerToken, marshallObj(t, upd))
			app.do(req, rec)
			checkCode(t, httpTest{wantCode: http.StatusBadRequest}, rec)
		}
	})

	t.Run("set then reset", func(t *testing.T) {
		upd := newUpdate(0, 100, 250)
		upd.Levels[1].Name = "<b>Novice</b>"

		req, rec := newAuthRequest(http.MethodPut, "/v1/courses/5/levels", managerToken, marshallObj(t, upd))
		app.do(req, rec)
		checkCode(t, httpTest{wantCode: http.StatusOK}, rec)

		var info levels.Info
		unmarshall(t, rec, &info)
		assert.False(t, info.IsDefault)
		assert.Equal(t, "Novice", info.Levels[1].Name)

		has, err := app.levelsSvc.HasCourseLevels(context.Background(), 5)
		require.NoError(t, err)
		assert.True(t, has)

		// everyone can read the levels of a course
		req, rec = newAuthRequest(http.MethodGet, "/v1/courses/5/levels", studentToken)
		app.do(req, rec)
		checkCode(t, httpTest{wantCode: http.StatusOK}, rec)
		unmarshall(t, rec, &info)
		assert.Equal(t, []int{0, 100, 250}, info.Thresholds())

		req, rec = newAuthRequest(http.MethodDelete, "/v1/courses/5/levels", managerToken)
		app.do(req, rec)
		checkCode(t, httpTest{wantCode: http.StatusOK}, rec)
		unmarshall(t, rec, &info)
		assert.True(t, info.IsDefault)
		assert.Len(t, info.Levels, levels.DefaultNbLevels)

		has, err = app.levelsSvc.HasCourseLevels(context.Background(), 5)
		require.NoError(t, err)
		assert.False(t, has)
	})
}
