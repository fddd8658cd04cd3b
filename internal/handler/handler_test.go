package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/handover"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation/rotationtest"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/session"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

// kst 把首尔时间换算成 UTC 时刻
func kst(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.FixedZone("KST", 9*3600)).UTC()
}

func newTestHandler(t *testing.T, now time.Time) *Handler {
	t.Helper()

	validate, trans, err := newValidator()
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Reconciler.Token = "cron-secret"

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	civil := shiftclock.NewCivilClock(540)
	clock := shiftclock.ClockFunc(func() time.Time { return now })
	calendar := rotation.NewCalendar(rotationtest.NewMemorySource(rotationtest.TenDayConfig()))

	return &Handler{
		validate:   validate,
		config:     cfg,
		translator: trans,
		civil:      civil,
		clock:      clock,
		calendar:   calendar,
		guard:      handover.NewGuard(calendar, civil, clock),
		sessions:   session.NewStore(rdb, time.Second),
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) (Response, T) {
	t.Helper()

	var raw struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))

	var data T
	if len(raw.Data) > 0 && string(raw.Data) != "null" {
		require.NoError(t, json.Unmarshal(raw.Data, &data))
	}
	return raw.Response, data
}

func TestReconcilerToken(t *testing.T) {
	h := newTestHandler(t, time.Now())

	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		h.successResponse(w, r, "ok", nil)
	})

	tests := []struct {
		name   string
		token  string
		status int
		called bool
	}{
		{"缺少令牌", "", http.StatusUnauthorized, false},
		{"令牌错误", "wrong", http.StatusUnauthorized, false},
		{"令牌正确", "cron-secret", http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			req := httptest.NewRequest(http.MethodPost, "/cron/check-worklog", nil)
			if tt.token != "" {
				req.Header.Set(reconcilerTokenHeader, tt.token)
			}
			rec := httptest.NewRecorder()

			h.reconcilerToken(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.called, called)
		})
	}
}

func TestReconcilerTokenRejectsWhenUnconfigured(t *testing.T) {
	h := newTestHandler(t, time.Now())
	h.config.Reconciler.Token = ""

	req := httptest.NewRequest(http.MethodPost, "/cron/check-worklog", nil)
	rec := httptest.NewRecorder()
	h.reconcilerToken(http.NotFoundHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBadRequestTranslatesValidationErrors(t *testing.T) {
	h := newTestHandler(t, time.Now())

	req := struct {
		Mode string `json:"mode" validate:"oneof=default handover"`
	}{Mode: "other"}
	err := h.validate.Struct(req)
	require.Error(t, err)

	rec := httptest.NewRecorder()
	h.badRequest(rec, httptest.NewRequest(http.MethodPost, "/", nil), err)

	resp, _ := decode[any](t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "Mode")

	rec = httptest.NewRecorder()
	h.badRequest(rec, httptest.NewRequest(http.MethodPost, "/", nil), errors.New("请求格式错误"))
	resp, _ = decode[any](t, rec)
	assert.Equal(t, "请求格式错误", resp.Message)
}

func TestDateParam(t *testing.T) {
	fallback := shiftclock.Date(2025, time.December, 5)

	req := httptest.NewRequest(http.MethodGet, "/rotation/teams", nil)
	date, err := dateParam(req, "date", fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, date)

	req = httptest.NewRequest(http.MethodGet, "/rotation/teams?date=2026-01-01", nil)
	date, err = dateParam(req, "date", fallback)
	require.NoError(t, err)
	assert.Equal(t, shiftclock.Date(2026, time.January, 1), date)

	req = httptest.NewRequest(http.MethodGet, "/rotation/teams?date=2026/01/01", nil)
	_, err = dateParam(req, "date", fallback)
	assert.Error(t, err)
}

func TestShiftTypeParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/rotation/assignments?shiftType=off", nil)
	_, err := shiftTypeParam(req, "shiftType", domain.ShiftTypeDay)
	assert.Error(t, err)

	req = httptest.NewRequest(http.MethodGet, "/rotation/assignments?shiftType=night", nil)
	slot, err := shiftTypeParam(req, "shiftType", domain.ShiftTypeDay)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftTypeNight, slot)
}

func TestGetCurrentRotation(t *testing.T) {
	// 锚点当天上午，白班 1조，夜班 4조
	h := newTestHandler(t, kst(2025, time.November, 6, 10, 0))

	rec := httptest.NewRecorder()
	h.GetCurrentRotation(rec, httptest.NewRequest(http.MethodGet, "/rotation/current", nil))

	resp, data := decode[currentRotation](t, rec)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, shiftclock.Date(2025, time.November, 6), data.LogicalDate)
	assert.Equal(t, domain.ShiftTypeDay, data.ShiftType)
	assert.Equal(t, "1조", data.Team)
	assert.Equal(t, "kim", data.Members.Primary)
	assert.Equal(t, domain.ShiftTypeNight, data.NextShift)
	assert.Equal(t, "4조", data.NextTeam)
	assert.Nil(t, data.Active)
}

func TestGetCurrentRotationFollowsActiveSession(t *testing.T) {
	// 07:40 已经进入白班时段，但夜班组还没有交接
	h := newTestHandler(t, kst(2025, time.November, 7, 7, 40))
	require.NoError(t, h.sessions.SetActive(t.Context(), &domain.DutySession{TeamID: 4, TeamName: "4조", UserID: 40}))

	rec := httptest.NewRecorder()
	h.GetCurrentRotation(rec, httptest.NewRequest(http.MethodGet, "/rotation/current", nil))

	resp, data := decode[currentRotation](t, rec)
	require.True(t, resp.Success, resp.Message)
	assert.Equal(t, shiftclock.Date(2025, time.November, 6), data.LogicalDate)
	assert.Equal(t, domain.ShiftTypeNight, data.ShiftType)
	assert.Equal(t, "4조", data.Team)
	require.NotNil(t, data.Active)
	assert.Equal(t, "4조", data.Active.TeamName)
}

func TestGetCurrentRotationWithoutConfig(t *testing.T) {
	h := newTestHandler(t, kst(2024, time.January, 1, 10, 0))

	rec := httptest.NewRecorder()
	h.GetCurrentRotation(rec, httptest.NewRequest(http.MethodGet, "/rotation/current", nil))

	resp, _ := decode[any](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "该日期没有生效的轮换配置", resp.Message)
}

func TestGetTeamShifts(t *testing.T) {
	h := newTestHandler(t, kst(2025, time.November, 6, 10, 0))

	rec := httptest.NewRecorder()
	h.GetTeamShifts(rec, httptest.NewRequest(http.MethodGet, "/rotation/shifts?team="+url.QueryEscape("1조")+"&from=2025-11-06&to=2025-11-15", nil))

	resp, shifts := decode[[]domain.ShiftResolution](t, rec)
	require.True(t, resp.Success, resp.Message)
	require.Len(t, shifts, 10)
	assert.Equal(t, domain.ShiftTypeDay, shifts[0].ShiftType)

	rec = httptest.NewRecorder()
	h.GetTeamShifts(rec, httptest.NewRequest(http.MethodGet, "/rotation/shifts?team="+url.QueryEscape("1조")+"&from=2025-11-06&to=2025-11-01", nil))
	resp, _ = decode[any](t, rec)
	assert.False(t, resp.Success)
}

func TestCanOperate(t *testing.T) {
	team := int64(2)
	other := int64(3)
	wl := &domain.Worklog{TeamID: 2}

	assert.True(t, canOperate(&domain.User{Role: domain.RoleAdmin}, wl))
	assert.True(t, canOperate(&domain.User{Role: domain.RoleMember, TeamID: &team}, wl))
	assert.False(t, canOperate(&domain.User{Role: domain.RoleMember, TeamID: &other}, wl))
	assert.False(t, canOperate(&domain.User{Role: domain.RoleMember}, wl))
}

func TestWorkersFrom(t *testing.T) {
	workers := workersFrom(domain.RoleAssignment{Primary: "han", Secondary: "lim", Tertiary: []string{"oh"}})
	assert.Equal(t, []string{"han"}, workers.Primary)
	assert.Equal(t, []string{"lim"}, workers.Secondary)
	assert.Equal(t, []string{"oh"}, workers.Tertiary)

	empty := workersFrom(domain.RoleAssignment{Tertiary: []string{}})
	assert.NotNil(t, empty.Primary)
	assert.Empty(t, empty.Primary)
}
