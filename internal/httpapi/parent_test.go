package httpapi

import (
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion_mock/internal/model"
)

func defaultAddressIDs(t *testing.T, ts *testServer) []string {
	t.Helper()
	res := ts.do(t, http.MethodGet, "/api/parent/addresses", nil)
	require.Equal(t, http.StatusOK, res.status)
	var addrs []model.Address
	res.payload(t, keyContext, &addrs)

	var ids []string
	for _, a := range addrs {
		if a.IsDefault {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func TestAddressDefaultStaysUnique(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, []string{"addr-001"}, defaultAddressIDs(t, ts))

	res := ts.do(t, http.MethodPost, "/api/parent/addresses", map[string]any{
		"contactName": "李四",
		"province":    "上海市",
		"city":        "上海市",
		"district":    "浦东新区",
		"detail":      "世纪大道100号",
		"isDefault":   true,
	})
	require.Equal(t, http.StatusOK, res.status)
	var created idPayload
	res.payload(t, keyContext, &created)
	assert.Equal(t, "addr-003", created.ID)
	assert.Equal(t, []string{"addr-003"}, defaultAddressIDs(t, ts))

	res = ts.do(t, http.MethodGet, "/api/parent/addresses/addr-003", nil)
	var addr model.Address
	res.payload(t, keyContext, &addr)
	assert.Equal(t, "上海市上海市浦东新区世纪大道100号", addr.FullAddress)

	res = ts.do(t, http.MethodPut, "/api/parent/addresses/addr-002/default", nil)
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, []string{"addr-002"}, defaultAddressIDs(t, ts))

	res = ts.do(t, http.MethodPut, "/api/parent/addresses/addr-001", map[string]any{"isDefault": true, "detail": "建国路99号"})
	require.Equal(t, http.StatusOK, res.status)
	assert.Equal(t, []string{"addr-001"}, defaultAddressIDs(t, ts))

	res = ts.do(t, http.MethodGet, "/api/parent/addresses/addr-001", nil)
	res.payload(t, keyContext, &addr)
	assert.Equal(t, "addr-001", addr.ID)
	assert.Equal(t, "北京市北京市朝阳区建国路99号", addr.FullAddress)

	res = ts.do(t, http.MethodPut, "/api/parent/addresses/addr-404/default", nil)
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, msgAddressNotFound, res.message(t))
}

func TestAddressDelete(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, http.MethodDelete, "/api/parent/addresses/addr-002", nil)
	require.Equal(t, http.StatusOK, res.status)

	res = ts.do(t, http.MethodDelete, "/api/parent/addresses/addr-002", nil)
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestChildLifecycle(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, http.MethodPost, "/api/parent/children", map[string]any{
		"name":     "小强",
		"gender":   "MALE",
		"birthday": "2018-06-01",
	})
	require.Equal(t, http.StatusOK, res.status)
	var created idPayload
	res.payload(t, keyContext, &created)
	assert.Equal(t, "child-003", created.ID)

	res = ts.do(t, http.MethodGet, "/api/parent/children/child-003", nil)
	var c model.Child
	res.payload(t, keyContext, &c)
	require.NotNil(t, c.Age)
	assert.Equal(t, 7, *c.Age)

	res = ts.do(t, http.MethodPut, "/api/parent/children/child-003", map[string]any{"id": "other", "grade": "一年级"})
	require.Equal(t, http.StatusOK, res.status)
	res = ts.do(t, http.MethodGet, "/api/parent/children/child-003", nil)
	res.payload(t, keyContext, &c)
	assert.Equal(t, "child-003", c.ID)
	assert.Equal(t, "小强", c.Name)
	assert.Equal(t, "一年级", c.Grade)

	res = ts.do(t, http.MethodPut, "/api/parent/children/child-003", "{bad")
	assert.Equal(t, http.StatusBadRequest, res.status)

	res = ts.do(t, http.MethodDelete, "/api/parent/children/child-003", nil)
	require.Equal(t, http.StatusOK, res.status)
	res = ts.do(t, http.MethodGet, "/api/parent/children/child-003", nil)
	assert.Equal(t, http.StatusNotFound, res.status)
	assert.Equal(t, msgChildNotFound, res.message(t))
}

func TestChildWithoutBirthdayHasNullAge(t *testing.T) {
	ts := newTestServer(t)
	res := ts.do(t, http.MethodPost, "/api/parent/children", map[string]any{"name": "小花"})
	require.Equal(t, http.StatusOK, res.status)

	res = ts.do(t, http.MethodGet, "/api/parent/children/child-003", nil)
	var raw map[string]any
	res.payload(t, keyContext, &raw)
	assert.Contains(t, raw, "age")
	assert.Nil(t, raw["age"])
}

func TestProfileUpdateKeepsUntouchedFields(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, http.MethodPut, "/api/parent/profile", map[string]any{"nickname": "新昵称"})
	require.Equal(t, http.StatusOK, res.status)

	res = ts.do(t, http.MethodGet, "/api/parent/profile", nil)
	var p model.ParentProfile
	res.payload(t, keyContext, &p)
	assert.Equal(t, "新昵称", p.Nickname)
	assert.Equal(t, "张三", p.RealName)
	assert.NotEmpty(t, p.Avatar)
}

func TestParentCompanionsPaging(t *testing.T) {
	ts := newTestServer(t)

	for _, tc := range []struct {
		page, want int
	}{{1, 3}, {2, 3}, {3, 2}, {4, 0}} {
		res := ts.do(t, http.MethodGet, "/api/parent/companions?size=3&page="+strconv.Itoa(tc.page), nil)
		require.Equal(t, http.StatusOK, res.status)
		var pg pageResult[model.Companion]
		res.payload(t, keyContext, &pg)
		assert.Len(t, pg.List, tc.want, "page %d", tc.page)
		assert.Equal(t, 8, pg.Total)
		require.NotNil(t, pg.TotalPages)
		assert.Equal(t, 3, *pg.TotalPages)
	}
}

func TestParentCompanionsFilters(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, http.MethodGet, "/api/parent/companions?radius=3&serviceTypes[]=HOMEWORK", nil)
	var pg pageResult[model.Companion]
	res.payload(t, keyContext, &pg)
	require.Len(t, pg.List, 1)
	assert.Equal(t, "companion-001", pg.List[0].ID)

	res = ts.do(t, http.MethodGet, "/api/parent/companions?tags="+url.QueryEscape("钢琴十级")+"&tags="+url.QueryEscape("绘画特长")+"&radius=abc", nil)
	res.payload(t, keyContext, &pg)
	assert.Equal(t, 2, pg.Total)
}

func TestParentCompanionDetail(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, http.MethodGet, "/api/parent/companions/companion-001", nil)
	require.Equal(t, http.StatusOK, res.status)
	var d struct {
		ID   string      `json:"id"`
		Tags []detailTag `json:"tags"`
	}
	res.payload(t, keyContext, &d)
	assert.Equal(t, "companion-001", d.ID)
	require.Len(t, d.Tags, 3)
	assert.Equal(t, detailTag{ID: "tag-1", Name: "耐心细致"}, d.Tags[0])

	res = ts.do(t, http.MethodGet, "/api/companion/companion-999", nil)
	assert.Equal(t, http.StatusNotFound, res.status)
}

func TestCalendarUsesRequestedMonth(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, http.MethodGet, "/api/parent/calendar?month=2025-03", nil)
	require.Equal(t, http.StatusOK, res.status)
	var cal model.Calendar
	res.payload(t, keyContext, &cal)
	require.NotEmpty(t, cal.Tasks)
	for _, d := range cal.Tasks {
		assert.Regexp(t, `^2025-03-\d{2}$`, d.Date)
	}

	res = ts.do(t, http.MethodGet, "/api/parent/calendar", nil)
	res.payload(t, keyContext, &cal)
	assert.Regexp(t, `^2025-01-\d{2}$`, cal.Tasks[0].Date)
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, http.MethodPost, "/api/auth/wechat/parent", map[string]string{"code": "wx"})
	require.Equal(t, http.StatusOK, res.status)
	var login loginResult
	res.payload(t, keyContext, &login)
	assert.Equal(t, "mock_access_token_"+unixMilli(testNow), login.AccessToken)
	assert.Equal(t, tokenTTLSeconds, login.ExpiresIn)
	require.NotNil(t, login.UserInfo)
	assert.Equal(t, "parent-001", login.UserInfo.UserID)

	res = ts.do(t, http.MethodPost, "/api/auth/phone/bind", map[string]string{"phone": "13900000000", "code": "000000"})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "验证码错误", res.message(t))

	res = ts.do(t, http.MethodPost, "/api/auth/phone/bind", map[string]string{"phone": "13900000000", "code": "123456"})
	assert.Equal(t, http.StatusOK, res.status)

	res = ts.do(t, http.MethodPost, "/api/auth/wechat/parent", map[string]string{"code": "wx"})
	res.payload(t, keyContext, &login)
	assert.Equal(t, "13900000000", login.UserInfo.Phone)

	res = ts.do(t, http.MethodPost, "/api/auth/token/refresh", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, res.status)
	assert.Equal(t, "缺少refreshToken", res.message(t))

	res = ts.do(t, http.MethodGet, "/api/auth/me", nil)
	var me map[string]string
	res.payload(t, keyContext, &me)
	assert.Equal(t, "mock_open_id", me["openId"])
}

func TestChildKeepsFieldsOutsideItsShape(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, http.MethodPost, "/api/parent/children", map[string]any{
		"name":      "小宇",
		"grade":     3,
		"bloodType": "O",
		"age":       "十岁",
	})
	require.Equal(t, http.StatusOK, res.status, string(res.body))

	res = ts.do(t, http.MethodGet, "/api/parent/children/child-003", nil)
	var raw map[string]any
	res.payload(t, keyContext, &raw)
	assert.Equal(t, "小宇", raw["name"])
	assert.Equal(t, 3.0, raw["grade"])
	assert.Equal(t, "O", raw["bloodType"])
	assert.Nil(t, raw["age"])

	res = ts.do(t, http.MethodPut, "/api/parent/children/child-003", map[string]any{"grade": "三年级", "id": 7})
	require.Equal(t, http.StatusOK, res.status)
	res = ts.do(t, http.MethodGet, "/api/parent/children/child-003", nil)
	raw = nil
	res.payload(t, keyContext, &raw)
	assert.Equal(t, "三年级", raw["grade"])
	assert.Equal(t, "child-003", raw["id"])
	assert.Equal(t, "O", raw["bloodType"])
}

func TestAddressUpdateKeepsUnknownFields(t *testing.T) {
	ts := newTestServer(t)

	res := ts.do(t, http.MethodPut, "/api/parent/addresses/addr-002", map[string]any{
		"doorCode":    "1234#",
		"latitude":    "39.9",
		"fullAddress": "somewhere else",
		"isDefault":   "yes",
	})
	require.Equal(t, http.StatusOK, res.status, string(res.body))

	res = ts.do(t, http.MethodGet, "/api/parent/addresses/addr-002", nil)
	var raw map[string]any
	res.payload(t, keyContext, &raw)
	assert.Equal(t, "1234#", raw["doorCode"])
	assert.Equal(t, "39.9", raw["latitude"])
	assert.Equal(t, false, raw["isDefault"])
	assert.NotEqual(t, "somewhere else", raw["fullAddress"])
	assert.Equal(t, []string{"addr-001"}, defaultAddressIDs(t, ts))
}
