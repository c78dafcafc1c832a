package httpapi

import (
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion_mock/internal/config"
)

func TestPaginateWindow(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	for _, tc := range []struct {
		page, size int
		want       []int
	}{
		{1, 3, []int{1, 2, 3}},
		{3, 3, []int{7}},
		{4, 3, []int{}},
		{1, 10, items},
		{2, math.MaxInt, []int{}},
		{math.MaxInt / 2, 4, []int{}},
		{math.MaxInt, math.MaxInt, []int{}},
	} {
		res := paginate(items, pageQuery{Page: tc.page, Size: tc.size}, true)
		assert.Equal(t, tc.want, res.List, "page=%d size=%d", tc.page, tc.size)
		assert.Equal(t, len(items), res.Total)
		require.NotNil(t, res.TotalPages)
	}

	res := paginate([]int(nil), pageQuery{Page: 1, Size: 10}, true)
	assert.NotNil(t, res.List)
	assert.Equal(t, 0, *res.TotalPages)

	assert.Nil(t, paginate(items, pageQuery{Page: 1, Size: 2}, false).TotalPages)
}

func TestReadPageFallsBack(t *testing.T) {
	q := url.Values{"page": {"0"}, "size": {"abc"}}
	assert.Equal(t, pageQuery{Page: 1, Size: 10}, readPage(q, defaultPageSize))

	q = url.Values{"page": {" 2 "}, "size": {"5"}}
	assert.Equal(t, pageQuery{Page: 2, Size: 5}, readPage(q, defaultPageSize))

	assert.Equal(t, pageQuery{Page: 1, Size: tagPageSize}, readPage(url.Values{}, tagPageSize))
}

func TestQueryList(t *testing.T) {
	q := url.Values{"tags": {"a", " "}, "tags[]": {"b"}}
	assert.Equal(t, []string{"a", "b"}, queryList(q, "tags"))
	assert.Nil(t, queryList(url.Values{}, "tags"))
}

func TestNewestFirstIsStable(t *testing.T) {
	type rec struct{ id, at string }
	items := []rec{
		{"a", "2025-01-01T00:00:00.000Z"},
		{"b", "2025-01-02T00:00:00.000Z"},
		{"c", "2025-01-01T00:00:00.000Z"},
	}
	newestFirst(items, func(r rec) string { return r.at })
	assert.Equal(t, "b", items[0].id)
	assert.Equal(t, "a", items[1].id)
	assert.Equal(t, "c", items[2].id)
}

func TestDemandArea(t *testing.T) {
	assert.Equal(t, "朝阳区", demandArea("北京市朝阳区建国路88号"))
	assert.Equal(t, "浦东新区", demandArea("上海市浦东新区世纪大道100号"))
	assert.Equal(t, "", demandArea("建国路88号"))
}

func TestRelativeDesc(t *testing.T) {
	now := time.Date(2025, 1, 15, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "刚刚发布", relativeDesc(now.Add(-30*time.Second), now))
	assert.Equal(t, "5分钟前发布", relativeDesc(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3小时前发布", relativeDesc(now.Add(-3*time.Hour), now))
	assert.Equal(t, "2天前发布", relativeDesc(now.Add(-50*time.Hour), now))
	assert.Equal(t, "2025/1/1", relativeDesc(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC), now))
}

func TestRecommendCountIsStable(t *testing.T) {
	for _, id := range []string{"demand-001", "demand-002", "demand-xyz"} {
		n := recommendCount(id)
		assert.Equal(t, n, recommendCount(id))
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 5)
	}
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "13", formatHours(13))
	assert.Equal(t, "12.5", formatHours(12.5))
}

func TestAgeOn(t *testing.T) {
	assert.Nil(t, ageOn("", 2025))
	assert.Nil(t, ageOn("not a date", 2025))
	age := ageOn("2017-03-15", 2025)
	require.NotNil(t, age)
	assert.Equal(t, 8, *age)
}

func TestBuildUpstreamURL(t *testing.T) {
	u, err := buildUpstreamURL("http://127.0.0.1:8080/prefix/", "/api/luxmall-infra/upload", "a=1")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/prefix/api/luxmall-infra/upload?a=1", u.String())
}

func TestLegacySessionReuse(t *testing.T) {
	jars := newLegacyJars(config.LegacyConfig{SessionIdleMinutes: 1, MaxSessions: 10})

	rec := httptest.NewRecorder()
	jar, err := jars.For(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, legacySessionCookie, cookies[0].Name)
	assert.Equal(t, 60, cookies[0].MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	again, err := jars.For(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Same(t, jar, again)
	assert.Equal(t, 1, jars.Len())

	jars.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	rec = httptest.NewRecorder()
	fresh, err := jars.For(rec, req)
	require.NoError(t, err)
	assert.NotSame(t, jar, fresh)
	require.Len(t, rec.Result().Cookies(), 1)
	assert.NotEqual(t, cookies[0].Value, rec.Result().Cookies()[0].Value)
	assert.Equal(t, 1, jars.Len())
}

func TestLegacyJarsEvictLeastRecentlyUsed(t *testing.T) {
	jars := newLegacyJars(config.LegacyConfig{SessionIdleMinutes: 30, MaxSessions: 2})
	clock := testNow
	jars.now = func() time.Time { return clock }

	open := func() *http.Cookie {
		rec := httptest.NewRecorder()
		_, err := jars.For(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.NoError(t, err)
		return rec.Result().Cookies()[0]
	}
	reuse := func(c *http.Cookie) bool {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(c)
		rec := httptest.NewRecorder()
		_, err := jars.For(rec, req)
		require.NoError(t, err)
		return len(rec.Result().Cookies()) == 0
	}

	a := open()
	clock = clock.Add(time.Second)
	b := open()
	clock = clock.Add(time.Second)
	require.True(t, reuse(a))

	clock = clock.Add(time.Second)
	c := open()
	assert.Equal(t, 2, jars.Len())
	assert.True(t, reuse(a))
	assert.True(t, reuse(c))
	assert.False(t, reuse(b))
}
