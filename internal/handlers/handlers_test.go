package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"Tracker/internal/app"
	"Tracker/internal/config"
	"Tracker/internal/repo"
	"Tracker/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rowMarker  = `<td class="title">`
	signInPath = "/users/signin"
)

type testEnv struct {
	db  *testutil.FakeDB
	mr  *miniredis.Miniredis
	srv *httptest.Server
}

func newTestEnv(t *testing.T, opts ...func(*app.Stores)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	t.Setenv("PG_DSN", "postgres://unused")
	t.Setenv("REDIS_ADDR", mr.Addr())
	t.Setenv("BCRYPT_COST", "4")
	cfg, err := config.Load()
	require.NoError(t, err)

	db := testutil.NewFakeDB()
	st := app.Stores{
		Users:      db.Users(),
		Activities: db.Activities(),
		Redis:      rdb,
	}
	for _, opt := range opts {
		opt(&st)
	}
	r, err := app.NewRouter(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), st)
	require.NoError(t, err)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testEnv{db: db, mr: mr, srv: srv}
}

// browser keeps cookies between requests and does not follow redirects.
type browser struct {
	t    *testing.T
	base string
	http *http.Client
}

func (e *testEnv) browser(t *testing.T) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: e.srv.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.http.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// follow requests the Location of a redirect.
func (b *browser) follow(resp *http.Response) (*http.Response, string) {
	b.t.Helper()
	require.Equal(b.t, http.StatusFound, resp.StatusCode)
	return b.get(resp.Header.Get("Location"))
}

func (b *browser) createAccount(username, password string) {
	b.t.Helper()
	resp, body := b.post("/users/create-account", url.Values{"username": {username}, "password": {password}})
	require.Equal(b.t, http.StatusCreated, resp.StatusCode, body)
}

func (b *browser) signIn(username, password string) *http.Response {
	b.t.Helper()
	resp, _ := b.post("/users/signin", url.Values{"username": {username}, "password": {password}})
	return resp
}

func (b *browser) addActivity(title, category, date, minutes string) {
	b.t.Helper()
	resp, body := b.post("/activity/new", activityForm(title, category, date, minutes))
	require.Equal(b.t, http.StatusFound, resp.StatusCode, body)
}

func activityForm(title, category, date, minutes string) url.Values {
	return url.Values{
		"title":           {title},
		"category":        {category},
		"date":            {date},
		"min_to_complete": {minutes},
	}
}

func TestCreateAccountThenAddActivity(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp, body := b.post("/users/create-account", url.Values{"username": {"alice"}, "password": {"pw1"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, body, "Welcome, alice!")

	_, body = b.get("/activities/page/1")
	assert.Contains(t, body, "You have no activities yet.")

	resp, _ = b.post("/activity/new", activityForm("Run", "Fitness", "2024-01-01", "30"))
	assert.Equal(t, "/activities/page/1", resp.Header.Get("Location"))

	resp, body = b.follow(resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "The activity has been added.")
	assert.Equal(t, 1, strings.Count(body, rowMarker))
	assert.Contains(t, body, rowMarker+"Run</td>")
	assert.Contains(t, body, "01/01/2024")

	_, body = b.get("/activities/page/1")
	assert.NotContains(t, body, "The activity has been added.")
}

func TestAuthGate_ReturnsToRequestedPageAfterSignIn(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")
	resp, _ := b.post("/users/signout", nil)
	require.Equal(t, signInPath, resp.Header.Get("Location"))

	resp, _ = b.get("/activity/new")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, signInPath, resp.Header.Get("Location"))

	_, body := b.follow(resp)
	assert.Contains(t, body, "Please sign in order to access your profile.")

	resp = b.signIn("alice", "pw1")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/activity/new", resp.Header.Get("Location"))

	_, body = b.follow(resp)
	assert.Contains(t, body, "Welcome!")
	assert.Contains(t, body, "Add an activity")

	// The saved path is used once.
	b.post("/users/signout", nil)
	resp = b.signIn("alice", "pw1")
	assert.Equal(t, "/activities/page/1", resp.Header.Get("Location"))
}

func TestAuthGate_PostIsNotRemembered(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")
	b.post("/users/signout", nil)

	resp, _ := b.post("/activity/new", activityForm("Run", "Fitness", "2024-01-01", "30"))
	require.Equal(t, signInPath, resp.Header.Get("Location"))

	resp = b.signIn("alice", "pw1")
	assert.Equal(t, "/activities/page/1", resp.Header.Get("Location"))
	assert.Equal(t, 1, env.db.WriteCount())
}

func TestSignIn_RotatesSessionID(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.get("/users/signin")
	before := sessionCookie(t, b)

	b.createAccount("alice", "pw1")
	b.post("/users/signout", nil)
	b.signIn("alice", "pw1")

	after := sessionCookie(t, b)
	assert.NotEqual(t, before, after)
	assert.False(t, env.mr.Exists("session:"+before))
	assert.True(t, env.mr.Exists("session:"+after))
}

func sessionCookie(t *testing.T, b *browser) string {
	t.Helper()
	u, err := url.Parse(b.base)
	require.NoError(t, err)
	for _, c := range b.http.Jar.Cookies(u) {
		if c.Name == "activity-tracker-session-id" {
			return c.Value
		}
	}
	t.Fatal("no session cookie")
	return ""
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")
	b.post("/users/signout", nil)

	resp, body := b.post("/users/signin", url.Values{"username": {"alice"}, "password": {"nope"}})

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid credentials.")
	assert.Contains(t, body, `value="alice"`)

	resp, _ = b.get("/activities/page/1")
	assert.Equal(t, signInPath, resp.Header.Get("Location"))
}

func TestCreateActivity_ValidationRerendersForm(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")
	writes := env.db.WriteCount()

	resp, body := b.post("/activity/new", activityForm("   ", strings.Repeat("c", 51), "2024-01-01", ""))

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "The title is required.")
	assert.Contains(t, body, "The category must be between 1 and 50 characters.")
	assert.Contains(t, body, "Please enter the time spent on this activity. Value cannot be empty")
	assert.Contains(t, body, `value="2024-01-01"`)
	assert.Equal(t, writes, env.db.WriteCount())
}

func TestCreateActivity_MalformedDateShowsErrorPage(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")

	resp, body := b.post("/activity/new", activityForm("Run", "Fitness", "yesterday", "30"))

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Something went wrong. Please try again later.")
	assert.NotContains(t, body, "22007")
}

func TestEditActivity(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")
	b.addActivity("Run", "Fitness", "2024-01-01", "30")

	resp, body := b.get("/activities/edit/1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="Run"`)
	assert.Contains(t, body, `value="2024-01-01"`)
	assert.Contains(t, body, `value="30"`)

	resp, _ = b.post("/activities/edit/1", activityForm("Swim", "Fitness", "2024-01-02", "45"))
	_, body = b.follow(resp)
	assert.Contains(t, body, "The activity has been changed.")
	assert.Contains(t, body, rowMarker+"Swim</td>")
	assert.Contains(t, body, "01/02/2024")
}

func TestEditActivity_NoChangesMakesNoWrites(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")
	b.addActivity("Run", "Fitness", "2024-01-01", "30")
	writes := env.db.WriteCount()

	resp, _ := b.post("/activities/edit/1", activityForm(" Run ", "Fitness", "2024-01-01", "30"))
	_, body := b.follow(resp)

	assert.Contains(t, body, "No edits were made.")
	assert.Equal(t, writes, env.db.WriteCount())
}

func TestForeignActivity_NotFound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.browser(t)
	alice.createAccount("alice", "pw1")
	alice.addActivity("Run", "Fitness", "2024-01-01", "30")
	bob := env.browser(t)
	bob.createAccount("bob", "pw2")

	for _, tc := range []struct {
		name string
		do   func() (*http.Response, string)
	}{
		{"edit form", func() (*http.Response, string) { return bob.get("/activities/edit/1") }},
		{"edit", func() (*http.Response, string) {
			return bob.post("/activities/edit/1", activityForm("Hijack", "x", "2024-01-02", "1"))
		}},
		{"delete", func() (*http.Response, string) { return bob.post("/activity/delete/1", nil) }},
		{"bad id", func() (*http.Response, string) { return bob.get("/activities/edit/abc") }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := tc.do()
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.Contains(t, body, "Activity not found.")
		})
	}

	_, body := alice.get("/activities/page/1")
	assert.Contains(t, body, rowMarker+"Run</td>")
}

func TestDeleteActivity(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")
	b.addActivity("Run", "Fitness", "2024-01-01", "30")

	resp, _ := b.post("/activity/delete/1", nil)
	_, body := b.follow(resp)

	assert.Contains(t, body, "The activity has been successfully deleted")
	assert.Zero(t, strings.Count(body, rowMarker))
}

func TestPagination(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")
	for i := 1; i <= 6; i++ {
		b.addActivity("Task"+strconv.Itoa(i), "Work", "2024-01-01", "10")
	}

	_, body := b.get("/activities/page/1")
	assert.Equal(t, 5, strings.Count(body, rowMarker))
	assert.Contains(t, body, `<a href="/activities/page/2">2</a>`)

	_, body = b.get("/activities/page/2")
	assert.Equal(t, 1, strings.Count(body, rowMarker))
	assert.Contains(t, body, rowMarker+"Task6</td>")

	for _, path := range []string{"/activities/page/3", "/activities/page/0", "/activities/page/abc", "/activities/page/1.5"} {
		resp, body := b.get(path)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
		assert.Contains(t, body, "Invalid page number requested.", path)
	}
}

func TestEmptyListHasOnePage(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")

	resp, _ := b.get("/activities/page/1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = b.get("/sort/category/1")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/activities/page/1", resp.Header.Get("Location"))
}

func TestSort_TogglesDirectionAndPersistsAcrossSignOut(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")
	b.addActivity("banana", "b", "2024-01-02", "5")
	b.addActivity("Apple", "a", "2024-01-03", "10")

	_, body := b.get("/activities/page/1")
	assert.Less(t, strings.Index(body, "Apple"), strings.Index(body, "banana"))

	resp, _ := b.get("/sort/title/1")
	_, body = b.follow(resp)
	assert.Less(t, strings.Index(body, "banana"), strings.Index(body, "Apple"))
	assert.Contains(t, body, "Sorted by title (DESC)")

	resp, _ = b.get("/sort/min_to_complete/1")
	_, body = b.follow(resp)
	assert.Contains(t, body, "Sorted by min_to_complete (ASC)")

	b.post("/users/signout", nil)
	b.signIn("alice", "pw1")
	_, body = b.get("/activities/page/1")
	assert.Contains(t, body, "Sorted by min_to_complete (ASC)")
}

func TestSort_InvalidColumnOrPage(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")

	resp, body := b.get("/sort/password/1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Invalid column name.")

	resp, body = b.get("/sort/title/2")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Invalid page number requested.")
}

func TestCreateAccount_UsernameTaken(t *testing.T) {
	env := newTestEnv(t)
	env.browser(t).createAccount("alice", "pw1")
	b := env.browser(t)

	resp, body := b.post("/users/create-account", url.Values{"username": {"alice"}, "password": {"other"}})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "Sorry, this username is already taken. Please try again.")
	assert.Contains(t, body, `value="alice"`)
}

// racedUsers always reports a username as free, so a taken name is only
// caught by the unique key on write.
type racedUsers struct{ repo.UserRepo }

func (racedUsers) Exists(context.Context, string) (bool, error) { return false, nil }

func withRacedUsers(st *app.Stores) { st.Users = racedUsers{st.Users} }

func TestUsernameTaken_ConflictOnWrite(t *testing.T) {
	env := newTestEnv(t, withRacedUsers)
	env.browser(t).createAccount("bob", "pw2")

	b := env.browser(t)
	resp, body := b.post("/users/create-account", url.Values{"username": {"bob"}, "password": {"other"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "Sorry, this username is already taken. Please try again.")
	assert.Contains(t, body, `value="bob"`)

	b.createAccount("alice", "pw1")
	resp, body = b.post("/users/edit-account", url.Values{"newUsername": {"bob"}, "newPassword": {"pw3"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "Sorry, this username is already taken. Please try again.")
	assert.Contains(t, body, "Signed in as alice")
}

func TestCreateAccount_Validation(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp, body := b.post("/users/create-account", url.Values{"username": {"al ice"}, "password": {""}})

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Username can only contain alphanumeric characters.")
	assert.Contains(t, body, "Password cannot be empty.")
	assert.Zero(t, env.db.WriteCount())
}

func TestEditAccount(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")
	b.addActivity("Run", "Fitness", "2024-01-01", "30")

	_, body := b.get("/users/edit-account")
	assert.Contains(t, body, `value="alice"`)

	resp, _ := b.post("/users/edit-account", url.Values{"newUsername": {"alice2"}, "newPassword": {"pw2"}})
	_, body = b.follow(resp)
	assert.Contains(t, body, "The account info has been changed.")
	assert.Contains(t, body, "Signed in as alice2")
	assert.Contains(t, body, rowMarker+"Run</td>")

	b.post("/users/signout", nil)
	resp = b.signIn("alice", "pw1")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp = b.signIn("alice2", "pw2")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestEditAccount_NoChanges(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")
	writes := env.db.WriteCount()

	resp, _ := b.post("/users/edit-account", url.Values{"newUsername": {"alice"}, "newPassword": {"pw1"}})
	_, body := b.follow(resp)

	assert.Contains(t, body, "No edits were made.")
	assert.Equal(t, writes, env.db.WriteCount())
}

func TestEditAccount_UsernameTaken(t *testing.T) {
	env := newTestEnv(t)
	env.browser(t).createAccount("bob", "pw2")
	b := env.browser(t)
	b.createAccount("alice", "pw1")

	resp, body := b.post("/users/edit-account", url.Values{"newUsername": {"bob"}, "newPassword": {"pw3"}})

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "Sorry, this username is already taken. Please try again.")
	assert.Contains(t, body, "Signed in as alice")
}

func TestDeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")
	b.addActivity("Run", "Fitness", "2024-01-01", "30")

	resp, _ := b.post("/users/delete", nil)
	require.Equal(t, signInPath, resp.Header.Get("Location"))
	_, body := b.follow(resp)
	assert.Contains(t, body, "Your account was successfully deleted.")

	resp, _ = b.get("/activities/page/1")
	assert.Equal(t, signInPath, resp.Header.Get("Location"))
	resp = b.signIn("alice", "pw1")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnknownPath(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp, body := b.get("/no/such/page")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Cannot get this path.")
}

func TestStoreFailure_ShowsGenericError(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.createAccount("alice", "pw1")
	env.db.Fail(testutil.ErrConnRefused)

	resp, body := b.get("/activities/page/1")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Something went wrong. Please try again later.")
	assert.Contains(t, body, "Signed in as alice")
}

func TestHomeRedirects(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp, _ := b.get("/")

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/activities/page/1", resp.Header.Get("Location"))
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp, body := b.get("/health")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true,"env":"dev"}`, body)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
