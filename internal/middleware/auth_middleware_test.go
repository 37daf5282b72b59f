package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"tooltrack/internal/model"
	"tooltrack/internal/repository"
	"tooltrack/internal/service"
	"tooltrack/internal/testutil"
	"tooltrack/pkg/jwt"
)

func setup(t *testing.T) (*fiber.App, string) {
	t.Helper()
	db := testutil.NewDB(t)
	auth := service.NewAuthService(repository.NewUserRepo(db), repository.NewRoleRepo(db), repository.NewPrivilegeRepo(db),
		jwt.NewManager("mw-secret", time.Hour), nil, testutil.Logger())
	ctx := context.Background()
	require.NoError(t, auth.EnsureAdmin(ctx, "admin@tooltrack.local", "secret1"))
	login, err := auth.Login(ctx, "admin@tooltrack.local", "secret1")
	require.NoError(t, err)

	app := fiber.New()
	app.Use(RequestLogger(testutil.Logger()))
	app.Get("/whoami", RequireAuth(auth), func(c *fiber.Ctx) error {
		return c.SendString(service.ActorFrom(c.UserContext()).Label())
	})
	app.Get("/admin", RequireAuth(auth), RequirePrivilege(model.PrivMappingManage), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/nothing", RequireAuth(auth), RequireAnyPrivilege("nope:one", "nope:two"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app, login.Token
}

func get(t *testing.T, app *fiber.App, path, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRequireAuth(t *testing.T) {
	app, token := setup(t)

	assert.Equal(t, 401, get(t, app, "/whoami", "").StatusCode)
	assert.Equal(t, 401, get(t, app, "/whoami", "Token "+token).StatusCode)
	assert.Equal(t, 401, get(t, app, "/whoami", "Bearer garbage").StatusCode)

	resp := get(t, app, "/whoami", "Bearer "+token)
	require.Equal(t, 200, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, service.DefaultActorName, string(body))
}

func TestRequirePrivilege(t *testing.T) {
	app, token := setup(t)

	assert.Equal(t, fiber.StatusNoContent, get(t, app, "/admin", "Bearer "+token).StatusCode)
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/nothing", "Bearer "+token).StatusCode)
}

func TestDefaultActor(t *testing.T) {
	db := testutil.NewDB(t)
	auth := service.NewAuthService(repository.NewUserRepo(db), repository.NewRoleRepo(db), repository.NewPrivilegeRepo(db),
		jwt.NewManager("mw-secret", time.Hour), nil, testutil.Logger())
	require.NoError(t, auth.EnsureAdmin(context.Background(), "admin@tooltrack.local", "secret1"))
	login, err := auth.Login(context.Background(), "admin@tooltrack.local", "secret1")
	require.NoError(t, err)

	app := fiber.New()
	app.Use(DefaultActor("Almacén"))
	whoami := func(c *fiber.Ctx) error {
		return c.SendString(service.ActorFrom(c.UserContext()).Label())
	}
	app.Get("/open", whoami)
	app.Get("/closed", RequireAuth(auth), whoami)

	body := func(resp *http.Response) string {
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(b)
	}
	assert.Equal(t, "Almacén", body(get(t, app, "/open", "")))
	assert.Equal(t, service.DefaultActorName, body(get(t, app, "/closed", "Bearer "+login.Token)))
}

func TestRequestLoggerCarriesRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(RequestLogger(zap.New(core)))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	resp := get(t, app, "/ping", "")
	require.Equal(t, 200, resp.StatusCode)
	rid := resp.Header.Get(fiber.HeaderXRequestID)
	require.NotEmpty(t, rid)

	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, rid, entries[0].ContextMap()["request_id"])
	assert.Equal(t, "/ping", entries[0].ContextMap()["path"])
}
